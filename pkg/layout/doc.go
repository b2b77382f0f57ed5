// Package layout positions the visible tree as a left-to-right diagram.
//
// # Overview
//
// [Build] runs a tidy-tree pass over a visible tree (see
// tree.ReduceVisible) and produces a [Diagram]: positioned nodes with
// text-sized boxes, cubic-Bezier edges, and a padded viewport. The pass
// is a pure function of its inputs - identical visible tree, expandable
// set, and options produce bit-identical output - so results can be
// memoized by the caller (pkg/pipeline does exactly that).
//
// # Algorithm
//
// Two passes over the visible tree:
//
//  1. Post-order: compute each subtree's required extent on the order
//     (vertical) axis - the larger of the node's own box height and the
//     summed extents of its children plus sibling gaps.
//  2. Pre-order: assign each subtree a disjoint vertical band, stack the
//     child bands inside it in input order, and center the parent
//     between its first and last child (clamped so a tall parent's box
//     stays inside its own band).
//
// Disjoint bands make sibling overlap impossible by construction, and
// input order is preserved. Depth counts from the visible root: 0 for
// the root, +1 per level, mapped to the horizontal axis. Collapsing an
// ancestor elsewhere never changes another branch's relative depths.
//
// # Geometry
//
// A node's (X, Y) anchor is its connector point: the leading (left) box
// edge, vertically centered, with the box itself drawn ConnectorRadius
// to the right. Edges leave the parent box's trailing edge midpoint and
// enter the child box's leading edge midpoint, each offset outward by
// ConnectorRadius so the curve clears the connector markers. The curve
// is a cubic Bezier whose control points sit min(CurveCap, 0.6*|dx|)
// horizontally from the endpoints, flattening gracefully when source
// and target are nearly vertically aligned.
package layout
