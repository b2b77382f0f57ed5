// Package tree provides the canonical tree model for treeline.
//
// # Overview
//
// Hosts hand the engine loosely-structured JSON-like data: maps with
// optional "id", "label"/"name", and "children" fields, arbitrarily
// nested. [Normalize] converts that input into a canonical tree of
// [Node] values with unique ids, silently dropping anything malformed.
// The canonical tree is built once and never mutated afterwards; every
// derived view is a fresh copy.
//
// # Visibility
//
// The diagram only lays out the part of the tree the user has expanded.
// [ReduceVisible] derives that subtree from the canonical tree and an
// expanded-id set: the root is always visible, and a node's children are
// visible exactly when the node's own id is in the set. Collapsed nodes
// keep an empty child list in the output even when the canonical node
// has children - the renderer uses [Node.HasChildren] on the canonical
// tree (carried through layout) to draw the expand affordance.
//
// [ExpandableIDs] reports which ids are togglable at all, independent of
// current visibility, so the interaction layer can reject toggles on
// leaves.
//
// # Permissiveness
//
// Normalization never fails. A non-object root yields a nil tree, and a
// malformed child (or one whose id collides with an already-normalized
// node) is excluded rather than reported. The engine has to stay usable
// on partially-malformed real-world feeds, so all invalid-input paths
// degrade to an empty or partial tree.
package tree
