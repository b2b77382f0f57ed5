package layout

// Point is a coordinate in screen space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a positioned node, recomputed on every layout pass.
//
// The (X, Y) anchor is the connector point at the box's leading edge,
// vertically centered; the box spans [X+ConnectorRadius,
// X+ConnectorRadius+BoxW] horizontally and [Y-BoxH/2, Y+BoxH/2]
// vertically.
type Node struct {
	ID    string   `json:"id"`
	Label string   `json:"label"`
	Lines []string `json:"lines"`

	// Depth is the distance from the visible root (0 for the root).
	Depth int `json:"depth"`

	// HasChildren reflects the canonical node, not the visible one, so
	// a collapsed node keeps its expand affordance.
	HasChildren bool `json:"has_children"`

	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	BoxW float64 `json:"box_w"`
	BoxH float64 `json:"box_h"`
}

// Edge is a positioned parent-child connection.
// The curve is the cubic Bezier (Source, C1, C2, Target).
type Edge struct {
	// ID is deterministic, derived from the parent and child ids.
	ID     string `json:"id"`
	Source Point  `json:"source"`
	Target Point  `json:"target"`
	C1     Point  `json:"c1"`
	C2     Point  `json:"c2"`
}

// Viewport is the padded axis-aligned bounding rectangle of the diagram.
// After the bounds shift the minimum occupied coordinate equals the
// padding on each axis, so MinX and MinY are zero and every box lies
// within [padding, MaxX] x [padding, MaxY].
type Viewport struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// Width returns the horizontal span of the viewport.
func (v Viewport) Width() float64 { return v.MaxX - v.MinX }

// Height returns the vertical span of the viewport.
func (v Viewport) Height() float64 { return v.MaxY - v.MinY }

// Diagram is the positioned end state of one layout pass, consumed by
// rendering collaborators.
type Diagram struct {
	Nodes    []Node   `json:"nodes"`
	Edges    []Edge   `json:"edges"`
	Viewport Viewport `json:"viewport"`
}

// Node returns the positioned node with the given id and true, or a
// zero Node and false when absent.
func (d *Diagram) Node(id string) (Node, bool) {
	for _, n := range d.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}
