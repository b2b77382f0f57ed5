package layout

import "math"

// shiftIntoView translates every node and edge so that the minimum
// occupied coordinate equals the padding on each axis, and returns the
// resulting viewport.
//
// Bounds account for full box extents, not just anchors: a node spans
// [X, X+2r+BoxW] horizontally (leading and trailing connector markers
// included) and [Y-BoxH/2, Y+BoxH/2] vertically. Using anchors alone
// would let labels render outside the declared viewport.
func shiftIntoView(d *Diagram, o *Options) Viewport {
	if len(d.Nodes) == 0 {
		return Viewport{}
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range d.Nodes {
		minX = math.Min(minX, n.X)
		maxX = math.Max(maxX, n.X+2*o.ConnectorRadius+n.BoxW)
		minY = math.Min(minY, n.Y-n.BoxH/2)
		maxY = math.Max(maxY, n.Y+n.BoxH/2)
	}

	shiftX := o.Padding - minX
	shiftY := o.Padding - minY

	for i := range d.Nodes {
		d.Nodes[i].X += shiftX
		d.Nodes[i].Y += shiftY
	}
	for i := range d.Edges {
		e := &d.Edges[i]
		e.Source = translate(e.Source, shiftX, shiftY)
		e.Target = translate(e.Target, shiftX, shiftY)
		e.C1 = translate(e.C1, shiftX, shiftY)
		e.C2 = translate(e.C2, shiftX, shiftY)
	}

	return Viewport{
		MinX: 0,
		MinY: 0,
		MaxX: maxX + shiftX + o.Padding,
		MaxY: maxY + shiftY + o.Padding,
	}
}

func translate(p Point, dx, dy float64) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}
