package render

import (
	"bytes"
	"fmt"
	"strings"

	svg "github.com/ajstarks/svgo/float"

	"github.com/treelinehq/treeline/pkg/layout"
	"github.com/treelinehq/treeline/pkg/text"
)

// Style controls the visual appearance of SVG and HTML output.
type Style struct {
	Background    string
	NodeFill      string
	NodeStroke    string
	EdgeStroke    string
	TextColor     string
	ConnectorFill string
	StrokeWidth   float64
	CornerRadius  float64
}

// DefaultStyle is a light theme suitable for documents.
var DefaultStyle = Style{
	Background:    "#ffffff",
	NodeFill:      "#f8fafc",
	NodeStroke:    "#475569",
	EdgeStroke:    "#94a3b8",
	TextColor:     "#0f172a",
	ConnectorFill: "#475569",
	StrokeWidth:   1.5,
	CornerRadius:  6,
}

// DarkStyle is a dark theme suitable for terminals and slides.
var DarkStyle = Style{
	Background:    "#0f172a",
	NodeFill:      "#1e293b",
	NodeStroke:    "#94a3b8",
	EdgeStroke:    "#475569",
	TextColor:     "#e2e8f0",
	ConnectorFill: "#94a3b8",
	StrokeWidth:   1.5,
	CornerRadius:  6,
}

// StyleByName resolves a style name used by config files and CLI flags.
func StyleByName(name string) (Style, bool) {
	switch name {
	case "", "light", "simple":
		return DefaultStyle, true
	case "dark":
		return DarkStyle, true
	default:
		return Style{}, false
	}
}

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	style           Style
	font            text.Font
	padX, padY      float64
	connectorRadius float64
}

// WithStyle sets the color theme.
func WithStyle(s Style) SVGOption { return func(r *svgRenderer) { r.style = s } }

// WithFont sets the font used for box text. It must match the font the
// layout pass measured with, or text will overflow its boxes.
func WithFont(f text.Font) SVGOption { return func(r *svgRenderer) { r.font = f } }

// WithBoxPadding sets the text padding inside boxes. It must match the
// padding the layout pass used.
func WithBoxPadding(x, y float64) SVGOption {
	return func(r *svgRenderer) { r.padX, r.padY = x, y }
}

// WithConnectorRadius sets the connector knob radius. It must match the
// radius the layout pass used.
func WithConnectorRadius(rad float64) SVGOption {
	return func(r *svgRenderer) { r.connectorRadius = rad }
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{
		style:           DefaultStyle,
		font:            text.DefaultFont,
		padX:            layout.DefaultPadX,
		padY:            layout.DefaultPadY,
		connectorRadius: layout.DefaultConnectorRadius,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// RenderSVG renders a diagram as a standalone SVG document.
//
// Nodes are rounded boxes with their wrapped label lines, edges are
// cubic Bezier curves with connector knobs at both endpoints, and
// collapsed expandable nodes carry a knob at their trailing edge as an
// expand affordance. The output is deterministic for a given diagram
// and option set.
func RenderSVG(d layout.Diagram, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)
	w, h := d.Viewport.Width(), d.Viewport.Height()

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	// Startview emits a viewBox, which the HTML pan/zoom script needs.
	canvas.Startview(w, h, 0, 0, w, h)
	canvas.Rect(0, 0, w, h, "fill:"+r.style.Background)

	for _, e := range d.Edges {
		r.drawEdge(canvas, e)
	}
	expandedIDs := sourceIDs(d)
	for _, n := range d.Nodes {
		_, expanded := expandedIDs[n.ID]
		r.drawNode(canvas, n, expanded)
	}

	canvas.End()
	return buf.Bytes()
}

// sourceIDs collects the ids that have outgoing edges in the diagram,
// i.e. the visible nodes currently showing their children.
func sourceIDs(d layout.Diagram) map[string]struct{} {
	ids := make(map[string]struct{}, len(d.Edges))
	for _, e := range d.Edges {
		if parent, _, ok := strings.Cut(e.ID, "->"); ok {
			ids[parent] = struct{}{}
		}
	}
	return ids
}

func (r *svgRenderer) drawEdge(canvas *svg.SVG, e layout.Edge) {
	path := fmt.Sprintf("M %.2f %.2f C %.2f %.2f, %.2f %.2f, %.2f %.2f",
		e.Source.X, e.Source.Y, e.C1.X, e.C1.Y, e.C2.X, e.C2.Y, e.Target.X, e.Target.Y)
	canvas.Path(path, fmt.Sprintf("fill:none;stroke:%s;stroke-width:%.1f",
		r.style.EdgeStroke, r.style.StrokeWidth))

	// Connector knobs tangent to both boxes.
	knob := "fill:" + r.style.ConnectorFill
	canvas.Circle(e.Source.X, e.Source.Y, r.connectorRadius, knob)
	canvas.Circle(e.Target.X, e.Target.Y, r.connectorRadius, knob)
}

func (r *svgRenderer) drawNode(canvas *svg.SVG, n layout.Node, expanded bool) {
	rad := r.connectorRadius
	boxX := n.X + rad
	boxY := n.Y - n.BoxH/2
	boxStyle := fmt.Sprintf("fill:%s;stroke:%s;stroke-width:%.1f",
		r.style.NodeFill, r.style.NodeStroke, r.style.StrokeWidth)

	canvas.Roundrect(boxX, boxY, n.BoxW, n.BoxH, r.style.CornerRadius, r.style.CornerRadius, boxStyle)

	// Collapsed expandable nodes get a hollow knob at the trailing edge
	// where outgoing edges would start.
	if n.HasChildren && !expanded {
		canvas.Circle(boxX+n.BoxW+rad, n.Y, rad, boxStyle)
	}

	textStyle := fmt.Sprintf("font-family:%s;font-size:%.0fpx;fill:%s",
		r.font.Family, r.font.Size, r.style.TextColor)
	for i, line := range n.Lines {
		// Baseline roughly 80% into the line box.
		y := boxY + r.padY + float64(i)*r.font.LineHeight + 0.8*r.font.Size
		canvas.Text(boxX+r.padX, y, line, textStyle)
	}
}
