package render

import (
	"encoding/json"

	"github.com/treelinehq/treeline/pkg/layout"
	"github.com/treelinehq/treeline/pkg/text"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	style string
	font  text.Font
}

// WithJSONStyle records the style name (e.g. "light", "dark") in the
// output for documentation or round-trip rendering.
func WithJSONStyle(s string) JSONOption { return func(r *jsonRenderer) { r.style = s } }

// WithJSONFont records the font the layout was measured with, so a
// consumer can reproduce the text fitting.
func WithJSONFont(f text.Font) JSONOption { return func(r *jsonRenderer) { r.font = f } }

type jsonOutput struct {
	Width    float64         `json:"width"`
	Height   float64         `json:"height"`
	Style    string          `json:"style,omitempty"`
	Font     *text.Font      `json:"font,omitempty"`
	Nodes    []layout.Node   `json:"nodes"`
	Edges    []layout.Edge   `json:"edges"`
	Viewport layout.Viewport `json:"viewport"`
}

// RenderJSON exports the diagram and render metadata as a
// pretty-printed JSON document, the primary data interchange format for
// external visualization tools.
//
// RenderJSON returns an error only if marshaling fails, which should
// not happen with well-formed diagrams. It does not modify d and is
// safe to call concurrently.
func RenderJSON(d layout.Diagram, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Width:    d.Viewport.Width(),
		Height:   d.Viewport.Height(),
		Style:    r.style,
		Nodes:    d.Nodes,
		Edges:    d.Edges,
		Viewport: d.Viewport,
	}
	if r.font != (text.Font{}) {
		f := r.font
		out.Font = &f
	}

	return json.MarshalIndent(out, "", "  ")
}
