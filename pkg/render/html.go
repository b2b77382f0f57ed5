package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"

	"github.com/treelinehq/treeline/pkg/layout"
)

const htmlPanZoomJS = `
    const svg = document.querySelector('svg');
    let view = svg.viewBox.baseVal;
    let scale = 1, panning = false, start = null;
    svg.addEventListener('wheel', e => {
      e.preventDefault();
      const factor = e.deltaY < 0 ? 0.9 : 1.1;
      const nw = view.width * factor, nh = view.height * factor;
      view.x += (view.width - nw) * (e.offsetX / svg.clientWidth);
      view.y += (view.height - nh) * (e.offsetY / svg.clientHeight);
      view.width = nw; view.height = nh;
    }, { passive: false });
    svg.addEventListener('mousedown', e => { panning = true; start = { x: e.clientX, y: e.clientY }; });
    window.addEventListener('mouseup', () => { panning = false; });
    window.addEventListener('mousemove', e => {
      if (!panning) return;
      view.x -= (e.clientX - start.x) * (view.width / svg.clientWidth);
      view.y -= (e.clientY - start.y) * (view.height / svg.clientHeight);
      start = { x: e.clientX, y: e.clientY };
    });`

// HTMLOption configures HTML rendering.
type HTMLOption func(*htmlRenderer)

type htmlRenderer struct {
	title   string
	svgOpts []SVGOption
}

// WithHTMLTitle sets the page title. Defaults to "Tree Diagram".
func WithHTMLTitle(t string) HTMLOption { return func(r *htmlRenderer) { r.title = t } }

// WithHTMLSVGOptions passes options through to the embedded SVG renderer.
func WithHTMLSVGOptions(opts ...SVGOption) HTMLOption {
	return func(r *htmlRenderer) { r.svgOpts = opts }
}

// RenderHTML renders a diagram as a self-contained HTML page.
//
// The page embeds the SVG output with a mouse pan/zoom script and the
// diagram JSON in a data script tag, so downstream tooling can read the
// positions back without parsing SVG. The page has no external
// dependencies and works from a file:// URL.
func RenderHTML(d layout.Diagram, opts ...HTMLOption) ([]byte, error) {
	r := htmlRenderer{title: "Tree Diagram"}
	for _, opt := range opts {
		opt(&r)
	}

	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode diagram: %w", err)
	}
	svgDoc := RenderSVG(d, r.svgOpts...)

	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	buf.WriteString("<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&buf, "<title>%s</title>\n", html.EscapeString(r.title))
	buf.WriteString("<style>html,body{margin:0;height:100%}svg{width:100%;height:100%;cursor:grab}</style>\n")
	buf.WriteString("</head>\n<body>\n")
	buf.Write(svgDoc)
	fmt.Fprintf(&buf, "<script type=\"application/json\" id=\"diagram-data\">%s</script>\n", data)
	fmt.Fprintf(&buf, "<script>%s\n</script>\n", htmlPanZoomJS)
	buf.WriteString("</body>\n</html>\n")
	return buf.Bytes(), nil
}
