package pipeline

import (
	"context"
	"time"

	"github.com/treelinehq/treeline/pkg/errors"
	"github.com/treelinehq/treeline/pkg/layout"
	"github.com/treelinehq/treeline/pkg/observability"
	"github.com/treelinehq/treeline/pkg/render"
)

// RenderDiagram runs the render stage without caching: it produces one
// artifact per requested format from an already-computed diagram.
func RenderDiagram(ctx context.Context, d layout.Diagram, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := renderFormat(ctx, d, format, opts)
		if err != nil {
			observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
		}
		artifacts[format] = data
	}

	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), nil)
	return artifacts, nil
}

func renderFormat(ctx context.Context, d layout.Diagram, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatSVG:
		return render.RenderSVG(d, opts.svgOptions()...), nil
	case FormatHTML:
		return render.RenderHTML(d,
			render.WithHTMLTitle(opts.Title),
			render.WithHTMLSVGOptions(opts.svgOptions()...))
	case FormatDOT:
		return []byte(render.ToDOT(d, render.DOTOptions{})), nil
	case FormatPNG:
		return render.RenderPNG(ctx, d, render.DOTOptions{})
	case FormatJSON:
		return render.RenderJSON(d,
			render.WithJSONStyle(opts.Style),
			render.WithJSONFont(opts.font()))
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q", format)
	}
}

func (o *Options) svgOptions() []render.SVGOption {
	style, _ := render.StyleByName(o.Style)
	return []render.SVGOption{
		render.WithStyle(style),
		render.WithFont(o.font()),
		render.WithConnectorRadius(o.ConnectorRadius),
	}
}
