package layout

import "github.com/treelinehq/treeline/pkg/text"

// Default spacing and sizing, in layout units.
const (
	DefaultLevelGap        = 240.0
	DefaultSiblingGap      = 16.0
	DefaultPadding         = 32.0
	DefaultMaxTextWidth    = 168.0
	DefaultPadX            = 12.0
	DefaultPadY            = 8.0
	DefaultConnectorRadius = 6.0
	DefaultCurveCap        = 48.0
)

// Options configures one layout pass. All fields have working defaults;
// hosts override them through the With* functional options.
type Options struct {
	// LevelGap is the horizontal distance between depth levels.
	LevelGap float64
	// SiblingGap is the minimum vertical distance between sibling boxes.
	SiblingGap float64
	// Padding is the viewport margin on every side.
	Padding float64
	// MaxTextWidth is the wrap threshold for labels.
	MaxTextWidth float64
	// PadX and PadY pad the wrapped text inside each box.
	PadX, PadY float64
	// ConnectorRadius offsets box edges and edge endpoints from the
	// node anchor so curves clear the connector markers.
	ConnectorRadius float64
	// CurveCap bounds the horizontal offset of Bezier control points.
	CurveCap float64
	// Metrics supplies text measurement. Defaults to memoized
	// heuristic metrics over text.DefaultFont.
	Metrics text.Metrics
}

// Option mutates Options before a layout pass.
type Option func(*Options)

// WithLevelGap sets the horizontal distance between depth levels.
func WithLevelGap(gap float64) Option { return func(o *Options) { o.LevelGap = gap } }

// WithSiblingGap sets the minimum vertical distance between siblings.
func WithSiblingGap(gap float64) Option { return func(o *Options) { o.SiblingGap = gap } }

// WithPadding sets the viewport margin.
func WithPadding(p float64) Option { return func(o *Options) { o.Padding = p } }

// WithMaxTextWidth sets the label wrap threshold.
func WithMaxTextWidth(w float64) Option { return func(o *Options) { o.MaxTextWidth = w } }

// WithBoxPadding sets the horizontal and vertical text padding.
func WithBoxPadding(x, y float64) Option {
	return func(o *Options) { o.PadX, o.PadY = x, y }
}

// WithConnectorRadius sets the connector marker offset.
func WithConnectorRadius(r float64) Option { return func(o *Options) { o.ConnectorRadius = r } }

// WithCurveCap bounds the Bezier control point offset.
func WithCurveCap(c float64) Option { return func(o *Options) { o.CurveCap = c } }

// WithMetrics plugs in a text measurement implementation. The same
// implementation must be used for rendering, or boxes will clip.
func WithMetrics(m text.Metrics) Option { return func(o *Options) { o.Metrics = m } }

// defaultMetrics is shared across passes so label measurements are
// cached process-wide for the default font.
var defaultMetrics = text.Memoize(text.NewHeuristicMetrics(text.DefaultFont))

func buildOptions(opts []Option) Options {
	o := Options{
		LevelGap:        DefaultLevelGap,
		SiblingGap:      DefaultSiblingGap,
		Padding:         DefaultPadding,
		MaxTextWidth:    DefaultMaxTextWidth,
		PadX:            DefaultPadX,
		PadY:            DefaultPadY,
		ConnectorRadius: DefaultConnectorRadius,
		CurveCap:        DefaultCurveCap,
		Metrics:         defaultMetrics,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Metrics == nil {
		o.Metrics = defaultMetrics
	}
	return o
}
