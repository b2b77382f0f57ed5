// Package pipeline provides the core visualization pipeline.
//
// This package implements the complete normalize → reduce → layout →
// render pipeline that can be used by CLI, TUI, and embedding hosts. By
// centralizing this logic, we ensure consistent behavior across all
// entry points and avoid code duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Normalize: Decode the input document and build the canonical tree
//  2. Layout: Reduce to the visible subtree and compute positions
//  3. Render: Generate output in various formats (SVG, HTML, DOT, PNG, JSON)
//
// Each stage can be run independently or as part of the complete
// pipeline, and each stage result is cached by content hash.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Input:     "org.json",
//	    ExpandAll: true,
//	    Formats:   []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	// Normalize only
//	root, err := runner.Normalize(ctx, opts)
//
//	// Layout with an existing tree
//	d, err := runner.ComputeDiagram(ctx, root, opts)
//
//	// Render with an existing diagram
//	artifacts, err := runner.Render(ctx, d, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/treelinehq/treeline/pkg/cache"
	"github.com/treelinehq/treeline/pkg/errors"
	"github.com/treelinehq/treeline/pkg/expand"
	"github.com/treelinehq/treeline/pkg/layout"
	"github.com/treelinehq/treeline/pkg/render"
	"github.com/treelinehq/treeline/pkg/text"
	"github.com/treelinehq/treeline/pkg/tree"
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatHTML = "html"
	FormatDOT  = "dot"
	FormatPNG  = "png"
	FormatJSON = "json"
)

// DefaultStyle is the default visual style.
const DefaultStyle = "light"

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatHTML: true,
	FormatDOT:  true,
	FormatPNG:  true,
	FormatJSON: true,
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: svg, html, dot, png, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateStyle checks that a style name resolves.
func ValidateStyle(style string) error {
	if _, ok := render.StyleByName(style); !ok {
		return errors.New(errors.ErrCodeInvalidStyle,
			"invalid style: %q (must be one of: light, dark)", style)
	}
	return nil
}

// Options contains all configuration for the visualization pipeline.
// This struct supports JSON serialization for host requests.
type Options struct {
	// Input options. Either Input (a path, or "-" for stdin) or
	// Document (a pre-decoded value) must be set.
	Input       string `json:"input,omitempty"`
	InputFormat string `json:"input_format,omitempty"` // "json" or "yaml"; detected from the path when empty
	Document    any    `json:"-"`
	Refresh     bool   `json:"refresh,omitempty"` // Bypass the tree cache

	// View options. Expanded lists the ids whose children are visible;
	// ExpandAll overrides it and shows the whole tree.
	Expanded  []string `json:"expanded,omitempty"`
	ExpandAll bool     `json:"expand_all,omitempty"`

	// Layout options. Zero values fall back to the layout defaults.
	LevelGap        float64 `json:"level_gap,omitempty"`
	SiblingGap      float64 `json:"sibling_gap,omitempty"`
	Padding         float64 `json:"padding,omitempty"`
	MaxTextWidth    float64 `json:"max_text_width,omitempty"`
	ConnectorRadius float64 `json:"connector_radius,omitempty"`
	CurveCap        float64 `json:"curve_cap,omitempty"`
	FontFamily      string  `json:"font_family,omitempty"`
	FontSize        float64 `json:"font_size,omitempty"`
	LineHeight      float64 `json:"line_height,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Style   string   `json:"style,omitempty"`
	Title   string   `json:"title,omitempty"`

	// Runtime options (not serialized)
	Logger  *log.Logger  `json:"-"`
	Metrics text.Metrics `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Tree is the canonical normalized tree.
	Tree *tree.Node

	// TreeHash is the content hash of the canonical tree.
	TreeHash string

	// Diagram contains the positioned nodes, edges, and viewport.
	Diagram layout.Diagram

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount     int // Nodes in the canonical tree
	VisibleCount  int // Nodes in the visible subtree
	EdgeCount     int
	NormalizeTime time.Duration
	LayoutTime    time.Duration
	RenderTime    time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	TreeHit   bool // Whether the canonical tree came from cache
	LayoutHit bool // Whether the diagram came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// ValidateAndSetDefaults checks required fields and applies defaults for
// the full pipeline. This method is idempotent - calling it multiple
// times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForNormalize(); err != nil {
		return err
	}
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := ValidateStyle(o.Style); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForNormalize checks required fields for the normalize stage.
func (o *Options) ValidateForNormalize() error {
	if o.Input == "" && o.Document == nil {
		return errors.New(errors.ErrCodeInvalidInput, "input path or document is required")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.FontFamily == "" {
		o.FontFamily = text.DefaultFont.Family
	}
	if o.FontSize == 0 {
		o.FontSize = text.DefaultFont.Size
	}
	if o.LineHeight == 0 {
		o.LineHeight = o.FontSize * text.DefaultFont.LineHeight / text.DefaultFont.Size
	}
	if o.LevelGap == 0 {
		o.LevelGap = layout.DefaultLevelGap
	}
	if o.SiblingGap == 0 {
		o.SiblingGap = layout.DefaultSiblingGap
	}
	if o.Padding == 0 {
		o.Padding = layout.DefaultPadding
	}
	if o.MaxTextWidth == 0 {
		o.MaxTextWidth = layout.DefaultMaxTextWidth
	}
	if o.ConnectorRadius == 0 {
		o.ConnectorRadius = layout.DefaultConnectorRadius
	}
	if o.CurveCap == 0 {
		o.CurveCap = layout.DefaultCurveCap
	}
	if o.Metrics == nil {
		o.Metrics = text.Memoize(text.NewHeuristicMetrics(o.font()))
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Style == "" {
		o.Style = DefaultStyle
	}
	if o.Title == "" {
		o.Title = "Tree Diagram"
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	return nil
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	return ValidateStyle(o.Style)
}

func (o *Options) font() text.Font {
	return text.Font{Family: o.FontFamily, Size: o.FontSize, LineHeight: o.LineHeight}
}

// expandedSet resolves the view options against a canonical tree.
func (o *Options) expandedSet(root *tree.Node) expand.Set {
	if o.ExpandAll {
		return tree.ExpandableIDs(root)
	}
	s := expand.NewSet(o.Expanded...)
	s.Prune(tree.ExpandableIDs(root))
	return s
}

// layoutOptions translates pipeline options into layout options.
func (o *Options) layoutOptions() []layout.Option {
	return []layout.Option{
		layout.WithLevelGap(o.LevelGap),
		layout.WithSiblingGap(o.SiblingGap),
		layout.WithPadding(o.Padding),
		layout.WithMaxTextWidth(o.MaxTextWidth),
		layout.WithConnectorRadius(o.ConnectorRadius),
		layout.WithCurveCap(o.CurveCap),
		layout.WithMetrics(o.Metrics),
	}
}

// TreeKeyOpts returns cache key options for the normalize stage.
func (o *Options) TreeKeyOpts() cache.TreeKeyOpts {
	return cache.TreeKeyOpts{Format: o.InputFormat}
}

// LayoutKeyOpts returns cache key options for layout computation.
// The expanded snapshot must be the resolved one, not o.Expanded, so
// ExpandAll and pruning are reflected in the key.
func (o *Options) LayoutKeyOpts(expanded []string) cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Expanded:        expanded,
		LevelGap:        o.LevelGap,
		SiblingGap:      o.SiblingGap,
		Padding:         o.Padding,
		MaxTextWidth:    o.MaxTextWidth,
		FontFamily:      o.FontFamily,
		FontSize:        o.FontSize,
		LineHeight:      o.LineHeight,
		ConnectorRadius: o.ConnectorRadius,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format: format,
		Style:  o.Style,
	}
}
