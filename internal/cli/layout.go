package cli

import (
	"github.com/spf13/cobra"

	"github.com/treelinehq/treeline/pkg/io"
	"github.com/treelinehq/treeline/pkg/pipeline"
)

// layoutFlags holds the positioning flags shared by the layout and
// render commands. Zero values fall through to the engine defaults.
type layoutFlags struct {
	levelGap        float64
	siblingGap      float64
	padding         float64
	maxTextWidth    float64
	fontSize        float64
	connectorRadius float64
	curveCap        float64
	expand          string
	expandAll       bool
}

// register adds the shared layout flags to cmd.
func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.levelGap, "level-gap", 0, "horizontal distance between depth levels")
	cmd.Flags().Float64Var(&f.siblingGap, "sibling-gap", 0, "vertical distance between sibling subtrees")
	cmd.Flags().Float64Var(&f.padding, "padding", 0, "margin around the diagram")
	cmd.Flags().Float64Var(&f.maxTextWidth, "max-text-width", 0, "label wrap width in pixels")
	cmd.Flags().Float64Var(&f.fontSize, "font-size", 0, "label font size")
	cmd.Flags().Float64Var(&f.connectorRadius, "connector-radius", 0, "connector knob radius")
	cmd.Flags().Float64Var(&f.curveCap, "curve-cap", 0, "maximum edge curve control offset")
	cmd.Flags().StringVar(&f.expand, "expand", "", "node ids to expand (comma-separated)")
	cmd.Flags().BoolVar(&f.expandAll, "expand-all", false, "expand every node")
}

// apply copies the flag values onto pipeline options.
func (f *layoutFlags) apply(opts *pipeline.Options) {
	opts.LevelGap = f.levelGap
	opts.SiblingGap = f.siblingGap
	opts.Padding = f.padding
	opts.MaxTextWidth = f.maxTextWidth
	opts.FontSize = f.fontSize
	opts.ConnectorRadius = f.connectorRadius
	opts.CurveCap = f.curveCap
	opts.Expanded = parseExpanded(f.expand)
	opts.ExpandAll = f.expandAll
}

// layoutOpts holds the command-line flags for the layout command.
type layoutOpts struct {
	layoutFlags
	format  string
	output  string
	refresh bool
	noCache bool
}

// layoutCommand creates the layout command for computing positioned diagrams.
func (c *CLI) layoutCommand() *cobra.Command {
	var opts layoutOpts

	cmd := &cobra.Command{
		Use:   "layout [file]",
		Short: "Compute a positioned diagram for a tree",
		Long: `Compute a positioned diagram for a JSON or YAML document.

The document is normalized, reduced to the visible subtree according to
the expanded set, and laid out left-to-right with the tidy tree
algorithm. The result is printed as diagram JSON: positioned nodes,
edge curves, and the bounding viewport.

By default only the root is expanded. Use --expand to open specific
node ids, or --expand-all to show the whole tree.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd, args[0], &opts)
		},
	}

	opts.layoutFlags.register(cmd)
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "input format: json or yaml (auto-detected)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the tree cache")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runLayout(cmd *cobra.Command, input string, opts *layoutOpts) error {
	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := pipeline.Options{
		Input:       input,
		InputFormat: opts.format,
		Refresh:     opts.refresh,
		Logger:      c.Logger,
	}
	opts.layoutFlags.apply(&popts)
	c.Config.Apply(&popts)

	ctx := cmd.Context()
	prog := newProgress(c.Logger)

	root, err := runner.Normalize(ctx, popts)
	if err != nil {
		return err
	}

	d, err := runner.ComputeDiagram(ctx, root, popts)
	if err != nil {
		return err
	}
	prog.done("Computed layout")

	out, err := openOutput(opts.output)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := io.WriteDiagram(d, out); err != nil {
		return err
	}

	if opts.output != "" {
		printSuccess("Wrote diagram")
		printFile(opts.output)
		printStats(root.Count(), len(d.Nodes), len(d.Edges), false)
	}
	return nil
}
