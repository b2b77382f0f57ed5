package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/treelinehq/treeline/pkg/errors"
	"github.com/treelinehq/treeline/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	layoutFlags
	inputFormat string // input format: "json" or "yaml" (auto-detected)
	formats     string // output format(s), comma-separated
	style       string // visual style: "light" or "dark"
	title       string // HTML document title
	output      string // output file (single format) or base path (multiple)
	refresh     bool   // bypass the tree cache
	noCache     bool   // disable caching entirely
}

// renderCommand creates the render command for generating diagram artifacts.
// It supports SVG, HTML, DOT, PNG, and JSON output formats.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a tree diagram to SVG, HTML, DOT, PNG, or JSON",
		Long: `Render a JSON or YAML document as a tree diagram.

The document is normalized, laid out, and rendered to the requested
formats. Output paths are derived from the input file name unless
--output is given. With several formats the output is treated as a
base path and one file per format is written.

Examples:
  treeline render org.json                      # org.svg
  treeline render org.json -f html -o site/org  # site/org.html
  treeline render org.json -f svg,png,json      # org.svg, org.png, org.json
  treeline render org.yaml --expand-all --style dark`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args[0], &opts)
		},
	}

	opts.layoutFlags.register(cmd)
	cmd.Flags().StringVar(&opts.inputFormat, "input-format", "", "input format: json or yaml (auto-detected)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg (default), html, dot, png, json (comma-separated)")
	cmd.Flags().StringVar(&opts.style, "style", "", "visual style: light (default), dark")
	cmd.Flags().StringVar(&opts.title, "title", "", "HTML document title")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the tree cache")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, input string, opts *renderOpts) error {
	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := pipeline.Options{
		Input:       input,
		InputFormat: opts.inputFormat,
		Refresh:     opts.refresh,
		Formats:     parseFormats(opts.formats),
		Style:       opts.style,
		Title:       opts.title,
		Logger:      c.Logger,
	}
	opts.layoutFlags.apply(&popts)
	c.Config.Apply(&popts)

	sp := newSpinnerWithContext(cmd.Context(), fmt.Sprintf("Rendering %s", input))
	sp.Start()
	result, err := runner.Execute(cmd.Context(), popts)
	sp.Stop()
	if err != nil {
		return err
	}

	paths, err := writeArtifacts(result.Artifacts, popts.Formats, opts.output, input)
	if err != nil {
		return err
	}

	printSuccess("Rendered %s", input)
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats.NodeCount, result.Stats.VisibleCount, result.Stats.EdgeCount,
		result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit)
	return nil
}

// writeArtifacts writes rendered artifacts to disk and returns the paths
// written, in the order of formats. With a single format, output is used
// verbatim when set; otherwise output (or the input name) becomes the
// base path and each format appends its extension.
func writeArtifacts(artifacts map[string][]byte, formats []string, output, input string) ([]string, error) {
	if len(formats) == 1 && output != "" && filepath.Ext(output) != "" {
		if err := writeFile(output, artifacts[formats[0]]); err != nil {
			return nil, err
		}
		return []string{output}, nil
	}

	base := basePath(output, input)
	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		path := base + "." + format
		if err := writeFile(path, artifacts[format]); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, data []byte) error {
	if err := errors.ValidateOutputPath(path); err != nil {
		return err
	}
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = out.Write(data)
	return err
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .html, etc.), it strips that extension.
// This is used when generating multiple files (e.g., org.svg, org.png).
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
