package cli

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/treelinehq/treeline/pkg/pipeline"
)

// parseOpts holds the command-line flags for the parse command.
type parseOpts struct {
	format  string // input format: "json" or "yaml" (auto-detected if empty)
	output  string // output file path (stdout if empty)
	refresh bool   // bypass the tree cache
	noCache bool   // disable caching entirely
}

// parseCommand creates the parse command for normalizing documents.
// It decodes a JSON or YAML document and prints the canonical tree.
func (c *CLI) parseCommand() *cobra.Command {
	var opts parseOpts

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Normalize a document into a canonical tree",
		Long: `Normalize a JSON or YAML document into a canonical tree.

Nodes are objects with optional "id", "label", "name", and "children"
fields. Missing ids are synthesized in traversal order, labels fall back
to the name and then the id, and malformed or duplicate children are
dropped rather than reported. The result is printed as canonical tree
JSON.

Use "-" to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runParse(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "input format: json or yaml (auto-detected)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the tree cache")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runParse(cmd *cobra.Command, input string, opts *parseOpts) error {
	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	root, err := runner.Normalize(cmd.Context(), pipeline.Options{
		Input:       input,
		InputFormat: opts.format,
		Refresh:     opts.refresh,
		Logger:      c.Logger,
	})
	if err != nil {
		return err
	}
	prog.done("Normalized " + input)

	out, err := openOutput(opts.output)
	if err != nil {
		return err
	}
	defer out.Close()

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(root); err != nil {
		return err
	}

	if opts.output != "" {
		printSuccess("Wrote canonical tree")
		printFile(opts.output)
		printStats(root.Count(), 0, 0, false)
	}
	return nil
}

// nopCloser wraps an io.Writer with a no-op Close method.
// It is used to make os.Stdout compatible with io.WriteCloser.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty, it returns os.Stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
