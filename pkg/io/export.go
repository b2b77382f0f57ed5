package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/treelinehq/treeline/pkg/layout"
)

// WriteDiagram encodes a computed diagram as indented JSON.
// The output can be re-imported with [ReadDiagram] for round-trip
// processing, or consumed directly by external drawing tools.
func WriteDiagram(d layout.Diagram, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadDiagram decodes a diagram previously written by [WriteDiagram].
func ReadDiagram(r io.Reader) (layout.Diagram, error) {
	var d layout.Diagram
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return layout.Diagram{}, fmt.Errorf("decode: %w", err)
	}
	return d, nil
}

// ExportDiagram writes a diagram to a JSON file at path.
// This is a convenience wrapper around [WriteDiagram] for file-based output.
func ExportDiagram(d layout.Diagram, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteDiagram(d, f)
}

// ImportDiagram reads a diagram from a JSON file at path.
func ImportDiagram(path string) (layout.Diagram, error) {
	f, err := os.Open(path)
	if err != nil {
		return layout.Diagram{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadDiagram(f)
}
