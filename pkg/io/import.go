package io

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/treelinehq/treeline/pkg/errors"
)

// Input formats accepted by [ReadDocument].
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// DetectFormat guesses the input format from a file extension.
// Unknown extensions (including stdin's "-") default to JSON.
func DetectFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ReadDocument decodes a raw tree document from r.
//
// The result is the loosely typed value the normalizer consumes: JSON
// objects become map[string]any, YAML mappings map[string]any or
// map[any]any depending on key types. No tree validation happens here;
// a document that is not an object simply normalizes to an empty tree.
func ReadDocument(r io.Reader, format string) (any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read input")
	}

	var doc any
	switch format {
	case FormatJSON, "":
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse JSON input")
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse YAML input")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported input format: %s", format)
	}
	return doc, nil
}

// ImportDocument reads a document from a file path.
// The path "-" reads from stdin. The format is detected from the
// extension unless format is non-empty.
func ImportDocument(path, format string) (any, error) {
	if format == "" {
		format = DetectFormat(path)
	}

	if path == "-" {
		return ReadDocument(os.Stdin, format)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	defer f.Close()
	return ReadDocument(f, format)
}
