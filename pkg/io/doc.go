// Package io provides input decoding and diagram serialization.
//
// # Overview
//
// This package handles the boundary between documents on disk (or stdin)
// and the in-memory types the rest of the library works with:
//
//   - Raw tree documents are decoded from JSON or YAML into the loosely
//     typed value that [tree.Normalize] consumes. Decoding is permissive
//     about shape; normalization decides what survives.
//   - Computed diagrams are exported to JSON and re-imported identically,
//     so external tools can consume positions without re-running layout.
//
// # Input Formats
//
// [ReadDocument] decodes a document from a reader, [ImportDocument] from
// a file path. The path "-" reads from stdin. The format is either given
// explicitly ("json", "yaml") or detected from the file extension, with
// JSON as the fallback.
//
// Any JSON or YAML document is accepted; the tree package decides which
// parts of it form a tree. YAML mappings are decoded with interface keys
// and handled downstream.
//
// # Diagram Export
//
// Use [WriteDiagram] to encode a computed diagram as indented JSON, and
// [ReadDiagram] to decode one. The export carries node positions, box
// sizes, edge control points, and the viewport, which is everything a
// consumer needs to draw without access to the layout engine:
//
//	var buf bytes.Buffer
//	if err := io.WriteDiagram(d, &buf); err != nil {
//	    log.Fatal(err)
//	}
//
// [ExportDiagram] and [ImportDiagram] are the file-path conveniences.
//
// [tree.Normalize]: github.com/treelinehq/treeline/pkg/tree.Normalize
package io
