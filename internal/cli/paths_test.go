package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBasePath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		input  string
		want   string
	}{
		{"empty output strips input ext", "", "org.json", "org"},
		{"empty output with dir", "", "data/org.yaml", "data/org"},
		{"output with format ext stripped", "out.svg", "org.json", "out"},
		{"output with html ext stripped", "site/diagram.html", "org.json", "site/diagram"},
		{"output without ext kept", "site/diagram", "org.json", "site/diagram"},
		{"output with unknown ext kept", "diagram.bak", "org.json", "diagram.bak"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := basePath(tt.output, tt.input); got != tt.want {
				t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
			}
		})
	}
}

func TestParseFormats(t *testing.T) {
	if got := parseFormats(""); got != nil {
		t.Errorf("parseFormats(\"\") = %v, want nil", got)
	}
	got := parseFormats("svg,png,json")
	want := []string{"svg", "png", "json"}
	if len(got) != len(want) {
		t.Fatalf("parseFormats = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("parseFormats[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestParseExpanded(t *testing.T) {
	if got := parseExpanded(""); got != nil {
		t.Errorf("parseExpanded(\"\") = %v, want nil", got)
	}
	got := parseExpanded("root,root.children.0")
	if len(got) != 2 || got[1] != "root.children.0" {
		t.Errorf("parseExpanded = %v", got)
	}
}

func TestWriteArtifactsSingleExplicitOutput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "diagram.svg")

	paths, err := writeArtifacts(map[string][]byte{"svg": []byte("<svg/>")}, []string{"svg"}, out, "org.json")
	if err != nil {
		t.Fatalf("writeArtifacts: %v", err)
	}
	if len(paths) != 1 || paths[0] != out {
		t.Fatalf("paths = %v, want [%s]", paths, out)
	}
	data, err := os.ReadFile(out)
	if err != nil || string(data) != "<svg/>" {
		t.Errorf("written data = %q, err = %v", data, err)
	}
}

func TestWriteArtifactsMultipleFormats(t *testing.T) {
	dir := t.TempDir()
	artifacts := map[string][]byte{
		"svg":  []byte("<svg/>"),
		"json": []byte("{}"),
	}

	paths, err := writeArtifacts(artifacts, []string{"svg", "json"}, filepath.Join(dir, "out"), "org.json")
	if err != nil {
		t.Fatalf("writeArtifacts: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("paths = %v, want 2 entries", paths)
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("missing artifact %s: %v", p, err)
		}
	}
	if filepath.Ext(paths[0]) != ".svg" || filepath.Ext(paths[1]) != ".json" {
		t.Errorf("paths = %v, want .svg then .json", paths)
	}
}

func TestWriteArtifactsDerivesFromInput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "org.json")

	paths, err := writeArtifacts(map[string][]byte{"svg": []byte("<svg/>")}, []string{"svg"}, "", input)
	if err != nil {
		t.Fatalf("writeArtifacts: %v", err)
	}
	want := filepath.Join(dir, "org.svg")
	if len(paths) != 1 || paths[0] != want {
		t.Errorf("paths = %v, want [%s]", paths, want)
	}
}
