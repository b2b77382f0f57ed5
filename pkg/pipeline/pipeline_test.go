package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/treelinehq/treeline/pkg/cache"
	"github.com/treelinehq/treeline/pkg/errors"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func testDocument() map[string]any {
	return map[string]any{
		"id": "root", "label": "Root",
		"children": []any{
			map[string]any{"id": "a", "children": []any{
				map[string]any{"id": "a1"},
			}},
			map[string]any{"id": "b"},
		},
	}
}

func TestExecuteWithDocument(t *testing.T) {
	runner := NewRunner(cache.NewMemoryCache(), nil, testLogger())
	defer runner.Close()

	result, err := runner.Execute(context.Background(), Options{
		Document:  testDocument(),
		ExpandAll: true,
		Formats:   []string{FormatSVG, FormatJSON},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if result.Stats.NodeCount != 4 {
		t.Errorf("NodeCount = %d, want 4", result.Stats.NodeCount)
	}
	if result.Stats.VisibleCount != 4 {
		t.Errorf("VisibleCount = %d, want 4", result.Stats.VisibleCount)
	}
	if result.Stats.EdgeCount != 3 {
		t.Errorf("EdgeCount = %d, want 3", result.Stats.EdgeCount)
	}
	if result.TreeHash == "" {
		t.Error("TreeHash should be set")
	}
	if !strings.Contains(string(result.Artifacts[FormatSVG]), "<svg") {
		t.Error("svg artifact missing")
	}
	if len(result.Artifacts[FormatJSON]) == 0 {
		t.Error("json artifact missing")
	}
}

func TestExecuteCollapsedRoot(t *testing.T) {
	runner := NewRunner(nil, nil, testLogger())
	defer runner.Close()

	// No expanded ids: only the root is visible.
	result, err := runner.Execute(context.Background(), Options{
		Document: testDocument(),
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Stats.VisibleCount != 1 {
		t.Errorf("VisibleCount = %d, want 1", result.Stats.VisibleCount)
	}
	if result.Stats.EdgeCount != 0 {
		t.Errorf("EdgeCount = %d, want 0", result.Stats.EdgeCount)
	}
}

func TestExecuteEmptyTree(t *testing.T) {
	runner := NewRunner(nil, nil, testLogger())
	defer runner.Close()

	_, err := runner.Execute(context.Background(), Options{
		Document: []any{"not", "a", "tree"},
	})
	if !errors.Is(err, errors.ErrCodeEmptyTree) {
		t.Errorf("want EMPTY_TREE, got %v", err)
	}
}

func TestExecuteLayoutAndRenderCaching(t *testing.T) {
	runner := NewRunner(cache.NewMemoryCache(), nil, testLogger())
	defer runner.Close()

	opts := Options{Document: testDocument(), ExpandAll: true}

	first, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	if first.CacheInfo.LayoutHit || first.CacheInfo.RenderHit {
		t.Error("first run should not hit the cache")
	}

	second, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !second.CacheInfo.LayoutHit {
		t.Error("second run should hit the layout cache")
	}
	if !second.CacheInfo.RenderHit {
		t.Error("second run should hit the render cache")
	}
	if second.Diagram.Viewport != first.Diagram.Viewport {
		t.Error("cached diagram should match the computed one")
	}
}

func TestExecuteExpandedSetChangesLayoutKey(t *testing.T) {
	runner := NewRunner(cache.NewMemoryCache(), nil, testLogger())
	defer runner.Close()

	ctx := context.Background()
	if _, err := runner.Execute(ctx, Options{Document: testDocument()}); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	// Different view state must not be served from the collapsed run.
	result, err := runner.Execute(ctx, Options{Document: testDocument(), Expanded: []string{"root"}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.CacheInfo.LayoutHit {
		t.Error("different expanded set should miss the layout cache")
	}
	if result.Stats.VisibleCount != 3 {
		t.Errorf("VisibleCount = %d, want 3", result.Stats.VisibleCount)
	}
}

func TestNormalizeFileCaching(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.json")
	if err := os.WriteFile(path, []byte(`{"id":"root","children":[{"id":"a"}]}`), 0644); err != nil {
		t.Fatal(err)
	}

	runner := NewRunner(cache.NewMemoryCache(), nil, testLogger())
	defer runner.Close()

	ctx := context.Background()
	if _, hit, err := runner.NormalizeWithCacheInfo(ctx, Options{Input: path}); err != nil || hit {
		t.Fatalf("first normalize: hit=%v err=%v", hit, err)
	}
	root, hit, err := runner.NormalizeWithCacheInfo(ctx, Options{Input: path})
	if err != nil {
		t.Fatalf("second normalize: %v", err)
	}
	if !hit {
		t.Error("second normalize should hit the tree cache")
	}
	if root.ID != "root" || len(root.Children) != 1 {
		t.Errorf("cached tree unexpected: %+v", root)
	}

	// Refresh bypasses the cache.
	if _, hit, err := runner.NormalizeWithCacheInfo(ctx, Options{Input: path, Refresh: true}); err != nil || hit {
		t.Errorf("refresh: hit=%v err=%v", hit, err)
	}
}

func TestNormalizeMissingFile(t *testing.T) {
	runner := NewRunner(nil, nil, testLogger())
	defer runner.Close()

	_, err := runner.Normalize(context.Background(), Options{
		Input: filepath.Join(t.TempDir(), "absent.json"),
	})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("want FILE_NOT_FOUND, got %v", err)
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	opts := Options{Document: map[string]any{"id": "x"}}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if opts.Style != DefaultStyle {
		t.Errorf("Style = %q, want %q", opts.Style, DefaultStyle)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats = %v, want [svg]", opts.Formats)
	}
	if opts.FontSize == 0 || opts.LevelGap == 0 {
		t.Error("layout defaults should be applied")
	}

	// Idempotent
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("second call: %v", err)
	}
}

func TestValidateAndSetDefaultsRejects(t *testing.T) {
	cases := []Options{
		{},
		{Document: map[string]any{"id": "x"}, Formats: []string{"bmp"}},
		{Document: map[string]any{"id": "x"}, Style: "neon"},
	}
	for i, opts := range cases {
		if err := opts.ValidateAndSetDefaults(); err == nil {
			t.Errorf("case %d should fail validation", i)
		}
	}
}

func TestValidateFormat(t *testing.T) {
	for _, f := range []string{FormatSVG, FormatHTML, FormatDOT, FormatPNG, FormatJSON} {
		if err := ValidateFormat(f); err != nil {
			t.Errorf("ValidateFormat(%q): %v", f, err)
		}
	}
	if err := ValidateFormat("bmp"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("want INVALID_FORMAT, got %v", err)
	}
}
