package tree

import (
	"encoding/json"
	"testing"

	"pgregory.net/rapid"

	"github.com/treelinehq/treeline/pkg/expand"
)

func mustDecode(t *testing.T, s string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return v
}

func TestNormalizeBasic(t *testing.T) {
	root := Normalize(mustDecode(t, `{"id":"r","label":"Root","children":[{"id":"a"},{"id":"b"}]}`))
	if root == nil {
		t.Fatal("Normalize returned nil for valid input")
	}
	if root.Count() != 3 {
		t.Errorf("node count = %d, want 3", root.Count())
	}
	if root.Label != "Root" {
		t.Errorf("root label = %q, want Root", root.Label)
	}
	for _, id := range []string{"a", "b"} {
		n := root.Find(id)
		if n == nil {
			t.Fatalf("node %s missing", id)
		}
		if n.Label != id {
			t.Errorf("label of %s = %q, want the id itself", id, n.Label)
		}
		if n.HasChildren() {
			t.Errorf("node %s should be a leaf", id)
		}
	}
}

func TestNormalizeNonObjectInput(t *testing.T) {
	for _, input := range []any{nil, "tree", 42.0, []any{map[string]any{"id": "x"}}, true} {
		if got := Normalize(input); got != nil {
			t.Errorf("Normalize(%v) = %+v, want nil", input, got)
		}
	}
}

func TestNormalizeLabelFallbacks(t *testing.T) {
	root := Normalize(mustDecode(t, `{"id":"r","name":"Display Name"}`))
	if root.Label != "Display Name" {
		t.Errorf("label = %q, want name fallback", root.Label)
	}

	root = Normalize(mustDecode(t, `{"id":"r"}`))
	if root.Label != "r" {
		t.Errorf("label = %q, want id fallback", root.Label)
	}
}

func TestNormalizeNumericID(t *testing.T) {
	root := Normalize(mustDecode(t, `{"id":7,"children":[{"id":7.5}]}`))
	if root.ID != "7" {
		t.Errorf("root id = %q, want 7", root.ID)
	}
	if len(root.Children) != 1 || root.Children[0].ID != "7.5" {
		t.Errorf("child id not stringified: %+v", root.Children)
	}
}

func TestNormalizeSynthesizesIDs(t *testing.T) {
	// A child without an id is never dropped just for that - synthesis
	// always succeeds.
	root := Normalize(mustDecode(t, `{"children":[{"label":"x"},{"label":"y"}]}`))
	if root.ID != "auto_1" {
		t.Errorf("root id = %q, want auto_1", root.ID)
	}
	if len(root.Children) != 2 {
		t.Fatalf("children = %d, want 2", len(root.Children))
	}
	if root.Children[0].ID != "auto_2" || root.Children[1].ID != "auto_3" {
		t.Errorf("child ids = %q, %q, want auto_2, auto_3",
			root.Children[0].ID, root.Children[1].ID)
	}
	if root.Children[0].Label != "x" {
		t.Errorf("child label = %q, want x", root.Children[0].Label)
	}
}

func TestNormalizeSyntheticIDsStablePerInvocation(t *testing.T) {
	input := mustDecode(t, `{"children":[{},{"children":[{}]}]}`)
	a := Normalize(input)
	b := Normalize(input)

	var idsA, idsB []string
	a.Walk(func(n *Node) bool { idsA = append(idsA, n.ID); return true })
	b.Walk(func(n *Node) bool { idsB = append(idsB, n.ID); return true })

	if len(idsA) != len(idsB) {
		t.Fatalf("node counts differ: %d vs %d", len(idsA), len(idsB))
	}
	for i := range idsA {
		if idsA[i] != idsB[i] {
			t.Errorf("id %d differs across invocations: %q vs %q", i, idsA[i], idsB[i])
		}
	}
}

func TestNormalizeDropsDuplicateIDs(t *testing.T) {
	root := Normalize(mustDecode(t, `{"id":"r","children":[{"id":"a"},{"id":"a"},{"id":"b"}]}`))
	if len(root.Children) != 2 {
		t.Fatalf("children = %d, want 2 (duplicate dropped)", len(root.Children))
	}
	if root.Children[0].ID != "a" || root.Children[1].ID != "b" {
		t.Errorf("surviving children = %q, %q", root.Children[0].ID, root.Children[1].ID)
	}
}

func TestNormalizeDropsMalformedChildren(t *testing.T) {
	root := Normalize(mustDecode(t, `{"id":"r","children":[42,"x",null,{"id":"ok"}]}`))
	if len(root.Children) != 1 || root.Children[0].ID != "ok" {
		t.Errorf("children = %+v, want only ok", root.Children)
	}
}

func TestNormalizeYAMLShapedMaps(t *testing.T) {
	input := map[any]any{
		"id": "r",
		"children": []any{
			map[any]any{"id": "a"},
		},
	}
	root := Normalize(input)
	if root == nil || len(root.Children) != 1 || root.Children[0].ID != "a" {
		t.Errorf("map[any]any input not normalized: %+v", root)
	}
}

func TestNormalizeUniqueIDsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		input := genRawTree(t, 3)
		root := Normalize(input)
		if root == nil {
			return
		}
		seen := map[string]bool{}
		root.Walk(func(n *Node) bool {
			if seen[n.ID] {
				t.Fatalf("duplicate id %q in normalized tree", n.ID)
			}
			seen[n.ID] = true
			return true
		})
	})
}

// genRawTree draws a random JSON-shaped tree with colliding, missing,
// and numeric ids mixed in.
func genRawTree(t *rapid.T, depth int) map[string]any {
	m := map[string]any{}
	switch rapid.IntRange(0, 3).Draw(t, "idKind") {
	case 0:
		m["id"] = rapid.StringMatching(`[a-c]{1,2}`).Draw(t, "id")
	case 1:
		m["id"] = float64(rapid.IntRange(0, 5).Draw(t, "numID"))
	case 2:
		// missing id
	case 3:
		m["id"] = ""
	}
	if rapid.Bool().Draw(t, "hasLabel") {
		m["label"] = rapid.StringMatching(`[a-z ]{0,8}`).Draw(t, "label")
	}
	if depth > 0 {
		n := rapid.IntRange(0, 3).Draw(t, "fanout")
		children := make([]any, 0, n)
		for i := 0; i < n; i++ {
			children = append(children, genRawTree(t, depth-1))
		}
		m["children"] = children
	}
	return m
}

func TestReduceVisibleCollapsedRoot(t *testing.T) {
	root := Normalize(mustDecode(t, `{"id":"r","children":[{"id":"a","children":[{"id":"c"}]},{"id":"b"}]}`))

	got := ReduceVisible(root, expand.NewSet())
	if got.ID != "r" {
		t.Errorf("root id = %q", got.ID)
	}
	if len(got.Children) != 0 {
		t.Errorf("collapsed root must have no visible children, got %d", len(got.Children))
	}
}

func TestReduceVisibleToggleRoot(t *testing.T) {
	root := Normalize(mustDecode(t, `{"id":"r","children":[{"id":"a","children":[{"id":"c"}]},{"id":"b"}]}`))

	got := ReduceVisible(root, expand.NewSet("r"))
	if len(got.Children) != 2 {
		t.Fatalf("visible children = %d, want 2", len(got.Children))
	}
	// "a" is visible but not expanded: its own children stay hidden.
	if len(got.Children[0].Children) != 0 {
		t.Error("children of unexpanded node must be hidden")
	}
	if got.Children[0].ID != "a" || got.Children[1].ID != "b" {
		t.Errorf("sibling order not preserved: %q, %q", got.Children[0].ID, got.Children[1].ID)
	}
}

func TestReduceVisibleAllExpanded(t *testing.T) {
	root := Normalize(mustDecode(t, `{"id":"r","children":[{"id":"a","children":[{"id":"c"}]},{"id":"b"}]}`))

	got := ReduceVisible(root, ExpandableIDs(root))
	if got.Count() != root.Count() {
		t.Errorf("fully expanded tree has %d nodes, want %d", got.Count(), root.Count())
	}
	root.Walk(func(n *Node) bool {
		if got.Find(n.ID) == nil {
			t.Errorf("id %s missing from fully expanded view", n.ID)
		}
		return true
	})
}

func TestReduceVisibleDoesNotMutateCanonical(t *testing.T) {
	root := Normalize(mustDecode(t, `{"id":"r","children":[{"id":"a"}]}`))
	before := root.Count()

	v := ReduceVisible(root, expand.NewSet("r"))
	v.Children[0].Label = "mutated"
	v.Children = nil

	if root.Count() != before || root.Children[0].Label != "a" {
		t.Error("canonical tree mutated through visible copy")
	}
}

func TestExpandableIDs(t *testing.T) {
	root := Normalize(mustDecode(t, `{"id":"r","children":[{"id":"a","children":[{"id":"c"}]},{"id":"b"}]}`))

	ids := ExpandableIDs(root)
	if !ids.Has("r") || !ids.Has("a") {
		t.Errorf("expandable = %v, want r and a", ids.IDs())
	}
	if ids.Has("b") || ids.Has("c") {
		t.Errorf("leaves must not be expandable: %v", ids.IDs())
	}
}
