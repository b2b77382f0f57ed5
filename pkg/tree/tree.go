package tree

import (
	"fmt"
	"strconv"

	"github.com/treelinehq/treeline/pkg/expand"
)

// Node is a single vertex of the canonical tree.
//
// Nodes are immutable once Normalize returns: callers must treat the
// struct and its Children slice as read-only. Derived trees (visible
// subtrees, positioned diagrams) are always fresh copies.
type Node struct {
	ID       string  `json:"id"`                 // Unique within the tree; synthesized when absent from input
	Label    string  `json:"label"`              // Display text; falls back to "name", then to the id
	Children []*Node `json:"children,omitempty"` // Insertion order preserved from input
}

// HasChildren reports whether the node has at least one child.
func (n *Node) HasChildren() bool { return len(n.Children) > 0 }

// Walk visits the subtree rooted at n in depth-first pre-order.
// Returning false from fn stops the walk.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Count returns the number of nodes in the subtree rooted at n.
func (n *Node) Count() int {
	count := 0
	n.Walk(func(*Node) bool { count++; return true })
	return count
}

// Find returns the node with the given id, or nil if absent.
func (n *Node) Find(id string) *Node {
	var found *Node
	n.Walk(func(node *Node) bool {
		if node.ID == id {
			found = node
			return false
		}
		return true
	})
	return found
}

// normalizer carries per-invocation state through one Normalize pass.
// The synthetic-id counter is local to a single call, so re-normalizing
// the same input shape yields the same ids.
type normalizer struct {
	counter int
	seen    map[string]struct{}
}

// Normalize converts loosely-structured input into a canonical tree.
//
// The input is expected to be a decoded JSON or YAML value: a
// map[string]any with optional "id", "label", "name", and "children"
// fields. Normalize returns nil when input is not object-like. It never
// returns an error - malformed children are dropped, not reported.
//
// Ids are resolved from the "id" field (strings and numbers accepted)
// and synthesized as "auto_<n>" when missing, with n counting up in
// traversal order. Synthesized ids are therefore stable for a fixed
// input shape but not across structural edits; hosts that diff trees
// between normalizations should supply their own ids.
//
// A child whose resolved id duplicates an already-normalized id is
// dropped so that ids stay unique across the whole tree.
func Normalize(input any) *Node {
	m, ok := asObject(input)
	if !ok {
		return nil
	}
	n := &normalizer{seen: make(map[string]struct{})}
	return n.node(m)
}

func (nz *normalizer) node(m map[string]any) *Node {
	id := nz.resolveID(m)
	if _, dup := nz.seen[id]; dup {
		return nil
	}
	nz.seen[id] = struct{}{}

	node := &Node{ID: id, Label: resolveLabel(m, id)}

	rawChildren, ok := m["children"].([]any)
	if !ok {
		return node
	}
	for _, raw := range rawChildren {
		cm, ok := asObject(raw)
		if !ok {
			continue
		}
		if child := nz.node(cm); child != nil {
			node.Children = append(node.Children, child)
		}
	}
	return node
}

// resolveID extracts the id from the raw node, synthesizing one when the
// field is missing or unusable. Synthesis always succeeds; only a later
// collision can cause the node to be dropped.
func (nz *normalizer) resolveID(m map[string]any) string {
	if id := stringify(m["id"]); id != "" {
		return id
	}
	nz.counter++
	return fmt.Sprintf("auto_%d", nz.counter)
}

func resolveLabel(m map[string]any, id string) string {
	if l := stringify(m["label"]); l != "" {
		return l
	}
	if l := stringify(m["name"]); l != "" {
		return l
	}
	return id
}

// asObject reports whether v is an object-like value. YAML decoding can
// produce map[any]any, which is converted to the JSON shape.
func asObject(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			if ks, ok := k.(string); ok {
				out[ks] = val
			}
		}
		return out, true
	default:
		return nil, false
	}
}

// stringify renders scalar id/label values as strings.
// Non-scalar values (objects, arrays, booleans) yield "" so the caller
// falls through to the next source.
func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return ""
	}
}

// ReduceVisible derives the currently visible subtree.
//
// The root is always included regardless of set membership. A node's
// children are copied into the output only when the node's own id is in
// expanded; otherwise the output node has an empty child list even
// though the canonical node may have children. The canonical tree is
// never mutated - the result is a fresh copy safe to hand to layout.
func ReduceVisible(root *Node, expanded expand.Set) *Node {
	if root == nil {
		return nil
	}
	out := &Node{ID: root.ID, Label: root.Label}
	if !expanded.Has(root.ID) {
		return out
	}
	for _, c := range root.Children {
		out.Children = append(out.Children, ReduceVisible(c, expanded))
	}
	return out
}

// ExpandableIDs collects the ids of every canonical node with at least
// one child. The interaction layer uses this set to decide which nodes
// are togglable, independent of how much of the tree is visible.
func ExpandableIDs(root *Node) expand.Set {
	ids := expand.NewSet()
	root.Walk(func(n *Node) bool {
		if n.HasChildren() {
			ids.Add(n.ID)
		}
		return true
	})
	return ids
}
