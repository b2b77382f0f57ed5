package layout

import (
	"fmt"
	"reflect"
	"testing"

	"pgregory.net/rapid"

	"github.com/treelinehq/treeline/pkg/expand"
	"github.com/treelinehq/treeline/pkg/tree"
)

// node builds a canonical tree from a nested literal.
func node(id string, children ...*tree.Node) *tree.Node {
	return &tree.Node{ID: id, Label: id, Children: children}
}

func buildAll(t *testing.T, root *tree.Node, opts ...Option) Diagram {
	t.Helper()
	expandable := tree.ExpandableIDs(root)
	visible := tree.ReduceVisible(root, expandable)
	return Build(visible, expandable, opts...)
}

func TestBuildNil(t *testing.T) {
	d := Build(nil, expand.NewSet())
	if len(d.Nodes) != 0 || len(d.Edges) != 0 {
		t.Errorf("nil tree should lay out empty, got %d nodes %d edges", len(d.Nodes), len(d.Edges))
	}
}

func TestBuildSingleNode(t *testing.T) {
	d := buildAll(t, node("only"))
	if len(d.Nodes) != 1 {
		t.Fatalf("nodes = %d, want 1", len(d.Nodes))
	}
	if len(d.Edges) != 0 {
		t.Errorf("edges = %d, want 0", len(d.Edges))
	}
	n := d.Nodes[0]
	if n.Depth != 0 {
		t.Errorf("depth = %d, want 0", n.Depth)
	}
	if n.HasChildren {
		t.Error("leaf root must report no children")
	}
}

func TestBuildDepths(t *testing.T) {
	root := node("r", node("a", node("c")), node("b"))
	d := buildAll(t, root)

	want := map[string]int{"r": 0, "a": 1, "b": 1, "c": 2}
	for id, depth := range want {
		n, ok := d.Node(id)
		if !ok {
			t.Fatalf("node %s missing", id)
		}
		if n.Depth != depth {
			t.Errorf("depth(%s) = %d, want %d", id, n.Depth, depth)
		}
	}
}

func TestDepthMeasuredFromVisibleRoot(t *testing.T) {
	// With only "a" hidden behind a collapsed root elsewhere, depths in
	// this branch still count from the visible root.
	root := node("r", node("a", node("c"), node("d")))
	expandable := tree.ExpandableIDs(root)

	visible := tree.ReduceVisible(root, expand.NewSet("r"))
	d := Build(visible, expandable)

	a, _ := d.Node("a")
	if a.Depth != 1 {
		t.Errorf("depth(a) = %d, want 1", a.Depth)
	}
	if _, ok := d.Node("c"); ok {
		t.Error("collapsed descendant must not be positioned")
	}
	if !a.HasChildren {
		t.Error("collapsed node must keep its canonical expandability")
	}
}

func TestBuildIdempotent(t *testing.T) {
	root := node("r", node("alpha"), node("beta", node("gamma")), node("delta"))
	a := buildAll(t, root)
	b := buildAll(t, root)
	if !reflect.DeepEqual(a, b) {
		t.Error("identical inputs must produce bit-identical diagrams")
	}
}

func TestSiblingBoxesDisjoint(t *testing.T) {
	root := node("r",
		node("short"),
		node("a much longer label that wraps into several lines of text"),
		node("mid sized label"),
	)
	d := buildAll(t, root)

	assertNoSiblingOverlap(t, d)
}

func TestParentCenteredBetweenOuterChildren(t *testing.T) {
	root := node("r", node("a"), node("b"), node("c"))
	d := buildAll(t, root)

	r, _ := d.Node("r")
	a, _ := d.Node("a")
	c, _ := d.Node("c")
	mid := (a.Y + c.Y) / 2
	if diff := r.Y - mid; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("parent y = %v, want midpoint %v", r.Y, mid)
	}
}

func TestSiblingOrderMatchesInput(t *testing.T) {
	root := node("r", node("first"), node("second"), node("third"))
	d := buildAll(t, root)

	f, _ := d.Node("first")
	s, _ := d.Node("second")
	th, _ := d.Node("third")
	if !(f.Y < s.Y && s.Y < th.Y) {
		t.Errorf("sibling order not preserved: %v %v %v", f.Y, s.Y, th.Y)
	}
}

func TestEdgeGeometry(t *testing.T) {
	root := node("p", node("c"))
	d := buildAll(t, root, WithConnectorRadius(6))

	if len(d.Edges) != 1 {
		t.Fatalf("edges = %d, want 1", len(d.Edges))
	}
	e := d.Edges[0]
	if e.ID != "p->c" {
		t.Errorf("edge id = %q, want p->c", e.ID)
	}

	p, _ := d.Node("p")
	c, _ := d.Node("c")
	if got, want := e.Source.X, p.X+2*6+p.BoxW; got != want {
		t.Errorf("source x = %v, want trailing edge + radius = %v", got, want)
	}
	if e.Source.Y != p.Y {
		t.Errorf("source y = %v, want parent anchor %v", e.Source.Y, p.Y)
	}
	if e.Target.X != c.X || e.Target.Y != c.Y {
		t.Errorf("target = %+v, want child anchor (%v, %v)", e.Target, c.X, c.Y)
	}

	// Control points flatten toward the endpoints.
	if !(e.C1.X > e.Source.X && e.C2.X < e.Target.X) {
		t.Errorf("control points not between endpoints: %+v %+v", e.C1, e.C2)
	}
	if e.C1.Y != e.Source.Y || e.C2.Y != e.Target.Y {
		t.Error("control points must stay level with their endpoints")
	}
}

func TestCurveCapLimitsControlOffset(t *testing.T) {
	root := node("p", node("c"))
	d := buildAll(t, root, WithCurveCap(10))
	e := d.Edges[0]
	if off := e.C1.X - e.Source.X; off > 10 {
		t.Errorf("control offset %v exceeds cap 10", off)
	}
}

func TestBoxesInsideViewport(t *testing.T) {
	root := node("r", node("a", node("c"), node("d")), node("b"))
	d := buildAll(t, root, WithPadding(32))
	assertBoxesInViewport(t, d, 32, 6)
}

func TestViewportPaddingApplied(t *testing.T) {
	d := buildAll(t, node("only"), WithPadding(20))
	n := d.Nodes[0]
	if n.X != 20 {
		t.Errorf("min occupied x = %v, want exactly padding 20", n.X)
	}
	if got := n.Y - n.BoxH/2; got != 20 {
		t.Errorf("min occupied y = %v, want exactly padding 20", got)
	}
	if d.Viewport.MinX != 0 || d.Viewport.MinY != 0 {
		t.Errorf("viewport min = (%v, %v), want origin", d.Viewport.MinX, d.Viewport.MinY)
	}
}

func TestLayoutProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		root := genTree(t, "n", 3)
		expandable := tree.ExpandableIDs(root)
		visible := tree.ReduceVisible(root, expandable)
		d := Build(visible, expandable)

		if len(d.Nodes) != root.Count() {
			t.Fatalf("positioned %d of %d nodes", len(d.Nodes), root.Count())
		}
		if len(d.Edges) != root.Count()-1 {
			t.Fatalf("edges = %d, want %d", len(d.Edges), root.Count()-1)
		}

		// Positioned ids are exactly the reachable canonical ids.
		for _, n := range d.Nodes {
			if root.Find(n.ID) == nil {
				t.Fatalf("positioned id %q not in canonical tree", n.ID)
			}
		}

		checkNoSiblingOverlap(t, root, &d)
		checkBoxesInViewport(t, &d, DefaultPadding, DefaultConnectorRadius)
	})
}

func genTree(t *rapid.T, prefix string, depth int) *tree.Node {
	n := &tree.Node{
		ID:    prefix,
		Label: rapid.StringMatching(`[a-z]{1,10}( [a-z]{1,10}){0,5}`).Draw(t, "label"),
	}
	if depth > 0 {
		fanout := rapid.IntRange(0, 4).Draw(t, "fanout")
		for i := 0; i < fanout; i++ {
			n.Children = append(n.Children, genTree(t, fmt.Sprintf("%s.%d", prefix, i), depth-1))
		}
	}
	return n
}

// failer lets the overlap/viewport checks serve both testing.T and rapid.T.
type failer interface {
	Fatalf(format string, args ...any)
	Errorf(format string, args ...any)
}

func checkNoSiblingOverlap(t failer, root *tree.Node, d *Diagram) {
	root.Walk(func(n *tree.Node) bool {
		for i := 0; i < len(n.Children); i++ {
			for j := i + 1; j < len(n.Children); j++ {
				a, okA := d.Node(n.Children[i].ID)
				b, okB := d.Node(n.Children[j].ID)
				if !okA || !okB {
					continue
				}
				aTop, aBot := a.Y-a.BoxH/2, a.Y+a.BoxH/2
				bTop, bBot := b.Y-b.BoxH/2, b.Y+b.BoxH/2
				if aBot > bTop && bBot > aTop {
					t.Fatalf("sibling boxes %s and %s overlap: [%v,%v] vs [%v,%v]",
						a.ID, b.ID, aTop, aBot, bTop, bBot)
				}
			}
		}
		return true
	})
}

func checkBoxesInViewport(t failer, d *Diagram, padding, radius float64) {
	const eps = 1e-9
	for _, n := range d.Nodes {
		left := n.X
		right := n.X + 2*radius + n.BoxW
		top := n.Y - n.BoxH/2
		bottom := n.Y + n.BoxH/2
		if left < padding-eps || top < padding-eps {
			t.Errorf("node %s box starts at (%v, %v), before padding %v", n.ID, left, top, padding)
		}
		if right > d.Viewport.MaxX+eps || bottom > d.Viewport.MaxY+eps {
			t.Errorf("node %s box ends at (%v, %v), beyond viewport (%v, %v)",
				n.ID, right, bottom, d.Viewport.MaxX, d.Viewport.MaxY)
		}
	}
}

func assertNoSiblingOverlap(t *testing.T, d Diagram) {
	t.Helper()
	for i := 0; i < len(d.Nodes); i++ {
		for j := i + 1; j < len(d.Nodes); j++ {
			a, b := d.Nodes[i], d.Nodes[j]
			if a.Depth != b.Depth {
				continue
			}
			aTop, aBot := a.Y-a.BoxH/2, a.Y+a.BoxH/2
			bTop, bBot := b.Y-b.BoxH/2, b.Y+b.BoxH/2
			if aBot > bTop && bBot > aTop {
				t.Errorf("boxes %s and %s overlap vertically", a.ID, b.ID)
			}
		}
	}
}

func assertBoxesInViewport(t *testing.T, d Diagram, padding, radius float64) {
	t.Helper()
	checkBoxesInViewport(t, &d, padding, radius)
}
