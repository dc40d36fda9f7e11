package depgraph

import (
	"testing"

	"github.com/narang99/yarp/internal/node"
)

func mockNode(path string) node.Node {
	return node.Node{Path: path, Pkg: node.Plain{}, Deps: node.PlainDeps{}}
}

func TestAddNodeSingle(t *testing.T) {
	g := New()
	g.AddNode(mockNode("/python"), false)
	if got := len(g.IterNodes()); got != 1 {
		t.Fatalf("IterNodes() has %d entries, want 1", got)
	}
}

func TestAddDuplicateNodeWithoutReplaceIsNoop(t *testing.T) {
	g := New()
	g.AddNode(mockNode("/python"), false)
	g.AddNode(mockNode("/python"), false)
	if got := len(g.IterNodes()); got != 1 {
		t.Fatalf("IterNodes() has %d entries, want 1", got)
	}
}

func TestToposortOrdersDependenciesBeforeDependents(t *testing.T) {
	g := New()
	g.AddNode(mockNode("/path/to/dep2.py"), false)
	g.AddNode(mockNode("libdep1"), false)
	g.AddNode(mockNode("libdep3"), false)
	g.AddNode(mockNode("/python"), false)

	mustEdge := func(dependency, dependent string) {
		t.Helper()
		if err := g.AddEdge(dependency, dependent); err != nil {
			t.Fatal(err)
		}
	}
	mustEdge("/path/to/dep2.py", "libdep1")
	mustEdge("/path/to/dep2.py", "libdep3")
	mustEdge("libdep1", "/python")
	mustEdge("libdep3", "/python")

	sorted, err := g.Toposort()
	if err != nil {
		t.Fatalf("Toposort() error = %v", err)
	}
	if len(sorted) != 4 {
		t.Fatalf("Toposort() has %d entries, want 4", len(sorted))
	}

	pos := map[string]int{}
	for i, n := range sorted {
		pos[n.Path] = i
	}
	assertBefore := func(a, b string) {
		t.Helper()
		if pos[a] >= pos[b] {
			t.Errorf("expected %s before %s, got positions %d and %d", a, b, pos[a], pos[b])
		}
	}
	assertBefore("/path/to/dep2.py", "libdep1")
	assertBefore("/path/to/dep2.py", "libdep3")
	assertBefore("libdep1", "/python")
	assertBefore("libdep3", "/python")
}

func TestDependenciesOfReturnsDirectPredecessorsOnly(t *testing.T) {
	g := New()
	g.AddNode(mockNode("/libtest"), false)
	g.AddNode(mockNode("/python"), false)
	if err := g.AddEdge("/libtest", "/python"); err != nil {
		t.Fatal(err)
	}

	deps, err := g.DependenciesOf("/python")
	if err != nil {
		t.Fatalf("DependenciesOf() error = %v", err)
	}
	if len(deps) != 1 || deps[0].Path != "/libtest" {
		t.Fatalf("DependenciesOf() = %+v, want [/libtest]", deps)
	}
}
