// Package depgraph implements the dependency graph (C6): a directed acyclic
// graph keyed by canonical path, with edges running from a dependency to
// its dependent so that a topological sort always yields dependencies
// before the things that need them — the order the exporter (C8) requires
// when patching objects and materializing reals.
package depgraph

import (
	"golang.org/x/xerrors"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/narang99/yarp/internal/node"
)

type graphNode struct{ id int64 }

func (n graphNode) ID() int64 { return n.id }

// Graph is the closure under construction. It is built incrementally across
// the gather orchestrator's passes; nodes already present are never
// silently duplicated.
type Graph struct {
	inner     *simple.DirectedGraph
	idByPath  map[string]int64
	nodeByIdx map[int64]node.Node
	nextID    int64
}

// New returns an empty Graph.
func New() *Graph {
	return &Graph{
		inner:     simple.NewDirectedGraph(),
		idByPath:  map[string]int64{},
		nodeByIdx: map[int64]node.Node{},
	}
}

// AddNode inserts n, keyed by its path. If a node at that path already
// exists, replace controls whether n overwrites it; without replace the
// existing node is kept and n is discarded.
func (g *Graph) AddNode(n node.Node, replace bool) {
	if id, ok := g.idByPath[n.Path]; ok {
		if replace {
			g.nodeByIdx[id] = n
		}
		return
	}
	id := g.nextID
	g.nextID++
	g.idByPath[n.Path] = id
	g.nodeByIdx[id] = n
	g.inner.AddNode(graphNode{id: id})
}

// AddEdge records that dependent requires dependency: the edge runs
// dependency -> dependent, so toposort visits dependency first. Both paths
// must already have been added via AddNode.
func (g *Graph) AddEdge(dependencyPath, dependentPath string) error {
	depID, ok := g.idByPath[dependencyPath]
	if !ok {
		return xerrors.Errorf("depgraph: AddEdge: %s is not in the graph", dependencyPath)
	}
	dependentID, ok := g.idByPath[dependentPath]
	if !ok {
		return xerrors.Errorf("depgraph: AddEdge: %s is not in the graph", dependentPath)
	}
	g.inner.SetEdge(g.inner.NewEdge(graphNode{id: depID}, graphNode{id: dependentID}))
	return nil
}

// GetByPath returns the node stored at path, if any.
func (g *Graph) GetByPath(path string) (node.Node, bool) {
	id, ok := g.idByPath[path]
	if !ok {
		return node.Node{}, false
	}
	n, ok := g.nodeByIdx[id]
	return n, ok
}

// Contains reports whether path has already been added to the graph.
func (g *Graph) Contains(path string) bool {
	_, ok := g.idByPath[path]
	return ok
}

// IterNodes returns every node currently in the graph, in no particular
// order.
func (g *Graph) IterNodes() []node.Node {
	out := make([]node.Node, 0, len(g.nodeByIdx))
	for _, n := range g.nodeByIdx {
		out = append(out, n)
	}
	return out
}

// Toposort returns every node ordered so each dependency precedes every
// node that depends on it. It fails only if the graph contains a cycle,
// which should never happen for a dependency graph built from a real
// object's load commands.
func (g *Graph) Toposort() ([]node.Node, error) {
	sorted, err := topo.Sort(g.inner)
	if err != nil {
		if uo, ok := err.(topo.Unorderable); ok {
			return nil, xerrors.Errorf("depgraph: dependency cycle detected across %d strongly connected component(s)", len(uo))
		}
		return nil, xerrors.Errorf("depgraph: toposort: %w", err)
	}
	out := make([]node.Node, 0, len(sorted))
	for _, gn := range sorted {
		out = append(out, g.nodeByIdx[gn.ID()])
	}
	return out, nil
}

// DependenciesOf returns the nodes that path directly depends on (the
// graph's predecessors, since edges run dependency -> dependent).
func (g *Graph) DependenciesOf(path string) ([]node.Node, error) {
	id, ok := g.idByPath[path]
	if !ok {
		return nil, xerrors.Errorf("depgraph: %s is not in the graph", path)
	}
	it := g.inner.To(id)
	var out []node.Node
	for it.Next() {
		out = append(out, g.nodeByIdx[it.Node().ID()])
	}
	return out, nil
}
