package node

// Node is one file reachable from the closure: its canonical path, how it
// should be packaged (Pkg), and what it depends on (Deps).
//
// Node identity is Path alone. depgraph keys its underlying gonum graph by
// this string, never by comparing Node values, so two Gather passes that
// discover the same path with different Pkg guesses converge on the first
// one inserted (add_node's "replace" flag governs whether a later call may
// override it).
type Node struct {
	Path string
	Pkg  Pkg
	Deps Deps
}

// Name returns the final path component, mirroring path's own notion of a
// node's display name.
func (n Node) Name() string {
	for i := len(n.Path) - 1; i >= 0; i-- {
		if n.Path[i] == '/' {
			return n.Path[i+1:]
		}
	}
	return n.Path
}
