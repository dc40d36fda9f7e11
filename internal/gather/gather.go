// Package gather implements the orchestrator (C7): it seeds a graph from
// the manifest's executable and declared loads, walks the interpreter's own
// trees (dynamic-modules, standard library, site-packages) to discover
// everything else, and retries whatever failed to resolve once every
// already-found library is available as a known-libs fallback.
package gather

import (
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"

	"github.com/narang99/yarp/internal/depgraph"
	"github.com/narang99/yarp/internal/manifest"
	"github.com/narang99/yarp/internal/node"
	"github.com/narang99/yarp/internal/nodefactory"
	"github.com/narang99/yarp/internal/pathutil"
	"github.com/narang99/yarp/internal/search"
	"github.com/narang99/yarp/internal/sitepkgs"
)

// Result is everything a successful gather produces: the closed graph and
// the site-packages topology the launcher needs.
type Result struct {
	Graph    *depgraph.Graph
	SitePkgs sitepkgs.SitePkgs
}

// Run executes the full three-pass gather described in spec §4.7.
func Run(m *manifest.Manifest, cwd string) (*Result, error) {
	pkgs := sitepkgs.FromManifest(m)
	factory := nodefactory.Factory{
		SitePkgs:   pkgs,
		Version:    m.Python.Sys.Version,
		Executable: m.Python.Sys.Executable,
		Cwd:        cwd,
		Env:        m.Env,
		Skip:       m.Skip,
	}

	seeds, err := collectSeedPaths(m, pkgs)
	if err != nil {
		return nil, err
	}

	g := depgraph.New()

	exe, err := factory.MakeExecutable(m.Python.Sys.Executable)
	if err != nil {
		return nil, xerrors.Errorf("gather: pass 1: executable: %w", err)
	}
	g.AddNode(*exe, false)

	var failures []string
	for _, p := range seeds {
		if g.Contains(p) {
			continue
		}
		n, err := factory.Make(p, nil, nil)
		if err != nil {
			failures = append(failures, p)
			continue
		}
		if n == nil {
			continue
		}
		g.AddNode(*n, false)
	}

	for _, l := range m.Loads {
		n, err := factory.MakeWithSymlinks(l.Path, l.Symlinks, nil, nil)
		if err != nil {
			return nil, xerrors.Errorf("gather: manifest load %s: %w", l.Path, err)
		}
		if n != nil {
			g.AddNode(*n, false)
		}
	}
	for _, l := range m.Libs {
		if pathutil.IsSystemLibrary(l.Path) {
			continue
		}
		n, err := factory.Make(l.Path, nil, nil)
		if err != nil {
			return nil, xerrors.Errorf("gather: manifest lib %s: %w", l.Path, err)
		}
		if n != nil {
			g.AddNode(*n, false)
		}
	}

	if err := linkDeps(g, factory, nil); err != nil {
		return nil, xerrors.Errorf("gather: pass 2: %w", err)
	}

	for len(failures) > 0 {
		knownLibs := knownLibsFrom(g)
		var next []string
		for _, p := range failures {
			n, err := factory.Make(p, knownLibs, nil)
			if err != nil {
				next = append(next, p)
				continue
			}
			if n != nil {
				g.AddNode(*n, false)
			}
		}
		if len(next) >= len(failures) {
			return nil, xerrors.Errorf("gather: pass 3: %d node(s) still unresolved after a retry made no progress", len(next))
		}
		failures = next
		if err := linkDeps(g, factory, knownLibs); err != nil {
			return nil, xerrors.Errorf("gather: pass 3: %w", err)
		}
	}

	return &Result{Graph: g, SitePkgs: pkgs}, nil
}

// collectSeedPaths walks the dynamic-modules tree, the standard-library
// tree, and every top-level site-packages root, one errgroup goroutine per
// root since these walks are independent of each other.
func collectSeedPaths(m *manifest.Manifest, pkgs sitepkgs.SitePkgs) ([]string, error) {
	roots := []string{pkgs.LibDynloadDir, pkgs.StdlibDir}
	for root := range pkgs.AliasByRoot {
		if _, err := os.Stat(root); err != nil {
			continue
		}
		roots = append(roots, root)
	}

	resultsPerRoot := make([][]string, len(roots))
	var eg errgroup.Group
	for i, root := range roots {
		i, root := i, root
		eg.Go(func() error {
			paths, err := walkFiles(root, m.Skip.Prefixes)
			if err != nil {
				return xerrors.Errorf("gather: walking %s: %w", root, err)
			}
			resultsPerRoot[i] = paths
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var out []string
	for _, r := range resultsPerRoot {
		out = append(out, r...)
	}
	return out, nil
}

func walkFiles(root string, skipPrefixes []string) ([]string, error) {
	var out []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		for _, prefix := range skipPrefixes {
			if hasPathPrefix(path, prefix) {
				if info.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}
		if !info.IsDir() {
			out = append(out, path)
		}
		return nil
	})
	return out, err
}

func hasPathPrefix(path, prefix string) bool {
	return path == prefix || len(path) > len(prefix) && path[:len(prefix)] == prefix && path[len(prefix)] == '/'
}

// linkDeps walks every node currently in the graph and resolves its
// dependencies into edges, adding any newly-discovered dependency nodes
// along the way. Since those new nodes may themselves name dependencies not
// yet in the graph, it repeats until the node count stops growing.
func linkDeps(g *depgraph.Graph, factory nodefactory.Factory, knownLibs search.KnownLibs) error {
	for {
		before := len(g.IterNodes())
		for _, n := range g.IterNodes() {
			for _, depPath := range n.Deps.Paths() {
				if !g.Contains(depPath) {
					depNode, err := factory.Make(depPath, knownLibs, nil)
					if err != nil {
						return xerrors.Errorf("linking dependency %s of %s: %w", depPath, n.Path, err)
					}
					if depNode == nil {
						continue
					}
					g.AddNode(*depNode, false)
				}
				if err := g.AddEdge(depPath, n.Path); err != nil {
					return err
				}
			}
		}
		if len(g.IterNodes()) == before {
			return nil
		}
	}
}

func knownLibsFrom(g *depgraph.Graph) search.KnownLibs {
	out := search.KnownLibs{}
	for _, n := range g.IterNodes() {
		if _, ok := n.Deps.(node.BinaryDeps); ok {
			out[n.Name()] = n.Path
		}
	}
	return out
}
