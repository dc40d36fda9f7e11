package exporter

import (
	"io"
	"os"
	"path/filepath"

	"github.com/google/renameio"
	"golang.org/x/xerrors"

	"github.com/narang99/yarp/internal/depgraph"
	"github.com/narang99/yarp/internal/node"
)

// Export materializes every node in the graph's topological order: reals
// first, then the per-node symlink farm pointing at each dependency's
// reals, then the patch (the caller supplies patchFn so this package never
// has to know about install_name_tool/patchelf directly), then the node's
// destination.
func Export(g *depgraph.Graph, dist string, patchFn func(n node.Node, realPath, farmDir string) error) error {
	order, err := g.Toposort()
	if err != nil {
		return xerrors.Errorf("exporter: %w", err)
	}

	for _, n := range order {
		realPath, hasReal, err := mkReal(n, dist)
		if err != nil {
			return xerrors.Errorf("exporter: reals for %s: %w", n.Path, err)
		}

		farmDir, hasFarm, err := mkSymlinkFarm(g, n, dist)
		if err != nil {
			return xerrors.Errorf("exporter: symlink farm for %s: %w", n.Path, err)
		}

		if hasReal && hasFarm && patchFn != nil {
			if err := patchFn(n, realPath, farmDir); err != nil {
				return xerrors.Errorf("exporter: patching %s: %w", n.Path, err)
			}
		}

		srcForDestination := n.Path
		if hasReal {
			srcForDestination = realPath
		}
		if err := placeAtDestination(n, srcForDestination, dist); err != nil {
			return xerrors.Errorf("exporter: destination for %s: %w", n.Path, err)
		}
	}
	return nil
}

func mkReal(n node.Node, dist string) (string, bool, error) {
	dest, ok := RealsPath(n, dist)
	if !ok {
		return "", false, nil
	}
	if err := copyFileAtomic(n.Path, dest); err != nil {
		return "", false, err
	}
	return dest, true, nil
}

func mkSymlinkFarm(g *depgraph.Graph, n node.Node, dist string) (string, bool, error) {
	farmDir, ok := SymlinkFarmPath(n, dist)
	if !ok {
		return "", false, nil
	}
	if err := os.MkdirAll(farmDir, 0o755); err != nil {
		return "", false, err
	}

	deps, err := g.DependenciesOf(n.Path)
	if err != nil {
		return "", false, err
	}
	for _, dep := range deps {
		depReal, ok := RealsPath(dep, dist)
		if !ok {
			continue
		}
		linkDest := filepath.Join(farmDir, filepath.Base(dep.Path))
		rel, err := filepath.Rel(farmDir, depReal)
		if err != nil {
			return "", false, xerrors.Errorf("relative path from %s to %s: %w", farmDir, depReal, err)
		}
		if err := replaceSymlink(rel, linkDest); err != nil {
			return "", false, err
		}
	}
	return farmDir, true, nil
}

func placeAtDestination(n node.Node, src, dist string) error {
	dest, ok := Destination(n, dist)
	if !ok {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}

	if _, hasReal := RealsPath(n, dist); hasReal {
		if !isWithinDist(dest, dist) {
			return xerrors.Errorf("refusing to symlink %s outside dist %s", dest, dist)
		}
		rel, err := filepath.Rel(filepath.Dir(dest), src)
		if err != nil {
			return err
		}
		if err := replaceSymlink(rel, dest); err != nil {
			return err
		}
		if pkg, ok := n.Pkg.(node.BinaryInLdPath); ok {
			for _, alias := range pkg.Symlinks {
				if alias == filepath.Base(dest) {
					continue
				}
				if err := replaceSymlink(filepath.Base(dest), filepath.Join(filepath.Dir(dest), alias)); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return copyFileAtomic(src, dest)
}

func isWithinDist(path, dist string) bool {
	rel, err := filepath.Rel(dist, path)
	if err != nil {
		return false
	}
	return rel != ".." && !hasDotDotPrefix(rel)
}

func hasDotDotPrefix(rel string) bool {
	return len(rel) >= 3 && rel[:3] == "../" || rel == ".."
}

func replaceSymlink(oldname, newname string) error {
	if _, err := os.Lstat(newname); err == nil {
		if err := os.Remove(newname); err != nil {
			return err
		}
	}
	return os.Symlink(oldname, newname)
}

func copyFileAtomic(src, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := renameio.TempFile("", dest)
	if err != nil {
		return err
	}
	defer out.Cleanup()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	if info, err := in.Stat(); err == nil {
		out.Chmod(info.Mode())
	}
	return out.CloseAtomicallyReplace()
}
