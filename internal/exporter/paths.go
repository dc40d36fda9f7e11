// Package exporter implements the content-addressed store, symlink farm,
// and destination tree (C8): for every node in topological order it
// materializes a real (content-addressed copy), a per-node symlink farm
// pointing at its dependencies' reals, patches the object (C9), and finally
// places it at its logical destination — a copy for plain files, a relative
// symlink back into reals for anything dynamic.
package exporter

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/narang99/yarp/internal/manifest"
	"github.com/narang99/yarp/internal/node"
)

// RealsPath returns where n's content-addressed copy lives, named
// <sha><ext> so that two nodes are stored once iff their content digests
// are equal, regardless of basename collisions between roots.
func RealsPath(n node.Node, dist string) (string, bool) {
	sha, ok := shaOf(n.Pkg)
	if !ok {
		return "", false
	}
	return filepath.Join(dist, "reals", "r", sha+realsExtension(n.Path)), true
}

func shaOf(pkg node.Pkg) (string, bool) {
	switch p := pkg.(type) {
	case node.SitePkgBinary:
		return p.Sha, true
	case node.Binary:
		return p.Sha, true
	case node.BinaryInLdPath:
		return p.Sha, true
	case node.PrefixBinary:
		return p.Sha, true
	case node.ExecPrefixBinary:
		return p.Sha, true
	default:
		return "", false
	}
}

// realsExtension preserves ".so"/".dylib" (including versioned sonames
// like "libfoo.so.1.2.3", which carry no trailing ".so" but are still
// unambiguously shared objects) rather than whatever trailing extension
// filepath.Ext would see.
func realsExtension(path string) string {
	switch {
	case strings.HasSuffix(path, ".dylib"):
		return ".dylib"
	case strings.HasSuffix(path, ".so") || strings.Contains(path, ".so."):
		return ".so"
	default:
		return filepath.Ext(path)
	}
}

// SymlinkFarmPath returns n's per-node symlink farm directory, if its Pkg
// kind has one.
func SymlinkFarmPath(n node.Node, dist string) (string, bool) {
	switch n.Pkg.(type) {
	case node.SitePkgPlain, node.Plain, node.PrefixPlain, node.ExecPrefixPlain:
		return "", false
	default:
		return filepath.Join(dist, "symlinks", filepath.Base(n.Path)), true
	}
}

// Destination returns where n ultimately lands in the dist tree.
func Destination(n node.Node, dist string) (string, bool) {
	switch pkg := n.Pkg.(type) {
	case node.SitePkgPlain:
		return sitePkgDestination(pkg.SitePkgPaths, dist), true
	case node.SitePkgBinary:
		return sitePkgDestination(pkg.SitePkgPaths, dist), true
	case node.ExecPrefixPlain:
		return execPrefixDestination(pkg.PrefixPaths, dist), true
	case node.ExecPrefixBinary:
		return execPrefixDestination(pkg.PrefixPaths, dist), true
	case node.PrefixPlain:
		return prefixDestination(pkg.PrefixPaths, dist), true
	case node.PrefixBinary:
		return prefixDestination(pkg.PrefixPaths, dist), true
	case node.Executable:
		return filepath.Join(dist, "interp", "bin", "interp"), true
	case node.BinaryInLdPath:
		return filepath.Join(dist, "lib", "l", filepath.Base(n.Path)), true
	case node.Plain, node.Binary:
		return "", false
	default:
		return "", false
	}
}

func sitePkgDestination(p node.SitePkgPaths, dist string) string {
	return filepath.Join(dist, "site_packages", p.Alias, p.RelPath)
}

// SitePkgRelativePath is the directory a given site-packages alias lives
// under, relative to dist — the launcher uses this to build the
// module-search path without needing to know the dist's full layout.
func SitePkgRelativePath(alias string) string {
	return filepath.Join("site_packages", alias)
}

// StdlibRelativePath is the directory a standard-library file lives under,
// relative to dist, for the given interpreter version.
func StdlibRelativePath(v manifest.Version) string {
	return filepath.Join("interp", "lib", interpDirName(v))
}

// LibDynloadRelativePath is the directory a dynamic-modules file lives
// under, relative to dist.
func LibDynloadRelativePath(v manifest.Version) string {
	return filepath.Join(StdlibRelativePath(v), "lib-dynload")
}

func interpDirName(v manifest.Version) string {
	return fmt.Sprintf("interp%d.%d%s", v.Major, v.Minor, v.ABIThread)
}

func prefixDestination(p node.PrefixPaths, dist string) string {
	return filepath.Join(dist, StdlibRelativePath(p.Version), p.RelPath)
}

func execPrefixDestination(p node.PrefixPaths, dist string) string {
	return filepath.Join(dist, LibDynloadRelativePath(p.Version), p.RelPath)
}
