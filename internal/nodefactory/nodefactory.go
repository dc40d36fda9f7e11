// Package nodefactory implements the node factory (C5): given a resolved
// path, it builds dependencies via binparse/search, classifies the path
// into a node.Pkg variant by checking it against the site-packages topology,
// and applies skip rules before a Node is ever added to the graph.
package nodefactory

import (
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/xerrors"

	"github.com/narang99/yarp/internal/binparse"
	"github.com/narang99/yarp/internal/digest"
	"github.com/narang99/yarp/internal/manifest"
	"github.com/narang99/yarp/internal/node"
	"github.com/narang99/yarp/internal/pathutil"
	"github.com/narang99/yarp/internal/search"
	"github.com/narang99/yarp/internal/sitepkgs"
)

// Factory builds Nodes for one gather run's fixed interpreter identity and
// skip configuration.
type Factory struct {
	SitePkgs   sitepkgs.SitePkgs
	Version    manifest.Version
	Executable string
	Cwd        string
	Env        map[string]string
	Skip       manifest.Skip
}

// Make classifies path: exec-prefix dynamic-modules tree, stdlib prefix
// tree, a site-packages root (first match), or — failing all three — a bare
// shared library. Anything else is a fatal error: only plain files inside a
// known tree are accepted. A nil Node with a nil error means the path was
// skipped.
func (f Factory) Make(path string, knownLibs search.KnownLibs, extraSearchPaths []string) (*node.Node, error) {
	p := pathutil.Normalize(path)
	maybeShared := binparse.IsSharedLibrary(p)

	if f.shouldSkip(p, maybeShared) {
		return nil, nil
	}
	if _, err := os.Stat(p); err != nil {
		return nil, xerrors.Errorf("nodefactory: %s does not exist: %w", path, err)
	}

	deps, isShared, err := f.buildDeps(p, knownLibs, extraSearchPaths)
	if err != nil {
		return nil, err
	}

	switch {
	case strings.HasPrefix(p, f.SitePkgs.LibDynloadDir+"/"):
		pkg, err := execPrefixPkg(p, f.SitePkgs.LibDynloadDir, f.Version, isShared)
		if err != nil {
			return nil, err
		}
		return &node.Node{Path: p, Pkg: pkg, Deps: deps}, nil

	case strings.HasPrefix(p, f.SitePkgs.StdlibDir+"/"):
		pkg, err := prefixPkg(p, f.SitePkgs.StdlibDir, f.Version, isShared)
		if err != nil {
			return nil, err
		}
		return &node.Node{Path: p, Pkg: pkg, Deps: deps}, nil
	}

	for root, alias := range f.SitePkgs.AliasByRoot {
		if strings.HasPrefix(p, root+"/") {
			pkg, err := sitePkgPkg(p, root, alias, isShared)
			if err != nil {
				return nil, err
			}
			return &node.Node{Path: p, Pkg: pkg, Deps: deps}, nil
		}
	}

	if !isShared {
		return nil, xerrors.Errorf("nodefactory: %s is not inside any known tree and is not a shared library", p)
	}
	sha, err := digest.Sum(p)
	if err != nil {
		return nil, xerrors.Errorf("nodefactory: digesting %s: %w", p, err)
	}
	return &node.Node{Path: p, Pkg: node.Binary{Sha: sha}, Deps: deps}, nil
}

// MakeWithSymlinks builds a manifest-declared dlopen target: it must be a
// shared library, and is materialized at a stable search-path location
// alongside any user-declared alias symlinks.
func (f Factory) MakeWithSymlinks(path string, symlinks []string, knownLibs search.KnownLibs, extraSearchPaths []string) (*node.Node, error) {
	p := pathutil.Normalize(path)
	deps, isShared, err := f.buildDeps(p, knownLibs, extraSearchPaths)
	if err != nil {
		return nil, err
	}
	if !isShared {
		return nil, xerrors.Errorf("nodefactory: %s is not a shared library, cannot make_with_symlinks", p)
	}
	if f.shouldSkip(p, isShared) {
		return nil, nil
	}
	sha, err := digest.Sum(p)
	if err != nil {
		return nil, xerrors.Errorf("nodefactory: digesting %s: %w", p, err)
	}
	return &node.Node{Path: p, Pkg: node.BinaryInLdPath{Sha: sha, Symlinks: symlinks}, Deps: deps}, nil
}

// MakeExecutable builds the single interpreter entrypoint Node every gather
// run is seeded from.
func (f Factory) MakeExecutable(path string) (*node.Node, error) {
	deps, _, err := f.buildDeps(path, nil, nil)
	if err != nil {
		return nil, err
	}
	return &node.Node{Path: path, Pkg: node.Executable{}, Deps: deps}, nil
}

func (f Factory) buildDeps(path string, knownLibs search.KnownLibs, extraSearchPaths []string) (node.Deps, bool, error) {
	if !binparse.IsSharedLibrary(path) && path != f.Executable {
		return node.PlainDeps{}, false, nil
	}

	ctx := binparse.Context{
		ObjectPath:      path,
		ExecutablePath:  f.Executable,
		Cwd:             f.Cwd,
		ExtraRpaths:     extraSearchPaths,
		LDPreload:       pathutil.SplitSearchPaths(f.Env["LD_PRELOAD"]),
		LDLibraryPath:   pathutil.SplitSearchPaths(f.Env["LD_LIBRARY_PATH"]),
		DyldLibraryPath: pathutil.SplitSearchPaths(f.Env["DYLD_LIBRARY_PATH"]),
		KnownLibs:       knownLibs,
	}
	bin, err := binparse.Parse(ctx)
	deps, err := node.FromBinParse(bin, err)
	if err != nil {
		return nil, false, xerrors.Errorf("nodefactory: parsing %s: %w", path, err)
	}
	_, isShared := deps.(node.BinaryDeps)
	return deps, isShared, nil
}

func (f Factory) shouldSkip(path string, isSharedLibrary bool) bool {
	for _, prefix := range f.Skip.Prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	if !isSharedLibrary {
		return false
	}
	name := filepath.Base(path)
	for _, lib := range f.Skip.Libs {
		if strings.TrimSpace(lib) == name {
			return true
		}
	}
	return false
}
