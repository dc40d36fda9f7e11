// Package node defines the closure's unit of work: a Node pairs a resolved
// path with a Pkg (how it should be packaged into the dist) and a Deps (what
// it depends on). Node identity is the path alone — two Nodes with the same
// path are the same node, regardless of how their Pkg/Deps were computed —
// which is why depgraph keys its graph by path string rather than by Node
// value.
package node

import "github.com/narang99/yarp/internal/manifest"

// Pkg describes how a Node's content reaches the dist: where its reals/farm
// live and what its destination looks like. It is a closed set of variants,
// modeled as a sealed interface the way this module prefers over an
// open-ended type switch on an unexported tag: each concrete type below is
// the only thing satisfying it.
type Pkg interface {
	isPkg()
}

// PrefixPaths is shared shape between the four Prefix/ExecPrefix variants:
// the interpreter's own prefix the path was found under, its path relative
// to that prefix, and the interpreter version (for the versioned directory
// name in the dist).
type PrefixPaths struct {
	OriginalPrefix string
	RelPath        string
	Version        manifest.Version
}

// PrefixPlain is a standard-library file with no dynamic content: the
// exporter copies it verbatim.
type PrefixPlain struct{ PrefixPaths }

// PrefixBinary is a standard-library shared object: the exporter symlinks
// its destination to the content store.
type PrefixBinary struct {
	PrefixPaths
	Sha string
}

// ExecPrefixPlain is a dynamic-modules-tree file with no dynamic content.
type ExecPrefixPlain struct{ PrefixPaths }

// ExecPrefixBinary is a dynamic-modules-tree shared object (most commonly a
// compiled extension module).
type ExecPrefixBinary struct {
	PrefixPaths
	Sha string
}

// SitePkgPaths is shared shape between the two site-packages variants.
type SitePkgPaths struct {
	SitePackages string // the original top-level site-packages root this node was found under
	Alias        string // the random alias that root was assigned in the dist
	RelPath      string // this node's path relative to SitePackages
}

// SitePkgPlain is a site-packages file with no dynamic content.
type SitePkgPlain struct{ SitePkgPaths }

// SitePkgBinary is a site-packages shared object, most often a C extension.
type SitePkgBinary struct {
	SitePkgPaths
	Sha string
}

// Executable is the interpreter binary itself: the single entrypoint every
// closure is seeded from. There is exactly one per gather run.
type Executable struct{}

// Binary is a plain dependent library: kept in reals and given a symlink
// farm, but never placed on a search path on its own (spec's "libs" — found
// only because something else needs it).
type Binary struct{ Sha string }

// BinaryInLdPath is a manifest-declared load (dlopen target or extension
// seed): kept in reals, farmed, and also materialized at a stable,
// search-path-visible location, with any user-declared alias symlinks next
// to it.
type BinaryInLdPath struct {
	Sha      string
	Symlinks []string
}

// Plain is a file with no loader relevance: the exporter copies it as-is.
type Plain struct{}

func (PrefixPlain) isPkg()      {}
func (PrefixBinary) isPkg()     {}
func (ExecPrefixPlain) isPkg()  {}
func (ExecPrefixBinary) isPkg() {}
func (SitePkgPlain) isPkg()     {}
func (SitePkgBinary) isPkg()    {}
func (Executable) isPkg()       {}
func (Binary) isPkg()           {}
func (BinaryInLdPath) isPkg()   {}
func (Plain) isPkg()            {}

// IsSharedLibrary reports whether ext, a file extension, is ".so" or
// ".dylib". The node factory does not use it; it classifies paths with
// binparse.IsSharedLibrary.
func IsSharedLibrary(ext string) bool {
	return ext == ".so" || ext == ".dylib"
}
