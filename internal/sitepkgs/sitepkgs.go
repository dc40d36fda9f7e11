// Package sitepkgs computes site-packages topology (C11): it dedupes the
// manifest's declared module-search-path entries against the standard
// library and dynamic-modules directories, assigns each surviving top-level
// root a random alias so two environments with colliding top-level names
// never collide in the dist, and classifies every entry (nested or not)
// into the component the launcher must export.
package sitepkgs

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/narang99/yarp/internal/manifest"
)

// SitePkgs is the full topology computed from one manifest.
type SitePkgs struct {
	// Resolved is every module-search-path entry the manifest declared,
	// verbatim.
	Resolved []string

	// AliasByRoot maps a top-level site-packages root to its random alias.
	// Only top-level (non-nested) roots appear here.
	AliasByRoot map[string]string

	StdlibDir     string
	LibDynloadDir string

	// Components is the per-entry classification the launcher template
	// walks to build its module-search variable, in manifest order.
	Components []Component
}

// ComponentKind distinguishes the four ways a module-search-path entry maps
// into the dist.
type ComponentKind int

const (
	// RelativeToStdlib: the entry lives under the standard-library tree.
	RelativeToStdlib ComponentKind = iota
	// RelativeToLibDynload: the entry lives under the dynamic-modules tree.
	RelativeToLibDynload
	// TopLevel: the entry is itself an aliased site-packages root.
	TopLevel
	// RelativeToSitePkg: the entry is nested under an aliased root.
	RelativeToSitePkg
)

// Component is one manifest-declared module-search-path entry, classified.
type Component struct {
	Kind ComponentKind

	// RelPath is set for RelativeToStdlib, RelativeToLibDynload, and
	// RelativeToSitePkg: the entry's path relative to the base it was
	// classified against.
	RelPath string

	// Alias is set for TopLevel and RelativeToSitePkg: the top-level
	// root's assigned alias.
	Alias string
}

// FromManifest computes the full topology for one manifest's interpreter
// sys state and declared search path.
func FromManifest(m *manifest.Manifest) SitePkgs {
	sys := m.Python.Sys
	stdlib := stdlibDir(sys)
	libDynload := libDynloadDir(sys)

	withoutPrefixes := excludeExact(sys.Path, stdlib, libDynload)
	topLevel := onlyTopLevel(withoutPrefixes, append(append([]string{}, sys.Path...), stdlib, libDynload))
	aliases := assignAliases(topLevel)

	return SitePkgs{
		Resolved:      append([]string{}, sys.Path...),
		AliasByRoot:   aliases,
		StdlibDir:     stdlib,
		LibDynloadDir: libDynload,
		Components:    classifyAll(sys.Path, aliases, stdlib, libDynload),
	}
}

func stdlibDir(sys manifest.Sys) string {
	return joinPath(sys.Prefix, sys.Platlibdir, interpDirName(sys.Version))
}

func libDynloadDir(sys manifest.Sys) string {
	return joinPath(sys.ExecPrefix, sys.Platlibdir, interpDirName(sys.Version), "lib-dynload")
}

func interpDirName(v manifest.Version) string {
	return fmt.Sprintf("interp%d.%d%s", v.Major, v.Minor, v.ABIThread)
}

func joinPath(parts ...string) string {
	return strings.TrimRight(strings.Join(parts, "/"), "/")
}

func excludeExact(paths []string, exclude ...string) []string {
	excluded := map[string]bool{}
	for _, e := range exclude {
		excluded[e] = true
	}
	var out []string
	for _, p := range paths {
		if !excluded[p] {
			out = append(out, p)
		}
	}
	return out
}

// onlyTopLevel drops any entry that is a strict sub-path of another entry in
// allPaths, keeping only the shallowest roots — a nested site-packages
// declaration is attributed to its deepest enclosing top-level later in
// classification, not kept as its own root.
func onlyTopLevel(candidates []string, allPaths []string) []string {
	var out []string
	for _, p := range candidates {
		if !isSubPathOfAny(p, allPaths) {
			out = append(out, p)
		}
	}
	return out
}

func isSubPathOfAny(p string, others []string) bool {
	for _, other := range others {
		if p != other && strings.HasPrefix(p, other+"/") {
			return true
		}
	}
	return false
}

func assignAliases(roots []string) map[string]string {
	out := make(map[string]string, len(roots))
	for _, r := range roots {
		out[r] = randomAlias()
	}
	return out
}

const aliasCharset = "abcdefghijklmnopqrstuvwxyz"

func randomAlias() string {
	b := make([]byte, 10)
	for i := range b {
		b[i] = aliasCharset[rand.Intn(len(aliasCharset))]
	}
	return string(b)
}

func classifyAll(sysPath []string, aliases map[string]string, stdlib, libDynload string) []Component {
	var topLevelRoots []string
	for r := range aliases {
		topLevelRoots = append(topLevelRoots, r)
	}

	var out []Component
	for _, p := range sysPath {
		if p == stdlib || p == libDynload {
			continue
		}
		if alias, ok := aliases[p]; ok {
			out = append(out, Component{Kind: TopLevel, Alias: alias})
			continue
		}
		out = append(out, classifyNested(p, stdlib, libDynload, aliases, topLevelRoots))
	}
	return out
}

func classifyNested(p, stdlib, libDynload string, aliases map[string]string, topLevelRoots []string) Component {
	if rel, ok := relativeTo(p, stdlib); ok {
		return Component{Kind: RelativeToStdlib, RelPath: rel}
	}
	if rel, ok := relativeTo(p, libDynload); ok {
		return Component{Kind: RelativeToLibDynload, RelPath: rel}
	}
	for _, root := range topLevelRoots {
		if rel, ok := relativeTo(p, root); ok {
			return Component{Kind: RelativeToSitePkg, Alias: aliases[root], RelPath: rel}
		}
	}
	panic(fmt.Sprintf("sitepkgs: %s is not top-level and matches no known base (stdlib=%s lib_dynload=%s)", p, stdlib, libDynload))
}

func relativeTo(p, base string) (string, bool) {
	if p == base {
		return "", false
	}
	prefix := base + "/"
	if !strings.HasPrefix(p, prefix) {
		return "", false
	}
	return strings.TrimPrefix(p, prefix), true
}
