// Package binparse implements the binary parser (C3): it classifies a file
// as ELF, Mach-O, or neither, and for recognized object files extracts
// identity, rpath/runpath entries, and dependency names — resolving each
// dependency through internal/search as it goes, exactly as the spec's data
// model requires (a Parsed Binary's dependency map holds resolved canonical
// paths, not raw strings).
package binparse

import (
	"errors"
	"strings"
)

// ErrNotBinary means path is not a recognized object file. Callers treat the
// node as Plain rather than failing.
var ErrNotBinary = errors.New("binparse: not a recognized object file")

// ErrUnsupportedArchitecture means path is a Mach-O file with no slice (or,
// for a thin file, no CPU type) matching the host architecture, or the host
// architecture has no Mach-O mapping. Callers treat the node as Plain rather
// than failing the whole gather.
var ErrUnsupportedArchitecture = errors.New("binparse: no slice matches host architecture")

// ErrUnresolvedDependency means at least one non-system DT_NEEDED/
// LC_LOAD_DYLIB entry could not be resolved against the current search
// context. Unlike ErrNotBinary/ErrUnsupportedArchitecture, callers must NOT
// downgrade this to a Plain node: the gather orchestrator instead queues the
// object for a retry once more libraries have been discovered (spec §4.7
// pass 3's known_libs fallback exists precisely to resolve this case).
var ErrUnresolvedDependency = errors.New("binparse: unresolved dependency")

// Kind identifies which object format a Binary was parsed from.
type Kind int

const (
	KindELF Kind = iota
	KindMachO
)

// ELF is the parsed form of an ELF shared object or executable.
type ELF struct {
	// SelfSoname is DT_SONAME if present, else the file's own base name.
	SelfSoname string

	// Needed maps each DT_NEEDED soname to its resolved canonical path.
	// Entries that resolve to a system library are left out. Entries that
	// could not be resolved are collected in Unresolved, and ParseELF then
	// fails with ErrUnresolvedDependency.
	Needed map[string]string

	// Unresolved holds DT_NEEDED sonames that C4 could not resolve.
	Unresolved []string

	RawRpaths      []string
	ResolvedRpaths []string

	RawRunpaths      []string
	ResolvedRunpaths []string
}

// MachO is the parsed form of a Mach-O shared library or executable.
type MachO struct {
	// SelfID is LC_ID_DYLIB's install name, if present.
	SelfID string

	// AllRpaths holds every LC_RPATH string in file order, raw (before
	// @loader_path/@executable_path substitution) — the patcher needs this
	// exact set to delete each one prior to rewriting (spec §4.9).
	AllRpaths []string

	// LoadDylibs maps each LC_LOAD_DYLIB (and weak/re-export variants)
	// string verbatim as it appears in the load command to its resolved
	// canonical path. System libraries are omitted.
	LoadDylibs map[string]string

	Unresolved []string
}

// Binary is the C3 output for a recognized object file.
type Binary struct {
	Kind  Kind
	ELF   *ELF
	MachO *MachO
}

// IsSharedLibrary reports whether the file extension marks path as a
// candidate shared library, the same cheap extension check the node factory
// and gather orchestrator use before ever touching file contents. The
// ".so." check recognizes versioned ELF sonames like "libfoo.so.1.2.3",
// which carry no ".so" file extension in the strict sense but are
// unambiguously shared libraries.
func IsSharedLibrary(path string) bool {
	return strings.HasSuffix(path, ".so") || strings.HasSuffix(path, ".dylib") || strings.Contains(path, ".so.")
}
