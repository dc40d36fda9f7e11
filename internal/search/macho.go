package search

import (
	"path/filepath"
	"strings"
)

// MachOContext carries everything the Mach-O resolution order (spec §4.4)
// needs for one load-command lookup.
type MachOContext struct {
	// ObjectPath is the file whose load command is being resolved.
	ObjectPath     string
	ExecutablePath string
	Cwd            string

	// Rpaths are the object's LC_RPATH strings, already substituted for
	// @loader_path/@executable_path (there is no $ORIGIN-style delayed
	// substitution on Mach-O).
	Rpaths          []string
	DyldLibraryPath []string

	KnownLibs KnownLibs
}

// SubstituteMachORpath resolves @loader_path and @executable_path in a single
// LC_RPATH string. A literal "@rpath/" prefix on an rpath itself is invalid
// (rpaths cannot be relative to other rpaths) and is reported as an error by
// the caller, not substituted here.
func SubstituteMachORpath(rpath, objectPath, executablePath string) string {
	r := rpath
	r = strings.ReplaceAll(r, "@loader_path", filepath.Dir(objectPath))
	r = strings.ReplaceAll(r, "@executable_path", filepath.Dir(executablePath))
	return r
}

// ResolveMachO implements the Mach-O per-load-command search order from spec
// §4.4 for a single dependency string taken off a load command.
func ResolveMachO(name string, ctx MachOContext) (string, bool) {
	switch {
	case strings.HasPrefix(name, "@rpath/"):
		tail := strings.TrimPrefix(name, "@rpath/")
		for _, rpath := range ctx.Rpaths {
			if candidate := filepath.Join(rpath, tail); pathExists(candidate) {
				return candidate, true
			}
		}

	case strings.HasPrefix(name, "@loader_path/"):
		tail := strings.TrimPrefix(name, "@loader_path/")
		candidate := filepath.Join(filepath.Dir(ctx.ObjectPath), tail)
		if pathExists(candidate) {
			return candidate, true
		}

	case strings.HasPrefix(name, "@executable_path/"):
		tail := strings.TrimPrefix(name, "@executable_path/")
		candidate := filepath.Join(filepath.Dir(ctx.ExecutablePath), tail)
		if pathExists(candidate) {
			return candidate, true
		}

	case filepath.IsAbs(name):
		if pathExists(name) {
			return name, true
		}

	default:
		if candidate := filepath.Join(ctx.Cwd, name); pathExists(candidate) {
			return candidate, true
		}
	}

	if base := filepath.Base(name); base != "" {
		if p, ok := findInDirs(base, ctx.DyldLibraryPath); ok {
			return p, true
		}
	}

	if p, ok := ctx.KnownLibs[filepath.Base(name)]; ok {
		return p, true
	}

	return "", false
}
