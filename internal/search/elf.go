package search

import (
	"path/filepath"
	"strconv"
	"strings"
)

// ELFContext carries everything the ELF resolution order (spec §4.4) needs
// for one dependency lookup.
type ELFContext struct {
	// ObjectPath is the file whose DT_NEEDED entry is being resolved.
	ObjectPath string
	Cwd        string

	// RawRpaths/RawRunpaths are DT_RPATH/DT_RUNPATH entries straight off the
	// object, unsubstituted.
	RawRpaths    []string
	RawRunpaths  []string
	ExtraRpaths  []string // inherited from the loading chain (DT_RPATH is transitive)
	LDPreload    []string
	LDLibraryPath []string

	KnownLibs KnownLibs
}

// SubstituteELFRpath applies $ORIGIN/$LIB/$PLATFORM (and their ${...} brace
// forms) to a single rpath/runpath entry, resolved relative to objectPath's
// directory.
func SubstituteELFRpath(entry, objectPath string) string {
	origin := filepath.Dir(objectPath)
	lib := "lib"
	if strconv.IntSize == 64 {
		lib = "lib64"
	}
	platform := Platform()

	r := entry
	r = strings.ReplaceAll(r, "${ORIGIN}", origin)
	r = strings.ReplaceAll(r, "$ORIGIN", origin)
	r = strings.ReplaceAll(r, "${LIB}", lib)
	r = strings.ReplaceAll(r, "$LIB", lib)
	r = strings.ReplaceAll(r, "${PLATFORM}", platform)
	r = strings.ReplaceAll(r, "$PLATFORM", platform)
	return r
}

// ResolveELF implements the ELF dependency search order from spec §4.4.
func ResolveELF(name string, ctx ELFContext) (string, bool) {
	if strings.Contains(name, "/") {
		if filepath.IsAbs(name) {
			if pathExists(name) {
				return name, true
			}
		} else if p := filepath.Join(ctx.Cwd, name); pathExists(p) {
			return p, true
		}
		return "", false
	}

	if p, ok := findInDirs(name, ctx.LDPreload); ok {
		return p, true
	}

	if len(ctx.RawRunpaths) == 0 {
		if p, ok := findInSubstitutedDirs(name, ctx.RawRpaths, ctx.ObjectPath); ok {
			return p, true
		}
		if p, ok := findInDirs(name, ctx.ExtraRpaths); ok {
			return p, true
		}
	}

	if p, ok := findInDirs(name, ctx.LDLibraryPath); ok {
		return p, true
	}

	if p, ok := findInSubstitutedDirs(name, ctx.RawRunpaths, ctx.ObjectPath); ok {
		return p, true
	}

	if p, ok := queryLdconfig(name); ok {
		return p, true
	}

	if p, ok := findInDirs(name, []string{"/lib64", "/lib", "/usr/lib64", "/usr/lib"}); ok {
		return p, true
	}

	if p, ok := queryLdd(name, ctx.ObjectPath); ok {
		return p, true
	}

	if p, ok := ctx.KnownLibs[name]; ok {
		return p, true
	}

	return "", false
}

func findInSubstitutedDirs(name string, rawEntries []string, objectPath string) (string, bool) {
	for _, raw := range rawEntries {
		dir := SubstituteELFRpath(raw, objectPath)
		if candidate := filepath.Join(dir, name); pathExists(candidate) {
			return candidate, true
		}
	}
	return "", false
}
