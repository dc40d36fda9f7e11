// Package pathutil implements the lexical path normalization and search-path
// splitting rules the rest of the Packer relies on for node identity and
// prefix comparisons.
package pathutil

import (
	"os"
	"path/filepath"
	"strings"
)

// systemPrefixes are library locations assumed to already exist, identically,
// on any machine the dist is copied to. References into them are elided from
// the closure rather than followed.
var systemPrefixes = []string{
	"/usr/lib/",
	"/System/Library/Frameworks/",
	"/System/Library/PrivateFrameworks/",
}

// Normalize lexically canonicalizes path: it collapses "." and ".." components
// and repeated separators without touching the filesystem, so it never
// resolves symlinks and never requires the path to exist. Node identity
// throughout the Packer is this normalized form, not the result of
// filepath.EvalSymlinks.
func Normalize(path string) string {
	if path == "" {
		return path
	}
	abs := path
	if !filepath.IsAbs(abs) {
		// Callers are expected to pass absolute paths; best-effort join
		// against the working directory keeps this total.
		if wd, err := os.Getwd(); err == nil {
			abs = filepath.Join(wd, abs)
		}
	}

	var out []string
	for _, c := range strings.Split(abs, string(filepath.Separator)) {
		switch c {
		case "", ".":
			// skip: repeated separators and no-op components
		case "..":
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
		default:
			out = append(out, c)
		}
	}
	return string(filepath.Separator) + strings.Join(out, string(filepath.Separator))
}

// IsSystemLibrary reports whether path names a library expected to already
// exist on the host, under one of the well-known system library roots.
// System libraries are never copied into the dist.
func IsSystemLibrary(path string) bool {
	for _, prefix := range systemPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// SplitSearchPaths splits a colon-separated search path environment value
// (e.g. LD_LIBRARY_PATH, DYLD_LIBRARY_PATH) and keeps only entries that name
// an existing directory.
func SplitSearchPaths(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, dir := range strings.Split(value, ":") {
		if dir == "" {
			continue
		}
		if fi, err := os.Stat(dir); err == nil && fi.IsDir() {
			out = append(out, dir)
		}
	}
	return out
}
