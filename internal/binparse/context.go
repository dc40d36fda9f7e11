package binparse

import "github.com/narang99/yarp/internal/search"

// Context carries everything C3 needs to both parse an object file and
// resolve every dependency it names, in one pass. It is the union of the
// ELF and Mach-O resolution contexts from internal/search, plus the file's
// own identity.
type Context struct {
	ObjectPath     string
	ExecutablePath string
	Cwd            string

	ExtraRpaths     []string
	LDPreload       []string
	LDLibraryPath   []string
	DyldLibraryPath []string

	KnownLibs search.KnownLibs
}
