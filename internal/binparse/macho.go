package binparse

import (
	"runtime"
	"strings"

	macho "github.com/blacktop/go-macho"
	"golang.org/x/xerrors"

	"github.com/narang99/yarp/internal/pathutil"
	"github.com/narang99/yarp/internal/search"
)

// Mach-O CPU_TYPE values, straight from <mach/machine.h>. Defined locally
// rather than borrowed from go-macho/types so arch matching here never
// depends on that package's constant names, only on the numeric ABI.
const (
	cpuTypeX86_64 = 0x01000007
	cpuTypeArm64  = 0x0100000c
)

func hostCPUType() (int64, bool) {
	switch runtime.GOARCH {
	case "amd64":
		return cpuTypeX86_64, true
	case "arm64":
		return cpuTypeArm64, true
	default:
		return 0, false
	}
}

// ParseMachO reads a Mach-O (or fat/universal) object's load commands and
// resolves every LC_LOAD_DYLIB (and weak/re-export variants) through the
// loader-emulation core.
func ParseMachO(ctx Context) (*MachO, error) {
	want, ok := hostCPUType()
	if !ok {
		return nil, xerrors.Errorf("binparse: host arch %s has no Mach-O mapping: %w", runtime.GOARCH, ErrUnsupportedArchitecture)
	}

	f, err := openMachOSlice(ctx.ObjectPath, want)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := &MachO{LoadDylibs: map[string]string{}}

	var dylibs []string
	for _, l := range f.Loads {
		switch load := l.(type) {
		case *macho.Rpath:
			out.AllRpaths = append(out.AllRpaths, load.Path)
		case *macho.Dylib:
			name := load.Name
			if load.LoadCmd == macho.LC_ID_DYLIB {
				out.SelfID = name
				continue
			}
			dylibs = append(dylibs, name)
		}
	}

	for _, r := range out.AllRpaths {
		if strings.HasPrefix(r, "@rpath") {
			return nil, xerrors.Errorf("binparse: %s: LC_RPATH %q cannot be relative to @rpath", ctx.ObjectPath, r)
		}
	}

	for _, name := range dylibs {
		resolveMachODylib(ctx, out, name)
	}

	if len(out.Unresolved) > 0 {
		return nil, xerrors.Errorf("binparse: %s: unresolved load dylibs %v: %w", ctx.ObjectPath, out.Unresolved, ErrUnresolvedDependency)
	}

	return out, nil
}

func resolveMachODylib(ctx Context, out *MachO, name string) {
	searchCtx := search.MachOContext{
		ObjectPath:      ctx.ObjectPath,
		ExecutablePath:  ctx.ExecutablePath,
		Cwd:             ctx.Cwd,
		Rpaths:          substituteMachOAll(out.AllRpaths, ctx.ObjectPath, ctx.ExecutablePath),
		DyldLibraryPath: ctx.DyldLibraryPath,
		KnownLibs:       ctx.KnownLibs,
	}
	resolved, ok := search.ResolveMachO(name, searchCtx)
	if !ok {
		out.Unresolved = append(out.Unresolved, name)
		return
	}
	if pathutil.IsSystemLibrary(resolved) {
		return
	}
	out.LoadDylibs[name] = resolved
}

func substituteMachOAll(rpaths []string, objectPath, executablePath string) []string {
	if rpaths == nil {
		return nil
	}
	out := make([]string, len(rpaths))
	for i, r := range rpaths {
		out[i] = search.SubstituteMachORpath(r, objectPath, executablePath)
	}
	return out
}

// openMachOSlice opens path as Mach-O, selecting the fat-file slice matching
// wantCPU when path is a universal binary.
func openMachOSlice(path string, wantCPU int64) (*macho.File, error) {
	if fat, err := macho.OpenFat(path); err == nil {
		defer fat.Close()
		for _, arch := range fat.Arches {
			if int64(arch.CPU) == wantCPU {
				return arch.File, nil
			}
		}
		return nil, xerrors.Errorf("binparse: %s has no slice for cpu %#x: %w", path, wantCPU, ErrUnsupportedArchitecture)
	}

	f, err := macho.Open(path)
	if err != nil {
		return nil, xerrors.Errorf("binparse: %s (%v): %w", path, err, ErrNotBinary)
	}
	if int64(f.CPU) != wantCPU {
		f.Close()
		return nil, xerrors.Errorf("binparse: %s is cpu %#x, host wants %#x: %w", path, f.CPU, wantCPU, ErrUnsupportedArchitecture)
	}
	return f, nil
}
