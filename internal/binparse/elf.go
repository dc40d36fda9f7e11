package binparse

import (
	"debug/elf"
	"path/filepath"
	"strings"

	"golang.org/x/xerrors"

	"github.com/narang99/yarp/internal/pathutil"
	"github.com/narang99/yarp/internal/search"
)

// ParseELF reads an ELF object's dynamic section and resolves every
// DT_NEEDED entry through the loader-emulation core, eliding system
// libraries the way the dist closure does throughout.
func ParseELF(ctx Context) (*ELF, error) {
	f, err := elf.Open(ctx.ObjectPath)
	if err != nil {
		return nil, xerrors.Errorf("binparse: %s (%v): %w", ctx.ObjectPath, err, ErrNotBinary)
	}
	defer f.Close()

	soname := filepath.Base(ctx.ObjectPath)
	if names, err := f.DynString(elf.DT_SONAME); err == nil && len(names) > 0 {
		soname = names[0]
	}

	rawRpaths := splitColonDynString(f, elf.DT_RPATH)
	rawRunpaths := splitColonDynString(f, elf.DT_RUNPATH)

	searchCtx := search.ELFContext{
		ObjectPath:    ctx.ObjectPath,
		Cwd:           ctx.Cwd,
		RawRpaths:     rawRpaths,
		RawRunpaths:   rawRunpaths,
		ExtraRpaths:   ctx.ExtraRpaths,
		LDPreload:     ctx.LDPreload,
		LDLibraryPath: ctx.LDLibraryPath,
		KnownLibs:     ctx.KnownLibs,
	}

	needed, err := f.DynString(elf.DT_NEEDED)
	if err != nil {
		return nil, xerrors.Errorf("binparse: reading DT_NEEDED of %s: %w", ctx.ObjectPath, err)
	}

	out := &ELF{
		SelfSoname:       soname,
		Needed:           map[string]string{},
		RawRpaths:        rawRpaths,
		ResolvedRpaths:   substituteAll(rawRpaths, ctx.ObjectPath),
		RawRunpaths:      rawRunpaths,
		ResolvedRunpaths: substituteAll(rawRunpaths, ctx.ObjectPath),
	}

	for _, name := range needed {
		resolved, ok := search.ResolveELF(name, searchCtx)
		if !ok {
			out.Unresolved = append(out.Unresolved, name)
			continue
		}
		if pathutil.IsSystemLibrary(resolved) {
			continue
		}
		out.Needed[name] = resolved
	}

	if len(out.Unresolved) > 0 {
		return nil, xerrors.Errorf("binparse: %s: unresolved DT_NEEDED entries %v: %w", ctx.ObjectPath, out.Unresolved, ErrUnresolvedDependency)
	}

	return out, nil
}

func splitColonDynString(f *elf.File, tag elf.DynTag) []string {
	values, err := f.DynString(tag)
	if err != nil || len(values) == 0 {
		return nil
	}
	var out []string
	for _, v := range values {
		for _, entry := range strings.Split(v, ":") {
			if entry != "" {
				out = append(out, entry)
			}
		}
	}
	return out
}

func substituteAll(entries []string, objectPath string) []string {
	if entries == nil {
		return nil
	}
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = search.SubstituteELFRpath(e, objectPath)
	}
	return out
}
