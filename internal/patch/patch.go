// Package patch implements the rewriter (C9): it redirects every patched
// object's runtime references into its own symlink farm by shelling out to
// the host's native patching tools, exactly reproducing their order of
// operations — every intermediate state must still fit inside the object's
// existing load-command space, which is why rpaths are deleted before
// anything is added back.
package patch

import (
	"fmt"
	"os/exec"
	"path/filepath"

	"golang.org/x/xerrors"

	"github.com/narang99/yarp/internal/binparse"
)

func run(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return xerrors.Errorf("%s %v: %w (output: %s)", name, args, err, out)
	}
	return nil
}

func newRpathFor(prefix, realPath, symlinkFarm string) (string, error) {
	rel, err := filepath.Rel(filepath.Dir(realPath), symlinkFarm)
	if err != nil {
		return "", xerrors.Errorf("patch: relative path from %s to %s: %w", realPath, symlinkFarm, err)
	}
	return fmt.Sprintf("%s%s/", prefix, rel), nil
}

// ELF reproduces patchelf's exact sequence against an ELF real: remove
// every existing rpath, add the single new $ORIGIN rpath pointing at the
// symlink farm, then rewrite each DT_NEEDED entry to the farm-local
// basename.
func ELF(elf *binparse.ELF, realPath, symlinkFarm string) error {
	if err := run("patchelf", "--remove-rpath", realPath); err != nil {
		return err
	}
	rpath, err := newRpathFor("$ORIGIN/", realPath, symlinkFarm)
	if err != nil {
		return err
	}
	if err := run("patchelf", "--add-rpath", rpath, realPath); err != nil {
		return err
	}
	for old := range elf.Needed {
		newName := filepath.Base(old)
		if err := run("patchelf", "--replace-needed", old, newName, realPath); err != nil {
			return err
		}
	}
	return nil
}

// ELFForDestination adds the single rpath a destination object that is a
// separate file from its real needs to reach the shared symlink farm from
// its own directory. Export does not call it: it places every binary
// destination as a symlink to its real.
func ELFForDestination(destPath, realPath, symlinkFarm string) error {
	rpath, err := newRpathFor("$ORIGIN/", destPath, symlinkFarm)
	if err != nil {
		return err
	}
	return run("patchelf", "--add-rpath", rpath, destPath)
}

// MachO reproduces install_name_tool's exact sequence against a Mach-O
// real: delete every existing LC_RPATH first (to make room), rewrite every
// LC_LOAD_DYLIB to @rpath/<basename>, re-signing after each individual
// change, add the one new @loader_path rpath, set the dylib's own id to
// @rpath/<self-basename>, and re-sign a final time.
func MachO(mach *binparse.MachO, realPath, symlinkFarm string) error {
	for _, rpath := range mach.AllRpaths {
		if err := run("install_name_tool", "-delete_rpath", rpath, realPath); err != nil {
			return err
		}
	}

	for old := range mach.LoadDylibs {
		newName := dylibID(filepath.Base(old))
		if err := run("install_name_tool", "-change", old, newName, realPath); err != nil {
			return err
		}
		if err := signDylib(realPath); err != nil {
			return err
		}
	}

	rpath, err := newRpathFor("@loader_path/", realPath, symlinkFarm)
	if err != nil {
		return err
	}
	if err := run("install_name_tool", "-add_rpath", rpath, realPath); err != nil {
		return err
	}
	if err := run("install_name_tool", "-id", dylibID(filepath.Base(realPath)), realPath); err != nil {
		return err
	}
	return signDylib(realPath)
}

// MachOForDestination mirrors ELFForDestination: the one rpath a distinct
// Mach-O destination object needs to reach its real through the shared
// symlink farm.
func MachOForDestination(destPath, realPath, symlinkFarm string) error {
	rpath, err := newRpathFor("@loader_path/", destPath, symlinkFarm)
	if err != nil {
		return err
	}
	return run("install_name_tool", "-add_rpath", rpath, destPath)
}

func dylibID(libName string) string {
	return "@rpath/" + libName
}

func signDylib(path string) error {
	return run("codesign", "-s", "-", "-f", path)
}
