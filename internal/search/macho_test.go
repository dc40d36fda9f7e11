package search

import (
	"path/filepath"
	"testing"
)

func TestResolveMachORpath(t *testing.T) {
	dir := t.TempDir()
	rpathDir := filepath.Join(dir, "rpath")
	touch(t, filepath.Join(rpathDir, "libx.dylib"))

	ctx := MachOContext{
		ObjectPath: filepath.Join(dir, "obj.dylib"),
		Rpaths:     []string{rpathDir},
	}
	got, ok := ResolveMachO("@rpath/libx.dylib", ctx)
	want := filepath.Join(rpathDir, "libx.dylib")
	if !ok || got != want {
		t.Fatalf("ResolveMachO() = (%q, %v), want (%q, true)", got, ok, want)
	}
}

func TestResolveMachOLoaderPath(t *testing.T) {
	dir := t.TempDir()
	lib := filepath.Join(dir, "libx.dylib")
	touch(t, lib)

	ctx := MachOContext{ObjectPath: filepath.Join(dir, "obj.dylib")}
	got, ok := ResolveMachO("@loader_path/libx.dylib", ctx)
	if !ok || got != lib {
		t.Fatalf("ResolveMachO() = (%q, %v), want (%q, true)", got, ok, lib)
	}
}

func TestResolveMachOExecutablePath(t *testing.T) {
	dir := t.TempDir()
	execDir := filepath.Join(dir, "bin")
	lib := filepath.Join(execDir, "libx.dylib")
	touch(t, lib)

	ctx := MachOContext{
		ObjectPath:     filepath.Join(dir, "lib", "obj.dylib"),
		ExecutablePath: filepath.Join(execDir, "interp"),
	}
	got, ok := ResolveMachO("@executable_path/libx.dylib", ctx)
	if !ok || got != lib {
		t.Fatalf("ResolveMachO() = (%q, %v), want (%q, true)", got, ok, lib)
	}
}

func TestSubstituteMachORpath(t *testing.T) {
	got := SubstituteMachORpath("@loader_path/../lib", "/a/b/obj.dylib", "/a/bin/interp")
	want := "/a/b/../lib"
	if got != want {
		t.Errorf("SubstituteMachORpath() = %q, want %q", got, want)
	}
}
