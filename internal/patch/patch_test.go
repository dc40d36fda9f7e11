package patch

import "testing"

func TestNewRpathForELF(t *testing.T) {
	got, err := newRpathFor("$ORIGIN/", "/dist/reals/r/libfoo.so", "/dist/symlinks/libfoo.so")
	if err != nil {
		t.Fatalf("newRpathFor() error = %v", err)
	}
	want := "$ORIGIN/../../symlinks/libfoo.so/"
	if got != want {
		t.Errorf("newRpathFor() = %q, want %q", got, want)
	}
}

func TestNewRpathForMachO(t *testing.T) {
	got, err := newRpathFor("@loader_path/", "/dist/reals/r/libfoo.dylib", "/dist/symlinks/libfoo.dylib")
	if err != nil {
		t.Fatalf("newRpathFor() error = %v", err)
	}
	want := "@loader_path/../../symlinks/libfoo.dylib/"
	if got != want {
		t.Errorf("newRpathFor() = %q, want %q", got, want)
	}
}

func TestDylibID(t *testing.T) {
	if got, want := dylibID("libfoo.dylib"), "@rpath/libfoo.dylib"; got != want {
		t.Errorf("dylibID() = %q, want %q", got, want)
	}
}
