package pathutil

import "testing"

func TestNormalize(t *testing.T) {
	for _, tt := range []struct{ in, want string }{
		{"/a/b/../c", "/a/c"},
		{"/a//b/./c", "/a/b/c"},
		{"/a/b/c", "/a/b/c"},
		{"/../a", "/a"},
		{"/", "/"},
	} {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	for _, in := range []string{"/a/b/../c", "/a//b/./c", "/a/b/c/../../d"} {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}

func TestIsSystemLibrary(t *testing.T) {
	for _, tt := range []struct {
		path string
		want bool
	}{
		{"/usr/lib/libc.so", true},
		{"/System/Library/Frameworks/CoreFoundation.framework/CoreFoundation", true},
		{"/System/Library/PrivateFrameworks/Foo.framework/Foo", true},
		{"/usr/local/lib/libfoo.so", false},
		{"/opt/env/lib/libfoo.so", false},
	} {
		if got := IsSystemLibrary(tt.path); got != tt.want {
			t.Errorf("IsSystemLibrary(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestSplitSearchPaths(t *testing.T) {
	dirs := SplitSearchPaths("/:/nonexistent-dir-for-test:/tmp")
	if len(dirs) == 0 {
		t.Fatalf("expected at least the extant directories to survive filtering")
	}
	for _, d := range dirs {
		if d == "/nonexistent-dir-for-test" {
			t.Errorf("nonexistent directory should have been filtered out")
		}
	}
}
