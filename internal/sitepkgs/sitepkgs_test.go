package sitepkgs

import (
	"testing"

	"github.com/narang99/yarp/internal/manifest"
)

func testSys() manifest.Sys {
	return manifest.Sys{
		Prefix:     "/env",
		ExecPrefix: "/env",
		Platlibdir: "lib",
		Version:    manifest.Version{Major: 3, Minor: 12},
	}
}

func TestFromManifestAliasesTopLevelRootsOnly(t *testing.T) {
	sys := testSys()
	sys.Path = []string{
		"/env/lib/interp3.12/site-packages",
		"/other/env/site-packages",
		"/other/env/site-packages/nested_pkg",
	}
	m := &manifest.Manifest{Python: manifest.Python{Sys: sys}}

	got := FromManifest(m)

	// The first entry lies inside the stdlib dir (/env/lib/interp3.12), so it
	// is classified relative to the stdlib rather than aliased.
	if len(got.AliasByRoot) != 1 {
		t.Fatalf("AliasByRoot has %d entries, want 1: %v", len(got.AliasByRoot), got.AliasByRoot)
	}
	if _, ok := got.AliasByRoot["/other/env/site-packages/nested_pkg"]; ok {
		t.Error("nested site-packages must not get its own alias")
	}
}

func TestFromManifestClassifiesNestedAsRelativeToSitePkg(t *testing.T) {
	sys := testSys()
	sys.Path = []string{
		"/other/env/site-packages",
		"/other/env/site-packages/nested_pkg",
	}
	m := &manifest.Manifest{Python: manifest.Python{Sys: sys}}

	got := FromManifest(m)

	var found bool
	for _, c := range got.Components {
		if c.Kind == RelativeToSitePkg && c.RelPath == "nested_pkg" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a RelativeToSitePkg component with rel_path=nested_pkg, got %+v", got.Components)
	}
}

func TestFromManifestExcludesStdlibAndLibDynload(t *testing.T) {
	sys := testSys()
	sys.Path = []string{
		"/env/lib/interp3.12",
		"/env/lib/interp3.12/lib-dynload",
		"/other/env/site-packages",
	}
	m := &manifest.Manifest{Python: manifest.Python{Sys: sys}}

	got := FromManifest(m)

	for _, c := range got.Components {
		if c.Kind == TopLevel && c.Alias == got.AliasByRoot["/env/lib/interp3.12"] {
			t.Error("stdlib dir must not be classified as a component")
		}
	}
	if len(got.Components) != 1 {
		t.Fatalf("Components = %+v, want exactly one entry for the site-packages root", got.Components)
	}
}

func TestTwoRootsWithCollidingTopLevelNamesGetDistinctAliases(t *testing.T) {
	sys := testSys()
	sys.Path = []string{"/env/a/site", "/env/b/site"}
	m := &manifest.Manifest{Python: manifest.Python{Sys: sys}}

	got := FromManifest(m)

	aliasA := got.AliasByRoot["/env/a/site"]
	aliasB := got.AliasByRoot["/env/b/site"]
	if aliasA == "" || aliasB == "" {
		t.Fatalf("both roots must get an alias: %v", got.AliasByRoot)
	}
	if aliasA == aliasB {
		t.Error("colliding top-level roots must not share an alias")
	}
}
