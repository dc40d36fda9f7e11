package exporter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/narang99/yarp/internal/depgraph"
	"github.com/narang99/yarp/internal/manifest"
	"github.com/narang99/yarp/internal/node"
)

func TestRealsPathOnlyForDynamicVariants(t *testing.T) {
	dist := "/dist"
	binNode := node.Node{Path: "/src/libfoo.so", Pkg: node.Binary{Sha: "abc"}}
	if _, ok := RealsPath(binNode, dist); !ok {
		t.Error("Binary pkg should have a reals path")
	}
	plainNode := node.Node{Path: "/src/notes.txt", Pkg: node.Plain{}}
	if _, ok := RealsPath(plainNode, dist); ok {
		t.Error("Plain pkg should not have a reals path")
	}
}

func TestRealsPathIsContentAddressedNotBasename(t *testing.T) {
	dist := "/dist"
	a := node.Node{Path: "/roots/a/libfoo.so", Pkg: node.Binary{Sha: "aaa"}}
	b := node.Node{Path: "/roots/b/libfoo.so", Pkg: node.Binary{Sha: "bbb"}}

	pathA, _ := RealsPath(a, dist)
	pathB, _ := RealsPath(b, dist)
	if pathA == pathB {
		t.Fatalf("two different-content nodes sharing a basename must not collide in reals, got %q for both", pathA)
	}

	wantA := filepath.Join(dist, "reals", "r", "aaa.so")
	if pathA != wantA {
		t.Errorf("RealsPath() = %q, want %q", pathA, wantA)
	}
}

func TestRealsPathPreservesVersionedSoExtension(t *testing.T) {
	n := node.Node{Path: "/roots/a/libfoo.so.1.2.3", Pkg: node.Binary{Sha: "ccc"}}
	got, ok := RealsPath(n, "/dist")
	if !ok {
		t.Fatal("expected a reals path")
	}
	want := filepath.Join("/dist", "reals", "r", "ccc.so")
	if got != want {
		t.Errorf("RealsPath() = %q, want %q", got, want)
	}
}

func TestDestinationForStdlibPlain(t *testing.T) {
	n := node.Node{
		Path: "/env/lib/interp3.12/os.py",
		Pkg: node.PrefixPlain{PrefixPaths: node.PrefixPaths{
			OriginalPrefix: "/env/lib/interp3.12",
			RelPath:        "os.py",
			Version:        manifest.Version{Major: 3, Minor: 12},
		}},
	}
	dest, ok := Destination(n, "/dist")
	if !ok {
		t.Fatal("expected a destination")
	}
	want := filepath.Join("/dist", "interp", "lib", "interp3.12", "os.py")
	if dest != want {
		t.Errorf("Destination() = %q, want %q", dest, want)
	}
}

func TestExportCopiesPlainFileToDestination(t *testing.T) {
	dir := t.TempDir()
	dist := filepath.Join(dir, "dist")
	src := filepath.Join(dir, "os.py")
	if err := os.WriteFile(src, []byte("print('hi')"), 0o644); err != nil {
		t.Fatal(err)
	}

	g := depgraph.New()
	g.AddNode(node.Node{
		Path: src,
		Pkg: node.PrefixPlain{PrefixPaths: node.PrefixPaths{
			OriginalPrefix: dir,
			RelPath:        "os.py",
			Version:        manifest.Version{Major: 3, Minor: 12},
		}},
		Deps: node.PlainDeps{},
	}, false)

	if err := Export(g, dist, nil); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dist, "interp", "lib", "interp3.12", "os.py"))
	if err != nil {
		t.Fatalf("reading destination: %v", err)
	}
	if string(got) != "print('hi')" {
		t.Errorf("destination content = %q, want %q", got, "print('hi')")
	}
}
