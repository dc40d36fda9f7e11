package node

import (
	"testing"

	"github.com/narang99/yarp/internal/binparse"
)

func TestNodeName(t *testing.T) {
	n := Node{Path: "/dist/reals/r/abc.so"}
	if got, want := n.Name(), "abc.so"; got != want {
		t.Errorf("Name() = %q, want %q", got, want)
	}
}

func TestNodeNameNoSeparator(t *testing.T) {
	n := Node{Path: "abc.so"}
	if got, want := n.Name(), "abc.so"; got != want {
		t.Errorf("Name() = %q, want %q", got, want)
	}
}

func TestPlainDepsHasNoPaths(t *testing.T) {
	if paths := (PlainDeps{}).Paths(); paths != nil {
		t.Errorf("PlainDeps.Paths() = %v, want nil", paths)
	}
}

func TestBinaryDepsPathsFromELF(t *testing.T) {
	d := BinaryDeps{Binary: &binparse.Binary{
		Kind: binparse.KindELF,
		ELF: &binparse.ELF{
			Needed: map[string]string{"libfoo.so": "/dist/reals/r/foo.so"},
		},
	}}
	paths := d.Paths()
	if len(paths) != 1 || paths[0] != "/dist/reals/r/foo.so" {
		t.Errorf("Paths() = %v, want [/dist/reals/r/foo.so]", paths)
	}
}

func TestFromBinParseDowngradesNotBinary(t *testing.T) {
	d, err := FromBinParse(nil, binparse.ErrNotBinary)
	if err != nil {
		t.Fatalf("FromBinParse() error = %v, want nil", err)
	}
	if _, ok := d.(PlainDeps); !ok {
		t.Errorf("FromBinParse() = %T, want PlainDeps", d)
	}
}

func TestFromBinParsePropagatesOtherErrors(t *testing.T) {
	wantErr := errString("boom")
	if _, err := FromBinParse(nil, wantErr); err != wantErr {
		t.Errorf("FromBinParse() error = %v, want %v", err, wantErr)
	}
}

type errString string

func (e errString) Error() string { return string(e) }
