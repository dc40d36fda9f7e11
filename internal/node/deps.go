package node

import (
	"errors"

	"github.com/narang99/yarp/internal/binparse"
)

// Deps is what a Node depends on, as discovered by parsing its content. Like
// Pkg, it is a small closed set: either the node carries no dynamic
// dependencies (Plain) or it is a parsed object file naming others by
// soname/install-name (Binary).
type Deps interface {
	// Paths returns the resolved, non-system dependency paths this node
	// reaches. The order is not defined. Plain nodes always return nil.
	Paths() []string

	isDeps()
}

// PlainDeps is a node with no dynamic dependencies: anything that isn't a
// recognized object file, or an object file whose architecture or format
// binparse could not handle (in which case the node is graceful-downgraded
// to Plain rather than failing the gather).
type PlainDeps struct{}

func (PlainDeps) Paths() []string { return nil }
func (PlainDeps) isDeps()         {}

// BinaryDeps wraps a parsed object file's resolved dependency set.
type BinaryDeps struct {
	Binary *binparse.Binary
}

func (d BinaryDeps) Paths() []string {
	switch d.Binary.Kind {
	case binparse.KindELF:
		out := make([]string, 0, len(d.Binary.ELF.Needed))
		for _, p := range d.Binary.ELF.Needed {
			out = append(out, p)
		}
		return out
	case binparse.KindMachO:
		out := make([]string, 0, len(d.Binary.MachO.LoadDylibs))
		for _, p := range d.Binary.MachO.LoadDylibs {
			out = append(out, p)
		}
		return out
	default:
		return nil
	}
}

func (BinaryDeps) isDeps() {}

// FromBinParse classifies a binparse result (or its absence) into a Deps
// value, graceful-downgrading unsupported or unrecognized files to
// PlainDeps rather than propagating the error — the same dispatch
// node/deps.rs performs for BinaryParseError::{NotBinary,UnsupportedArchitecture}.
// binparse.ErrUnresolvedDependency is deliberately NOT downgraded here: it
// must propagate so the caller can queue the path for a known_libs retry
// instead of admitting a node with silently-missing dependency edges.
func FromBinParse(b *binparse.Binary, err error) (Deps, error) {
	if err == nil {
		return BinaryDeps{Binary: b}, nil
	}
	if errors.Is(err, binparse.ErrNotBinary) || errors.Is(err, binparse.ErrUnsupportedArchitecture) {
		return PlainDeps{}, nil
	}
	return nil, err
}
