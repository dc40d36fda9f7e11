package binparse

import (
	"encoding/binary"
	"os"

	"golang.org/x/xerrors"
)

// Magic numbers are matched against a big-endian read of the first four
// bytes, so each Mach-O magic needs both its native and byte-swapped form:
// the file's actual byte order depends on the architecture it was built
// for, not the host reading it.
const (
	magicELF = 0x7f454c46

	magicMachO32        = 0xfeedface
	magicMachO32Swapped = 0xcefaedfe
	magicMachO64        = 0xfeedfacf
	magicMachO64Swapped = 0xcffaedfe
	magicMachOFat       = 0xcafebabe
	magicMachOFatSwapped = 0xbebafeca
)

// Parse classifies path and parses it into a Binary. It never fails for
// ordinary non-object files: those return ErrNotBinary, which callers treat
// as "this node is Plain" rather than a hard error.
func Parse(ctx Context) (*Binary, error) {
	magic, err := readMagic(ctx.ObjectPath)
	if err != nil {
		return nil, xerrors.Errorf("binparse: reading %s: %w", ctx.ObjectPath, err)
	}

	switch magic {
	case magicELF:
		elf, err := ParseELF(ctx)
		if err != nil {
			return nil, err
		}
		return &Binary{Kind: KindELF, ELF: elf}, nil

	case magicMachO32, magicMachO32Swapped, magicMachO64, magicMachO64Swapped, magicMachOFat, magicMachOFatSwapped:
		macho, err := ParseMachO(ctx)
		if err != nil {
			return nil, err
		}
		return &Binary{Kind: KindMachO, MachO: macho}, nil

	default:
		return nil, ErrNotBinary
	}
}

func readMagic(path string) (uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var buf [4]byte
	if _, err := f.Read(buf[:]); err != nil {
		return 0, ErrNotBinary
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}
