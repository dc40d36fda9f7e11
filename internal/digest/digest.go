// Package digest computes the content hash used to name objects in the
// reals store (C2 in the design).
package digest

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	"golang.org/x/xerrors"
)

// chunkSize matches the read-loop size used by the reference
// implementation's sha256sum (8 KiB).
const chunkSize = 8192

// Sum returns the hex-encoded SHA-256 digest of the file at path. Two
// bit-identical files always produce the same digest, which is the property
// the reals store relies on to deduplicate objects.
func Sum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", xerrors.Errorf("digest: opening %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	r := bufio.NewReaderSize(f, chunkSize)
	if _, err := io.Copy(h, r); err != nil {
		return "", xerrors.Errorf("digest: reading %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
