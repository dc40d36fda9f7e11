package manifest

import (
	"encoding/json"
	"os"

	"golang.org/x/xerrors"
)

// Decode reads and parses the manifest at path. A malformed or missing
// manifest is a fatal input error (spec error kind: input error) — the
// Packer has nothing to seed the gather with.
func Decode(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, xerrors.Errorf("manifest: reading %s: %w", path, err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, xerrors.Errorf("manifest: parsing %s: %w", path, err)
	}

	if m.Python.Sys.Executable == "" {
		return nil, xerrors.Errorf("manifest: %s: python.sys.executable is required", path)
	}

	return &m, nil
}
