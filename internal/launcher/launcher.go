// Package launcher generates the bootstrap script (C10): a small shell
// script placed at the root of the dist that sets up the dynamic loader's
// library search path and the interpreter's module search path before
// exec-ing the real interpreter, so a relocated dist runs without the
// original machine's environment.
package launcher

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/google/renameio"
	"golang.org/x/xerrors"

	"github.com/narang99/yarp/internal/exporter"
	"github.com/narang99/yarp/internal/manifest"
	"github.com/narang99/yarp/internal/sitepkgs"
)

// ModulePathEnvVar is the environment variable the generated script exports
// to point the interpreter at its relocated module search path.
const ModulePathEnvVar = "YARP_MODULE_PATH"

const linuxScriptSrc = `#!/bin/bash
set -euo pipefail

SCRIPT_DIR="$(cd "$(dirname "${BASH_SOURCE[0]}")" && pwd)"

ORIGINAL_LD_LIBRARY_PATH="${LD_LIBRARY_PATH:-}"
export LD_LIBRARY_PATH="$SCRIPT_DIR/lib/l:$ORIGINAL_LD_LIBRARY_PATH"

MODULE_SEARCH_PATHS={{.ModuleSearchPathArray}}

export ` + ModulePathEnvVar + `=""
for path in "${MODULE_SEARCH_PATHS[@]}"; do
    export ` + ModulePathEnvVar + `="$` + ModulePathEnvVar + `:$SCRIPT_DIR/$path"
done

exec "$SCRIPT_DIR/interp/bin/interp" "$@"
`

const macScriptSrc = `#!/bin/bash
set -euo pipefail

SCRIPT_DIR="$(cd "$(dirname "${BASH_SOURCE[0]}")" && pwd)"

ORIGINAL_DYLD_LIBRARY_PATH="${DYLD_LIBRARY_PATH:-}"
export DYLD_LIBRARY_PATH="$SCRIPT_DIR/lib/l:$ORIGINAL_DYLD_LIBRARY_PATH"

MODULE_SEARCH_PATHS={{.ModuleSearchPathArray}}

export ` + ModulePathEnvVar + `=""
for path in "${MODULE_SEARCH_PATHS[@]}"; do
    export ` + ModulePathEnvVar + `="$` + ModulePathEnvVar + `:$SCRIPT_DIR/$path"
done

exec "$SCRIPT_DIR/interp/bin/interp" "$@"
`

var linuxScript = template.Must(template.New("linux").Parse(linuxScriptSrc))
var macScript = template.Must(template.New("macos").Parse(macScriptSrc))

type templateData struct {
	ModuleSearchPathArray string
}

// Write renders and atomically installs the bootstrap script at
// dist/bootstrap.sh, executable, for the given goos ("linux" or "darwin").
func Write(dist, goos string, pkgs sitepkgs.SitePkgs, version manifest.Version) error {
	scriptPath := filepath.Join(dist, "bootstrap.sh")

	array, err := moduleSearchPathArray(pkgs, version)
	if err != nil {
		return xerrors.Errorf("launcher: %w", err)
	}

	tmpl, err := scriptFor(goos)
	if err != nil {
		return xerrors.Errorf("launcher: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, templateData{ModuleSearchPathArray: array}); err != nil {
		return xerrors.Errorf("launcher: rendering bootstrap script: %w", err)
	}

	if err := renameio.WriteFile(scriptPath, buf.Bytes(), 0o755); err != nil {
		return xerrors.Errorf("launcher: writing %s: %w", scriptPath, err)
	}
	return nil
}

func scriptFor(goos string) (*template.Template, error) {
	switch goos {
	case "linux":
		return linuxScript, nil
	case "darwin":
		return macScript, nil
	default:
		return nil, xerrors.Errorf("unsupported OS: %s", goos)
	}
}

// moduleSearchPathArray renders pkgs' components as a bash array literal of
// dist-relative paths, in manifest order.
func moduleSearchPathArray(pkgs sitepkgs.SitePkgs, version manifest.Version) (string, error) {
	stdlibRel := exporter.StdlibRelativePath(version)
	libDynloadRel := exporter.LibDynloadRelativePath(version)

	var entries []string
	for _, c := range pkgs.Components {
		switch c.Kind {
		case sitepkgs.RelativeToStdlib:
			entries = append(entries, joinRel(stdlibRel, c.RelPath))
		case sitepkgs.RelativeToLibDynload:
			entries = append(entries, joinRel(libDynloadRel, c.RelPath))
		case sitepkgs.TopLevel:
			entries = append(entries, exporter.SitePkgRelativePath(c.Alias))
		case sitepkgs.RelativeToSitePkg:
			entries = append(entries, joinRel(exporter.SitePkgRelativePath(c.Alias), c.RelPath))
		default:
			return "", xerrors.Errorf("unknown component kind %d", c.Kind)
		}
	}

	quoted := make([]string, len(entries))
	for i, e := range entries {
		quoted[i] = fmt.Sprintf("%q", e)
	}
	return "(" + strings.Join(quoted, " ") + ")", nil
}

func joinRel(base, rel string) string {
	if rel == "" {
		return base
	}
	return base + "/" + rel
}
