// Command yarp packs a relocatable distribution out of an interpreter
// manifest: one positional argument naming the manifest file, an exit
// status of 0 on success, non-zero on any fatal error.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"

	"golang.org/x/xerrors"

	"github.com/narang99/yarp/internal/binparse"
	"github.com/narang99/yarp/internal/exporter"
	"github.com/narang99/yarp/internal/gather"
	"github.com/narang99/yarp/internal/launcher"
	"github.com/narang99/yarp/internal/manifest"
	"github.com/narang99/yarp/internal/node"
	"github.com/narang99/yarp/internal/oninterrupt"
	"github.com/narang99/yarp/internal/patch"
)

var (
	debug = flag.Bool("debug", false, "format error messages with additional detail")
	dist  = flag.String("dist", "dist", "path to write the relocatable distribution to")
)

func funcmain() error {
	flag.Parse()
	if flag.NArg() != 1 {
		return xerrors.Errorf("syntax: yarp [-flags] <manifest>")
	}
	manifestPath := flag.Arg(0)

	m, err := manifest.Decode(manifestPath)
	if err != nil {
		return xerrors.Errorf("decoding manifest: %w", err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return xerrors.Errorf("getting working directory: %w", err)
	}

	oninterrupt.Register(func() {
		log.Printf("interrupted, removing partial dist %s", *dist)
		os.RemoveAll(*dist)
	})

	log.Printf("gathering dependencies from %s", m.Python.Sys.Executable)
	result, err := gather.Run(m, cwd)
	if err != nil {
		return xerrors.Errorf("gathering: %w", err)
	}
	log.Printf("gathered %d nodes", len(result.Graph.IterNodes()))

	log.Printf("exporting to %s", *dist)
	if err := exporter.Export(result.Graph, *dist, patchNode); err != nil {
		return xerrors.Errorf("exporting: %w", err)
	}

	log.Printf("writing bootstrap script")
	if err := launcher.Write(*dist, runtime.GOOS, result.SitePkgs, m.Python.Sys.Version); err != nil {
		return xerrors.Errorf("writing launcher: %w", err)
	}

	log.Printf("done: %s", *dist)
	return nil
}

// patchNode rewrites n's embedded loader metadata so its real finds its
// dependencies through its own symlink farm, dispatching on the parsed
// binary kind recorded in the node's dependency data.
func patchNode(n node.Node, realPath, farmDir string) error {
	deps, ok := n.Deps.(node.BinaryDeps)
	if !ok {
		return nil
	}
	switch deps.Binary.Kind {
	case binparse.KindELF:
		return patch.ELF(deps.Binary.ELF, realPath, farmDir)
	case binparse.KindMachO:
		return patch.MachO(deps.Binary.MachO, realPath, farmDir)
	default:
		return nil
	}
}

func main() {
	if err := funcmain(); err != nil {
		if *debug {
			fmt.Fprintf(os.Stderr, "%+v\n", err)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
