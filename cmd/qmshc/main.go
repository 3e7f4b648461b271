// Command qmshc exports triangle meshes to the Quaazar JSON mesh
// format (.qmsh). It accepts either a Wavefront OBJ file (one mesh,
// one output file) or a scene script (.qsc, one output file per
// defmesh form, tessellated with the sdfx geometry kernel).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/quaazar/qmshx/pkg/engine"
	"github.com/quaazar/qmshx/pkg/export"
	"github.com/quaazar/qmshx/pkg/kernel/sdfx"
	"github.com/quaazar/qmshx/pkg/objfile"
)

type options struct {
	output  string
	sparse  bool
	strict  bool
	cells   int
	verbose bool
}

var opts options

func init() {
	flag.StringVar(&opts.output, "output", "", "output file (.obj input) or directory (.qsc input)")
	flag.BoolVar(&opts.sparse, "sparse", false, "emit compact JSON instead of 2-space indented")
	flag.BoolVar(&opts.strict, "strict", false, "reject meshes the permissive converter would truncate")
	flag.IntVar(&opts.cells, "cells", 0, "marching cubes resolution for scene scripts (0 = kernel default)")
	flag.BoolVar(&opts.verbose, "verbose", false, "display additional information")
}

func usage() {
	fmt.Fprintln(flag.CommandLine.Output(), "usage: qmshc [flags] input.{obj,qsc}")
	flag.PrintDefaults()
}

func main() {
	log.SetFlags(0)
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}
	input := flag.Arg(0)

	exp := &export.Exporter{Sparse: opts.sparse, Strict: opts.strict}

	var err error
	switch strings.ToLower(filepath.Ext(input)) {
	case ".obj":
		err = exportObj(exp, input)
	case ".qsc":
		err = exportScript(exp, input)
	default:
		err = fmt.Errorf("unsupported input %q (want .obj or .qsc)", input)
	}
	if err != nil {
		log.Fatalf("E: %v", err)
	}
}

// exportObj reads one OBJ mesh and writes one .qmsh file.
func exportObj(exp *export.Exporter, input string) error {
	mesh, err := objfile.ParseFile(input)
	if err != nil {
		return err
	}
	if opts.verbose {
		log.Printf("I: parsed '%s': %d vertices, %d polygons", mesh.Name, mesh.VertexCount(), mesh.PolygonCount())
	}

	out := opts.output
	if out == "" {
		out = strings.TrimSuffix(input, filepath.Ext(input)) + ".qmsh"
	}
	return exp.Export(mesh, out)
}

// exportScript evaluates a scene script and writes one .qmsh file per
// defmesh form into the output directory.
func exportScript(exp *export.Exporter, input string) error {
	source, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	var k *sdfx.SdfxKernel
	if opts.cells > 0 {
		k = sdfx.NewWithResolution(opts.cells)
	} else {
		k = sdfx.New()
	}

	eng := engine.NewEngine(k)
	sc, evalErrs, err := eng.Evaluate(string(source))
	if err != nil {
		return err
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			log.Printf("E: %s: %v", input, e)
		}
		return fmt.Errorf("%s: %d evaluation error(s)", input, len(evalErrs))
	}
	if sc.Count() == 0 {
		// Reported through the exporter so the outcome matches an
		// export invocation with nothing to export.
		return exp.Export(nil, "")
	}

	outDir := opts.output
	if outDir == "" {
		outDir = filepath.Dir(input)
	}

	for _, entry := range sc.Entries {
		mesh, err := k.ToMesh(entry.Solid, entry.Name)
		if err != nil {
			return fmt.Errorf("tessellating %q: %w", entry.Name, err)
		}
		if opts.verbose {
			log.Printf("I: tessellated '%s': %d vertices, %d polygons", entry.Name, mesh.VertexCount(), mesh.PolygonCount())
		}
		path := filepath.Join(outDir, entry.Name+".qmsh")
		if err := exp.Export(mesh, path); err != nil {
			return err
		}
	}
	return nil
}
