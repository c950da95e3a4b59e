package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zboralski/lattice/render"

	"dexcfg/internal/callgraph"
	"dexcfg/internal/cfgbuild"
	"dexcfg/internal/dex"
	"dexcfg/internal/diag"
)

// cmdRender is additive to the mandatory cfg verb: it re-runs the same
// reconstruction pipeline and hands the result to
// github.com/zboralski/lattice/render instead of the exact-syntax DOT
// writer, producing block-level callgraph/CFG views in the style of an
// ARM64 `disasm --graph` / `render` flow. It never touches graph.edg or
// the -d DOT stream.
func cmdRender(args []string) error {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	outDir := fs.String("out", "render", "output directory for rendered DOT files")
	title := fs.String("title", "dexcfg", "title for the call graph")
	if err := fs.Parse(args); err != nil {
		return err
	}

	files := fs.Args()
	if len(files) == 0 {
		return fmt.Errorf("render: at least one DEX filename is required")
	}
	if err := os.MkdirAll(*outDir, 0755); err != nil {
		return fmt.Errorf("render: mkdir %s: %w", *outDir, err)
	}

	var allMethods []callgraph.MethodInfo
	for _, path := range files {
		methods, err := buildMethodsForRender(path)
		if err != nil {
			return fmt.Errorf("render: %s: %w", path, err)
		}
		allMethods = append(allMethods, methods...)
	}
	callgraph.Link(allMethods)

	cg := callgraph.BuildCallGraph(allMethods)
	dot := render.DOT(cg, *title)
	cgPath := filepath.Join(*outDir, "callgraph.dot")
	if err := os.WriteFile(cgPath, []byte(dot), 0644); err != nil {
		return fmt.Errorf("render: write %s: %w", cgPath, err)
	}
	fmt.Fprintf(os.Stderr, "wrote %s (%d bytes, %d methods)\n", cgPath, len(dot), len(cg.Nodes))

	cfgGraph := callgraph.BuildCFG(allMethods)
	cfgDot := render.DOTCFG(cfgGraph, *title+" (CFG)")
	cfgPath := filepath.Join(*outDir, "cfg.dot")
	if err := os.WriteFile(cfgPath, []byte(cfgDot), 0644); err != nil {
		return fmt.Errorf("render: write %s: %w", cfgPath, err)
	}
	fmt.Fprintf(os.Stderr, "wrote %s (%d bytes)\n", cfgPath, len(cfgDot))

	return nil
}

func buildMethodsForRender(path string) ([]callgraph.MethodInfo, error) {
	f, err := dex.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	d := &diag.Diags{}
	opts := diag.Options{}
	var methods []callgraph.MethodInfo
	for _, class := range f.Classes() {
		for _, m := range append(class.DirectMethods(), class.VirtualMethods()...) {
			ci, ok := m.CodeItem()
			if !ok {
				continue
			}
			name := m.Info.Key()
			nodes, err := cfgbuild.BuildNodes(ci, f, d, name, opts)
			if err != nil {
				continue
			}
			cfgbuild.ExpandSwitchPayloads(nodes, ci.Insns, d, name)
			mcfg := cfgbuild.BuildMethodCFG(nodes, d, name)
			methods = append(methods, callgraph.MethodInfo{Name: name, CFG: mcfg})
		}
	}
	return methods, nil
}
