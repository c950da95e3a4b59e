package main

import (
	"flag"
	"fmt"
	"os"

	"dexcfg/internal/callgraph"
	"dexcfg/internal/cfgbuild"
	"dexcfg/internal/dex"
	"dexcfg/internal/diag"
	"dexcfg/internal/emit"
)

func cmdCFG(args []string) error {
	fs := flag.NewFlagSet("cfg", flag.ExitOnError)
	checksumOnly := fs.Bool("c", false, "checksum-only")
	disasm := fs.Bool("d", false, "disassemble and emit CFGs")
	dumpHeader := fs.Bool("f", false, "dump file header summary")
	dumpSections := fs.Bool("h", false, "dump section headers")
	ignoreChecksum := fs.Bool("i", false, "ignore bad checksums")
	layout := fs.String("l", "plain", "output layout: plain or xml")
	dumpRegMaps := fs.Bool("m", false, "dump register maps")
	tempFile := fs.String("t", "", "temp file for compressed inputs")
	maxMethodLen := fs.Int("x", 0, "cap on decoded instructions per method (0 = unlimited)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *layout != "plain" && *layout != "xml" {
		return fmt.Errorf("cfg: -l must be plain or xml, got %q", *layout)
	}
	_ = tempFile // compressed-input staging is not modeled by this reader (no APK/zip support)

	files := fs.Args()
	if len(files) == 0 {
		return fmt.Errorf("cfg: at least one DEX filename is required")
	}

	opts := diag.Options{Mode: diag.ModeBestEffort, MaxMethodLength: *maxMethodLen}
	if *ignoreChecksum {
		opts.Mode = diag.ModeIgnoreChecksum
		opts.IgnoreChecksum = true
	}

	var edgPath = "graph.edg"
	edgFile, err := os.OpenFile(edgPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("cfg: open %s: %w", edgPath, err)
	}
	defer edgFile.Close()
	edg := emit.NewEDGWriter()

	failed := false
	for _, path := range files {
		if err := processFile(path, opts, *checksumOnly, *disasm, *dumpHeader, *dumpSections, *dumpRegMaps, *layout, edg); err != nil {
			fmt.Fprintf(os.Stderr, "dexcfg: %s: %v\n", path, err)
			failed = true
		}
	}

	if *disasm {
		if err := edg.Flush(edgFile); err != nil {
			return err
		}
	}

	if failed {
		return fmt.Errorf("cfg: one or more files failed")
	}
	return nil
}

func processFile(path string, opts diag.Options, checksumOnly, disassemble, dumpHeader, dumpSections, dumpRegMaps bool, layout string, edg *emit.EDGWriter) error {
	f, err := dex.Open(path)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}

	checksumOK := true
	if err := f.VerifyChecksum(); err != nil {
		if !opts.IgnoreChecksum {
			return fmt.Errorf("checksum: %w", err)
		}
		checksumOK = false
		fmt.Fprintf(os.Stderr, "dexcfg: %s: ignoring checksum mismatch (-i)\n", path)
	}

	if checksumOnly {
		if checksumOK {
			fmt.Printf("%s: checksum OK\n", path)
		} else {
			fmt.Printf("%s: checksum mismatch (ignored)\n", path)
		}
		return nil
	}

	if dumpHeader {
		printHeaderSummary(path, f, layout)
	}
	if dumpSections {
		printSectionHeaders(path, f, layout)
	}

	if !disassemble {
		return nil
	}

	d := &diag.Diags{}
	var methods []callgraph.MethodInfo
	for _, class := range f.Classes() {
		for _, m := range append(class.DirectMethods(), class.VirtualMethods()...) {
			ci, ok := m.CodeItem()
			if !ok {
				continue // abstract/native: no code item
			}
			name := m.Info.Key()
			if dumpRegMaps {
				fmt.Fprintf(os.Stderr, "%s: registers=%d ins=%d outs=%d\n",
					name, ci.RegistersSize, ci.InsSize, ci.OutsSize)
			}

			nodes, err := cfgbuild.BuildNodes(ci, f, d, name, opts)
			if err != nil {
				fmt.Fprintf(os.Stderr, "dexcfg: %s: %v\n", name, err)
				continue
			}
			cfgbuild.ExpandSwitchPayloads(nodes, ci.Insns, d, name)
			mcfg := cfgbuild.BuildMethodCFG(nodes, d, name)
			methods = append(methods, callgraph.MethodInfo{Name: name, CFG: mcfg})
		}
	}

	callgraph.Link(methods)

	for _, m := range methods {
		if m.CFG.Entry == nil {
			continue
		}
		if err := emit.WriteDOT(os.Stdout, m.CFG.Entry); err != nil {
			return fmt.Errorf("emit dot for %s: %w", m.Name, err)
		}
		edg.AddMethod(m.CFG.Entry)
	}

	for _, item := range d.Items() {
		fmt.Fprintln(os.Stderr, item.String())
	}
	return nil
}

func printHeaderSummary(path string, f *dex.File, layout string) {
	if layout == "xml" {
		fmt.Printf("<dexHeader file=%q methodIds=%q fieldIds=%q classDefs=%q checksum=\"0x%08x\"/>\n",
			path, fmtU32(f.MethodIdsSize()), fmtU32(f.FieldIdsSize()), fmtU32(f.ClassDefsSize()), f.Checksum())
		return
	}
	fmt.Printf("%s: method_ids=%d field_ids=%d class_defs=%d checksum=0x%08x\n",
		path, f.MethodIdsSize(), f.FieldIdsSize(), f.ClassDefsSize(), f.Checksum())
}

func printSectionHeaders(path string, f *dex.File, layout string) {
	classes := f.ClassDefs()
	if layout == "xml" {
		fmt.Printf("<dexSections file=%q classDefCount=\"%d\"/>\n", path, len(classes))
		return
	}
	fmt.Printf("%s: %d class_def_item entries\n", path, len(classes))
}

func fmtU32(v uint32) string { return fmt.Sprintf("%d", v) }
