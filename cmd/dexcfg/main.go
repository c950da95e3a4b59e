package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "cfg":
		err = cmdCFG(os.Args[2:])
	case "render":
		err = cmdRender(os.Args[2:])
	case "help", "-h", "--help":
		usage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `dexcfg — Dalvik bytecode control-flow graph reconstructor

Usage:
  dexcfg cfg [-c] [-d] [-f] [-h] [-i] [-l plain|xml] [-m] [-t tempfile] <dex file>...
                                 Reconstruct and emit CFGs for one or more DEX files
  dexcfg render [-out dir] [-title t] <dex file>...
                                 Render lattice-styled call-graph/CFG DOT views

Flags (cfg):
  -c            checksum-only: verify the DEX adler32 checksum and exit
  -d            disassemble and emit CFGs (required for DOT/EDG output)
  -f            dump file header summary
  -h            dump section headers
  -i            ignore bad checksums
  -l <layout>   output layout: plain (default) or xml
  -m            dump register maps
  -t <file>     temp file for compressed inputs
`)
}
