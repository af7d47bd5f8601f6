// Copyright 2024 The PKUCompiler Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command sysyc compiles a SysY source file to Koopa IR, RISC-V assembly,
// or a debug AST dump, spec §6's three mutually-exclusive modes.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/c-x-b/PKUCompiler/internal/ast"
	"github.com/c-x-b/PKUCompiler/internal/buildinfo"
	"github.com/c-x-b/PKUCompiler/internal/koopa"
	"github.com/c-x-b/PKUCompiler/internal/parse"
	"github.com/c-x-b/PKUCompiler/internal/profiling"
	"github.com/c-x-b/PKUCompiler/internal/riscv"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: sysyc [-koopa | -riscv | -ast] -o output input.c\n")
	flag.PrintDefaults()
	os.Exit(2)
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("sysyc: ")

	var (
		modeKoopa   = flag.Bool("koopa", false, "emit Koopa IR")
		modeRiscv   = flag.Bool("riscv", false, "emit RISC-V assembly")
		modeAST     = flag.Bool("ast", false, "dump the parsed AST")
		output      = flag.String("o", "", "output file")
		showVersion = flag.Bool("V", false, "print version and exit")
		cpuprofile  = flag.String("cpuprofile", "", "write CPU profile to file")
		memprofile  = flag.String("memprofile", "", "write memory profile to file")
	)
	flag.Usage = usage
	flag.Parse()

	if *showVersion {
		fmt.Println(buildinfo.String())
		return
	}

	modes := 0
	for _, m := range []bool{*modeKoopa, *modeRiscv, *modeAST} {
		if m {
			modes++
		}
	}
	if modes != 1 || *output == "" || flag.NArg() != 1 {
		usage()
	}

	stopCPU := profiling.CPU(*cpuprofile)
	defer stopCPU()
	defer profiling.WriteHeap(*memprofile)

	input := flag.Arg(0)
	src, err := os.ReadFile(input)
	if err != nil {
		log.Fatal(err)
	}

	p := parse.New(input, src)
	unit := p.ParseCompUnit()

	var out string
	switch {
	case *modeAST:
		out = dumpAST(unit)
	case *modeKoopa:
		out = koopa.Render(koopa.Emit(unit))
	case *modeRiscv:
		out = riscv.Emit(koopa.Emit(unit))
	}

	if err := os.WriteFile(*output, []byte(out), 0o644); err != nil {
		log.Fatal(err)
	}
}

func dumpAST(unit *ast.CompUnit) string {
	var b strings.Builder
	ast.Dump(&b, unit)
	return b.String()
}
