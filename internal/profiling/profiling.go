// Copyright 2024 The PKUCompiler Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package profiling wires cmd/sysyc's -cpuprofile/-memprofile flags to
// stdlib runtime/pprof, the same way cmd/compile's own -cpuprofile flag
// and the profiling harness profile_vm.go in the example pack do it, plus
// a post-run human-readable summary built on github.com/google/pprof/profile.
package profiling

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"sort"

	"github.com/google/pprof/profile"
)

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "sysyc: "+format+"\n", args...)
	os.Exit(1)
}

// CPU starts CPU profiling into path (empty means disabled) and returns a
// stop function the caller defers; stop is a no-op if profiling never
// started.
func CPU(path string) (stop func()) {
	if path == "" {
		return func() {}
	}
	f, err := os.Create(path)
	if err != nil {
		fatalf("cpuprofile: %v", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		fatalf("cpuprofile: %v", err)
	}
	return func() {
		pprof.StopCPUProfile()
		f.Close()
		Summarize(path)
	}
}

// WriteHeap writes a heap profile to path (a no-op if path is empty),
// forcing a GC first so the snapshot reflects live allocations rather
// than garbage still waiting to be collected.
func WriteHeap(path string) {
	if path == "" {
		return
	}
	f, err := os.Create(path)
	if err != nil {
		fatalf("memprofile: %v", err)
	}
	defer f.Close()
	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		fatalf("memprofile: %v", err)
	}
}

// Summarize reads back a just-written CPU profile and prints the
// single hottest function to stderr, a quick signal when tuning the
// frame planner or RISC-V emitter against a large input.
func Summarize(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()
	prof, err := profile.Parse(f)
	if err != nil {
		return
	}
	top := topFunction(prof)
	if top == "" {
		return
	}
	fmt.Fprintf(os.Stderr, "sysyc: profile hotspot: %s\n", top)
}

// topFunction finds the function name with the largest self-sample total
// across the profile's first value index (cpu samples, for a CPU profile).
func topFunction(prof *profile.Profile) string {
	totals := map[string]int64{}
	for _, s := range prof.Sample {
		if len(s.Value) == 0 || len(s.Location) == 0 {
			continue
		}
		loc := s.Location[0]
		for _, line := range loc.Line {
			if line.Function == nil {
				continue
			}
			totals[line.Function.Name] += s.Value[0]
		}
	}
	if len(totals) == 0 {
		return ""
	}
	names := make([]string, 0, len(totals))
	for n := range totals {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return totals[names[i]] > totals[names[j]] })
	return fmt.Sprintf("%s (%d samples)", names[0], totals[names[0]])
}
