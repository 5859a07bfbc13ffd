package main

import (
	"fmt"
	"os"

	"vmbench/internal/bench"
	"vmbench/internal/isolate"
	"vmbench/internal/pretty"
	"vmbench/internal/vmem"
)

// section is one block of the report: a heading and the trials under it.
type section struct {
	header string
	trials []bench.Params
}

// runMatrix sweeps every trial, one child process per trial, and streams
// the children's result lines under their section headers. A child that
// dies under a platform limit just leaves a gap in its section; a spawn
// failure is reported and skipped.
func runMatrix(info vmem.Info) {
	exe, err := os.Executable()
	if err != nil {
		exe = os.Args[0]
	}
	runner := isolate.New(exe)

	fmt.Printf("Page Size: %d\n", info.PageSize)
	fmt.Printf("Reserve Limit: %s\n", pretty.Bytes(info.ReserveLimit))
	fmt.Printf("Commit Limit: %s\n\n", pretty.Bytes(info.CommitLimit))

	for _, sec := range matrix(info, vmem.CanReserve()) {
		fmt.Println(sec.header)
		for _, p := range sec.trials {
			if _, err := runner.Run(p.Args()...); err != nil {
				fmt.Fprintln(os.Stderr, "vmbench:", err)
			}
		}
		fmt.Println()
	}
}

// matrix lays the whole sweep out in report order. canReserve gates the
// sections that need uncommitted reservations; the per-trial limit rules
// drop combinations that could only die at the OS.
func matrix(info vmem.Info, canReserve bool) []section {
	var out []section

	if canReserve {
		out = append(out, section{
			header: "VirtualVec, reserve, no commit, no write",
			trials: spanTrials(bench.PageCommit, len(bench.TestBytes), 0),
		})
	}
	out = append(out, section{
		header: "VirtualVec, commit all, no write",
		trials: spanTrials(bench.AllCommit, bench.CommitSafeSizes, 0),
	})
	if canReserve {
		out = append(out,
			section{
				header: "VirtualVec, commit page at a time, write all",
				trials: spanTrials(bench.PageCommit, bench.CommitSafeSizes, 1),
			},
			section{
				header: "VirtualVec, commit by 1.5x, write all",
				trials: spanTrials(bench.GrowCommit, bench.CommitSafeSizes, 1),
			},
		)
	}
	out = append(out, section{
		header: "VirtualVec, commit all, write all",
		trials: spanTrials(bench.AllCommit, bench.CommitSafeSizes, 1),
	})

	for _, size := range bench.AllocSizes {
		out = append(out, section{
			header: fmt.Sprintf("Reserve %s N times, no commit, no write", pretty.Bytes(size)),
			trials: allocTrials(bench.AllocCost, size, info, canReserve),
		})
	}
	for _, size := range bench.AllocSizes {
		out = append(out, section{
			header: fmt.Sprintf("Reserve %s N times, commit pages by writing one element per page", pretty.Bytes(size)),
			trials: allocTrials(bench.AllocCostCommitSome, size, info, canReserve),
		})
	}
	for _, size := range bench.AllocSizes {
		out = append(out, section{
			header: fmt.Sprintf("Heap-allocate %s N times, write one byte per page", pretty.Bytes(size)),
			trials: allocTrials(bench.HeapAllocCost, size, info, canReserve),
		})
	}
	return out
}

// spanTrials enumerates the first sizes buckets of TestBytes for one
// single-span kind.
func spanTrials(kind bench.Kind, sizes int, write uint64) []bench.Params {
	trials := make([]bench.Params, 0, sizes)
	for i := 0; i < sizes; i++ {
		trials = append(trials, bench.Params{Kind: kind, Index: i, Extra: write})
	}
	return trials
}

// allocTrials keeps the instance counts whose total stays comfortably
// inside the platform's limits: every variant must fit the address space,
// and the ones that commit everything they allocate must also fit the
// commit ceiling.
func allocTrials(kind bench.Kind, size uint64, info vmem.Info, canReserve bool) []bench.Params {
	var trials []bench.Params
	for i, n := range bench.AllocCounts {
		total := size * uint64(n)
		if total >= info.ReserveLimit/2 {
			continue
		}
		commitsAll := kind == bench.HeapAllocCost || !canReserve
		if commitsAll && total >= info.CommitLimit/2 {
			continue
		}
		trials = append(trials, bench.Params{Kind: kind, Index: i, Extra: size})
	}
	return trials
}
