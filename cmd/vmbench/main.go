// vmbench measures what the OS charges for reserving, committing and
// first-touching virtual memory, by driving a page-aware growable vector
// through different commit strategies. Every trial runs in a child process
// of its own so one trial's page tables and commit charge cannot bias the
// next.
//
// With no arguments it sweeps the whole trial matrix. With three
// positional arguments (kind, index, extra) it runs that single trial
// in-process and prints one result line; that is the mode the children
// run in.
package main

import (
	"flag"
	"fmt"
	"os"

	"vmbench/internal/bench"
	"vmbench/internal/vmem"
)

func main() {
	flag.Usage = usage
	flag.Parse()

	info := vmem.Probe()

	args := flag.Args()
	switch len(args) {
	case 0:
		runMatrix(info)
	case 3:
		p, err := bench.ParseParams(args)
		if err != nil {
			fmt.Fprintln(os.Stderr, "vmbench:", err)
			usage()
			os.Exit(2)
		}
		if err := bench.Run(os.Stdout, info, p); err != nil {
			fmt.Fprintln(os.Stderr, "vmbench:", err)
			os.Exit(1)
		}
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `usage:
  vmbench                         sweep the whole trial matrix, one child process per trial
  vmbench <kind> <index> <extra>  run a single trial in-process and print one line

kinds:
  0  page-commit   1  grow-commit             2  all-commit
  3  alloc-cost    4  alloc-cost-commit-some  5  heap-alloc-cost

index picks from the size table of the kind; extra is the write flag (0/1)
for kinds 0-2 and the per-instance byte size for kinds 3-5.
`)
}
