// Package bench defines the benchmark trials: the trial kinds, the size
// matrix the driver sweeps, and the code that runs one trial and prints
// its result line.
package bench

import (
	"fmt"
	"strconv"

	"vmbench/internal/pretty"
)

// Kind names one family of trials. The numeric values are the wire format
// between parent and child, so the order is frozen.
type Kind int

const (
	// PageCommit reserves one span and commits it a page at a time.
	PageCommit Kind = iota
	// GrowCommit reserves one span and commits it in 1.5x chunks.
	GrowCommit
	// AllCommit reserves and commits one span up front.
	AllCommit
	// AllocCost times N independent reservations.
	AllocCost
	// AllocCostCommitSome times N independent reservations, then commits
	// pages round-robin by writing one element per page.
	AllocCostCommitSome
	// HeapAllocCost is the baseline: N aligned heap buffers with the same
	// one-write-per-page phase.
	HeapAllocCost

	numKinds
)

func (k Kind) String() string {
	switch k {
	case PageCommit:
		return "page-commit"
	case GrowCommit:
		return "grow-commit"
	case AllCommit:
		return "all-commit"
	case AllocCost:
		return "alloc-cost"
	case AllocCostCommitSome:
		return "alloc-cost-commit-some"
	case HeapAllocCost:
		return "heap-alloc-cost"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Params identifies one trial. It travels between parent and child as
// three positional arguments.
type Params struct {
	Kind Kind
	// Index selects from TestBytes for the single-span kinds and from
	// AllocCounts for the allocation kinds.
	Index int
	// Extra is the write flag (0 or 1) for the single-span kinds and the
	// per-instance byte size for the allocation kinds.
	Extra uint64
}

// Args renders p as a child's positional arguments.
func (p Params) Args() []string {
	return []string{
		strconv.Itoa(int(p.Kind)),
		strconv.Itoa(p.Index),
		strconv.FormatUint(p.Extra, 10),
	}
}

// ParseParams parses the three positional arguments of a child invocation.
func ParseParams(args []string) (Params, error) {
	if len(args) != 3 {
		return Params{}, fmt.Errorf("bench: want 3 trial arguments, got %d", len(args))
	}
	kind, err := strconv.Atoi(args[0])
	if err != nil || kind < 0 || Kind(kind) >= numKinds {
		return Params{}, fmt.Errorf("bench: bad trial kind %q", args[0])
	}
	p := Params{Kind: Kind(kind)}
	p.Index, err = strconv.Atoi(args[1])
	if err != nil || p.Index < 0 {
		return Params{}, fmt.Errorf("bench: bad trial index %q", args[1])
	}
	p.Extra, err = strconv.ParseUint(args[2], 10, 64)
	if err != nil {
		return Params{}, fmt.Errorf("bench: bad trial argument %q", args[2])
	}
	if err := p.validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

func (p Params) validate() error {
	switch p.Kind {
	case PageCommit, GrowCommit, AllCommit:
		if p.Index >= len(TestBytes) {
			return fmt.Errorf("bench: size index %d out of range", p.Index)
		}
	case AllocCost, AllocCostCommitSome, HeapAllocCost:
		if p.Index >= len(AllocCounts) {
			return fmt.Errorf("bench: count index %d out of range", p.Index)
		}
		if p.Extra == 0 {
			return fmt.Errorf("bench: allocation size must be positive")
		}
	}
	return nil
}

// The trial matrix.
var (
	// TestBytes sizes the single-span trials.
	TestBytes = []uint64{
		pretty.MiB,
		10 * pretty.MiB,
		100 * pretty.MiB,
		pretty.GiB,
		4 * pretty.GiB,
		16 * pretty.GiB,
		128 * pretty.GiB,
		pretty.TiB,
	}

	// AllocCounts is how many instances the allocation-cost trials build.
	AllocCounts = []int{1, 5, 10, 25, 50, 75, 100, 250, 500}

	// AllocSizes is the per-instance size sweep for those trials.
	AllocSizes = []uint64{
		pretty.MiB,
		5 * pretty.MiB,
		10 * pretty.MiB,
		50 * pretty.MiB,
		100 * pretty.MiB,
		500 * pretty.MiB,
		pretty.GiB,
		4 * pretty.GiB,
		8 * pretty.GiB,
		16 * pretty.GiB,
	}
)

const (
	// CommitSafeSizes bounds TestBytes for the trials that commit what
	// they reserve; everything past it would blow any realistic commit
	// ceiling.
	CommitSafeSizes = 6

	// CommitBudget caps the bytes the one-write-per-page phase touches.
	CommitBudget = 4 * pretty.GiB
)
