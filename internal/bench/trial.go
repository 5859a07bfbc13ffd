package bench

import (
	"fmt"
	"io"
	"time"

	"github.com/ncw/directio"

	"vmbench/internal/pretty"
	"vmbench/internal/virtualvec"
	"vmbench/internal/vmem"
)

// elem is the element type every trial stores. Four bytes keeps the
// elements-per-page arithmetic the same on every platform.
type elem = int32

const elemSize = 4

// Run executes one trial in the current process and prints its result line
// to w. An OS-level allocation failure aborts the trial with an error; the
// child main turns that into a nonzero exit and the report shows a gap.
func Run(w io.Writer, info vmem.Info, p Params) error {
	if err := p.validate(); err != nil {
		return err
	}
	switch p.Kind {
	case PageCommit:
		return runSpan(w, info, virtualvec.OnDemand, p)
	case GrowCommit:
		return runSpan(w, info, virtualvec.Geometric, p)
	case AllCommit:
		return runSpan(w, info, virtualvec.Eager, p)
	case AllocCost:
		return runAllocCost(w, info, p, false)
	case AllocCostCommitSome:
		return runAllocCost(w, info, p, true)
	case HeapAllocCost:
		return runHeapAlloc(w, info, p)
	default:
		return fmt.Errorf("bench: unknown trial kind %d", p.Kind)
	}
}

// runSpan times reserve plus commit of a single span sized by the trial's
// byte bucket, optionally populating every element on the way.
func runSpan(w io.Writer, info vmem.Info, s virtualvec.Strategy, p Params) error {
	numBytes := TestBytes[p.Index]
	numElements := int(numBytes / elemSize)
	write := p.Extra == 1

	start := time.Now()
	vec := virtualvec.New[elem](info, s)
	if err := vec.Init(numElements); err != nil {
		return err
	}
	defer vec.Close()
	if write {
		for i := 0; i < numElements; i++ {
			vec.Append(elem(i))
		}
	}
	elapsed := time.Since(start)

	_, err := fmt.Fprintf(w, "    Bytes: %s  Time: %s\n",
		pretty.Bytes(numBytes), pretty.Duration(elapsed))
	return err
}

// runAllocCost builds N spans of p.Extra bytes each, timing the aggregate
// and the marginal (last) initialization. With commitSome it then writes
// one element per page round-robin across the instances until CommitBudget
// is spent or the reservations run out of pages.
func runAllocCost(w io.Writer, info vmem.Info, p Params, commitSome bool) error {
	numAlloc := AllocCounts[p.Index]
	perBytes := p.Extra
	numElements := int(perBytes / elemSize)

	// Reserving platforms measure pure reservations; everywhere else the
	// commit is paid up front at Init.
	strategy := virtualvec.OnDemand
	if !vmem.CanReserve() {
		strategy = virtualvec.Eager
	}

	vecs := make([]*virtualvec.Vec[elem], numAlloc)
	for i := range vecs {
		vecs[i] = virtualvec.New[elem](info, strategy)
	}
	defer func() {
		for _, v := range vecs {
			v.Close()
		}
	}()

	// lastAlloc keeps the final measurement, the marginal cost once the
	// process already holds numAlloc-1 reservations.
	var lastAlloc time.Duration
	start := time.Now()
	for _, v := range vecs {
		allocStart := time.Now()
		if err := v.Init(numElements); err != nil {
			return err
		}
		lastAlloc = time.Since(allocStart)
	}
	elapsed := time.Since(start)

	perAlloc := elapsed / time.Duration(numAlloc)
	totalBytes := perBytes * uint64(numAlloc)
	perMib := perMibTime(elapsed, totalBytes)

	if !commitSome {
		_, err := fmt.Fprintf(w,
			"    N: %d  TotalTime: %s  TotalReserved: %s  PerVirtualAlloc: %dns / %s  PerVirtualMib: %s  LastAlloc: %s\n",
			numAlloc, pretty.Duration(elapsed), pretty.Bytes(totalBytes),
			perAlloc.Nanoseconds(), pretty.Duration(perAlloc),
			pretty.Duration(perMib), pretty.Duration(lastAlloc))
		return err
	}

	// Touch phase: one element per page, round-robin across the instances
	// so every write lands on an uncommitted page of a different span.
	elementsPerPage := int(info.PageSize / elemSize)
	nextPage := make([]int, numAlloc)
	var (
		next         int
		pagesWritten uint64
	)
	commitStart := time.Now()
	for budget := int64(CommitBudget); budget > 0; budget -= int64(info.PageSize) {
		page := nextPage[next]
		nextPage[next]++
		if uintptr(page)*info.PageSize >= vecs[next].Reserved() {
			// Every instance is the same size, so one running out means
			// they all have.
			break
		}
		i := page * elementsPerPage
		vecs[next].EnsureIndex(i)
		vecs[next].Store(i, 42)
		pagesWritten++
		next = (next + 1) % numAlloc
	}
	commitElapsed := time.Since(commitStart)

	var perPage time.Duration
	if pagesWritten > 0 {
		perPage = commitElapsed / time.Duration(pagesWritten)
	}
	_, err := fmt.Fprintf(w,
		"    N: %d  TotalTime: %s  TotalReserved: %s  TotalCommitted: %s  PerVirtualAlloc: %dns / %s  PerVirtualMib: %s  LastAlloc: %s  PerPageWrite: %dns / %s\n",
		numAlloc, pretty.Duration(elapsed), pretty.Bytes(totalBytes),
		pretty.Bytes(pagesWritten*uint64(info.PageSize)),
		perAlloc.Nanoseconds(), pretty.Duration(perAlloc),
		pretty.Duration(perMib), pretty.Duration(lastAlloc),
		perPage.Nanoseconds(), pretty.Duration(perPage))
	return err
}

// runHeapAlloc is the baseline arm: the same N-instances-then-touch shape,
// but the instances are page-aligned heap buffers instead of reservations,
// so the line shows what the allocator charges for the identical pattern.
func runHeapAlloc(w io.Writer, info vmem.Info, p Params) error {
	numAlloc := AllocCounts[p.Index]
	perBytes := p.Extra

	bufs := make([][]byte, numAlloc)
	var lastAlloc time.Duration
	start := time.Now()
	for i := range bufs {
		allocStart := time.Now()
		bufs[i] = directio.AlignedBlock(int(perBytes))
		lastAlloc = time.Since(allocStart)
	}
	elapsed := time.Since(start)

	perAlloc := elapsed / time.Duration(numAlloc)
	totalBytes := perBytes * uint64(numAlloc)
	perMib := perMibTime(elapsed, totalBytes)

	nextPage := make([]int, numAlloc)
	var (
		next         int
		pagesWritten uint64
	)
	touchStart := time.Now()
	for budget := int64(CommitBudget); budget > 0; budget -= int64(info.PageSize) {
		page := nextPage[next]
		nextPage[next]++
		off := uintptr(page) * info.PageSize
		if off >= uintptr(len(bufs[next])) {
			break
		}
		bufs[next][off] = 42
		pagesWritten++
		next = (next + 1) % numAlloc
	}
	touchElapsed := time.Since(touchStart)

	var perPage time.Duration
	if pagesWritten > 0 {
		perPage = touchElapsed / time.Duration(pagesWritten)
	}
	_, err := fmt.Fprintf(w,
		"    N: %d  TotalTime: %s  TotalAllocated: %s  TotalTouched: %s  PerAlloc: %dns / %s  PerMib: %s  LastAlloc: %s  PerPageWrite: %dns / %s\n",
		numAlloc, pretty.Duration(elapsed), pretty.Bytes(totalBytes),
		pretty.Bytes(pagesWritten*uint64(info.PageSize)),
		perAlloc.Nanoseconds(), pretty.Duration(perAlloc),
		pretty.Duration(perMib), pretty.Duration(lastAlloc),
		perPage.Nanoseconds(), pretty.Duration(perPage))
	return err
}

// perMibTime normalizes a trial time by its total megabytes, saturating at
// one so sub-MiB runs driven by hand do not divide by zero.
func perMibTime(elapsed time.Duration, totalBytes uint64) time.Duration {
	mibs := totalBytes / pretty.MiB
	if mibs == 0 {
		mibs = 1
	}
	return elapsed / time.Duration(mibs)
}
