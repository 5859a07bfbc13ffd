// Package vmem wraps the platform's virtual memory primitives behind a
// narrow reserve/commit/release surface.
//
// A Region is one contiguous span of reserved address space. On platforms
// with a reserve-without-commit primitive (Linux: PROT_NONE mappings plus
// mprotect) pages inside a Region start out inaccessible and become usable
// only after Commit. Everywhere else the whole Region is committed at
// creation and Commit is unavailable; CanReserve reports which world the
// process is in.
package vmem

import (
	"errors"
	"os"
)

// ErrNoReserve is returned by Reserve and Region.Commit on platforms
// without a reserve-without-commit primitive.
var ErrNoReserve = errors.New("vmem: platform cannot reserve without committing")

// Info carries the process-wide virtual memory constants. Probe it once at
// startup and pass it by value to anything doing page arithmetic.
type Info struct {
	// PageSize is the commit granularity in bytes. Always a power of two.
	PageSize uintptr
	// ReserveLimit bounds the address space one process can reserve.
	ReserveLimit uint64
	// CommitLimit bounds the bytes the OS will back with memory or swap.
	CommitLimit uint64
}

// Probe queries the platform. PageSize comes from the OS; the limits fall
// back to fixed per-arch defaults when the platform cannot report them.
func Probe() Info {
	return Info{
		PageSize:     uintptr(os.Getpagesize()),
		ReserveLimit: reserveLimit(),
		CommitLimit:  commitLimit(),
	}
}

// RoundUpPage rounds n up to the next multiple of the page size.
func (in Info) RoundUpPage(n uintptr) uintptr {
	return (n + in.PageSize - 1) &^ (in.PageSize - 1)
}

// RoundDownPage rounds n down to a multiple of the page size.
func (in Info) RoundDownPage(n uintptr) uintptr {
	return n &^ (in.PageSize - 1)
}

// Region is a reserved span of address space. The zero Region is empty;
// releasing it is a no-op.
type Region struct {
	buf []byte
}

// Bytes exposes the full reserved span. Touching bytes past the committed
// prefix faults on reserving platforms.
func (r Region) Bytes() []byte { return r.buf }

func (r Region) Size() uintptr { return uintptr(len(r.buf)) }
