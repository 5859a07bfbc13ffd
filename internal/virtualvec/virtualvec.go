// Package virtualvec provides a growable array whose storage is a single
// fixed reservation of address space, with physical pages committed
// according to a per-instance strategy.
//
// A Vec never reallocates or copies. Init reserves the whole span once and
// growth only ever commits further pages inside it, so the commit cost of a
// workload is directly observable instead of being hidden behind an
// allocator.
package virtualvec

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"vmbench/internal/vmem"
)

// GrowthFactor is the committed-size multiplier used by the Geometric
// strategy.
const GrowthFactor = 1.5

// Strategy selects when pages of the reservation get committed. It is
// fixed at construction.
type Strategy uint8

const (
	// Eager commits the entire reservation during Init.
	Eager Strategy = iota
	// OnDemand commits one page at a time as writes cross page boundaries.
	OnDemand
	// Geometric commits chunks that grow by GrowthFactor, capped at the
	// reservation size.
	Geometric
)

func (s Strategy) String() string {
	switch s {
	case Eager:
		return "eager"
	case OnDemand:
		return "on-demand"
	case Geometric:
		return "geometric"
	default:
		return fmt.Sprintf("strategy(%d)", uint8(s))
	}
}

// ErrStrategyUnsupported is returned by Init when the strategy needs
// reserve-without-commit support the platform does not have.
var ErrStrategyUnsupported = errors.New("virtualvec: commit strategy needs reserve-without-commit support")

// Element constrains Vec to fixed-size numeric types so the element size
// arithmetic is exact and elements need no teardown.
type Element interface {
	~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Vec is a growable sequence of T backed by one reservation. An instance
// is not safe for concurrent use.
type Vec[T Element] struct {
	info     vmem.Info
	strategy Strategy
	elemSize uintptr

	region      vmem.Region
	initialized bool

	count     uintptr // elements written through Append
	reserved  uintptr // page-rounded reservation, fixed at Init
	committed uintptr // committed prefix; page-aligned, never shrinks

	release sync.Once
}

// New returns an empty Vec bound to a commit strategy. No OS work happens
// until Init.
func New[T Element](info vmem.Info, strategy Strategy) *Vec[T] {
	var zero T
	return &Vec[T]{
		info:     info,
		strategy: strategy,
		elemSize: unsafe.Sizeof(zero),
	}
}

// Init reserves address space for numElements elements, rounded up to
// whole pages. It may be called exactly once per Vec. Under Eager the
// whole reservation is also committed before Init returns; the other
// strategies commit nothing here and fail with ErrStrategyUnsupported on
// platforms that cannot reserve uncommitted space.
func (v *Vec[T]) Init(numElements int) error {
	if v.initialized {
		panic("virtualvec: Init called twice")
	}
	if numElements < 0 {
		panic("virtualvec: negative element count")
	}
	if v.strategy != Eager && !vmem.CanReserve() {
		return ErrStrategyUnsupported
	}

	bytes := v.info.RoundUpPage(uintptr(numElements) * v.elemSize)
	if bytes == 0 {
		// An empty reservation never touches the OS. Append is a misuse
		// panic from here on, same as overrunning any other capacity.
		v.initialized = true
		return nil
	}

	var (
		region vmem.Region
		err    error
	)
	if v.strategy == Eager {
		region, err = vmem.ReserveCommitted(bytes)
	} else {
		region, err = vmem.Reserve(bytes)
	}
	if err != nil {
		return err
	}

	v.region = region
	v.reserved = bytes
	if v.strategy == Eager {
		v.committed = bytes
	}
	v.initialized = true
	return nil
}

// Append writes x after the last element, committing further pages first
// when the strategy calls for it. The reservation is fixed at Init, so
// appending past Cap is a caller bug and panics.
func (v *Vec[T]) Append(x T) {
	if !v.initialized {
		panic("virtualvec: Append before Init")
	}
	end := (v.count + 1) * v.elemSize
	if end > v.reserved {
		panic("virtualvec: Append past reserved capacity")
	}
	for v.committed < end {
		v.grow()
	}
	*v.slot(v.count) = x
	v.count++
}

// EnsureIndex commits pages forward until the bytes of element i are
// backed. It is the primitive under sparse writes: it does not move Len.
func (v *Vec[T]) EnsureIndex(i int) {
	if !v.initialized {
		panic("virtualvec: EnsureIndex before Init")
	}
	end := (uintptr(i) + 1) * v.elemSize
	if end > v.reserved {
		panic("virtualvec: index past reserved capacity")
	}
	for v.committed < end {
		v.grow()
	}
}

// Load returns element i. The caller is responsible for i being committed.
func (v *Vec[T]) Load(i int) T {
	return *v.slot(uintptr(i))
}

// Store writes element i without moving Len. The caller is responsible for
// i being committed, see EnsureIndex.
func (v *Vec[T]) Store(i int, x T) {
	*v.slot(uintptr(i)) = x
}

func (v *Vec[T]) slot(i uintptr) *T {
	return (*T)(unsafe.Pointer(&v.region.Bytes()[i*v.elemSize]))
}

// grow advances the committed boundary by one step of the strategy. A
// commit refusal panics; the child process dies and its trial leaves a gap
// in the report.
func (v *Vec[T]) grow() {
	if v.committed >= v.reserved {
		panic("virtualvec: grow past reservation")
	}

	var target uintptr
	switch v.strategy {
	case OnDemand:
		target = v.committed + v.info.PageSize
	case Geometric:
		if v.committed == 0 {
			target = v.info.PageSize
		} else {
			target = v.info.RoundUpPage(uintptr(float64(v.committed) * GrowthFactor))
		}
		if target > v.reserved {
			target = v.reserved
		}
	default:
		// Eager committed everything in Init; reaching grow means the
		// capacity check above was bypassed.
		panic("virtualvec: grow on eager strategy")
	}

	// Commit page by page so every step costs one kernel round trip, the
	// granularity the trials measure.
	for v.committed < target {
		if err := v.region.Commit(v.committed, v.info.PageSize); err != nil {
			panic(fmt.Sprintf("virtualvec: %v", err))
		}
		v.committed += v.info.PageSize
	}
}

func (v *Vec[T]) Len() int { return int(v.count) }

func (v *Vec[T]) Cap() int { return int(v.reserved / v.elemSize) }

// Reserved returns the reservation size in bytes; Committed the committed
// prefix. Both are page multiples.
func (v *Vec[T]) Reserved() uintptr { return v.reserved }

func (v *Vec[T]) Committed() uintptr { return v.committed }

// Close releases the reservation. The first call wins; later calls and
// calls on a Vec that never initialized are no-ops.
func (v *Vec[T]) Close() error {
	var err error
	v.release.Do(func() {
		err = v.region.Release()
	})
	return err
}
