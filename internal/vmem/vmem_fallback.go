//go:build !linux

package vmem

import (
	"fmt"

	mmap "github.com/edsrzf/mmap-go"
)

// CanReserve reports whether address space can be claimed without
// committing it. Only the Linux backend has that split; here every mapping
// arrives committed, so commit-on-demand strategies are unavailable.
func CanReserve() bool { return false }

// Reserve is unavailable on this platform.
func Reserve(size uintptr) (Region, error) {
	return Region{}, ErrNoReserve
}

// ReserveCommitted claims size bytes that are immediately readable and
// writable.
func ReserveCommitted(size uintptr) (Region, error) {
	if size < 1 {
		return Region{}, fmt.Errorf("vmem: invalid reservation size %d", size)
	}
	buf, err := mmap.MapRegion(nil, int(size), mmap.RDWR, mmap.ANON, 0)
	if err != nil {
		return Region{}, fmt.Errorf("vmem: reserve+commit %d bytes: %w", size, err)
	}
	return Region{buf: buf}, nil
}

// Commit is unavailable on this platform; ReserveCommitted is the only way
// to get usable pages.
func (r Region) Commit(off, n uintptr) error {
	return ErrNoReserve
}

// Release returns the whole mapping to the OS.
func (r Region) Release() error {
	if r.buf == nil {
		return nil
	}
	m := mmap.MMap(r.buf)
	if err := m.Unmap(); err != nil {
		return fmt.Errorf("vmem: release: %w", err)
	}
	return nil
}

func reserveLimit() uint64 { return defaultReserveLimit }

func commitLimit() uint64 { return defaultCommitLimit }
