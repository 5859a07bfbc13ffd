package vmem

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// CanReserve reports whether address space can be claimed without
// committing it. Linux can: an anonymous PROT_NONE mapping takes the range
// out of circulation and mprotect backs pages later, the same split the
// runtime uses between sysReserve and sysMap.
func CanReserve() bool { return true }

// Reserve claims size bytes of address space with no physical backing. The
// pages are inaccessible until committed.
func Reserve(size uintptr) (Region, error) {
	if size < 1 {
		return Region{}, fmt.Errorf("vmem: invalid reservation size %d", size)
	}
	buf, err := unix.Mmap(-1, 0, int(size), unix.PROT_NONE,
		unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return Region{}, fmt.Errorf("vmem: reserve %d bytes: %w", size, err)
	}
	return Region{buf: buf}, nil
}

// ReserveCommitted claims size bytes that are immediately readable and
// writable.
func ReserveCommitted(size uintptr) (Region, error) {
	if size < 1 {
		return Region{}, fmt.Errorf("vmem: invalid reservation size %d", size)
	}
	buf, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return Region{}, fmt.Errorf("vmem: reserve+commit %d bytes: %w", size, err)
	}
	return Region{buf: buf}, nil
}

// Commit backs [off, off+n) of the reservation with real memory. Both off
// and n must be page multiples.
func (r Region) Commit(off, n uintptr) error {
	if n == 0 {
		return nil
	}
	if off+n > uintptr(len(r.buf)) {
		return fmt.Errorf("vmem: commit [%d, %d) outside reservation of %d bytes",
			off, off+n, len(r.buf))
	}
	if err := unix.Mprotect(r.buf[off:off+n], unix.PROT_READ|unix.PROT_WRITE); err != nil {
		return fmt.Errorf("vmem: commit %d bytes at offset %d: %w", n, off, err)
	}
	return nil
}

// Release returns the whole reservation, committed or not, to the OS.
func (r Region) Release() error {
	if r.buf == nil {
		return nil
	}
	if err := unix.Munmap(r.buf); err != nil {
		return fmt.Errorf("vmem: release: %w", err)
	}
	return nil
}

func reserveLimit() uint64 {
	var rl unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_AS, &rl); err != nil {
		return defaultReserveLimit
	}
	if rl.Cur == unix.RLIM_INFINITY {
		return defaultReserveLimit
	}
	return uint64(rl.Cur)
}

// commitLimit approximates the commit ceiling as RAM plus swap, which is
// roughly what the default overcommit heuristic will agree to back.
func commitLimit() uint64 {
	var si unix.Sysinfo_t
	if err := unix.Sysinfo(&si); err != nil {
		return defaultCommitLimit
	}
	return (uint64(si.Totalram) + uint64(si.Totalswap)) * uint64(si.Unit)
}
