//go:build 386 || arm

package vmem

// Fallback limits for 32-bit architectures. A process sees at most the
// lower ~3 GiB of address space and cannot commit more than it can map.
const (
	defaultReserveLimit uint64 = 3 << 30 // 3 GiB
	defaultCommitLimit  uint64 = 2 << 30 // 2 GiB
)
