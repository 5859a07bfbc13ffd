//go:build amd64 || arm64

package vmem

// Fallback limits for 64-bit architectures. User address space runs out
// around 2^47 and the kernel rarely reports a tighter bound; 32 GiB stands
// in for the commit ceiling when the platform cannot be queried.
const (
	defaultReserveLimit uint64 = 1 << 47  // 128 TiB
	defaultCommitLimit  uint64 = 32 << 30 // 32 GiB
)
