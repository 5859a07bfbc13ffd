// Package pretty renders durations and byte counts the way the benchmark
// report prints them: whole numbers, binary units, no padding.
package pretty

import (
	"fmt"
	"time"
)

// Binary size units.
const (
	KiB uint64 = 1 << 10
	MiB        = KiB << 10
	GiB        = MiB << 10
	TiB        = GiB << 10
)

// Duration formats d using the coarsest unit that keeps the value readable.
// Everything under ten seconds stays in milliseconds or finer so short
// trials keep some precision.
func Duration(d time.Duration) string {
	ns := d.Nanoseconds()
	switch {
	case ns < 1_000:
		return fmt.Sprintf("%dns", ns)
	case ns < 1_000_000:
		return fmt.Sprintf("%dus", ns/1_000)
	case ns < 10_000_000_000:
		return fmt.Sprintf("%dms", ns/1_000_000)
	default:
		return fmt.Sprintf("%ds", ns/1_000_000_000)
	}
}

// Bytes formats n as a whole number of the largest binary unit that fits.
func Bytes(n uint64) string {
	switch {
	case n < KiB:
		return fmt.Sprintf("%dbytes", n)
	case n < MiB:
		return fmt.Sprintf("%dKiB", n/KiB)
	case n < GiB:
		return fmt.Sprintf("%dMiB", n/MiB)
	case n < TiB:
		return fmt.Sprintf("%dGiB", n/GiB)
	default:
		return fmt.Sprintf("%dTiB", n/TiB)
	}
}
