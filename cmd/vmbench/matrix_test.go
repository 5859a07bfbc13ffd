package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"vmbench/internal/bench"
	"vmbench/internal/pretty"
	"vmbench/internal/vmem"
)

var testInfo = vmem.Info{
	PageSize:     4096,
	ReserveLimit: 64 * pretty.GiB,
	CommitLimit:  8 * pretty.GiB,
}

func TestMatrixHonorsReserveCapability(t *testing.T) {
	withReserve := matrix(testInfo, true)
	withoutReserve := matrix(testInfo, false)

	require.Greater(t, len(withReserve), len(withoutReserve))

	// Without uncommitted reservations the on-demand strategies cannot
	// run at all, so no trial may name them.
	for _, sec := range withoutReserve {
		for _, p := range sec.trials {
			require.NotEqual(t, bench.PageCommit, p.Kind, "section %q", sec.header)
			require.NotEqual(t, bench.GrowCommit, p.Kind, "section %q", sec.header)
		}
	}
}

func TestMatrixSpanSections(t *testing.T) {
	sections := matrix(testInfo, true)

	// Reserve-only sweeps every size bucket; anything that commits stops
	// at the commit-safe prefix.
	require.Equal(t, "VirtualVec, reserve, no commit, no write", sections[0].header)
	require.Len(t, sections[0].trials, len(bench.TestBytes))

	require.Equal(t, "VirtualVec, commit all, no write", sections[1].header)
	require.Len(t, sections[1].trials, bench.CommitSafeSizes)

	for i, p := range sections[0].trials {
		require.Equal(t, bench.PageCommit, p.Kind)
		require.Equal(t, i, p.Index)
		require.EqualValues(t, 0, p.Extra)
	}
}

func TestMatrixTrialsAreWireValid(t *testing.T) {
	for _, canReserve := range []bool{true, false} {
		for _, sec := range matrix(testInfo, canReserve) {
			for _, p := range sec.trials {
				got, err := bench.ParseParams(p.Args())
				require.NoError(t, err, "section %q trial %+v", sec.header, p)
				require.Equal(t, p, got)
			}
		}
	}
}

func TestAllocTrialsReserveRule(t *testing.T) {
	trials := allocTrials(bench.AllocCost, pretty.GiB, testInfo, true)

	// 64 GiB address space: totals must stay under 32 GiB, so the counts
	// stop after 25.
	require.Len(t, trials, 4)
	for _, p := range trials {
		total := pretty.GiB * uint64(bench.AllocCounts[p.Index])
		require.Less(t, total, testInfo.ReserveLimit/2)
	}
}

func TestAllocTrialsCommitRule(t *testing.T) {
	reserving := allocTrials(bench.AllocCost, pretty.GiB, testInfo, true)

	// Without reserve support every allocation commits, so the commit
	// ceiling cuts in: only 1x1 GiB stays under 4 GiB.
	eager := allocTrials(bench.AllocCost, pretty.GiB, testInfo, false)
	require.Len(t, eager, 1)
	require.Less(t, len(eager), len(reserving))

	// The heap baseline commits by construction and gets the same cut.
	heap := allocTrials(bench.HeapAllocCost, pretty.GiB, testInfo, true)
	require.Len(t, heap, len(eager))
}
