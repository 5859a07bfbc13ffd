package vmem

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProbe(t *testing.T) {
	info := Probe()
	require.EqualValues(t, os.Getpagesize(), info.PageSize)
	require.Zero(t, info.PageSize&(info.PageSize-1), "page size must be a power of two")
	require.Positive(t, info.ReserveLimit)
	require.Positive(t, info.CommitLimit)
}

func TestPageRounding(t *testing.T) {
	info := Probe()
	ps := info.PageSize

	require.EqualValues(t, 0, info.RoundUpPage(0))
	require.Equal(t, ps, info.RoundUpPage(1))
	require.Equal(t, ps, info.RoundUpPage(ps))
	require.Equal(t, 2*ps, info.RoundUpPage(ps+1))

	require.EqualValues(t, 0, info.RoundDownPage(ps-1))
	require.Equal(t, ps, info.RoundDownPage(ps))
	require.Equal(t, ps, info.RoundDownPage(2*ps-1))
}

func TestReserveCommitRelease(t *testing.T) {
	if !CanReserve() {
		t.Skip("platform cannot reserve without committing")
	}
	info := Probe()

	r, err := Reserve(4 * info.PageSize)
	require.NoError(t, err)
	require.Equal(t, 4*info.PageSize, r.Size())

	// Commit the first two pages and write across both.
	require.NoError(t, r.Commit(0, 2*info.PageSize))
	buf := r.Bytes()
	buf[0] = 1
	buf[2*info.PageSize-1] = 2
	require.EqualValues(t, 1, buf[0])
	require.EqualValues(t, 2, buf[2*info.PageSize-1])

	// Recommitting is harmless, as is extending the committed prefix.
	require.NoError(t, r.Commit(0, 2*info.PageSize))
	require.NoError(t, r.Commit(2*info.PageSize, info.PageSize))
	buf[3*info.PageSize-1] = 3

	require.NoError(t, r.Release())
}

func TestCommitOutsideReservation(t *testing.T) {
	if !CanReserve() {
		t.Skip("platform cannot reserve without committing")
	}
	info := Probe()

	r, err := Reserve(info.PageSize)
	require.NoError(t, err)
	defer r.Release()

	require.Error(t, r.Commit(0, 2*info.PageSize))
	require.Error(t, r.Commit(info.PageSize, info.PageSize))
}

func TestReserveCommitted(t *testing.T) {
	info := Probe()

	r, err := ReserveCommitted(2 * info.PageSize)
	require.NoError(t, err)
	buf := r.Bytes()
	for i := range buf {
		buf[i] = byte(i)
	}
	require.NoError(t, r.Release())
}

func TestInvalidSizes(t *testing.T) {
	_, err := ReserveCommitted(0)
	require.Error(t, err)

	if CanReserve() {
		_, err = Reserve(0)
		require.Error(t, err)
	}
}

func TestZeroRegion(t *testing.T) {
	var r Region
	require.Nil(t, r.Bytes())
	require.Zero(t, r.Size())
	require.NoError(t, r.Release())
}
