package isolate

import (
	"bytes"
	"io"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func needsShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("tests drive a POSIX shell")
	}
}

func TestRunCombinesAndForwardsOutput(t *testing.T) {
	needsShell(t)
	var forwarded bytes.Buffer
	r := &Runner{Exe: "sh", Stdout: &forwarded}

	res, err := r.Run("-c", "echo out; echo err 1>&2; echo more")
	require.NoError(t, err)
	require.Zero(t, res.ExitCode)

	// stdout and stderr share one pipe, so write order is preserved.
	require.Equal(t, "out\nerr\nmore\n", string(res.Output))
	require.Equal(t, res.Output, forwarded.Bytes())
}

func TestRunReportsExitCode(t *testing.T) {
	needsShell(t)
	r := &Runner{Exe: "sh", Stdout: io.Discard}

	res, err := r.Run("-c", "echo dying 1>&2; exit 7")
	require.NoError(t, err)
	require.Equal(t, 7, res.ExitCode)
	require.Equal(t, "dying\n", string(res.Output))
}

func TestRunSpawnFailure(t *testing.T) {
	r := &Runner{Exe: "/nonexistent/trial-binary"}
	_, err := r.Run("0", "0", "0")
	require.Error(t, err)
}

func TestRunNilStdoutDiscards(t *testing.T) {
	needsShell(t)
	r := &Runner{Exe: "sh"}
	res, err := r.Run("-c", "echo quiet")
	require.NoError(t, err)
	require.Equal(t, "quiet\n", string(res.Output))
}

func TestChildrenAreSeparateProcesses(t *testing.T) {
	needsShell(t)
	r := &Runner{Exe: "sh", Stdout: io.Discard}

	a, err := r.Run("-c", "echo $$")
	require.NoError(t, err)
	b, err := r.Run("-c", "echo $$")
	require.NoError(t, err)
	require.NotEqual(t, a.Output, b.Output)
}
