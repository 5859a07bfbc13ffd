// Package isolate runs one benchmark trial per child process.
//
// The OS keeps per-process bookkeeping that a trial would otherwise leave
// behind for the next one: page tables, working set, commit charge. Each
// trial therefore re-invokes the benchmark executable with the trial's
// coordinates and lets the child print its own result line. The only
// channel between parent and child is the child's combined output stream.
package isolate

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Result is what a finished child left behind.
type Result struct {
	// ExitCode is the child's exit status. A nonzero child usually means
	// the trial hit a platform limit and bailed out on purpose.
	ExitCode int
	// Output is the child's combined stdout and stderr, in write order.
	Output []byte
}

// Runner spawns children of a single executable, one at a time.
type Runner struct {
	// Exe is the executable to re-invoke.
	Exe string
	// Stdout receives each child's combined output as it is produced.
	// Defaults to discarding when nil.
	Stdout io.Writer
}

// New returns a Runner that forwards child output to the parent's stdout.
func New(exe string) *Runner {
	return &Runner{Exe: exe, Stdout: os.Stdout}
}

// Run spawns Exe with args, streams the child's combined stdout and stderr
// to r.Stdout while keeping a copy, and blocks until the child exits.
//
// There is no timeout: a child that wedges inside the kernel (known to
// happen at extreme reservation counts) stalls the whole run.
func (r *Runner) Run(args ...string) (Result, error) {
	// One pipe serves both of the child's output streams so their
	// interleaving survives the trip.
	pr, pw, err := os.Pipe()
	if err != nil {
		return Result{}, fmt.Errorf("isolate: pipe: %w", err)
	}

	cmd := exec.Command(r.Exe, args...)
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		pr.Close()
		pw.Close()
		return Result{}, fmt.Errorf("isolate: spawn %s: %w", r.Exe, err)
	}
	// The child holds its own copy of the write end; drop ours so the read
	// side sees EOF when the child exits.
	pw.Close()

	dst := r.Stdout
	if dst == nil {
		dst = io.Discard
	}
	var buf bytes.Buffer
	_, copyErr := io.Copy(dst, io.TeeReader(pr, &buf))
	pr.Close()

	err = cmd.Wait()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return Result{ExitCode: -1, Output: buf.Bytes()},
				fmt.Errorf("isolate: wait for %s: %w", r.Exe, err)
		}
		// A dead child is still a result; the caller reads the code.
	}
	if copyErr != nil {
		return Result{}, fmt.Errorf("isolate: read child output: %w", copyErr)
	}
	return Result{
		ExitCode: cmd.ProcessState.ExitCode(),
		Output:   buf.Bytes(),
	}, nil
}
