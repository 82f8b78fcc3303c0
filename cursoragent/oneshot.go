package cursoragent

import (
	"bytes"
	"context"
	"io"
	"time"

	"golang.org/x/sync/errgroup"
)

// OneShotResult is what an auxiliary invocation produced. ExitCode is nil
// when the process did not exit on its own (deadline hit or context
// canceled); Signal then names the synthetic termination signal.
type OneShotResult struct {
	ExitCode *int
	Signal   string
	Stdout   string
	Stderr   string
}

// Output returns stdout and stderr joined, for callers that classify text.
func (r *OneShotResult) Output() string {
	return r.Stdout + r.Stderr
}

// runOneShot runs the agent to completion with a deadline, buffering both
// output streams in memory. It is used for status checks, login, and session
// listing — never for a chat turn, which must stream. A deadline overrun is
// a result, not an error: auxiliary probes must degrade gracefully.
func runOneShot(ctx context.Context, candidates, args []string, cwd string, env []string, timeout time.Duration) (*OneShotResult, error) {
	h, err := spawn(candidates, args, cwd, env)
	if err != nil {
		return nil, err
	}
	// Nothing is ever written to an auxiliary invocation.
	_ = h.stdin.Close()

	var stdout, stderr bytes.Buffer
	var g errgroup.Group
	g.Go(func() error {
		_, err := io.Copy(&stdout, h.stdout)
		return err
	})
	g.Go(func() error {
		_, err := io.Copy(&stderr, h.stderr)
		return err
	})

	waitCh := make(chan error, 1)
	go func() {
		_ = g.Wait()
		waitCh <- h.cmd.Wait()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	killed := false
	select {
	case <-waitCh:
	case <-timer.C:
		killed = true
	case <-ctx.Done():
		killed = true
	}

	if killed {
		h.kill()
		// The kill closes the pipes; the drain goroutines and Wait finish
		// promptly after that.
		<-waitCh
		return &OneShotResult{
			Signal: "SIGKILL",
			Stdout: stdout.String(),
			Stderr: stderr.String(),
		}, nil
	}

	res := &OneShotResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if code := h.cmd.ProcessState.ExitCode(); code >= 0 {
		res.ExitCode = &code
	} else {
		// Exited on a signal delivered by someone else.
		res.Signal = h.cmd.ProcessState.String()
	}
	return res, nil
}
