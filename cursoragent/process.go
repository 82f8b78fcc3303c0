package cursoragent

import (
	"errors"
	"io"
	"io/fs"
	"os/exec"
	"time"

	"github.com/inkwell-app/agentbridge/internal/procgroup"
)

// terminateGrace is how long a process gets to honor SIGTERM before the
// whole group is killed.
const terminateGrace = 500 * time.Millisecond

// procHandle owns one live agent process: its three byte streams and its
// termination. Exactly one bridge invocation owns a handle at a time.
type procHandle struct {
	cmd     *exec.Cmd
	command string // the candidate that spawned
	stdin   io.WriteCloser
	stdout  io.ReadCloser
	stderr  io.ReadCloser
}

// spawn starts the first runnable candidate. A candidate whose executable is
// missing moves on to the next; any other start failure is fatal. Start
// returning nil means the OS has confirmed the process image is running, so
// a handle is never returned for a process that failed to exec.
func spawn(candidates, args []string, cwd string, env []string) (*procHandle, error) {
	var lastNotFound error
	for _, candidate := range candidates {
		cmd := exec.Command(candidate, args...)
		cmd.Dir = cwd
		cmd.Env = env
		procgroup.Configure(cmd)

		stdin, err := cmd.StdinPipe()
		if err != nil {
			return nil, &SpawnError{Candidates: []string{candidate}, Cause: err}
		}
		stdout, err := cmd.StdoutPipe()
		if err != nil {
			return nil, &SpawnError{Candidates: []string{candidate}, Cause: err}
		}
		stderr, err := cmd.StderrPipe()
		if err != nil {
			return nil, &SpawnError{Candidates: []string{candidate}, Cause: err}
		}

		if err := cmd.Start(); err != nil {
			if isNotFound(err) {
				lastNotFound = err
				continue
			}
			return nil, &SpawnError{Candidates: []string{candidate}, Cause: err}
		}

		return &procHandle{
			cmd:     cmd,
			command: candidate,
			stdin:   stdin,
			stdout:  stdout,
			stderr:  stderr,
		}, nil
	}

	return nil, &SpawnError{Candidates: candidates, Cause: lastNotFound}
}

// isNotFound reports whether a start failure means "executable missing",
// which is retryable with the next candidate.
func isNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist)
}

// terminate tears the process group down: SIGTERM, a short grace period,
// then SIGKILL. Signalling a group that already exited is harmless, so this
// is safe to call more than once and races with Wait without consequence.
func (h *procHandle) terminate() {
	if h == nil || h.cmd.Process == nil {
		return
	}
	_ = procgroup.Interrupt(h.cmd.Process)
	time.Sleep(terminateGrace)
	_ = procgroup.Kill(h.cmd.Process)
}

// kill skips the grace period. Used when the caller already has a deadline.
func (h *procHandle) kill() {
	if h == nil || h.cmd.Process == nil {
		return
	}
	_ = procgroup.Kill(h.cmd.Process)
}
