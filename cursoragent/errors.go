package cursoragent

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTurnInFlight is returned by Send while a previous turn's process is
// still live. Turns are not queued.
var ErrTurnInFlight = errors.New("a turn is already in flight")

// SpawnError reports that no candidate executable could be started.
type SpawnError struct {
	Candidates []string
	Cause      error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("cursor-agent is not runnable (tried %s): %v",
		strings.Join(e.Candidates, ", "), e.Cause)
}

func (e *SpawnError) Unwrap() error { return e.Cause }

// ProcessError reports an agent process that started and then failed.
type ProcessError struct {
	ExitCode int
	Stderr   string
	Cause    error
}

func (e *ProcessError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		msg = "agent process failed"
	}
	return fmt.Sprintf("%s (exit code %d)", msg, e.ExitCode)
}

func (e *ProcessError) Unwrap() error { return e.Cause }

// AuthError reports that no authentication source could be resolved.
type AuthError struct {
	Probe string // trailing output of the login-status probe, if any
}

func (e *AuthError) Error() string {
	if e.Probe != "" {
		return fmt.Sprintf("not authenticated with Cursor (probe said: %s)", e.Probe)
	}
	return "not authenticated with Cursor: set CURSOR_API_KEY, configure an API key, or run cursor-agent login"
}
