//go:build windows

// Package procgroup configures spawned agent processes so the whole
// process tree can be signalled and is not orphaned when the host dies.
package procgroup

import "os/exec"

// Configure is a no-op on Windows; termination goes through the process
// handle rather than a unix process group.
func Configure(cmd *exec.Cmd) {}
