//go:build !linux && !windows

// Package procgroup configures spawned agent processes so the whole
// process tree can be signalled and is not orphaned when the host dies.
package procgroup

import (
	"os/exec"
	"syscall"
)

// Configure places the child in its own process group. Pdeathsig is not
// available outside Linux; the process group alone still lets the host
// signal the child and everything it spawned.
func Configure(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}
}
