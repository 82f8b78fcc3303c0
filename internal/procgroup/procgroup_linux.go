//go:build linux

// Package procgroup configures spawned agent processes so the whole
// process tree can be signalled and is not orphaned when the host dies.
package procgroup

import (
	"os/exec"
	"syscall"
)

// Configure places the child in its own process group and requests SIGTERM
// on parent death. Pdeathsig covers the case where the host application is
// killed outright (OOM kill, SIGKILL) and never runs its shutdown path.
func Configure(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid:   true,
		Pdeathsig: syscall.SIGTERM,
	}
}
