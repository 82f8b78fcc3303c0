//go:build !windows

package procgroup

import (
	"os"
	"syscall"
)

// Interrupt sends SIGTERM to the entire process group. The negative pid
// addresses the group, so children spawned by the agent get the signal too.
func Interrupt(p *os.Process) error {
	if p == nil {
		return nil
	}
	return syscall.Kill(-p.Pid, syscall.SIGTERM)
}

// Kill sends SIGKILL to the entire process group.
func Kill(p *os.Process) error {
	if p == nil {
		return nil
	}
	return syscall.Kill(-p.Pid, syscall.SIGKILL)
}
