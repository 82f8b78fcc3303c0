//go:build windows

package procgroup

import "os"

// Interrupt terminates the process. Windows has no SIGTERM equivalent that
// a console-less host can deliver, so this is as graceful as it gets.
func Interrupt(p *os.Process) error {
	if p == nil {
		return nil
	}
	return p.Kill()
}

// Kill forcibly terminates the process.
func Kill(p *os.Process) error {
	if p == nil {
		return nil
	}
	return p.Kill()
}
