//go:build !windows

package procgroup

import (
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigure_SetsProcessGroup(t *testing.T) {
	t.Parallel()
	cmd := exec.Command("true")
	require.Nil(t, cmd.SysProcAttr)

	Configure(cmd)

	require.NotNil(t, cmd.SysProcAttr)
	assert.True(t, cmd.SysProcAttr.Setpgid)
}

func TestInterrupt_NilProcess(t *testing.T) {
	t.Parallel()
	assert.NoError(t, Interrupt(nil))
}

func TestKill_NilProcess(t *testing.T) {
	t.Parallel()
	assert.NoError(t, Kill(nil))
}

func TestKill_RunningProcess(t *testing.T) {
	t.Parallel()

	cmd := exec.Command("sleep", "60")
	Configure(cmd)
	require.NoError(t, cmd.Start())

	require.NoError(t, Kill(cmd.Process))
	_ = cmd.Wait()
}
