//go:build !windows

package cursoragent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpawn_FallsThroughMissingCandidates(t *testing.T) {
	candidates := []string{"/nonexistent/one", "/nonexistent/two", "/bin/sh"}

	h, err := spawn(candidates, []string{"-c", "exit 0"}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "/bin/sh", h.command)

	_ = h.stdin.Close()
	_ = h.cmd.Wait()
}

func TestSpawn_AllCandidatesMissing(t *testing.T) {
	candidates := []string{"/nonexistent/one", "/nonexistent/two"}

	_, err := spawn(candidates, nil, "", nil)
	var spawnErr *SpawnError
	require.ErrorAs(t, err, &spawnErr)
	assert.Equal(t, candidates, spawnErr.Candidates)
}

func TestRunOneShot_CapturesBothStreams(t *testing.T) {
	res, err := runOneShot(context.Background(),
		[]string{"/bin/sh"}, []string{"-c", "echo out; echo err >&2"},
		"", nil, 5*time.Second)
	require.NoError(t, err)

	require.NotNil(t, res.ExitCode)
	assert.Equal(t, 0, *res.ExitCode)
	assert.Equal(t, "out\n", res.Stdout)
	assert.Equal(t, "err\n", res.Stderr)
	assert.Equal(t, "out\nerr\n", res.Output())
}

func TestRunOneShot_NonZeroExit(t *testing.T) {
	res, err := runOneShot(context.Background(),
		[]string{"/bin/sh"}, []string{"-c", "exit 7"},
		"", nil, 5*time.Second)
	require.NoError(t, err)

	require.NotNil(t, res.ExitCode)
	assert.Equal(t, 7, *res.ExitCode)
}

func TestRunOneShot_DeadlineKillsProcess(t *testing.T) {
	start := time.Now()
	res, err := runOneShot(context.Background(),
		[]string{"/bin/sh"}, []string{"-c", "echo partial; sleep 30"},
		"", nil, 200*time.Millisecond)
	require.NoError(t, err, "a deadline overrun is a result, not an error")

	assert.Nil(t, res.ExitCode)
	assert.Equal(t, "SIGKILL", res.Signal)
	assert.Equal(t, "partial\n", res.Stdout, "output before the kill is kept")
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestRunOneShot_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	res, err := runOneShot(ctx,
		[]string{"/bin/sh"}, []string{"-c", "sleep 30"},
		"", nil, time.Minute)
	require.NoError(t, err)
	assert.Nil(t, res.ExitCode)
	assert.Equal(t, "SIGKILL", res.Signal)
}

func TestRunOneShot_SpawnFailure(t *testing.T) {
	_, err := runOneShot(context.Background(),
		[]string{"/nonexistent/agent"}, []string{"status"},
		"", nil, time.Second)
	var spawnErr *SpawnError
	require.ErrorAs(t, err, &spawnErr)
}
