//go:build !windows

package ledger

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-app/agentbridge/cursoragent"
	"github.com/inkwell-app/agentbridge/internal/logging"
)

func writeStubAgent(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cursor-agent")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	return path
}

func runRecordedTurn(t *testing.T, script, prompt string) (*Ledger, *cursoragent.Bridge) {
	t.Helper()
	t.Setenv(cursoragent.EnvCredential, "test-key")

	bridge := cursoragent.NewBridge(cursoragent.Options{
		BinaryPath: writeStubAgent(t, script),
		Logger:     logging.Nop(),
	})
	l := NewLedger()
	rec := NewRecorder(bridge, l)
	defer rec.Close()

	closed := make(chan struct{})
	bridge.Subscribe(cursoragent.EventClose, func(cursoragent.Event) { close(closed) })

	require.NoError(t, rec.Send(context.Background(), prompt))
	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Fatal("turn never completed")
	}
	return l, bridge
}

func TestRecorder_FullTurnRecorded(t *testing.T) {
	l, bridge := runRecordedTurn(t, `
printf '{"type":"system","subtype":"init","session_id":"s1","model":"cursor-fast"}\n'
printf '{"type":"assistant","message":{"role":"assistant","content":[{"type":"text","text":"Hello "}]},"session_id":"s1"}\n'
printf '{"type":"assistant","message":{"role":"assistant","content":[{"type":"text","text":"World"}]},"session_id":"s1"}\n'
printf '{"type":"result","subtype":"success","is_error":false,"result":"done","session_id":"s1"}\n'
`, "say hello")

	assert.Equal(t, "s1", bridge.SessionID())
	assert.Equal(t, "s1", l.CurrentSessionID())
	assert.Equal(t, "cursor-fast", l.CurrentModel())

	msgs := l.Messages("")
	require.Len(t, msgs, 2)
	assert.Equal(t, RoleUser, msgs[0].Role)
	assert.Equal(t, "say hello", msgs[0].Content)
	assert.Equal(t, RoleAssistant, msgs[1].Role)
	assert.Equal(t, "Hello World", msgs[1].Content,
		"the assistant message is the accumulated turn text, not the last fragment")
	assert.Empty(t, l.Pending())
}

func TestRecorder_ErrorTurnRecordsNoAssistantMessage(t *testing.T) {
	l, _ := runRecordedTurn(t, `
printf '{"type":"system","subtype":"init","session_id":"s1","model":"m"}\n'
printf '{"type":"result","subtype":"error","is_error":true,"result":"model overloaded","session_id":"s1"}\n'
`, "try this")

	msgs := l.Messages("")
	require.Len(t, msgs, 1)
	assert.Equal(t, RoleUser, msgs[0].Role)
}

func TestRecorder_UserMessagePendingUntilInit(t *testing.T) {
	// The stub exits without ever naming a session, so the user message must
	// stay in the pending buffer rather than land in a phantom conversation.
	l, _ := runRecordedTurn(t, `exit 0`, "lost turn")

	assert.Empty(t, l.CurrentSessionID())
	require.Len(t, l.Pending(), 1)
	assert.Equal(t, "lost turn", l.Pending()[0].Content)
}
