package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenStore(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_SaveAndLoad(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	msgs := []ChatMessage{
		NewMessage(RoleUser, "question"),
		NewMessage(RoleAssistant, "answer"),
	}
	require.NoError(t, store.SaveSession(ctx, "s1", "cursor-fast", msgs))

	model, loaded, err := store.LoadSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "cursor-fast", model)
	require.Len(t, loaded, 2)
	assert.Equal(t, "question", loaded[0].Content)
	assert.Equal(t, RoleAssistant, loaded[1].Role)
}

func TestStore_SaveReplacesHistory(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveSession(ctx, "s1", "m", []ChatMessage{
		NewMessage(RoleUser, "old"),
	}))
	require.NoError(t, store.SaveSession(ctx, "s1", "m2", []ChatMessage{
		NewMessage(RoleUser, "new one"),
		NewMessage(RoleAssistant, "new two"),
	}))

	model, loaded, err := store.LoadSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "m2", model)
	require.Len(t, loaded, 2)
	assert.Equal(t, "new one", loaded[0].Content)
}

func TestStore_LoadMissing(t *testing.T) {
	store := openTestStore(t)

	_, _, err := store.LoadSession(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestStore_ListSessions(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveSession(ctx, "older", "m", []ChatMessage{NewMessage(RoleUser, "a")}))
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, store.SaveSession(ctx, "newer", "m", []ChatMessage{
		NewMessage(RoleUser, "b"),
		NewMessage(RoleAssistant, "c"),
	}))

	sessions, err := store.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "newer", sessions[0].ID, "most recently updated first")
	assert.Equal(t, 2, sessions[0].Messages)
	assert.Equal(t, 1, sessions[1].Messages)
}

func TestStore_DeleteSession(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveSession(ctx, "s1", "m", []ChatMessage{NewMessage(RoleUser, "a")}))
	require.NoError(t, store.DeleteSession(ctx, "s1"))

	_, _, err := store.LoadSession(ctx, "s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	sessions, err := store.ListSessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}
