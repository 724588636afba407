package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHistory(t *testing.T) *DiskHistory {
	t.Helper()
	h, err := NewDiskHistory(filepath.Join(t.TempDir(), "sessions"))
	require.NoError(t, err)
	return h
}

func TestDiskHistory_AppendAndLoad(t *testing.T) {
	h := newTestHistory(t)
	now := time.Now().UTC().Truncate(time.Second)

	msgs := []Message{
		{Role: "user", Content: "hello", Timestamp: now},
		{Role: "assistant", Content: "hi there", Timestamp: now.Add(time.Second)},
	}
	for _, m := range msgs {
		require.NoError(t, h.Append("S1", "/proj", m))
	}

	loaded, err := h.Load("S1", "/proj")
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "hello", loaded[0].Content)
	assert.Equal(t, "assistant", loaded[1].Role)
}

func TestDiskHistory_ExistsPerProject(t *testing.T) {
	h := newTestHistory(t)

	require.NoError(t, h.Append("S1", "/proj", Message{Role: "user", Content: "x"}))

	assert.True(t, h.Exists("S1", "/proj"))
	assert.False(t, h.Exists("S1", "/other"))
	assert.False(t, h.Exists("S2", "/proj"))
}

func TestDiskHistory_LoadSkipsCorruptLines(t *testing.T) {
	h := newTestHistory(t)

	require.NoError(t, h.Append("S1", "", Message{Role: "user", Content: "first"}))

	path := h.historyPath("S1", "")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600)
	require.NoError(t, err)
	_, err = f.WriteString("{not json\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.NoError(t, h.Append("S1", "", Message{Role: "user", Content: "second"}))

	loaded, err := h.Load("S1", "")
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "first", loaded[0].Content)
	assert.Equal(t, "second", loaded[1].Content)
}

func TestDiskHistory_RejectsUnsafeIDs(t *testing.T) {
	h := newTestHistory(t)

	for _, id := range []string{"", "../escape", "a/b", "a\\b", "bad\x00id"} {
		assert.Error(t, h.Append(id, "", Message{Role: "user", Content: "x"}), "id %q", id)
	}
}

func TestDiskHistory_Delete(t *testing.T) {
	h := newTestHistory(t)

	require.NoError(t, h.Append("S1", "/proj", Message{Role: "user", Content: "x"}))
	require.NoError(t, h.Delete("S1", "/proj"))
	assert.False(t, h.Exists("S1", "/proj"))

	// Deleting a session that never existed is not an error.
	assert.NoError(t, h.Delete("S9", "/proj"))
}

func TestMemoryStore_EvictIdle(t *testing.T) {
	history := newTestHistory(t)
	launcher := &blockingLauncher{}
	store := NewMemoryStore(launcher, history, zerolog.Nop())

	ctx := context.Background()
	old, err := store.Create(ctx, CreateParams{AgentID: "a1"})
	require.NoError(t, err)
	fresh, err := store.Create(ctx, CreateParams{AgentID: "a1"})
	require.NoError(t, err)

	store.mu.Lock()
	store.sessions[old.ID].LastUsed = time.Now().Add(-time.Hour)
	store.mu.Unlock()

	evicted := store.EvictIdle(30 * time.Minute)
	assert.Equal(t, 1, evicted)

	_, ok := store.Get(old.ID)
	assert.False(t, ok)
	_, ok = store.Get(fresh.ID)
	assert.True(t, ok)
}

func TestCleanup_RunEvictsIdleSessions(t *testing.T) {
	history := newTestHistory(t)
	launcher := &blockingLauncher{}
	store := NewMemoryStore(launcher, history, zerolog.Nop())

	sess, err := store.Create(context.Background(), CreateParams{AgentID: "a1"})
	require.NoError(t, err)

	store.mu.Lock()
	store.sessions[sess.ID].LastUsed = time.Now().Add(-time.Hour)
	store.mu.Unlock()

	c := NewCleanup(store, DefaultIdleTimeout, zerolog.Nop())
	c.Run()

	assert.Zero(t, store.Len())
	assert.True(t, sess.Handle.(*fakeHandle).closed)
}
