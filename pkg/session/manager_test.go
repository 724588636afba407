package session

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentplane/agentplane/pkg/launch"
)

type fakeHandle struct {
	closed bool
}

func (f *fakeHandle) Close() error {
	f.closed = true
	return nil
}

// blockingLauncher lets tests hold Launch open to race two attaches.
type blockingLauncher struct {
	mu       sync.Mutex
	launches []LaunchSpec
	gate     chan struct{}
}

func (l *blockingLauncher) Launch(ctx context.Context, spec LaunchSpec) (RuntimeHandle, error) {
	if l.gate != nil {
		<-l.gate
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.launches = append(l.launches, spec)
	return &fakeHandle{}, nil
}

func (l *blockingLauncher) specs() []LaunchSpec {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]LaunchSpec(nil), l.launches...)
}

func setupManager(t *testing.T) (*Manager, *MemoryStore, *blockingLauncher, *DiskHistory) {
	t.Helper()
	history, err := NewDiskHistory(filepath.Join(t.TempDir(), "sessions"))
	require.NoError(t, err)

	launcher := &blockingLauncher{}
	store := NewMemoryStore(launcher, history, zerolog.Nop())
	return NewManager(store, zerolog.Nop()), store, launcher, history
}

func TestAttach_NilSessionIDCreates(t *testing.T) {
	m, store, launcher, _ := setupManager(t)

	res, err := m.Attach(context.Background(), AttachInput{AgentID: "a1", Model: "claude-sonnet-4"})
	require.NoError(t, err)

	assert.Equal(t, OutcomeCreated, res.Outcome)
	assert.Empty(t, res.ActualSessionID)
	assert.NotEmpty(t, res.Session.ID)
	assert.Equal(t, 1, store.Len())

	specs := launcher.specs()
	require.Len(t, specs, 1)
	assert.Empty(t, specs[0].ResumeSessionID)
}

func TestAttach_ReusesInMemorySession(t *testing.T) {
	m, _, launcher, _ := setupManager(t)
	ctx := context.Background()

	first, err := m.Attach(ctx, AttachInput{AgentID: "a1"})
	require.NoError(t, err)
	id := first.Session.ID

	second, err := m.Attach(ctx, AttachInput{AgentID: "a1", SessionID: id})
	require.NoError(t, err)

	assert.Equal(t, OutcomeReused, second.Outcome)
	assert.Equal(t, id, second.ActualSessionID)
	assert.Same(t, first.Session, second.Session)
	assert.Len(t, launcher.specs(), 1)
}

func TestAttach_ResumesFromDiskHistory(t *testing.T) {
	m, _, launcher, history := setupManager(t)
	require.NoError(t, history.Append("S1", "/proj", Message{Role: "user", Content: "hi"}))

	res, err := m.Attach(context.Background(), AttachInput{
		AgentID:     "a1",
		SessionID:   "S1",
		ProjectPath: "/proj",
	})
	require.NoError(t, err)

	assert.Equal(t, OutcomeResumed, res.Outcome)
	assert.Equal(t, "S1", res.ActualSessionID)
	assert.Equal(t, "S1", res.Session.ID)

	specs := launcher.specs()
	require.Len(t, specs, 1)
	assert.Equal(t, "S1", specs[0].ResumeSessionID)
}

func TestAttach_HistoryKeyedByProjectPath(t *testing.T) {
	m, _, _, history := setupManager(t)
	require.NoError(t, history.Append("S1", "/proj", Message{Role: "user", Content: "hi"}))

	// Same id, different project: no history there, so fresh identity.
	res, err := m.Attach(context.Background(), AttachInput{
		AgentID:     "a1",
		SessionID:   "S1",
		ProjectPath: "/other",
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, res.Outcome)
	assert.NotEqual(t, "S1", res.Session.ID)
}

func TestAttach_StaleIDDiscarded(t *testing.T) {
	m, _, launcher, _ := setupManager(t)

	res, err := m.Attach(context.Background(), AttachInput{AgentID: "a1", SessionID: "S1"})
	require.NoError(t, err)

	assert.Equal(t, OutcomeCreated, res.Outcome)
	assert.Empty(t, res.ActualSessionID)
	assert.NotEqual(t, "S1", res.Session.ID)

	specs := launcher.specs()
	require.Len(t, specs, 1)
	assert.Empty(t, specs[0].ResumeSessionID)
}

func TestAttach_DescriptorBecomesStartupConfig(t *testing.T) {
	m, _, _, _ := setupManager(t)

	desc := launch.Descriptor{
		Model:          "claude-opus-4",
		PermissionMode: launch.PermissionAcceptEdits,
		Env:            map[string]string{"K": "v"},
	}
	res, err := m.Attach(context.Background(), AttachInput{AgentID: "a1", Descriptor: desc})
	require.NoError(t, err)
	assert.Equal(t, desc, res.Session.Descriptor)
}

func TestAttach_ConcurrentSameFreshID(t *testing.T) {
	m, store, launcher, _ := setupManager(t)
	launcher.gate = make(chan struct{})

	const attempts = 2
	results := make([]*AttachResult, attempts)
	errs := make([]error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = m.Attach(context.Background(), AttachInput{
				AgentID:   "a1",
				SessionID: "fresh-id",
			})
		}(i)
	}

	close(launcher.gate)
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	// At most one store entry per id: either both got distinct fresh ids,
	// or the second reused the first. Never two sessions under one id.
	ids := map[string]int{}
	for _, res := range results {
		ids[res.Session.ID]++
	}
	for id, n := range ids {
		if n > 1 {
			assert.Same(t, results[0].Session, results[1].Session, "id %s claimed by divergent sessions", id)
		}
	}
	assert.Equal(t, len(ids), store.Len())
}

func TestMemoryStore_EvictClosesHandle(t *testing.T) {
	_, store, _, _ := setupManager(t)

	sess, err := store.Create(context.Background(), CreateParams{AgentID: "a1"})
	require.NoError(t, err)

	require.True(t, store.Evict(sess.ID))
	assert.True(t, sess.Handle.(*fakeHandle).closed)
	assert.False(t, store.Evict(sess.ID))
	assert.Zero(t, store.Len())
}
