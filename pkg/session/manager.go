package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentplane/agentplane/internal/observability"
	"github.com/agentplane/agentplane/pkg/launch"
)

// Outcome names the branch an Attach took.
type Outcome string

const (
	OutcomeReused  Outcome = "reused"
	OutcomeResumed Outcome = "resumed"
	OutcomeCreated Outcome = "created"
)

// AttachInput carries one attach request. SessionID may be empty, meaning
// "always create".
type AttachInput struct {
	AgentID     string
	SessionID   string
	ProjectPath string
	Descriptor  launch.Descriptor
	ProviderID  string
	Model       string
}

// AttachResult reports the session, the branch taken, and the id the caller
// should consider authoritative. ActualSessionID is empty when the caller's
// id (or absence of one) did not survive: the fresh session's own generated
// id is authoritative then.
type AttachResult struct {
	Session         *Session
	Outcome         Outcome
	ActualSessionID string
}

// Manager applies the reuse/resume/create branch on top of a Store.
// Lookup-then-create for the same requested id is linearized with a per-id
// lock, so two concurrent attaches cannot both create for one id.
type Manager struct {
	store  Store
	logger zerolog.Logger

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewManager creates a Manager over the given store.
func NewManager(store Store, logger zerolog.Logger) *Manager {
	observability.EnsureRegistered()
	return &Manager{
		store:  store,
		logger: logger.With().Str("component", "session-manager").Logger(),
		locks:  make(map[string]*sync.Mutex),
	}
}

// Attach resolves the request to a session.
//
// With no session id, a new session is always created and ActualSessionID
// stays empty: the caller reads the generated id off the session itself.
// With an id, the branch order is: live in-memory session (reused), on-disk
// history (resumed under the caller's id), neither (created fresh under a
// new id, the caller's id deliberately discarded). The discard is the
// contract: a retry with a stale id must fail closed to a new identity
// rather than attach to an unrelated conversation.
func (m *Manager) Attach(ctx context.Context, in AttachInput) (*AttachResult, error) {
	if in.SessionID == "" {
		sess, err := m.create(ctx, in, "")
		if err != nil {
			return nil, err
		}
		return m.done(&AttachResult{Session: sess, Outcome: OutcomeCreated}), nil
	}

	lock := m.idLock(in.SessionID)
	lock.Lock()
	defer lock.Unlock()

	if sess, ok := m.store.Get(in.SessionID); ok {
		if toucher, ok := m.store.(interface{ Touch(string) }); ok {
			toucher.Touch(in.SessionID)
		}
		return m.done(&AttachResult{
			Session:         sess,
			Outcome:         OutcomeReused,
			ActualSessionID: in.SessionID,
		}), nil
	}

	if m.store.Exists(in.SessionID, in.ProjectPath) {
		sess, err := m.create(ctx, in, in.SessionID)
		if err != nil {
			return nil, err
		}
		return m.done(&AttachResult{
			Session:         sess,
			Outcome:         OutcomeResumed,
			ActualSessionID: in.SessionID,
		}), nil
	}

	sess, err := m.create(ctx, in, "")
	if err != nil {
		return nil, err
	}
	m.logger.Debug().
		Str("requestedSessionId", in.SessionID).
		Str("sessionId", sess.ID).
		Msg("Requested session unknown, created fresh identity")
	return m.done(&AttachResult{Session: sess, Outcome: OutcomeCreated}), nil
}

func (m *Manager) create(ctx context.Context, in AttachInput, resumeID string) (*Session, error) {
	return m.store.Create(ctx, CreateParams{
		AgentID:         in.AgentID,
		ProjectPath:     in.ProjectPath,
		Descriptor:      in.Descriptor,
		ResumeSessionID: resumeID,
		ProviderID:      in.ProviderID,
		Model:           in.Model,
	})
}

func (m *Manager) done(res *AttachResult) *AttachResult {
	observability.RecordAttach(string(res.Outcome))
	return res
}

func (m *Manager) idLock(id string) *sync.Mutex {
	m.locksMu.Lock()
	defer m.locksMu.Unlock()

	if lock, ok := m.locks[id]; ok {
		return lock
	}
	lock := &sync.Mutex{}
	m.locks[id] = lock
	return lock
}
