package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agentplane/agentplane/internal/observability"
)

// HistoryChecker answers the on-disk history existence question. DiskHistory
// satisfies it.
type HistoryChecker interface {
	Exists(id, projectPath string) bool
}

// MemoryStore is the default Store: an in-memory session table backed by a
// launcher and an on-disk history check.
type MemoryStore struct {
	launcher Launcher
	history  HistoryChecker
	logger   zerolog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore creates an empty session table.
func NewMemoryStore(launcher Launcher, history HistoryChecker, logger zerolog.Logger) *MemoryStore {
	observability.EnsureRegistered()
	return &MemoryStore{
		launcher: launcher,
		history:  history,
		logger:   logger.With().Str("component", "session-store").Logger(),
		sessions: make(map[string]*Session),
	}
}

// Get returns the live session with the given id.
func (s *MemoryStore) Get(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// Exists reports whether durable history exists for (id, projectPath).
func (s *MemoryStore) Exists(id, projectPath string) bool {
	return s.history.Exists(id, projectPath)
}

// Create launches a runtime and registers the session in the table. A
// resume id becomes the session's id; otherwise a fresh one is generated.
func (s *MemoryStore) Create(ctx context.Context, params CreateParams) (*Session, error) {
	id := params.ResumeSessionID
	if id == "" {
		id = uuid.NewString()
	}

	handle, err := s.launcher.Launch(ctx, LaunchSpec{
		AgentID:         params.AgentID,
		Descriptor:      params.Descriptor,
		ResumeSessionID: params.ResumeSessionID,
		ProviderID:      params.ProviderID,
		Model:           params.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to launch runtime for session %s: %w", id, err)
	}

	now := time.Now()
	sess := &Session{
		ID:          id,
		AgentID:     params.AgentID,
		ProjectPath: params.ProjectPath,
		Descriptor:  params.Descriptor,
		ProviderID:  params.ProviderID,
		Model:       params.Model,
		Handle:      handle,
		CreatedAt:   now,
		LastUsed:    now,
	}

	s.mu.Lock()
	s.sessions[id] = sess
	count := len(s.sessions)
	s.mu.Unlock()

	observability.SetActiveSessions(count)
	s.logger.Info().
		Str("sessionId", id).
		Str("agentId", params.AgentID).
		Bool("resumed", params.ResumeSessionID != "").
		Msg("Session created")

	return sess, nil
}

// Touch updates a session's last-used time.
func (s *MemoryStore) Touch(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		sess.LastUsed = time.Now()
	}
}

// Evict removes a session from the table and closes its runtime handle.
func (s *MemoryStore) Evict(id string) bool {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	count := len(s.sessions)
	s.mu.Unlock()

	if !ok {
		return false
	}

	observability.SetActiveSessions(count)
	if sess.Handle != nil {
		if err := sess.Handle.Close(); err != nil {
			s.logger.Warn().Err(err).Str("sessionId", id).Msg("Failed to close runtime handle")
		}
	}
	s.logger.Info().Str("sessionId", id).Msg("Session evicted")
	return true
}

// EvictIdle evicts every session whose last use is older than maxIdle and
// returns how many were removed. Disk history survives eviction; a later
// request with the same id resumes from it.
func (s *MemoryStore) EvictIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	s.mu.RLock()
	var stale []string
	for id, sess := range s.sessions {
		if sess.LastUsed.Before(cutoff) {
			stale = append(stale, id)
		}
	}
	s.mu.RUnlock()

	evicted := 0
	for _, id := range stale {
		if s.Evict(id) {
			evicted++
		}
	}
	return evicted
}

// Len returns the number of live sessions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
