// Package control exposes the top-level invocation flow: resolve the
// provider and model for an agent, build the runtime invocation
// descriptor, and attach a session to run it in.
package control

import (
	"context"
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"

	"github.com/agentplane/agentplane/pkg/launch"
	"github.com/agentplane/agentplane/pkg/resolve"
	"github.com/agentplane/agentplane/pkg/session"
)

// Request describes one invocation: which agent to run, an optional
// session to continue, and per-call overrides.
type Request struct {
	AgentID   string           `json:"agentId"`
	SessionID string           `json:"sessionId,omitempty"`
	Overrides launch.Overrides `json:"overrides"`
}

// Response carries everything a caller needs to drive the runtime:
// the built descriptor, the attached session, and how both came to be.
type Response struct {
	RequestID       string                  `json:"requestId"`
	Descriptor      launch.Descriptor       `json:"descriptor"`
	Trace           resolve.Trace           `json:"trace"`
	Refs            []launch.SideChannelRef `json:"refs,omitempty"`
	Session         *session.Session        `json:"-"`
	Outcome         session.Outcome         `json:"outcome"`
	ActualSessionID string                  `json:"actualSessionId,omitempty"`
}

// Service wires the descriptor builder to the session manager.
type Service struct {
	builder  *launch.Builder
	sessions *session.Manager
	agents   map[string]launch.AgentConfig
	logger   zerolog.Logger
}

// NewService creates a Service over the given builder, session manager,
// and agent catalog.
func NewService(builder *launch.Builder, sessions *session.Manager, agents []launch.AgentConfig, logger zerolog.Logger) *Service {
	catalog := make(map[string]launch.AgentConfig, len(agents))
	for _, a := range agents {
		catalog[a.ID] = a
	}
	return &Service{
		builder:  builder,
		sessions: sessions,
		agents:   catalog,
		logger:   logger.With().Str("component", "control").Logger(),
	}
}

// ResolveAndAttach builds the invocation descriptor for the requested
// agent and attaches a session for it. The only hard failure is an
// unknown agent or a session launch error; configuration problems
// degrade inside the builder and surface through the trace.
func (s *Service) ResolveAndAttach(ctx context.Context, req Request) (*Response, error) {
	agent, ok := s.agents[req.AgentID]
	if !ok {
		return nil, fmt.Errorf("unknown agent: %s", req.AgentID)
	}

	requestID, _ := gonanoid.New()
	logger := s.logger.With().Str("request_id", requestID).Str("agent_id", req.AgentID).Logger()

	result := s.builder.Build(ctx, agent, req.Overrides)

	attach, err := s.sessions.Attach(ctx, session.AttachInput{
		AgentID:     req.AgentID,
		SessionID:   req.SessionID,
		ProjectPath: req.Overrides.ProjectPath,
		Descriptor:  result.Descriptor,
		ProviderID:  result.ProviderID,
		Model:       result.Descriptor.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to attach session: %w", err)
	}

	logger.Info().
		Str("session_id", attach.Session.ID).
		Str("outcome", string(attach.Outcome)).
		Str("model", result.Descriptor.Model).
		Msg("Invocation prepared")

	return &Response{
		RequestID:       requestID,
		Descriptor:      result.Descriptor,
		Trace:           result.Trace,
		Refs:            result.Refs,
		Session:         attach.Session,
		Outcome:         attach.Outcome,
		ActualSessionID: attach.ActualSessionID,
	}, nil
}

// Agent returns the configured agent for id, if any.
func (s *Service) Agent(id string) (launch.AgentConfig, bool) {
	a, ok := s.agents[id]
	return a, ok
}
