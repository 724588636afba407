// Package session decides, per request, whether to reuse an in-memory
// session, resume one from on-disk history, or create a new one, and owns
// the in-memory session table.
package session

import (
	"context"
	"time"

	"github.com/agentplane/agentplane/pkg/launch"
)

// RuntimeHandle is the opaque handle to a running agent runtime. The
// runtime's behavior is an external concern; this core only carries the
// handle and closes it on eviction.
type RuntimeHandle interface {
	Close() error
}

// Launcher starts the agent runtime process for a session.
type Launcher interface {
	Launch(ctx context.Context, spec LaunchSpec) (RuntimeHandle, error)
}

// LaunchSpec is everything the launcher needs to start a runtime.
// ResumeSessionID, when set, asks the runtime to restore the conversation
// with that id from its on-disk history.
type LaunchSpec struct {
	AgentID         string
	Descriptor      launch.Descriptor
	ResumeSessionID string
	ProviderID      string
	Model           string
}

// Session is one persistent conversation context. The descriptor is the
// session's fixed startup configuration and is never changed after create.
type Session struct {
	ID          string
	AgentID     string
	ProjectPath string
	Descriptor  launch.Descriptor
	ProviderID  string
	Model       string
	Handle      RuntimeHandle

	CreatedAt time.Time
	LastUsed  time.Time
}

// CreateParams carries the inputs of one session creation.
type CreateParams struct {
	AgentID         string
	ProjectPath     string
	Descriptor      launch.Descriptor
	ResumeSessionID string
	ProviderID      string
	Model           string
}

// Store is the session store collaborator: in-memory lookup, on-disk
// history existence, and creation.
type Store interface {
	// Get returns the live in-memory session with the given id.
	Get(id string) (*Session, bool)

	// Exists reports whether durable conversation history exists for
	// (id, projectPath).
	Exists(id, projectPath string) bool

	// Create starts a new session. When params.ResumeSessionID is set the
	// new session keeps that id; otherwise it gets a generated one.
	Create(ctx context.Context, params CreateParams) (*Session, error)
}
