package resolve

import "github.com/agentplane/agentplane/pkg/provider"

// FallbackModel is used when no channel, project, or provider source
// yields a model.
const FallbackModel = "claude-sonnet-4"

// Source names the precedence layer that won a resolution.
type Source string

const (
	// Provider sources
	SourceChannel Source = "channel"
	SourceAgent   Source = "agent"
	SourceProject Source = "project"
	SourceSystem  Source = "system"
	SourceNone    Source = "none"

	// Model-only sources (SourceChannel and SourceProject also apply)
	SourceProvider Source = "provider"
	SourceFallback Source = "fallback"
)

// Input carries the per-request resolution inputs across the four
// precedence layers.
type Input struct {
	ChannelProviderID string
	ChannelModel      string
	AgentProviderID   string
	ProjectPath       string
}

// Trace explains which precedence layer won for provider and model choice.
// Every caller gets one so support can answer "why this model?".
type Trace struct {
	ProviderSource Source `json:"providerSource"`
	ModelSource    Source `json:"modelSource"`

	// ProviderMissing is set when a provider id was selected but its record
	// could not be loaded, and resolution fell back to runtime defaults.
	ProviderMissing bool `json:"providerMissing,omitempty"`
}

// Resolved is the outcome of one resolution. ProviderID may be set while
// Provider is nil: the id was chosen but the record could not be loaded,
// and the caller treats that as "use runtime defaults".
type Resolved struct {
	ProviderID string
	Model      string
	Provider   *provider.Provider
	Trace      Trace
}
