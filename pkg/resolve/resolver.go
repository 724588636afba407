// Package resolve computes which provider and model a request should use,
// combining channel, agent, project, and system inputs under a fixed
// precedence order.
package resolve

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentplane/agentplane/internal/observability"
	"github.com/agentplane/agentplane/pkg/project"
	"github.com/agentplane/agentplane/pkg/provider"
)

// Resolver resolves provider and model choices. It performs at most two
// external reads (project metadata, provider record) and never fails a
// request because of them.
type Resolver struct {
	providers provider.Registry
	projects  project.Store
	logger    zerolog.Logger
}

// New creates a Resolver with explicit collaborators.
func New(providers provider.Registry, projects project.Store, logger zerolog.Logger) *Resolver {
	observability.EnsureRegistered()
	return &Resolver{
		providers: providers,
		projects:  projects,
		logger:    logger.With().Str("component", "resolver").Logger(),
	}
}

// Resolve picks a provider id, loads its record, and picks a model. It is
// idempotent for identical inputs and unchanged external state. Errors from
// either external read are treated as "absent".
func (r *Resolver) Resolve(ctx context.Context, in Input) Resolved {
	var meta *project.Metadata
	if in.ProjectPath != "" {
		m, err := r.projects.Get(ctx, in.ProjectPath)
		if err != nil {
			r.logger.Warn().Err(err).
				Str("projectPath", in.ProjectPath).
				Msg("Project metadata read failed, treating as absent")
		} else {
			meta = m
		}
	}

	out := Resolved{Trace: Trace{ProviderSource: SourceNone, ModelSource: SourceFallback}}

	// Provider precedence: channel > agent > project > system
	switch {
	case in.ChannelProviderID != "":
		out.ProviderID = in.ChannelProviderID
		out.Trace.ProviderSource = SourceChannel
	case in.AgentProviderID != "":
		out.ProviderID = in.AgentProviderID
		out.Trace.ProviderSource = SourceAgent
	case meta != nil && meta.DefaultProviderID != "":
		out.ProviderID = meta.DefaultProviderID
		out.Trace.ProviderSource = SourceProject
	default:
		if id, err := r.providers.DefaultID(ctx); err != nil {
			r.logger.Warn().Err(err).Msg("Default provider lookup failed, treating as absent")
		} else if id != "" {
			out.ProviderID = id
			out.Trace.ProviderSource = SourceSystem
		}
	}

	// Load the record for whichever id won. A miss degrades to a nil
	// provider with the id and its source left intact.
	if out.ProviderID != "" {
		p, err := r.providers.GetByID(ctx, out.ProviderID)
		if err != nil {
			out.Trace.ProviderMissing = true
			r.logger.Warn().Err(err).
				Str("providerId", out.ProviderID).
				Str("providerSource", string(out.Trace.ProviderSource)).
				Msg("Provider record unavailable, falling back to runtime defaults")
		} else {
			out.Provider = p
		}
	}

	// Model precedence: channel > project > provider first model > fallback
	switch {
	case in.ChannelModel != "":
		out.Model = in.ChannelModel
		out.Trace.ModelSource = SourceChannel
	case meta != nil && meta.DefaultModel != "":
		out.Model = meta.DefaultModel
		out.Trace.ModelSource = SourceProject
	case out.Provider.FirstModel() != "":
		out.Model = out.Provider.FirstModel()
		out.Trace.ModelSource = SourceProvider
	default:
		out.Model = FallbackModel
		out.Trace.ModelSource = SourceFallback
	}

	observability.RecordResolution(string(out.Trace.ProviderSource), string(out.Trace.ModelSource))

	r.logger.Debug().
		Str("providerId", out.ProviderID).
		Str("model", out.Model).
		Str("providerSource", string(out.Trace.ProviderSource)).
		Str("modelSource", string(out.Trace.ModelSource)).
		Msg("Configuration resolved")

	return out
}
