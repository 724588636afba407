package launch

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/agentplane/agentplane/internal/observability"
	"github.com/agentplane/agentplane/pkg/mcp"
	"github.com/agentplane/agentplane/pkg/resolve"
)

// ExistsFunc checks whether a path exists on the filesystem.
type ExistsFunc func(path string) bool

// Result is the outcome of one Build: the descriptor, the resolution trace
// explaining the provider/model choice, and any side-channel references.
type Result struct {
	Descriptor Descriptor
	Trace      resolve.Trace
	Refs       []SideChannelRef

	// ProviderID is the resolved provider id, empty when resolution chose
	// none or was bypassed by an explicit environment override.
	ProviderID string
}

// Builder assembles invocation descriptors. Every external read it performs
// (provider resolution, filesystem check, MCP registry) is independently
// fault-tolerant; a missing or malformed secondary input never fails the
// request, it degrades toward the runtime's built-in defaults.
type Builder struct {
	resolver     *resolve.Resolver
	registry     *mcp.Registry
	exists       ExistsFunc
	integrations []Integration
	logger       zerolog.Logger
}

// NewBuilder creates a Builder. A nil exists falls back to os.Stat.
func NewBuilder(resolver *resolve.Resolver, registry *mcp.Registry, exists ExistsFunc, logger zerolog.Logger) *Builder {
	observability.EnsureRegistered()
	if exists == nil {
		exists = func(path string) bool {
			_, err := os.Stat(path)
			return err == nil
		}
	}
	return &Builder{
		resolver: resolver,
		registry: registry,
		exists:   exists,
		logger:   logger.With().Str("component", "launch-builder").Logger(),
	}
}

// Register appends a side-channel integration to the pipeline. Not safe for
// concurrent use with Build; register during startup.
func (b *Builder) Register(integ Integration) {
	b.integrations = append(b.integrations, integ)
}

// Build produces the invocation descriptor for one request.
func (b *Builder) Build(ctx context.Context, agent AgentConfig, ov Overrides) *Result {
	desc := Descriptor{
		WorkingDir:     b.workingDir(agent, ov),
		PermissionMode: permissionMode(agent, ov),
		AllowedTools:   allowedTools(agent, ov),
		SystemPrompt:   agent.SystemPrompt,
		MaxTurns:       agent.MaxTurns,
	}

	var (
		trace       resolve.Trace
		providerEnv map[string]string
		execPath    string
		providerID  string
	)

	if ov.DefaultEnv != nil {
		// Explicit override channel: the supplied environment is the
		// source and provider resolution is skipped entirely.
		providerEnv = ov.DefaultEnv
		desc.Model = ov.Model
		if desc.Model == "" {
			desc.Model = resolve.FallbackModel
		}
		trace = resolve.Trace{ProviderSource: resolve.SourceNone, ModelSource: resolve.SourceFallback}
		if ov.Model != "" {
			trace.ModelSource = resolve.SourceChannel
		}
	} else {
		resolved := b.resolver.Resolve(ctx, resolve.Input{
			ChannelProviderID: ov.ProviderID,
			ChannelModel:      ov.Model,
			AgentProviderID:   agent.ProviderID,
			ProjectPath:       ov.ProjectPath,
		})
		trace = resolved.Trace
		providerID = resolved.ProviderID
		desc.Model = resolved.Model
		if resolved.Provider != nil {
			execPath = strings.TrimSpace(resolved.Provider.ExecutablePath)
			providerEnv = resolved.Provider.Env
		}
	}

	// A configured executable that does not exist on this host is dropped
	// so the runtime falls back to its bundled binary.
	if execPath != "" {
		if b.exists(execPath) {
			desc.ExecutablePath = execPath
		} else {
			observability.RecordBuildDegraded("executable_missing")
			b.logger.Warn().
				Str("executablePath", execPath).
				Msg("Provider executable not found, using bundled runtime")
		}
	}

	// Merge lowest to highest: process < provider/default < user. Proxy
	// casing is normalized on the provider layer only.
	desc.Env = mergeEnv(processEnv(), normalizeProxyVars(providerEnv), ov.UserEnv)

	// MCP server assembly: active servers referenced by the request's MCP
	// tools. Absent and empty are the same thing to callers, so empty maps
	// are omitted.
	if names := mcp.ServerNames(ov.MCPTools); len(names) > 0 {
		if specs := b.registry.ActiveServers(names); len(specs) > 0 {
			desc.MCPServers = specs
		}
	}

	// Side channels run last, against an otherwise complete descriptor, so
	// a cancelled request cannot leak partially-built state.
	desc, refs := runIntegrations(ctx, b.integrations, desc, ov, b.logger)

	b.logger.Debug().
		Str("agentId", agent.ID).
		Str("model", desc.Model).
		Str("cwd", desc.WorkingDir).
		Int("mcpServers", len(desc.MCPServers)).
		Bool("customExecutable", desc.ExecutablePath != "").
		Msg("Invocation descriptor built")

	return &Result{Descriptor: desc, Trace: trace, Refs: refs, ProviderID: providerID}
}

// workingDir picks the project path when given, else the agent's working
// directory resolved against the process directory, else the process
// directory itself.
func (b *Builder) workingDir(agent AgentConfig, ov Overrides) string {
	if ov.ProjectPath != "" {
		return ov.ProjectPath
	}

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	if agent.WorkingDirectory == "" {
		return cwd
	}
	if filepath.IsAbs(agent.WorkingDirectory) {
		return agent.WorkingDirectory
	}
	return filepath.Join(cwd, agent.WorkingDirectory)
}

func permissionMode(agent AgentConfig, ov Overrides) PermissionMode {
	if ov.PermissionMode.Valid() {
		return ov.PermissionMode
	}
	if agent.PermissionMode.Valid() {
		return agent.PermissionMode
	}
	return PermissionDefault
}

// allowedTools filters the agent's static list to enabled entries, then
// appends the request's MCP tool identifiers in order.
func allowedTools(agent AgentConfig, ov Overrides) []string {
	var tools []string
	for _, ts := range agent.AllowedTools {
		if ts.Enabled {
			tools = append(tools, ts.Name)
		}
	}
	tools = append(tools, ov.MCPTools...)
	return tools
}
