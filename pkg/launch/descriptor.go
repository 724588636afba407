// Package launch builds the complete parameter set handed to the agent
// runtime for one session start: executable, environment, permission mode,
// tool allow-list, and MCP server descriptors.
package launch

import "github.com/agentplane/agentplane/pkg/mcp"

// PermissionMode controls how the runtime gates tool use.
type PermissionMode string

const (
	PermissionDefault     PermissionMode = "default"
	PermissionAcceptEdits PermissionMode = "acceptEdits"
	PermissionPlan        PermissionMode = "plan"
	PermissionBypass      PermissionMode = "bypassPermissions"
)

// Valid reports whether m is a recognized permission mode.
func (m PermissionMode) Valid() bool {
	switch m {
	case PermissionDefault, PermissionAcceptEdits, PermissionPlan, PermissionBypass:
		return true
	}
	return false
}

// ToolSetting is one entry of an agent's static tool allow-list.
type ToolSetting struct {
	Name    string `json:"name" mapstructure:"name"`
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
}

// AgentConfig is the static configuration of one agent, validated at the
// boundary so the builder can rely on its shape.
type AgentConfig struct {
	ID               string         `json:"id" mapstructure:"id"`
	Name             string         `json:"name" mapstructure:"name"`
	WorkingDirectory string         `json:"working_directory" mapstructure:"working_directory"`
	PermissionMode   PermissionMode `json:"permission_mode" mapstructure:"permission_mode"`
	ProviderID       string         `json:"provider_id" mapstructure:"provider_id"`
	SystemPrompt     string         `json:"system_prompt" mapstructure:"system_prompt"`
	MaxTurns         int            `json:"max_turns" mapstructure:"max_turns"`
	AllowedTools     []ToolSetting  `json:"allowed_tools" mapstructure:"allowed_tools"`
}

// Overrides carries the per-request inputs that can override the agent's
// static configuration. DefaultEnv, when set, bypasses provider resolution
// entirely and is used as the environment source directly.
type Overrides struct {
	ProjectPath    string
	MCPTools       []string
	PermissionMode PermissionMode
	Model          string
	ProviderID     string
	DefaultEnv     map[string]string
	UserEnv        map[string]string

	// CorrelationID links side-channel integrations (inter-agent
	// messaging, question routing) to this request. Integrations that
	// require one are skipped when it is empty.
	CorrelationID string
}

// Descriptor is the ready-to-use invocation parameter set. It is never
// mutated after Build returns; integrations transform copies.
type Descriptor struct {
	// ExecutablePath is empty when the runtime should use its bundled
	// executable, including whenever a provider's configured path does not
	// exist on this host.
	ExecutablePath string                    `json:"executablePath,omitempty"`
	Env            map[string]string         `json:"environment"`
	WorkingDir     string                    `json:"cwd"`
	PermissionMode PermissionMode            `json:"permissionMode"`
	Model          string                    `json:"model"`
	AllowedTools   []string                  `json:"allowedTools,omitempty"`
	MCPServers     map[string]mcp.ServerSpec `json:"mcpServers,omitempty"`
	SystemPrompt   string                    `json:"systemPrompt,omitempty"`
	MaxTurns       int                       `json:"maxTurns,omitempty"`
}

// clone returns a deep-enough copy for the integration pipeline: the maps
// and slice are copied, their string contents shared.
func (d Descriptor) clone() Descriptor {
	out := d
	if d.Env != nil {
		out.Env = make(map[string]string, len(d.Env))
		for k, v := range d.Env {
			out.Env[k] = v
		}
	}
	if d.AllowedTools != nil {
		out.AllowedTools = append([]string(nil), d.AllowedTools...)
	}
	if d.MCPServers != nil {
		out.MCPServers = make(map[string]mcp.ServerSpec, len(d.MCPServers))
		for k, v := range d.MCPServers {
			out.MCPServers[k] = v
		}
	}
	return out
}
