package config

import (
	"encoding/json"
	"fmt"

	"github.com/agentplane/agentplane/pkg/launch"
	"github.com/agentplane/agentplane/pkg/session"
)

// Config represents the main agentplane configuration
type Config struct {
	// Agents
	Agents []launch.AgentConfig `json:"agents" mapstructure:"agents"`

	// Providers
	Providers ProvidersConfig `json:"providers" mapstructure:"providers"`

	// Projects
	Projects ProjectsConfig `json:"projects" mapstructure:"projects"`

	// MCP registry
	MCP MCPConfig `json:"mcp" mapstructure:"mcp"`

	// Sessions
	Sessions SessionsConfig `json:"sessions" mapstructure:"sessions"`

	// Logging
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`

	// Data directory
	DataDir string `json:"data_dir" mapstructure:"data_dir"`
}

// ProvidersConfig holds the provider registry configuration
type ProvidersConfig struct {
	DBPath string `json:"db_path" mapstructure:"db_path"`
}

// ProjectsConfig holds the project metadata store configuration
type ProjectsConfig struct {
	StatePath string `json:"state_path" mapstructure:"state_path"`
}

// MCPConfig holds the MCP registry configuration
type MCPConfig struct {
	RegistryPath string `json:"registry_path" mapstructure:"registry_path"`
	Watch        bool   `json:"watch" mapstructure:"watch"`
}

// SessionsConfig holds session lifecycle configuration
type SessionsConfig struct {
	Dir             string `json:"dir" mapstructure:"dir"`
	IdleTimeout     string `json:"idle_timeout" mapstructure:"idle_timeout"`         // Go duration string
	CleanupSchedule string `json:"cleanup_schedule" mapstructure:"cleanup_schedule"` // cron spec
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level     string `json:"level" mapstructure:"level"`
	File      string `json:"file" mapstructure:"file"`
	Console   bool   `json:"console" mapstructure:"console"`
	Pretty    bool   `json:"pretty" mapstructure:"pretty"`
	Redaction bool   `json:"redaction" mapstructure:"redaction"`
}

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	return &Config{
		MCP: MCPConfig{
			Watch: true,
		},
		Sessions: SessionsConfig{
			IdleTimeout:     session.DefaultIdleTimeout.String(),
			CleanupSchedule: session.DefaultCleanupSchedule,
		},
		Logging: LoggingConfig{
			Level:     "info",
			Console:   true,
			Redaction: true,
		},
		Agents: []launch.AgentConfig{
			{
				ID:             "default",
				Name:           "Default Agent",
				PermissionMode: launch.PermissionDefault,
			},
		},
	}
}

// String returns a JSON representation of the config
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if len(c.Agents) == 0 {
		return fmt.Errorf("at least one agent must be configured")
	}

	seen := make(map[string]bool, len(c.Agents))
	for i, agent := range c.Agents {
		if agent.ID == "" {
			return fmt.Errorf("agent %d: ID is required", i)
		}
		if seen[agent.ID] {
			return fmt.Errorf("agent %s: duplicate ID", agent.ID)
		}
		seen[agent.ID] = true
		if agent.PermissionMode != "" && !agent.PermissionMode.Valid() {
			return fmt.Errorf("agent %s: invalid permission mode %s", agent.ID, agent.PermissionMode)
		}
	}

	return nil
}
