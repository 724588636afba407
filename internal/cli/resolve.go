package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentplane/agentplane/pkg/launch"
	"github.com/agentplane/agentplane/pkg/resolve"
)

var (
	resolveAgentID    string
	resolveProviderID string
	resolveModel      string
	resolveProject    string
	resolveMCPTools   []string
)

// resolveCmd builds and prints the invocation descriptor a request would
// get, without launching anything. Useful for answering "why this model?".
var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Show the invocation descriptor a request would produce",
	RunE:  runResolve,
}

func init() {
	resolveCmd.Flags().StringVar(&resolveAgentID, "agent", "default", "agent id to resolve for")
	resolveCmd.Flags().StringVar(&resolveProviderID, "provider", "", "request-level provider id override")
	resolveCmd.Flags().StringVar(&resolveModel, "model", "", "request-level model override")
	resolveCmd.Flags().StringVar(&resolveProject, "project", "", "project path")
	resolveCmd.Flags().StringSliceVar(&resolveMCPTools, "mcp-tool", nil, "MCP tool identifier (repeatable)")
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	var agent *launch.AgentConfig
	for i := range a.cfg.Agents {
		if a.cfg.Agents[i].ID == resolveAgentID {
			agent = &a.cfg.Agents[i]
			break
		}
	}
	if agent == nil {
		return fmt.Errorf("unknown agent: %s", resolveAgentID)
	}

	result := a.builder.Build(cmd.Context(), *agent, launch.Overrides{
		ProjectPath: resolveProject,
		ProviderID:  resolveProviderID,
		Model:       resolveModel,
		MCPTools:    resolveMCPTools,
	})

	out := struct {
		Descriptor launch.Descriptor `json:"descriptor"`
		Trace      resolve.Trace     `json:"trace"`
		ProviderID string            `json:"providerId,omitempty"`
	}{
		Descriptor: result.Descriptor,
		Trace:      result.Trace,
		ProviderID: result.ProviderID,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
