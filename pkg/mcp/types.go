package mcp

// Server transport types recognized in the registry document. Entries with
// any other type are dropped during assembly.
const (
	TypeStdio = "stdio"
	TypeHTTP  = "http"
)

// StatusActive is the only registry status that makes a server eligible for
// inclusion in an invocation descriptor.
const StatusActive = "active"

// ServerEntry is one server's raw record in the on-disk registry document.
type ServerEntry struct {
	Type    string            `json:"type"`
	Command string            `json:"command,omitempty"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
	URL     string            `json:"url,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
	Status  string            `json:"status,omitempty"`
}

// Document is the shape of the on-disk MCP registry file.
type Document struct {
	McpServers map[string]ServerEntry `json:"mcpServers"`
}

// ServerSpec is the outbound descriptor for one MCP server, either a stdio
// command or an HTTP endpoint.
type ServerSpec struct {
	Type    string            `json:"type"`
	Command string            `json:"command,omitempty"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
	URL     string            `json:"url,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}
