package mcp

import "strings"

const toolPrefix = "mcp__"

// ServerNames extracts the distinct server names referenced by MCP tool
// identifiers (mcp__<server>__<tool>), preserving first-seen order.
// Identifiers that do not match the form are ignored.
func ServerNames(toolIDs []string) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, id := range toolIDs {
		name, ok := ServerName(id)
		if !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// ServerName extracts the server name from a single MCP tool identifier.
func ServerName(toolID string) (string, bool) {
	if !strings.HasPrefix(toolID, toolPrefix) {
		return "", false
	}
	parts := strings.Split(toolID, "__")
	if len(parts) < 3 {
		return "", false
	}
	name := parts[1]
	if name == "" {
		return "", false
	}
	return name, true
}

// IsTool reports whether the identifier names an MCP tool.
func IsTool(toolID string) bool {
	_, ok := ServerName(toolID)
	return ok
}
