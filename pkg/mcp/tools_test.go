package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServerNames(t *testing.T) {
	tests := []struct {
		name  string
		tools []string
		want  []string
	}{
		{
			name:  "distinct servers in first-seen order",
			tools: []string{"mcp__beta__y", "mcp__alpha__x", "mcp__beta__z"},
			want:  []string{"beta", "alpha"},
		},
		{
			name:  "malformed identifiers ignored",
			tools: []string{"Bash", "mcp__", "mcp__noTool", "mcp____tool", "mcp__ok__tool"},
			want:  []string{"ok"},
		},
		{
			name:  "tool part may contain separators",
			tools: []string{"mcp__srv__some__nested__tool"},
			want:  []string{"srv"},
		},
		{
			name:  "empty input",
			tools: nil,
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ServerNames(tt.tools))
		})
	}
}

func TestIsTool(t *testing.T) {
	assert.True(t, IsTool("mcp__alpha__x"))
	assert.False(t, IsTool("Read"))
	assert.False(t, IsTool("mcp__alpha"))
}
