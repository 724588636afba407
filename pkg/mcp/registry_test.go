package mcp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRegistry(t *testing.T, content string) *Registry {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mcp.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return NewRegistry(path, zerolog.Nop())
}

const sampleRegistry = `{
  "mcpServers": {
    "alpha": {"type": "stdio", "command": "alpha-server", "args": ["--verbose"], "env": {"TOKEN": "t"}, "status": "active"},
    "beta": {"type": "http", "url": "https://beta.example/mcp", "headers": {"Authorization": "Bearer x"}, "status": "disabled"},
    "gamma": {"type": "http", "url": "https://gamma.example/mcp", "status": "active"},
    "delta": {"type": "carrier-pigeon", "status": "active"}
  }
}`

func TestRegistry_ActiveServers(t *testing.T) {
	r := writeRegistry(t, sampleRegistry)

	specs := r.ActiveServers([]string{"alpha", "beta", "gamma", "delta", "unknown"})

	require.Len(t, specs, 2)

	alpha := specs["alpha"]
	assert.Equal(t, TypeStdio, alpha.Type)
	assert.Equal(t, "alpha-server", alpha.Command)
	assert.Equal(t, []string{"--verbose"}, alpha.Args)
	assert.Equal(t, map[string]string{"TOKEN": "t"}, alpha.Env)

	gamma := specs["gamma"]
	assert.Equal(t, TypeHTTP, gamma.Type)
	assert.Equal(t, "https://gamma.example/mcp", gamma.URL)

	// beta is inactive, delta's type is unrecognized, unknown is absent
	assert.NotContains(t, specs, "beta")
	assert.NotContains(t, specs, "delta")
	assert.NotContains(t, specs, "unknown")
}

func TestRegistry_MissingFile(t *testing.T) {
	r := NewRegistry(filepath.Join(t.TempDir(), "absent.json"), zerolog.Nop())

	doc := r.Document()
	assert.Empty(t, doc.McpServers)
	assert.Empty(t, r.ActiveServers([]string{"alpha"}))
}

func TestRegistry_CorruptFile(t *testing.T) {
	r := writeRegistry(t, `{not json at all`)
	assert.Empty(t, r.Document().McpServers)
}

func TestRegistry_SchemaInvalidDocument(t *testing.T) {
	// mcpServers entries must be objects with a type
	r := writeRegistry(t, `{"mcpServers": {"alpha": {"command": "x"}}}`)
	assert.Empty(t, r.Document().McpServers)
}

func TestRegistry_CacheAndInvalidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcp.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleRegistry), 0600))
	r := NewRegistry(path, zerolog.Nop())

	require.Len(t, r.Document().McpServers, 4)

	// Rewrite the file; the cached document is still served until
	// invalidation.
	require.NoError(t, os.WriteFile(path, []byte(`{"mcpServers": {}}`), 0600))
	assert.Len(t, r.Document().McpServers, 4)

	r.Invalidate()
	assert.Empty(t, r.Document().McpServers)
}
