// Package mcp reads the on-disk MCP server registry and maps tool
// identifiers of the form mcp__<server>__<tool> to launchable server
// descriptors.
package mcp

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"github.com/xeipuuv/gojsonschema"
)

// Registry provides read-only access to the MCP registry file. The parsed
// document is cached until Invalidate is called (typically by a Watcher).
// Every failure mode - missing file, bad JSON, schema violation - degrades
// to an empty registry.
type Registry struct {
	path         string
	logger       zerolog.Logger
	schemaLoader gojsonschema.JSONLoader

	mu     sync.Mutex
	cached *Document
}

// NewRegistry creates a registry reading from the document at path.
func NewRegistry(path string, logger zerolog.Logger) *Registry {
	return &Registry{
		path:         path,
		logger:       logger.With().Str("component", "mcp-registry").Logger(),
		schemaLoader: gojsonschema.NewStringLoader(registrySchema),
	}
}

// Document returns the parsed registry document, loading it on first use.
func (r *Registry) Document() *Document {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cached == nil {
		r.cached = r.load()
	}
	return r.cached
}

// Invalidate drops the cached document so the next read hits the file.
func (r *Registry) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cached = nil
}

// ActiveServers maps each named server to its outbound spec, including only
// servers whose registry status is active and whose type is recognized.
func (r *Registry) ActiveServers(names []string) map[string]ServerSpec {
	doc := r.Document()

	specs := make(map[string]ServerSpec)
	for _, name := range names {
		entry, ok := doc.McpServers[name]
		if !ok {
			r.logger.Debug().Str("server", name).Msg("MCP server not in registry, skipping")
			continue
		}
		if entry.Status != StatusActive {
			r.logger.Debug().
				Str("server", name).
				Str("status", entry.Status).
				Msg("MCP server not active, skipping")
			continue
		}

		switch entry.Type {
		case TypeStdio:
			specs[name] = ServerSpec{
				Type:    TypeStdio,
				Command: entry.Command,
				Args:    entry.Args,
				Env:     entry.Env,
			}
		case TypeHTTP:
			specs[name] = ServerSpec{
				Type:    TypeHTTP,
				URL:     entry.URL,
				Headers: entry.Headers,
			}
		default:
			r.logger.Warn().
				Str("server", name).
				Str("type", entry.Type).
				Msg("Unrecognized MCP server type, dropping")
		}
	}
	return specs
}

func (r *Registry) load() *Document {
	empty := &Document{McpServers: map[string]ServerEntry{}}

	data, err := os.ReadFile(r.path)
	if err != nil {
		if !os.IsNotExist(err) {
			r.logger.Warn().Err(err).Str("path", r.path).Msg("Failed to read MCP registry")
		}
		return empty
	}

	if err := r.validateSchema(data); err != nil {
		r.logger.Warn().Err(err).Str("path", r.path).Msg("MCP registry failed validation, treating as empty")
		return empty
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		r.logger.Warn().Err(err).Str("path", r.path).Msg("Failed to parse MCP registry, treating as empty")
		return empty
	}
	if doc.McpServers == nil {
		doc.McpServers = map[string]ServerEntry{}
	}

	r.logger.Debug().Int("servers", len(doc.McpServers)).Msg("MCP registry loaded")
	return &doc
}

func (r *Registry) validateSchema(data []byte) error {
	result, err := gojsonschema.Validate(r.schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if !result.Valid() {
		var msg string
		for i, verr := range result.Errors() {
			if i > 0 {
				msg += "; "
			}
			msg += verr.String()
		}
		return fmt.Errorf("invalid registry document: %s", msg)
	}
	return nil
}
