package provider

import "errors"

// ErrNotFound is returned when a provider id has no record in the registry.
var ErrNotFound = errors.New("provider not found")

// Model is one model a provider can serve.
type Model struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Vision bool   `json:"isVision"`
}

// Provider is a named configuration bundle describing one way to invoke the
// agent runtime: which executable to run, which environment to hand it, and
// which models it serves. Records are immutable for the duration of a single
// resolution.
type Provider struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Alias          string            `json:"alias,omitempty"`
	ExecutablePath string            `json:"executablePath,omitempty"`
	Env            map[string]string `json:"environmentVariables,omitempty"`
	Models         []Model           `json:"models,omitempty"`
	Default        bool              `json:"isDefault"`
	System         bool              `json:"isSystem"`
}

// FirstModel returns the id of the provider's first model, or "" when the
// provider declares none.
func (p *Provider) FirstModel() string {
	if p == nil || len(p.Models) == 0 {
		return ""
	}
	return p.Models[0].ID
}
