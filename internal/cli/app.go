package cli

import (
	"fmt"

	"github.com/agentplane/agentplane/internal/config"
	"github.com/agentplane/agentplane/internal/logger"
	"github.com/agentplane/agentplane/pkg/launch"
	"github.com/agentplane/agentplane/pkg/mcp"
	"github.com/agentplane/agentplane/pkg/project"
	"github.com/agentplane/agentplane/pkg/provider"
	"github.com/agentplane/agentplane/pkg/resolve"
)

// app bundles the pieces a command needs once configuration is loaded.
type app struct {
	cfg       *config.Config
	log       *logger.Logger
	providers *provider.SQLiteRegistry
	projects  *project.FileStore
	mcp       *mcp.Registry
	builder   *launch.Builder
}

// newApp loads configuration and assembles the resolution stack. Commands
// that only need the config can read app.cfg and ignore the rest.
func newApp() (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	log, err := logger.New(logger.Config{
		Level:     cfg.Logging.Level,
		File:      cfg.Logging.File,
		Console:   cfg.Logging.Console,
		Pretty:    cfg.Logging.Pretty,
		Redaction: cfg.Logging.Redaction,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	zl := log.Get()
	providers, err := provider.OpenSQLite(cfg.Providers.DBPath, zl)
	if err != nil {
		return nil, fmt.Errorf("failed to open provider registry: %w", err)
	}
	projects, err := project.NewFileStore(cfg.Projects.StatePath, zl)
	if err != nil {
		return nil, fmt.Errorf("failed to open project store: %w", err)
	}

	registry := mcp.NewRegistry(cfg.MCP.RegistryPath, zl)
	resolver := resolve.New(providers, projects, zl)
	builder := launch.NewBuilder(resolver, registry, nil, zl)

	return &app{
		cfg:       cfg,
		log:       log,
		providers: providers,
		projects:  projects,
		mcp:       registry,
		builder:   builder,
	}, nil
}

// Close releases the app's resources.
func (a *app) Close() error {
	if a.providers != nil {
		if err := a.providers.Close(); err != nil {
			return err
		}
	}
	if a.log != nil {
		return a.log.Close()
	}
	return nil
}
