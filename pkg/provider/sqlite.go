package provider

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// SQLiteRegistry is a sqlite-backed Registry. Administrative mutation
// (Save, Delete, SetDefault) happens through flows outside the resolution
// path, which only reads.
type SQLiteRegistry struct {
	db     *sql.DB
	logger zerolog.Logger
}

// OpenSQLite opens (creating if necessary) the provider database at path.
func OpenSQLite(path string, logger zerolog.Logger) (*SQLiteRegistry, error) {
	if path == "" {
		return nil, errors.New("provider database path is required")
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open provider database: %w", err)
	}

	// WAL mode for concurrent readers during resolution
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	r := &SQLiteRegistry{
		db:     db,
		logger: logger.With().Str("component", "provider-registry").Logger(),
	}

	if err := r.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if err := r.seedSystemDefault(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed system provider: %w", err)
	}

	return r, nil
}

func (r *SQLiteRegistry) initSchema() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS providers (
			id              TEXT PRIMARY KEY,
			name            TEXT NOT NULL,
			alias           TEXT NOT NULL DEFAULT '',
			executable_path TEXT NOT NULL DEFAULT '',
			env_json        TEXT NOT NULL DEFAULT '{}',
			models_json     TEXT NOT NULL DEFAULT '[]',
			is_default      INTEGER NOT NULL DEFAULT 0,
			is_system       INTEGER NOT NULL DEFAULT 0
		)
	`)
	return err
}

// seedSystemDefault inserts the built-in runtime provider into an empty
// registry so resolution has a system default from first start. A registry
// with any rows is left alone.
func (r *SQLiteRegistry) seedSystemDefault() error {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM providers`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	models, err := json.Marshal([]Model{
		{ID: "claude-sonnet-4", Name: "Claude Sonnet 4", Vision: true},
		{ID: "claude-opus-4", Name: "Claude Opus 4", Vision: true},
	})
	if err != nil {
		return err
	}

	_, err = r.db.Exec(`
		INSERT INTO providers
			(id, name, alias, executable_path, env_json, models_json, is_default, is_system)
		VALUES ('anthropic', 'Anthropic', 'claude', '', '{}', ?, 1, 1)`,
		string(models))
	if err == nil {
		r.logger.Info().Str("providerId", "anthropic").Msg("Seeded system default provider")
	}
	return err
}

// DefaultID returns the id of the provider flagged as default, or "".
func (r *SQLiteRegistry) DefaultID(ctx context.Context) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM providers WHERE is_default = 1 LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query default provider: %w", err)
	}
	return id, nil
}

// GetByID returns the provider with the given id, or ErrNotFound.
func (r *SQLiteRegistry) GetByID(ctx context.Context, id string) (*Provider, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, alias, executable_path, env_json, models_json, is_default, is_system
		FROM providers WHERE id = ?`, id)

	p, err := scanProvider(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load provider %s: %w", id, err)
	}
	return p, nil
}

// List returns all registered providers.
func (r *SQLiteRegistry) List(ctx context.Context) ([]*Provider, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, alias, executable_path, env_json, models_json, is_default, is_system
		FROM providers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list providers: %w", err)
	}
	defer rows.Close()

	var providers []*Provider
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan provider row: %w", err)
		}
		providers = append(providers, p)
	}
	return providers, rows.Err()
}

// Save inserts or replaces a provider record.
func (r *SQLiteRegistry) Save(ctx context.Context, p *Provider) error {
	if p.ID == "" {
		return errors.New("provider id is required")
	}

	envJSON, err := json.Marshal(p.Env)
	if err != nil {
		return fmt.Errorf("failed to marshal environment: %w", err)
	}
	modelsJSON, err := json.Marshal(p.Models)
	if err != nil {
		return fmt.Errorf("failed to marshal models: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO providers
			(id, name, alias, executable_path, env_json, models_json, is_default, is_system)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Alias, p.ExecutablePath, string(envJSON), string(modelsJSON),
		boolToInt(p.Default), boolToInt(p.System))
	if err != nil {
		return fmt.Errorf("failed to save provider %s: %w", p.ID, err)
	}

	r.logger.Info().Str("providerId", p.ID).Msg("Provider saved")
	return nil
}

// SetDefault marks the given provider as the system default, clearing any
// previous default in the same transaction.
func (r *SQLiteRegistry) SetDefault(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE providers SET is_default = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to set default provider: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `UPDATE providers SET is_default = 0 WHERE id != ?`, id); err != nil {
		return fmt.Errorf("failed to clear previous default: %w", err)
	}

	return tx.Commit()
}

// Delete removes a provider record. System providers cannot be deleted.
func (r *SQLiteRegistry) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM providers WHERE id = ? AND is_system = 0`, id)
	if err != nil {
		return fmt.Errorf("failed to delete provider %s: %w", id, err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}

	r.logger.Info().Str("providerId", id).Msg("Provider deleted")
	return nil
}

// Close closes the underlying database.
func (r *SQLiteRegistry) Close() error {
	return r.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProvider(row rowScanner) (*Provider, error) {
	var (
		p                   Provider
		envJSON, modelsJSON string
		isDefault, isSystem int
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Alias, &p.ExecutablePath,
		&envJSON, &modelsJSON, &isDefault, &isSystem); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(envJSON), &p.Env); err != nil {
		return nil, fmt.Errorf("corrupt environment for provider %s: %w", p.ID, err)
	}
	if err := json.Unmarshal([]byte(modelsJSON), &p.Models); err != nil {
		return nil, fmt.Errorf("corrupt model list for provider %s: %w", p.ID, err)
	}

	p.Default = isDefault == 1
	p.System = isSystem == 1
	return &p, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
