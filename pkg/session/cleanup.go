package session

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const (
	DefaultIdleTimeout     = 30 * time.Minute
	DefaultCleanupSchedule = "@every 5m"
)

// Cleanup periodically evicts idle sessions from a MemoryStore. Eviction
// only drops the in-memory handle; disk history stays, so evicted sessions
// resume on their next use.
type Cleanup struct {
	store       *MemoryStore
	idleTimeout time.Duration
	cron        *cron.Cron
	logger      zerolog.Logger
}

// NewCleanup creates a cleanup job for the given store.
func NewCleanup(store *MemoryStore, idleTimeout time.Duration, logger zerolog.Logger) *Cleanup {
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	return &Cleanup{
		store:       store,
		idleTimeout: idleTimeout,
		cron:        cron.New(),
		logger:      logger.With().Str("component", "session-cleanup").Logger(),
	}
}

// Start schedules eviction runs. schedule accepts cron expressions and
// descriptors like "@every 5m"; empty means DefaultCleanupSchedule.
func (c *Cleanup) Start(schedule string) error {
	if schedule == "" {
		schedule = DefaultCleanupSchedule
	}

	if _, err := c.cron.AddFunc(schedule, c.Run); err != nil {
		return fmt.Errorf("invalid cleanup schedule %q: %w", schedule, err)
	}

	c.cron.Start()
	c.logger.Info().
		Str("schedule", schedule).
		Dur("idleTimeout", c.idleTimeout).
		Msg("Session cleanup started")
	return nil
}

// Run performs one eviction pass.
func (c *Cleanup) Run() {
	if evicted := c.store.EvictIdle(c.idleTimeout); evicted > 0 {
		c.logger.Info().Int("evicted", evicted).Msg("Evicted idle sessions")
	}
}

// Stop stops the schedule, waiting for a running pass to finish.
func (c *Cleanup) Stop() {
	ctx := c.cron.Stop()
	<-ctx.Done()
	c.logger.Info().Msg("Session cleanup stopped")
}
