// Package maintenance removes expired sessions and old audit entries.
package maintenance

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/youssefsiam38/motoadmin/storage"
)

// Default cleanup configuration values
const (
	DefaultCleanupInterval = 1 * time.Minute
	DefaultAuditRetention  = 30 * 24 * time.Hour
)

// CleanupConfig holds configuration for the cleanup service.
type CleanupConfig struct {
	// Interval is how often to run cleanup operations.
	// Default: 1 minute
	Interval time.Duration

	// AuditRetention is how long audit entries are kept. Zero keeps them
	// for DefaultAuditRetention; a negative value keeps them forever.
	// Default: 30 days
	AuditRetention time.Duration

	// Clock drives the ticker and the expiry horizon (optional).
	Clock clockwork.Clock

	// OnCleanup is called after each pass that removed something.
	OnCleanup func(result *CleanupResult)

	// OnError is called when a cleanup operation fails.
	OnError func(err error)
}

// DefaultCleanupConfig returns the default cleanup configuration.
func DefaultCleanupConfig() *CleanupConfig {
	return &CleanupConfig{
		Interval:       DefaultCleanupInterval,
		AuditRetention: DefaultAuditRetention,
	}
}

func (c *CleanupConfig) applyDefaults() {
	if c.Interval <= 0 {
		c.Interval = DefaultCleanupInterval
	}
	if c.AuditRetention == 0 {
		c.AuditRetention = DefaultAuditRetention
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
}

// CleanupResult holds the results of a cleanup operation.
type CleanupResult struct {
	// ExpiredSessionsDeleted is the number of expired sessions removed.
	ExpiredSessionsDeleted int

	// AuditEntriesDeleted is the number of audit entries past retention.
	AuditEntriesDeleted int

	// ExpiredLeadersCleaned is the number of expired leader entries cleaned.
	ExpiredLeadersCleaned int

	// Errors contains any errors that occurred during cleanup.
	Errors []error
}

// Removed reports whether the pass deleted anything.
func (r *CleanupResult) Removed() bool {
	return r.ExpiredSessionsDeleted+r.AuditEntriesDeleted+r.ExpiredLeadersCleaned > 0
}

// Cleanup periodically purges expired state from a store.
// When several consoles share a store only the leader should run it.
type Cleanup struct {
	store  storage.Store
	config *CleanupConfig

	started atomic.Bool
	done    chan struct{}
	cancel  context.CancelFunc
}

// NewCleanup creates a new cleanup service.
func NewCleanup(store storage.Store, config *CleanupConfig) *Cleanup {
	if config == nil {
		config = DefaultCleanupConfig()
	}
	cfg := *config
	cfg.applyDefaults()

	return &Cleanup{
		store:  store,
		config: &cfg,
	}
}

// Start begins the cleanup loop.
// It returns immediately and runs cleanup operations in a goroutine.
func (c *Cleanup) Start(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	c.done = make(chan struct{})
	ctx, c.cancel = context.WithCancel(ctx)
	go c.run(ctx)

	return nil
}

// Stop stops the cleanup loop and waits for it to exit.
func (c *Cleanup) Stop(ctx context.Context) error {
	if !c.started.Load() {
		return ErrNotStarted
	}

	c.cancel()
	select {
	case <-c.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	c.started.Store(false)
	return nil
}

// run is the main cleanup loop.
func (c *Cleanup) run(ctx context.Context) {
	defer close(c.done)

	// Run cleanup immediately on start
	c.runCleanup(ctx)

	ticker := c.config.Clock.NewTicker(c.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			c.runCleanup(ctx)
		}
	}
}

// runCleanup performs all cleanup operations and reports the outcome.
func (c *Cleanup) runCleanup(ctx context.Context) {
	result := c.RunOnce(ctx)

	if c.config.OnCleanup != nil && result.Removed() {
		c.config.OnCleanup(result)
	}

	if c.config.OnError != nil {
		for _, err := range result.Errors {
			c.config.OnError(err)
		}
	}
}

// RunOnce performs cleanup operations once and returns the result.
// This can be called manually for testing or one-off cleanup.
func (c *Cleanup) RunOnce(ctx context.Context) *CleanupResult {
	result := &CleanupResult{}
	now := c.config.Clock.Now()

	sessions, err := c.store.DeleteExpiredSessions(ctx, now)
	if err != nil {
		result.Errors = append(result.Errors, err)
	} else {
		result.ExpiredSessionsDeleted = sessions
	}

	if c.config.AuditRetention > 0 {
		audit, err := c.store.DeleteAuditBefore(ctx, now.Add(-c.config.AuditRetention))
		if err != nil {
			result.Errors = append(result.Errors, err)
		} else {
			result.AuditEntriesDeleted = audit
		}
	}

	leaders, err := c.store.LeaderDeleteExpired(ctx)
	if err != nil {
		result.Errors = append(result.Errors, err)
	} else {
		result.ExpiredLeadersCleaned = leaders
	}

	return result
}

// IsRunning returns true if the cleanup service is running.
func (c *Cleanup) IsRunning() bool {
	return c.started.Load()
}
