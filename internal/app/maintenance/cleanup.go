package maintenance

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/charlesng35/teamkit/internal/services"
	"github.com/charlesng35/teamkit/pkg/logger"
	"github.com/charlesng35/teamkit/pkg/metrics"
)

const defaultSchedule = "@every 5m"

// StatsSource reports the counts published as gauges.
type StatsSource interface {
	Stats(ctx context.Context) (services.Stats, error)
}

// ActivityPruner removes activity entries past their retention.
type ActivityPruner interface {
	CleanupOlderThan(ctx context.Context, retentionDays int) (int64, error)
}

// CounterPurger removes elapsed rate limit windows.
type CounterPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Cleaner coordinates background housekeeping: refreshing the user, team and
// invitation gauges, pruning old activity and purging database rate counters.
type Cleaner struct {
	stats     StatsSource
	activity  ActivityPruner
	counters  CounterPurger
	cron      *cron.Cron
	log       *zap.Logger
	retention int
	schedule  string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithSchedule overrides the cron specification all jobs run on.
func WithSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.schedule = spec
		}
	}
}

// WithActivityRetentionDays enables activity pruning. Zero keeps everything.
func WithActivityRetentionDays(days int) Option {
	return func(cleaner *Cleaner) {
		if days > 0 {
			cleaner.retention = days
		}
	}
}

// WithActivityPruner overrides the activity pruner taken from the store.
func WithActivityPruner(p ActivityPruner) Option {
	return func(cleaner *Cleaner) {
		if p != nil {
			cleaner.activity = p
		}
	}
}

// WithCounterPurger enables purging of expired rate limit counters.
func WithCounterPurger(p CounterPurger) Option {
	return func(cleaner *Cleaner) {
		cleaner.counters = p
	}
}

// NewCleaner constructs a Cleaner over store.
func NewCleaner(store *services.Store, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		schedule: defaultSchedule,
		log:      logger.WithModule("maintenance"),
	}
	if store != nil {
		cleaner.stats = store
		cleaner.activity = store.Activity
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}
	return cleaner
}

// Start registers the housekeeping job and launches the scheduler.
func (c *Cleaner) Start() error {
	if c.stats == nil && c.activity == nil && c.counters == nil {
		return nil
	}

	if _, err := c.cron.AddFunc(c.schedule, func() {
		if err := c.RunOnce(context.Background()); err != nil {
			c.log.Warn("maintenance run failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("maintenance: schedule %q: %w", c.schedule, err)
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler. The returned context is done once any running job completes.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes every configured task in turn and combines their errors.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	if c.stats != nil {
		if err := RefreshGauges(ctx, c.stats); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if c.activity != nil && c.retention > 0 {
		removed, err := c.activity.CleanupOlderThan(ctx, c.retention)
		if err != nil {
			errs = multierr.Append(errs, err)
		} else if removed > 0 {
			c.log.Info("pruned activity", zap.Int64("removed", removed), zap.Int("retention_days", c.retention))
		}
	}

	if c.counters != nil {
		if _, err := c.counters.PurgeExpired(ctx); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("maintenance: purge rate counters: %w", err))
		}
	}

	return errs
}

// RefreshGauges publishes the current user, team and invitation counts.
func RefreshGauges(ctx context.Context, source StatsSource) error {
	stats, err := source.Stats(ctx)
	if err != nil {
		return err
	}
	metrics.ActiveUsers.Set(float64(stats.ActiveUsers))
	metrics.Teams.Set(float64(stats.Teams))
	metrics.PendingInvitations.Set(float64(stats.PendingInvitations))
	return nil
}
