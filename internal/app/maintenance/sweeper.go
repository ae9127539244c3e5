package maintenance

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/kmarchat/streamgate/internal/cache"
	"github.com/kmarchat/streamgate/pkg/logger"
)

const defaultSweepSpec = "@hourly"

// Sweeper periodically removes expired response cache entries so the table
// does not grow without bound between requests.
type Sweeper struct {
	cache    *cache.ResponseCache
	cron     *cron.Cron
	log      *zap.Logger
	schedule string
}

// Option customises the Sweeper.
type Option func(*Sweeper)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(sweeper *Sweeper) {
		if c != nil {
			sweeper.cron = c
		}
	}
}

// WithSchedule overrides the cron specification for the sweep job.
func WithSchedule(spec string) Option {
	return func(sweeper *Sweeper) {
		if spec != "" {
			sweeper.schedule = spec
		}
	}
}

// NewSweeper constructs a Sweeper with an hourly default schedule.
func NewSweeper(responseCache *cache.ResponseCache, opts ...Option) (*Sweeper, error) {
	if responseCache == nil {
		return nil, errors.New("maintenance: response cache is required")
	}

	sweeper := &Sweeper{
		cache:    responseCache,
		schedule: defaultSweepSpec,
		log:      logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(sweeper)
	}

	if sweeper.cron == nil {
		sweeper.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return sweeper, nil
}

// Start registers the sweep job with the cron scheduler and launches it.
func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, func() {
		s.sweep(context.Background())
	}); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running job to complete.
func (s *Sweeper) Stop() context.Context {
	if s.cron == nil {
		return context.Background()
	}
	return s.cron.Stop()
}

// RunOnce executes the sweep immediately. Primarily used in tests and during
// graceful shutdown.
func (s *Sweeper) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.sweep(ctx)
	return nil
}

func (s *Sweeper) sweep(ctx context.Context) {
	start := time.Now()
	removed := s.cache.ClearExpired(ctx)
	s.log.Info("cache sweep completed",
		zap.Int64("removed", removed),
		zap.Duration("duration", time.Since(start)))
}
