package service

import (
	"time"

	"github.com/okian/netstats/internal/adapters/cache"
	"github.com/okian/netstats/internal/domain/performance"
	"github.com/okian/netstats/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithCache enables score caching.
func WithCache(c *cache.ScoreCache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithWorkerCount sets the number of per-game fan-out workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize bounds the fan-out job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithRecentGames sets N for the last-N time range.
func WithRecentGames(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.recentGames = n
		}
	}
}

// WithForfeitGoals sets the canonical forfeit margin.
func WithForfeitGoals(goals int) Option {
	return func(s *Service) {
		if goals > 0 {
			s.forfeitGoals = goals
		}
	}
}

// WithRater sets the fallback rating formula.
func WithRater(r performance.Rater) Option {
	return func(s *Service) {
		s.rater = r
	}
}

// WithMaxBatchGames caps the number of games per batch call.
func WithMaxBatchGames(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxBatchGames = n
		}
	}
}

// WithClock replaces time.Now for the calendar-month range.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
