// Package reconcile decides, per game, which of several competing score
// sources is authoritative.
package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/netstats/internal/domain/model"
	"github.com/okian/netstats/internal/domain/scoring"
	"github.com/okian/netstats/pkg/logger"
)

// Sentinel kinds for reconciliation errors.
var (
	// ErrStatsUnavailable means the data-access collaborator failed. It is
	// never returned for a game that simply has no statistics.
	ErrStatsUnavailable = errors.New("statistics unavailable")
)

// Fetcher loads stat records for a game from the data-access collaborator.
type Fetcher interface {
	FetchStatRecords(ctx context.Context, gameID string) ([]model.StatRecord, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, gameID string) ([]model.StatRecord, error)

// FetchStatRecords calls f.
func (f FetcherFunc) FetchStatRecords(ctx context.Context, gameID string) ([]model.StatRecord, error) {
	return f(ctx, gameID)
}

// Input is everything already known about a game when reconciling.
type Input struct {
	Game model.Game
	// Official rows for the game. Rows for other games are ignored.
	Official []model.OfficialScore
	// Preloaded stat records supplied by the caller, e.g. from a batch fetch.
	Preloaded []model.StatRecord
	// Cached is a previously computed score, nil when there is none.
	Cached *model.GameScore
	// ForceFresh skips the cache.
	ForceFresh bool
}

// Decision is the chosen score and the strategy that produced it.
type Decision struct {
	Score    model.GameScore
	Strategy Strategy
}

// Option applies a configuration option to the Reconciler.
type Option func(*Reconciler)

// WithOrder overrides the strategy priority list.
func WithOrder(order ...Strategy) Option {
	return func(r *Reconciler) {
		if len(order) > 0 {
			r.order = append([]Strategy(nil), order...)
		}
	}
}

// WithAggregator sets the aggregator used for stat records.
func WithAggregator(a *scoring.Aggregator) Option {
	return func(r *Reconciler) {
		if a != nil {
			r.aggregator = a
		}
	}
}

// WithLogger sets a logger for decisions and data-quality warnings.
func WithLogger(l logger.Logger) Option {
	return func(r *Reconciler) {
		if l != nil {
			r.logger = l
		}
	}
}

// Reconciler walks the strategy list for a game.
type Reconciler struct {
	fetcher    Fetcher
	aggregator *scoring.Aggregator
	order      []Strategy
	logger     logger.Logger
}

// New creates a Reconciler. fetcher may be nil when every caller preloads.
func New(fetcher Fetcher, opts ...Option) *Reconciler {
	r := &Reconciler{
		fetcher: fetcher,
		order:   DefaultOrder,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.aggregator == nil {
		r.aggregator = scoring.NewAggregator(scoring.WithLogger(r.logger))
	}
	return r
}

// Order returns a copy of the active priority list.
func (r *Reconciler) Order() []Strategy {
	return append([]Strategy(nil), r.order...)
}

// Reconcile returns the score from the first applicable strategy. If no
// strategy applies the result is an all-zero score flagged as no data.
func (r *Reconciler) Reconcile(ctx context.Context, in Input) (Decision, error) {
	for _, s := range r.order {
		score, ok, err := r.try(ctx, s, in)
		if err != nil {
			return Decision{}, err
		}
		if !ok {
			continue
		}
		score.GameID = in.Game.ID
		if s != StrategyCached {
			score.Source = s.Source()
		}
		if r.logger != nil {
			r.logger.Debug(ctx, "score reconciled",
				logger.String("gameID", in.Game.ID),
				logger.String("strategy", s.String()),
				logger.Bool("forceFresh", in.ForceFresh),
			)
		}
		return Decision{Score: score, Strategy: s}, nil
	}

	last := StrategyFetch
	if n := len(r.order); n > 0 {
		last = r.order[n-1]
	}
	return Decision{
		Score:    model.GameScore{GameID: in.Game.ID, Source: model.SourceComputed, NoData: true},
		Strategy: last,
	}, nil
}

func (r *Reconciler) try(ctx context.Context, s Strategy, in Input) (model.GameScore, bool, error) {
	switch s {
	case StrategyOfficial:
		return r.official(ctx, in)
	case StrategyPreloaded:
		if len(in.Preloaded) == 0 {
			return model.GameScore{}, false, nil
		}
		return r.aggregator.Score(ctx, in.Game, in.Preloaded), true, nil
	case StrategyCached:
		if in.ForceFresh || in.Cached == nil {
			return model.GameScore{}, false, nil
		}
		// A forfeit's score follows from the game status alone, so a score
		// cached before the status changed is stale.
		if in.Game.Status.IsForfeit() {
			return model.GameScore{}, false, nil
		}
		return *in.Cached, true, nil
	case StrategyFetch:
		if score, ok := r.aggregator.Forfeit(in.Game); ok {
			return score, true, nil
		}
		if r.fetcher == nil {
			return model.GameScore{}, false, nil
		}
		records, err := r.fetcher.FetchStatRecords(ctx, in.Game.ID)
		if err != nil {
			return model.GameScore{}, false, fmt.Errorf("%w: game %s: %w", ErrStatsUnavailable, in.Game.ID, err)
		}
		return r.aggregator.Score(ctx, in.Game, records), true, nil
	default:
		return model.GameScore{}, false, nil
	}
}

// official sums official rows per team and quarter and maps the teams onto
// home and away. Rows for a team outside the game or an unknown quarter are
// ignored. The strategy applies only when at least one row is usable.
func (r *Reconciler) official(ctx context.Context, in Input) (model.GameScore, bool, error) {
	score := model.GameScore{GameID: in.Game.ID}
	used, ignored := 0, 0
	for _, row := range in.Official {
		if row.GameID != in.Game.ID {
			continue
		}
		if !model.ValidQuarter(row.Quarter) {
			ignored++
			continue
		}
		q := &score.Quarters[row.Quarter-1]
		switch row.TeamID {
		case in.Game.HomeTeamID:
			q.For += row.Score
		case in.Game.AwayTeamID:
			q.Against += row.Score
		default:
			ignored++
			continue
		}
		used++
	}

	if ignored > 0 && r.logger != nil {
		r.logger.Warn(ctx, "ignoring official score rows",
			logger.String("gameID", in.Game.ID),
			logger.Int("count", ignored),
		)
	}
	if used == 0 {
		return model.GameScore{}, false, nil
	}
	score.Final = score.SumQuarters()
	score.Dropped = ignored
	return score, true, nil
}
