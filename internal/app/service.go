// Package service is the engine facade: it loads game data through the
// repository, reconciles scores, applies perspective and rolls up player
// performance, fanning per-game work out to a worker pool.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/netstats/internal/adapters/cache"
	"github.com/okian/netstats/internal/adapters/mq/queue"
	"github.com/okian/netstats/internal/adapters/mq/worker"
	"github.com/okian/netstats/internal/adapters/repository"
	"github.com/okian/netstats/internal/domain/dedupe"
	"github.com/okian/netstats/internal/domain/model"
	"github.com/okian/netstats/internal/domain/performance"
	"github.com/okian/netstats/internal/domain/perspective"
	"github.com/okian/netstats/internal/domain/reconcile"
	"github.com/okian/netstats/internal/domain/roster"
	"github.com/okian/netstats/internal/domain/scoring"
	"github.com/okian/netstats/internal/domain/types"
	"github.com/okian/netstats/pkg/logger"
	"github.com/okian/netstats/pkg/metrics"
)

// Service implements the engine's query operations.
type Service struct {
	mu sync.RWMutex

	store repository.Store
	cache *cache.ScoreCache

	deduper    *dedupe.Deduplicator
	scorer     *scoring.Aggregator
	reconciler *reconcile.Reconciler
	perf       *performance.Aggregator

	workerCount   int
	queueSize     int
	recentGames   int
	forfeitGoals  int
	maxBatchGames int
	rater         performance.Rater
	now           func() time.Time

	started      bool
	scoresServed atomic.Int64
	aggregations atomic.Int64

	logger logger.Logger
}

// New constructs a Service over store.
func New(store repository.Store, opts ...Option) *Service {
	s := &Service{
		store:         store,
		workerCount:   runtime.NumCPU(),
		queueSize:     1024,
		recentGames:   5,
		forfeitGoals:  10,
		maxBatchGames: 200,
		rater:         performance.DefaultRater(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.deduper = dedupe.New(dedupe.WithLogger(s.logger))
	s.scorer = scoring.NewAggregator(
		scoring.WithForfeitGoals(s.forfeitGoals),
		scoring.WithLogger(s.logger),
	)
	s.reconciler = reconcile.New(
		reconcile.FetcherFunc(s.fetchStatRecords),
		reconcile.WithAggregator(s.scorer),
		reconcile.WithLogger(s.logger),
	)
	s.perf = performance.NewAggregator(performance.WithRater(s.rater))
	return s
}

// Start marks the service ready.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.started = true
	s.logger.Info(ctx, "netstats service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("recentGames", s.recentGames),
		logger.Bool("cache", s.cache != nil),
	)
	return nil
}

// Stop releases the cache and, when it can be closed, the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			s.logger.Warn(ctx, "closing cache", logger.Error(err))
		}
	}
	if closer, ok := s.store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			s.logger.Warn(ctx, "closing store", logger.Error(err))
		}
	}
	s.started = false
	s.logger.Info(ctx, "netstats service stopped")
}

// ComputeGameScore returns the authoritative score of a game. forceFresh
// skips the cache; official scores still win over a recompute.
func (s *Service) ComputeGameScore(ctx context.Context, gameID string, forceFresh bool) (model.GameScore, error) {
	score, _, err := s.computeGameScore(ctx, gameID, forceFresh)
	return score, err
}

// ResolvePerspective scores a game and frames it from viewingTeamID. An
// empty team gives the club-wide view without a verdict.
func (s *Service) ResolvePerspective(ctx context.Context, gameID, viewingTeamID string) (model.PerspectiveScore, error) {
	score, game, err := s.computeGameScore(ctx, gameID, false)
	if err != nil {
		return model.PerspectiveScore{}, err
	}
	return perspective.Resolve(score, game, viewingTeamID)
}

// ComputeGameScores scores a batch of games with one fetch per data kind,
// reconciling each game on the worker pool. Results follow the order of
// gameIDs with duplicates removed. A batch cached under the sorted id list
// stands in for stat records; official rows are always read and still win.
// Batches containing a no-data placeholder are not cached.
func (s *Service) ComputeGameScores(ctx context.Context, gameIDs []string, forceFresh bool) ([]model.GameScore, error) {
	ids := uniqueIDs(gameIDs)
	if len(ids) == 0 {
		return []model.GameScore{}, nil
	}
	if len(ids) > s.maxBatchGames {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyGames, len(ids), s.maxBatchGames)
	}

	games, err := s.store.Games(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: games: %w", ErrStatsUnavailable, err)
	}
	byID := make(map[string]model.Game, len(games))
	for _, g := range games {
		byID[g.ID] = g
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrGameNotFound, id)
		}
	}

	official, err := s.store.OfficialScores(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: official scores: %w", ErrStatsUnavailable, err)
	}
	officialBy := groupBy(official, func(o model.OfficialScore) string { return o.GameID })

	hits := s.cachedBatch(ctx, ids, forceFresh)
	var recordsBy map[string][]model.StatRecord
	if hits == nil {
		records, err := s.store.StatRecords(ctx, ids)
		if err != nil {
			metrics.RecordFetchError()
			return nil, fmt.Errorf("%w: stat records: %w", ErrStatsUnavailable, err)
		}
		recordsBy = groupBy(records, func(r model.StatRecord) string { return r.GameID })
	}

	results := make([]model.GameScore, len(ids))
	err = s.fanOut(ctx, ids, func(ctx context.Context, i int, id string) error {
		start := time.Now()
		in := reconcile.Input{
			Game:       byID[id],
			Official:   officialBy[id],
			Preloaded:  recordsBy[id],
			ForceFresh: forceFresh,
		}
		if hit, ok := hits[id]; ok {
			in.Cached = &hit
		} else if len(in.Preloaded) == 0 && !forceFresh {
			in.Cached = s.cachedScore(ctx, id)
		}
		d, err := s.reconciler.Reconcile(ctx, in)
		if err != nil {
			return err
		}
		s.record(ctx, d, start)
		results[i] = d.Score
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil && hits == nil && !anyNoData(results) {
		if err := s.cache.SetBatch(ctx, ids, results); err != nil {
			s.logger.Warn(ctx, "batch cache write failed", logger.Error(err))
		}
	}
	return results, nil
}

// cachedBatch returns the cached batch for ids keyed by game, or nil on a
// miss or a partial entry.
func (s *Service) cachedBatch(ctx context.Context, ids []string, forceFresh bool) map[string]model.GameScore {
	if s.cache == nil || forceFresh {
		return nil
	}
	cached, ok, err := s.cache.GetBatch(ctx, ids)
	if err != nil {
		s.logger.Warn(ctx, "batch cache read failed", logger.Error(err))
		return nil
	}
	if !ok || len(cached) != len(ids) {
		return nil
	}
	hits := make(map[string]model.GameScore, len(cached))
	for _, sc := range cached {
		hits[sc.GameID] = sc
	}
	return hits
}

// AggregatePlayerPerformance rolls up player totals over gameIDs (every
// game when empty) narrowed by tr. Each game's records are fetched and
// attributed on the worker pool; the reduce is order-independent. An empty
// players list reports every player seen.
func (s *Service) AggregatePlayerPerformance(ctx context.Context, players, gameIDs []string, tr performance.TimeRange) (performance.Report, error) {
	start := time.Now()
	ids := uniqueIDs(gameIDs)
	if len(ids) > s.maxBatchGames {
		return performance.Report{}, fmt.Errorf("%w: %d > %d", ErrTooManyGames, len(ids), s.maxBatchGames)
	}

	games, err := s.store.Games(ctx, ids)
	if err != nil {
		return performance.Report{}, fmt.Errorf("%w: games: %w", ErrStatsUnavailable, err)
	}
	if len(ids) > 0 && len(games) < len(ids) {
		s.logger.Debug(ctx, "unknown games ignored in aggregation",
			logger.Int("requested", len(ids)),
			logger.Int("found", len(games)),
		)
	}

	selected := performance.FilterGames(games, tr)
	selectedIDs := make([]string, len(selected))
	for i, g := range selected {
		selectedIDs[i] = g.ID
	}

	var idx *roster.Index
	if len(selectedIDs) > 0 {
		rows, err := s.store.RosterAssignments(ctx, selectedIDs)
		if err != nil {
			return performance.Report{}, fmt.Errorf("%w: roster: %w", ErrStatsUnavailable, err)
		}
		idx = roster.Build(rows)
	}

	contributions := make([]performance.Contribution, len(selected))
	err = s.fanOut(ctx, selectedIDs, func(ctx context.Context, i int, id string) error {
		recs, err := s.fetchStatRecords(ctx, id)
		if err != nil {
			return fmt.Errorf("%w: game %s: %w", ErrStatsUnavailable, id, err)
		}
		res := s.deduper.Deduplicate(ctx, recs)
		metrics.RecordRecordsDropped(res.Report.Dropped)
		metrics.RecordRecordsSuperseded(res.Report.Superseded)
		contributions[i] = performance.Contribute(selected[i], idx, res)
		return nil
	})
	if err != nil {
		return performance.Report{}, err
	}

	report := s.perf.Reduce(players, contributions)
	if n := len(report.IncompleteRosters); n > 0 {
		metrics.RecordIncompleteRosters(n)
		s.logger.Warn(ctx, "aggregated games with incomplete rosters",
			logger.Int("count", n),
			logger.Any("games", report.IncompleteRosters),
		)
	}
	metrics.RecordGamesAggregated(len(selected))
	metrics.RecordAggregationLatency(float64(time.Since(start).Microseconds()) / 1000)
	s.aggregations.Add(1)
	return report, nil
}

// RosterStatus reports whether a game's roster fills all 28 slots and which
// slots are empty. Incompleteness is advisory and never an error.
func (s *Service) RosterStatus(ctx context.Context, gameID string) (types.RosterStatus, error) {
	if _, err := s.loadGame(ctx, gameID); err != nil {
		return types.RosterStatus{}, err
	}
	rows, err := s.store.RosterAssignments(ctx, []string{gameID})
	if err != nil {
		return types.RosterStatus{}, fmt.Errorf("%w: roster: %w", ErrStatsUnavailable, err)
	}
	return types.NewRosterStatus(roster.Build(rows), gameID), nil
}

// ParseTimeRange reads a time-range selector using the configured last-N
// default and the current time for the calendar month.
func (s *Service) ParseTimeRange(v string) (performance.TimeRange, error) {
	return performance.ParseTimeRange(v, s.recentGames, s.now())
}

// MaxBatchGames returns the per-request game limit.
func (s *Service) MaxBatchGames() int {
	return s.maxBatchGames
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]any{
		"started":       s.started,
		"workerCount":   s.workerCount,
		"queueSize":     s.queueSize,
		"recentGames":   s.recentGames,
		"maxBatchGames": s.maxBatchGames,
		"cacheEnabled":  s.cache != nil,
		"strategyOrder": strategyNames(s.reconciler.Order()),
		"scoresServed":  s.scoresServed.Load(),
		"aggregations":  s.aggregations.Load(),
	}
}

func (s *Service) computeGameScore(ctx context.Context, gameID string, forceFresh bool) (model.GameScore, model.Game, error) {
	start := time.Now()
	game, err := s.loadGame(ctx, gameID)
	if err != nil {
		return model.GameScore{}, model.Game{}, err
	}
	official, err := s.store.OfficialScores(ctx, []string{gameID})
	if err != nil {
		return model.GameScore{}, model.Game{}, fmt.Errorf("%w: official scores: %w", ErrStatsUnavailable, err)
	}

	in := reconcile.Input{Game: game, Official: official, ForceFresh: forceFresh}
	if !forceFresh {
		in.Cached = s.cachedScore(ctx, gameID)
	}
	d, err := s.reconciler.Reconcile(ctx, in)
	if err != nil {
		metrics.RecordErrorByComponent("service", "stats_unavailable")
		return model.GameScore{}, model.Game{}, err
	}
	s.record(ctx, d, start)
	return d.Score, game, nil
}

// record updates metrics for a decision and writes computed scores back to
// the cache. Placeholders for games without data are not cached.
func (s *Service) record(ctx context.Context, d reconcile.Decision, start time.Time) {
	s.scoresServed.Add(1)
	metrics.RecordScore(string(d.Score.Source))
	metrics.RecordRecordsDropped(d.Score.Dropped)
	metrics.RecordScoringLatency(float64(time.Since(start).Microseconds()) / 1000)

	if s.cache == nil || d.Score.NoData {
		return
	}
	switch d.Strategy {
	case reconcile.StrategyPreloaded, reconcile.StrategyFetch:
		if err := s.cache.Set(ctx, d.Score); err != nil {
			s.logger.Warn(ctx, "cache write failed",
				logger.String("gameID", d.Score.GameID),
				logger.Error(err),
			)
		}
	}
}

func (s *Service) cachedScore(ctx context.Context, gameID string) *model.GameScore {
	if s.cache == nil {
		return nil
	}
	score, err := s.cache.Get(ctx, gameID)
	if err != nil {
		s.logger.Warn(ctx, "cache read failed, treating as miss",
			logger.String("gameID", gameID),
			logger.Error(err),
		)
		return nil
	}
	return score
}

func (s *Service) loadGame(ctx context.Context, gameID string) (model.Game, error) {
	games, err := s.store.Games(ctx, []string{gameID})
	if err != nil {
		return model.Game{}, fmt.Errorf("%w: games: %w", ErrStatsUnavailable, err)
	}
	for _, g := range games {
		if g.ID == gameID {
			return g, nil
		}
	}
	return model.Game{}, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
}

func (s *Service) fetchStatRecords(ctx context.Context, gameID string) ([]model.StatRecord, error) {
	recs, err := s.store.StatRecords(ctx, []string{gameID})
	if err != nil {
		metrics.RecordFetchError()
		return nil, err
	}
	return recs, nil
}

// fanOut runs fn for every id on a short-lived queue and worker pool and
// returns the first error. The first failure cancels the remaining jobs.
func (s *Service) fanOut(ctx context.Context, ids []string, fn func(ctx context.Context, i int, id string) error) error {
	switch len(ids) {
	case 0:
		return nil
	case 1:
		return fn(ctx, 0, ids[0])
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		errMu    sync.Mutex
		firstErr error
	)
	proc := worker.ProcessorFunc(func(ctx context.Context, job queue.Job) error {
		err := fn(ctx, job.Index, job.GameID)
		if err != nil {
			errMu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			errMu.Unlock()
			cancel()
		}
		return err
	})

	q := queue.NewInMemoryQueue(queue.WithCapacity(min(s.queueSize, len(ids))))
	pool := worker.NewPool(min(s.workerCount, len(ids)), q, proc, worker.WithLogger(s.logger))
	pool.Start(runCtx)

	requestID := uuid.NewString()
	for i, id := range ids {
		if err := q.EnqueueWait(runCtx, queue.Job{ID: requestID, GameID: id, Index: i}); err != nil {
			break
		}
	}
	_ = q.Close()
	pool.Wait()

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func groupBy[T any](items []T, key func(T) string) map[string][]T {
	out := make(map[string][]T)
	for _, it := range items {
		k := key(it)
		out[k] = append(out[k], it)
	}
	return out
}

func anyNoData(scores []model.GameScore) bool {
	for _, sc := range scores {
		if sc.NoData {
			return true
		}
	}
	return false
}

func strategyNames(order []reconcile.Strategy) []string {
	out := make([]string, len(order))
	for i, st := range order {
		out[i] = st.String()
	}
	return out
}
