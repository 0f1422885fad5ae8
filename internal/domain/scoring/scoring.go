// Package scoring turns authoritative stat records into a perspective-free
// game score.
package scoring

import (
	"context"

	"github.com/okian/netstats/internal/domain/dedupe"
	"github.com/okian/netstats/internal/domain/model"
	"github.com/okian/netstats/pkg/logger"
)

// Default scoring configuration constants.
const (
	defaultForfeitGoals = 10
)

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithForfeitGoals sets the canonical winning margin of a forfeit.
func WithForfeitGoals(goals int) Option {
	return func(a *Aggregator) {
		if goals > 0 {
			a.forfeitGoals = goals
		}
	}
}

// WithLogger sets a logger for data-quality warnings.
func WithLogger(l logger.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}

// Aggregator sums goals across quarters and positions.
type Aggregator struct {
	forfeitGoals int
	deduper      *dedupe.Deduplicator
	logger       logger.Logger
}

// NewAggregator creates an Aggregator with configuration options.
func NewAggregator(opts ...Option) *Aggregator {
	a := &Aggregator{
		forfeitGoals: defaultForfeitGoals,
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.logger != nil {
		a.deduper = dedupe.New(dedupe.WithLogger(a.logger))
	} else {
		a.deduper = dedupe.New()
	}
	return a
}

// Forfeit synthesizes the canonical score of a forfeited game. The second
// return value is false for games that were played.
func (a *Aggregator) Forfeit(game model.Game) (model.GameScore, bool) {
	score := model.GameScore{GameID: game.ID}
	switch game.Status {
	case model.StatusForfeitWin:
		score.Final = model.Tally{For: a.forfeitGoals}
	case model.StatusForfeitLoss:
		score.Final = model.Tally{Against: a.forfeitGoals}
	default:
		return model.GameScore{}, false
	}
	return score, true
}

// Score deduplicates raw records for a game, joins them to home/away and
// sums them. Forfeits bypass the records entirely.
func (a *Aggregator) Score(ctx context.Context, game model.Game, raw []model.StatRecord) model.GameScore {
	if score, ok := a.Forfeit(game); ok {
		return score
	}

	res := a.deduper.Deduplicate(ctx, forGame(game.ID, raw))
	joined, unjoined := ToHomePerspective(game, res.Records)
	if unjoined > 0 && a.logger != nil {
		a.logger.Warn(ctx, "stat records entered by a team not in the game",
			logger.String("gameID", game.ID),
			logger.Int("count", unjoined),
		)
	}

	score := Sum(game.ID, joined)
	score.Dropped = res.Report.Dropped + unjoined
	score.NoData = len(joined) == 0
	return score
}

// Sum adds up goals per quarter. Records for other games or without a valid
// quarter are ignored. The final tally is always the sum of the quarters.
func Sum(gameID string, records []model.StatRecord) model.GameScore {
	score := model.GameScore{GameID: gameID}
	for _, r := range records {
		if r.GameID != gameID || !model.ValidQuarter(r.Quarter) {
			continue
		}
		q := &score.Quarters[r.Quarter-1]
		q.For += r.GoalsFor
		q.Against += r.GoalsAgainst
	}
	score.Final = score.SumQuarters()
	return score
}

// ToHomePerspective rewrites records so GoalsFor is always the home team's
// goals. Records entered by the away team are swapped; records naming a
// team outside the game are dropped and counted. An empty TeamID means the
// home team entered the record.
func ToHomePerspective(game model.Game, records []model.StatRecord) ([]model.StatRecord, int) {
	out := make([]model.StatRecord, 0, len(records))
	dropped := 0
	for _, r := range records {
		switch r.TeamID {
		case "", game.HomeTeamID:
		case game.AwayTeamID:
			r.GoalsFor, r.GoalsAgainst = r.GoalsAgainst, r.GoalsFor
		default:
			dropped++
			continue
		}
		out = append(out, r)
	}
	return out, dropped
}

// forGame counts records with no game id as malformed by keeping them, and
// filters out records that belong to a different game.
func forGame(gameID string, records []model.StatRecord) []model.StatRecord {
	out := make([]model.StatRecord, 0, len(records))
	for _, r := range records {
		if r.GameID == "" || r.GameID == gameID {
			out = append(out, r)
		}
	}
	return out
}
