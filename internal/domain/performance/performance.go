// Package performance rolls per-position statistics up into per-player
// totals across many games.
package performance

import (
	"context"
	"sort"
	"time"

	"github.com/okian/netstats/internal/domain/dedupe"
	"github.com/okian/netstats/internal/domain/model"
	"github.com/okian/netstats/internal/domain/roster"
)

// Contribution is what a single game adds to player totals. Contributions
// are independent, so they can be computed in parallel and reduced in any
// order.
type Contribution struct {
	GameID string
	Date   time.Time
	// Totals holds counting stats per player; GamesPlayed is 1 for every
	// player that was on court for at least one quarter.
	Totals map[string]model.PlayerStatTotals
	// Ratings holds the quarter-1 rating recorded for each player.
	Ratings        map[string]float64
	RosterComplete bool
}

// Contribute attributes a game's deduplicated records to players through the
// roster. Slots without a player, and records without a slot holder, add
// nothing. Players on court with no records still get the game counted.
func Contribute(game model.Game, idx *roster.Index, records dedupe.Result) Contribution {
	c := Contribution{
		GameID:         game.ID,
		Date:           game.Date,
		Totals:         make(map[string]model.PlayerStatTotals),
		Ratings:        make(map[string]float64),
		RosterComplete: idx.IsRosterComplete(game.ID),
	}

	for _, playerID := range idx.Players(game.ID) {
		c.Totals[playerID] = model.PlayerStatTotals{PlayerID: playerID, GamesPlayed: 1}
	}

	for q := model.FirstQuarter; q <= model.LastQuarter; q++ {
		for _, pos := range model.Positions {
			playerID, ok := idx.PositionPlayer(game.ID, q, pos)
			if !ok {
				continue
			}
			rec, ok := records.Slot(game.ID, q, pos)
			if !ok {
				continue
			}
			t := c.Totals[playerID]
			t.Add(rec)
			c.Totals[playerID] = t
			if q == model.FirstQuarter && rec.Rating != nil {
				c.Ratings[playerID] = *rec.Rating
			}
		}
	}
	return c
}

// Report is the result of a rollup.
type Report struct {
	Totals map[string]model.PlayerStatTotals `json:"totals"`
	// Games lists the game ids that contributed, most recent first.
	Games []string `json:"games"`
	// IncompleteRosters lists contributing games with unfilled slots. It is
	// advisory: attribution proceeds with what the roster holds.
	IncompleteRosters []string `json:"incomplete_rosters,omitempty"`
}

// Aggregator reduces contributions into per-player totals.
type Aggregator struct {
	rater Rater
}

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithRater overrides the fallback rating formula.
func WithRater(r Rater) Option {
	return func(a *Aggregator) {
		a.rater = r
	}
}

// NewAggregator creates an Aggregator with configuration options.
func NewAggregator(opts ...Option) *Aggregator {
	a := &Aggregator{rater: DefaultRater()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate runs the whole rollup sequentially: filter games, contribute
// each one and reduce. records maps game id to its deduplicated records.
func (a *Aggregator) Aggregate(_ context.Context, players []string, games []model.Game, idx *roster.Index, records map[string]dedupe.Result, tr TimeRange) Report {
	selected := FilterGames(games, tr)
	contributions := make([]Contribution, 0, len(selected))
	for _, g := range selected {
		contributions = append(contributions, Contribute(g, idx, records[g.ID]))
	}
	return a.Reduce(players, contributions)
}

// Reduce sums contributions. The sum does not depend on the order of
// contributions; ratings come from the most recently dated game that has
// one, game id breaking ties. When players is empty every player seen is
// reported; otherwise exactly the listed players are, with all-zero totals
// for those who did not play.
func (a *Aggregator) Reduce(players []string, contributions []Contribution) Report {
	ordered := append([]Contribution(nil), contributions...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].Date.Equal(ordered[j].Date) {
			return ordered[i].Date.Before(ordered[j].Date)
		}
		return ordered[i].GameID < ordered[j].GameID
	})

	sums := make(map[string]*model.PlayerStatTotals)
	ratings := make(map[string]float64)
	report := Report{
		Totals: make(map[string]model.PlayerStatTotals),
		Games:  make([]string, 0, len(ordered)),
	}

	for _, c := range ordered {
		for playerID, t := range c.Totals {
			acc, ok := sums[playerID]
			if !ok {
				acc = &model.PlayerStatTotals{PlayerID: playerID}
				sums[playerID] = acc
			}
			acc.Merge(t)
		}
		for playerID, r := range c.Ratings {
			ratings[playerID] = r
		}
	}
	for i := len(ordered) - 1; i >= 0; i-- {
		report.Games = append(report.Games, ordered[i].GameID)
		if !ordered[i].RosterComplete {
			report.IncompleteRosters = append(report.IncompleteRosters, ordered[i].GameID)
		}
	}

	wanted := players
	if len(wanted) == 0 {
		for playerID := range sums {
			wanted = append(wanted, playerID)
		}
	}
	for _, playerID := range wanted {
		t := model.PlayerStatTotals{PlayerID: playerID}
		if acc, ok := sums[playerID]; ok {
			t = *acc
		}
		if r, ok := ratings[playerID]; ok {
			t.Rating = r
		} else {
			t.Rating = a.rater.Rate(t)
		}
		report.Totals[playerID] = t
	}
	return report
}
