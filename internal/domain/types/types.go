// Package types contains the read shapes returned to API and CLI callers.
package types

import (
	"github.com/okian/netstats/internal/domain/model"
	"github.com/okian/netstats/internal/domain/performance"
	"github.com/okian/netstats/internal/domain/roster"
)

// RosterStatus is the advisory completeness view of one game's roster.
type RosterStatus struct {
	GameID   string           `json:"game_id"`
	Complete bool             `json:"is_roster_complete"`
	Missing  []roster.Slot    `json:"missing_slots"`
	OnCourt  map[int][]string `json:"on_court"`
}

// NewRosterStatus reads the status of gameID out of idx.
func NewRosterStatus(idx *roster.Index, gameID string) RosterStatus {
	st := RosterStatus{
		GameID:   gameID,
		Complete: idx.IsRosterComplete(gameID),
		Missing:  idx.MissingSlots(gameID),
		OnCourt:  make(map[int][]string, model.QuarterCount),
	}
	if st.Missing == nil {
		st.Missing = []roster.Slot{}
	}
	for q := model.FirstQuarter; q <= model.LastQuarter; q++ {
		st.OnCourt[q] = idx.OnCourt(gameID, q)
	}
	return st
}

// LeaderboardRow is a ranked player.
type LeaderboardRow struct {
	Rank int `json:"rank"`
	model.PlayerStatTotals
}

// Leaderboard is a ranked performance report.
type Leaderboard struct {
	Range             string           `json:"range"`
	Sort              string           `json:"sort"`
	Rows              []LeaderboardRow `json:"players"`
	Games             []string         `json:"games"`
	IncompleteRosters []string         `json:"incomplete_rosters"`
}

// NewLeaderboard ranks a report by metric. Rank is the 1-based position in
// the ordering; ties keep the player-id order.
func NewLeaderboard(report performance.Report, m performance.Metric, tr performance.TimeRange) Leaderboard {
	ranked := performance.Rank(report.Totals, m)
	lb := Leaderboard{
		Range:             tr.String(),
		Sort:              string(m),
		Rows:              make([]LeaderboardRow, len(ranked)),
		Games:             report.Games,
		IncompleteRosters: report.IncompleteRosters,
	}
	for i, t := range ranked {
		lb.Rows[i] = LeaderboardRow{Rank: i + 1, PlayerStatTotals: t}
	}
	if lb.Games == nil {
		lb.Games = []string{}
	}
	if lb.IncompleteRosters == nil {
		lb.IncompleteRosters = []string{}
	}
	return lb
}

// ScoreBatch is the response to a multi-game score request.
type ScoreBatch struct {
	Scores []model.GameScore `json:"scores"`
}
