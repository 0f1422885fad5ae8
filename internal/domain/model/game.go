// Package model contains domain models passed between layers.
package model

import "time"

// Quarter numbers. A game has exactly four scoring periods.
const (
	FirstQuarter = 1
	LastQuarter  = 4
	QuarterCount = 4
)

// ValidQuarter reports whether q names one of the four quarters.
func ValidQuarter(q int) bool {
	return q >= FirstQuarter && q <= LastQuarter
}

// Position is an on-court role a player holds for a quarter.
type Position string

// The seven recognized court positions, in court order.
const (
	GS Position = "GS"
	GA Position = "GA"
	WA Position = "WA"
	C  Position = "C"
	WD Position = "WD"
	GD Position = "GD"
	GK Position = "GK"
)

// Off marks a roster row for a player who sat the quarter out.
const Off Position = "OFF"

// Positions lists the recognized court positions in court order.
var Positions = [...]Position{GS, GA, WA, C, WD, GD, GK}

// Valid reports whether p is one of the seven on-court positions.
func (p Position) Valid() bool {
	return p.Index() >= 0
}

// Index returns the court-order index of p, or -1 for anything that is not
// an on-court position.
func (p Position) Index() int {
	for i, pos := range Positions {
		if pos == p {
			return i
		}
	}
	return -1
}

// GameStatus is the lifecycle state of a fixture.
type GameStatus string

// Game statuses. Forfeit results are recorded from the home team's side.
const (
	StatusUpcoming    GameStatus = "upcoming"
	StatusInProgress  GameStatus = "in-progress"
	StatusCompleted   GameStatus = "completed"
	StatusForfeitWin  GameStatus = "forfeit-win"
	StatusForfeitLoss GameStatus = "forfeit-loss"
	StatusBye         GameStatus = "bye"
	StatusAbandoned   GameStatus = "abandoned"
)

// IsForfeit reports whether the game was decided without play.
func (s GameStatus) IsForfeit() bool {
	return s == StatusForfeitWin || s == StatusForfeitLoss
}

// CountsForPlayers reports whether individual statistics may be drawn from a
// game with this status. Only completed games count; a lineup entered for an
// upcoming or unfinished game is not a game played.
func (s GameStatus) CountsForPlayers() bool {
	return s == StatusCompleted
}

// Game is the fixture metadata the engine needs for aggregation and
// perspective mapping.
type Game struct {
	ID         string     `json:"id"`
	HomeTeamID string     `json:"home_team_id"`
	AwayTeamID string     `json:"away_team_id"`
	Status     GameStatus `json:"status"`
	Date       time.Time  `json:"date"`
}

// HasTeam reports whether teamID is one of the two participants.
func (g Game) HasTeam(teamID string) bool {
	return teamID != "" && (teamID == g.HomeTeamID || teamID == g.AwayTeamID)
}

// RosterAssignment places a player (or nobody) at a position for a quarter.
// An empty PlayerID means the slot was explicitly left open.
type RosterAssignment struct {
	GameID   string   `json:"game_id"`
	Quarter  int      `json:"quarter"`
	Position Position `json:"position"`
	PlayerID string   `json:"player_id,omitempty"`
}

// OfficialScore is an authoritative per-team, per-quarter goal count.
type OfficialScore struct {
	GameID  string `json:"game_id"`
	TeamID  string `json:"team_id"`
	Quarter int    `json:"quarter"`
	Score   int    `json:"score"`
}
