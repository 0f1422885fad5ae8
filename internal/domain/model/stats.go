package model

// StatRecord holds the events recorded for one court position in one
// quarter. It carries no player id: attribution goes through the roster.
type StatRecord struct {
	// ID increases with every write; a higher ID is the more recent record.
	ID       int64    `json:"id"`
	GameID   string   `json:"game_id"`
	Quarter  int      `json:"quarter"`
	Position Position `json:"position"`
	// TeamID is the team that entered the record. Empty means the home team.
	TeamID string `json:"team_id,omitempty"`

	GoalsFor      int `json:"goals_for"`
	GoalsAgainst  int `json:"goals_against"`
	MissedGoals   int `json:"missed_goals"`
	Rebounds      int `json:"rebounds"`
	Intercepts    int `json:"intercepts"`
	BadPass       int `json:"bad_pass"`
	HandlingError int `json:"handling_error"`
	PickUp        int `json:"pick_up"`
	Infringement  int `json:"infringement"`

	// Rating is a coach-entered player rating, usually only on quarter 1.
	Rating *float64 `json:"rating,omitempty"`
}

// Keyable reports whether the record can be placed in a (game, quarter,
// position) slot.
func (r StatRecord) Keyable() bool {
	return r.GameID != "" && ValidQuarter(r.Quarter) && r.Position.Valid()
}

// SlotKey identifies one position in one quarter of one game.
type SlotKey struct {
	GameID   string
	Quarter  int
	Position Position
}

// Key returns the slot the record belongs to.
func (r StatRecord) Key() SlotKey {
	return SlotKey{GameID: r.GameID, Quarter: r.Quarter, Position: r.Position}
}

// PlayerStatTotals is a player's rollup over a set of games.
type PlayerStatTotals struct {
	PlayerID      string  `json:"player_id"`
	GamesPlayed   int     `json:"games_played"`
	Goals         int     `json:"goals"`
	GoalsAgainst  int     `json:"goals_against"`
	MissedGoals   int     `json:"missed_goals"`
	Rebounds      int     `json:"rebounds"`
	Intercepts    int     `json:"intercepts"`
	BadPass       int     `json:"bad_pass"`
	HandlingError int     `json:"handling_error"`
	PickUp        int     `json:"pick_up"`
	Infringement  int     `json:"infringement"`
	Rating        float64 `json:"rating"`
}

// Add accumulates the counting fields of a stat record.
func (t *PlayerStatTotals) Add(r StatRecord) {
	t.Goals += r.GoalsFor
	t.GoalsAgainst += r.GoalsAgainst
	t.MissedGoals += r.MissedGoals
	t.Rebounds += r.Rebounds
	t.Intercepts += r.Intercepts
	t.BadPass += r.BadPass
	t.HandlingError += r.HandlingError
	t.PickUp += r.PickUp
	t.Infringement += r.Infringement
}

// Merge adds the counting fields and games played of o into t.
func (t *PlayerStatTotals) Merge(o PlayerStatTotals) {
	t.GamesPlayed += o.GamesPlayed
	t.Goals += o.Goals
	t.GoalsAgainst += o.GoalsAgainst
	t.MissedGoals += o.MissedGoals
	t.Rebounds += o.Rebounds
	t.Intercepts += o.Intercepts
	t.BadPass += o.BadPass
	t.HandlingError += o.HandlingError
	t.PickUp += o.PickUp
	t.Infringement += o.Infringement
}
