// Package roster indexes roster assignments so statistics keyed by court
// position can be attributed to players.
package roster

import (
	"sort"

	"github.com/okian/netstats/internal/domain/model"
)

// quarterKey identifies one quarter of one game.
type quarterKey struct {
	gameID  string
	quarter int
}

// Slot is a (quarter, position) pair without a player.
type Slot struct {
	Quarter  int            `json:"quarter"`
	Position model.Position `json:"position"`
}

// Index maps (game, quarter, position) to the authoritative player.
// An Index is immutable once built and safe for concurrent reads.
type Index struct {
	slots   map[model.SlotKey]string
	onCourt map[quarterKey]map[string]struct{}
	games   map[string]struct{}
}

// Build indexes assignments. Assignments are taken to be ordered oldest
// first: when several share a slot, the last one wins, including one that
// leaves the slot empty. Rows for the off marker or for unknown positions
// are not indexed.
func Build(assignments []model.RosterAssignment) *Index {
	idx := &Index{
		slots:   make(map[model.SlotKey]string, len(assignments)),
		onCourt: make(map[quarterKey]map[string]struct{}),
		games:   make(map[string]struct{}),
	}

	for _, a := range assignments {
		if a.GameID == "" || !model.ValidQuarter(a.Quarter) {
			continue
		}
		idx.games[a.GameID] = struct{}{}
		if !a.Position.Valid() {
			continue
		}
		idx.slots[model.SlotKey{GameID: a.GameID, Quarter: a.Quarter, Position: a.Position}] = a.PlayerID
	}

	// The on-court sets are derived after last-wins resolution so a player
	// moved out of a slot does not linger.
	for key, playerID := range idx.slots {
		if playerID == "" {
			continue
		}
		qk := quarterKey{gameID: key.GameID, quarter: key.Quarter}
		set, ok := idx.onCourt[qk]
		if !ok {
			set = make(map[string]struct{})
			idx.onCourt[qk] = set
		}
		set[playerID] = struct{}{}
	}

	return idx
}

// PositionPlayer returns the player at a position, if any.
func (x *Index) PositionPlayer(gameID string, quarter int, pos model.Position) (string, bool) {
	playerID, ok := x.slots[model.SlotKey{GameID: gameID, Quarter: quarter, Position: pos}]
	if !ok || playerID == "" {
		return "", false
	}
	return playerID, true
}

// OnCourt returns the players holding a recognized position in a quarter,
// sorted by id.
func (x *Index) OnCourt(gameID string, quarter int) []string {
	set := x.onCourt[quarterKey{gameID: gameID, quarter: quarter}]
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// IsOnCourt reports whether a player held a position in a quarter.
func (x *Index) IsOnCourt(gameID string, quarter int, playerID string) bool {
	_, ok := x.onCourt[quarterKey{gameID: gameID, quarter: quarter}][playerID]
	return ok
}

// PlayedIn reports whether a player was on court for at least one quarter.
func (x *Index) PlayedIn(gameID, playerID string) bool {
	for q := model.FirstQuarter; q <= model.LastQuarter; q++ {
		if x.IsOnCourt(gameID, q, playerID) {
			return true
		}
	}
	return false
}

// IsRosterComplete reports whether every position of every quarter has a
// player.
func (x *Index) IsRosterComplete(gameID string) bool {
	return len(x.MissingSlots(gameID)) == 0
}

// MissingSlots lists the slots without a player, in quarter then court order.
func (x *Index) MissingSlots(gameID string) []Slot {
	var missing []Slot
	for q := model.FirstQuarter; q <= model.LastQuarter; q++ {
		for _, pos := range model.Positions {
			if _, ok := x.PositionPlayer(gameID, q, pos); !ok {
				missing = append(missing, Slot{Quarter: q, Position: pos})
			}
		}
	}
	return missing
}

// Players returns every player holding a slot in the given game, sorted.
func (x *Index) Players(gameID string) []string {
	seen := make(map[string]struct{})
	for q := model.FirstQuarter; q <= model.LastQuarter; q++ {
		for id := range x.onCourt[quarterKey{gameID: gameID, quarter: q}] {
			seen[id] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// HasGame reports whether any roster row was seen for the game.
func (x *Index) HasGame(gameID string) bool {
	_, ok := x.games[gameID]
	return ok
}
