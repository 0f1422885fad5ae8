// Package repository is the engine's data-access layer: fixtures, rosters,
// stat records and official scores, read in batches by game id.
package repository

import (
	"context"
	"time"

	"github.com/okian/netstats/internal/domain/model"
	"github.com/okian/netstats/pkg/metrics"
)

// Store reads game data. Every method takes a batch of game ids; ids with no
// data are simply absent from the result.
type Store interface {
	// Games returns fixture metadata for the given ids. An empty id list
	// returns every game.
	Games(ctx context.Context, gameIDs []string) ([]model.Game, error)

	// RosterAssignments returns assignments in the order they were written.
	RosterAssignments(ctx context.Context, gameIDs []string) ([]model.RosterAssignment, error)

	// StatRecords returns raw, possibly duplicated, stat records.
	StatRecords(ctx context.Context, gameIDs []string) ([]model.StatRecord, error)

	// OfficialScores returns authoritative per-team quarter scores.
	OfficialScores(ctx context.Context, gameIDs []string) ([]model.OfficialScore, error)
}

// Writer persists game data.
type Writer interface {
	SaveGames(ctx context.Context, games []model.Game) error
	SaveRosterAssignments(ctx context.Context, rows []model.RosterAssignment) error
	// SaveStatRecords appends records. A zero ID is replaced by the next
	// sequence value so later writes always carry higher ids.
	SaveStatRecords(ctx context.Context, records []model.StatRecord) error
	SaveOfficialScores(ctx context.Context, scores []model.OfficialScore) error
}

// ReadWriter is a Store that can also be written.
type ReadWriter interface {
	Store
	Writer
}

func observe(op string, start time.Time) {
	metrics.RecordRepositoryQueryLatency(op, float64(time.Since(start).Microseconds())/1000)
}
