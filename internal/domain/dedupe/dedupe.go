// Package dedupe collapses duplicate stat records so that each court
// position in each quarter has exactly one authoritative record.
package dedupe

import (
	"context"
	"sort"

	"github.com/okian/netstats/internal/domain/model"
	"github.com/okian/netstats/pkg/logger"
)

// Report counts what deduplication threw away.
type Report struct {
	// Dropped records were missing a game, quarter or position.
	Dropped int
	// Superseded records lost to a more recent record for the same slot.
	Superseded int
}

// Result is the deduplicated view of a record set.
type Result struct {
	// Records holds one record per slot ordered by game, quarter and court
	// position.
	Records []model.StatRecord
	Report  Report

	bySlot map[model.SlotKey]model.StatRecord
}

// Slot returns the authoritative record for a slot.
func (r Result) Slot(gameID string, quarter int, pos model.Position) (model.StatRecord, bool) {
	rec, ok := r.bySlot[model.SlotKey{GameID: gameID, Quarter: quarter, Position: pos}]
	return rec, ok
}

// Quarter returns the records of one quarter of a game in court order.
func (r Result) Quarter(gameID string, quarter int) []model.StatRecord {
	out := make([]model.StatRecord, 0, len(model.Positions))
	for _, pos := range model.Positions {
		if rec, ok := r.Slot(gameID, quarter, pos); ok {
			out = append(out, rec)
		}
	}
	return out
}

// Len returns the number of authoritative records.
func (r Result) Len() int {
	return len(r.Records)
}

// Deduplicator keeps the most recently written record per slot.
type Deduplicator struct {
	logger logger.Logger
}

// New creates a Deduplicator.
func New(opts ...Option) *Deduplicator {
	d := &Deduplicator{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Deduplicate keeps, for every (game, quarter, position), the record with the
// highest ID. When IDs tie the later record in input order wins. Records that
// cannot be keyed are dropped and counted, never fatal. Running it on its own
// output returns the same records.
func (d *Deduplicator) Deduplicate(ctx context.Context, records []model.StatRecord) Result {
	res := Result{bySlot: make(map[model.SlotKey]model.StatRecord, len(records))}

	for _, rec := range records {
		if !rec.Keyable() {
			res.Report.Dropped++
			if d.logger != nil {
				d.logger.Debug(ctx, "dropping unkeyable stat record",
					logger.Int64("id", rec.ID),
					logger.String("gameID", rec.GameID),
					logger.Int("quarter", rec.Quarter),
					logger.String("position", string(rec.Position)),
				)
			}
			continue
		}
		key := rec.Key()
		if prev, ok := res.bySlot[key]; ok {
			res.Report.Superseded++
			if prev.ID > rec.ID {
				continue
			}
		}
		res.bySlot[key] = rec
	}

	res.Records = make([]model.StatRecord, 0, len(res.bySlot))
	for _, rec := range res.bySlot {
		res.Records = append(res.Records, rec)
	}
	sort.Slice(res.Records, func(i, j int) bool {
		a, b := res.Records[i], res.Records[j]
		if a.GameID != b.GameID {
			return a.GameID < b.GameID
		}
		if a.Quarter != b.Quarter {
			return a.Quarter < b.Quarter
		}
		return a.Position.Index() < b.Position.Index()
	})

	if d.logger != nil && (res.Report.Dropped > 0 || res.Report.Superseded > 0) {
		d.logger.Warn(ctx, "stat records needed cleanup",
			logger.Int("dropped", res.Report.Dropped),
			logger.Int("superseded", res.Report.Superseded),
			logger.Int("kept", len(res.Records)),
		)
	}

	return res
}

// Deduplicate runs a Deduplicator without logging.
func Deduplicate(records []model.StatRecord) Result {
	return New().Deduplicate(context.Background(), records)
}
