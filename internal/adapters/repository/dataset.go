package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/okian/netstats/internal/domain/model"
)

// Dataset is a bulk fixture file: everything needed to score and aggregate a
// set of games.
type Dataset struct {
	Games    []model.Game             `json:"games"`
	Roster   []model.RosterAssignment `json:"roster"`
	Stats    []model.StatRecord       `json:"stats"`
	Official []model.OfficialScore    `json:"official,omitempty"`
}

// DecodeDataset reads a JSON dataset.
func DecodeDataset(r io.Reader) (Dataset, error) {
	var ds Dataset
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&ds); err != nil {
		return Dataset{}, fmt.Errorf("%w: %w", ErrInvalidData, err)
	}
	return ds, nil
}

// Import writes a dataset in dependency order: games, roster, stats and
// official scores.
func Import(ctx context.Context, w Writer, ds Dataset) error {
	if err := w.SaveGames(ctx, ds.Games); err != nil {
		return fmt.Errorf("save games: %w", err)
	}
	if err := w.SaveRosterAssignments(ctx, ds.Roster); err != nil {
		return fmt.Errorf("save roster: %w", err)
	}
	if err := w.SaveStatRecords(ctx, ds.Stats); err != nil {
		return fmt.Errorf("save stats: %w", err)
	}
	if err := w.SaveOfficialScores(ctx, ds.Official); err != nil {
		return fmt.Errorf("save official scores: %w", err)
	}
	return nil
}

// GameIDs lists every game the dataset touches, in first-seen order.
func (ds Dataset) GameIDs() []string {
	seen := make(map[string]struct{})
	var ids []string
	add := func(id string) {
		if _, ok := seen[id]; ok || id == "" {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	for _, g := range ds.Games {
		add(g.ID)
	}
	for _, r := range ds.Roster {
		add(r.GameID)
	}
	for _, r := range ds.Stats {
		add(r.GameID)
	}
	for _, o := range ds.Official {
		add(o.GameID)
	}
	return ids
}
