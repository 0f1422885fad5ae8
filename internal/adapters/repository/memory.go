package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/okian/netstats/internal/domain/model"
)

// MemoryStore is an in-process ReadWriter guarded by a single RWMutex.
type MemoryStore struct {
	mu       sync.RWMutex
	games    map[string]model.Game
	rosters  map[string][]model.RosterAssignment
	stats    map[string][]model.StatRecord
	official map[string][]model.OfficialScore
	nextID   int64
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		games:    make(map[string]model.Game),
		rosters:  make(map[string][]model.RosterAssignment),
		stats:    make(map[string][]model.StatRecord),
		official: make(map[string][]model.OfficialScore),
	}
}

// Games implements Store. Results are ordered by id.
func (s *MemoryStore) Games(ctx context.Context, gameIDs []string) ([]model.Game, error) {
	defer observe("games", time.Now())
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Game, 0, len(gameIDs))
	if len(gameIDs) == 0 {
		for _, g := range s.games {
			out = append(out, g)
		}
	} else {
		for _, id := range uniq(gameIDs) {
			if g, ok := s.games[id]; ok {
				out = append(out, g)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// RosterAssignments implements Store.
func (s *MemoryStore) RosterAssignments(ctx context.Context, gameIDs []string) ([]model.RosterAssignment, error) {
	defer observe("roster", time.Now())
	return collect(ctx, &s.mu, s.rosters, gameIDs)
}

// StatRecords implements Store.
func (s *MemoryStore) StatRecords(ctx context.Context, gameIDs []string) ([]model.StatRecord, error) {
	defer observe("stats", time.Now())
	return collect(ctx, &s.mu, s.stats, gameIDs)
}

// OfficialScores implements Store.
func (s *MemoryStore) OfficialScores(ctx context.Context, gameIDs []string) ([]model.OfficialScore, error) {
	defer observe("official", time.Now())
	return collect(ctx, &s.mu, s.official, gameIDs)
}

// SaveGames implements Writer. A game with an existing id is replaced.
func (s *MemoryStore) SaveGames(_ context.Context, games []model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range games {
		if g.ID == "" {
			return ErrInvalidData
		}
		s.games[g.ID] = g
	}
	return nil
}

// SaveRosterAssignments implements Writer.
func (s *MemoryStore) SaveRosterAssignments(_ context.Context, rows []model.RosterAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		s.rosters[r.GameID] = append(s.rosters[r.GameID], r)
	}
	return nil
}

// SaveStatRecords implements Writer.
func (s *MemoryStore) SaveStatRecords(_ context.Context, records []model.StatRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		if r.ID == 0 {
			s.nextID++
			r.ID = s.nextID
		} else if r.ID > s.nextID {
			s.nextID = r.ID
		}
		s.stats[r.GameID] = append(s.stats[r.GameID], r)
	}
	return nil
}

// SaveOfficialScores implements Writer. A row for an existing (game, team,
// quarter) replaces it.
func (s *MemoryStore) SaveOfficialScores(_ context.Context, scores []model.OfficialScore) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range scores {
		rows := s.official[o.GameID]
		replaced := false
		for i := range rows {
			if rows[i].TeamID == o.TeamID && rows[i].Quarter == o.Quarter {
				rows[i] = o
				replaced = true
			}
		}
		if !replaced {
			rows = append(rows, o)
		}
		s.official[o.GameID] = rows
	}
	return nil
}

func collect[T any](ctx context.Context, mu *sync.RWMutex, byGame map[string][]T, gameIDs []string) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	mu.RLock()
	defer mu.RUnlock()
	var out []T
	for _, id := range uniq(gameIDs) {
		out = append(out, byGame[id]...)
	}
	return out, nil
}

func uniq(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
