package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/okian/netstats/internal/domain/model"
	"github.com/okian/netstats/pkg/logger"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteStore is a ReadWriter backed by a SQLite database.
type SQLiteStore struct {
	conn   *sql.DB
	logger logger.Logger
}

// OpenSQLite opens (or creates) the database at path and applies the schema.
// ":memory:" gives a private in-memory database.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", path)
	if path == ":memory:" {
		dsn = "file::memory:"
	}
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// one connection keeps an in-memory database shared and serializes writes
	conn.SetMaxOpenConns(1)
	if _, err := conn.ExecContext(ctx, schemaSQL); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	s := &SQLiteStore{conn: conn}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the underlying connection.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

// Games implements Store.
func (s *SQLiteStore) Games(ctx context.Context, gameIDs []string) ([]model.Game, error) {
	defer observe("games", time.Now())
	query := `SELECT id, home_team_id, away_team_id, status, played_at FROM games`
	var args []any
	if len(gameIDs) > 0 {
		var in string
		in, args = inClause(gameIDs)
		query += ` WHERE id IN (` + in + `)`
	}
	rows, err := s.conn.QueryContext(ctx, query+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	defer rows.Close()

	var out []model.Game
	for rows.Next() {
		var g model.Game
		var status, playedAt string
		if err := rows.Scan(&g.ID, &g.HomeTeamID, &g.AwayTeamID, &status, &playedAt); err != nil {
			return nil, err
		}
		g.Status = model.GameStatus(status)
		if playedAt != "" {
			if g.Date, err = time.Parse(time.RFC3339, playedAt); err != nil {
				s.warn(ctx, "unparseable game date", logger.String("game_id", g.ID), logger.Error(err))
			}
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// RosterAssignments implements Store.
func (s *SQLiteStore) RosterAssignments(ctx context.Context, gameIDs []string) ([]model.RosterAssignment, error) {
	defer observe("roster", time.Now())
	if len(gameIDs) == 0 {
		return nil, nil
	}
	in, args := inClause(gameIDs)
	rows, err := s.conn.QueryContext(ctx, `
		SELECT game_id, quarter, position, player_id
		FROM roster_assignments WHERE game_id IN (`+in+`)
		ORDER BY seq`, args...)
	if err != nil {
		return nil, fmt.Errorf("query roster: %w", err)
	}
	defer rows.Close()

	var out []model.RosterAssignment
	for rows.Next() {
		var r model.RosterAssignment
		var pos string
		if err := rows.Scan(&r.GameID, &r.Quarter, &pos, &r.PlayerID); err != nil {
			return nil, err
		}
		r.Position = model.Position(pos)
		out = append(out, r)
	}
	return out, rows.Err()
}

// StatRecords implements Store.
func (s *SQLiteStore) StatRecords(ctx context.Context, gameIDs []string) ([]model.StatRecord, error) {
	defer observe("stats", time.Now())
	if len(gameIDs) == 0 {
		return nil, nil
	}
	in, args := inClause(gameIDs)
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, game_id, quarter, position, team_id,
		       goals_for, goals_against, missed_goals, rebounds, intercepts,
		       bad_pass, handling_error, pick_up, infringement, rating
		FROM stat_records WHERE game_id IN (`+in+`)
		ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	var out []model.StatRecord
	for rows.Next() {
		var r model.StatRecord
		var pos string
		var rating sql.NullFloat64
		if err := rows.Scan(
			&r.ID, &r.GameID, &r.Quarter, &pos, &r.TeamID,
			&r.GoalsFor, &r.GoalsAgainst, &r.MissedGoals, &r.Rebounds, &r.Intercepts,
			&r.BadPass, &r.HandlingError, &r.PickUp, &r.Infringement, &rating,
		); err != nil {
			return nil, err
		}
		r.Position = model.Position(pos)
		if rating.Valid {
			v := rating.Float64
			r.Rating = &v
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// OfficialScores implements Store.
func (s *SQLiteStore) OfficialScores(ctx context.Context, gameIDs []string) ([]model.OfficialScore, error) {
	defer observe("official", time.Now())
	if len(gameIDs) == 0 {
		return nil, nil
	}
	in, args := inClause(gameIDs)
	rows, err := s.conn.QueryContext(ctx, `
		SELECT game_id, team_id, quarter, score
		FROM official_scores WHERE game_id IN (`+in+`)
		ORDER BY game_id, team_id, quarter`, args...)
	if err != nil {
		return nil, fmt.Errorf("query official scores: %w", err)
	}
	defer rows.Close()

	var out []model.OfficialScore
	for rows.Next() {
		var o model.OfficialScore
		if err := rows.Scan(&o.GameID, &o.TeamID, &o.Quarter, &o.Score); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// SaveGames implements Writer.
func (s *SQLiteStore) SaveGames(ctx context.Context, games []model.Game) error {
	return s.inTx(ctx, `
		INSERT OR REPLACE INTO games(id, home_team_id, away_team_id, status, played_at)
		VALUES (?,?,?,?,?)`, len(games), func(i int) ([]any, error) {
		g := games[i]
		if g.ID == "" {
			return nil, ErrInvalidData
		}
		var playedAt string
		if !g.Date.IsZero() {
			playedAt = g.Date.UTC().Format(time.RFC3339)
		}
		return []any{g.ID, g.HomeTeamID, g.AwayTeamID, string(g.Status), playedAt}, nil
	})
}

// SaveRosterAssignments implements Writer.
func (s *SQLiteStore) SaveRosterAssignments(ctx context.Context, rows []model.RosterAssignment) error {
	return s.inTx(ctx, `
		INSERT INTO roster_assignments(game_id, quarter, position, player_id)
		VALUES (?,?,?,?)`, len(rows), func(i int) ([]any, error) {
		r := rows[i]
		return []any{r.GameID, r.Quarter, string(r.Position), r.PlayerID}, nil
	})
}

// SaveStatRecords implements Writer.
func (s *SQLiteStore) SaveStatRecords(ctx context.Context, records []model.StatRecord) error {
	return s.inTx(ctx, `
		INSERT INTO stat_records(
			id, game_id, quarter, position, team_id,
			goals_for, goals_against, missed_goals, rebounds, intercepts,
			bad_pass, handling_error, pick_up, infringement, rating
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`, len(records), func(i int) ([]any, error) {
		r := records[i]
		var id any
		if r.ID != 0 {
			id = r.ID
		}
		var rating any
		if r.Rating != nil {
			rating = *r.Rating
		}
		return []any{
			id, r.GameID, r.Quarter, string(r.Position), r.TeamID,
			r.GoalsFor, r.GoalsAgainst, r.MissedGoals, r.Rebounds, r.Intercepts,
			r.BadPass, r.HandlingError, r.PickUp, r.Infringement, rating,
		}, nil
	})
}

// SaveOfficialScores implements Writer.
func (s *SQLiteStore) SaveOfficialScores(ctx context.Context, scores []model.OfficialScore) error {
	return s.inTx(ctx, `
		INSERT OR REPLACE INTO official_scores(game_id, team_id, quarter, score)
		VALUES (?,?,?,?)`, len(scores), func(i int) ([]any, error) {
		o := scores[i]
		return []any{o.GameID, o.TeamID, o.Quarter, o.Score}, nil
	})
}

// inTx runs one prepared statement n times inside a transaction.
func (s *SQLiteStore) inTx(ctx context.Context, query string, n int, args func(i int) ([]any, error)) error {
	defer observe("write", time.Now())
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		a, err := args(i)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, a...); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) warn(ctx context.Context, msg string, fields ...logger.Field) {
	if s.logger != nil {
		s.logger.Warn(ctx, msg, fields...)
	}
}

func inClause(ids []string) (string, []any) {
	ids = uniq(ids)
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return strings.TrimSuffix(strings.Repeat("?,", len(ids)), ","), args
}
