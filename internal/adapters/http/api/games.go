package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/okian/netstats/internal/domain/model"
	"github.com/okian/netstats/internal/domain/types"
)

// GameDependencies defines the per-game read operations.
type GameDependencies interface {
	ComputeGameScore(ctx context.Context, gameID string, forceFresh bool) (model.GameScore, error)
	ComputeGameScores(ctx context.Context, gameIDs []string, forceFresh bool) ([]model.GameScore, error)
	ResolvePerspective(ctx context.Context, gameID, viewingTeamID string) (model.PerspectiveScore, error)
	RosterStatus(ctx context.Context, gameID string) (types.RosterStatus, error)
}

// GamesHandler serves game scores, perspectives and roster status.
type GamesHandler struct {
	deps GameDependencies
}

// NewGamesHandler creates a new games handler.
func NewGamesHandler(deps GameDependencies) *GamesHandler {
	return &GamesHandler{deps: deps}
}

// HandleGetScore handles GET /games/{gameID}/score?fresh=.
func (h *GamesHandler) HandleGetScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_score"
	fresh, err := parseBool(r.URL.Query().Get("fresh"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	score, err := h.deps.ComputeGameScore(r.Context(), chi.URLParam(r, "gameID"), fresh)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, score)
}

// HandleGetPerspective handles GET /games/{gameID}/perspective?team=.
func (h *GamesHandler) HandleGetPerspective(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_perspective"
	team := strings.TrimSpace(r.URL.Query().Get("team"))
	p, err := h.deps.ResolvePerspective(r.Context(), chi.URLParam(r, "gameID"), team)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleGetRoster handles GET /games/{gameID}/roster.
func (h *GamesHandler) HandleGetRoster(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_roster"
	st, err := h.deps.RosterStatus(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// HandleGetScores handles GET /scores?games=a,b&fresh=.
func (h *GamesHandler) HandleGetScores(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_scores"
	ids := splitList(r.URL.Query().Get("games"))
	if len(ids) == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errMissingGames))
		return
	}
	fresh, err := parseBool(r.URL.Query().Get("fresh"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	scores, err := h.deps.ComputeGameScores(r.Context(), ids, fresh)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, types.ScoreBatch{Scores: scores})
}

func parseBool(v string) (bool, error) {
	if v == "" {
		return false, nil
	}
	return strconv.ParseBool(v)
}

// splitList reads a comma-separated query value, ignoring blanks.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
