package api

import (
	"context"
	"net/http"

	"github.com/okian/netstats/internal/domain/performance"
	"github.com/okian/netstats/internal/domain/types"
)

// PlayerDependencies defines the player rollup operations.
type PlayerDependencies interface {
	AggregatePlayerPerformance(ctx context.Context, players, gameIDs []string, tr performance.TimeRange) (performance.Report, error)
	ParseTimeRange(v string) (performance.TimeRange, error)
}

// PlayersHandler serves player performance leaderboards.
type PlayersHandler struct {
	deps PlayerDependencies
}

// NewPlayersHandler creates a new players handler.
func NewPlayersHandler(deps PlayerDependencies) *PlayersHandler {
	return &PlayersHandler{deps: deps}
}

// HandleGetPerformance handles
// GET /players/performance?games=&players=&range=&sort=.
// Empty games means every game; empty players means everyone seen.
func (h *PlayersHandler) HandleGetPerformance(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_performance"
	q := r.URL.Query()

	tr, err := h.deps.ParseTimeRange(q.Get("range"))
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	metric, err := performance.ParseMetric(q.Get("sort"))
	if err != nil {
		writeServiceError(w, op, err)
		return
	}

	report, err := h.deps.AggregatePlayerPerformance(r.Context(), splitList(q.Get("players")), splitList(q.Get("games")), tr)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, types.NewLeaderboard(report, metric, tr))
}
