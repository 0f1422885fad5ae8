// Package api serves the engine's read operations over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/okian/netstats/internal/adapters/http/swagger"
	service "github.com/okian/netstats/internal/app"
	"github.com/okian/netstats/internal/domain/model"
	"github.com/okian/netstats/internal/domain/performance"
	"github.com/okian/netstats/internal/domain/perspective"
	"github.com/okian/netstats/internal/domain/reconcile"
	"github.com/okian/netstats/internal/domain/types"
	"github.com/okian/netstats/pkg/logger"
)

const defaultRequestTimeout = 30 * time.Second

// Dependencies required by HTTP handlers. The service satisfies it.
type Dependencies interface {
	StatsProvider

	ComputeGameScore(ctx context.Context, gameID string, forceFresh bool) (model.GameScore, error)
	ComputeGameScores(ctx context.Context, gameIDs []string, forceFresh bool) ([]model.GameScore, error)
	ResolvePerspective(ctx context.Context, gameID, viewingTeamID string) (model.PerspectiveScore, error)
	RosterStatus(ctx context.Context, gameID string) (types.RosterStatus, error)
	AggregatePlayerPerformance(ctx context.Context, players, gameIDs []string, tr performance.TimeRange) (performance.Report, error)
	ParseTimeRange(v string) (performance.TimeRange, error)
}

// Server wires HTTP routes for the read API.
type Server struct {
	deps    Dependencies
	origins []string
	timeout time.Duration
	logger  logger.Logger

	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	gamesHandler  *GamesHandler
	playerHandler *PlayersHandler
}

// Option configures a Server.
type Option func(*Server)

// WithCORSOrigins sets the origins allowed by CORS.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.origins = origins
		}
	}
}

// WithRequestTimeout bounds each request.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		deps:    deps,
		origins: []string{"*"},
		timeout: defaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("http")
	}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(deps)
	s.gamesHandler = NewGamesHandler(deps)
	s.playerHandler = NewPlayersHandler(deps)
	return s
}

// Router builds the chi router with middleware and all routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(RequestID)
	r.Use(RequestLogger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(s.timeout))
	r.Use(Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.healthHandler.HandleHealth)
	r.Get("/stats", s.statsHandler.HandleStats)
	r.Handle("/metrics", s.healthHandler.MetricsHandler())
	swagger.Register(r)

	r.Get("/scores", s.gamesHandler.HandleGetScores)
	r.Route("/games/{gameID}", func(r chi.Router) {
		r.Get("/score", s.gamesHandler.HandleGetScore)
		r.Get("/perspective", s.gamesHandler.HandleGetPerspective)
		r.Get("/roster", s.gamesHandler.HandleGetRoster)
	})
	r.Get("/players/performance", s.playerHandler.HandleGetPerformance)

	return r
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps engine errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
	case errors.Is(err, perspective.ErrUnknownTeam),
		errors.Is(err, service.ErrTooManyGames),
		errors.Is(err, performance.ErrInvalidTimeRange),
		errors.Is(err, performance.ErrUnknownMetric):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, reconcile.ErrStatsUnavailable):
		writeError(w, http.StatusServiceUnavailable, "stats_unavailable", WrapKind(op, ErrUnavailable, err))
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		writeError(w, http.StatusGatewayTimeout, "timeout", Wrap(op, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}
