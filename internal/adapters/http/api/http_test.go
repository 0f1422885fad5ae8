package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/netstats/internal/adapters/http/api"
	service "github.com/okian/netstats/internal/app"
	"github.com/okian/netstats/internal/domain/model"
	"github.com/okian/netstats/internal/domain/performance"
	"github.com/okian/netstats/internal/domain/perspective"
	"github.com/okian/netstats/internal/domain/types"
	"github.com/okian/netstats/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type fakeDeps struct {
	err        error
	lastFresh  bool
	lastTeam   string
	lastIDs    []string
	lastRange  performance.TimeRange
	lastPlayer []string
}

func (f *fakeDeps) GetStats() map[string]any { return map[string]any{"started": true} }

func (f *fakeDeps) ComputeGameScore(_ context.Context, gameID string, fresh bool) (model.GameScore, error) {
	f.lastFresh = fresh
	if f.err != nil {
		return model.GameScore{}, f.err
	}
	return model.GameScore{GameID: gameID, Final: model.Tally{For: 32, Against: 28}, Source: model.SourceOfficial}, nil
}

func (f *fakeDeps) ComputeGameScores(_ context.Context, ids []string, _ bool) ([]model.GameScore, error) {
	f.lastIDs = ids
	if f.err != nil {
		return nil, f.err
	}
	out := make([]model.GameScore, len(ids))
	for i, id := range ids {
		out[i] = model.GameScore{GameID: id, Source: model.SourceComputed}
	}
	return out, nil
}

func (f *fakeDeps) ResolvePerspective(_ context.Context, gameID, team string) (model.PerspectiveScore, error) {
	f.lastTeam = team
	if team == "Z" {
		return model.PerspectiveScore{}, fmt.Errorf("%w: %s", perspective.ErrUnknownTeam, team)
	}
	return model.PerspectiveScore{GameID: gameID, ViewingTeamID: team, OurScore: 15, TheirScore: 20, Result: model.ResultLoss}, nil
}

func (f *fakeDeps) RosterStatus(_ context.Context, gameID string) (types.RosterStatus, error) {
	if f.err != nil {
		return types.RosterStatus{}, f.err
	}
	return types.RosterStatus{GameID: gameID, Complete: true}, nil
}

func (f *fakeDeps) AggregatePlayerPerformance(_ context.Context, players, games []string, tr performance.TimeRange) (performance.Report, error) {
	f.lastPlayer, f.lastIDs, f.lastRange = players, games, tr
	if f.err != nil {
		return performance.Report{}, f.err
	}
	return performance.Report{
		Totals: map[string]model.PlayerStatTotals{
			"amy": {PlayerID: "amy", Goals: 3, Rebounds: 9},
			"bea": {PlayerID: "bea", Goals: 7, Rebounds: 1},
		},
		Games: []string{"g2", "g1"},
	}, nil
}

func (f *fakeDeps) ParseTimeRange(v string) (performance.TimeRange, error) {
	return performance.ParseTimeRange(v, 5, time.Date(2024, time.May, 20, 0, 0, 0, 0, time.UTC))
}

func serve(h http.Handler, target string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(w *httptest.ResponseRecorder, v any) {
	So(json.NewDecoder(w.Body).Decode(v), ShouldBeNil)
}

func TestRouter(t *testing.T) {
	Convey("Given an API router over fake dependencies", t, func() {
		deps := &fakeDeps{}
		h := api.NewServer(deps).Router()

		Convey("When requesting a game score with fresh=true", func() {
			w := serve(h, "/games/42/score?fresh=true")

			Convey("Then the score is returned and fresh is passed through", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var got model.GameScore
				decode(w, &got)
				So(got.GameID, ShouldEqual, "42")
				So(got.Final, ShouldResemble, model.Tally{For: 32, Against: 28})
				So(deps.lastFresh, ShouldBeTrue)
			})

			Convey("Then a request id is echoed", func() {
				So(w.Header().Get("X-Request-ID"), ShouldNotBeEmpty)
			})
		})

		Convey("When a caller supplies a request id", func() {
			w := serve(h, "/healthz", "X-Request-ID", "abc-123")

			Convey("Then it is kept", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("X-Request-ID"), ShouldEqual, "abc-123")
			})
		})

		Convey("When fresh is not a boolean", func() {
			w := serve(h, "/games/42/score?fresh=maybe")

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the game is unknown", func() {
			deps.err = fmt.Errorf("%w: 99", service.ErrGameNotFound)
			w := serve(h, "/games/99/score")

			Convey("Then 404 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When the stats store is down", func() {
			deps.err = fmt.Errorf("%w: boom", service.ErrStatsUnavailable)
			w := serve(h, "/games/42/roster")

			Convey("Then 503 is returned with a code", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
				var body map[string]string
				decode(w, &body)
				So(body["code"], ShouldEqual, "stats_unavailable")
			})
		})

		Convey("When resolving a perspective", func() {
			w := serve(h, "/games/43/perspective?team=A")

			Convey("Then the team's view is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var got model.PerspectiveScore
				decode(w, &got)
				So(got.OurScore, ShouldEqual, 15)
				So(got.Result, ShouldEqual, model.ResultLoss)
				So(deps.lastTeam, ShouldEqual, "A")
			})
		})

		Convey("When the viewing team did not play", func() {
			w := serve(h, "/games/43/perspective?team=Z")

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When requesting a batch of scores", func() {
			w := serve(h, "/scores?games=a,%20b,,c")

			Convey("Then blanks are ignored", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var got types.ScoreBatch
				decode(w, &got)
				So(got.Scores, ShouldHaveLength, 3)
				So(deps.lastIDs, ShouldResemble, []string{"a", "b", "c"})
			})
		})

		Convey("When the batch has no games", func() {
			w := serve(h, "/scores")

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the batch is too large", func() {
			deps.err = fmt.Errorf("%w: 300 > 200", service.ErrTooManyGames)
			w := serve(h, "/scores?games=a")

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When requesting a leaderboard sorted by rebounds", func() {
			w := serve(h, "/players/performance?players=amy,bea&range=last-3&sort=rebounds")

			Convey("Then players are ranked by the metric", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var got types.Leaderboard
				decode(w, &got)
				So(got.Range, ShouldEqual, "last-3")
				So(got.Sort, ShouldEqual, "rebounds")
				So(got.Rows, ShouldHaveLength, 2)
				So(got.Rows[0].PlayerID, ShouldEqual, "amy")
				So(got.Rows[0].Rank, ShouldEqual, 1)
				So(deps.lastPlayer, ShouldResemble, []string{"amy", "bea"})
				So(deps.lastRange, ShouldResemble, performance.LastN(3))
			})
		})

		Convey("When the range or sort is invalid", func() {
			Convey("Then a bad range is rejected", func() {
				So(serve(h, "/players/performance?range=fortnight").Code, ShouldEqual, http.StatusBadRequest)
			})
			Convey("Then a bad sort is rejected", func() {
				So(serve(h, "/players/performance?sort=assists").Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When reading stats and metrics", func() {
			Convey("Then stats are served as JSON", func() {
				w := serve(h, "/stats")
				So(w.Code, ShouldEqual, http.StatusOK)
				var got map[string]any
				decode(w, &got)
				So(got["started"], ShouldBeTrue)
			})
			Convey("Then metrics are exposed", func() {
				serve(h, "/games/42/score")
				w := serve(h, "/metrics")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "netstats_")
			})
		})

		Convey("When fetching the API document", func() {
			w := serve(h, "/openapi.yaml")

			Convey("Then it is served", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
			})
		})

		Convey("When a route does not exist", func() {
			w := serve(h, "/leaderboard")

			Convey("Then 404 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestErrorHelpers(t *testing.T) {
	Convey("Given op-tagged errors", t, func() {
		cause := fmt.Errorf("disk: %w", service.ErrStatsUnavailable)

		Convey("Then WrapKind matches both the kind and the cause", func() {
			err := api.WrapKind("api.test", api.ErrUnavailable, cause)
			So(errors.Is(err, api.ErrUnavailable), ShouldBeTrue)
			So(errors.Is(err, service.ErrStatsUnavailable), ShouldBeTrue)
		})

		Convey("Then Wrap of nil is nil", func() {
			So(api.Wrap("api.test", nil), ShouldBeNil)
		})

		Convey("Then NewKind names the operation", func() {
			So(api.NewKind("api.test", api.ErrBadRequest).Error(), ShouldEqual, "api.test: bad request")
		})
	})
}
