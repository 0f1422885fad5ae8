package performance

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/okian/netstats/internal/domain/model"
)

// ErrUnknownMetric reports an unsupported leaderboard sort key.
var ErrUnknownMetric = errors.New("unknown metric")

// Metric is a leaderboard sort key.
type Metric string

// Leaderboard metrics.
const (
	MetricGoals       Metric = "goals"
	MetricRebounds    Metric = "rebounds"
	MetricIntercepts  Metric = "intercepts"
	MetricRating      Metric = "rating"
	MetricGamesPlayed Metric = "games"
)

// ParseMetric accepts a metric name; empty means goals.
func ParseMetric(s string) (Metric, error) {
	switch m := Metric(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return MetricGoals, nil
	case MetricGoals, MetricRebounds, MetricIntercepts, MetricRating, MetricGamesPlayed:
		return m, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownMetric, s)
	}
}

func (m Metric) value(t model.PlayerStatTotals) float64 {
	switch m {
	case MetricRebounds:
		return float64(t.Rebounds)
	case MetricIntercepts:
		return float64(t.Intercepts)
	case MetricRating:
		return t.Rating
	case MetricGamesPlayed:
		return float64(t.GamesPlayed)
	default:
		return float64(t.Goals)
	}
}

// Rank orders totals by metric, highest first, player id ascending on ties.
func Rank(totals map[string]model.PlayerStatTotals, m Metric) []model.PlayerStatTotals {
	out := make([]model.PlayerStatTotals, 0, len(totals))
	for _, t := range totals {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		vi, vj := m.value(out[i]), m.value(out[j])
		if vi != vj {
			return vi > vj
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	return out
}
