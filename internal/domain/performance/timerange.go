package performance

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/okian/netstats/internal/domain/model"
)

// Sentinel kinds for performance errors.
var (
	ErrInvalidTimeRange = errors.New("invalid time range")
)

// RangeKind selects which games feed a rollup.
type RangeKind string

// Range kinds.
const (
	RangeAll   RangeKind = "all"
	RangeLastN RangeKind = "last"
	RangeMonth RangeKind = "month"
)

// TimeRange narrows the completed games of a set.
type TimeRange struct {
	Kind RangeKind
	// N is the number of completed games kept by RangeLastN.
	N int
	// Ref is the reference time for RangeMonth.
	Ref time.Time
}

// All selects every qualifying game.
func All() TimeRange { return TimeRange{Kind: RangeAll} }

// LastN selects the n most recently dated completed games.
func LastN(n int) TimeRange { return TimeRange{Kind: RangeLastN, N: n} }

// Month selects games in the calendar month of ref.
func Month(ref time.Time) TimeRange { return TimeRange{Kind: RangeMonth, Ref: ref} }

// ParseTimeRange reads "all", "month", "last" or "last-N"/"lastN". A bare
// "last" uses defaultN. An empty string means all.
func ParseTimeRange(s string, defaultN int, now time.Time) (TimeRange, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch {
	case v == "" || v == string(RangeAll):
		return All(), nil
	case v == string(RangeMonth):
		return Month(now), nil
	case v == string(RangeLastN):
		return LastN(defaultN), nil
	case strings.HasPrefix(v, string(RangeLastN)):
		n, err := strconv.Atoi(strings.TrimPrefix(strings.TrimPrefix(v, string(RangeLastN)), "-"))
		if err != nil || n < 1 {
			return TimeRange{}, fmt.Errorf("%w: %q", ErrInvalidTimeRange, s)
		}
		return LastN(n), nil
	default:
		return TimeRange{}, fmt.Errorf("%w: %q", ErrInvalidTimeRange, s)
	}
}

// String renders the range in the form ParseTimeRange accepts.
func (tr TimeRange) String() string {
	if tr.Kind == RangeLastN {
		return fmt.Sprintf("last-%d", tr.N)
	}
	if tr.Kind == "" {
		return string(RangeAll)
	}
	return string(tr.Kind)
}

// FilterGames keeps the games that count for players (completed ones) and
// then applies the time range. The result is ordered
// most recent first, game id breaking date ties.
func FilterGames(games []model.Game, tr TimeRange) []model.Game {
	kept := make([]model.Game, 0, len(games))
	for _, g := range games {
		if !g.Status.CountsForPlayers() {
			continue
		}
		kept = append(kept, g)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		if !kept[i].Date.Equal(kept[j].Date) {
			return kept[i].Date.After(kept[j].Date)
		}
		return kept[i].ID < kept[j].ID
	})

	switch tr.Kind {
	case RangeLastN:
		out := make([]model.Game, 0, tr.N)
		for _, g := range kept {
			if len(out) >= tr.N {
				break
			}
			out = append(out, g)
		}
		return out
	case RangeMonth:
		ref := tr.Ref
		out := kept[:0]
		for _, g := range kept {
			d := g.Date.In(ref.Location())
			if d.Year() == ref.Year() && d.Month() == ref.Month() {
				out = append(out, g)
			}
		}
		return out
	default:
		return kept
	}
}
