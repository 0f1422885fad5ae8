package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/okian/netstats/internal/domain/model"
	"github.com/okian/netstats/internal/domain/types"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

// printScore prints quarter-by-quarter home and away goals.
func printScore(w io.Writer, s model.GameScore) {
	fmt.Fprintf(w, "\nGame: %s  |  Source: %s", s.GameID, s.Source)
	if s.NoData {
		fmt.Fprint(w, "  |  no data recorded")
	}
	if s.Dropped > 0 {
		fmt.Fprintf(w, "  |  %d records dropped", s.Dropped)
	}
	fmt.Fprint(w, "\n\n")

	table := newTable(w)
	table.Header(" ", "Q1", "Q2", "Q3", "Q4", "FINAL")
	home := []any{"HOME"}
	away := []any{"AWAY"}
	for _, q := range s.Quarters {
		home = append(home, strconv.Itoa(q.For))
		away = append(away, strconv.Itoa(q.Against))
	}
	home = append(home, strconv.Itoa(s.Final.For))
	away = append(away, strconv.Itoa(s.Final.Against))
	table.Append(home...)
	table.Append(away...)
	table.Render()
}

func printPerspective(w io.Writer, p model.PerspectiveScore) {
	fmt.Fprintf(w, "\n%s: %d - %d", p.ViewingTeamID, p.OurScore, p.TheirScore)
	if p.Result != model.ResultNone {
		fmt.Fprintf(w, " (%s)", p.Result)
	}
	fmt.Fprintln(w)
}

func printLeaderboard(w io.Writer, lb types.Leaderboard) {
	fmt.Fprintf(w, "\nRange: %s  |  Sort: %s  |  Games: %d\n\n", lb.Range, lb.Sort, len(lb.Games))
	if len(lb.Rows) == 0 {
		fmt.Fprintln(w, "(no players)")
		return
	}

	table := newTable(w)
	table.Header("#", "PLAYER", "GP", "G", "GA", "MISS", "REB", "INT", "BAD_PASS", "HANDLING", "PICKUP", "INFR", "RATING")
	for _, r := range lb.Rows {
		table.Append(
			strconv.Itoa(r.Rank),
			r.PlayerID,
			strconv.Itoa(r.GamesPlayed),
			strconv.Itoa(r.Goals),
			strconv.Itoa(r.GoalsAgainst),
			strconv.Itoa(r.MissedGoals),
			strconv.Itoa(r.Rebounds),
			strconv.Itoa(r.Intercepts),
			strconv.Itoa(r.BadPass),
			strconv.Itoa(r.HandlingError),
			strconv.Itoa(r.PickUp),
			strconv.Itoa(r.Infringement),
			fmt.Sprintf("%.1f", r.Rating),
		)
	}
	table.Render()

	if len(lb.IncompleteRosters) > 0 {
		fmt.Fprintf(w, "\nincomplete rosters: %s\n", strings.Join(lb.IncompleteRosters, ", "))
	}
}

func printRoster(w io.Writer, st types.RosterStatus) {
	state := "complete"
	if !st.Complete {
		state = fmt.Sprintf("incomplete, %d open slots", len(st.Missing))
	}
	fmt.Fprintf(w, "\nGame: %s  |  Roster: %s\n\n", st.GameID, state)

	missing := make(map[int][]string)
	for _, s := range st.Missing {
		missing[s.Quarter] = append(missing[s.Quarter], string(s.Position))
	}

	table := newTable(w)
	table.Header("QUARTER", "ON COURT", "OPEN")
	for q := model.FirstQuarter; q <= model.LastQuarter; q++ {
		table.Append(
			"Q"+strconv.Itoa(q),
			strings.Join(st.OnCourt[q], ", "),
			strings.Join(missing[q], " "),
		)
	}
	table.Render()
}
