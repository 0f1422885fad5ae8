package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/netstats/internal/cli"
	"github.com/okian/netstats/internal/domain/model"
	"github.com/okian/netstats/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

const dataset = `{
  "games": [
    {"id": "g1", "home_team_id": "A", "away_team_id": "B", "status": "completed", "date": "2024-05-01T10:00:00Z"},
    {"id": "g2", "home_team_id": "B", "away_team_id": "A", "status": "completed", "date": "2024-05-08T10:00:00Z"}
  ],
  "roster": [
    {"game_id": "g1", "quarter": 1, "position": "GS", "player_id": "amy"},
    {"game_id": "g1", "quarter": 1, "position": "GA", "player_id": "bea"},
    {"game_id": "g2", "quarter": 1, "position": "GS", "player_id": "amy"}
  ],
  "stats": [
    {"game_id": "g1", "quarter": 1, "position": "GS", "goals_for": 4, "goals_against": 3},
    {"game_id": "g1", "quarter": 1, "position": "GS", "goals_for": 6, "goals_against": 3},
    {"game_id": "g1", "quarter": 1, "position": "GA", "rebounds": 2},
    {"game_id": "g2", "quarter": 1, "position": "GS", "team_id": "A", "goals_for": 5, "goals_against": 7}
  ],
  "official": [
    {"game_id": "g2", "team_id": "A", "quarter": 1, "score": 9},
    {"game_id": "g2", "team_id": "B", "quarter": 1, "score": 8}
  ]
}`

// run executes statsctl with args against db and returns stdout.
func run(db string, args ...string) (string, error) {
	var out, errOut bytes.Buffer
	root := cli.NewRootCommand()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--db", db}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestStatsctl(t *testing.T) {
	Convey("Given a dataset loaded into a fresh database", t, func() {
		dir := t.TempDir()
		db := filepath.Join(dir, "stats.db")
		file := filepath.Join(dir, "season.json")
		So(os.WriteFile(file, []byte(dataset), 0o600), ShouldBeNil)

		out, err := run(db, "load", file)
		So(err, ShouldBeNil)
		So(out, ShouldContainSubstring, "loaded 2 games, 3 roster slots, 4 stat records, 2 official scores")

		Convey("When scoring a game as JSON", func() {
			out, err := run(db, "--json", "score", "g1")

			Convey("Then the later duplicate record wins", func() {
				So(err, ShouldBeNil)
				var score model.GameScore
				So(json.Unmarshal([]byte(out), &score), ShouldBeNil)
				So(score.Final, ShouldResemble, model.Tally{For: 6, Against: 3})
				So(score.Source, ShouldEqual, model.SourceComputed)
			})
		})

		Convey("When scoring a game with official scores from the away side", func() {
			out, err := run(db, "score", "g2", "--team", "A")

			Convey("Then the official score and A's view are printed", func() {
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "Source: official")
				So(out, ShouldContainSubstring, "A: 9 - 8 (win)")
			})
		})

		Convey("When the viewing team did not play", func() {
			_, err := run(db, "score", "g2", "--team", "Z")

			Convey("Then the command fails", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When printing the leaderboard", func() {
			out, err := run(db, "--json", "leaderboard", "--sort", "goals")

			Convey("Then players are ranked with goals from both games", func() {
				So(err, ShouldBeNil)
				var lb types.Leaderboard
				So(json.Unmarshal([]byte(out), &lb), ShouldBeNil)
				So(lb.Rows, ShouldHaveLength, 2)
				So(lb.Rows[0].PlayerID, ShouldEqual, "amy")
				So(lb.Rows[0].Goals, ShouldEqual, 11)
				So(lb.Rows[0].GamesPlayed, ShouldEqual, 2)
				So(lb.Rows[1].Rebounds, ShouldEqual, 2)
				So(lb.IncompleteRosters, ShouldResemble, []string{"g2", "g1"})
			})
		})

		Convey("When printing the leaderboard as a table", func() {
			out, err := run(db, "leaderboard", "--range", "last-1")

			Convey("Then only the latest game counts", func() {
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "Range: last-1")
				So(out, ShouldContainSubstring, "amy")
				So(out, ShouldNotContainSubstring, "bea")
			})
		})

		Convey("When the sort key is unknown", func() {
			_, err := run(db, "leaderboard", "--sort", "assists")

			Convey("Then the command fails", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When printing a roster", func() {
			out, err := run(db, "roster", "g1")

			Convey("Then open slots are listed", func() {
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "incomplete, 26 open slots")
				So(strings.Count(out, "amy, bea"), ShouldEqual, 1)
			})
		})

		Convey("When the game does not exist", func() {
			_, err := run(db, "roster", "nope")

			Convey("Then the command fails", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
