// Package perspective renders a perspective-free game score from one team's
// side.
package perspective

import (
	"errors"
	"fmt"

	"github.com/okian/netstats/internal/domain/model"
)

// Sentinel kinds for perspective errors.
var (
	// ErrUnknownTeam is a caller bug: the viewing team did not play.
	ErrUnknownTeam = errors.New("viewing team is not a participant")
)

// Resolve maps a GameScore (for = home, against = away) onto our/their
// scores for viewingTeamID. An empty viewingTeamID is the club-wide view:
// home and away are reported as-is with no verdict.
func Resolve(score model.GameScore, game model.Game, viewingTeamID string) (model.PerspectiveScore, error) {
	out := model.PerspectiveScore{
		GameID:        game.ID,
		ViewingTeamID: viewingTeamID,
		NoData:        score.NoData,
	}

	switch {
	case viewingTeamID == "":
		out.OurScore, out.TheirScore = score.Final.For, score.Final.Against
		return out, nil
	case viewingTeamID == game.HomeTeamID:
		out.OurScore, out.TheirScore = score.Final.For, score.Final.Against
	case viewingTeamID == game.AwayTeamID:
		out.OurScore, out.TheirScore = score.Final.Against, score.Final.For
	default:
		return model.PerspectiveScore{}, fmt.Errorf("%w: team %q in game %s", ErrUnknownTeam, viewingTeamID, game.ID)
	}

	out.Result = Verdict(out.OurScore, out.TheirScore)
	return out, nil
}

// Verdict compares two scores. Equal scores are a draw.
func Verdict(ours, theirs int) model.Result {
	switch {
	case ours == theirs:
		return model.ResultDraw
	case ours > theirs:
		return model.ResultWin
	default:
		return model.ResultLoss
	}
}
