package model

// ScoreSource names where a GameScore came from.
type ScoreSource string

// Score sources, in reconciliation priority order.
const (
	SourceOfficial  ScoreSource = "official"
	SourcePreloaded ScoreSource = "preloaded"
	SourceCache     ScoreSource = "cache"
	SourceComputed  ScoreSource = "computed"
)

// Tally is a for/against pair. In a GameScore "for" is the home team.
type Tally struct {
	For     int `json:"for"`
	Against int `json:"against"`
}

// Add returns the element-wise sum of t and o.
func (t Tally) Add(o Tally) Tally {
	return Tally{For: t.For + o.For, Against: t.Against + o.Against}
}

// Total returns both sides combined.
func (t Tally) Total() int {
	return t.For + t.Against
}

// GameScore is the perspective-free score of a game.
type GameScore struct {
	GameID string `json:"game_id"`
	// Quarters holds quarters 1..4 at indexes 0..3.
	Quarters [QuarterCount]Tally `json:"quarters"`
	Final    Tally               `json:"final"`
	Source   ScoreSource         `json:"source"`
	// NoData is set when nothing was recorded for the game, so a 0-0 is a
	// placeholder rather than a result.
	NoData bool `json:"no_data"`
	// Dropped counts records that could not be keyed or joined to a team.
	Dropped int `json:"dropped,omitempty"`
}

// Quarter returns the tally of quarter q (1-based). Out-of-range quarters
// yield a zero tally.
func (s GameScore) Quarter(q int) Tally {
	if !ValidQuarter(q) {
		return Tally{}
	}
	return s.Quarters[q-1]
}

// SumQuarters returns the sum of the quarter tallies.
func (s GameScore) SumQuarters() Tally {
	var t Tally
	for _, q := range s.Quarters {
		t = t.Add(q)
	}
	return t
}

// Result is a win/loss/draw verdict from one team's side.
type Result string

// Verdicts. ResultNone is used when there is no viewing team.
const (
	ResultNone Result = ""
	ResultWin  Result = "win"
	ResultLoss Result = "loss"
	ResultDraw Result = "draw"
)

// PerspectiveScore is a GameScore seen from one team, or from the club as a
// whole when ViewingTeamID is empty.
type PerspectiveScore struct {
	GameID        string `json:"game_id"`
	ViewingTeamID string `json:"viewing_team_id,omitempty"`
	OurScore      int    `json:"our_score"`
	TheirScore    int    `json:"their_score"`
	Result        Result `json:"result,omitempty"`
	NoData        bool   `json:"no_data"`
}
