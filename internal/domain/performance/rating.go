package performance

import (
	"math"

	"github.com/okian/netstats/internal/domain/model"
)

// Rater is the fallback rating formula used when no rating was recorded:
// clamp(Base + Goals*goals + Rebounds*rebounds + Intercepts*intercepts, Min, Max).
type Rater struct {
	Base       float64
	Goals      float64
	Rebounds   float64
	Intercepts float64
	Min        float64
	Max        float64
}

// DefaultRater returns the standard formula, which rates an idle player 5.
func DefaultRater() Rater {
	return Rater{Base: 5, Goals: 0.2, Rebounds: 0.3, Intercepts: 0.4, Min: 1, Max: 10}
}

// WithWeights returns r with the weights named in w replaced. Recognized
// keys are goals, rebounds and intercepts.
func (r Rater) WithWeights(w map[string]float64) Rater {
	if v, ok := w["goals"]; ok {
		r.Goals = v
	}
	if v, ok := w["rebounds"]; ok {
		r.Rebounds = v
	}
	if v, ok := w["intercepts"]; ok {
		r.Intercepts = v
	}
	return r
}

// Rate applies the formula to a player's totals.
func (r Rater) Rate(t model.PlayerStatTotals) float64 {
	v := r.Base +
		r.Goals*float64(t.Goals) +
		r.Rebounds*float64(t.Rebounds) +
		r.Intercepts*float64(t.Intercepts)
	return math.Max(r.Min, math.Min(r.Max, v))
}
