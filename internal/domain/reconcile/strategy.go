package reconcile

import "github.com/okian/netstats/internal/domain/model"

// Strategy is one way of obtaining a game score.
type Strategy int

// Strategies in their default priority order.
const (
	// StrategyOfficial sums explicitly recorded official scores.
	StrategyOfficial Strategy = iota
	// StrategyPreloaded aggregates stat records the caller already holds.
	StrategyPreloaded
	// StrategyCached returns a previously computed score unless a refresh
	// was forced.
	StrategyCached
	// StrategyFetch loads stat records through the data-access collaborator
	// and aggregates them. It always produces a score.
	StrategyFetch
)

// DefaultOrder is the priority list used unless overridden. The first
// strategy that applies wins.
var DefaultOrder = []Strategy{StrategyOfficial, StrategyPreloaded, StrategyCached, StrategyFetch}

// String returns the strategy name.
func (s Strategy) String() string {
	return string(s.Source())
}

// Source maps a strategy to the score source recorded on its result.
func (s Strategy) Source() model.ScoreSource {
	switch s {
	case StrategyOfficial:
		return model.SourceOfficial
	case StrategyPreloaded:
		return model.SourcePreloaded
	case StrategyCached:
		return model.SourceCache
	case StrategyFetch:
		return model.SourceComputed
	default:
		return "unknown"
	}
}
