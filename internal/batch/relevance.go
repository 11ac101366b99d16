package batch

import (
	"slices"

	"github.com/abhisek/dailydrill/internal/analysis"
	"github.com/abhisek/dailydrill/internal/recommend"
	"github.com/abhisek/dailydrill/internal/strategy"
)

// StillRelevant decides whether an uncompleted recommendation survives a
// full refresh against a fresh analysis. Rules are checked in order and
// the first that applies wins.
func StillRelevant(r recommend.Recommendation, fresh *analysis.Analysis) bool {
	switch {
	case r.Strategy == strategy.SpacedRepetition && r.Priority == strategy.High:
		return true
	case r.Strategy == strategy.WeakArea && fresh.IsWeak(r.Topic):
		return true
	case r.Strategy == strategy.Progressive &&
		slices.Contains(analysis.AppropriateDifficulties(fresh.UserLevel), r.Difficulty):
		return true
	case r.Strategy == strategy.General && r.Priority == strategy.High:
		return true
	case r.Strategy == strategy.Exploration && r.Priority == strategy.Low:
		return false
	}
	return r.Priority != strategy.Low
}
