// Package recommend turns an analysis snapshot and a weight vector into a
// ranked list of practice questions by running five strategies.
package recommend

import (
	"time"

	"github.com/abhisek/dailydrill/internal/catalog"
	"github.com/abhisek/dailydrill/internal/strategy"
)

// AdaptiveContext records how a recommendation came about.
type AdaptiveContext struct {
	WeightUsed          float64    `json:"weight_used"`
	IsCarriedOver       bool       `json:"is_carried_over"`
	OriginalGeneratedAt *time.Time `json:"original_generated_at,omitempty"`
}

// Recommendation is one suggested question.
type Recommendation struct {
	QuestionID      string             `json:"question_id"`
	Title           string             `json:"title"`
	Topic           string             `json:"topic"`
	Difficulty      catalog.Difficulty `json:"difficulty"`
	Reason          string             `json:"reason"`
	Priority        strategy.Priority  `json:"priority"`
	Strategy        strategy.Name      `json:"strategy"`
	AdaptiveContext AdaptiveContext    `json:"adaptive_context"`
	GeneratedAt     time.Time          `json:"generated_at"`
}

// CarryOver returns a copy marked as kept from an earlier generation.
// The first generation time is preserved across repeated carry-overs.
func (r Recommendation) CarryOver() Recommendation {
	out := r
	out.AdaptiveContext.IsCarriedOver = true
	if out.AdaptiveContext.OriginalGeneratedAt == nil {
		at := r.GeneratedAt
		out.AdaptiveContext.OriginalGeneratedAt = &at
	}
	return out
}

// IDs returns the question IDs of recs as a set.
func IDs(recs []Recommendation) map[string]bool {
	ids := make(map[string]bool, len(recs))
	for _, r := range recs {
		ids[r.QuestionID] = true
	}
	return ids
}

func fromQuestion(q catalog.Question, name strategy.Name, reason string, weight float64, now time.Time) Recommendation {
	return Recommendation{
		QuestionID:      q.ID,
		Title:           q.Title,
		Topic:           q.Topic,
		Difficulty:      q.Difficulty,
		Reason:          reason,
		Priority:        strategy.PriorityOf(name),
		Strategy:        name,
		AdaptiveContext: AdaptiveContext{WeightUsed: weight},
		GeneratedAt:     now,
	}
}
