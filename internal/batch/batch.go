// Package batch manages the one-per-day set of recommendations a learner
// works through: creation, completion, refresh eligibility and refresh.
package batch

import (
	"time"

	"github.com/abhisek/dailydrill/internal/analysis"
	"github.com/abhisek/dailydrill/internal/recommend"
)

// DateLayout formats the per-day key of a batch.
const DateLayout = "2006-01-02"

// Type records how the current recommendations were produced.
type Type string

const (
	TypeDaily            Type = "daily"
	TypeRefresh          Type = "refresh"
	TypeBonus            Type = "bonus"
	TypeSelectiveRefresh Type = "selective_refresh"
)

// ParseType validates a stored batch type.
func ParseType(s string) (Type, bool) {
	switch t := Type(s); t {
	case TypeDaily, TypeRefresh, TypeBonus, TypeSelectiveRefresh:
		return t, true
	default:
		return "", false
	}
}

// Completion records that a question in the batch was worked on.
type Completion struct {
	QuestionID  string    `json:"question_id"`
	CompletedAt time.Time `json:"completed_at"`
	TimeSpent   *float64  `json:"time_spent,omitempty"`
	Success     bool      `json:"success"`
}

// Metadata summarises the last refresh and completion state.
type Metadata struct {
	CarriedOver  int     `json:"carried_over"`
	Replaced     int     `json:"replaced"`
	Satisfaction float64 `json:"satisfaction"`
}

// Batch is a learner's recommendations for one calendar day.
type Batch struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Date   string `json:"date"`

	Recommendations []recommend.Recommendation `json:"recommendations"`
	Analysis        *analysis.Analysis         `json:"analysis,omitempty"`
	Completed       []Completion               `json:"questions_completed"`
	TargetCount     int                        `json:"target_count"`

	Type          Type       `json:"batch_type"`
	RefreshCount  int        `json:"refresh_count"`
	LastRefreshAt *time.Time `json:"last_refresh_at,omitempty"`
	GeneratedAt   time.Time  `json:"generated_at"`
	ExpiresAt     time.Time  `json:"expires_at"`
	Stale         bool       `json:"stale"`
	Metadata      Metadata   `json:"metadata"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Progress is derived from a batch on every read.
type Progress struct {
	Total      int     `json:"total"`
	Completed  int     `json:"completed"`
	Remaining  int     `json:"remaining"`
	Percentage float64 `json:"percentage"`
	IsComplete bool    `json:"is_complete"`
}

// DateKey returns the batch date for t in t's location.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// ExpiryFor returns 06:00 on the day after t, in t's location.
func ExpiryFor(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 6, 0, 0, 0, t.Location())
}

// Completion returns the completion entry for id, if any.
func (b *Batch) Completion(id string) (Completion, bool) {
	for _, c := range b.Completed {
		if c.QuestionID == id {
			return c, true
		}
	}
	return Completion{}, false
}

// IsCompleted reports whether id has a completion entry.
func (b *Batch) IsCompleted(id string) bool {
	_, ok := b.Completion(id)
	return ok
}

// Contains reports whether id is among the current recommendations.
func (b *Batch) Contains(id string) bool {
	for _, r := range b.Recommendations {
		if r.QuestionID == id {
			return true
		}
	}
	return false
}

// MarkCompleted upserts a completion keyed by question ID. Marking the
// same question again replaces the earlier entry.
func (b *Batch) MarkCompleted(c Completion) {
	replaced := false
	for i := range b.Completed {
		if b.Completed[i].QuestionID == c.QuestionID {
			b.Completed[i] = c
			replaced = true
			break
		}
	}
	if !replaced {
		b.Completed = append(b.Completed, c)
	}

	p := b.Progress()
	if p.Total > 0 {
		b.Metadata.Satisfaction = float64(p.Completed) / float64(p.Total)
	}
	if c.CompletedAt.After(b.UpdatedAt) {
		b.UpdatedAt = c.CompletedAt
	}
}

// Progress counts the current recommendations that have a completion.
func (b *Batch) Progress() Progress {
	p := Progress{Total: len(b.Recommendations)}
	for _, r := range b.Recommendations {
		if b.IsCompleted(r.QuestionID) {
			p.Completed++
		}
	}
	p.Remaining = p.Total - p.Completed
	if p.Total > 0 {
		p.Percentage = float64(p.Completed) * 100 / float64(p.Total)
		p.IsComplete = p.Completed == p.Total
	}
	return p
}

// Expired reports whether the batch is past its expiry at now.
func (b *Batch) Expired(now time.Time) bool {
	return !now.Before(b.ExpiresAt)
}

// pending returns the recommendations without a completion, in order.
func (b *Batch) pending() []recommend.Recommendation {
	var out []recommend.Recommendation
	for _, r := range b.Recommendations {
		if !b.IsCompleted(r.QuestionID) {
			out = append(out, r)
		}
	}
	return out
}

// knownIDs returns every question ID the batch has recommended or seen
// completed today.
func (b *Batch) knownIDs() map[string]bool {
	ids := recommend.IDs(b.Recommendations)
	for _, c := range b.Completed {
		ids[c.QuestionID] = true
	}
	return ids
}
