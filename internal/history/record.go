// Package history models a learner's solve history: one Record per
// (user, question) with an append-only log of solve sessions.
package history

import (
	"time"

	"github.com/abhisek/dailydrill/internal/catalog"
	"github.com/abhisek/dailydrill/internal/strategy"
)

// TimeOfDay is a coarse wall-clock bucket.
type TimeOfDay string

const (
	Morning   TimeOfDay = "morning"
	Afternoon TimeOfDay = "afternoon"
	Evening   TimeOfDay = "evening"
)

// AllTimesOfDay returns buckets in display order.
func AllTimesOfDay() []TimeOfDay {
	return []TimeOfDay{Morning, Afternoon, Evening}
}

// ClassifyTimeOfDay buckets a timestamp by its hour in t's location:
// before 12 is morning, 12-16 afternoon, 17 onwards evening.
func ClassifyTimeOfDay(t time.Time) TimeOfDay {
	switch h := t.Hour(); {
	case h < 12:
		return Morning
	case h < 17:
		return Afternoon
	default:
		return Evening
	}
}

// SessionContext captures the circumstances of a single solve.
type SessionContext struct {
	TimeOfDay       TimeOfDay     `json:"time_of_day"`
	DayOfWeek       time.Weekday  `json:"day_of_week"`
	SessionOrdinal  int           `json:"session_ordinal"`
	PreviousOutcome *bool         `json:"previous_outcome,omitempty"`
	RecommendedBy   strategy.Name `json:"recommended_by,omitempty"`
}

// Session is one attempt at a question.
type Session struct {
	SolvedAt  time.Time      `json:"solved_at"`
	TimeSpent *float64       `json:"time_spent,omitempty"` // minutes
	Success   bool           `json:"success"`
	Context   SessionContext `json:"context"`
}

// Record aggregates every attempt a user made at one question, joined with
// the question's catalog metadata.
type Record struct {
	UserID     string             `json:"user_id"`
	QuestionID string             `json:"question_id"`
	Title      string             `json:"title,omitempty"`
	Topic      string             `json:"topic"`
	Difficulty catalog.Difficulty `json:"difficulty"`

	SolveCount       int       `json:"solve_count"`
	FirstSolvedAt    time.Time `json:"first_solved_at"`
	LastUpdatedAt    time.Time `json:"last_updated_at"`
	AverageTimeSpent float64   `json:"average_time_to_solve"`
	DifficultyRating *int      `json:"difficulty_rating,omitempty"`
	Tags             []string  `json:"tags,omitempty"`

	Sessions []Session `json:"sessions,omitempty"`
}

// NewRecord starts an empty record for a user and catalog question.
// The first AddSession call brings SolveCount to 1.
func NewRecord(userID string, q catalog.Question) *Record {
	return &Record{
		UserID:     userID,
		QuestionID: q.ID,
		Title:      q.Title,
		Topic:      q.Topic,
		Difficulty: q.Difficulty,
	}
}

// Attempt describes a solve to append to a record.
type Attempt struct {
	SolvedAt      time.Time
	TimeSpent     *float64
	Success       bool
	RecommendedBy strategy.Name
}

// AddSession appends a session and updates the aggregates together so
// SolveCount always matches the number of appended sessions.
func (r *Record) AddSession(a Attempt) Session {
	ctx := SessionContext{
		TimeOfDay:      ClassifyTimeOfDay(a.SolvedAt),
		DayOfWeek:      a.SolvedAt.Weekday(),
		SessionOrdinal: r.sessionsOnDay(a.SolvedAt) + 1,
		RecommendedBy:  a.RecommendedBy,
	}
	if n := len(r.Sessions); n > 0 {
		prev := r.Sessions[n-1].Success
		ctx.PreviousOutcome = &prev
	}

	s := Session{
		SolvedAt:  a.SolvedAt,
		TimeSpent: a.TimeSpent,
		Success:   a.Success,
		Context:   ctx,
	}
	r.Sessions = append(r.Sessions, s)
	r.SolveCount++

	if r.FirstSolvedAt.IsZero() || a.SolvedAt.Before(r.FirstSolvedAt) {
		r.FirstSolvedAt = a.SolvedAt
	}
	if a.SolvedAt.After(r.LastUpdatedAt) {
		r.LastUpdatedAt = a.SolvedAt
	}
	r.AverageTimeSpent = r.averageTime()
	return s
}

// Solved reports whether any attempt succeeded. Records without a session
// log (imported counts only) are treated as solved.
func (r *Record) Solved() bool {
	if len(r.Sessions) == 0 {
		return r.SolveCount > 0
	}
	for _, s := range r.Sessions {
		if s.Success {
			return true
		}
	}
	return false
}

// SolvesSince counts attempts at or after since. Records without a
// session log fall back to SolveCount when last updated inside the window.
func (r *Record) SolvesSince(since time.Time) int {
	if len(r.Sessions) == 0 {
		if !r.LastUpdatedAt.Before(since) {
			return r.SolveCount
		}
		return 0
	}
	n := 0
	for _, s := range r.Sessions {
		if !s.SolvedAt.Before(since) {
			n++
		}
	}
	return n
}

// LastSession returns the most recently appended session, if any.
func (r *Record) LastSession() (Session, bool) {
	if len(r.Sessions) == 0 {
		return Session{}, false
	}
	return r.Sessions[len(r.Sessions)-1], true
}

func (r *Record) sessionsOnDay(t time.Time) int {
	y, m, d := t.Date()
	n := 0
	for _, s := range r.Sessions {
		sy, sm, sd := s.SolvedAt.In(t.Location()).Date()
		if sy == y && sm == m && sd == d {
			n++
		}
	}
	return n
}

func (r *Record) averageTime() float64 {
	var sum float64
	var n int
	for _, s := range r.Sessions {
		if s.TimeSpent != nil {
			sum += *s.TimeSpent
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// SolvedIDs returns the distinct question IDs across records.
func SolvedIDs(records []*Record) map[string]bool {
	ids := make(map[string]bool, len(records))
	for _, r := range records {
		ids[r.QuestionID] = true
	}
	return ids
}
