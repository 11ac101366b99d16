// Package profile holds the durable, slowly-changing per-learner state
// the recommendation engine adapts to.
package profile

import (
	"sort"
	"time"

	"github.com/abhisek/dailydrill/internal/analysis"
	"github.com/abhisek/dailydrill/internal/history"
	"github.com/abhisek/dailydrill/internal/strategy"
)

const (
	// WindowSize is the number of outcomes kept in the rolling window.
	WindowSize = 10

	// SufficientDataSolves is the solve count at which adaptive weighting
	// switches on.
	SufficientDataSolves = 20
)

// StreakType distinguishes runs of successes from runs of failures.
type StreakType string

const (
	StreakSuccess StreakType = "success"
	StreakFailure StreakType = "failure"
)

// Outcome is one completed solve as seen by the profile.
type Outcome struct {
	QuestionID string        `json:"question_id"`
	Success    bool          `json:"success"`
	TimeSpent  *float64      `json:"time_spent,omitempty"`
	Strategy   strategy.Name `json:"strategy,omitempty"`
	At         time.Time     `json:"at"`
}

// PerformanceStreak is the current run of identical outcomes.
type PerformanceStreak struct {
	Type      StreakType `json:"type,omitempty"`
	Count     int        `json:"count"`
	StartedAt *time.Time `json:"started_at,omitempty"`
}

// RecentPerformance is the rolling window of the last WindowSize outcomes.
type RecentPerformance struct {
	Outcomes          []Outcome         `json:"outcomes"`
	Streak            PerformanceStreak `json:"streak"`
	RecentSuccessRate float64           `json:"recent_success_rate"`
}

// TimeSlotStats tracks performance in one time-of-day bucket.
type TimeSlotStats struct {
	SuccessRate   float64 `json:"success_rate"`
	AvgTime       float64 `json:"avg_time"`
	Sessions      int     `json:"sessions"`
	TimedSessions int     `json:"timed_sessions"`
}

// TimePreferences aggregates performance by time of day.
type TimePreferences struct {
	Slots            map[history.TimeOfDay]*TimeSlotStats `json:"slots"`
	OptimalTimeOfDay history.TimeOfDay                    `json:"optimal_time_of_day"`
}

// WeightAdjustment records the weights in force before an adjustment.
type WeightAdjustment struct {
	Previous         strategy.Weights `json:"previous"`
	At               time.Time        `json:"at"`
	Reason           string           `json:"reason"`
	PerformanceScore float64          `json:"performance_score"`
}

// AdaptationMetadata gates when weights may change.
type AdaptationMetadata struct {
	SufficientData       bool       `json:"sufficient_data"`
	TotalSolves          int        `json:"total_solves"`
	LastAnalysisAt       *time.Time `json:"last_analysis_at,omitempty"`
	LastWeightAdjustment *time.Time `json:"last_weight_adjustment,omitempty"`
}

// ComputedMetrics caches headline figures from the latest analysis.
type ComputedMetrics struct {
	UserLevel        analysis.Level    `json:"user_level,omitempty"`
	TotalSolved      int               `json:"total_solved"`
	WeakAreas        []string          `json:"weak_areas,omitempty"`
	StrongAreas      []string          `json:"strong_areas,omitempty"`
	CurrentStreak    int               `json:"current_streak"`
	LongestStreak    int               `json:"longest_streak"`
	OptimalTimeOfDay history.TimeOfDay `json:"optimal_time_of_day,omitempty"`
	RefreshedAt      *time.Time        `json:"refreshed_at,omitempty"`
}

// Profile is a learner's adaptive state.
type Profile struct {
	UserID string `json:"user_id"`

	Weights           strategy.Weights   `json:"adaptive_weights"`
	AdjustmentHistory []WeightAdjustment `json:"adjustment_history,omitempty"`

	RecentPerformance RecentPerformance  `json:"recent_performance"`
	TimePreferences   TimePreferences    `json:"time_preferences"`
	Adaptation        AdaptationMetadata `json:"adaptation_metadata"`
	Metrics           ComputedMetrics    `json:"computed_metrics"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New returns an empty profile with default weights.
func New(userID string, now time.Time) *Profile {
	return &Profile{
		UserID:            userID,
		Weights:           strategy.DefaultWeights(),
		RecentPerformance: RecentPerformance{Outcomes: []Outcome{}},
		TimePreferences: TimePreferences{
			Slots:            make(map[history.TimeOfDay]*TimeSlotStats),
			OptimalTimeOfDay: history.Morning,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// FromHistory builds a profile for a learner seen for the first time by
// replaying their existing solve sessions in chronological order.
func FromHistory(userID string, records []*history.Record, now time.Time) *Profile {
	p := New(userID, now)

	type replay struct {
		questionID string
		session    history.Session
	}
	var sessions []replay
	total := 0
	for _, r := range records {
		total += r.SolveCount
		for _, s := range r.Sessions {
			sessions = append(sessions, replay{questionID: r.QuestionID, session: s})
		}
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		if !sessions[i].session.SolvedAt.Equal(sessions[j].session.SolvedAt) {
			return sessions[i].session.SolvedAt.Before(sessions[j].session.SolvedAt)
		}
		return sessions[i].questionID < sessions[j].questionID
	})

	for _, rp := range sessions {
		p.apply(Outcome{
			QuestionID: rp.questionID,
			Success:    rp.session.Success,
			TimeSpent:  rp.session.TimeSpent,
			Strategy:   rp.session.Context.RecommendedBy,
			At:         rp.session.SolvedAt,
		})
	}

	p.Adaptation.TotalSolves = total
	p.Adaptation.SufficientData = total >= SufficientDataSolves
	p.UpdatedAt = now
	return p
}

// RecordOutcome folds a completed solve into the rolling window, streak,
// time preferences and solve total. Weights are left untouched.
func (p *Profile) RecordOutcome(o Outcome) {
	p.apply(o)
	p.Adaptation.TotalSolves++
	p.Adaptation.SufficientData = p.Adaptation.TotalSolves >= SufficientDataSolves
	if o.At.After(p.UpdatedAt) {
		p.UpdatedAt = o.At
	}
}

func (p *Profile) apply(o Outcome) {
	rp := &p.RecentPerformance
	rp.Outcomes = append(rp.Outcomes, o)
	if len(rp.Outcomes) > WindowSize {
		rp.Outcomes = rp.Outcomes[len(rp.Outcomes)-WindowSize:]
	}
	rp.RecentSuccessRate = successRate(rp.Outcomes)

	kind := StreakFailure
	if o.Success {
		kind = StreakSuccess
	}
	if rp.Streak.Type == kind {
		rp.Streak.Count++
	} else {
		at := o.At
		rp.Streak = PerformanceStreak{Type: kind, Count: 1, StartedAt: &at}
	}

	p.recordTimeSlot(o)
}

func (p *Profile) recordTimeSlot(o Outcome) {
	tp := &p.TimePreferences
	if tp.Slots == nil {
		tp.Slots = make(map[history.TimeOfDay]*TimeSlotStats)
	}
	bucket := history.ClassifyTimeOfDay(o.At)
	slot := tp.Slots[bucket]
	if slot == nil {
		slot = &TimeSlotStats{}
		tp.Slots[bucket] = slot
	}

	hit := 0.0
	if o.Success {
		hit = 1
	}
	slot.SuccessRate = (slot.SuccessRate*float64(slot.Sessions) + hit) / float64(slot.Sessions+1)
	slot.Sessions++
	if o.TimeSpent != nil {
		slot.AvgTime = (slot.AvgTime*float64(slot.TimedSessions) + *o.TimeSpent) / float64(slot.TimedSessions+1)
		slot.TimedSessions++
	}

	tp.OptimalTimeOfDay = optimalSlot(tp.Slots)
}

// optimalSlot picks the best-performing bucket with at least three
// sessions, defaulting to morning.
func optimalSlot(slots map[history.TimeOfDay]*TimeSlotStats) history.TimeOfDay {
	best := history.Morning
	bestRate := -1.0
	for _, tod := range history.AllTimesOfDay() {
		s := slots[tod]
		if s == nil || s.Sessions < 3 {
			continue
		}
		if s.SuccessRate > bestRate {
			best, bestRate = tod, s.SuccessRate
		}
	}
	return best
}

func successRate(outcomes []Outcome) float64 {
	if len(outcomes) == 0 {
		return 0
	}
	hits := 0
	for _, o := range outcomes {
		if o.Success {
			hits++
		}
	}
	return float64(hits) / float64(len(outcomes))
}

// EffectiveWeights returns the stored weights once the learner has
// sufficient data, and the defaults before that.
func (p *Profile) EffectiveWeights() strategy.Weights {
	if !p.Adaptation.SufficientData {
		return strategy.DefaultWeights()
	}
	return p.Weights
}

// RefreshMetrics caches headline figures from an analysis pass.
func (p *Profile) RefreshMetrics(a *analysis.Analysis, now time.Time) {
	p.Metrics = ComputedMetrics{
		UserLevel:        a.UserLevel,
		TotalSolved:      a.TotalSolved,
		WeakAreas:        append([]string(nil), a.WeakAreas...),
		StrongAreas:      append([]string(nil), a.StrongAreas...),
		CurrentStreak:    a.Streak.CurrentStreak,
		LongestStreak:    a.Streak.LongestStreak,
		OptimalTimeOfDay: a.OptimalTimeOfDay,
		RefreshedAt:      &now,
	}
	p.Adaptation.LastAnalysisAt = &now
	p.UpdatedAt = now
}
