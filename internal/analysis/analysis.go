// Package analysis derives a point-in-time behavioural snapshot from a
// learner's solve history. Analyze is a pure function of its input: the
// same records, catalog shape and clock always produce the same snapshot.
package analysis

import (
	"sort"
	"time"

	"github.com/abhisek/dailydrill/internal/catalog"
	"github.com/abhisek/dailydrill/internal/history"
	"github.com/abhisek/dailydrill/internal/strategy"
)

const (
	recentActivityWindow = 7 * 24 * time.Hour
	strugglingWindow     = 30 * 24 * time.Hour

	// A question attempted more than this many times inside the
	// struggling window is considered a struggle.
	strugglingSolves = 2

	// Time-of-day buckets need this many sessions to be considered.
	minBucketSessions = 3
)

// GroupStat summarises one topic.
type GroupStat struct {
	Count         int     `json:"count"`
	AvgSolveCount float64 `json:"avg_solve_count"`
}

// StrugglingQuestion is a question the learner keeps coming back to.
type StrugglingQuestion struct {
	QuestionID   string             `json:"question_id"`
	Title        string             `json:"title,omitempty"`
	Topic        string             `json:"topic"`
	Difficulty   catalog.Difficulty `json:"difficulty"`
	SolveCount   int                `json:"solve_count"`
	LastSolvedAt time.Time          `json:"last_solved_at"`
}

// AdaptiveFeatures reports whether adaptive weighting is active for the
// learner and which inputs it is running on.
type AdaptiveFeatures struct {
	Enabled           bool              `json:"enabled"`
	Weights           strategy.Weights  `json:"weights"`
	RecentSuccessRate float64           `json:"recent_success_rate"`
	OptimalTimeOfDay  history.TimeOfDay `json:"optimal_time_of_day"`
}

// Analysis is the snapshot consumed by the recommendation generator and
// stored alongside each daily batch.
type Analysis struct {
	UserID      string    `json:"user_id"`
	Mode        Mode      `json:"mode"`
	GeneratedAt time.Time `json:"generated_at"`

	TotalSolved   int `json:"total_solved"`
	TotalAttempts int `json:"total_attempts"`

	GroupStats      map[string]GroupStat       `json:"group_stats"`
	DifficultyStats map[catalog.Difficulty]int `json:"difficulty_stats"`
	UserLevel       Level                      `json:"user_level"`

	WeakAreas           []string                `json:"weak_areas"`
	StrongAreas         []string                `json:"strong_areas"`
	RecentActivity      int                     `json:"recent_activity"`
	StrugglingQuestions []StrugglingQuestion    `json:"struggling_questions"`
	Streak              StreakInfo              `json:"streak_info"`
	TopicMastery        map[string]TopicMastery `json:"topic_mastery"`
	OptimalTimeOfDay    history.TimeOfDay       `json:"optimal_time_of_day"`
	AdaptiveFeatures    AdaptiveFeatures        `json:"adaptive_features"`
}

// IsWeak reports whether topic is in the weak-area set.
func (a *Analysis) IsWeak(topic string) bool {
	for _, t := range a.WeakAreas {
		if t == topic {
			return true
		}
	}
	return false
}

// Attempts returns how many distinct questions were attempted in topic.
func (a *Analysis) Attempts(topic string) int {
	return a.GroupStats[topic].Count
}

// DifficultyShare returns the percentage of solved questions at d.
func (a *Analysis) DifficultyShare(d catalog.Difficulty) float64 {
	if a.TotalSolved == 0 {
		return 0
	}
	return float64(a.DifficultyStats[d]) / float64(a.TotalSolved) * 100
}

// Input is everything the analyzer reads.
type Input struct {
	UserID  string
	Records []*history.Record

	// CatalogTopics is the number of distinct topics in the catalog.
	CatalogTopics int
	// TopicTotals is the number of catalog questions per topic.
	TopicTotals map[string]int

	// Adaptive gating, taken from the learner's profile.
	SufficientData    bool
	Weights           strategy.Weights
	RecentSuccessRate float64
}

// Analyzer computes snapshots using one of the level classifiers.
type Analyzer struct {
	mode Mode
}

// New returns an analyzer for mode. Unknown modes fall back to the
// breadth-aware classifier.
func New(mode Mode) *Analyzer {
	if _, err := ParseMode(string(mode)); err != nil {
		mode = ModeBreadthAware
	}
	return &Analyzer{mode: mode}
}

// Mode returns the classifier the analyzer uses.
func (an *Analyzer) Mode() Mode {
	return an.mode
}

// Analyze builds the snapshot for in as of now. Calendar-day logic uses
// now's location.
func (an *Analyzer) Analyze(in Input, now time.Time) *Analysis {
	a := &Analysis{
		UserID:              in.UserID,
		Mode:                an.mode,
		GeneratedAt:         now,
		GroupStats:          make(map[string]GroupStat),
		DifficultyStats:     make(map[catalog.Difficulty]int),
		WeakAreas:           []string{},
		StrongAreas:         []string{},
		StrugglingQuestions: []StrugglingQuestion{},
		TopicMastery:        make(map[string]TopicMastery),
	}

	byTopic := make(map[string][]*history.Record)
	for _, r := range in.Records {
		a.TotalSolved++
		a.TotalAttempts += r.SolveCount
		a.DifficultyStats[r.Difficulty]++
		byTopic[r.Topic] = append(byTopic[r.Topic], r)
		if !r.LastUpdatedAt.Before(now.Add(-recentActivityWindow)) {
			a.RecentActivity++
		}
	}

	topics := make([]string, 0, len(byTopic))
	for topic := range byTopic {
		topics = append(topics, topic)
	}
	sort.Strings(topics)

	for _, topic := range topics {
		recs := byTopic[topic]
		total := 0
		for _, r := range recs {
			total += r.SolveCount
		}
		gs := GroupStat{
			Count:         len(recs),
			AvgSolveCount: float64(total) / float64(len(recs)),
		}
		a.GroupStats[topic] = gs

		if gs.Count < 3 || gs.AvgSolveCount > 2 {
			a.WeakAreas = append(a.WeakAreas, topic)
		}
		if gs.Count >= 5 && gs.AvgSolveCount <= 1.5 {
			a.StrongAreas = append(a.StrongAreas, topic)
		}

		a.TopicMastery[topic] = computeTopicMastery(recs, in.TopicTotals[topic])
	}

	a.StrugglingQuestions = strugglingQuestions(in.Records, now)
	a.Streak = computeStreak(in.Records, now)
	a.OptimalTimeOfDay = optimalTimeOfDay(in.Records)
	a.UserLevel = classify(an.mode, a, in.CatalogTopics)

	a.AdaptiveFeatures = AdaptiveFeatures{
		Enabled:           in.SufficientData,
		Weights:           in.Weights,
		RecentSuccessRate: in.RecentSuccessRate,
		OptimalTimeOfDay:  a.OptimalTimeOfDay,
	}
	if !in.SufficientData {
		a.AdaptiveFeatures.Weights = strategy.DefaultWeights()
	}

	return a
}

func strugglingQuestions(records []*history.Record, now time.Time) []StrugglingQuestion {
	since := now.Add(-strugglingWindow)
	result := []StrugglingQuestion{}
	for _, r := range records {
		if r.SolvesSince(since) <= strugglingSolves {
			continue
		}
		result = append(result, StrugglingQuestion{
			QuestionID:   r.QuestionID,
			Title:        r.Title,
			Topic:        r.Topic,
			Difficulty:   r.Difficulty,
			SolveCount:   r.SolveCount,
			LastSolvedAt: r.LastUpdatedAt,
		})
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].SolveCount != result[j].SolveCount {
			return result[i].SolveCount > result[j].SolveCount
		}
		return result[i].QuestionID < result[j].QuestionID
	})
	return result
}

func optimalTimeOfDay(records []*history.Record) history.TimeOfDay {
	type bucket struct{ sessions, successes int }
	buckets := make(map[history.TimeOfDay]*bucket)
	for _, r := range records {
		for _, s := range r.Sessions {
			b := buckets[s.Context.TimeOfDay]
			if b == nil {
				b = &bucket{}
				buckets[s.Context.TimeOfDay] = b
			}
			b.sessions++
			if s.Success {
				b.successes++
			}
		}
	}

	best := history.Morning
	bestRate := -1.0
	for _, tod := range history.AllTimesOfDay() {
		b := buckets[tod]
		if b == nil || b.sessions < minBucketSessions {
			continue
		}
		rate := float64(b.successes) / float64(b.sessions)
		if rate > bestRate {
			best, bestRate = tod, rate
		}
	}
	return best
}
