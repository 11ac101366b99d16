package analysis

import "github.com/abhisek/dailydrill/internal/history"

// MasteryLevel is a five-point ordinal for depth in one topic.
type MasteryLevel string

const (
	MasteryBeginner   MasteryLevel = "beginner"
	MasteryLearning   MasteryLevel = "learning"
	MasteryPracticing MasteryLevel = "practicing"
	MasteryProficient MasteryLevel = "proficient"
	MasteryMastered   MasteryLevel = "mastered"
)

// TopicProgress summarises completion inside a topic.
type TopicProgress struct {
	Completed  int     `json:"completed"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
	Coverage   float64 `json:"coverage"`
}

// TopicMastery is the learner's standing in one topic.
type TopicMastery struct {
	Level                   MasteryLevel  `json:"level"`
	AttemptedCount          int           `json:"attempted_count"`
	SolvedCount             int           `json:"solved_count"`
	SolveRate               float64       `json:"solve_rate"`
	AvgAttempts             float64       `json:"avg_attempts"`
	TopicCoveragePercentage float64       `json:"topic_coverage_percentage"`
	Progress                TopicProgress `json:"progress"`
}

// MasteryLevelFor applies the mastery ladder, highest level first.
func MasteryLevelFor(coverage, solveRate, avgAttempts float64, attempted int) MasteryLevel {
	switch {
	case coverage >= 80 && solveRate >= 0.90 && avgAttempts <= 2.5:
		return MasteryMastered
	case coverage >= 60 && solveRate >= 0.85 && avgAttempts <= 3.0:
		return MasteryProficient
	case coverage >= 40 && solveRate >= 0.75:
		return MasteryPracticing
	case coverage >= 15 || attempted >= 3:
		return MasteryLearning
	default:
		return MasteryBeginner
	}
}

// computeTopicMastery derives mastery for one topic's records. catalogTotal
// is the number of questions the catalog has in the topic; it is raised
// to the attempted count when the catalog has shrunk since.
func computeTopicMastery(records []*history.Record, catalogTotal int) TopicMastery {
	attempted := len(records)
	solved := 0
	attempts := 0
	for _, r := range records {
		if r.Solved() {
			solved++
		}
		attempts += r.SolveCount
	}

	total := catalogTotal
	if total < attempted {
		total = attempted
	}

	tm := TopicMastery{
		AttemptedCount: attempted,
		SolvedCount:    solved,
	}
	if attempted > 0 {
		tm.SolveRate = float64(solved) / float64(attempted)
		tm.AvgAttempts = float64(attempts) / float64(attempted)
	}
	if total > 0 {
		tm.TopicCoveragePercentage = float64(attempted) / float64(total) * 100
		tm.Progress = TopicProgress{
			Completed:  solved,
			Total:      total,
			Percentage: float64(solved) / float64(total) * 100,
			Coverage:   tm.TopicCoveragePercentage,
		}
	}
	tm.Level = MasteryLevelFor(tm.TopicCoveragePercentage, tm.SolveRate, tm.AvgAttempts, attempted)
	return tm
}
