package analysis

import (
	"fmt"

	"github.com/abhisek/dailydrill/internal/catalog"
)

// Level is the learner's overall skill classification.
type Level string

const (
	Beginner     Level = "beginner"
	Intermediate Level = "intermediate"
	Advanced     Level = "advanced"
)

// Mode selects the level classifier.
type Mode string

const (
	// ModeBreadthAware weighs topic breadth and per-topic mastery.
	ModeBreadthAware Mode = "breadth"
	// ModeSimple looks only at volume and difficulty mix.
	ModeSimple Mode = "simple"
)

// ParseMode validates a classifier mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeBreadthAware, ModeSimple:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown analyzer mode %q (want %q or %q)", s, ModeBreadthAware, ModeSimple)
	}
}

// LevelInputs are the figures both classifiers read.
type LevelInputs struct {
	TotalSolved     int
	CatalogTopics   int
	AttemptedTopics int

	MasteredCount   int
	ProficientCount int
	PracticingCount int

	HardPct   float64
	MediumPct float64
}

// TopicBreadthPct is attempted topics over catalog topics, as a percentage.
func (in LevelInputs) TopicBreadthPct() float64 {
	if in.CatalogTopics == 0 {
		return 0
	}
	return float64(in.AttemptedTopics) / float64(in.CatalogTopics) * 100
}

func (in LevelInputs) pctOfAttempted(n int) float64 {
	if in.AttemptedTopics == 0 {
		return 0
	}
	return float64(n) / float64(in.AttemptedTopics) * 100
}

// ClassifyLevelBreadthAware requires both volume and breadth, then looks
// for evidence of depth through mastered/proficient topics or a hard mix.
func ClassifyLevelBreadthAware(in LevelInputs) Level {
	breadth := in.TopicBreadthPct()
	masteredPct := in.pctOfAttempted(in.MasteredCount)
	proficientPlusPct := in.pctOfAttempted(in.MasteredCount + in.ProficientCount)

	if in.TotalSolved >= 60 && breadth >= 40 &&
		((masteredPct >= 25 && proficientPlusPct >= 50) ||
			(in.MasteredCount >= 2 && in.ProficientCount >= 3) ||
			(in.HardPct >= 15 && in.MasteredCount >= 2)) {
		return Advanced
	}

	if in.TotalSolved >= 25 && breadth >= 25 &&
		((in.MasteredCount >= 1 && in.ProficientCount+in.PracticingCount >= 3) ||
			(in.MediumPct >= 35 && breadth >= 30) ||
			(in.HardPct >= 8 && breadth >= 20)) {
		return Intermediate
	}

	return Beginner
}

// ClassifyLevelSimple uses solve volume and difficulty mix only.
func ClassifyLevelSimple(in LevelInputs) Level {
	switch {
	case in.TotalSolved >= 100 || (in.TotalSolved >= 50 && in.HardPct >= 20):
		return Advanced
	case in.TotalSolved >= 50 || (in.TotalSolved >= 20 && in.MediumPct+in.HardPct >= 30):
		return Intermediate
	default:
		return Beginner
	}
}

// levelInputs gathers classifier figures from a partially built snapshot.
func levelInputs(a *Analysis, catalogTopics int) LevelInputs {
	in := LevelInputs{
		TotalSolved:     a.TotalSolved,
		CatalogTopics:   catalogTopics,
		AttemptedTopics: len(a.GroupStats),
		HardPct:         a.DifficultyShare(catalog.Hard),
		MediumPct:       a.DifficultyShare(catalog.Medium),
	}
	for _, tm := range a.TopicMastery {
		switch tm.Level {
		case MasteryMastered:
			in.MasteredCount++
		case MasteryProficient:
			in.ProficientCount++
		case MasteryPracticing:
			in.PracticingCount++
		}
	}
	return in
}

func classify(mode Mode, a *Analysis, catalogTopics int) Level {
	in := levelInputs(a, catalogTopics)
	if mode == ModeSimple {
		return ClassifyLevelSimple(in)
	}
	return ClassifyLevelBreadthAware(in)
}

// AppropriateDifficulties returns the difficulties suited to a level.
func AppropriateDifficulties(l Level) []catalog.Difficulty {
	switch l {
	case Advanced:
		return []catalog.Difficulty{catalog.Medium, catalog.Hard}
	case Intermediate:
		return []catalog.Difficulty{catalog.Easy, catalog.Medium}
	default:
		return []catalog.Difficulty{catalog.Easy}
	}
}
