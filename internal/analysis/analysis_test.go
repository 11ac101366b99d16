package analysis

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/abhisek/dailydrill/internal/catalog"
	"github.com/abhisek/dailydrill/internal/history"
	"github.com/abhisek/dailydrill/internal/strategy"
)

var testNow = time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)

// solved builds a record with one session per outcome, each a day apart
// ending at last.
func solved(id, topic string, d catalog.Difficulty, last time.Time, outcomes ...bool) *history.Record {
	r := history.NewRecord("u1", catalog.Question{ID: id, Topic: topic, Difficulty: d})
	if len(outcomes) == 0 {
		outcomes = []bool{true}
	}
	for i, ok := range outcomes {
		at := last.AddDate(0, 0, -(len(outcomes) - 1 - i))
		r.AddSession(history.Attempt{SolvedAt: at, Success: ok})
	}
	return r
}

func fixtureRecords() []*history.Record {
	var recs []*history.Record
	// arrays: 5 of 5 questions solved first try.
	for i := 0; i < 5; i++ {
		recs = append(recs, solved(fmt.Sprintf("arr-%d", i), "arrays", catalog.Easy, testNow.AddDate(0, 0, -20)))
	}
	// stack: two questions, one hammered recently.
	recs = append(recs, solved("stk-0", "stack", catalog.Medium, testNow.AddDate(0, 0, -1), false, false, true))
	recs = append(recs, solved("stk-1", "stack", catalog.Medium, testNow.AddDate(0, 0, -40)))
	// graphs: one hard question, five attempts long ago.
	recs = append(recs, solved("gph-0", "graphs", catalog.Hard, testNow.AddDate(0, 0, -60), false, false, false, false, true))
	return recs
}

func fixtureInput() Input {
	return Input{
		UserID:        "u1",
		Records:       fixtureRecords(),
		CatalogTopics: 6,
		TopicTotals:   map[string]int{"arrays": 5, "stack": 10, "graphs": 8},
	}
}

func TestAnalyze_GroupAndDifficultyStats(t *testing.T) {
	a := New(ModeBreadthAware).Analyze(fixtureInput(), testNow)

	if a.TotalSolved != 8 {
		t.Errorf("TotalSolved = %d, want 8", a.TotalSolved)
	}
	if a.TotalAttempts != 5+3+1+5 {
		t.Errorf("TotalAttempts = %d, want 14", a.TotalAttempts)
	}
	if gs := a.GroupStats["stack"]; gs.Count != 2 || gs.AvgSolveCount != 2 {
		t.Errorf("GroupStats[stack] = %+v, want {2 2}", gs)
	}
	if a.DifficultyStats[catalog.Easy] != 5 || a.DifficultyStats[catalog.Medium] != 2 || a.DifficultyStats[catalog.Hard] != 1 {
		t.Errorf("DifficultyStats = %v", a.DifficultyStats)
	}
}

func TestAnalyze_WeakStrongAreas(t *testing.T) {
	a := New(ModeBreadthAware).Analyze(fixtureInput(), testNow)

	wantWeak := []string{"graphs", "stack"}
	if len(a.WeakAreas) != len(wantWeak) {
		t.Fatalf("WeakAreas = %v, want %v", a.WeakAreas, wantWeak)
	}
	for i := range wantWeak {
		if a.WeakAreas[i] != wantWeak[i] {
			t.Errorf("WeakAreas[%d] = %s, want %s", i, a.WeakAreas[i], wantWeak[i])
		}
	}
	if len(a.StrongAreas) != 1 || a.StrongAreas[0] != "arrays" {
		t.Errorf("StrongAreas = %v, want [arrays]", a.StrongAreas)
	}
	if !a.IsWeak("stack") || a.IsWeak("arrays") {
		t.Error("IsWeak disagrees with WeakAreas")
	}
}

func TestAnalyze_RecentAndStruggling(t *testing.T) {
	a := New(ModeBreadthAware).Analyze(fixtureInput(), testNow)

	if a.RecentActivity != 1 {
		t.Errorf("RecentActivity = %d, want 1", a.RecentActivity)
	}
	// gph-0 has 5 attempts but all outside the 30-day window.
	if len(a.StrugglingQuestions) != 1 {
		t.Fatalf("StrugglingQuestions = %+v, want only stk-0", a.StrugglingQuestions)
	}
	sq := a.StrugglingQuestions[0]
	if sq.QuestionID != "stk-0" || sq.SolveCount != 3 {
		t.Errorf("struggling = %+v", sq)
	}
}

func TestAnalyze_TopicMastery(t *testing.T) {
	a := New(ModeBreadthAware).Analyze(fixtureInput(), testNow)

	arrays := a.TopicMastery["arrays"]
	if arrays.Level != MasteryMastered {
		t.Errorf("arrays level = %s, want mastered", arrays.Level)
	}
	if arrays.TopicCoveragePercentage != 100 || arrays.SolveRate != 1 {
		t.Errorf("arrays = %+v", arrays)
	}

	stack := a.TopicMastery["stack"]
	if stack.Level != MasteryLearning {
		t.Errorf("stack level = %s, want learning", stack.Level)
	}
	if stack.Progress.Total != 10 || stack.Progress.Completed != 2 {
		t.Errorf("stack progress = %+v", stack.Progress)
	}

	// Mastered topics always meet the coverage and solve-rate floor.
	for topic, tm := range a.TopicMastery {
		if tm.Level == MasteryMastered && (tm.TopicCoveragePercentage < 80 || tm.SolveRate < 0.90) {
			t.Errorf("%s mastered with coverage %.1f rate %.2f", topic, tm.TopicCoveragePercentage, tm.SolveRate)
		}
	}
}

func TestMasteryLevelFor(t *testing.T) {
	tests := []struct {
		name      string
		coverage  float64
		rate      float64
		avg       float64
		attempted int
		want      MasteryLevel
	}{
		{"mastered", 80, 0.90, 2.5, 8, MasteryMastered},
		{"too many attempts for mastered", 85, 0.95, 2.6, 8, MasteryProficient},
		{"proficient", 60, 0.85, 3.0, 6, MasteryProficient},
		{"practicing", 40, 0.75, 5, 4, MasteryPracticing},
		{"learning by coverage", 15, 0.1, 1, 1, MasteryLearning},
		{"learning by attempts", 5, 0.1, 1, 3, MasteryLearning},
		{"beginner", 10, 1, 1, 2, MasteryBeginner},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MasteryLevelFor(tt.coverage, tt.rate, tt.avg, tt.attempted); got != tt.want {
				t.Errorf("MasteryLevelFor = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestAnalyze_EmptyHistory(t *testing.T) {
	a := New(ModeBreadthAware).Analyze(Input{UserID: "new", CatalogTopics: 10}, testNow)

	if a.UserLevel != Beginner {
		t.Errorf("UserLevel = %s, want beginner", a.UserLevel)
	}
	if a.AdaptiveFeatures.Enabled {
		t.Error("adaptive features should be disabled without data")
	}
	if a.AdaptiveFeatures.Weights != strategy.DefaultWeights() {
		t.Errorf("weights = %+v, want defaults", a.AdaptiveFeatures.Weights)
	}
	if a.OptimalTimeOfDay != history.Morning {
		t.Errorf("OptimalTimeOfDay = %s, want morning", a.OptimalTimeOfDay)
	}
	if a.Streak.CurrentStreak != 0 || a.Streak.LongestStreak != 0 || a.Streak.LastActivityDate != nil {
		t.Errorf("Streak = %+v, want zero", a.Streak)
	}
	if a.WeakAreas == nil || a.StrugglingQuestions == nil {
		t.Error("empty slices should be non-nil for stable encoding")
	}
}

func TestAnalyze_AdaptiveFeaturesEnabled(t *testing.T) {
	in := fixtureInput()
	in.SufficientData = true
	in.Weights = strategy.Weights{WeakArea: 0.5, Progressive: 0.2, SpacedRepetition: 0.2, Exploration: 0.05, General: 0.05}
	in.RecentSuccessRate = 0.7

	a := New(ModeBreadthAware).Analyze(in, testNow)
	if !a.AdaptiveFeatures.Enabled || a.AdaptiveFeatures.Weights != in.Weights {
		t.Errorf("AdaptiveFeatures = %+v", a.AdaptiveFeatures)
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	an := New(ModeBreadthAware)
	first, err := json.Marshal(an.Analyze(fixtureInput(), testNow))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := json.Marshal(an.Analyze(fixtureInput(), testNow))
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if string(again) != string(first) {
			t.Fatal("Analyze output differs between identical calls")
		}
	}
}

func TestOptimalTimeOfDay(t *testing.T) {
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	r := &history.Record{QuestionID: "q"}
	// Morning: 3 sessions, 1 success. Evening: 3 sessions, 3 successes.
	// Afternoon: 2 perfect sessions, below the minimum sample.
	for i := 0; i < 3; i++ {
		r.AddSession(history.Attempt{SolvedAt: day.AddDate(0, 0, i).Add(8 * time.Hour), Success: i == 0})
		r.AddSession(history.Attempt{SolvedAt: day.AddDate(0, 0, i).Add(20 * time.Hour), Success: true})
	}
	for i := 0; i < 2; i++ {
		r.AddSession(history.Attempt{SolvedAt: day.AddDate(0, 0, i).Add(13 * time.Hour), Success: true})
	}

	if got := optimalTimeOfDay([]*history.Record{r}); got != history.Evening {
		t.Errorf("optimalTimeOfDay = %s, want evening", got)
	}
}

func TestNew_UnknownModeFallsBack(t *testing.T) {
	if got := New("legacy").Mode(); got != ModeBreadthAware {
		t.Errorf("Mode() = %s, want breadth", got)
	}
	if got := New(ModeSimple).Mode(); got != ModeSimple {
		t.Errorf("Mode() = %s, want simple", got)
	}
}
