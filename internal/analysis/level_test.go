package analysis

import "testing"

func TestClassifyLevelBreadthAware(t *testing.T) {
	tests := []struct {
		name string
		in   LevelInputs
		want Level
	}{
		{
			name: "no history",
			in:   LevelInputs{CatalogTopics: 20},
			want: Beginner,
		},
		{
			name: "intermediate via mastered plus proficient/practicing",
			in: LevelInputs{
				TotalSolved: 25, CatalogTopics: 20, AttemptedTopics: 6,
				MasteredCount: 1, ProficientCount: 2, PracticingCount: 1,
			},
			want: Intermediate,
		},
		{
			name: "intermediate via medium share",
			in: LevelInputs{
				TotalSolved: 30, CatalogTopics: 10, AttemptedTopics: 3, MediumPct: 40,
			},
			want: Intermediate,
		},
		{
			name: "intermediate via hard share",
			in: LevelInputs{
				TotalSolved: 30, CatalogTopics: 10, AttemptedTopics: 3, HardPct: 10,
			},
			want: Intermediate,
		},
		{
			name: "volume without breadth stays beginner",
			in: LevelInputs{
				TotalSolved: 200, CatalogTopics: 20, AttemptedTopics: 4, MediumPct: 50, HardPct: 30, MasteredCount: 3,
			},
			want: Beginner,
		},
		{
			name: "advanced via mastered share",
			in: LevelInputs{
				TotalSolved: 60, CatalogTopics: 10, AttemptedTopics: 4,
				MasteredCount: 1, ProficientCount: 1,
			},
			want: Advanced,
		},
		{
			name: "advanced via counts",
			in: LevelInputs{
				TotalSolved: 80, CatalogTopics: 20, AttemptedTopics: 10,
				MasteredCount: 2, ProficientCount: 3,
			},
			want: Advanced,
		},
		{
			name: "advanced via hard share",
			in: LevelInputs{
				TotalSolved: 70, CatalogTopics: 20, AttemptedTopics: 12,
				MasteredCount: 2, HardPct: 15,
			},
			want: Advanced,
		},
		{
			name: "advanced volume but thin depth drops to intermediate",
			in: LevelInputs{
				TotalSolved: 70, CatalogTopics: 20, AttemptedTopics: 12,
				MasteredCount: 1, ProficientCount: 1, PracticingCount: 2,
			},
			want: Intermediate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyLevelBreadthAware(tt.in); got != tt.want {
				t.Errorf("ClassifyLevelBreadthAware() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestClassifyLevelSimple(t *testing.T) {
	tests := []struct {
		name string
		in   LevelInputs
		want Level
	}{
		{"new learner", LevelInputs{}, Beginner},
		{"medium mix", LevelInputs{TotalSolved: 20, MediumPct: 25, HardPct: 5}, Intermediate},
		{"volume alone", LevelInputs{TotalSolved: 50}, Intermediate},
		{"hard mix", LevelInputs{TotalSolved: 50, HardPct: 20}, Advanced},
		{"volume alone advanced", LevelInputs{TotalSolved: 100}, Advanced},
		{"easy grinder", LevelInputs{TotalSolved: 40, MediumPct: 10}, Beginner},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyLevelSimple(tt.in); got != tt.want {
				t.Errorf("ClassifyLevelSimple() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestClassifiersDiverge(t *testing.T) {
	// Same learner, materially different answers: breadth-aware demands
	// topic coverage the simple classifier ignores.
	in := LevelInputs{TotalSolved: 120, CatalogTopics: 20, AttemptedTopics: 3, HardPct: 25}
	if ClassifyLevelSimple(in) != Advanced {
		t.Errorf("simple = %s, want advanced", ClassifyLevelSimple(in))
	}
	if ClassifyLevelBreadthAware(in) != Beginner {
		t.Errorf("breadth-aware = %s, want beginner", ClassifyLevelBreadthAware(in))
	}
}

func TestParseMode(t *testing.T) {
	if _, err := ParseMode("simple"); err != nil {
		t.Errorf("ParseMode(simple) = %v", err)
	}
	if _, err := ParseMode("fancy"); err == nil {
		t.Error("expected error for unknown mode")
	}
}
