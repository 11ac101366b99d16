package catalog

import "testing"

func sampleQuestions() []Question {
	return []Question{
		{ID: "two-sum", Topic: "arrays", Difficulty: Easy, Lists: []string{"blind75"}, Order: 1},
		{ID: "three-sum", Topic: "arrays", Difficulty: Medium, Lists: []string{"blind75"}, Order: 2},
		{ID: "trap-water", Topic: "arrays", Difficulty: Hard, Order: 3},
		{ID: "valid-parens", Topic: "stack", Difficulty: Easy, Lists: []string{"blind75", "grind"}, Order: 4},
		{ID: "min-stack", Topic: "stack", Difficulty: Medium, Lists: []string{"grind"}, Order: 5},
		{ID: "invert-tree", Topic: "trees", Difficulty: Easy, Lists: []string{"grind"}, Order: 6},
	}
}

func TestNewIndex_OrderAndTopics(t *testing.T) {
	qs := sampleQuestions()
	// Reverse input; index must restore catalog order.
	for i, j := 0, len(qs)-1; i < j; i, j = i+1, j-1 {
		qs[i], qs[j] = qs[j], qs[i]
	}
	idx := NewIndex(qs)

	all := idx.All()
	if all[0].ID != "two-sum" || all[len(all)-1].ID != "invert-tree" {
		t.Errorf("order = %s..%s, want two-sum..invert-tree", all[0].ID, all[len(all)-1].ID)
	}

	topics := idx.DistinctTopics()
	want := []string{"arrays", "stack", "trees"}
	if len(topics) != len(want) {
		t.Fatalf("topics = %v, want %v", topics, want)
	}
	for i := range want {
		if topics[i] != want[i] {
			t.Errorf("topics[%d] = %s, want %s", i, topics[i], want[i])
		}
	}

	counts := idx.CountPerTopic()
	if counts["arrays"] != 3 || counts["stack"] != 2 || counts["trees"] != 1 {
		t.Errorf("CountPerTopic = %v", counts)
	}
}

func TestIndex_Filter(t *testing.T) {
	idx := NewIndex(sampleQuestions())

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"everything", Filter{}, []string{"two-sum", "three-sum", "trap-water", "valid-parens", "min-stack", "invert-tree"}},
		{"single topic", Filter{Topics: []string{"stack"}}, []string{"valid-parens", "min-stack"}},
		{"multi topic easy", Filter{Topics: []string{"arrays", "trees"}, Difficulties: []Difficulty{Easy}}, []string{"two-sum", "invert-tree"}},
		{"named list", Filter{List: "grind"}, []string{"valid-parens", "min-stack", "invert-tree"}},
		{"listed only", Filter{Topics: []string{"arrays"}, ListedOnly: true}, []string{"two-sum", "three-sum"}},
		{"exclude", Filter{Difficulties: []Difficulty{Easy}, Exclude: map[string]bool{"two-sum": true}}, []string{"valid-parens", "invert-tree"}},
		{"limit", Filter{Limit: 2}, []string{"two-sum", "three-sum"}},
		{"unknown topic", Filter{Topics: []string{"graphs"}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := idx.Filter(tt.filter)
			if len(got) != len(tt.want) {
				t.Fatalf("Filter() returned %d questions, want %d", len(got), len(tt.want))
			}
			for i := range tt.want {
				if got[i].ID != tt.want[i] {
					t.Errorf("got[%d] = %s, want %s", i, got[i].ID, tt.want[i])
				}
			}
		})
	}
}

func TestIndex_FindByIDs(t *testing.T) {
	idx := NewIndex(sampleQuestions())
	got := idx.FindByIDs([]string{"min-stack", "missing", "two-sum"})
	if len(got) != 2 {
		t.Fatalf("FindByIDs returned %d, want 2", len(got))
	}
	if got[0].ID != "min-stack" || got[1].ID != "two-sum" {
		t.Errorf("FindByIDs order = [%s %s], want [min-stack two-sum]", got[0].ID, got[1].ID)
	}
}

func TestDifficulty_NextAndParse(t *testing.T) {
	if next, ok := Easy.Next(); !ok || next != Medium {
		t.Errorf("Easy.Next() = %s, %v", next, ok)
	}
	if _, ok := Hard.Next(); ok {
		t.Error("Hard.Next() should report no next difficulty")
	}
	d, err := ParseDifficulty(" HARD ")
	if err != nil || d != Hard {
		t.Errorf("ParseDifficulty = %s, %v", d, err)
	}
	if _, err := ParseDifficulty("extreme"); err == nil {
		t.Error("expected error for unknown difficulty")
	}
}
