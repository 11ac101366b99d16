package strategy

import (
	"math"
	"testing"
)

func TestDefaultWeightsSumToOne(t *testing.T) {
	if sum := DefaultWeights().Sum(); math.Abs(sum-1) > 1e-9 {
		t.Errorf("Sum() = %v, want 1", sum)
	}
}

func TestWeights_Slots(t *testing.T) {
	w := DefaultWeights()
	tests := []struct {
		name  Name
		count int
		want  int
	}{
		{WeakArea, 5, 2},
		{Progressive, 5, 2},
		{SpacedRepetition, 5, 1},
		{Exploration, 5, 1},
		{General, 5, 1},
		{WeakArea, 10, 4},
		{Exploration, 10, 1},
		{General, 0, 0},
	}
	for _, tt := range tests {
		if got := w.Slots(tt.name, tt.count); got != tt.want {
			t.Errorf("Slots(%s, %d) = %d, want %d", tt.name, tt.count, got, tt.want)
		}
	}
}

func TestWeights_Normalized(t *testing.T) {
	w := Weights{WeakArea: 2, Progressive: 1, SpacedRepetition: 1}
	n := w.Normalized()
	if math.Abs(n.Sum()-1) > 1e-9 {
		t.Errorf("Normalized().Sum() = %v, want 1", n.Sum())
	}
	if math.Abs(n.WeakArea-0.5) > 1e-9 {
		t.Errorf("WeakArea = %v, want 0.5", n.WeakArea)
	}
	if (Weights{}).Normalized() != DefaultWeights() {
		t.Error("zero weights should normalize to defaults")
	}
}

func TestPriority(t *testing.T) {
	if PriorityOf(WeakArea) != High || PriorityOf(SpacedRepetition) != High {
		t.Error("weak-area and spaced repetition should be high priority")
	}
	if PriorityOf(Exploration) != Low {
		t.Error("exploration should be low priority")
	}
	if PriorityOf(General) != Medium || PriorityOf(Progressive) != Medium {
		t.Error("general and progressive should be medium priority")
	}
	if !(High.Rank() > Medium.Rank() && Medium.Rank() > Low.Rank()) {
		t.Error("priority ranks out of order")
	}
}

func TestParse(t *testing.T) {
	if n, err := Parse("spaced_repetition"); err != nil || n != SpacedRepetition {
		t.Errorf("Parse = %s, %v", n, err)
	}
	if n, err := Parse(""); err != nil || n != "" {
		t.Errorf("Parse(\"\") = %s, %v", n, err)
	}
	if _, err := Parse("random"); err == nil {
		t.Error("expected error for unknown strategy")
	}
}

func TestWeights_Validate(t *testing.T) {
	if err := DefaultWeights().Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
	if err := (Weights{WeakArea: -0.1}).Validate(); err == nil {
		t.Error("expected error for negative weight")
	}
}
