// Package strategy names the five recommendation heuristics, their
// priorities and the weight vector that apportions slots among them.
package strategy

import (
	"fmt"
	"math"
)

// Name identifies a recommendation strategy.
type Name string

const (
	WeakArea         Name = "weak_area_reinforcement"
	Progressive      Name = "progressive_difficulty"
	SpacedRepetition Name = "spaced_repetition"
	Exploration      Name = "topic_exploration"
	General          Name = "general_practice"
)

// All returns the strategies in the fixed order the generator runs them.
func All() []Name {
	return []Name{WeakArea, Progressive, SpacedRepetition, Exploration, General}
}

// Parse validates a strategy name. The empty string is allowed and means
// the question was not recommended by any strategy.
func Parse(s string) (Name, error) {
	if s == "" {
		return "", nil
	}
	for _, n := range All() {
		if string(n) == s {
			return n, nil
		}
	}
	return "", fmt.Errorf("unknown strategy %q", s)
}

// Priority ranks a recommendation within a batch.
type Priority string

const (
	High   Priority = "high"
	Medium Priority = "medium"
	Low    Priority = "low"
)

// Rank maps high=3, medium=2, low=1.
func (p Priority) Rank() int {
	switch p {
	case High:
		return 3
	case Medium:
		return 2
	case Low:
		return 1
	default:
		return 0
	}
}

// PriorityOf returns the priority a strategy assigns to its items.
func PriorityOf(n Name) Priority {
	switch n {
	case WeakArea, SpacedRepetition:
		return High
	case Exploration:
		return Low
	default:
		return Medium
	}
}

// Weights apportions recommendation slots among the strategies.
type Weights struct {
	WeakArea         float64 `json:"weak_area_reinforcement" yaml:"weak_area_reinforcement"`
	Progressive      float64 `json:"progressive_difficulty" yaml:"progressive_difficulty"`
	SpacedRepetition float64 `json:"spaced_repetition" yaml:"spaced_repetition"`
	Exploration      float64 `json:"topic_exploration" yaml:"topic_exploration"`
	General          float64 `json:"general_practice" yaml:"general_practice"`
}

// DefaultWeights are used whenever a learner lacks sufficient data.
func DefaultWeights() Weights {
	return Weights{
		WeakArea:         0.4,
		Progressive:      0.3,
		SpacedRepetition: 0.2,
		Exploration:      0.07,
		General:          0.03,
	}
}

// Get returns the weight for a strategy.
func (w Weights) Get(n Name) float64 {
	switch n {
	case WeakArea:
		return w.WeakArea
	case Progressive:
		return w.Progressive
	case SpacedRepetition:
		return w.SpacedRepetition
	case Exploration:
		return w.Exploration
	case General:
		return w.General
	default:
		return 0
	}
}

// Sum returns the total of all five weights.
func (w Weights) Sum() float64 {
	return w.WeakArea + w.Progressive + w.SpacedRepetition + w.Exploration + w.General
}

// Normalized rescales the weights proportionally so they sum to 1.
// A zero vector yields the defaults.
func (w Weights) Normalized() Weights {
	sum := w.Sum()
	if sum <= 0 {
		return DefaultWeights()
	}
	return Weights{
		WeakArea:         w.WeakArea / sum,
		Progressive:      w.Progressive / sum,
		SpacedRepetition: w.SpacedRepetition / sum,
		Exploration:      w.Exploration / sum,
		General:          w.General / sum,
	}
}

// Slots returns ceil(count × weight) for a strategy, never negative.
func (w Weights) Slots(n Name, count int) int {
	weight := w.Get(n)
	if weight <= 0 || count <= 0 {
		return 0
	}
	// Round before ceil so 5×0.4 stays 2 despite float error.
	return int(math.Ceil(math.Round(float64(count)*weight*1e9) / 1e9))
}

// Validate checks that every weight is non-negative and finite.
func (w Weights) Validate() error {
	for _, n := range All() {
		v := w.Get(n)
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("weight %s = %v: must be a non-negative number", n, v)
		}
	}
	return nil
}
