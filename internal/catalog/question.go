package catalog

import (
	"fmt"
	"strings"
)

// Difficulty is the fixed difficulty band of a question.
type Difficulty string

const (
	Easy   Difficulty = "Easy"
	Medium Difficulty = "Medium"
	Hard   Difficulty = "Hard"
)

// AllDifficulties returns difficulties from easiest to hardest.
func AllDifficulties() []Difficulty {
	return []Difficulty{Easy, Medium, Hard}
}

// Rank orders difficulties: Easy=1, Medium=2, Hard=3, unknown=0.
func (d Difficulty) Rank() int {
	switch d {
	case Easy:
		return 1
	case Medium:
		return 2
	case Hard:
		return 3
	default:
		return 0
	}
}

// Next returns the difficulty one step up, or false at the top.
func (d Difficulty) Next() (Difficulty, bool) {
	switch d {
	case Easy:
		return Medium, true
	case Medium:
		return Hard, true
	default:
		return "", false
	}
}

// ParseDifficulty accepts any casing of easy/medium/hard.
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return Easy, nil
	case "medium":
		return Medium, nil
	case "hard":
		return Hard, nil
	default:
		return "", fmt.Errorf("unknown difficulty %q", s)
	}
}

// Question is a practice problem in the catalog. Topic and Difficulty
// never change after creation.
type Question struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Topic      string     `json:"topic"`
	Difficulty Difficulty `json:"difficulty"`
	Lists      []string   `json:"lists,omitempty"`
	Order      int        `json:"order"`
}

// InList reports whether the question belongs to the named list.
func (q Question) InList(name string) bool {
	for _, l := range q.Lists {
		if l == name {
			return true
		}
	}
	return false
}

// Listed reports whether the question belongs to at least one list.
func (q Question) Listed() bool {
	return len(q.Lists) > 0
}
