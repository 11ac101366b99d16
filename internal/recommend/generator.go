package recommend

import (
	"fmt"
	"sort"
	"time"

	"github.com/abhisek/dailydrill/internal/analysis"
	"github.com/abhisek/dailydrill/internal/catalog"
	"github.com/abhisek/dailydrill/internal/strategy"
)

// Catalog is the read-only question source the generator draws from.
// *catalog.Index satisfies it.
type Catalog interface {
	Filter(f catalog.Filter) []catalog.Question
	DistinctTopics() []string
}

// Config controls which catalog questions are eligible.
type Config struct {
	// ListedOnly restricts candidates to questions in at least one list.
	ListedOnly bool `yaml:"listed_only"`
	// List restricts candidates to one named list when set.
	List string `yaml:"list"`
	// MaxCount caps a single request.
	MaxCount int `yaml:"max_count"`
}

// DefaultConfig returns the standard generator settings.
func DefaultConfig() Config {
	return Config{
		ListedOnly: true,
		MaxCount:   50,
	}
}

// Request is one generation call.
type Request struct {
	Analysis *analysis.Analysis
	Weights  strategy.Weights
	Count    int

	// Solved holds question IDs the learner already solved. Spaced
	// repetition ignores it since it revisits solved questions.
	Solved map[string]bool
	// InBatch holds question IDs already in the current batch.
	InBatch map[string]bool

	Now time.Time
}

// Generator runs the strategies against a catalog. It holds no mutable
// state and is safe for concurrent use.
type Generator struct {
	catalog Catalog
	cfg     Config
}

// NewGenerator creates a generator over c.
func NewGenerator(c Catalog, cfg Config) *Generator {
	return &Generator{catalog: c, cfg: cfg}
}

// Generate returns at most req.Count recommendations ordered by priority,
// stable within a priority. The output depends only on the request and
// the catalog.
func (g *Generator) Generate(req Request) []Recommendation {
	count := req.Count
	if g.cfg.MaxCount > 0 && count > g.cfg.MaxCount {
		count = g.cfg.MaxCount
	}
	if count <= 0 || req.Analysis == nil {
		return []Recommendation{}
	}

	run := &generation{
		gen:    g,
		req:    req,
		diffs:  analysis.AppropriateDifficulties(req.Analysis.UserLevel),
		chosen: make(map[string]bool),
	}

	// Shares may over-subscribe count; the priority cut below drops the
	// excess. General practice only tops up.
	var recs []Recommendation
	for _, name := range strategy.All() {
		slots := req.Weights.Slots(name, count)
		if name == strategy.General {
			slots = count - len(recs)
		}
		if slots <= 0 {
			continue
		}

		picked := run.strategy(name, slots)
		for _, r := range picked {
			run.chosen[r.QuestionID] = true
		}
		recs = append(recs, picked...)
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Priority.Rank() > recs[j].Priority.Rank()
	})
	if len(recs) > count {
		recs = recs[:count]
	}
	if recs == nil {
		recs = []Recommendation{}
	}
	return recs
}

// generation is the per-call working state.
type generation struct {
	gen    *Generator
	req    Request
	diffs  []catalog.Difficulty
	chosen map[string]bool
}

func (run *generation) strategy(name strategy.Name, slots int) []Recommendation {
	switch name {
	case strategy.WeakArea:
		return run.weakArea(slots)
	case strategy.Progressive:
		return run.progressive(slots)
	case strategy.SpacedRepetition:
		return run.spacedRepetition(slots)
	case strategy.Exploration:
		return run.exploration(slots)
	case strategy.General:
		return run.general(slots)
	default:
		return nil
	}
}

// blocked reports whether id may not be recommended by a strategy that
// avoids solved questions.
func (run *generation) blocked(id string) bool {
	return run.chosen[id] || run.req.InBatch[id] || run.req.Solved[id]
}

func (run *generation) filter(topics []string, diffs []catalog.Difficulty) []catalog.Question {
	return run.gen.catalog.Filter(catalog.Filter{
		Topics:       topics,
		Difficulties: diffs,
		List:         run.gen.cfg.List,
		ListedOnly:   run.gen.cfg.ListedOnly,
	})
}

func (run *generation) weight(name strategy.Name) float64 {
	return run.req.Weights.Get(name)
}

func (run *generation) weakArea(slots int) []Recommendation {
	topics := run.req.Analysis.WeakAreas
	pools := make([][]catalog.Question, len(topics))
	for i, topic := range topics {
		pools[i] = run.filter([]string{topic}, run.diffs)
	}

	var recs []Recommendation
	for _, q := range roundRobin(pools, slots, run.blocked) {
		reason := fmt.Sprintf("Strengthen weak area %s", q.Topic)
		recs = append(recs, fromQuestion(q, strategy.WeakArea, reason, run.weight(strategy.WeakArea), run.req.Now))
	}
	return recs
}

// progressionTarget returns the difficulty to step up to, if the
// learner's solve mix calls for it.
func progressionTarget(a *analysis.Analysis) (catalog.Difficulty, float64, bool) {
	switch a.UserLevel {
	case analysis.Beginner:
		if share := a.DifficultyShare(catalog.Easy); share > 70 {
			return catalog.Medium, share, true
		}
	case analysis.Intermediate:
		if share := a.DifficultyShare(catalog.Medium); share > 60 {
			return catalog.Hard, share, true
		}
	}
	return "", 0, false
}

func (run *generation) progressive(slots int) []Recommendation {
	target, share, ok := progressionTarget(run.req.Analysis)
	if !ok {
		return nil
	}
	prev := catalog.Easy
	if target == catalog.Hard {
		prev = catalog.Medium
	}

	// Familiar topics first, then the rest of the catalog.
	var familiar []string
	for topic := range run.req.Analysis.GroupStats {
		familiar = append(familiar, topic)
	}
	sort.Strings(familiar)
	pools := make([][]catalog.Question, 0, len(familiar)+1)
	for _, topic := range familiar {
		pools = append(pools, run.filter([]string{topic}, []catalog.Difficulty{target}))
	}

	picked := roundRobin(pools, slots, run.blocked)
	if len(picked) < slots {
		taken := func(id string) bool {
			if run.blocked(id) {
				return true
			}
			for _, q := range picked {
				if q.ID == id {
					return true
				}
			}
			return false
		}
		rest := [][]catalog.Question{run.filter(nil, []catalog.Difficulty{target})}
		picked = append(picked, roundRobin(rest, slots-len(picked), taken)...)
	}

	var recs []Recommendation
	for _, q := range picked {
		reason := fmt.Sprintf("Step up to %s: %.0f%% of your solves are %s", target, share, prev)
		recs = append(recs, fromQuestion(q, strategy.Progressive, reason, run.weight(strategy.Progressive), run.req.Now))
	}
	return recs
}

func (run *generation) spacedRepetition(slots int) []Recommendation {
	struggling := append([]analysis.StrugglingQuestion(nil), run.req.Analysis.StrugglingQuestions...)
	sort.SliceStable(struggling, func(i, j int) bool {
		if struggling[i].SolveCount != struggling[j].SolveCount {
			return struggling[i].SolveCount > struggling[j].SolveCount
		}
		return struggling[i].QuestionID < struggling[j].QuestionID
	})

	var recs []Recommendation
	for _, sq := range struggling {
		if len(recs) >= slots {
			break
		}
		if run.chosen[sq.QuestionID] || run.req.InBatch[sq.QuestionID] {
			continue
		}
		q := catalog.Question{ID: sq.QuestionID, Title: sq.Title, Topic: sq.Topic, Difficulty: sq.Difficulty}
		reason := fmt.Sprintf("Revisit: attempted %d times recently", sq.SolveCount)
		recs = append(recs, fromQuestion(q, strategy.SpacedRepetition, reason, run.weight(strategy.SpacedRepetition), run.req.Now))
	}
	return recs
}

func (run *generation) exploration(slots int) []Recommendation {
	var pools [][]catalog.Question
	for _, topic := range run.gen.catalog.DistinctTopics() {
		if run.req.Analysis.Attempts(topic) >= 2 {
			continue
		}
		pools = append(pools, run.filter([]string{topic}, []catalog.Difficulty{catalog.Easy}))
	}

	var recs []Recommendation
	for _, q := range roundRobin(pools, slots, run.blocked) {
		reason := fmt.Sprintf("Explore a new topic: %s", q.Topic)
		recs = append(recs, fromQuestion(q, strategy.Exploration, reason, run.weight(strategy.Exploration), run.req.Now))
	}
	return recs
}

func (run *generation) general(slots int) []Recommendation {
	pool := [][]catalog.Question{run.filter(nil, run.diffs)}

	var recs []Recommendation
	for _, q := range roundRobin(pool, slots, run.blocked) {
		reason := fmt.Sprintf("General practice at %s level", run.req.Analysis.UserLevel)
		recs = append(recs, fromQuestion(q, strategy.General, reason, run.weight(strategy.General), run.req.Now))
	}
	return recs
}

// roundRobin takes one question from each pool in turn until n are
// picked or every pool is exhausted. Skipped IDs are never returned and
// a question is returned at most once.
func roundRobin(pools [][]catalog.Question, n int, skip func(id string) bool) []catalog.Question {
	var out []catalog.Question
	if n <= 0 {
		return out
	}
	seen := make(map[string]bool)
	next := make([]int, len(pools))
	for {
		progressed := false
		for i, pool := range pools {
			for next[i] < len(pool) {
				q := pool[next[i]]
				next[i]++
				if skip(q.ID) || seen[q.ID] {
					continue
				}
				seen[q.ID] = true
				out = append(out, q)
				progressed = true
				if len(out) >= n {
					return out
				}
				break
			}
		}
		if !progressed {
			return out
		}
	}
}
