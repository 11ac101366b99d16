package catalog

import (
	"slices"
	"sort"
)

// Filter narrows a catalog query. Zero values mean "any".
type Filter struct {
	Topics       []string
	Difficulties []Difficulty
	// List restricts to members of one named list.
	List string
	// ListedOnly restricts to questions that belong to any list.
	ListedOnly bool
	// Exclude drops the given question IDs.
	Exclude map[string]bool
	// Limit caps the result size (0 = unlimited).
	Limit int
}

// Index is an immutable in-memory view of the question catalog with
// precomputed lookups. All query results are in catalog order
// (Order ascending, then ID).
type Index struct {
	questions []Question
	byID      map[string]*Question
	byTopic   map[string][]Question
	topics    []string
}

// NewIndex builds an Index from a slice of questions. Duplicate IDs keep
// the last occurrence.
func NewIndex(questions []Question) *Index {
	dedup := make(map[string]Question, len(questions))
	for _, q := range questions {
		dedup[q.ID] = q
	}

	ordered := make([]Question, 0, len(dedup))
	for _, q := range dedup {
		ordered = append(ordered, q)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Order != ordered[j].Order {
			return ordered[i].Order < ordered[j].Order
		}
		return ordered[i].ID < ordered[j].ID
	})

	idx := &Index{
		questions: ordered,
		byID:      make(map[string]*Question, len(ordered)),
		byTopic:   make(map[string][]Question),
	}
	for i := range idx.questions {
		q := &idx.questions[i]
		idx.byID[q.ID] = q
		idx.byTopic[q.Topic] = append(idx.byTopic[q.Topic], *q)
	}
	for topic := range idx.byTopic {
		idx.topics = append(idx.topics, topic)
	}
	sort.Strings(idx.topics)

	return idx
}

// Len returns the number of questions.
func (x *Index) Len() int {
	return len(x.questions)
}

// All returns every question in catalog order.
func (x *Index) All() []Question {
	return slices.Clone(x.questions)
}

// Get returns a question by ID.
func (x *Index) Get(id string) (Question, bool) {
	q, ok := x.byID[id]
	if !ok {
		return Question{}, false
	}
	return *q, true
}

// FindByIDs returns the questions that exist for the given IDs, in the
// order the IDs were given. Unknown IDs are skipped.
func (x *Index) FindByIDs(ids []string) []Question {
	result := make([]Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := x.byID[id]; ok {
			result = append(result, *q)
		}
	}
	return result
}

// DistinctTopics returns all topics sorted alphabetically.
func (x *Index) DistinctTopics() []string {
	return slices.Clone(x.topics)
}

// CountPerTopic returns the number of questions in each topic.
func (x *Index) CountPerTopic() map[string]int {
	counts := make(map[string]int, len(x.byTopic))
	for topic, qs := range x.byTopic {
		counts[topic] = len(qs)
	}
	return counts
}

// Filter returns the questions matching f in catalog order.
func (x *Index) Filter(f Filter) []Question {
	source := x.questions
	if len(f.Topics) == 1 {
		source = x.byTopic[f.Topics[0]]
	}

	var topics map[string]bool
	if len(f.Topics) > 1 {
		topics = make(map[string]bool, len(f.Topics))
		for _, t := range f.Topics {
			topics[t] = true
		}
	}

	var result []Question
	for _, q := range source {
		if topics != nil && !topics[q.Topic] {
			continue
		}
		if len(f.Difficulties) > 0 && !slices.Contains(f.Difficulties, q.Difficulty) {
			continue
		}
		if f.List != "" && !q.InList(f.List) {
			continue
		}
		if f.ListedOnly && !q.Listed() {
			continue
		}
		if f.Exclude[q.ID] {
			continue
		}
		result = append(result, q)
		if f.Limit > 0 && len(result) >= f.Limit {
			break
		}
	}
	return result
}
