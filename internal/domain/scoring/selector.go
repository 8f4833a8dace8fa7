package scoring

import (
	"github.com/okian/swimchamps/internal/domain/model"
)

// Selector picks each swimmer's counting events under a Policy.
// It holds no mutable state and is safe for concurrent use.
type Selector struct {
	policy Policy
}

// NewSelector creates a Selector with the default policy and applies opts.
func NewSelector(opts ...Option) *Selector {
	s := &Selector{policy: DefaultPolicy()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Policy returns the rules this selector applies.
func (s *Selector) Policy() Policy {
	return s.policy
}

// Select computes the selection for one swimmer. All records must belong to
// the same swimmer; a record that breaks the ingestion rules fails the whole
// call with a model.MalformedRecordError rather than being skipped.
func (s *Selector) Select(records []model.PerformanceRecord) (model.SwimmerSelection, error) {
	if len(records) == 0 {
		return model.SwimmerSelection{}, ErrNoRecords
	}
	if err := checkRecords(records); err != nil {
		return model.SwimmerSelection{}, err
	}

	first := records[0]
	limit := s.policy.CapFor(first.Age)
	trace := Partition(records, limit, s.policy.MaxSelected)

	selected := make([]model.PerformanceRecord, len(trace.Selected))
	for i, idx := range trace.Selected {
		selected[i] = records[idx]
	}

	return model.SwimmerSelection{
		SwimmerName:           first.SwimmerName,
		Age:                   first.Age,
		SexCategory:           majority(records, func(r model.PerformanceRecord) model.SexCategory { return r.SexCategory }),
		Club:                  majority(records, func(r model.PerformanceRecord) string { return r.Club }),
		Selected:              selected,
		CategoriesRepresented: trace.CategoriesRepresented,
		Cap:                   limit,
		MaxSelected:           s.policy.MaxSelected,
	}, nil
}

// Explain replays the partition that produced sel over the swimmer's records.
func Explain(records []model.PerformanceRecord, sel model.SwimmerSelection) Trace {
	return Partition(records, sel.Cap, sel.MaxSelected)
}

func checkRecords(records []model.PerformanceRecord) error {
	name := records[0].SwimmerName
	for _, r := range records {
		switch {
		case r.SwimmerName != name:
			return model.Malformed(r, "swimmer_name", "does not match "+name)
		case r.Score < 0:
			return model.Malformed(r, "score", "must be >= 0")
		case r.Age <= 0:
			return model.Malformed(r, "age", "must be positive")
		case r.Category != "" && !r.Category.Valid():
			return model.Malformed(r, "category", "is not a scoring category")
		}
	}
	return nil
}

// majority returns the most common value. When more than one value shares
// the top count, the value of the single highest scoring record wins,
// earliest record first, even if that value is not among the tied ones.
func majority[T comparable](records []model.PerformanceRecord, get func(model.PerformanceRecord) T) T {
	counts := make(map[T]int, 2)
	best := 0
	for _, r := range records {
		v := get(r)
		counts[v]++
		best = max(best, counts[v])
	}

	var (
		winner  T
		leaders int
		top     = records[0]
	)
	for v, n := range counts {
		if n == best {
			winner = v
			leaders++
		}
	}
	if leaders == 1 {
		return winner
	}
	for _, r := range records[1:] {
		if r.Score > top.Score {
			top = r
		}
	}
	return get(top)
}
