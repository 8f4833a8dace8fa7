package scoring

import (
	"sort"

	"github.com/okian/swimchamps/internal/domain/dedupe"
	"github.com/okian/swimchamps/internal/domain/model"
)

// Disposition says what happened to one record during selection.
type Disposition int

// Record dispositions.
const (
	// Selected records count towards the swimmer's total.
	Selected Disposition = iota
	// CapExceeded records were cut from their category pool by the per-category cap.
	CapExceeded
	// OutsideTopN records survived the cap but lost in the overall top-N cut.
	OutsideTopN
	// Duplicate records repeat an event already represented by a better entry.
	Duplicate
	// Uncategorised records do not belong to any scoring category.
	Uncategorised
)

// String returns the wire name of the disposition.
func (d Disposition) String() string {
	switch d {
	case Selected:
		return "selected"
	case CapExceeded:
		return "cap_exceeded"
	case OutsideTopN:
		return "outside_top_n"
	case Duplicate:
		return "duplicate"
	case Uncategorised:
		return "uncategorised"
	default:
		return "unknown"
	}
}

// MarshalText lets dispositions serialise by name.
func (d Disposition) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Trace is the full outcome of partitioning one swimmer's records.
type Trace struct {
	// Dispositions is aligned with the input records.
	Dispositions []Disposition
	// Pools holds input indexes per category after dedupe and cap, best first.
	Pools map[model.Category][]int
	// Selected holds input indexes of the counting records, best first.
	Selected []int
	// CategoriesRepresented counts non-empty pools.
	CategoriesRepresented int
}

// Partition runs the selection rules over one swimmer's records.
//
// Within a category, repeated event ids keep the highest score (earliest on
// equal scores) and the pool keeps the best cap records. Pools are then joined
// in canonical category order and the best maxSelected records are selected.
// Every sort is stable, so equal scores are resolved by category order first
// and by input order inside a category.
func Partition(records []model.PerformanceRecord, capPerCategory, maxSelected int) Trace {
	capPerCategory = max(capPerCategory, 0)
	maxSelected = max(maxSelected, 0)
	t := Trace{
		Dispositions: make([]Disposition, len(records)),
		Pools:        make(map[model.Category][]int, len(model.Categories)),
	}

	byCategory := make(map[model.Category][]int, len(model.Categories))
	for i, r := range records {
		if !r.Categorised() {
			t.Dispositions[i] = Uncategorised
			continue
		}
		byCategory[r.Category] = append(byCategory[r.Category], i)
	}

	candidates := make([]int, 0, len(records))
	for _, c := range model.Categories {
		idx := byCategory[c]
		if len(idx) == 0 {
			continue
		}

		res := dedupe.BestByKey(idx,
			func(i int) string { return records[i].EventID },
			func(a, b int) bool { return records[a].Score > records[b].Score },
		)
		for _, d := range res.Dropped {
			t.Dispositions[idx[d]] = Duplicate
		}
		pool := make([]int, len(res.Kept))
		for j, k := range res.Kept {
			pool[j] = idx[k]
		}
		sortByScore(records, pool)

		if len(pool) > capPerCategory {
			for _, i := range pool[capPerCategory:] {
				t.Dispositions[i] = CapExceeded
			}
			pool = pool[:capPerCategory]
		}
		if len(pool) == 0 {
			continue
		}
		t.Pools[c] = pool
		t.CategoriesRepresented++
		candidates = append(candidates, pool...)
	}

	sortByScore(records, candidates)
	n := min(maxSelected, len(candidates))
	for _, i := range candidates[n:] {
		t.Dispositions[i] = OutsideTopN
	}
	t.Selected = candidates[:n]
	for _, i := range t.Selected {
		t.Dispositions[i] = Selected
	}
	return t
}

func sortByScore(records []model.PerformanceRecord, idx []int) {
	sort.SliceStable(idx, func(a, b int) bool {
		return records[idx[a]].Score > records[idx[b]].Score
	})
}
