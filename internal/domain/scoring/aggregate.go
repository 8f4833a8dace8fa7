package scoring

import "github.com/okian/swimchamps/internal/domain/model"

// Aggregate derives totals from the selected records only. Every category has
// an entry in the per-category maps, zero when nothing counted there.
func Aggregate(sel model.SwimmerSelection) model.Totals {
	t := model.Totals{
		EventCount:     len(sel.Selected),
		CategoryCounts: make(map[model.Category]int, len(model.Categories)),
		CategoryPoints: make(map[model.Category]int, len(model.Categories)),
	}
	for _, c := range model.Categories {
		t.CategoryCounts[c] = 0
		t.CategoryPoints[c] = 0
	}
	for _, r := range sel.Selected {
		t.TotalScore += r.Score
		t.BestScore = max(t.BestScore, r.Score)
		t.CategoryCounts[r.Category]++
		t.CategoryPoints[r.Category] += r.Score
	}
	if t.EventCount > 0 {
		t.AverageScore = float64(t.TotalScore) / float64(t.EventCount)
	}
	return t
}
