package leaderboard

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/okian/swimchamps/internal/domain/category"
	"github.com/okian/swimchamps/internal/domain/dedupe"
	"github.com/okian/swimchamps/internal/domain/model"
	"github.com/okian/swimchamps/internal/domain/scoring"
	"github.com/okian/swimchamps/internal/domain/types"
)

// Winners returns the rank 1 swimmers of every partition of the eligible-only
// leaderboard. Tied winners are all returned.
func (b *Builder) Winners(selections []model.SwimmerSelection) ([]types.LeaderboardEntry, error) {
	rows, err := b.Build(selections, Filter{EligibleOnly: true})
	if err != nil {
		return nil, err
	}
	out := make([]types.LeaderboardEntry, 0, len(b.buckets)*2)
	for _, r := range rows {
		if r.Rank == 1 {
			out = append(out, r)
		}
	}
	return out, nil
}

// CategoryLeaders returns, for every age bucket, sex category and scoring
// category, the swimmer with the most counted points in that category.
// Categories where nobody scored are omitted. Ties go to the swimmer with more
// total points, then to the alphabetically first name.
func (b *Builder) CategoryLeaders(selections []model.SwimmerSelection) []types.CategoryLeader {
	type candidate struct {
		sel    model.SwimmerSelection
		totals model.Totals
	}
	parts := make(map[partitionKey][]candidate)
	for _, sel := range selections {
		key := partitionKey{bucket: bucketFor(b.buckets, sel.Age), sex: sel.SexCategory}
		parts[key] = append(parts[key], candidate{sel: sel, totals: scoring.Aggregate(sel)})
	}

	var out []types.CategoryLeader
	for _, key := range sortedKeys(parts) {
		for _, c := range model.Categories {
			var best *candidate
			for i := range parts[key] {
				cand := &parts[key][i]
				pts := cand.totals.CategoryPoints[c]
				if pts == 0 {
					continue
				}
				if best == nil || beats(cand.totals, cand.sel.SwimmerName, best.totals, best.sel.SwimmerName, c) {
					best = cand
				}
			}
			if best == nil {
				continue
			}
			out = append(out, types.CategoryLeader{
				AgeBucket:   b.buckets[key.bucket].Label,
				SexCategory: key.sex,
				Category:    c,
				SwimmerName: best.sel.SwimmerName,
				Club:        best.sel.Club,
				Points:      best.totals.CategoryPoints[c],
				Events:      best.totals.CategoryCounts[c],
			})
		}
	}
	return out
}

func beats(a model.Totals, aName string, b model.Totals, bName string, c model.Category) bool {
	switch {
	case a.CategoryPoints[c] != b.CategoryPoints[c]:
		return a.CategoryPoints[c] > b.CategoryPoints[c]
	case a.TotalScore != b.TotalScore:
		return a.TotalScore > b.TotalScore
	default:
		return aName < bName
	}
}

// Entrant pairs a swimmer's selection with every record they swam.
type Entrant struct {
	Selection model.SwimmerSelection
	Records   []model.PerformanceRecord
}

// StrokeSpecialists returns, for every age bucket, sex category and stroke,
// the swimmer with the highest average score over all their events in that
// stroke, counted or not. Repeated events count once at their best score and
// medleys are ignored. Strokes nobody scored in are omitted. Ties go to the
// swimmer with more total points, then to the alphabetically first name.
func (b *Builder) StrokeSpecialists(entrants []Entrant) []types.StrokeSpecialist {
	type candidate struct {
		sel    model.SwimmerSelection
		total  int
		avg    map[model.Stroke]float64
		events map[model.Stroke]int
	}
	parts := make(map[partitionKey][]candidate)
	for _, e := range entrants {
		key := partitionKey{bucket: bucketFor(b.buckets, e.Selection.Age), sex: e.Selection.SexCategory}
		c := candidate{
			sel:    e.Selection,
			total:  scoring.Aggregate(e.Selection).TotalScore,
			avg:    make(map[model.Stroke]float64, len(model.Strokes)),
			events: make(map[model.Stroke]int, len(model.Strokes)),
		}
		for stroke, scores := range strokeScores(e.Records) {
			c.avg[stroke] = stat.Mean(scores, nil)
			c.events[stroke] = len(scores)
		}
		parts[key] = append(parts[key], c)
	}

	var out []types.StrokeSpecialist
	for _, key := range sortedKeys(parts) {
		for _, stroke := range model.Strokes {
			var best *candidate
			for i := range parts[key] {
				cand := &parts[key][i]
				if cand.avg[stroke] <= 0 {
					continue
				}
				if best == nil || strokeBeats(cand.avg[stroke], cand.total, cand.sel.SwimmerName,
					best.avg[stroke], best.total, best.sel.SwimmerName) {
					best = cand
				}
			}
			if best == nil {
				continue
			}
			out = append(out, types.StrokeSpecialist{
				AgeBucket:    b.buckets[key.bucket].Label,
				SexCategory:  key.sex,
				Stroke:       stroke,
				SwimmerName:  best.sel.SwimmerName,
				Club:         best.sel.Club,
				AverageScore: best.avg[stroke],
				Events:       best.events[stroke],
			})
		}
	}
	return out
}

// strokeScores groups the best score of every distinct event by stroke.
func strokeScores(records []model.PerformanceRecord) map[model.Stroke][]float64 {
	res := dedupe.BestByKey(records,
		func(r model.PerformanceRecord) string { return r.EventID },
		func(a, b model.PerformanceRecord) bool { return a.Score > b.Score },
	)
	out := make(map[model.Stroke][]float64)
	for _, i := range res.Kept {
		if stroke, ok := category.StrokeOf(records[i].EventLabel); ok {
			out[stroke] = append(out[stroke], float64(records[i].Score))
		}
	}
	return out
}

func strokeBeats(aAvg float64, aTotal int, aName string, bAvg float64, bTotal int, bName string) bool {
	switch {
	case aAvg != bAvg:
		return aAvg > bAvg
	case aTotal != bTotal:
		return aTotal > bTotal
	default:
		return aName < bName
	}
}

// Summary describes every age bucket and sex category partition: field size,
// eligible count, top score and the spread of totals.
func (b *Builder) Summary(selections []model.SwimmerSelection) []types.GroupSummary {
	parts := make(map[partitionKey][]model.SwimmerSelection)
	for _, sel := range selections {
		key := partitionKey{bucket: bucketFor(b.buckets, sel.Age), sex: sel.SexCategory}
		parts[key] = append(parts[key], sel)
	}

	out := make([]types.GroupSummary, 0, len(parts))
	for _, key := range sortedKeys(parts) {
		sels := parts[key]
		totals := make([]float64, len(sels))
		gs := types.GroupSummary{
			AgeBucket:   b.buckets[key.bucket].Label,
			SexCategory: key.sex,
			Swimmers:    len(sels),
		}
		for i, sel := range sels {
			t := scoring.Aggregate(sel)
			totals[i] = float64(t.TotalScore)
			gs.TopScore = max(gs.TopScore, t.TotalScore)
			if sel.CategoriesRepresented >= b.championshipMin {
				gs.Eligible++
			}
		}
		sort.Float64s(totals)
		gs.MeanTotal = stat.Mean(totals, nil)
		gs.MedianTotal = median(totals)
		if len(totals) > 1 {
			gs.StdDevTotal = stat.StdDev(totals, nil)
		}
		out = append(out, gs)
	}
	return out
}

// median expects sorted input.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func sortedKeys[V any](parts map[partitionKey]V) []partitionKey {
	keys := make([]partitionKey, 0, len(parts))
	for k := range parts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].bucket != keys[j].bucket {
			return keys[i].bucket < keys[j].bucket
		}
		return sexRank(keys[i].sex) < sexRank(keys[j].sex)
	})
	return keys
}
