// Package pipeline turns a meet's raw performance records into per-swimmer
// standings, scoring swimmers concurrently on a bounded pool of workers.
package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/swimchamps/internal/domain/category"
	"github.com/okian/swimchamps/internal/domain/model"
	"github.com/okian/swimchamps/internal/domain/scoring"
	"github.com/okian/swimchamps/pkg/logger"
	"github.com/okian/swimchamps/pkg/metrics"
)

// Standing is everything computed for one swimmer.
type Standing struct {
	Records   []model.PerformanceRecord
	Selection model.SwimmerSelection
	Totals    model.Totals
}

// Pipeline classifies, groups, selects and aggregates records.
type Pipeline struct {
	selector *scoring.Selector
	workers  int
	logger   logger.Logger
}

// New creates a Pipeline with the default selection policy and one worker per CPU.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		selector: scoring.NewSelector(),
		workers:  runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Get().Named("pipeline")
	}
	metrics.UpdateWorkerCount(p.workers)
	return p
}

// Selector returns the selector applied to every swimmer.
func (p *Pipeline) Selector() *scoring.Selector {
	return p.selector
}

// Run computes standings for every swimmer in records, ordered by swimmer
// name. Records are normalized first; if any is malformed nothing is scored
// and the returned error lists every offending record. Selection for one
// swimmer never observes another swimmer's records, and Run returns only once
// all swimmers are done.
func (p *Pipeline) Run(ctx context.Context, records []model.PerformanceRecord) ([]Standing, error) {
	start := time.Now()

	normalized, err := category.Normalize(records)
	if err != nil {
		bad := model.MalformedRecords(err)
		metrics.RecordRecordsRejected(len(bad))
		metrics.RecordErrorByComponent("pipeline", "malformed_record")
		return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}

	groups := groupBySwimmer(normalized)
	out := make([]Standing, len(groups))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, recs := range groups {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sel, err := p.selector.Select(recs)
			if err != nil {
				return fmt.Errorf("select %q: %w", recs[0].SwimmerName, err)
			}
			out[i] = Standing{Records: recs, Selection: sel, Totals: scoring.Aggregate(sel)}
			recordDispositions(recs, sel)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		metrics.RecordErrorByComponent("pipeline", "selection_failed")
		p.logger.Error(ctx, "standings computation failed", logger.Error(err))
		return nil, err
	}

	took := time.Since(start)
	metrics.RecordStandingsComputed(float64(took.Microseconds())/1000, len(out))
	p.logger.Debug(ctx, "standings computed",
		logger.Int("records", len(normalized)),
		logger.Int("swimmers", len(out)),
		logger.Duration("took", took),
	)
	return out, nil
}

// Selections projects standings onto their selections.
func Selections(standings []Standing) []model.SwimmerSelection {
	out := make([]model.SwimmerSelection, len(standings))
	for i, s := range standings {
		out[i] = s.Selection
	}
	return out
}

// Find returns the standing for name.
func Find(standings []Standing, name string) (Standing, bool) {
	i := sort.Search(len(standings), func(i int) bool {
		return standings[i].Selection.SwimmerName >= name
	})
	if i < len(standings) && standings[i].Selection.SwimmerName == name {
		return standings[i], true
	}
	return Standing{}, false
}

// groupBySwimmer keeps input order inside each group and orders groups by name.
func groupBySwimmer(records []model.PerformanceRecord) [][]model.PerformanceRecord {
	byName := make(map[string][]model.PerformanceRecord)
	for _, r := range records {
		byName[r.SwimmerName] = append(byName[r.SwimmerName], r)
	}
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([][]model.PerformanceRecord, len(names))
	for i, name := range names {
		out[i] = byName[name]
	}
	return out
}

func recordDispositions(records []model.PerformanceRecord, sel model.SwimmerSelection) {
	counts := make(map[scoring.Disposition]int, 4)
	for _, d := range scoring.Explain(records, sel).Dispositions {
		counts[d]++
	}
	for d, n := range counts {
		if d == scoring.Selected {
			metrics.RecordEventsSelected(n)
			continue
		}
		metrics.RecordEventsExcluded(d.String(), n)
	}
}
