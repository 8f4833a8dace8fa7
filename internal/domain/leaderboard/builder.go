package leaderboard

import (
	"fmt"
	"sort"

	"github.com/okian/swimchamps/internal/domain/model"
	"github.com/okian/swimchamps/internal/domain/scoring"
	"github.com/okian/swimchamps/internal/domain/types"
)

// DefaultChampionshipMinCategories is the trophy eligibility threshold.
const DefaultChampionshipMinCategories = 5

// sexOrder fixes the order partitions are emitted in.
var sexOrder = map[model.SexCategory]int{ //nolint:gochecknoglobals // fixed ordering table
	model.SexFemale:   0,
	model.SexMaleOpen: 1,
	model.SexUnknown:  2,
}

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithAgeBuckets replaces the age bucket table.
func WithAgeBuckets(buckets []AgeBucket) Option {
	return func(b *Builder) {
		if len(buckets) > 0 {
			b.buckets = append([]AgeBucket(nil), buckets...)
		}
	}
}

// WithMinCategories sets the default eligibility filter. Zero disables it.
func WithMinCategories(n int) Option {
	return func(b *Builder) {
		if n >= 0 {
			b.minCategories = n
		}
	}
}

// WithChampionshipMinCategories sets the threshold behind the Eligible flag,
// the eligible-only view and the winners list.
func WithChampionshipMinCategories(n int) Option {
	return func(b *Builder) {
		if n >= 0 {
			b.championshipMin = n
		}
	}
}

// Builder turns selections into ranked leaderboards.
type Builder struct {
	buckets         []AgeBucket
	minCategories   int
	championshipMin int
}

// NewBuilder creates a Builder with the single-year bucket table, no default
// eligibility filter and the five-category championship threshold.
func NewBuilder(opts ...Option) (*Builder, error) {
	b := &Builder{
		buckets:         SingleYearBuckets(),
		championshipMin: DefaultChampionshipMinCategories,
	}
	for _, opt := range opts {
		opt(b)
	}
	if err := ValidateBuckets(b.buckets); err != nil {
		return nil, err
	}
	return b, nil
}

// Buckets returns a copy of the bucket table.
func (b *Builder) Buckets() []AgeBucket {
	return append([]AgeBucket(nil), b.buckets...)
}

// BucketLabel returns the label of the bucket age falls into.
func (b *Builder) BucketLabel(age int) string {
	return b.buckets[bucketFor(b.buckets, age)].Label
}

// ChampionshipMinCategories returns the trophy eligibility threshold.
func (b *Builder) ChampionshipMinCategories() int {
	return b.championshipMin
}

// Filter narrows a leaderboard query. Zero values mean "no restriction".
type Filter struct {
	// AgeBucket restricts output to one bucket label.
	AgeBucket string
	// SexCategory restricts output to one partition.
	SexCategory model.SexCategory
	// MinCategories overrides the builder's default eligibility filter.
	MinCategories *int
	// EligibleOnly applies the championship threshold.
	EligibleOnly bool
	// Limit caps the number of rows per partition.
	Limit int
}

type partitionKey struct {
	bucket int
	sex    model.SexCategory
}

// Build ranks selections within every age bucket and sex category partition.
// Rows are sorted by total descending then swimmer name, and ranked densely:
// equal totals share a rank and the next total takes the following rank.
// Partitions are emitted in bucket order, Female before Male/Open.
func (b *Builder) Build(selections []model.SwimmerSelection, f Filter) ([]types.LeaderboardEntry, error) {
	threshold, err := b.threshold(f)
	if err != nil {
		return nil, err
	}
	if f.Limit < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, f.Limit)
	}
	bucketFilter := -1
	if f.AgeBucket != "" {
		if bucketFilter = b.bucketIndex(f.AgeBucket); bucketFilter < 0 {
			return nil, fmt.Errorf("%w: %q", ErrUnknownAgeBucket, f.AgeBucket)
		}
	}

	parts := make(map[partitionKey][]types.LeaderboardEntry)
	for _, sel := range selections {
		idx := bucketFor(b.buckets, sel.Age)
		switch {
		case bucketFilter >= 0 && idx != bucketFilter:
			continue
		case f.SexCategory != "" && sel.SexCategory != f.SexCategory:
			continue
		case sel.CategoriesRepresented < threshold:
			continue
		}
		key := partitionKey{bucket: idx, sex: sel.SexCategory}
		parts[key] = append(parts[key], b.entry(sel, idx))
	}

	out := make([]types.LeaderboardEntry, 0, len(selections))
	for _, k := range sortedKeys(parts) {
		rows := parts[k]
		sortEntries(rows)
		assignRanksWithTies(rows)
		if f.Limit > 0 && len(rows) > f.Limit {
			rows = rows[:f.Limit]
		}
		out = append(out, rows...)
	}
	return out, nil
}

func (b *Builder) threshold(f Filter) (int, error) {
	threshold := b.minCategories
	if f.MinCategories != nil {
		if *f.MinCategories < 0 || *f.MinCategories > len(model.Categories) {
			return 0, fmt.Errorf("%w: %d", ErrInvalidMinimum, *f.MinCategories)
		}
		threshold = *f.MinCategories
	}
	if f.EligibleOnly {
		threshold = max(threshold, b.championshipMin)
	}
	return threshold, nil
}

func (b *Builder) bucketIndex(label string) int {
	for i, bk := range b.buckets {
		if bk.Label == label {
			return i
		}
	}
	return -1
}

func (b *Builder) entry(sel model.SwimmerSelection, bucket int) types.LeaderboardEntry {
	return types.LeaderboardEntry{
		AgeBucket:             b.buckets[bucket].Label,
		SwimmerName:           sel.SwimmerName,
		Age:                   sel.Age,
		SexCategory:           sel.SexCategory,
		Club:                  sel.Club,
		Totals:                scoring.Aggregate(sel),
		CategoriesRepresented: sel.CategoriesRepresented,
		Eligible:              sel.CategoriesRepresented >= b.championshipMin,
	}
}

func sexRank(s model.SexCategory) int {
	if r, ok := sexOrder[s]; ok {
		return r
	}
	return len(sexOrder)
}

func sortEntries(rows []types.LeaderboardEntry) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].TotalScore != rows[j].TotalScore {
			return rows[i].TotalScore > rows[j].TotalScore
		}
		return rows[i].SwimmerName < rows[j].SwimmerName
	})
}

// assignRanksWithTies assigns dense ranks to rows sorted by total descending.
func assignRanksWithTies(rows []types.LeaderboardEntry) {
	if len(rows) == 0 {
		return
	}

	currentRank := 1
	for i := 0; i < len(rows); i++ {
		rows[i].Rank = currentRank

		same := 1
		for j := i + 1; j < len(rows) && rows[j].TotalScore == rows[i].TotalScore; j++ {
			rows[j].Rank = currentRank
			same++
		}

		currentRank++
		i += same - 1
	}
}
