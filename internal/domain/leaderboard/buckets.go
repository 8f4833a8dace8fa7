// Package leaderboard ranks swimmer selections within age buckets and sex
// categories and derives the championship views built on those rankings.
package leaderboard

import (
	"fmt"
	"strconv"
)

// AgeBucket is one row of the age bucket table. A swimmer falls into the first
// bucket whose UpperBound is >= their age. An UpperBound of 0 marks the
// open-ended catch-all bucket, which must be last.
type AgeBucket struct {
	UpperBound int    `json:"upper_bound" yaml:"upper_bound" koanf:"upper_bound"`
	Label      string `json:"label" yaml:"label" koanf:"label"`
}

// Open reports whether the bucket has no upper bound.
func (b AgeBucket) Open() bool {
	return b.UpperBound == 0
}

// Bucket table presets.
const (
	PresetSingleYear = "single-year"
	PresetPaired     = "paired"
)

// SingleYearBuckets returns one bucket per age from 9 to 15 and a "16+" bucket.
func SingleYearBuckets() []AgeBucket {
	out := make([]AgeBucket, 0, 8)
	for age := 9; age <= 15; age++ {
		out = append(out, AgeBucket{UpperBound: age, Label: strconv.Itoa(age)})
	}
	return append(out, AgeBucket{Label: "16+"})
}

// PairedBuckets returns the two-year groups used on printed scoreboards.
func PairedBuckets() []AgeBucket {
	return []AgeBucket{
		{UpperBound: 10, Label: "9-10"},
		{UpperBound: 12, Label: "11-12"},
		{UpperBound: 14, Label: "13-14"},
		{UpperBound: 16, Label: "15-16"},
		{Label: "17+"},
	}
}

// PresetBuckets returns the named bucket table.
func PresetBuckets(name string) ([]AgeBucket, error) {
	switch name {
	case "", PresetSingleYear:
		return SingleYearBuckets(), nil
	case PresetPaired:
		return PairedBuckets(), nil
	}
	return nil, fmt.Errorf("%w: unknown preset %q", ErrInvalidBuckets, name)
}

// ValidateBuckets checks that bounds strictly increase, labels are unique, and
// exactly the last bucket is open-ended.
func ValidateBuckets(buckets []AgeBucket) error {
	if len(buckets) == 0 {
		return fmt.Errorf("%w: empty table", ErrInvalidBuckets)
	}
	labels := make(map[string]bool, len(buckets))
	prev := 0
	for i, b := range buckets {
		last := i == len(buckets)-1
		switch {
		case b.Label == "":
			return fmt.Errorf("%w: bucket %d has no label", ErrInvalidBuckets, i)
		case labels[b.Label]:
			return fmt.Errorf("%w: duplicate label %q", ErrInvalidBuckets, b.Label)
		case last && !b.Open():
			return fmt.Errorf("%w: last bucket %q must be open-ended", ErrInvalidBuckets, b.Label)
		case !last && b.Open():
			return fmt.Errorf("%w: only the last bucket may be open-ended, not %q", ErrInvalidBuckets, b.Label)
		case !last && b.UpperBound <= prev:
			return fmt.Errorf("%w: bucket %q bound %d does not increase", ErrInvalidBuckets, b.Label, b.UpperBound)
		}
		labels[b.Label] = true
		prev = b.UpperBound
	}
	return nil
}

// bucketFor returns the index of the bucket for age in a validated table.
func bucketFor(buckets []AgeBucket, age int) int {
	for i, b := range buckets {
		if b.Open() || age <= b.UpperBound {
			return i
		}
	}
	return len(buckets) - 1
}
