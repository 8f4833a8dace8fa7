// Package types contains the read shapes shared by the service, API and CLI.
package types

import (
	"github.com/okian/swimchamps/internal/domain/model"
	"github.com/okian/swimchamps/internal/domain/narrative"
)

// LeaderboardEntry is one ranked swimmer within an age bucket and sex category.
type LeaderboardEntry struct {
	Rank        int               `json:"rank"`
	AgeBucket   string            `json:"age_bucket"`
	SwimmerName string            `json:"swimmer_name"`
	Age         int               `json:"age"`
	SexCategory model.SexCategory `json:"sex_category"`
	Club        string            `json:"club"`
	model.Totals
	CategoriesRepresented int  `json:"categories_represented"`
	Eligible              bool `json:"eligible"`
}

// CategoryLeader is the swimmer with the most counted points in one category
// of one age bucket and sex category.
type CategoryLeader struct {
	AgeBucket   string            `json:"age_bucket"`
	SexCategory model.SexCategory `json:"sex_category"`
	Category    model.Category    `json:"category"`
	SwimmerName string            `json:"swimmer_name"`
	Club        string            `json:"club"`
	Points      int               `json:"points"`
	Events      int               `json:"events"`
}

// StrokeSpecialist is the swimmer with the best average score in one stroke
// of one age bucket and sex category.
type StrokeSpecialist struct {
	AgeBucket    string            `json:"age_bucket"`
	SexCategory  model.SexCategory `json:"sex_category"`
	Stroke       model.Stroke      `json:"stroke"`
	SwimmerName  string            `json:"swimmer_name"`
	Club         string            `json:"club"`
	AverageScore float64           `json:"average_score"`
	Events       int               `json:"events"`
}

// GroupSummary describes the field in one age bucket and sex category.
type GroupSummary struct {
	AgeBucket   string            `json:"age_bucket"`
	SexCategory model.SexCategory `json:"sex_category"`
	Swimmers    int               `json:"swimmers"`
	Eligible    int               `json:"eligible"`
	TopScore    int               `json:"top_score"`
	MeanTotal   float64           `json:"mean_total"`
	MedianTotal float64           `json:"median_total"`
	StdDevTotal float64           `json:"stddev_total"`
}

// SwimmerReport is everything known about one swimmer at one meet.
type SwimmerReport struct {
	MeetID    string                    `json:"meet_id"`
	AgeBucket string                    `json:"age_bucket"`
	Selection model.SwimmerSelection    `json:"selection"`
	Totals    model.Totals              `json:"totals"`
	Narrative narrative.Narrative       `json:"narrative"`
	Text      string                    `json:"text"`
	Records   []model.PerformanceRecord `json:"records"`
}
