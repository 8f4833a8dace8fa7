// Package model contains domain models passed between layers.
package model

// Category is one of the six fixed scoring buckets an event can count towards.
type Category string

// Scoring categories. The declaration order is the canonical category order.
const (
	CategorySprint   Category = "Sprint"
	CategoryFree     Category = "Free"
	CategoryForm100  Category = "Form100"
	CategoryForm200  Category = "Form200"
	CategoryIM       Category = "IM"
	CategoryDistance Category = "Distance"
)

// Categories lists every scoring category in canonical order.
var Categories = []Category{ //nolint:gochecknoglobals // fixed category table
	CategorySprint,
	CategoryFree,
	CategoryForm100,
	CategoryForm200,
	CategoryIM,
	CategoryDistance,
}

// Valid reports whether c is one of the six scoring categories.
func (c Category) Valid() bool {
	return c.Index() >= 0
}

// Index returns the position of c in the canonical order, or -1.
func (c Category) Index() int {
	for i, known := range Categories {
		if known == c {
			return i
		}
	}
	return -1
}

// DisplayName returns the name used on printed scoreboards.
func (c Category) DisplayName() string {
	switch c {
	case CategoryForm100:
		return "100 Form"
	case CategoryForm200:
		return "200 Form"
	default:
		return string(c)
	}
}

// ParseCategory accepts either the canonical value or the display name.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if s == string(c) || s == c.DisplayName() {
			return c, true
		}
	}
	return "", false
}

// SexCategory partitions leaderboards. It is derived from event labels.
type SexCategory string

// Known sex categories.
const (
	SexFemale   SexCategory = "Female"
	SexMaleOpen SexCategory = "Male/Open"
	SexUnknown  SexCategory = "Unknown"
)

// ParseSexCategory maps loose user input ("female", "male", "open") to a SexCategory.
func ParseSexCategory(s string) (SexCategory, bool) {
	switch s {
	case "Female", "female", "F", "f", "girls", "Girls":
		return SexFemale, true
	case "Male/Open", "male/open", "Male", "male", "Open", "open", "M", "m", "boys", "Boys":
		return SexMaleOpen, true
	case "Unknown", "unknown":
		return SexUnknown, true
	}
	return "", false
}

// PerformanceRecord is one swimmer's result in one event.
// Records are values; stages copy and select them, never mutate them.
type PerformanceRecord struct {
	EventID     string      `json:"event_id" yaml:"event_id" validate:"required"`
	EventLabel  string      `json:"event_label" yaml:"event_label"`
	Category    Category    `json:"category,omitempty" yaml:"category,omitempty" validate:"omitempty,category"`
	SwimmerName string      `json:"swimmer_name" yaml:"swimmer_name" validate:"required,min=2"`
	Age         int         `json:"age" yaml:"age" validate:"gte=1,lte=99"`
	SexCategory SexCategory `json:"sex_category" yaml:"sex_category" validate:"required,oneof=Female Male/Open Unknown"`
	Club        string      `json:"club" yaml:"club" validate:"required,min=2"`
	TimeRaw     string      `json:"time_raw,omitempty" yaml:"time_raw,omitempty" validate:"omitempty,clocktime"`
	Score       int         `json:"score" yaml:"score" validate:"gte=0"`
}

// Categorised reports whether the record counts towards a scoring category.
func (r PerformanceRecord) Categorised() bool {
	return r.Category.Valid()
}
