package model

// SwimmerSelection is the per-swimmer result of the selection stage.
// It is always recomputed from the full record set, never patched.
type SwimmerSelection struct {
	SwimmerName string      `json:"swimmer_name"`
	Age         int         `json:"age"`
	SexCategory SexCategory `json:"sex_category"`
	Club        string      `json:"club"`

	// Selected holds at most MaxSelected records ordered by descending score.
	Selected []PerformanceRecord `json:"selected"`

	// CategoriesRepresented counts categories with a non-empty capped pool,
	// whether or not any of the pool survived the top-N cut.
	CategoriesRepresented int `json:"categories_represented"`

	// Cap and MaxSelected record the policy that produced this selection.
	Cap         int `json:"cap"`
	MaxSelected int `json:"max_selected"`
}

// Totals are the aggregate statistics of a selection.
type Totals struct {
	TotalScore     int              `json:"total_score"`
	AverageScore   float64          `json:"average_score"`
	BestScore      int              `json:"best_score"`
	EventCount     int              `json:"event_count"`
	CategoryCounts map[Category]int `json:"category_counts"`
	CategoryPoints map[Category]int `json:"category_points"`
}
