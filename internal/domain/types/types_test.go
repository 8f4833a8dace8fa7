package types_test

import (
	"encoding/json"
	"testing"

	"github.com/okian/swimchamps/internal/domain/model"
	types "github.com/okian/swimchamps/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLeaderboardEntry(t *testing.T) {
	Convey("Given a LeaderboardEntry", t, func() {
		entry := types.LeaderboardEntry{
			Rank:        1,
			AgeBucket:   "11",
			SwimmerName: "Ada",
			Age:         11,
			SexCategory: model.SexFemale,
			Club:        "Otters",
			Totals: model.Totals{
				TotalScore: 2400,
				EventCount: 8,
				CategoryCounts: map[model.Category]int{
					model.CategorySprint: 3,
				},
			},
			CategoriesRepresented: 5,
			Eligible:              true,
		}

		Convey("When encoding to JSON", func() {
			raw, err := json.Marshal(entry)
			So(err, ShouldBeNil)

			var decoded map[string]any
			So(json.Unmarshal(raw, &decoded), ShouldBeNil)

			Convey("Then totals are flattened into the entry", func() {
				So(decoded["total_score"], ShouldEqual, float64(2400))
				So(decoded["event_count"], ShouldEqual, float64(8))
				So(decoded["sex_category"], ShouldEqual, "Female")
				So(decoded["eligible"], ShouldEqual, true)
				So(decoded["category_counts"], ShouldResemble, map[string]any{"Sprint": float64(3)})
			})
		})

		Convey("When creating an entry with zero values", func() {
			entry := types.LeaderboardEntry{}

			Convey("Then it should have default values", func() {
				So(entry.Rank, ShouldEqual, 0)
				So(entry.TotalScore, ShouldEqual, 0)
				So(entry.Eligible, ShouldBeFalse)
			})
		})
	})
}
