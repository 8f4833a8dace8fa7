package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/swimchamps/internal/domain/model"
	"github.com/okian/swimchamps/internal/domain/scoring"
	"github.com/okian/swimchamps/internal/pipeline"
	"github.com/okian/swimchamps/pkg/logger"
)

func rec(name string, age int, eventID, label string, score int) model.PerformanceRecord {
	return model.PerformanceRecord{
		EventID:     eventID,
		EventLabel:  label,
		SwimmerName: name,
		Age:         age,
		Club:        "Otters SC",
		Score:       score,
	}
}

func meet() []model.PerformanceRecord {
	return []model.PerformanceRecord{
		rec("Zed", 14, "1", "Boys 50m Freestyle", 300),
		rec("Ada", 11, "2", "Girls 50m Backstroke", 410),
		rec("Zed", 14, "3", "Boys 50m Butterfly", 280),
		rec("Ada", 11, "4", "Girls 50m Freestyle", 400),
		rec("Ada", 11, "5", "Girls 50m Breaststroke", 390),
		rec("Zed", 14, "6", "Boys 50m Backstroke", 250),
		rec("Ada", 11, "7", "Girls 50m Butterfly", 380),
		rec("Ada", 11, "8", "Girls 200m IM", 500),
		rec("Zed", 14, "9", "Boys 400m Freestyle", 350),
		rec("Ada", 11, "10", "Girls Diving", 999),
	}
}

func TestPipeline_Run(t *testing.T) {
	ctx := context.Background()

	Convey("Given a pipeline with the default policy", t, func() {
		p := pipeline.New(pipeline.WithLogger(logger.Nop()), pipeline.WithWorkerCount(2))

		Convey("When scoring a meet", func() {
			standings, err := p.Run(ctx, meet())
			So(err, ShouldBeNil)

			Convey("Then swimmers are returned in name order", func() {
				So(standings, ShouldHaveLength, 2)
				So(standings[0].Selection.SwimmerName, ShouldEqual, "Ada")
				So(standings[1].Selection.SwimmerName, ShouldEqual, "Zed")
			})

			Convey("Then each swimmer only sees their own records", func() {
				for _, st := range standings {
					for _, r := range st.Records {
						So(r.SwimmerName, ShouldEqual, st.Selection.SwimmerName)
					}
				}
				So(standings[0].Records, ShouldHaveLength, 6)
			})

			Convey("Then the age cap applies per swimmer", func() {
				ada, zed := standings[0], standings[1]
				So(ada.Selection.Cap, ShouldEqual, 3)
				So(ada.Totals.CategoryCounts[model.CategorySprint], ShouldEqual, 3)
				So(ada.Totals.TotalScore, ShouldEqual, 410+400+390+500)

				So(zed.Selection.Cap, ShouldEqual, 2)
				So(zed.Totals.CategoryCounts[model.CategorySprint], ShouldEqual, 2)
				So(zed.Totals.TotalScore, ShouldEqual, 300+280+350)
			})

			Convey("Then categories and sex were derived from labels", func() {
				So(standings[0].Selection.SexCategory, ShouldEqual, model.SexFemale)
				So(standings[1].Selection.SexCategory, ShouldEqual, model.SexMaleOpen)
				So(standings[0].Records[4].Category, ShouldEqual, model.CategoryIM)
			})

			Convey("Then Find locates swimmers by exact name", func() {
				st, ok := pipeline.Find(standings, "Zed")
				So(ok, ShouldBeTrue)
				So(st.Selection.SwimmerName, ShouldEqual, "Zed")
				_, ok = pipeline.Find(standings, "Bob")
				So(ok, ShouldBeFalse)
				So(pipeline.Selections(standings), ShouldHaveLength, 2)
			})
		})

		Convey("When the input is empty", func() {
			standings, err := p.Run(ctx, nil)
			So(err, ShouldBeNil)
			So(standings, ShouldBeEmpty)
		})
	})

	Convey("Given malformed records", t, func() {
		p := pipeline.New(pipeline.WithLogger(logger.Nop()))
		records := meet()
		records[1].Age = 0
		records[4].Club = ""

		_, err := p.Run(ctx, records)

		Convey("Then nothing is scored and every bad record is reported", func() {
			So(errors.Is(err, pipeline.ErrMalformedInput), ShouldBeTrue)
			So(errors.Is(err, model.ErrMalformedRecord), ShouldBeTrue)
			So(model.MalformedRecords(err), ShouldHaveLength, 2)
		})
	})

	Convey("Given a cancelled context", t, func() {
		p := pipeline.New(pipeline.WithLogger(logger.Nop()))
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := p.Run(cctx, meet())
		So(errors.Is(err, context.Canceled), ShouldBeTrue)
	})

	Convey("Given a custom selector", t, func() {
		p := pipeline.New(
			pipeline.WithLogger(logger.Nop()),
			pipeline.WithSelector(scoring.NewSelector(scoring.WithMaxSelected(1))),
		)
		standings, err := p.Run(ctx, meet())
		So(err, ShouldBeNil)
		So(standings[0].Selection.Selected, ShouldHaveLength, 1)
		So(standings[0].Totals.BestScore, ShouldEqual, 500)
	})
}

func TestPipeline_Deterministic(t *testing.T) {
	Convey("Given a large meet scored with different worker counts", t, func() {
		var records []model.PerformanceRecord
		labels := []string{"50m Freestyle", "100m Backstroke", "200m Breaststroke", "200m IM", "400m Freestyle", "800m Freestyle"}
		for s := 0; s < 40; s++ {
			for e, label := range labels {
				for heat := 0; heat < 3; heat++ {
					records = append(records, rec(
						fmt.Sprintf("Swimmer %02d", s), 9+s%9,
						fmt.Sprintf("%d-%d", e, heat), "Mixed "+label,
						(s*37+e*11+heat*5)%200,
					))
				}
			}
		}

		one, err := pipeline.New(pipeline.WithLogger(logger.Nop()), pipeline.WithWorkerCount(1)).Run(context.Background(), records)
		So(err, ShouldBeNil)
		many, err := pipeline.New(pipeline.WithLogger(logger.Nop()), pipeline.WithWorkerCount(16)).Run(context.Background(), records)
		So(err, ShouldBeNil)

		Convey("Then the standings are identical", func() {
			So(cmp.Diff(one, many), ShouldBeEmpty)
		})
	})
}
