package service_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/swimchamps/internal/adapters/repository"
	service "github.com/okian/swimchamps/internal/app"
	"github.com/okian/swimchamps/internal/domain/leaderboard"
	"github.com/okian/swimchamps/internal/domain/model"
	"github.com/okian/swimchamps/internal/domain/scoring"
	"github.com/okian/swimchamps/internal/pipeline"
	"github.com/okian/swimchamps/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	_ = logger.SetLevelString("error")
}

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

// springOpen has one all-rounder, one sprinter and one swimmer who only
// entered a non-scoring event.
func springOpen() []model.PerformanceRecord {
	var recs []model.PerformanceRecord
	labels := []string{
		"Girls 50m Freestyle", "Girls 100m Freestyle", "Girls 100m Backstroke",
		"Girls 200m Breaststroke", "Girls 200m IM", "Girls 800m Freestyle",
	}
	for i, label := range labels {
		recs = append(recs, rec("Ada", 11, fmt.Sprint(i+1), label, 300+i*10))
	}
	for i := 0; i < 4; i++ {
		recs = append(recs, rec("Bea", 11, fmt.Sprint(10+i), "Girls 50m Butterfly", 500-i))
	}
	recs = append(recs, rec("Cat", 11, "99", "Girls Diving", 50))
	return recs
}

func started(opts ...service.Option) *service.Service {
	svc := service.New(opts...)
	if err := svc.Start(context.Background()); err != nil {
		panic(err)
	}
	return svc
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a service that has not started", t, func() {
		svc := service.New()
		_, err := svc.Leaderboard(context.Background(), "m", leaderboard.Filter{})
		So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		So(svc.GetStats()["started"], ShouldEqual, false)

		Convey("When started twice and stopped twice", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
			So(svc.Start(context.Background()), ShouldBeNil)
			So(svc.GetStats()["started"], ShouldEqual, true)
			svc.Stop()
			svc.Stop()
			So(svc.GetStats()["started"], ShouldEqual, false)

			Convey("Then it cannot be started again", func() {
				So(errors.Is(svc.Start(context.Background()), service.ErrStopped), ShouldBeTrue)
				_, err := svc.Meets(context.Background())
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})
		})
	})

	Convey("Given an invalid bucket table", t, func() {
		svc := service.New(service.WithAgeBuckets([]leaderboard.AgeBucket{{UpperBound: 9, Label: "9"}}))
		So(svc.Start(context.Background()), ShouldNotBeNil)
	})
}

func TestService_PutRecords(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service", t, func() {
		svc := started()
		Reset(svc.Stop)

		Convey("When a valid meet is put", func() {
			info, err := svc.PutRecords(ctx, " spring ", "Spring Open", springOpen())
			So(err, ShouldBeNil)

			Convey("Then a snapshot is described", func() {
				So(info.MeetID, ShouldEqual, "spring")
				So(info.Records, ShouldEqual, 11)
				meets, err := svc.Meets(ctx)
				So(err, ShouldBeNil)
				So(meets, ShouldHaveLength, 1)
				So(meets[0].ID, ShouldEqual, info.ID)
			})
		})

		Convey("When the meet has malformed records", func() {
			recs := springOpen()
			recs[0].Age = 0
			recs[3].Club = ""
			_, err := svc.PutRecords(ctx, "spring", "Spring Open", recs)

			Convey("Then the whole meet is rejected with every bad record", func() {
				So(errors.Is(err, model.ErrMalformedRecord), ShouldBeTrue)
				So(model.MalformedRecords(err), ShouldHaveLength, 2)
				_, err := svc.Leaderboard(ctx, "spring", leaderboard.Filter{})
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When the meet id or records are missing", func() {
			_, err := svc.PutRecords(ctx, " ", "x", springOpen())
			So(errors.Is(err, service.ErrInvalidMeetID), ShouldBeTrue)
			_, err = svc.PutRecords(ctx, "m", "x", nil)
			So(errors.Is(err, service.ErrEmptyMeet), ShouldBeTrue)
		})
	})
}

func TestService_Queries(t *testing.T) {
	ctx := context.Background()

	Convey("Given a stored meet", t, func() {
		svc := started()
		Reset(svc.Stop)
		_, err := svc.PutRecords(ctx, "spring", "Spring Open", springOpen())
		So(err, ShouldBeNil)

		Convey("When the default leaderboard is requested", func() {
			rows, err := svc.Leaderboard(ctx, "spring", leaderboard.Filter{})
			So(err, ShouldBeNil)

			Convey("Then every swimmer appears, zero totals included", func() {
				So(rows, ShouldHaveLength, 3)
				So(rows[0].SwimmerName, ShouldEqual, "Ada")
				So(rows[0].TotalScore, ShouldEqual, 300+310+320+330+340+350)
				So(rows[0].Eligible, ShouldBeTrue)
				So(rows[1].SwimmerName, ShouldEqual, "Bea")
				So(rows[1].TotalScore, ShouldEqual, 500+499+498)
				So(rows[2].SwimmerName, ShouldEqual, "Cat")
				So(rows[2].TotalScore, ShouldEqual, 0)
			})
		})

		Convey("When only eligible swimmers are requested", func() {
			rows, err := svc.Leaderboard(ctx, "spring", leaderboard.Filter{EligibleOnly: true})
			So(err, ShouldBeNil)
			So(rows, ShouldHaveLength, 1)
			So(rows[0].SwimmerName, ShouldEqual, "Ada")
		})

		Convey("When a swimmer is explained", func() {
			report, err := svc.Swimmer(ctx, "spring", "Bea")
			So(err, ShouldBeNil)

			Convey("Then the fourth sprint is cut by the young swimmer cap", func() {
				So(report.AgeBucket, ShouldEqual, "11")
				So(report.Selection.Cap, ShouldEqual, 3)
				So(report.Narrative.Excluded, ShouldHaveLength, 1)
				So(report.Narrative.Excluded[0].Reason, ShouldEqual, scoring.CapExceeded)
				So(report.Text, ShouldContainSubstring, "Not counted:")
				So(report.Records, ShouldHaveLength, 4)
			})
		})

		Convey("When an unknown swimmer or meet is requested", func() {
			_, err := svc.Swimmer(ctx, "spring", "Zed")
			So(errors.Is(err, service.ErrSwimmerNotFound), ShouldBeTrue)
			_, err = svc.Winners(ctx, "autumn")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("When the championship views are requested", func() {
			winners, err := svc.Winners(ctx, "spring")
			So(err, ShouldBeNil)
			So(winners, ShouldHaveLength, 1)
			So(winners[0].SwimmerName, ShouldEqual, "Ada")

			leaders, err := svc.CategoryLeaders(ctx, "spring")
			So(err, ShouldBeNil)
			So(leaders[0].Category, ShouldEqual, model.CategorySprint)
			So(leaders[0].SwimmerName, ShouldEqual, "Bea")

			summary, err := svc.Summary(ctx, "spring")
			So(err, ShouldBeNil)
			So(summary, ShouldHaveLength, 1)
			So(summary[0].Swimmers, ShouldEqual, 3)
			So(summary[0].Eligible, ShouldEqual, 1)

			strokes, err := svc.StrokeSpecialists(ctx, "spring")
			So(err, ShouldBeNil)
			So(strokes, ShouldHaveLength, 4)
			So(strokes[0].Stroke, ShouldEqual, model.StrokeFreestyle)
			So(strokes[0].SwimmerName, ShouldEqual, "Ada")
			So(strokes[0].AverageScore, ShouldEqual, 320)
			So(strokes[0].Events, ShouldEqual, 3)
			So(strokes[3].Stroke, ShouldEqual, model.StrokeButterfly)
			So(strokes[3].SwimmerName, ShouldEqual, "Bea")
			So(strokes[3].AverageScore, ShouldEqual, 498.5)
		})

		Convey("When the meet is replaced", func() {
			first, err := svc.Standings(ctx, "spring")
			So(err, ShouldBeNil)
			_, err = svc.PutRecords(ctx, "spring", "Spring Open", springOpen()[:6])
			So(err, ShouldBeNil)
			second, err := svc.Standings(ctx, "spring")
			So(err, ShouldBeNil)

			Convey("Then standings are recomputed from the new snapshot", func() {
				So(first, ShouldHaveLength, 3)
				So(second, ShouldHaveLength, 1)
			})
		})
	})
}

func TestService_ConcurrentReads(t *testing.T) {
	Convey("Given many concurrent readers of one meet", t, func() {
		ctx := context.Background()
		svc := started(service.WithWorkerCount(4))
		Reset(svc.Stop)
		_, err := svc.PutRecords(ctx, "spring", "Spring Open", springOpen())
		So(err, ShouldBeNil)

		var wg sync.WaitGroup
		totals := make([]int, 32)
		for i := range totals {
			wg.Add(1)
			go func() {
				defer wg.Done()
				rows, err := svc.Leaderboard(ctx, "spring", leaderboard.Filter{})
				if err == nil && len(rows) > 0 {
					totals[i] = rows[0].TotalScore
				}
			}()
		}
		wg.Wait()

		Convey("Then every reader sees the same standings", func() {
			for _, total := range totals {
				So(total, ShouldEqual, 1950)
			}
			So(svc.GetStats()["cachedMeets"], ShouldEqual, 1)
		})
	})
}

// bigMeet is large enough that computing its standings takes a while.
func bigMeet(swimmers int) []model.PerformanceRecord {
	labels := []string{
		"Girls 50m Freestyle", "Girls 100m Freestyle", "Girls 100m Backstroke",
		"Girls 200m Breaststroke", "Girls 200m IM", "Girls 800m Freestyle",
		"Girls 50m Butterfly", "Girls 100m Breaststroke", "Girls 400m IM",
		"Girls 1500m Freestyle",
	}
	recs := make([]model.PerformanceRecord, 0, swimmers*len(labels))
	for i := 0; i < swimmers; i++ {
		name := fmt.Sprintf("Swimmer %05d", i)
		for j, label := range labels {
			recs = append(recs, rec(name, 9+i%8, fmt.Sprint(j+1), label, (i*7+j*13)%900))
		}
	}
	return recs
}

func TestService_CancelledCallerDoesNotFailOthers(t *testing.T) {
	Convey("Given two callers waiting on the same standings", t, func() {
		ctx := context.Background()
		svc := started(service.WithWorkerCount(1), service.WithLogger(logger.Nop()))
		Reset(svc.Stop)
		_, err := svc.PutRecords(ctx, "big", "Big Meet", bigMeet(5000))
		So(err, ShouldBeNil)

		cancelCtx, cancel := context.WithCancel(ctx)
		var (
			wg         sync.WaitGroup
			errA, errB error
			rowsB      int
			bStarted   = make(chan struct{})
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, errA = svc.Standings(cancelCtx, "big")
		}()
		go func() {
			defer wg.Done()
			close(bStarted)
			var standings []pipeline.Standing
			standings, errB = svc.Standings(ctx, "big")
			rowsB = len(standings)
		}()
		<-bStarted
		time.Sleep(2 * time.Millisecond)
		cancel()
		wg.Wait()

		Convey("When the first caller is cancelled", func() {
			Convey("Then it sees its own cancellation or a result", func() {
				if errA != nil {
					So(errors.Is(errA, context.Canceled), ShouldBeTrue)
				}
			})

			Convey("Then the other caller still gets the standings", func() {
				So(errB, ShouldBeNil)
				So(rowsB, ShouldEqual, 5000)
			})

			Convey("Then the shared result is cached for later callers", func() {
				standings, err := svc.Standings(ctx, "big")
				So(err, ShouldBeNil)
				So(standings, ShouldHaveLength, 5000)
			})
		})
	})
}

func TestService_Options(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service with a custom policy, thresholds and a SQLite store", t, func() {
		store, err := repository.NewSQLiteStore(ctx, filepath.Join(t.TempDir(), "meets.db"))
		So(err, ShouldBeNil)

		policy := scoring.DefaultPolicy()
		policy.MaxSelected = 2
		svc := started(
			service.WithStore(store),
			service.WithPolicy(policy),
			service.WithAgeBuckets(leaderboard.PairedBuckets()),
			service.WithMinCategories(1),
			service.WithChampionshipMinCategories(2),
			service.WithLogger(logger.Nop()),
		)
		Reset(svc.Stop)
		_, err = svc.PutRecords(ctx, "spring", "Spring Open", springOpen())
		So(err, ShouldBeNil)

		rows, err := svc.Leaderboard(ctx, "spring", leaderboard.Filter{})
		So(err, ShouldBeNil)

		Convey("Then the options shape the leaderboard", func() {
			So(rows, ShouldHaveLength, 2)
			So(rows[0].AgeBucket, ShouldEqual, "11-12")
			So(rows[0].SwimmerName, ShouldEqual, "Bea")
			So(rows[0].EventCount, ShouldEqual, 2)
			So(rows[1].Eligible, ShouldBeTrue)
			So(svc.GetStats()["meets"], ShouldEqual, 1)
		})
	})
}
