package repository_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/swimchamps/internal/adapters/repository"
	"github.com/okian/swimchamps/internal/domain/model"
)

func records(n int, name string) []model.PerformanceRecord {
	out := make([]model.PerformanceRecord, n)
	for i := range out {
		out[i] = model.PerformanceRecord{
			EventID:     fmt.Sprint(i + 1),
			EventLabel:  "Girls 50m Freestyle",
			Category:    model.CategorySprint,
			SwimmerName: name,
			Age:         11,
			SexCategory: model.SexFemale,
			Club:        "Otters SC",
			TimeRaw:     "00:00:34.56",
			Score:       100 + i,
		}
	}
	return out
}

func snapshot(meetID, name string, recs []model.PerformanceRecord) repository.Snapshot {
	return repository.Snapshot{ID: uuid.New(), MeetID: meetID, Name: name, Records: recs}
}

type factory func(opts ...repository.Option) (repository.Store, error)

func stores(t *testing.T) map[string]factory {
	return map[string]factory{
		"memory": func(opts ...repository.Option) (repository.Store, error) {
			return repository.NewInMemoryStore(opts...), nil
		},
		"sqlite": func(opts ...repository.Option) (repository.Store, error) {
			path := filepath.Join(t.TempDir(), "meets.db")
			return repository.NewSQLiteStore(context.Background(), path, opts...)
		},
	}
}

func TestStoreContract(t *testing.T) {
	ctx := context.Background()

	for kind, newStore := range stores(t) {
		Convey("Given an empty "+kind+" store", t, func() {
			store, err := newStore()
			So(err, ShouldBeNil)
			Reset(func() { _ = store.Close() })

			Convey("Then unknown meets are not found", func() {
				_, err := store.Latest(ctx, "nope")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
				So(store.Count(ctx), ShouldEqual, 0)
				list, err := store.List(ctx)
				So(err, ShouldBeNil)
				So(list, ShouldBeEmpty)
			})

			Convey("Then invalid snapshots are rejected", func() {
				err := store.Put(ctx, repository.Snapshot{MeetID: "m1"})
				So(errors.Is(err, repository.ErrInvalidSnapshot), ShouldBeTrue)
				err = store.Put(ctx, repository.Snapshot{ID: uuid.New()})
				So(errors.Is(err, repository.ErrInvalidSnapshot), ShouldBeTrue)
			})

			Convey("When a meet is stored", func() {
				snap := snapshot("spring-open", "Spring Open", records(3, "Ada"))
				So(store.Put(ctx, snap), ShouldBeNil)

				Convey("Then it reads back in order with every field", func() {
					got, err := store.Latest(ctx, "spring-open")
					So(err, ShouldBeNil)
					So(got.ID, ShouldEqual, snap.ID)
					So(got.Name, ShouldEqual, "Spring Open")
					So(got.CreatedAt.IsZero(), ShouldBeFalse)
					So(got.Records, ShouldResemble, snap.Records)
				})

				Convey("Then the caller's slice is not shared", func() {
					snap.Records[0].Score = -1
					got, err := store.Latest(ctx, "spring-open")
					So(err, ShouldBeNil)
					So(got.Records[0].Score, ShouldEqual, 100)
				})

				Convey("And a new version is stored", func() {
					next := snapshot("spring-open", "Spring Open (final)", records(5, "Ada"))
					So(store.Put(ctx, next), ShouldBeNil)
					So(store.Put(ctx, snapshot("autumn", "Autumn", records(1, "Bea"))), ShouldBeNil)

					Convey("Then Latest returns the newest version", func() {
						got, err := store.Latest(ctx, "spring-open")
						So(err, ShouldBeNil)
						So(got.ID, ShouldEqual, next.ID)
						So(got.Records, ShouldHaveLength, 5)
					})

					Convey("Then List describes each meet once, ordered by id", func() {
						list, err := store.List(ctx)
						So(err, ShouldBeNil)
						So(list, ShouldHaveLength, 2)
						So(list[0].MeetID, ShouldEqual, "autumn")
						So(list[1].MeetID, ShouldEqual, "spring-open")
						So(list[1].Records, ShouldEqual, 5)
						So(list[1].Versions, ShouldEqual, 2)
						So(store.Count(ctx), ShouldEqual, 2)
					})
				})
			})
		})

		Convey("Given a "+kind+" store keeping two versions", t, func() {
			fixed := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
			store, err := newStore(repository.WithMaxVersions(2), repository.WithClock(func() time.Time { return fixed }))
			So(err, ShouldBeNil)
			Reset(func() { _ = store.Close() })

			for i := 1; i <= 4; i++ {
				So(store.Put(ctx, snapshot("m", fmt.Sprint("v", i), records(i, "Ada"))), ShouldBeNil)
			}

			Convey("Then older versions are pruned", func() {
				list, err := store.List(ctx)
				So(err, ShouldBeNil)
				So(list[0].Versions, ShouldEqual, 2)
				So(list[0].Name, ShouldEqual, "v4")
				So(list[0].CreatedAt.Equal(fixed), ShouldBeTrue)
			})
		})
	}
}

func TestInMemoryStore_Concurrent(t *testing.T) {
	Convey("Given concurrent writers and readers", t, func() {
		ctx := context.Background()
		store := repository.NewInMemoryStore()
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				_ = store.Put(ctx, snapshot(fmt.Sprint("meet-", i%4), "x", records(2, "Ada")))
			}()
			go func() {
				defer wg.Done()
				_, _ = store.Latest(ctx, fmt.Sprint("meet-", i%4))
			}()
		}
		wg.Wait()

		So(store.Count(ctx), ShouldEqual, 4)
		So(store.Close(), ShouldBeNil)
		_, err := store.Latest(ctx, "meet-0")
		So(errors.Is(err, repository.ErrClosed), ShouldBeTrue)
		So(errors.Is(store.Put(ctx, snapshot("m", "x", nil)), repository.ErrClosed), ShouldBeTrue)
	})
}

func TestSQLiteStore_Reopen(t *testing.T) {
	Convey("Given a database file written by one store", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "meets.db")
		first, err := repository.NewSQLiteStore(ctx, path)
		So(err, ShouldBeNil)
		snap := snapshot("m", "Meet", records(2, "Ada"))
		So(first.Put(ctx, snap), ShouldBeNil)
		So(first.Close(), ShouldBeNil)

		Convey("Then a second store migrates idempotently and sees the data", func() {
			second, err := repository.NewSQLiteStore(ctx, path)
			So(err, ShouldBeNil)
			defer second.Close()
			got, err := second.Latest(ctx, "m")
			So(err, ShouldBeNil)
			So(got.ID, ShouldEqual, snap.ID)
			So(got.Records, ShouldResemble, snap.Records)
		})
	})

	Convey("Given an in-memory database", t, func() {
		store, err := repository.NewSQLiteStore(context.Background(), ":memory:")
		So(err, ShouldBeNil)
		defer store.Close()
		So(store.Put(context.Background(), snapshot("m", "x", records(1, "Ada"))), ShouldBeNil)
		So(store.Count(context.Background()), ShouldEqual, 1)
	})
}
