package file_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/swimchamps/internal/adapters/file"
	"github.com/okian/swimchamps/internal/domain/model"
)

const springYAML = `meet: spring
name: Spring Open
records:
  - event_id: "1"
    event_label: Girls 50m Freestyle
    swimmer_name: Ada
    age: 11
    club: Otters SC
    time_raw: "00:00:34.56"
    score: 310
`

const autumnJSON = `{"meet":"autumn","records":[
  {"event_id":"7","event_label":"Boys 200m IM","swimmer_name":"Ben","age":13,"club":"Seals","score":250}]}`

func write(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	Convey("Given a directory of snapshot files", t, func() {
		dir := t.TempDir()
		write(t, dir, "2026/spring.yaml", springYAML)
		write(t, dir, "2026/nested/autumn.json", autumnJSON)
		write(t, dir, "2026/untitled.yml", "records:\n  - event_id: \"9\"\n    swimmer_name: Cy\n    age: 9\n    club: Otters\n    score: 1\n")
		write(t, dir, "notes.txt", "ignored")

		Convey("When globbing recursively", func() {
			docs, err := file.Load(ctx, filepath.Join(dir, "**", "*.{yaml,yml,json}"))
			So(err, ShouldBeNil)

			Convey("Then every file is decoded in path order", func() {
				So(docs, ShouldHaveLength, 3)
				So(docs[0].Meet, ShouldEqual, "autumn")
				So(docs[0].Records[0].SwimmerName, ShouldEqual, "Ben")
				So(docs[1].Meet, ShouldEqual, "spring")
				So(docs[1].Name, ShouldEqual, "Spring Open")
				So(docs[1].Records[0].TimeRaw, ShouldEqual, "00:00:34.56")
				So(docs[1].Records[0].Score, ShouldEqual, 310)
			})

			Convey("Then a document without a meet id takes its file name", func() {
				So(docs[2].Meet, ShouldEqual, "untitled")
				So(strings.HasSuffix(docs[2].Path, "untitled.yml"), ShouldBeTrue)
			})

			Convey("Then records from several meets need a meet id", func() {
				_, _, err := file.Records(docs, "")
				So(errors.Is(err, file.ErrAmbiguousMeet), ShouldBeTrue)

				meet, recs, err := file.Records(docs, "spring")
				So(err, ShouldBeNil)
				So(meet, ShouldEqual, "spring")
				So(recs, ShouldHaveLength, 1)

				_, _, err = file.Records(docs, "winter")
				So(errors.Is(err, os.ErrNotExist), ShouldBeTrue)
			})
		})

		Convey("When loading a single path", func() {
			docs, err := file.Load(ctx, filepath.Join(dir, "2026", "spring.yaml"))
			So(err, ShouldBeNil)
			meet, recs, err := file.Records(docs, "")
			So(err, ShouldBeNil)
			So(meet, ShouldEqual, "spring")
			So(recs[0].Category, ShouldEqual, model.Category(""))
		})

		Convey("When nothing matches", func() {
			_, err := file.Load(ctx, filepath.Join(dir, "*.csv"))
			So(errors.Is(err, file.ErrNoMatches), ShouldBeTrue)
		})

		Convey("When a file has unknown fields or an unknown type", func() {
			bad := write(t, dir, "bad.yaml", "meet: x\nrecord: []\n")
			_, err := file.ReadFile(bad)
			So(errors.Is(err, file.ErrDecode), ShouldBeTrue)

			txt := filepath.Join(dir, "notes.txt")
			_, err = file.ReadFile(txt)
			So(errors.Is(err, file.ErrUnsupportedType), ShouldBeTrue)
		})
	})
}

func TestWriteFile(t *testing.T) {
	Convey("Given a document", t, func() {
		doc := file.Document{Meet: "m", Name: "Meet", Records: []model.PerformanceRecord{{
			EventID: "1", EventLabel: "Girls 50m Freestyle", SwimmerName: "Ada", Age: 11, Club: "Otters SC", Score: 5,
		}}}
		dir := t.TempDir()

		for _, ext := range []string{".yaml", ".json"} {
			Convey("Then it survives a "+ext+" file", func() {
				p := filepath.Join(dir, "meet"+ext)
				So(file.WriteFile(p, doc), ShouldBeNil)
				got, err := file.ReadFile(p)
				So(err, ShouldBeNil)
				So(got.Records, ShouldResemble, doc.Records)
				So(got.Name, ShouldEqual, "Meet")
			})
		}

		Convey("Then unknown extensions are refused", func() {
			err := file.WriteFile(filepath.Join(dir, "meet.csv"), doc)
			So(errors.Is(err, file.ErrUnsupportedType), ShouldBeTrue)
		})
	})
}
