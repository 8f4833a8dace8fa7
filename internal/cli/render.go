package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/okian/swimchamps/internal/domain/model"
	"github.com/okian/swimchamps/internal/domain/types"
)

type styles struct {
	title    lipgloss.Style
	header   lipgloss.Style
	eligible lipgloss.Style
	dim      lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		header:   lipgloss.NewStyle().Bold(true),
		eligible: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		dim:      lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

type renderer struct {
	w   io.Writer
	st  styles
	err error
}

// render writes v as indented JSON, or calls console for terminal output.
func render(w io.Writer, format string, v any, console func(*renderer)) error {
	if format == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	r := &renderer{w: w, st: newStyles()}
	console(r)
	return r.err
}

func (r *renderer) println(s string) {
	if r.err == nil {
		_, r.err = fmt.Fprintln(r.w, s)
	}
}

// column describes one table column; numeric columns align right.
type column struct {
	title   string
	numeric bool
}

// table prints rows padded to the widest cell of each column.
func (r *renderer) table(cols []column, rows [][]string, highlight func(i int) *lipgloss.Style) {
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = lipgloss.Width(c.title)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}
	cell := func(i int, s string, base lipgloss.Style) string {
		st := base.Width(widths[i])
		if cols[i].numeric {
			st = st.Align(lipgloss.Right)
		}
		return st.Render(s)
	}

	head := make([]string, len(cols))
	for i, c := range cols {
		head[i] = cell(i, c.title, r.st.header)
	}
	r.println(strings.Join(head, "  "))
	for n, row := range rows {
		base := lipgloss.NewStyle()
		if highlight != nil {
			if st := highlight(n); st != nil {
				base = *st
			}
		}
		out := make([]string, len(row))
		for i, s := range row {
			out[i] = cell(i, s, base)
		}
		r.println(strings.Join(out, "  "))
	}
}

func (r *renderer) partition(bucket string, sex model.SexCategory) {
	r.println("")
	r.println(r.st.title.Render(fmt.Sprintf("Age %s - %s", bucket, sex)))
}

// groupBy splits rows into runs sharing a partition key, keeping order.
func groupBy[T any](rows []T, key func(T) string) [][]T {
	var out [][]T
	for i, row := range rows {
		if i == 0 || key(rows[i-1]) != key(row) {
			out = append(out, nil)
		}
		out[len(out)-1] = append(out[len(out)-1], row)
	}
	return out
}

func (r *renderer) leaderboard(rows []types.LeaderboardEntry) {
	if len(rows) == 0 {
		r.println(r.st.dim.Render("No swimmers match."))
		return
	}
	cols := []column{
		{title: "Rank", numeric: true}, {title: "Swimmer"}, {title: "Age", numeric: true},
		{title: "Club"}, {title: "Total", numeric: true}, {title: "Events", numeric: true},
		{title: "Cats", numeric: true}, {title: "Eligible"},
	}
	key := func(e types.LeaderboardEntry) string { return e.AgeBucket + "|" + string(e.SexCategory) }
	for _, group := range groupBy(rows, key) {
		r.partition(group[0].AgeBucket, group[0].SexCategory)
		cells := make([][]string, len(group))
		for i, e := range group {
			eligible := ""
			if e.Eligible {
				eligible = "yes"
			}
			cells[i] = []string{
				strconv.Itoa(e.Rank), e.SwimmerName, strconv.Itoa(e.Age), e.Club,
				strconv.Itoa(e.TotalScore), strconv.Itoa(e.EventCount),
				strconv.Itoa(e.CategoriesRepresented), eligible,
			}
		}
		r.table(cols, cells, func(i int) *lipgloss.Style {
			if group[i].Eligible {
				return &r.st.eligible
			}
			return nil
		})
	}
}

func (r *renderer) leaders(rows []types.CategoryLeader) {
	if len(rows) == 0 {
		r.println(r.st.dim.Render("Nobody scored."))
		return
	}
	cols := []column{{title: "Category"}, {title: "Swimmer"}, {title: "Club"}, {title: "Points", numeric: true}, {title: "Events", numeric: true}}
	key := func(l types.CategoryLeader) string { return l.AgeBucket + "|" + string(l.SexCategory) }
	for _, group := range groupBy(rows, key) {
		r.partition(group[0].AgeBucket, group[0].SexCategory)
		cells := make([][]string, len(group))
		for i, l := range group {
			cells[i] = []string{l.Category.DisplayName(), l.SwimmerName, l.Club, strconv.Itoa(l.Points), strconv.Itoa(l.Events)}
		}
		r.table(cols, cells, nil)
	}
}

func (r *renderer) strokes(rows []types.StrokeSpecialist) {
	if len(rows) == 0 {
		r.println(r.st.dim.Render("Nobody scored."))
		return
	}
	cols := []column{{title: "Stroke"}, {title: "Swimmer"}, {title: "Club"}, {title: "Avg Points", numeric: true}, {title: "Events", numeric: true}}
	key := func(s types.StrokeSpecialist) string { return s.AgeBucket + "|" + string(s.SexCategory) }
	for _, group := range groupBy(rows, key) {
		r.partition(group[0].AgeBucket, group[0].SexCategory)
		cells := make([][]string, len(group))
		for i, s := range group {
			cells[i] = []string{string(s.Stroke), s.SwimmerName, s.Club, fmt.Sprintf("%.1f", s.AverageScore), strconv.Itoa(s.Events)}
		}
		r.table(cols, cells, nil)
	}
}

func (r *renderer) summary(rows []types.GroupSummary) {
	cols := []column{
		{title: "Age"}, {title: "Sex"}, {title: "Swimmers", numeric: true}, {title: "Eligible", numeric: true},
		{title: "Top", numeric: true}, {title: "Mean", numeric: true}, {title: "Median", numeric: true}, {title: "StdDev", numeric: true},
	}
	cells := make([][]string, len(rows))
	for i, g := range rows {
		cells[i] = []string{
			g.AgeBucket, string(g.SexCategory), strconv.Itoa(g.Swimmers), strconv.Itoa(g.Eligible),
			strconv.Itoa(g.TopScore), fmt.Sprintf("%.1f", g.MeanTotal), fmt.Sprintf("%.1f", g.MedianTotal), fmt.Sprintf("%.1f", g.StdDevTotal),
		}
	}
	r.table(cols, cells, nil)
}

func (r *renderer) report(rep types.SwimmerReport) {
	sel := rep.Selection
	r.println(r.st.title.Render(fmt.Sprintf("%s (%d, %s, %s) - age %s", sel.SwimmerName, sel.Age, sel.SexCategory, sel.Club, rep.AgeBucket)))
	r.println(fmt.Sprintf("Total %d from %d events, average %.1f, best %d, %d categories represented.",
		rep.Totals.TotalScore, rep.Totals.EventCount, rep.Totals.AverageScore, rep.Totals.BestScore, sel.CategoriesRepresented))
	if rep.Narrative.Short != "" {
		r.println(rep.Narrative.Short)
	}
	r.println("")
	r.println(strings.TrimRight(rep.Text, "\n"))
}
