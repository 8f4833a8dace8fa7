// Package narrative explains which of a swimmer's events counted and why the
// others did not.
package narrative

import (
	"errors"
	"fmt"
	"strings"

	"github.com/okian/swimchamps/internal/domain/model"
	"github.com/okian/swimchamps/internal/domain/scoring"
)

// Short-form limits: events listed per category, and categories listed.
const (
	shortEventsPerCategory = 2
	shortCategories        = 4
	noEventsCounted        = "no events yet counted"
)

// Sentinel kinds for narrative errors.
var (
	ErrIncompleteSelection = errors.New("selection carries no policy")
	ErrSelectionMismatch   = errors.New("records do not reproduce the selection")
)

// CategoryEvents lists the counted events of one category, best first.
type CategoryEvents struct {
	Category model.Category            `json:"category"`
	Events   []model.PerformanceRecord `json:"events"`
}

// Exclusion is an event that did not count, with the reason.
type Exclusion struct {
	Record model.PerformanceRecord `json:"record"`
	Reason scoring.Disposition     `json:"reason"`
	Detail string                  `json:"detail"`
}

// Narrative is the structured explanation for one swimmer.
type Narrative struct {
	SwimmerName string           `json:"swimmer_name"`
	TotalScore  int              `json:"total_score"`
	Included    []CategoryEvents `json:"included"`
	Excluded    []Exclusion      `json:"excluded"`
	Short       string           `json:"short"`
}

// Explain replays the selection over all of the swimmer's records and labels
// every event that did not count.
func Explain(records []model.PerformanceRecord, sel model.SwimmerSelection) (Narrative, error) {
	if sel.MaxSelected <= 0 {
		return Narrative{}, ErrIncompleteSelection
	}
	trace := scoring.Explain(records, sel)
	if !sameEvents(records, trace.Selected, sel.Selected) {
		return Narrative{}, fmt.Errorf("%w: swimmer %q", ErrSelectionMismatch, sel.SwimmerName)
	}

	n := Narrative{SwimmerName: sel.SwimmerName}

	byCategory := make(map[model.Category][]model.PerformanceRecord, len(model.Categories))
	for _, idx := range trace.Selected {
		r := records[idx]
		byCategory[r.Category] = append(byCategory[r.Category], r)
		n.TotalScore += r.Score
	}
	for _, c := range model.Categories {
		if evs := byCategory[c]; len(evs) > 0 {
			n.Included = append(n.Included, CategoryEvents{Category: c, Events: evs})
		}
	}

	for i, d := range trace.Dispositions {
		if d == scoring.Selected {
			continue
		}
		n.Excluded = append(n.Excluded, Exclusion{
			Record: records[i],
			Reason: d,
			Detail: detail(records[i], d, sel),
		})
	}

	n.Short = short(n.Included)
	return n, nil
}

// Text renders the long form of the narrative.
func (n Narrative) Text() string {
	var b strings.Builder
	counted := 0
	for _, ce := range n.Included {
		counted += len(ce.Events)
	}
	fmt.Fprintf(&b, "%s: %d events counted for %d points.\n", n.SwimmerName, counted, n.TotalScore)
	if counted > 0 {
		b.WriteString("Counted:\n")
		for _, ce := range n.Included {
			items := make([]string, len(ce.Events))
			for i, r := range ce.Events {
				items[i] = fmt.Sprintf("%s (%d pts)", label(r), r.Score)
			}
			fmt.Fprintf(&b, "  %s: %s\n", ce.Category.DisplayName(), strings.Join(items, ", "))
		}
	}
	if len(n.Excluded) > 0 {
		b.WriteString("Not counted:\n")
		for _, ex := range n.Excluded {
			fmt.Fprintf(&b, "  %s (%d pts): %s\n", label(ex.Record), ex.Record.Score, ex.Detail)
		}
	}
	return b.String()
}

func detail(r model.PerformanceRecord, d scoring.Disposition, sel model.SwimmerSelection) string {
	switch d {
	case scoring.CapExceeded:
		return fmt.Sprintf("beyond the %d per category limit for %s", sel.Cap, r.Category.DisplayName())
	case scoring.OutsideTopN:
		return fmt.Sprintf("outside the best %d events", sel.MaxSelected)
	case scoring.Duplicate:
		return fmt.Sprintf("repeat entry for event %s", r.EventID)
	case scoring.Uncategorised:
		return "not a scoring event"
	default:
		return d.String()
	}
}

func short(included []CategoryEvents) string {
	parts := make([]string, 0, len(included))
	for _, ce := range included {
		items := make([]string, len(ce.Events))
		for i, r := range ce.Events {
			items[i] = fmt.Sprintf("%s - %d pts", label(r), r.Score)
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", ce.Category.DisplayName(), joinList(items, shortEventsPerCategory)))
	}
	if len(parts) == 0 {
		return noEventsCounted
	}
	return joinList(parts, shortCategories)
}

// joinList renders "a, b and c", or "a, b and 3 more" past limit.
func joinList(items []string, limit int) string {
	switch {
	case len(items) == 0:
		return ""
	case len(items) > limit:
		return strings.Join(items[:limit], ", ") + fmt.Sprintf(" and %d more", len(items)-limit)
	case len(items) == 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}

func label(r model.PerformanceRecord) string {
	if r.EventLabel != "" {
		return r.EventLabel
	}
	return "event " + r.EventID
}

func sameEvents(records []model.PerformanceRecord, idx []int, selected []model.PerformanceRecord) bool {
	if len(idx) != len(selected) {
		return false
	}
	for i, j := range idx {
		if records[j].EventID != selected[i].EventID || records[j].Score != selected[i].Score {
			return false
		}
	}
	return true
}
