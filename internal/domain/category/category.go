// Package category maps event labels to scoring categories and sex
// categories, and normalises records at ingestion.
package category

import (
	"errors"
	"regexp"
	"strings"

	"github.com/okian/swimchamps/internal/domain/model"
)

// Label patterns, matched against the lower-cased event label.
var (
	sprintPattern   = regexp.MustCompile(`(^|[^0-9])50\s?m\b`)
	distancePattern = regexp.MustCompile(`(^|[^0-9])(800|1500)\s?m\b`)
	medleyPattern   = regexp.MustCompile(`\bim\b|medley`)
	freePattern     = regexp.MustCompile(`free`)
	formPattern     = regexp.MustCompile(`back|breast|fly`)
	form100Pattern  = regexp.MustCompile(`(^|[^0-9])100\s?m\b`)
	form200Pattern  = regexp.MustCompile(`(^|[^0-9])200\s?m\b`)
)

// Classify returns the scoring category for an event label, or false when the
// event does not count towards any category.
//
// Rules are applied in strict priority order: 50m sprint, 800m/1500m distance,
// individual medley, freestyle, then form strokes (100m or 200m, defaulting to
// 100m). A 50m backstroke is therefore a sprint, and a 400m IM is an IM.
func Classify(label string) (model.Category, bool) {
	l := strings.ToLower(label)
	switch {
	case sprintPattern.MatchString(l):
		return model.CategorySprint, true
	case distancePattern.MatchString(l):
		return model.CategoryDistance, true
	case medleyPattern.MatchString(l):
		return model.CategoryIM, true
	case freePattern.MatchString(l):
		return model.CategoryFree, true
	case formPattern.MatchString(l):
		if form200Pattern.MatchString(l) && !form100Pattern.MatchString(l) {
			return model.CategoryForm200, true
		}
		return model.CategoryForm100, true
	}
	return "", false
}

// StrokeOf returns the stroke swum in an event, or false for medley events
// and labels that name no stroke.
func StrokeOf(label string) (model.Stroke, bool) {
	l := strings.ToLower(label)
	switch {
	case medleyPattern.MatchString(l):
		return "", false
	case strings.Contains(l, "free"):
		return model.StrokeFreestyle, true
	case strings.Contains(l, "back"):
		return model.StrokeBackstroke, true
	case strings.Contains(l, "breast"):
		return model.StrokeBreaststroke, true
	case strings.Contains(l, "fly"):
		return model.StrokeButterfly, true
	}
	return "", false
}

// SexFromLabel derives the leaderboard partition from an event label.
// "Female"/"Girls" events are Female; "Male", "Open" and "Boys" events are
// Male/Open. Anything else is Unknown.
func SexFromLabel(label string) model.SexCategory {
	l := strings.ToLower(label)
	switch {
	case strings.Contains(l, "female") || strings.Contains(l, "girl"):
		return model.SexFemale
	case strings.Contains(l, "male") || strings.Contains(l, "open") || strings.Contains(l, "boy"):
		return model.SexMaleOpen
	}
	return model.SexUnknown
}

// Normalize fills a missing category and sex category from the event label and
// validates every record. Category is assigned here once and never again.
// All malformed records are reported together; on error no records are returned.
func Normalize(records []model.PerformanceRecord) ([]model.PerformanceRecord, error) {
	out := make([]model.PerformanceRecord, len(records))
	var errs []error
	for i, r := range records {
		if r.Category == "" {
			if c, ok := Classify(r.EventLabel); ok {
				r.Category = c
			}
		}
		if r.SexCategory == "" {
			r.SexCategory = SexFromLabel(r.EventLabel)
		}
		if err := r.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		out[i] = r
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}
