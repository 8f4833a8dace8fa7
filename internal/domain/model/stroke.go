package model

// Stroke is the swimming discipline of an event, ignoring distance.
type Stroke string

// Strokes. Individual medley has no single stroke.
const (
	StrokeFreestyle    Stroke = "Freestyle"
	StrokeBackstroke   Stroke = "Backstroke"
	StrokeBreaststroke Stroke = "Breaststroke"
	StrokeButterfly    Stroke = "Butterfly"
)

// Strokes lists every stroke in display order.
var Strokes = []Stroke{ //nolint:gochecknoglobals // fixed stroke table
	StrokeFreestyle,
	StrokeBackstroke,
	StrokeBreaststroke,
	StrokeButterfly,
}
