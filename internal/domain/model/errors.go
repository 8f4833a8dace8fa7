package model

import (
	"errors"
	"fmt"
)

// Sentinel kinds for record errors.
var (
	ErrMalformedRecord = errors.New("malformed performance record")
)

// MalformedRecordError carries enough context to fix a record upstream.
type MalformedRecordError struct {
	SwimmerName string
	EventID     string
	Field       string
	Reason      string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("%s: swimmer %q event %q: %s %s",
		ErrMalformedRecord, e.SwimmerName, e.EventID, e.Field, e.Reason)
}

// Unwrap lets callers match with errors.Is(err, ErrMalformedRecord).
func (e *MalformedRecordError) Unwrap() error {
	return ErrMalformedRecord
}

// Malformed builds a MalformedRecordError for r.
func Malformed(r PerformanceRecord, field, reason string) error {
	return &MalformedRecordError{
		SwimmerName: r.SwimmerName,
		EventID:     r.EventID,
		Field:       field,
		Reason:      reason,
	}
}

// MalformedRecords collects every MalformedRecordError in err's tree,
// including errors combined with errors.Join.
func MalformedRecords(err error) []*MalformedRecordError {
	var out []*MalformedRecordError
	var walk func(error)
	walk = func(e error) {
		switch x := e.(type) {
		case nil:
			return
		case *MalformedRecordError:
			out = append(out, x)
		case interface{ Unwrap() []error }:
			for _, inner := range x.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			walk(x.Unwrap())
		}
	}
	walk(err)
	return out
}
