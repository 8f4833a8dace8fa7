package scoring

import "errors"

// Sentinel kinds for selection errors.
var (
	ErrNoRecords = errors.New("no records for swimmer")
)
