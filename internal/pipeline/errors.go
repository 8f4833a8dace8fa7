package pipeline

import "errors"

// Sentinel kinds for pipeline errors.
var (
	ErrMalformedInput = errors.New("malformed input records")
)
