package leaderboard

import "errors"

// Sentinel kinds for leaderboard errors.
var (
	ErrInvalidBuckets   = errors.New("invalid age bucket table")
	ErrUnknownAgeBucket = errors.New("unknown age bucket")
	ErrInvalidLimit     = errors.New("invalid leaderboard limit")
	ErrInvalidMinimum   = errors.New("invalid minimum categories")
)
