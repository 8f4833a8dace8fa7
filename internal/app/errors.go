package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted      = errors.New("service not started")
	ErrStopped         = errors.New("service stopped")
	ErrInvalidMeetID   = errors.New("invalid meet id")
	ErrEmptyMeet       = errors.New("meet has no records")
	ErrSwimmerNotFound = errors.New("swimmer not found")
)
