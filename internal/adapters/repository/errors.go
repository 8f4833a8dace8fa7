package repository

import (
	"errors"
	"fmt"
)

// Sentinel kinds for repository errors.
var (
	ErrNotFound        = errors.New("meet not found")
	ErrInvalidSnapshot = errors.New("invalid snapshot")
	ErrClosed          = errors.New("store closed")
)

func wrapInvalid(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidSnapshot, reason)
}
