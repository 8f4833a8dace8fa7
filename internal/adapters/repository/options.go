package repository

import "time"

// Option applies a configuration option to a store.
type Option func(*options)

type options struct {
	maxVersions int
	now         func() time.Time
}

func defaultOptions() options {
	return options{now: time.Now}
}

// WithMaxVersions keeps at most n snapshot versions per meet. Zero keeps all.
func WithMaxVersions(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.maxVersions = n
		}
	}
}

// WithClock overrides the clock used to stamp snapshots without a CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}
