package pipeline

import (
	"github.com/okian/swimchamps/internal/domain/scoring"
	"github.com/okian/swimchamps/pkg/logger"
)

// Option applies a configuration option to the Pipeline.
type Option func(*Pipeline)

// WithWorkerCount bounds how many swimmers are scored concurrently.
func WithWorkerCount(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithSelector replaces the default selector.
func WithSelector(s *scoring.Selector) Option {
	return func(p *Pipeline) {
		if s != nil {
			p.selector = s
		}
	}
}

// WithLogger sets a custom logger for the pipeline.
func WithLogger(l logger.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}
