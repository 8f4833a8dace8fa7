package service

import (
	"github.com/okian/swimchamps/internal/adapters/repository"
	"github.com/okian/swimchamps/internal/domain/leaderboard"
	"github.com/okian/swimchamps/internal/domain/scoring"
	"github.com/okian/swimchamps/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore sets the snapshot store. The service closes it on Stop.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithPolicy sets the selection policy.
func WithPolicy(p scoring.Policy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

// WithWorkerCount sets how many swimmers are scored concurrently.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithAgeBuckets sets the leaderboard age bucket table.
func WithAgeBuckets(buckets []leaderboard.AgeBucket) Option {
	return func(s *Service) {
		if len(buckets) > 0 {
			s.buckets = buckets
		}
	}
}

// WithMinCategories sets the default leaderboard eligibility filter.
func WithMinCategories(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.minCategories = n
		}
	}
}

// WithChampionshipMinCategories sets the trophy eligibility threshold.
func WithChampionshipMinCategories(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.championshipMin = n
		}
	}
}
