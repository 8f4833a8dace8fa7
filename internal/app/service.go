// Package service provides the core business service behind the HTTP API and
// the command line tools.
package service

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/okian/swimchamps/internal/adapters/repository"
	"github.com/okian/swimchamps/internal/domain/category"
	"github.com/okian/swimchamps/internal/domain/leaderboard"
	"github.com/okian/swimchamps/internal/domain/model"
	"github.com/okian/swimchamps/internal/domain/narrative"
	"github.com/okian/swimchamps/internal/domain/scoring"
	"github.com/okian/swimchamps/internal/domain/types"
	"github.com/okian/swimchamps/internal/pipeline"
	"github.com/okian/swimchamps/pkg/logger"
	"github.com/okian/swimchamps/pkg/metrics"
)

// Service stores meets and answers standings queries over their latest snapshot.
type Service struct {
	mu sync.RWMutex

	// Core components
	store    repository.Store
	pipeline *pipeline.Pipeline
	builder  *leaderboard.Builder

	// Configuration
	policy          scoring.Policy
	workerCount     int
	buckets         []leaderboard.AgeBucket
	minCategories   int
	championshipMin int

	// Standings of the latest snapshot per meet.
	cacheMu sync.Mutex
	cache   map[string]cachedStandings
	flight  singleflight.Group

	started bool
	stopped bool
	logger  logger.Logger
}

type cachedStandings struct {
	snapshotID uuid.UUID
	standings  []pipeline.Standing
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		policy:          scoring.DefaultPolicy(),
		workerCount:     runtime.NumCPU(),
		buckets:         leaderboard.SingleYearBuckets(),
		championshipMin: leaderboard.DefaultChampionshipMinCategories,
		cache:           make(map[string]cachedStandings),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the service components. Starting twice is a no-op. A stopped
// service has closed its store and cannot be started again.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.stopped {
		return ErrStopped
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	builder, err := leaderboard.NewBuilder(
		leaderboard.WithAgeBuckets(s.buckets),
		leaderboard.WithMinCategories(s.minCategories),
		leaderboard.WithChampionshipMinCategories(s.championshipMin),
	)
	if err != nil {
		return fmt.Errorf("leaderboard: %w", err)
	}
	s.builder = builder
	s.pipeline = pipeline.New(
		pipeline.WithSelector(scoring.NewSelector(scoring.WithPolicy(s.policy))),
		pipeline.WithWorkerCount(s.workerCount),
		pipeline.WithLogger(s.logger.Named("pipeline")),
	)
	if s.store == nil {
		s.store = repository.NewInMemoryStore()
		s.logger.Info(ctx, "using in-memory store")
	}

	s.started = true
	s.logger.Info(ctx, "standings service started",
		logger.Int("workers", s.workerCount),
		logger.Int("max_selected", s.policy.MaxSelected),
		logger.Int("championship_min_categories", s.championshipMin),
	)
	return nil
}

// Stop closes the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	if err := s.store.Close(); err != nil {
		s.logger.Warn(ctx, "closing store failed", logger.Error(err))
	}
	s.started = false
	s.stopped = true
	s.logger.Info(ctx, "standings service stopped")
}

func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// PutRecords validates records and stores them as the newest snapshot of
// meetID. Either every record is accepted or none is; the error then lists
// every malformed record.
func (s *Service) PutRecords(ctx context.Context, meetID, name string, records []model.PerformanceRecord) (repository.SnapshotInfo, error) {
	if err := s.ready(); err != nil {
		return repository.SnapshotInfo{}, err
	}
	meetID = strings.TrimSpace(meetID)
	if meetID == "" {
		return repository.SnapshotInfo{}, ErrInvalidMeetID
	}
	if len(records) == 0 {
		return repository.SnapshotInfo{}, ErrEmptyMeet
	}

	normalized, err := category.Normalize(records)
	if err != nil {
		bad := model.MalformedRecords(err)
		metrics.RecordRecordsRejected(len(bad))
		s.logger.Warn(ctx, "rejected meet records",
			logger.String("meet", meetID),
			logger.Int("malformed", len(bad)),
		)
		return repository.SnapshotInfo{}, fmt.Errorf("meet %q: %w", meetID, err)
	}

	snap := repository.Snapshot{
		ID:        uuid.New(),
		MeetID:    meetID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
		Records:   normalized,
	}
	if err := s.store.Put(ctx, snap); err != nil {
		metrics.RecordErrorByComponent("repository", "put_failed")
		return repository.SnapshotInfo{}, fmt.Errorf("store meet %q: %w", meetID, err)
	}

	metrics.RecordRecordsIngested(len(normalized))
	metrics.RecordSnapshotStored()
	s.logger.Info(ctx, "meet snapshot stored",
		logger.String("meet", meetID),
		logger.String("snapshot", snap.ID.String()),
		logger.Int("records", len(normalized)),
	)
	return snap.Info(), nil
}

// Meets describes the latest snapshot of every stored meet.
func (s *Service) Meets(ctx context.Context) ([]repository.SnapshotInfo, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.store.List(ctx)
}

// Standings returns per-swimmer standings for the latest snapshot of meetID.
// Results are memoised per snapshot, and concurrent callers share one computation.
func (s *Service) Standings(ctx context.Context, meetID string) ([]pipeline.Standing, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	snap, err := s.store.Latest(ctx, meetID)
	if err != nil {
		return nil, fmt.Errorf("meet %q: %w", meetID, err)
	}

	s.cacheMu.Lock()
	cached, ok := s.cache[meetID]
	s.cacheMu.Unlock()
	if ok && cached.snapshotID == snap.ID {
		metrics.RecordStandingsCacheHit()
		return cached.standings, nil
	}

	// The shared run outlives any single caller; each caller stops waiting
	// on its own context.
	runCtx := context.WithoutCancel(ctx)
	ch := s.flight.DoChan(snap.ID.String(), func() (any, error) {
		standings, err := s.pipeline.Run(runCtx, snap.Records)
		if err != nil {
			return nil, err
		}
		s.cacheMu.Lock()
		s.cache[meetID] = cachedStandings{snapshotID: snap.ID, standings: standings}
		s.cacheMu.Unlock()
		return standings, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("standings for meet %q: %w", meetID, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("standings for meet %q: %w", meetID, res.Err)
		}
		return res.Val.([]pipeline.Standing), nil
	}
}

func (s *Service) selections(ctx context.Context, meetID string) ([]model.SwimmerSelection, error) {
	standings, err := s.Standings(ctx, meetID)
	if err != nil {
		return nil, err
	}
	return pipeline.Selections(standings), nil
}

// Leaderboard ranks the swimmers of meetID under filter f.
func (s *Service) Leaderboard(ctx context.Context, meetID string, f leaderboard.Filter) ([]types.LeaderboardEntry, error) {
	sels, err := s.selections(ctx, meetID)
	if err != nil {
		return nil, err
	}
	return s.builder.Build(sels, f)
}

// Swimmer returns one swimmer's selection, totals and narrative.
func (s *Service) Swimmer(ctx context.Context, meetID, name string) (types.SwimmerReport, error) {
	standings, err := s.Standings(ctx, meetID)
	if err != nil {
		return types.SwimmerReport{}, err
	}
	st, ok := pipeline.Find(standings, name)
	if !ok {
		return types.SwimmerReport{}, fmt.Errorf("%w: %q in meet %q", ErrSwimmerNotFound, name, meetID)
	}
	n, err := narrative.Explain(st.Records, st.Selection)
	if err != nil {
		return types.SwimmerReport{}, fmt.Errorf("explain %q: %w", name, err)
	}
	return types.SwimmerReport{
		MeetID:    meetID,
		AgeBucket: s.builder.BucketLabel(st.Selection.Age),
		Selection: st.Selection,
		Totals:    st.Totals,
		Narrative: n,
		Text:      n.Text(),
		Records:   st.Records,
	}, nil
}

// Winners returns the top eligible swimmer of every age bucket and sex category.
func (s *Service) Winners(ctx context.Context, meetID string) ([]types.LeaderboardEntry, error) {
	sels, err := s.selections(ctx, meetID)
	if err != nil {
		return nil, err
	}
	return s.builder.Winners(sels)
}

// CategoryLeaders returns the best swimmer per category in every partition.
func (s *Service) CategoryLeaders(ctx context.Context, meetID string) ([]types.CategoryLeader, error) {
	sels, err := s.selections(ctx, meetID)
	if err != nil {
		return nil, err
	}
	return s.builder.CategoryLeaders(sels), nil
}

// StrokeSpecialists returns the best average swimmer per stroke in every
// partition, over every event swum rather than the counted ones.
func (s *Service) StrokeSpecialists(ctx context.Context, meetID string) ([]types.StrokeSpecialist, error) {
	standings, err := s.Standings(ctx, meetID)
	if err != nil {
		return nil, err
	}
	entrants := make([]leaderboard.Entrant, len(standings))
	for i, st := range standings {
		entrants[i] = leaderboard.Entrant{Selection: st.Selection, Records: st.Records}
	}
	return s.builder.StrokeSpecialists(entrants), nil
}

// Summary describes the field in every partition.
func (s *Service) Summary(ctx context.Context, meetID string) ([]types.GroupSummary, error) {
	sels, err := s.selections(ctx, meetID)
	if err != nil {
		return nil, err
	}
	return s.builder.Summary(sels), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":                   s.started,
		"workerCount":               s.workerCount,
		"maxSelected":               s.policy.MaxSelected,
		"championshipMinCategories": s.championshipMin,
		"defaultMinCategories":      s.minCategories,
		"ageBuckets":                len(s.buckets),
	}
	if s.started {
		meets := s.store.Count(context.Background())
		s.cacheMu.Lock()
		stats["cachedMeets"] = len(s.cache)
		s.cacheMu.Unlock()
		stats["meets"] = meets
		metrics.UpdateWorkerCount(s.workerCount)
	}
	return stats
}
