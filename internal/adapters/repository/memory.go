package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/okian/swimchamps/internal/domain/model"
	"github.com/okian/swimchamps/pkg/metrics"
)

// InMemoryStore keeps snapshots in process memory.
type InMemoryStore struct {
	opts options

	mu     sync.RWMutex
	meets  map[string][]Snapshot // oldest first
	closed bool
}

// NewInMemoryStore creates an empty store.
func NewInMemoryStore(opts ...Option) *InMemoryStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &InMemoryStore{opts: o, meets: make(map[string][]Snapshot)}
}

// Put stores a copy of s as the newest version of its meet.
func (s *InMemoryStore) Put(ctx context.Context, snap Snapshot) error {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if err := validSnapshot(snap); err != nil {
		return err
	}
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = s.opts.now()
	}
	snap.Records = cloneRecords(snap.Records)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	versions := append(s.meets[snap.MeetID], snap)
	if s.opts.maxVersions > 0 && len(versions) > s.opts.maxVersions {
		versions = append([]Snapshot(nil), versions[len(versions)-s.opts.maxVersions:]...)
	}
	s.meets[snap.MeetID] = versions
	metrics.UpdateRepositorySnapshots(s.countLocked())
	return nil
}

// Latest returns a copy of the newest snapshot of meetID.
func (s *InMemoryStore) Latest(ctx context.Context, meetID string) (Snapshot, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return Snapshot{}, ErrClosed
	}
	versions := s.meets[meetID]
	if len(versions) == 0 {
		return Snapshot{}, ErrNotFound
	}
	out := versions[len(versions)-1]
	out.Records = cloneRecords(out.Records)
	return out, nil
}

// List describes the newest snapshot of every meet.
func (s *InMemoryStore) List(ctx context.Context) ([]SnapshotInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	out := make([]SnapshotInfo, 0, len(s.meets))
	for _, versions := range s.meets {
		info := versions[len(versions)-1].Info()
		info.Versions = len(versions)
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MeetID < out[j].MeetID })
	return out, nil
}

// Count returns the number of meets.
func (s *InMemoryStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.meets)
}

// Close drops every snapshot. Further calls fail with ErrClosed.
func (s *InMemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.meets = nil
	return nil
}

func (s *InMemoryStore) countLocked() int {
	n := 0
	for _, v := range s.meets {
		n += len(v)
	}
	return n
}

func cloneRecords(in []model.PerformanceRecord) []model.PerformanceRecord {
	if in == nil {
		return nil
	}
	return append([]model.PerformanceRecord(nil), in...)
}
