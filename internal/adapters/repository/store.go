// Package repository stores meet snapshots: immutable, versioned sets of
// performance records that standings are computed from.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/okian/swimchamps/internal/domain/model"
)

// Snapshot is one version of a meet's records. Snapshots are never mutated;
// putting a meet again stores a new version.
type Snapshot struct {
	ID        uuid.UUID
	MeetID    string
	Name      string
	CreatedAt time.Time
	Records   []model.PerformanceRecord
}

// Info summarises the snapshot without its records.
func (s Snapshot) Info() SnapshotInfo {
	return SnapshotInfo{
		ID:        s.ID,
		MeetID:    s.MeetID,
		Name:      s.Name,
		CreatedAt: s.CreatedAt,
		Records:   len(s.Records),
	}
}

// SnapshotInfo describes a stored snapshot.
type SnapshotInfo struct {
	ID        uuid.UUID `json:"id"`
	MeetID    string    `json:"meet_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	Records   int       `json:"records"`
	Versions  int       `json:"versions,omitempty"`
}

// Store provides access to meet snapshots.
type Store interface {
	// Put stores a new snapshot version. The snapshot must carry an ID and a meet id.
	Put(ctx context.Context, s Snapshot) error

	// Latest returns the newest snapshot of a meet.
	// Returns ErrNotFound if the meet is unknown.
	Latest(ctx context.Context, meetID string) (Snapshot, error)

	// List describes the newest snapshot of every meet, ordered by meet id.
	List(ctx context.Context) ([]SnapshotInfo, error)

	// Count returns the number of meets stored.
	Count(ctx context.Context) int

	// Close releases the store's resources.
	Close() error
}

func validSnapshot(s Snapshot) error {
	switch {
	case s.ID == uuid.Nil:
		return wrapInvalid("missing id")
	case s.MeetID == "":
		return wrapInvalid("missing meet id")
	}
	return nil
}
