package seedmeet

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	service "github.com/okian/swimchamps/internal/app"
	"github.com/okian/swimchamps/internal/domain/leaderboard"
	"github.com/okian/swimchamps/internal/domain/model"
	"github.com/okian/swimchamps/internal/domain/types"
	"github.com/okian/swimchamps/pkg/logger"
)

// ErrMismatch is returned when served standings differ from the local run.
var ErrMismatch = errors.New("served standings differ from local standings")

// expectedLeaderboard scores records in-process with the default settings.
func expectedLeaderboard(ctx context.Context, meetID string, records []model.PerformanceRecord) ([]types.LeaderboardEntry, error) {
	svc := service.New(service.WithLogger(logger.Nop()))
	if err := svc.Start(ctx); err != nil {
		return nil, err
	}
	defer svc.Stop()

	if _, err := svc.PutRecords(ctx, meetID, meetID, records); err != nil {
		return nil, err
	}
	return svc.Leaderboard(ctx, meetID, leaderboard.Filter{})
}

// verifyLeaderboard diffs the served leaderboard against the local one.
func verifyLeaderboard(want, got []types.LeaderboardEntry) error {
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		return fmt.Errorf("%w (-local +served):\n%s", ErrMismatch, diff)
	}
	return nil
}

// verifyReport checks that a swimmer report agrees with its leaderboard row.
func verifyReport(row types.LeaderboardEntry, report types.SwimmerReport) error {
	switch {
	case report.Totals.TotalScore != row.TotalScore:
		return fmt.Errorf("%w: %q total %d, leaderboard %d", ErrMismatch, row.SwimmerName, report.Totals.TotalScore, row.TotalScore)
	case report.Narrative.TotalScore != row.TotalScore:
		return fmt.Errorf("%w: %q narrative total %d, leaderboard %d", ErrMismatch, row.SwimmerName, report.Narrative.TotalScore, row.TotalScore)
	case report.AgeBucket != row.AgeBucket:
		return fmt.Errorf("%w: %q bucket %q, leaderboard %q", ErrMismatch, row.SwimmerName, report.AgeBucket, row.AgeBucket)
	case len(report.Selection.Selected) > report.Selection.MaxSelected:
		return fmt.Errorf("%w: %q has %d selected events", ErrMismatch, row.SwimmerName, len(report.Selection.Selected))
	}
	return nil
}
