package seedmeet

import (
	"context"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/swimchamps/internal/adapters/file"
	"github.com/okian/swimchamps/internal/adapters/repository"
	"github.com/okian/swimchamps/internal/domain/types"
	"github.com/okian/swimchamps/pkg/logger"
)

// Run seeds one meet and verifies what the service serves for it.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get().Named("seedmeet")

	if cfg.MeetID == "" {
		cfg.MeetID = "seed-" + uuid.NewString()[:8]
	}
	if cfg.Swimmers <= 0 {
		cfg.Swimmers = defaultSwimmers
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	log.Info(ctx, "starting meet seeding",
		logger.String("baseURL", cfg.BaseURL),
		logger.String("meet", cfg.MeetID),
		logger.Int("swimmers", cfg.Swimmers),
		logger.Int("workers", cfg.Workers),
		logger.Any("seed", cfg.Seed))

	client := NewHTTPClient(cfg.BaseURL, cfg.Timeout)

	// Step 1: Check service health
	if err := client.getJSON(ctx, "/healthz", nil); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate the meet
	records := Generate(cfg.Swimmers, cfg.Seed)
	stats.SwimmersGenerated = cfg.Swimmers
	stats.RecordsGenerated = len(records)

	// Step 3: Store it
	var info repository.SnapshotInfo
	body := map[string]any{"name": "Synthetic meet " + cfg.MeetID, "records": records}
	if err := client.putJSON(ctx, meetPath(cfg.MeetID, "/records"), body, &info); err != nil {
		return stats, fmt.Errorf("meet submission failed: %w", err)
	}
	log.Info(ctx, "meet stored", logger.String("snapshot", info.ID.String()), logger.Int("records", info.Records))

	// Step 4: Compare the served leaderboard with a local run
	var served []types.LeaderboardEntry
	if err := client.getJSON(ctx, meetPath(cfg.MeetID, "/leaderboard"), &served); err != nil {
		return stats, fmt.Errorf("leaderboard retrieval failed: %w", err)
	}
	stats.LeaderboardEntries = len(served)
	want, err := expectedLeaderboard(ctx, cfg.MeetID, records)
	if err != nil {
		return stats, fmt.Errorf("local scoring failed: %w", err)
	}
	if err := verifyLeaderboard(want, served); err != nil {
		stats.Mismatches++
		return stats, err
	}

	// Step 5: Cross-check every swimmer report
	if err := verifyReports(ctx, cfg, client, served, stats, log); err != nil {
		return stats, err
	}

	// Step 6: Save the meet
	if cfg.OutputFile != "" {
		doc := file.Document{Meet: cfg.MeetID, Name: "Synthetic meet " + cfg.MeetID, Records: records}
		if err := file.WriteFile(cfg.OutputFile, doc); err != nil {
			log.Warn(ctx, "failed to save meet to file", logger.Error(err))
		} else {
			log.Info(ctx, "meet saved to file", logger.String("filename", cfg.OutputFile))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)
	return stats, nil
}

// verifyReports fetches every swimmer report concurrently and checks it
// against the swimmer's leaderboard row.
func verifyReports(ctx context.Context, cfg *Config, client *HTTPClient, rows []types.LeaderboardEntry, stats *Stats, log logger.Logger) error {
	var retrieved, failed, mismatched int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for _, row := range rows {
		g.Go(func() error {
			var report types.SwimmerReport
			path := meetPath(cfg.MeetID, "/swimmers/"+url.PathEscape(row.SwimmerName))
			if err := client.getJSON(gctx, path, &report); err != nil {
				atomic.AddInt64(&failed, 1)
				return fmt.Errorf("report for %q: %w", row.SwimmerName, err)
			}
			atomic.AddInt64(&retrieved, 1)
			if err := verifyReport(row, report); err != nil {
				if n := atomic.AddInt64(&mismatched, 1); n <= maxMismatchLogs {
					log.Warn(gctx, "swimmer report mismatch", logger.Error(err))
				}
				return nil
			}
			if cfg.Verbose {
				log.Debug(gctx, "swimmer verified",
					logger.String("swimmer", row.SwimmerName),
					logger.Int("total", row.TotalScore))
			}
			return nil
		})
	}
	err := g.Wait()

	stats.ReportsRetrieved = int(retrieved)
	stats.ReportsFailed = int(failed)
	stats.Mismatches += int(mismatched)
	if err != nil {
		return fmt.Errorf("report retrieval failed: %w", err)
	}
	if mismatched > 0 {
		return fmt.Errorf("%w: %d swimmer reports", ErrMismatch, mismatched)
	}
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	log.Info(ctx, "final statistics",
		logger.Int("swimmersGenerated", stats.SwimmersGenerated),
		logger.Int("recordsGenerated", stats.RecordsGenerated),
		logger.Int("leaderboardEntries", stats.LeaderboardEntries),
		logger.Int("reportsRetrieved", stats.ReportsRetrieved),
		logger.Int("reportsFailed", stats.ReportsFailed),
		logger.Int("mismatches", stats.Mismatches),
		logger.Duration("duration", stats.Duration))
}
