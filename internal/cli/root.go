// Package cli implements the standings command line tool.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/swimchamps/internal/adapters/file"
	service "github.com/okian/swimchamps/internal/app"
	"github.com/okian/swimchamps/internal/config"
	"github.com/okian/swimchamps/internal/domain/leaderboard"
	"github.com/okian/swimchamps/internal/domain/model"
	"github.com/okian/swimchamps/pkg/logger"
)

// Output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// ErrUsage marks bad flag values.
var ErrUsage = errors.New("invalid usage")

type options struct {
	records       string
	meet          string
	config        string
	format        string
	sex           string
	age           string
	minCategories int
	eligibleOnly  bool
	limit         int
}

// NewRootCommand builds the standings command tree writing to out.
func NewRootCommand(out io.Writer) *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:   "standings",
		Short: "Score age-group swim meets from snapshot files",
		Long: `standings reads meet snapshots (YAML or JSON files matched by a glob),
selects each swimmer's counting events and prints leaderboards, winners,
category leaders, field summaries or a per-swimmer explanation.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVarP(&o.records, "records", "r", "", "Snapshot files, e.g. 'meets/**/*.yaml' (required)")
	pf.StringVarP(&o.meet, "meet", "m", "", "Meet id when the files hold several meets")
	pf.StringVarP(&o.config, "config", "c", os.Getenv(config.EnvConfig), "YAML config file")
	pf.StringVarP(&o.format, "format", "f", FormatConsole, "Output format (console|json)")
	_ = root.MarkPersistentFlagRequired("records")

	root.AddCommand(
		newLeaderboardCommand(o),
		newExplainCommand(o),
		newWinnersCommand(o),
		newLeadersCommand(o),
		newStrokesCommand(o),
		newSummaryCommand(o),
	)
	return root
}

// Execute runs the command tree against os.Args and returns the exit code.
func Execute() int {
	cmd := NewRootCommand(os.Stdout)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		for _, m := range model.MalformedRecords(err) {
			fmt.Fprintf(os.Stderr, "  %s\n", m.Error())
		}
		return 1
	}
	return 0
}

// session is a started service holding the one meet named by the flags.
type session struct {
	svc  *service.Service
	meet string
}

func (o *options) open(ctx context.Context) (*session, error) {
	if o.format != FormatConsole && o.format != FormatJSON {
		return nil, fmt.Errorf("%w: --format must be console or json, got %q", ErrUsage, o.format)
	}
	cfg, err := config.LoadFile(ctx, o.config)
	if err != nil {
		return nil, err
	}
	buckets, err := cfg.Buckets()
	if err != nil {
		return nil, err
	}
	docs, err := file.Load(ctx, o.records)
	if err != nil {
		return nil, err
	}
	meet, records, err := file.Records(docs, o.meet)
	if err != nil {
		return nil, err
	}

	svc := service.New(
		service.WithLogger(logger.Nop()),
		service.WithPolicy(cfg.Policy()),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithAgeBuckets(buckets),
		service.WithMinCategories(cfg.MinCategories),
		service.WithChampionshipMinCategories(cfg.ChampionshipMinCategories),
	)
	if err := svc.Start(ctx); err != nil {
		return nil, err
	}
	if _, err := svc.PutRecords(ctx, meet, meet, records); err != nil {
		svc.Stop()
		return nil, err
	}
	return &session{svc: svc, meet: meet}, nil
}

func (s *session) close() { s.svc.Stop() }

func (o *options) filter(cmd *cobra.Command) (leaderboard.Filter, error) {
	f := leaderboard.Filter{
		AgeBucket:    o.age,
		EligibleOnly: o.eligibleOnly,
		Limit:        o.limit,
	}
	if o.sex != "" {
		sex, ok := model.ParseSexCategory(o.sex)
		if !ok {
			return f, fmt.Errorf("%w: unknown --sex %q", ErrUsage, o.sex)
		}
		f.SexCategory = sex
	}
	if cmd.Flags().Changed("min-categories") {
		n := o.minCategories
		f.MinCategories = &n
	}
	return f, nil
}
