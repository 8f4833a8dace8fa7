package cli

import (
	"github.com/spf13/cobra"
)

func newLeaderboardCommand(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Rank swimmers within each age bucket and sex category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := o.filter(cmd)
			if err != nil {
				return err
			}
			s, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.close()

			rows, err := s.svc.Leaderboard(cmd.Context(), s.meet, f)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), o.format, rows, func(r *renderer) { r.leaderboard(rows) })
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&o.sex, "sex", "", "Only this sex category (female|male|open|unknown)")
	fl.StringVar(&o.age, "age", "", "Only this age bucket label, e.g. 11 or 15-16")
	fl.IntVar(&o.minCategories, "min-categories", 0, "Hide swimmers with fewer categories represented")
	fl.BoolVar(&o.eligibleOnly, "eligible-only", false, "Only swimmers eligible for championship trophies")
	fl.IntVar(&o.limit, "limit", 0, "Rows per partition (0 shows all)")
	return cmd
}

func newExplainCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "explain <swimmer>",
		Short: "Explain which events counted for a swimmer and why",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.close()

			report, err := s.svc.Swimmer(cmd.Context(), s.meet, args[0])
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), o.format, report, func(r *renderer) { r.report(report) })
		},
	}
}

func newWinnersCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "winners",
		Short: "List the championship winner of every age bucket and sex category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.close()

			rows, err := s.svc.Winners(cmd.Context(), s.meet)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), o.format, rows, func(r *renderer) { r.leaderboard(rows) })
		},
	}
}

func newLeadersCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:     "leaders",
		Aliases: []string{"category-leaders"},
		Short:   "List the top scorer of every category",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.close()

			rows, err := s.svc.CategoryLeaders(cmd.Context(), s.meet)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), o.format, rows, func(r *renderer) { r.leaders(rows) })
		},
	}
}

func newStrokesCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:     "strokes",
		Aliases: []string{"stroke-specialists"},
		Short:   "List the best average scorer of every stroke",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.close()

			rows, err := s.svc.StrokeSpecialists(cmd.Context(), s.meet)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), o.format, rows, func(r *renderer) { r.strokes(rows) })
		},
	}
}

func newSummaryCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Describe the field of every age bucket and sex category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.close()

			rows, err := s.svc.Summary(cmd.Context(), s.meet)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), o.format, rows, func(r *renderer) { r.summary(rows) })
		},
	}
}
