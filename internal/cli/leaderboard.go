package cli

import (
	"github.com/spf13/cobra"

	service "github.com/okian/netstats/internal/app"
	"github.com/okian/netstats/internal/domain/performance"
	"github.com/okian/netstats/internal/domain/types"
)

func newLeaderboardCommand(opts *options) *cobra.Command {
	var (
		games, players []string
		rangeSel, sort string
	)
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Rank players over a set of games",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			metric, err := performance.ParseMetric(sort)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			return opts.withService(ctx, func(svc *service.Service) error {
				tr, err := svc.ParseTimeRange(rangeSel)
				if err != nil {
					return err
				}
				report, err := svc.AggregatePlayerPerformance(ctx, players, games, tr)
				if err != nil {
					return err
				}
				lb := types.NewLeaderboard(report, metric, tr)
				if opts.jsonOut {
					return writeJSON(cmd.OutOrStdout(), lb)
				}
				printLeaderboard(cmd.OutOrStdout(), lb)
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&games, "games", nil, "game ids (default: all games)")
	cmd.Flags().StringSliceVar(&players, "players", nil, "player ids (default: every player seen)")
	cmd.Flags().StringVar(&rangeSel, "range", "all", "time range: all, month, last or last-N")
	cmd.Flags().StringVar(&sort, "sort", "goals", "sort by goals, rebounds, intercepts, rating or games")
	return cmd
}
