package cli

import (
	"github.com/spf13/cobra"

	service "github.com/okian/netstats/internal/app"
)

func newScoreCommand(opts *options) *cobra.Command {
	var (
		team  string
		fresh bool
	)
	cmd := &cobra.Command{
		Use:   "score <gameID>",
		Short: "Show the reconciled score of a game, optionally from one team's side",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return opts.withService(ctx, func(svc *service.Service) error {
				score, err := svc.ComputeGameScore(ctx, args[0], fresh)
				if err != nil {
					return err
				}
				if team == "" {
					if opts.jsonOut {
						return writeJSON(cmd.OutOrStdout(), score)
					}
					printScore(cmd.OutOrStdout(), score)
					return nil
				}

				p, err := svc.ResolvePerspective(ctx, args[0], team)
				if err != nil {
					return err
				}
				if opts.jsonOut {
					return writeJSON(cmd.OutOrStdout(), p)
				}
				printScore(cmd.OutOrStdout(), score)
				printPerspective(cmd.OutOrStdout(), p)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&team, "team", "", "viewing team id")
	cmd.Flags().BoolVar(&fresh, "fresh", false, "recompute instead of using cached scores")
	return cmd
}
