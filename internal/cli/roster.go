package cli

import (
	"github.com/spf13/cobra"

	service "github.com/okian/netstats/internal/app"
)

func newRosterCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "roster <gameID>",
		Short: "Show who played where and which slots are empty",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return opts.withService(ctx, func(svc *service.Service) error {
				st, err := svc.RosterStatus(ctx, args[0])
				if err != nil {
					return err
				}
				if opts.jsonOut {
					return writeJSON(cmd.OutOrStdout(), st)
				}
				printRoster(cmd.OutOrStdout(), st)
				return nil
			})
		},
	}
}
