package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/netstats/internal/adapters/repository"
	"github.com/okian/netstats/pkg/logger"
)

func newLoadCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "load <dataset.json>",
		Short: "Import a JSON dataset of games, roster, stats and official scores",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open dataset: %w", err)
			}
			defer f.Close()

			ds, err := repository.DecodeDataset(f)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := repository.OpenSQLite(ctx, opts.dbPath, repository.WithLogger(logger.Named("sqlite")))
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer store.Close()

			if err := repository.Import(ctx, store, ds); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "loaded %d games, %d roster slots, %d stat records, %d official scores into %s\n",
				len(ds.Games), len(ds.Roster), len(ds.Stats), len(ds.Official), opts.dbPath)
			return nil
		},
	}
}
