// Package cli implements statsctl, a reporting tool over a SQLite stats
// database.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/netstats/internal/adapters/repository"
	service "github.com/okian/netstats/internal/app"
	"github.com/okian/netstats/pkg/logger"
)

const defaultDB = "netstats.db"

// options holds the persistent flags shared by every command.
type options struct {
	dbPath      string
	logLevel    string
	jsonOut     bool
	recentGames int
	workers     int
}

// Execute runs statsctl with the process arguments.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// NewRootCommand builds the statsctl command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "statsctl",
		Short:         "Netball game statistics tool",
		Long:          "Load game statistics into a SQLite database and report reconciled scores, rosters and player leaderboards.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return logger.Init(
				logger.WithLevel(opts.logLevel),
				logger.WithOutput(cmd.ErrOrStderr()),
			)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.dbPath, "db", defaultDB, "path to SQLite database")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	flags.BoolVar(&opts.jsonOut, "json", false, "print JSON instead of tables")
	flags.IntVar(&opts.recentGames, "recent", 5, "N for the bare \"last\" time range")
	flags.IntVar(&opts.workers, "workers", 4, "per-game fan-out workers")

	root.AddCommand(
		newLoadCommand(opts),
		newScoreCommand(opts),
		newLeaderboardCommand(opts),
		newRosterCommand(opts),
	)
	return root
}

// withService opens the database, runs fn against a started service and
// closes everything afterwards.
func (o *options) withService(ctx context.Context, fn func(*service.Service) error) error {
	store, err := repository.OpenSQLite(ctx, o.dbPath, repository.WithLogger(logger.Named("sqlite")))
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	svc := service.New(store,
		service.WithRecentGames(o.recentGames),
		service.WithWorkerCount(o.workers),
		service.WithLogger(logger.Named("statsctl")),
	)
	if err := svc.Start(ctx); err != nil {
		_ = store.Close()
		return err
	}
	defer svc.Stop()
	return fn(svc)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
