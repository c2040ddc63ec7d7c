package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/myrjola/masks/internal/errors"
	"github.com/myrjola/masks/internal/sqlite"
	"github.com/spf13/cobra"
)

func dbCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "db",
		GroupID: dbGroup.ID,
		Short:   "Manage the campaign database",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Synchronize the schema of the database and seed the demo data",
		Long: `Opens the SQLite database at --sqlite-url, creating it when missing, migrates it to the current
schema and applies the demo fixtures unless they were applied before.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// The database starts a background optimizer bound to this context.
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			db, err := sqlite.NewDatabase(ctx, c.cfg.SqliteURL, c.logger)
			if err != nil {
				return errors.Wrap(err, "open database", slog.String("url", c.cfg.SqliteURL))
			}
			if err = db.Optimize(ctx); err != nil {
				_ = db.Close()
				return errors.Wrap(err, "optimize database")
			}
			if err = db.Close(); err != nil {
				return errors.Wrap(err, "close database")
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "database %s is up to date\n", c.cfg.SqliteURL)
			return nil
		},
	})
	return cmd
}
