package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/myrjola/masks/internal/apiclient"
	"github.com/myrjola/masks/internal/errors"
	"github.com/myrjola/masks/internal/logging"
	"github.com/spf13/cobra"
)

// cli carries the state shared by the commands once the configuration has been loaded.
type cli struct {
	cfg    config
	logger *slog.Logger
}

func (c *cli) client() *apiclient.Client {
	return apiclient.New(c.cfg.baseURL(),
		apiclient.WithTimeout(c.cfg.Timeout),
		apiclient.WithRetryDelay(c.cfg.RetryDelay),
		apiclient.WithLogger(c.logger),
	)
}

var (
	apiGroup = &cobra.Group{
		ID:    "api",
		Title: "Campaign API",
	}
	dbGroup = &cobra.Group{
		ID:    "db",
		Title: "Database operations",
	}
)

func newRootCmd() *cobra.Command {
	c := &cli{}
	rootCmd := &cobra.Command{
		Use:           "masks-cli",
		Short:         "Command line utilities for the Masks of Nyarlathotep campaign manager",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}
			level := slog.LevelInfo
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			c.cfg = cfg
			c.logger = slog.New(logging.NewContextHandler(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				AddSource:   false,
				Level:       level,
				ReplaceAttr: nil,
			})))
			return nil
		},
	}
	registerFlags(rootCmd.PersistentFlags())

	rootCmd.AddGroup(apiGroup, dbGroup)
	rootCmd.AddCommand(
		warmUpCmd(c),
		charactersCmd(c),
		sessionsCmd(c),
		eventsCmd(c),
		boardCmd(c),
		dbCmd(c),
	)
	return rootCmd
}

func main() {
	// A missing .env is fine. The environment is used as is.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
