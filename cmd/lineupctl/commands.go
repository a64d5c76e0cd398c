package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iliyamo/live-show-lineup/internal/app"
	"github.com/iliyamo/live-show-lineup/internal/config"
	"github.com/iliyamo/live-show-lineup/internal/database"
	applogger "github.com/iliyamo/live-show-lineup/internal/logger"
	"github.com/iliyamo/live-show-lineup/internal/middleware"
	"github.com/iliyamo/live-show-lineup/internal/queue"
	"github.com/iliyamo/live-show-lineup/internal/utils"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "lineupctl",
		Short:         "Operate the Live Show lineup service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newMigrateCmd(), newSweepCmd(), newRelayCmd(), newTokenCmd())
	return root
}

// setup loads configuration and a logger writing to stderr so command
// output on stdout stays machine readable.
func setup() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := applogger.New(cfg.Log)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the embedded MySQL schema",
	}
	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			db, err := database.Open(cfg.DB)
			if err != nil {
				return err
			}
			defer db.Close()
			return database.RunMigrations(db, logger)
		},
	}
	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			db, err := database.Open(cfg.DB)
			if err != nil {
				return err
			}
			defer db.Close()
			return database.RollbackMigrations(db, steps, logger)
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	cmd.AddCommand(up, down)
	return cmd
}

func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Cancel finalists whose confirmation deadline has passed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			a, err := app.New(cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()
			report, err := a.Lineup.SweepConfirmationDeadlines(cmd.Context())
			if perr := printJSON(cmd.OutOrStdout(), report); perr != nil {
				return perr
			}
			return err
		},
	}
}

func newRelayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "relay",
		Short: "Publish one batch of pending notifications",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			a, err := app.New(cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()
			pub := queue.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, logger)
			n, err := queue.NewRelay(a.Store, pub, cfg.Workers.RelayBatchSize, logger).RunOnce(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "dispatched %d notifications\n", n)
			return err
		},
	}
}

func newTokenCmd() *cobra.Command {
	var (
		userID string
		role   string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token for an admin or performer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if role != middleware.RoleAdmin && role != middleware.RolePerformer {
				return fmt.Errorf("role must be %s or %s", middleware.RoleAdmin, middleware.RolePerformer)
			}
			cfg, _, err := setup()
			if err != nil {
				return err
			}
			if ttl <= 0 {
				ttl = time.Duration(cfg.AccessTTLMin) * time.Minute
			}
			tok, err := utils.NewAccessToken(cfg.JWTSecret, userID, role, ttl)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), tok)
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "token subject (user id)")
	cmd.Flags().StringVar(&role, "role", middleware.RoleAdmin, "ADMIN or PERFORMER")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to ACCESS_TOKEN_TTL_MIN)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
