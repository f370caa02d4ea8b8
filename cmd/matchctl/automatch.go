package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	matchingapp "github.com/madhugraj/transact-ai-nexus-sub002/internal/application/matching"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/matching"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/infrastructure/logger"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/infrastructure/persistence"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/infrastructure/scheduler"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	automatchUser    string
	automatchAll     bool
	automatchTimeout time.Duration
)

var automatchCmd = &cobra.Command{
	Use:   "automatch",
	Short: "Run the auto-match workflow against the database",
	Long: `Scores every unmatched invoice against the user's purchase orders and
stores the results. --all runs the same pass the scheduler runs, for every
user with unmatched invoices.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if automatchAll == (automatchUser != "") {
			return errors.New("exactly one of --user or --all is required")
		}
		var userID uuid.UUID
		if automatchUser != "" {
			id, err := uuid.Parse(automatchUser)
			if err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}
			userID = id
		}

		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database,
			logger.NewGormLogger(log, logger.MapGormLogLevel("warn")))
		if err != nil {
			return err
		}
		defer db.Close()

		invoices := persistence.NewGormInvoiceRepository(db.DB)
		service := matchingapp.NewService(
			persistence.NewGormPurchaseOrderRepository(db.DB),
			invoices,
			persistence.NewGormComparisonRepository(db.DB),
			matching.NewMatcher(cfg.Matching.ComparisonConfig()),
		)
		service.SetLogger(log)
		service.SetBatchSize(cfg.Matching.AutoMatchBatchSize)

		ctx, cancel := context.WithTimeout(context.Background(), automatchTimeout)
		defer cancel()

		if automatchAll {
			trigger, err := scheduler.NewCronTrigger(scheduler.CronTriggerConfig{
				Schedule:   cfg.Scheduler.AutoMatchCron,
				JobTimeout: cfg.Scheduler.JobTimeout,
			}, invoices, service, log)
			if err != nil {
				return err
			}
			report := trigger.RunOnce(ctx)
			log.Info("Auto-match pass finished", zap.Int("users", report.Users), zap.Int("processed", report.Processed))
			return writeJSON(cmd.OutOrStdout(), report)
		}

		summary, err := service.AutoMatch(ctx, userID, matchingapp.TriggerManual)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), summary)
	},
}

func init() {
	automatchCmd.Flags().StringVarP(&automatchUser, "user", "u", "", "user id to match invoices for")
	automatchCmd.Flags().BoolVar(&automatchAll, "all", false, "match every user with unmatched invoices")
	automatchCmd.Flags().DurationVar(&automatchTimeout, "timeout", 30*time.Minute, "overall time limit")
	rootCmd.AddCommand(automatchCmd)
}
