package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/fixora/fixora-service/internal/application"
	"github.com/fixora/fixora-service/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var backfillOrganization string

var backfillFeedbackCmd = &cobra.Command{
	Use:   "backfill-feedback",
	Short: "Create feedback requests for resolved reports that have none",
	RunE:  runBackfillFeedback,
}

func init() {
	backfillFeedbackCmd.Flags().StringVar(&backfillOrganization, "organization", "", "only reports of this organization")
	rootCmd.AddCommand(backfillFeedbackCmd)
}

func runBackfillFeedback(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Minute)
	defer cancel()

	svc, err := application.Build(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer svc.Close()

	var res service.BackfillResult
	if backfillOrganization != "" {
		res, err = svc.Backfill.BackfillFeedbackForOrganization(ctx, backfillOrganization)
	} else {
		res, err = svc.Backfill.BackfillFeedbackRequests(ctx)
	}
	if err != nil {
		return fmt.Errorf("backfill: %w", err)
	}
	log.Info("backfill-feedback: done",
		zap.Int("created", res.Created),
		zap.Int("skipped", res.Skipped),
		zap.Int("errors", res.Errors),
		zap.Int("total", res.Total))
	return nil
}
