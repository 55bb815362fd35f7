package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/fixora/fixora-service/internal/database"
	"github.com/fixora/fixora-service/internal/kafka"
	"github.com/fixora/fixora-service/internal/repository"
	"github.com/fixora/fixora-service/internal/searchindex"
	"github.com/fixora/fixora-service/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var reindexSearchCmd = &cobra.Command{
	Use:   "reindex-search",
	Short: "Reindex all reports into search. Prefers Kafka; falls back to HTTP if SEARCH_SERVICE_URL set.",
	RunE:  runReindexSearch,
}

func init() {
	rootCmd.AddCommand(reindexSearchCmd)
}

func runReindexSearch(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	conn, err := database.Open(cfg.DSN(), log)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
	defer cancel()

	reports, total, err := repository.NewReportRepository(conn).List(ctx, repository.ReportFilter{})
	if err != nil {
		return fmt.Errorf("list reports: %w", err)
	}
	log.Info("reindex-search: found reports", zap.Int64("total", total))

	switch {
	case len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopicReport != "":
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopicReport)
		defer func() { _ = producer.Close() }()
		failed := 0
		for i := range reports {
			r := &reports[i]
			if err := producer.ProduceReportEvent(ctx, kafka.EventReportUpdated, r.ID, service.ReportEventPayload(r)); err != nil {
				failed++
				log.Warn("reindex-search: produce failed", zap.String("report_id", r.ID), zap.Error(err))
			}
			if (i+1)%50 == 0 || i == len(reports)-1 {
				log.Info("reindex-search: progress", zap.Int("sent", i+1), zap.Int("of", len(reports)))
			}
		}
		log.Info("reindex-search: done via kafka", zap.Int("sent", len(reports)-failed), zap.Int("failed", failed))
	case cfg.SearchServiceURL != "":
		client := searchindex.NewClient(cfg.SearchServiceURL)
		failed := 0
		for i := range reports {
			if err := client.IndexReport(ctx, &reports[i]); err != nil {
				failed++
				log.Warn("reindex-search: index failed", zap.String("report_id", reports[i].ID), zap.Error(err))
			}
			if (i+1)%50 == 0 || i == len(reports)-1 {
				log.Info("reindex-search: progress", zap.Int("indexed", i+1), zap.Int("of", len(reports)))
			}
		}
		log.Info("reindex-search: done via http", zap.Int("indexed", len(reports)-failed), zap.Int("failed", failed))
	default:
		log.Warn("reindex-search: neither KAFKA_BROKERS nor SEARCH_SERVICE_URL set, nothing reindexed")
	}
	return nil
}
