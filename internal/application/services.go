package application

import (
	"context"
	"fmt"

	"github.com/fixora/fixora-service/internal/config"
	"github.com/fixora/fixora-service/internal/database"
	"github.com/fixora/fixora-service/internal/kafka"
	"github.com/fixora/fixora-service/internal/notify"
	"github.com/fixora/fixora-service/internal/repository"
	"github.com/fixora/fixora-service/internal/searchindex"
	"github.com/fixora/fixora-service/internal/service"
	"github.com/fixora/fixora-service/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Services is the wired object graph shared by the API and the one-shot commands.
type Services struct {
	DB       *gorm.DB
	Reports  *service.ReportService
	Feedback *service.FeedbackService
	Backfill *service.BackfillService
	Users    *repository.UserRepository
	// Uploader is nil when object storage is not configured.
	Uploader *storage.S3Uploader
	Queue    *notify.Queue
	Producer *kafka.Producer
	Search   *searchindex.Client
	log      *zap.Logger
}

// Build opens the database and wires repositories, the outbound queue and services.
func Build(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Services, error) {
	db, err := database.Open(cfg.DSN(), log)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	reports := repository.NewReportRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	users := repository.NewUserRepository(db)

	queue := notify.NewQueue(cfg.Notify.Workers, cfg.Notify.QueueSize, cfg.Notify.Timeout, log.Named("outbox"))
	notifier := notify.NewNotifier(users, notify.NewExpoClient(cfg.PushAPIURL), log.Named("notify"))
	producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopicReport)
	if !producer.Enabled() {
		log.Info("kafka: brokers not configured, report events disabled")
	}
	search := searchindex.NewClient(cfg.SearchServiceURL)

	feedback := service.NewFeedbackService(service.FeedbackDeps{
		Reports:  reports,
		Feedback: feedbackRepo,
		Notifier: notifier,
		Events:   producer,
		Outbox:   queue,
		TTL:      cfg.FeedbackTTL,
		Log:      log.Named("feedback"),
	})
	reportSvc := service.NewReportService(service.ReportDeps{
		Reports:  reports,
		Feedback: feedback,
		Notifier: notifier,
		Events:   producer,
		Indexer:  search,
		Outbox:   queue,
		Log:      log.Named("reports"),
	})

	var uploader *storage.S3Uploader
	if cfg.Storage.Endpoint != "" || cfg.Storage.PublicURL != "" {
		uploader, err = storage.NewS3Uploader(ctx, storage.Options{
			Endpoint:        cfg.Storage.Endpoint,
			Region:          cfg.Storage.Region,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			Bucket:          cfg.Storage.Bucket,
			PublicURL:       cfg.Storage.PublicURL,
			AllowedBuckets:  cfg.Storage.AllowedBuckets,
		}, log.Named("storage"))
		if err != nil {
			queue.Close()
			_ = producer.Close()
			return nil, fmt.Errorf("storage: %w", err)
		}
	} else {
		log.Info("storage: STORAGE_ENDPOINT not set, uploads disabled")
	}

	return &Services{
		DB:       db,
		Reports:  reportSvc,
		Feedback: feedback,
		Backfill: service.NewBackfillService(reports, feedbackRepo, feedback, log.Named("backfill")),
		Users:    users,
		Uploader: uploader,
		Queue:    queue,
		Producer: producer,
		Search:   search,
		log:      log,
	}, nil
}

// Close drains queued notifications and events, then releases connections.
func (s *Services) Close() {
	s.Queue.Close()
	if err := s.Producer.Close(); err != nil {
		s.log.Warn("kafka producer close", zap.Error(err))
	}
	if sqlDB, err := s.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
