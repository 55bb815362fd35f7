package service

import (
	"context"

	"github.com/fixora/fixora-service/internal/kafka"
	"github.com/fixora/fixora-service/internal/model"
	"github.com/fixora/fixora-service/internal/notify"
	"github.com/fixora/fixora-service/internal/repository"
	"go.uber.org/zap"
)

// ReportStore is the reports collection.
type ReportStore interface {
	Create(ctx context.Context, report *model.Report) error
	GetByID(ctx context.Context, id string) (*model.Report, error)
	Update(ctx context.Context, id string, changes map[string]interface{}) error
	List(ctx context.Context, f repository.ReportFilter) ([]model.Report, int64, error)
}

// FeedbackStore is the feedback_requests collection.
type FeedbackStore interface {
	Create(ctx context.Context, fr *model.FeedbackRequest) error
	Update(ctx context.Context, id string, changes map[string]interface{}) error
	List(ctx context.Context, f repository.FeedbackFilter) ([]model.FeedbackRequest, error)
}

// Outbox accepts best-effort work that must not block or fail the caller.
type Outbox interface {
	Submit(name string, task notify.Task) bool
}

// Notifier sends the push notifications produced by the report workflow.
type Notifier interface {
	NotifyAdminsNewReport(ctx context.Context, reportID, organizationID, category, urgency, submittedBy string) (notify.SendResult, error)
	NotifyStaffAssignment(ctx context.Context, reportID string, staffIDs []string, category, address string) notify.SendResult
	NotifyAdminsProofUploaded(ctx context.Context, reportID, organizationID, staffName, category string) (notify.SendResult, error)
	NotifyUserReportResolved(ctx context.Context, userID, reportID, category, address string) error
	NotifyUserReportInProgress(ctx context.Context, userID, reportID, category string) error
}

// ReportIndexer pushes reports to the search service.
type ReportIndexer interface {
	IndexReport(ctx context.Context, r *model.Report) error
}

// sideEffects funnels notifications, events and indexing into the outbox.
type sideEffects struct {
	outbox  Outbox
	events  kafka.ReportEventProducer
	indexer ReportIndexer
	log     *zap.Logger
}

func (s sideEffects) submit(name string, task notify.Task) {
	if s.outbox == nil {
		return
	}
	if !s.outbox.Submit(name, task) {
		s.log.Warn("side effect dropped", zap.String("task", name))
	}
}

func (s sideEffects) emit(event, reportID string, payload map[string]interface{}) {
	if s.events == nil {
		return
	}
	s.submit("event:"+event, func(ctx context.Context) error {
		return s.events.ProduceReportEvent(ctx, event, reportID, payload)
	})
}

func (s sideEffects) index(r *model.Report) {
	if s.indexer == nil || r == nil {
		return
	}
	snapshot := *r
	s.submit("index_report", func(ctx context.Context) error {
		return s.indexer.IndexReport(ctx, &snapshot)
	})
}
