package service

import (
	"context"
	"fmt"

	"github.com/fixora/fixora-service/internal/model"
	"github.com/fixora/fixora-service/internal/observability"
	"github.com/fixora/fixora-service/internal/repository"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// FeedbackRequester opens feedback requests for resolved reports.
type FeedbackRequester interface {
	CreateFeedbackRequest(ctx context.Context, reportID, userID string, snapshot model.Report) (*model.FeedbackRequest, error)
}

// BackfillResult counts what a backfill run did with each resolved report.
type BackfillResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
	Total   int `json:"total"`
}

// BackfillService creates feedback requests for reports that were resolved
// before they were tracked, or whose request creation failed.
type BackfillService struct {
	reports   ReportStore
	feedback  FeedbackStore
	requester FeedbackRequester
	log       *zap.Logger
}

func NewBackfillService(reports ReportStore, feedback FeedbackStore, requester FeedbackRequester, log *zap.Logger) *BackfillService {
	if log == nil {
		log = zap.NewNop()
	}
	return &BackfillService{reports: reports, feedback: feedback, requester: requester, log: log}
}

// BackfillFeedbackRequests scans every resolved report.
func (b *BackfillService) BackfillFeedbackRequests(ctx context.Context) (BackfillResult, error) {
	return b.run(ctx, "")
}

// BackfillFeedbackForOrganization scans the organization's resolved reports.
func (b *BackfillService) BackfillFeedbackForOrganization(ctx context.Context, organizationID string) (BackfillResult, error) {
	return b.run(ctx, organizationID)
}

// run fails only when the resolved reports cannot be listed; per-report
// failures are counted in Errors.
func (b *BackfillService) run(ctx context.Context, organizationID string) (res BackfillResult, err error) {
	ctx, span := observability.StartSpan(ctx, "feedback.backfill", attribute.String("organization.id", organizationID))
	defer observability.FinishSpan(span, &err)

	reports, _, err := b.reports.List(ctx, repository.ReportFilter{
		OrganizationID: organizationID,
		Status:         model.ReportStatusResolved,
	})
	if err != nil {
		return BackfillResult{}, fmt.Errorf("list resolved reports: %w", err)
	}
	res.Total = len(reports)
	b.log.Info("feedback backfill started", zap.String("organization_id", organizationID), zap.Int("resolved", res.Total))

	for _, r := range reports {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		existing, err := b.feedback.List(ctx, repository.FeedbackFilter{ReportID: r.ID})
		if err != nil {
			b.log.Warn("backfill: lookup feedback", zap.String("report_id", r.ID), zap.Error(err))
			res.Errors++
			continue
		}
		if len(existing) > 0 {
			b.log.Debug("backfill: feedback request exists", zap.String("report_id", r.ID))
			res.Skipped++
			continue
		}
		if r.UserID == "" {
			b.log.Debug("backfill: report has no owner", zap.String("report_id", r.ID))
			res.Skipped++
			continue
		}
		if _, err := b.requester.CreateFeedbackRequest(ctx, r.ID, r.UserID, r); err != nil {
			b.log.Warn("backfill: create feedback request", zap.String("report_id", r.ID), zap.Error(err))
			res.Errors++
			continue
		}
		res.Created++
	}

	b.log.Info("feedback backfill finished",
		zap.String("organization_id", organizationID),
		zap.Int("created", res.Created),
		zap.Int("skipped", res.Skipped),
		zap.Int("errors", res.Errors),
		zap.Int("total", res.Total))
	return res, nil
}
