package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fixora/fixora-service/internal/errs"
	"github.com/fixora/fixora-service/internal/kafka"
	"github.com/fixora/fixora-service/internal/model"
	"github.com/fixora/fixora-service/internal/observability"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// DefaultFeedbackTTL is how long a citizen has to answer a feedback request.
const DefaultFeedbackTTL = 7 * 24 * time.Hour

const (
	defaultFeedbackCategory = "General"
	defaultReworkReason     = "User reported issue not resolved"
	resubmittedMarker       = "⚠️ RESUBMITTED: "
)

// FeedbackServicer is what the HTTP layer needs from the feedback workflow.
type FeedbackServicer interface {
	CreateFeedbackRequest(ctx context.Context, reportID, userID string, snapshot model.Report) (*model.FeedbackRequest, error)
	SubmitFeedback(ctx context.Context, feedbackRequestID, reportID string, in FeedbackSubmission, shouldResubmit bool) (*SubmitResult, error)
	GetPendingFeedbackRequests(ctx context.Context, userID string) []model.FeedbackRequest
	CheckAndRemindPendingFeedback(ctx context.Context, userID string) Reminder
	GetOrganizationFeedbackStats(ctx context.Context, organizationID string) FeedbackStats
	GetReportFeedback(ctx context.Context, reportID string) *model.FeedbackRequest
	GetStaffFeedback(ctx context.Context, staffID, teamID string) []model.FeedbackRequest
}

// FeedbackSubmission is the citizen's answer to a feedback request.
type FeedbackSubmission struct {
	IsResolved       bool     `json:"isResolved"`
	Rating           int      `json:"rating"`
	Comment          string   `json:"comment"`
	AdditionalImages []string `json:"additionalImages"`
	WouldRecommend   bool     `json:"wouldRecommend"`
}

type SubmitResult struct {
	IsResolved     bool   `json:"isResolved"`
	ShouldResubmit bool   `json:"shouldResubmit"`
	NewReportID    string `json:"newReportId,omitempty"`
}

type FeedbackDeps struct {
	Reports  ReportStore
	Feedback FeedbackStore
	Notifier Notifier
	Events   kafka.ReportEventProducer
	Outbox   Outbox
	TTL      time.Duration
	Now      func() time.Time
	Log      *zap.Logger
}

// FeedbackService runs the resolved → feedback → verified/rework → resubmission
// workflow and the read-side views over feedback requests.
//
// A feedback request and its report are written one after the other with no
// transaction; a failure between the two writes leaves them out of step.
type FeedbackService struct {
	reports  ReportStore
	feedback FeedbackStore
	notifier Notifier
	effects  sideEffects
	ttl      time.Duration
	now      func() time.Time
	log      *zap.Logger
}

func NewFeedbackService(d FeedbackDeps) *FeedbackService {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.TTL <= 0 {
		d.TTL = DefaultFeedbackTTL
	}
	return &FeedbackService{
		reports:  d.Reports,
		feedback: d.Feedback,
		notifier: d.Notifier,
		effects:  sideEffects{outbox: d.Outbox, events: d.Events, log: d.Log},
		ttl:      d.TTL,
		now:      d.Now,
		log:      d.Log,
	}
}

// CreateFeedbackRequest opens a pending request for a resolved report and
// links it from the report.
func (s *FeedbackService) CreateFeedbackRequest(ctx context.Context, reportID, userID string, snapshot model.Report) (_ *model.FeedbackRequest, err error) {
	ctx, span := observability.StartSpan(ctx, "feedback.create_request", attribute.String("report.id", reportID))
	defer observability.FinishSpan(span, &err)

	now := s.now()
	expires := now.Add(s.ttl)
	category := snapshot.Category
	if category == "" {
		category = defaultFeedbackCategory
	}
	fr := &model.FeedbackRequest{
		ReportID:          reportID,
		UserID:            userID,
		OrganizationID:    snapshot.OrganizationID,
		ReportCategory:    category,
		ReportDescription: snapshot.Description,
		ReportLocation:    snapshot.Address,
		AssignedStaffIDs:  append([]string{}, snapshot.AssignedStaffIDs...),
		AssignedTeamID:    snapshot.AssignedTeamID,
		ResolvedAt:        &now,
		Status:            model.FeedbackStatusPending,
		NotificationSent:  true,
		AdditionalImages:  []string{},
		CreatedAt:         &now,
		ExpiresAt:         &expires,
	}
	if err := s.feedback.Create(ctx, fr); err != nil {
		return nil, fmt.Errorf("create feedback request: %w", err)
	}

	if err := s.reports.Update(ctx, reportID, map[string]interface{}{
		"feedback_request_id":   fr.ID,
		"feedback_status":       string(model.FeedbackStatusPending),
		"feedback_requested_at": now,
	}); err != nil {
		s.log.Error("feedback request created but report not linked",
			zap.String("report_id", reportID),
			zap.String("feedback_request_id", fr.ID),
			zap.Error(err))
		return nil, fmt.Errorf("link feedback request to report: %w", err)
	}

	s.effects.emit(kafka.EventFeedbackRequested, reportID, map[string]interface{}{
		"report_id":           reportID,
		"feedback_request_id": fr.ID,
		"user_id":             userID,
		"organization_id":     fr.OrganizationID,
	})
	return fr, nil
}

// SubmitFeedback completes a feedback request and moves the report to
// verified_resolved or needs_rework, optionally resubmitting it as a new report.
func (s *FeedbackService) SubmitFeedback(ctx context.Context, feedbackRequestID, reportID string, in FeedbackSubmission, shouldResubmit bool) (_ *SubmitResult, err error) {
	ctx, span := observability.StartSpan(ctx, "feedback.submit",
		attribute.String("report.id", reportID),
		attribute.String("feedback_request.id", feedbackRequestID),
		attribute.Bool("feedback.is_resolved", in.IsResolved))
	defer observability.FinishSpan(span, &err)

	if in.Rating < 1 || in.Rating > 5 {
		return nil, errs.ErrInvalidRating
	}
	images := in.AdditionalImages
	if images == nil {
		images = []string{}
	}
	now := s.now()

	if err := s.feedback.Update(ctx, feedbackRequestID, map[string]interface{}{
		"status":            string(model.FeedbackStatusCompleted),
		"is_resolved":       in.IsResolved,
		"rating":            in.Rating,
		"comment":           in.Comment,
		"additional_images": pq.StringArray(images),
		"would_recommend":   in.WouldRecommend,
		"submitted_at":      now,
	}); err != nil {
		return nil, fmt.Errorf("complete feedback request: %w", err)
	}

	update := map[string]interface{}{
		"feedback_status":        string(model.FeedbackStatusCompleted),
		"feedback_received":      true,
		"feedback_received_at":   now,
		"user_verified_resolved": in.IsResolved,
		"user_rating":            in.Rating,
		"user_comment":           in.Comment,
	}
	result := &SubmitResult{IsResolved: in.IsResolved, ShouldResubmit: shouldResubmit}

	if in.IsResolved {
		update["status"] = string(model.ReportStatusVerifiedResolved)
		update["verified_at"] = now
	} else {
		reason := in.Comment
		if reason == "" {
			reason = defaultReworkReason
		}
		update["status"] = string(model.ReportStatusNeedsRework)
		update["needs_rework_at"] = now
		update["needs_rework_reason"] = reason

		if shouldResubmit {
			original, err := s.reports.GetByID(ctx, reportID)
			if err != nil {
				s.logPartial("load report for resubmission", feedbackRequestID, reportID, err)
				return nil, fmt.Errorf("load report for resubmission: %w", err)
			}
			newID, err := s.ResubmitReport(ctx, *original, reportID, in.Comment, images)
			if err != nil {
				s.logPartial("resubmit report", feedbackRequestID, reportID, err)
				return nil, err
			}
			update["resubmitted_as_report_id"] = newID
			update["resubmitted_at"] = now
			result.NewReportID = newID
		}
	}

	if err := s.reports.Update(ctx, reportID, update); err != nil {
		s.logPartial("apply feedback to report", feedbackRequestID, reportID, err)
		return nil, fmt.Errorf("apply feedback to report: %w", err)
	}

	s.effects.emit(kafka.EventFeedbackSubmitted, reportID, map[string]interface{}{
		"report_id":           reportID,
		"feedback_request_id": feedbackRequestID,
		"is_resolved":         in.IsResolved,
		"rating":              in.Rating,
		"resubmitted_as":      result.NewReportID,
	})
	return result, nil
}

// ResubmitReport files a fresh pending report from an unsatisfactory one and
// returns its id. Admins of the organization are notified through the outbox.
func (s *FeedbackService) ResubmitReport(ctx context.Context, original model.Report, originalID, comment string, additionalImages []string) (_ string, err error) {
	ctx, span := observability.StartSpan(ctx, "feedback.resubmit_report", attribute.String("report.original_id", originalID))
	defer observability.FinishSpan(span, &err)

	images := make([]string, 0, len(original.ImageURLs)+len(additionalImages))
	images = append(images, original.ImageURLs...)
	images = append(images, additionalImages...)

	r := &model.Report{
		UserID:               original.UserID,
		OrganizationID:       original.OrganizationID,
		Category:             original.Category,
		Description:          original.Description + "\n\n" + resubmittedMarker + comment,
		Address:              original.Address,
		Latitude:             original.Latitude,
		Longitude:            original.Longitude,
		Urgency:              original.Urgency,
		Status:               model.ReportStatusPending,
		ImageURLs:            images,
		ProofImages:          []string{},
		AssignedStaffIDs:     []string{},
		PredictionMetadata:   original.PredictionMetadata,
		ClassificationResult: original.ClassificationResult,
		IsResubmission:       true,
		OriginalReportID:     originalID,
		ResubmissionReason:   comment,
	}
	if err := s.reports.Create(ctx, r); err != nil {
		return "", fmt.Errorf("create resubmitted report: %w", err)
	}

	if original.OrganizationID != "" && s.notifier != nil {
		category := original.Category
		if category == "" {
			category = "Issue"
		}
		urgency := original.Urgency
		if urgency == "" {
			urgency = model.UrgencyMedium
		}
		newID, orgID, userID := r.ID, original.OrganizationID, original.UserID
		s.effects.submit("notify_admins_resubmission", func(ctx context.Context) error {
			_, err := s.notifier.NotifyAdminsNewReport(ctx, newID, orgID, category, urgency, userID)
			return err
		})
	}
	s.effects.emit(kafka.EventReportResubmitted, r.ID, map[string]interface{}{
		"report_id":          r.ID,
		"original_report_id": originalID,
		"organization_id":    r.OrganizationID,
	})
	return r.ID, nil
}

func (s *FeedbackService) logPartial(step, feedbackRequestID, reportID string, err error) {
	s.log.Error("feedback submission partially applied",
		zap.String("step", step),
		zap.String("feedback_request_id", feedbackRequestID),
		zap.String("report_id", reportID),
		zap.Error(err))
}
