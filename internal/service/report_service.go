package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fixora/fixora-service/internal/errs"
	"github.com/fixora/fixora-service/internal/kafka"
	"github.com/fixora/fixora-service/internal/model"
	"github.com/fixora/fixora-service/internal/observability"
	"github.com/fixora/fixora-service/internal/repository"
	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ReportServicer is what the HTTP layer needs from the report workflow.
type ReportServicer interface {
	Create(ctx context.Context, in CreateReportInput) (*model.Report, error)
	Get(ctx context.Context, id string) (*model.Report, error)
	List(ctx context.Context, in ListReportsInput) ([]model.Report, int64, error)
	UpdateStatus(ctx context.Context, id string, status model.ReportStatus, actorID string) (*model.Report, error)
	Assign(ctx context.Context, id string, in AssignInput) (*model.Report, error)
	AddProof(ctx context.Context, id, staffName string, images []string) (*model.Report, error)
}

type CreateReportInput struct {
	UserID               string                 `json:"userId" validate:"required"`
	OrganizationID       string                 `json:"organizationId"`
	Category             string                 `json:"category" validate:"required"`
	Description          string                 `json:"description" validate:"required,min=10,max=500"`
	Address              string                 `json:"address" validate:"required"`
	Latitude             *float64               `json:"latitude" validate:"omitempty,latitude"`
	Longitude            *float64               `json:"longitude" validate:"omitempty,longitude"`
	Urgency              string                 `json:"urgency" validate:"omitempty,oneof=High Medium Low"`
	ImageURLs            []string               `json:"imageUrls" validate:"min=1,dive,required"`
	PredictionMetadata   map[string]interface{} `json:"predictionMetadata"`
	ClassificationResult map[string]interface{} `json:"classificationResult"`
}

type ListReportsInput struct {
	repository.ReportFilter
	SortByUrgency bool
}

type AssignInput struct {
	StaffIDs   []string `json:"staffIds"`
	TeamID     string   `json:"teamId"`
	AssignedBy string   `json:"assignedBy"`
}

// ReportService handles the citizen/staff/admin side of a report's life up
// to resolution; FeedbackService takes over from there.
type ReportService struct {
	reports  ReportStore
	feedback FeedbackRequester
	notifier Notifier
	effects  sideEffects
	validate *validator.Validate
	now      func() time.Time
	log      *zap.Logger
}

type ReportDeps struct {
	Reports  ReportStore
	Feedback FeedbackRequester
	Notifier Notifier
	Events   kafka.ReportEventProducer
	Indexer  ReportIndexer
	Outbox   Outbox
	Now      func() time.Time
	Log      *zap.Logger
}

func NewReportService(d ReportDeps) *ReportService {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &ReportService{
		reports:  d.Reports,
		feedback: d.Feedback,
		notifier: d.Notifier,
		effects:  sideEffects{outbox: d.Outbox, events: d.Events, indexer: d.Indexer, log: d.Log},
		validate: validator.New(),
		now:      d.Now,
		log:      d.Log,
	}
}

func (s *ReportService) Create(ctx context.Context, in CreateReportInput) (_ *model.Report, err error) {
	ctx, span := observability.StartSpan(ctx, "report.create", attribute.String("organization.id", in.OrganizationID))
	defer observability.FinishSpan(span, &err)

	if err := s.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return nil, fmt.Errorf("%w: %s", errs.ErrInvalidReport, verrs.Error())
		}
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidReport, err)
	}

	r := &model.Report{
		UserID:               in.UserID,
		OrganizationID:       in.OrganizationID,
		Category:             in.Category,
		Description:          in.Description,
		Address:              in.Address,
		Latitude:             in.Latitude,
		Longitude:            in.Longitude,
		Urgency:              in.Urgency,
		Status:               model.ReportStatusPending,
		ImageURLs:            in.ImageURLs,
		ProofImages:          []string{},
		AssignedStaffIDs:     []string{},
		PredictionMetadata:   in.PredictionMetadata,
		ClassificationResult: in.ClassificationResult,
	}
	if r.Urgency == "" {
		r.Urgency = r.PredictedUrgency()
	}
	if err := s.reports.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}

	if r.OrganizationID != "" {
		urgency := r.Urgency
		if urgency == "" {
			urgency = model.UrgencyMedium
		}
		id, orgID, category, userID := r.ID, r.OrganizationID, r.Category, r.UserID
		s.effects.submit("notify_admins_new_report", func(ctx context.Context) error {
			_, err := s.notifier.NotifyAdminsNewReport(ctx, id, orgID, category, urgency, userID)
			return err
		})
	}
	s.effects.index(r)
	s.effects.emit(kafka.EventReportCreated, r.ID, ReportEventPayload(r))
	return r, nil
}

func (s *ReportService) Get(ctx context.Context, id string) (*model.Report, error) {
	return s.reports.GetByID(ctx, id)
}

func (s *ReportService) List(ctx context.Context, in ListReportsInput) ([]model.Report, int64, error) {
	items, total, err := s.reports.List(ctx, in.ReportFilter)
	if err != nil {
		return nil, 0, err
	}
	if in.SortByUrgency {
		SortByUrgency(items)
	}
	return items, total, nil
}

// UpdateStatus moves a report to status. Resolving requires proof of work and
// opens a feedback request for the citizen.
func (s *ReportService) UpdateStatus(ctx context.Context, id string, status model.ReportStatus, actorID string) (_ *model.Report, err error) {
	ctx, span := observability.StartSpan(ctx, "report.update_status",
		attribute.String("report.id", id),
		attribute.String("report.status", string(status)))
	defer observability.FinishSpan(span, &err)

	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", errs.ErrInvalidStatus, status)
	}
	r, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if status == model.ReportStatusResolved && len(r.ProofImages) == 0 {
		return nil, errs.ErrProofRequired
	}
	previous := r.Status
	if err := s.reports.Update(ctx, id, map[string]interface{}{
		"status":     string(status),
		"updated_by": actorID,
	}); err != nil {
		return nil, fmt.Errorf("update report status: %w", err)
	}
	r.Status = status
	r.UpdatedBy = actorID

	switch status {
	case model.ReportStatusResolved:
		if r.UserID != "" && s.feedback != nil {
			fr, err := s.feedback.CreateFeedbackRequest(ctx, id, r.UserID, *r)
			if err != nil {
				// backfill-feedback picks these up later
				s.log.Warn("report resolved without feedback request", zap.String("report_id", id), zap.Error(err))
			} else {
				r.FeedbackRequestID = fr.ID
				r.FeedbackStatus = string(model.FeedbackStatusPending)
			}
		}
		userID, category, address := r.UserID, r.Category, r.Address
		s.effects.submit("notify_user_resolved", func(ctx context.Context) error {
			return s.notifier.NotifyUserReportResolved(ctx, userID, id, category, address)
		})
	case model.ReportStatusInProgress:
		userID, category := r.UserID, r.Category
		s.effects.submit("notify_user_in_progress", func(ctx context.Context) error {
			return s.notifier.NotifyUserReportInProgress(ctx, userID, id, category)
		})
	}

	s.effects.index(r)
	s.effects.emit(kafka.EventReportStatusChanged, id, map[string]interface{}{
		"report_id":       id,
		"organization_id": r.OrganizationID,
		"from":            string(previous),
		"to":              string(status),
		"updated_by":      actorID,
	})
	return r, nil
}

// Assign hands the report to individual staff members or to a team.
func (s *ReportService) Assign(ctx context.Context, id string, in AssignInput) (_ *model.Report, err error) {
	ctx, span := observability.StartSpan(ctx, "report.assign", attribute.String("report.id", id))
	defer observability.FinishSpan(span, &err)

	if len(in.StaffIDs) == 0 && in.TeamID == "" {
		return nil, errs.ErrInvalidAssign
	}
	r, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	assignmentType := model.AssignmentTeam
	assignedTo := in.TeamID
	if len(in.StaffIDs) > 0 {
		assignmentType = model.AssignmentIndividual
		assignedTo = in.StaffIDs[0]
	}
	staff := pq.StringArray(append([]string{}, in.StaffIDs...))
	if err := s.reports.Update(ctx, id, map[string]interface{}{
		"assigned_staff_ids": staff,
		"assigned_team_id":   in.TeamID,
		"assigned_to":        assignedTo,
		"assignment_type":    assignmentType,
		"assigned_at":        now,
		"assigned_by":        in.AssignedBy,
		"status":             string(model.ReportStatusAssigned),
	}); err != nil {
		return nil, fmt.Errorf("assign report: %w", err)
	}
	r.AssignedStaffIDs = staff
	r.AssignedTeamID = in.TeamID
	r.AssignedTo = assignedTo
	r.AssignmentType = assignmentType
	r.AssignedAt = &now
	r.AssignedBy = in.AssignedBy
	r.Status = model.ReportStatusAssigned

	if len(staff) > 0 {
		category, address := r.Category, r.Address
		s.effects.submit("notify_staff_assignment", func(ctx context.Context) error {
			s.notifier.NotifyStaffAssignment(ctx, id, staff, category, address)
			return nil
		})
	}
	s.effects.index(r)
	s.effects.emit(kafka.EventReportStatusChanged, id, map[string]interface{}{
		"report_id":       id,
		"organization_id": r.OrganizationID,
		"to":              string(model.ReportStatusAssigned),
		"assignment_type": assignmentType,
	})
	return r, nil
}

// AddProof attaches proof-of-work images and tells the organization's admins.
func (s *ReportService) AddProof(ctx context.Context, id, staffName string, images []string) (_ *model.Report, err error) {
	ctx, span := observability.StartSpan(ctx, "report.add_proof", attribute.String("report.id", id))
	defer observability.FinishSpan(span, &err)

	if len(images) == 0 {
		return nil, errs.ErrEmptyImage
	}
	r, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	proof := make(pq.StringArray, 0, len(r.ProofImages)+len(images))
	proof = append(proof, r.ProofImages...)
	proof = append(proof, images...)
	if err := s.reports.Update(ctx, id, map[string]interface{}{"proof_images": proof}); err != nil {
		return nil, fmt.Errorf("add proof images: %w", err)
	}
	r.ProofImages = proof

	if r.OrganizationID != "" {
		orgID, category := r.OrganizationID, r.Category
		s.effects.submit("notify_admins_proof", func(ctx context.Context) error {
			_, err := s.notifier.NotifyAdminsProofUploaded(ctx, id, orgID, staffName, category)
			return err
		})
	}
	return r, nil
}

// ReportEventPayload is the Kafka payload shared by report lifecycle events.
func ReportEventPayload(r *model.Report) map[string]interface{} {
	return map[string]interface{}{
		"report_id":       r.ID,
		"user_id":         r.UserID,
		"organization_id": r.OrganizationID,
		"category":        r.Category,
		"urgency":         r.Urgency,
		"status":          string(r.Status),
	}
}
