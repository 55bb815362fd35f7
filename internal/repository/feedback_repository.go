package repository

import (
	"context"

	"github.com/fixora/fixora-service/internal/errs"
	"github.com/fixora/fixora-service/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FeedbackFilter narrows a feedback_requests query. Empty fields are ignored.
type FeedbackFilter struct {
	UserID         string
	OrganizationID string
	ReportID       string
	StaffID        string
	TeamID         string
	Status         model.FeedbackStatus
}

type FeedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

func (r *FeedbackRepository) Create(ctx context.Context, fr *model.FeedbackRequest) error {
	if fr.ID == "" {
		fr.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(fr).Error
}

func (r *FeedbackRepository) Update(ctx context.Context, id string, changes map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&model.FeedbackRequest{}).Where("id = ?", id).Updates(changes)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.ErrFeedbackRequestNotFound
	}
	return nil
}

// List returns matching requests in arrival order (created_at, then id).
func (r *FeedbackRepository) List(ctx context.Context, f FeedbackFilter) ([]model.FeedbackRequest, error) {
	var items []model.FeedbackRequest
	tx := r.db.WithContext(ctx).Model(&model.FeedbackRequest{})
	if f.UserID != "" {
		tx = tx.Where("user_id = ?", f.UserID)
	}
	if f.OrganizationID != "" {
		tx = tx.Where("organization_id = ?", f.OrganizationID)
	}
	if f.ReportID != "" {
		tx = tx.Where("report_id = ?", f.ReportID)
	}
	if f.StaffID != "" {
		tx = tx.Where("? = ANY(assigned_staff_ids)", f.StaffID)
	}
	if f.TeamID != "" {
		tx = tx.Where("assigned_team_id = ?", f.TeamID)
	}
	if f.Status != "" {
		tx = tx.Where("status = ?", f.Status)
	}
	if err := tx.Order("created_at ASC NULLS LAST").Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
