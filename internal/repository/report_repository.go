package repository

import (
	"context"
	"errors"

	"github.com/fixora/fixora-service/internal/errs"
	"github.com/fixora/fixora-service/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReportFilter narrows a reports query. Empty fields are ignored.
type ReportFilter struct {
	UserID         string
	OrganizationID string
	Status         model.ReportStatus
	StaffID        string
	TeamID         string
	Limit          int
	Offset         int
}

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) Create(ctx context.Context, report *model.Report) error {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *ReportRepository) GetByID(ctx context.Context, id string) (*model.Report, error) {
	var report model.Report
	if err := r.db.WithContext(ctx).First(&report, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrReportNotFound
		}
		return nil, err
	}
	return &report, nil
}

// Update applies a partial update keyed by column name.
func (r *ReportRepository) Update(ctx context.Context, id string, changes map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&model.Report{}).Where("id = ?", id).Updates(changes)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.ErrReportNotFound
	}
	return nil
}

func (r *ReportRepository) List(ctx context.Context, f ReportFilter) ([]model.Report, int64, error) {
	var items []model.Report
	var total int64
	tx := r.db.WithContext(ctx).Model(&model.Report{})
	if f.UserID != "" {
		tx = tx.Where("user_id = ?", f.UserID)
	}
	if f.OrganizationID != "" {
		tx = tx.Where("organization_id = ?", f.OrganizationID)
	}
	if f.Status != "" {
		tx = tx.Where("status = ?", f.Status)
	}
	if f.StaffID != "" {
		tx = tx.Where("? = ANY(assigned_staff_ids)", f.StaffID)
	}
	if f.TeamID != "" {
		tx = tx.Where("assigned_team_id = ?", f.TeamID)
	}
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if f.Limit > 0 {
		tx = tx.Limit(f.Limit)
	}
	if f.Offset > 0 {
		tx = tx.Offset(f.Offset)
	}
	if err := tx.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
