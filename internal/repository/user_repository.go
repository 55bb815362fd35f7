package repository

import (
	"context"
	"errors"
	"slices"
	"sort"
	"time"

	"github.com/fixora/fixora-service/internal/errs"
	"github.com/fixora/fixora-service/internal/model"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// ListAdminIDs returns the organization's admins: users with the admin role
// in it plus the organization's own admin_ids, sorted and deduplicated.
func (r *UserRepository) ListAdminIDs(ctx context.Context, organizationID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("role = ? AND organization_id = ?", model.RoleAdmin, organizationID).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}

	var orgs []model.Organization
	if err := r.db.WithContext(ctx).Select("admin_ids").Where("id = ?", organizationID).Find(&orgs).Error; err != nil {
		return nil, err
	}
	for _, o := range orgs {
		ids = append(ids, o.AdminIDs...)
	}
	sort.Strings(ids)
	return slices.Compact(ids), nil
}

func (r *UserRepository) UpdatePushToken(ctx context.Context, id, token string) error {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).
		Updates(map[string]interface{}{"push_token": token, "push_token_updated_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.ErrUserNotFound
	}
	return nil
}
