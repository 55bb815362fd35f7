package model

import (
	"time"

	"github.com/lib/pq"
)

type FeedbackStatus string

const (
	FeedbackStatusPending   FeedbackStatus = "pending"
	FeedbackStatusCompleted FeedbackStatus = "completed"
	FeedbackStatusExpired   FeedbackStatus = "expired"
)

// FeedbackRequest solicits (and, once completed, records) a citizen's
// verdict on a resolved report.
type FeedbackRequest struct {
	ID                string         `gorm:"primaryKey;type:varchar(64)" json:"id"`
	ReportID          string         `gorm:"type:varchar(64);index;not null" json:"reportId"`
	UserID            string         `gorm:"type:varchar(128);index" json:"userId"`
	OrganizationID    string         `gorm:"type:varchar(128);index" json:"organizationId"`
	ReportCategory    string         `gorm:"type:varchar(128)" json:"reportCategory"`
	ReportDescription string         `gorm:"type:text" json:"reportDescription"`
	ReportLocation    string         `gorm:"type:text" json:"reportLocation"`
	AssignedStaffIDs  pq.StringArray `gorm:"type:text[]" json:"assignedStaffIds"`
	AssignedTeamID    string         `gorm:"type:varchar(128);index" json:"assignedTeamId,omitempty"`
	ResolvedAt        *time.Time     `json:"resolvedAt,omitempty"`

	Status           FeedbackStatus `gorm:"type:varchar(16);index;not null" json:"status"`
	NotificationSent bool           `json:"notificationSent"`

	IsResolved       *bool          `json:"isResolved,omitempty"`
	Rating           int            `json:"rating,omitempty"`
	Comment          string         `gorm:"type:text" json:"comment,omitempty"`
	WouldRecommend   bool           `json:"wouldRecommend"`
	AdditionalImages pq.StringArray `gorm:"type:text[]" json:"additionalImages"`

	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	SubmittedAt *time.Time `json:"submittedAt,omitempty"`
	ExpiredAt   *time.Time `json:"expiredAt,omitempty"`
}

func (FeedbackRequest) TableName() string {
	return "feedback_requests"
}
