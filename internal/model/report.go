package model

import (
	"time"

	"github.com/lib/pq"
)

type ReportStatus string

const (
	ReportStatusPending          ReportStatus = "pending"
	ReportStatusAssigned         ReportStatus = "assigned"
	ReportStatusInProgress       ReportStatus = "in_progress"
	ReportStatusResolved         ReportStatus = "resolved"
	ReportStatusNeedsRework      ReportStatus = "needs_rework"
	ReportStatusVerifiedResolved ReportStatus = "verified_resolved"
	ReportStatusRejected         ReportStatus = "rejected"
	ReportStatusWithdrawn        ReportStatus = "withdrawn"
)

// Valid reports whether s is one of the known report statuses.
func (s ReportStatus) Valid() bool {
	switch s {
	case ReportStatusPending, ReportStatusAssigned, ReportStatusInProgress, ReportStatusResolved,
		ReportStatusNeedsRework, ReportStatusVerifiedResolved, ReportStatusRejected, ReportStatusWithdrawn:
		return true
	}
	return false
}

const (
	UrgencyHigh   = "High"
	UrgencyMedium = "Medium"
	UrgencyLow    = "Low"
)

const (
	AssignmentIndividual = "individual"
	AssignmentTeam       = "team"
)

type Report struct {
	ID             string       `gorm:"primaryKey;type:varchar(64)" json:"id"`
	UserID         string       `gorm:"type:varchar(128);index" json:"userId"`
	OrganizationID string       `gorm:"type:varchar(128);index" json:"organizationId,omitempty"`
	Category       string       `gorm:"type:varchar(128)" json:"category"`
	Description    string       `gorm:"type:text" json:"description"`
	Address        string       `gorm:"type:text" json:"address,omitempty"`
	Latitude       *float64     `json:"latitude,omitempty"`
	Longitude      *float64     `json:"longitude,omitempty"`
	Urgency        string       `gorm:"type:varchar(16)" json:"urgency,omitempty"`
	Status         ReportStatus `gorm:"type:varchar(32);index;not null" json:"status"`

	ImageURLs   pq.StringArray `gorm:"type:text[]" json:"imageUrls"`
	ProofImages pq.StringArray `gorm:"type:text[]" json:"proofImages"`

	AssignedStaffIDs pq.StringArray `gorm:"type:text[]" json:"assignedStaffIds"`
	AssignedTeamID   string         `gorm:"type:varchar(128);index" json:"assignedTeamId,omitempty"`
	AssignedTo       string         `gorm:"type:varchar(128)" json:"assignedTo,omitempty"`
	AssignmentType   string         `gorm:"type:varchar(16)" json:"assignmentType,omitempty"`
	AssignedAt       *time.Time     `json:"assignedAt,omitempty"`
	AssignedBy       string         `gorm:"type:varchar(128)" json:"assignedBy,omitempty"`

	PredictionMetadata   JSON `gorm:"type:jsonb" json:"predictionMetadata,omitempty"`
	ClassificationResult JSON `gorm:"type:jsonb" json:"classificationResult,omitempty"`

	IsResubmission        bool       `json:"isResubmission"`
	OriginalReportID      string     `gorm:"type:varchar(64);index" json:"originalReportId,omitempty"`
	ResubmissionReason    string     `gorm:"type:text" json:"resubmissionReason,omitempty"`
	ResubmittedAsReportID string     `gorm:"type:varchar(64)" json:"resubmittedAsReportId,omitempty"`
	ResubmittedAt         *time.Time `json:"resubmittedAt,omitempty"`

	FeedbackRequestID    string     `gorm:"type:varchar(64)" json:"feedbackRequestId,omitempty"`
	FeedbackStatus       string     `gorm:"type:varchar(16)" json:"feedbackStatus,omitempty"`
	FeedbackRequestedAt  *time.Time `json:"feedbackRequestedAt,omitempty"`
	FeedbackReceived     bool       `json:"feedbackReceived"`
	FeedbackReceivedAt   *time.Time `json:"feedbackReceivedAt,omitempty"`
	UserVerifiedResolved *bool      `json:"userVerifiedResolved,omitempty"`
	UserRating           *int       `json:"userRating,omitempty"`
	UserComment          string     `gorm:"type:text" json:"userComment,omitempty"`
	NeedsReworkAt        *time.Time `json:"needsReworkAt,omitempty"`
	NeedsReworkReason    string     `gorm:"type:text" json:"needsReworkReason,omitempty"`
	VerifiedAt           *time.Time `json:"verifiedAt,omitempty"`

	UpdatedBy string    `gorm:"type:varchar(128)" json:"updatedBy,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PredictedUrgency returns the urgency stored in the prediction metadata, if any.
func (r *Report) PredictedUrgency() string {
	if v, ok := r.PredictionMetadata["urgency"].(string); ok {
		return v
	}
	return ""
}
