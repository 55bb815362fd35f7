package model

import (
	"time"

	"github.com/lib/pq"
)

const (
	RoleCitizen = "citizen"
	RoleStaff   = "staff"
	RoleAdmin   = "admin"
)

type User struct {
	ID                 string     `gorm:"primaryKey;type:varchar(128)" json:"id"`
	Name               string     `gorm:"type:varchar(255)" json:"name"`
	Email              string     `gorm:"type:varchar(255)" json:"email"`
	Role               string     `gorm:"type:varchar(16);index" json:"role"`
	OrganizationID     string     `gorm:"type:varchar(128);index" json:"organizationId,omitempty"`
	PushToken          string     `gorm:"type:varchar(255)" json:"-"`
	PushTokenUpdatedAt *time.Time `json:"-"`
	CreatedAt          time.Time  `json:"createdAt"`
}

type Organization struct {
	ID        string         `gorm:"primaryKey;type:varchar(128)" json:"id"`
	Name      string         `gorm:"type:varchar(255)" json:"name"`
	Type      string         `gorm:"type:varchar(64)" json:"type"`
	AdminIDs  pq.StringArray `gorm:"type:text[]" json:"adminIds"`
	Latitude  *float64       `json:"latitude,omitempty"`
	Longitude *float64       `json:"longitude,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}
