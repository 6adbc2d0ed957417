package models

import (
	"time"

	"gorm.io/gorm"
)

// Hold reserves a window without a client booking (administrative block,
// maintenance, private event). Holds take part in conflict checks exactly
// like pending/confirmed bookings.
type Hold struct {
	gorm.Model

	ResourceID uint      `json:"resource_id" gorm:"index;column:resource_id;not null"`
	BusinessID uint      `json:"business_id" gorm:"index;column:business_id;not null"`
	StartTime  time.Time `json:"start_time" gorm:"column:start_time;index;not null"`
	EndTime    time.Time `json:"end_time" gorm:"column:end_time;index;not null"`
	Reason     string    `json:"reason" gorm:"type:varchar(255)"`
	CreatedBy  string    `json:"created_by" gorm:"column:created_by;type:varchar(191)"`

	// ExpiresAt lets a hold lapse on its own; nil means it blocks until
	// released. Expired holds drop out of conflict checks.
	ExpiresAt *time.Time `json:"expires_at,omitempty" gorm:"column:expires_at;index"`
}
