package models

import (
	"gorm.io/gorm"
)

const (
	ResourceKindService = "service"
	ResourceKindVenue   = "venue"
)

// Resource is anything a client can book: a service offered by a business
// (grooming appointment, consultation) or a venue (room, court).
type Resource struct {
	gorm.Model

	BusinessID  uint   `json:"business_id" gorm:"index;column:business_id;not null"`
	Kind        string `json:"kind" gorm:"type:varchar(20);default:'service'"`
	Name        string `json:"name" gorm:"type:varchar(191);not null"`
	Description string `json:"description" gorm:"type:text"`

	// Price is copied onto each booking at creation time; amounts are
	// integer minor units (cents) to avoid float drift.
	PriceAmount int64  `json:"price_amount" gorm:"column:price_amount;default:0"`
	Currency    string `json:"currency" gorm:"type:varchar(3);default:'USD'"`

	// Capacity 1 means exclusive occupancy; capacity N allows up to N
	// simultaneous pending/confirmed bookings for any instant.
	Capacity int `json:"capacity" gorm:"default:1"`

	DurationMinutes      int  `json:"duration_minutes" gorm:"column:duration_minutes;default:60"`
	BufferMinutes        int  `json:"buffer_minutes" gorm:"column:buffer_minutes;default:0"`
	AdvanceNoticeMinutes int  `json:"advance_notice_minutes" gorm:"column:advance_notice_minutes;default:0"`
	Active               bool `json:"active" gorm:"default:true"`

	Business          Business           `gorm:"foreignKey:BusinessID;references:ID" json:"-"`
	AvailabilityRules []AvailabilityRule `gorm:"foreignKey:ResourceID" json:"availability_rules,omitempty"`
}
