package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RuleTypeRecurring = "recurring"
	RuleTypeException = "exception"
)

// AvailabilityRule declares when a resource is open for booking.
//
// A recurring rule opens a weekly window: Weekday plus OpensAt/ClosesAt as
// minutes from midnight. An exception rule overrides a single calendar date:
// either closed all day, or open only for the given minute window.
type AvailabilityRule struct {
	gorm.Model

	ResourceID uint   `json:"resource_id" gorm:"index;column:resource_id;not null"`
	RuleType   string `json:"rule_type" gorm:"column:rule_type;type:varchar(20);default:'recurring'"`

	// Recurring fields. Weekday follows time.Weekday (0 = Sunday).
	Weekday *int `json:"weekday,omitempty" gorm:"column:weekday"`

	// Exception fields. Date is truncated to midnight; Closed marks the
	// whole day unavailable regardless of the minute window.
	Date   *time.Time `json:"date,omitempty" gorm:"column:date"`
	Closed bool       `json:"closed" gorm:"default:false"`

	OpensAt  int `json:"opens_at" gorm:"column:opens_at;default:0"`
	ClosesAt int `json:"closes_at" gorm:"column:closes_at;default:1440"`
}
