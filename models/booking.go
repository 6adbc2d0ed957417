package models

import (
	"time"

	"gorm.io/gorm"
)

// Booking statuses. A booking is never hard deleted; terminal statuses model
// removal.
const (
	StatusPending     = "pending"
	StatusConfirmed   = "confirmed"
	StatusCompleted   = "completed"
	StatusCancelled   = "cancelled"
	StatusNoShow      = "no_show"
	StatusRescheduled = "rescheduled"
)

// Actor roles used for lifecycle gating.
const (
	RoleClient   = "client"
	RoleProvider = "provider"
	RoleAdmin    = "admin"
)

type Booking struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	ReferenceCode string `gorm:"column:reference_code;uniqueIndex;size:64" json:"reference_code"`

	ResourceID uint  `gorm:"index;column:resource_id;not null" json:"resource_id"`
	BusinessID uint  `gorm:"index;column:business_id;not null" json:"business_id"`
	ClientID   uint  `gorm:"index;column:client_id;not null" json:"client_id"`
	StaffID    *uint `gorm:"column:staff_id" json:"staff_id,omitempty"`

	// Half-open window [StartTime, EndTime); EndTime strictly after StartTime.
	StartTime time.Time `gorm:"column:start_time;index;not null" json:"start_time"`
	EndTime   time.Time `gorm:"column:end_time;index;not null" json:"end_time"`

	Status string `gorm:"column:status;size:32;index;default:'pending'" json:"status"`

	// Price copied from the resource at creation; immutable afterwards.
	PriceAmount int64  `gorm:"column:price_amount" json:"price_amount"`
	Currency    string `gorm:"type:varchar(3)" json:"currency"`

	// Notes are writable independently by each party.
	ClientNote   string `gorm:"column:client_note;type:text" json:"client_note,omitempty"`
	BusinessNote string `gorm:"column:business_note;type:text" json:"business_note,omitempty"`
	InternalNote string `gorm:"column:internal_note;type:text" json:"internal_note,omitempty"`

	// Cancellation metadata, only populated when Status == cancelled.
	CancelReason    string     `gorm:"column:cancel_reason;type:text" json:"cancel_reason,omitempty"`
	CancelledAt     *time.Time `gorm:"column:cancelled_at" json:"cancelled_at,omitempty"`
	CancelledByRole string     `gorm:"column:cancelled_by_role;size:32" json:"cancelled_by_role,omitempty"`

	// Forward link to the replacement booking when Status == rescheduled.
	RescheduledToID *uint `gorm:"column:rescheduled_to_id" json:"rescheduled_to_id,omitempty"`

	Resource Resource `gorm:"foreignKey:ResourceID;references:ID" json:"resource,omitempty"`
	Business Business `gorm:"foreignKey:BusinessID;references:ID" json:"-"`
	Client   Client   `gorm:"foreignKey:ClientID;references:ID" json:"client,omitempty"`
	Review   *Review  `gorm:"foreignKey:BookingID" json:"review,omitempty"`
}

// IsTerminal reports whether no further status transition is allowed.
func (b *Booking) IsTerminal() bool {
	switch b.Status {
	case StatusCompleted, StatusCancelled, StatusNoShow, StatusRescheduled:
		return true
	}
	return false
}

// OccupyingStatuses are the statuses that block a resource for conflict
// checks; everything else has released its window.
var OccupyingStatuses = []string{StatusPending, StatusConfirmed}

// Occupies reports whether the booking currently holds its window.
func (b *Booking) Occupies() bool {
	for _, s := range OccupyingStatuses {
		if b.Status == s {
			return true
		}
	}
	return false
}
