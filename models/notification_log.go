package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Notification kinds, one per lifecycle event that emails a party.
const (
	NotifyBookingCreated   = "booking_created"
	NotifyBookingConfirmed = "booking_confirmed"
	NotifyBookingCancelled = "booking_cancelled"
	NotifyBookingCompleted = "booking_completed"
)

const (
	NotifyStatusSent   = "sent"
	NotifyStatusFailed = "failed"
)

// NotificationLog records every dispatch attempt so operators can see failed
// sends. Delivery is at-most-once; a failed row is never retried.
type NotificationLog struct {
	gorm.Model

	Kind      string `json:"kind" gorm:"type:varchar(32);index;not null"`
	BookingID uint   `json:"booking_id" gorm:"index;column:booking_id"`
	Recipient string `json:"recipient" gorm:"type:varchar(191)"`
	Status    string `json:"status" gorm:"type:varchar(16)"`
	Error     string `json:"error,omitempty" gorm:"type:text"`

	// Payload snapshots the booking fields the message was composed from, so
	// the log stays meaningful after the booking moves on.
	Payload datatypes.JSON `json:"payload,omitempty" gorm:"type:json"`
}
