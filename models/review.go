package models

import (
	"gorm.io/gorm"
)

// Review is attached to a completed booking by its client, at most once.
type Review struct {
	gorm.Model

	BookingID  uint   `json:"booking_id" gorm:"uniqueIndex;column:booking_id;not null"`
	ResourceID uint   `json:"resource_id" gorm:"index;column:resource_id;not null"`
	ClientID   uint   `json:"client_id" gorm:"index;column:client_id;not null"`
	Rating     int    `json:"rating" gorm:"not null"`
	Comment    string `json:"comment" gorm:"type:text"`
}
