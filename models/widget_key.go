package models

import (
	"gorm.io/gorm"
)

// WidgetKey authorizes the embeddable booking widget for one business. The
// key value is a random token presented in the X-Widget-Key header.
type WidgetKey struct {
	gorm.Model

	BusinessID uint   `json:"business_id" gorm:"index;column:business_id;not null"`
	Key        string `json:"key" gorm:"uniqueIndex;type:varchar(128);not null"`
	Label      string `json:"label" gorm:"type:varchar(191)"`
	Active     bool   `json:"active" gorm:"default:true"`
}
