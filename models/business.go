package models

import (
	"gorm.io/gorm"
)

// Business is a tenant: a provider that lists bookable resources.
type Business struct {
	gorm.Model

	Name         string `json:"name" gorm:"type:varchar(191);not null"`
	Email        string `json:"email" gorm:"uniqueIndex;type:varchar(191);not null"`
	PasswordHash string `json:"-" gorm:"column:password_hash;type:varchar(191)"`
	Phone        string `json:"phone" gorm:"type:varchar(50)"`
	Timezone     string `json:"timezone" gorm:"type:varchar(64);default:'UTC'"`

	Resources []Resource    `gorm:"foreignKey:BusinessID" json:"resources,omitempty"`
	Staff     []StaffMember `gorm:"foreignKey:BusinessID" json:"staff,omitempty"`
}
