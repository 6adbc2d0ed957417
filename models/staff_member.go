package models

import (
	"gorm.io/gorm"
)

type StaffMember struct {
	gorm.Model

	BusinessID uint   `json:"business_id" gorm:"index;column:business_id;not null"`
	FullName   string `json:"fullName" gorm:"column:full_name;type:varchar(191);not null"`
	Email      string `json:"email" gorm:"type:varchar(191)"`
	Role       string `json:"role" gorm:"type:varchar(64)"`
	Active     bool   `json:"active" gorm:"default:true"`

	Business Business `gorm:"foreignKey:BusinessID;references:ID" json:"-"`
}
