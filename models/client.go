package models

import (
	"gorm.io/gorm"
)

// Client is a person who books resources.
type Client struct {
	gorm.Model

	FullName string `json:"fullName" gorm:"column:full_name;type:varchar(191);not null"`
	Email    string `json:"email" gorm:"uniqueIndex;type:varchar(191);not null"`
	Phone    string `json:"phone" gorm:"type:varchar(50)"`
}
