package model

import (
	"time"

	"gorm.io/gorm"
)

// Tenant represents an isolated customer partition. The identifier
// "SYSTEM" is reserved for the privileged tenant that bypasses row scoping.
type Tenant struct {
	ID          string         `json:"id" gorm:"primaryKey;type:varchar(20)"`
	Name        string         `json:"name" gorm:"type:varchar(100);not null"`
	Description string         `json:"description" gorm:"type:varchar(255)"`
	Active      bool           `json:"active" gorm:"default:true"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}
