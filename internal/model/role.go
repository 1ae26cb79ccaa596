package model

import (
	"time"
)

// Role represents a tenant-scoped role in the RBAC system
type Role struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(50)"`
	TenantID    string    `json:"tenant_id" gorm:"type:varchar(20);index;not null"`
	Name        string    `json:"name" gorm:"type:varchar(100)"`
	Description string    `json:"description" gorm:"type:varchar(255)"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
