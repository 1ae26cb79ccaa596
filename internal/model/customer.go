package model

import (
	"time"

	"gorm.io/gorm"
)

// Customer is a tenant-scoped business entity. Every read and write goes
// through the tenant scope gate.
type Customer struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	TenantID  string         `json:"tenant_id" gorm:"type:varchar(20);index;not null"`
	Name      string         `json:"name" gorm:"type:varchar(100);not null"`
	Email     string         `json:"email" gorm:"type:varchar(100)"`
	Phone     string         `json:"phone" gorm:"type:varchar(20)"`
	BranchID  *string        `json:"branch_id,omitempty" gorm:"type:varchar(20)"`
	OwnerID   string         `json:"owner_id" gorm:"type:varchar(36)"`
	Status    string         `json:"status" gorm:"type:varchar(20);default:'ACTIVE'"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
