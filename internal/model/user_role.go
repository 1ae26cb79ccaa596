package model

import (
	"time"
)

// UserRole links a user to a role. Exactly one assignment per user carries
// the primary flag; the first assignment wins unless reassigned.
type UserRole struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserEsntlID string    `json:"user_esntl_id" gorm:"type:varchar(36);column:user_esntl_id;index;not null"`
	RoleID      string    `json:"role_id" gorm:"type:varchar(50);index;not null"`
	TenantID    string    `json:"tenant_id" gorm:"type:varchar(20);not null"`
	IsPrimary   bool      `json:"is_primary" gorm:"default:false"`
	AssignedAt  time.Time `json:"assigned_at" gorm:"autoCreateTime"`
	AssignedBy  string    `json:"assigned_by" gorm:"type:varchar(36)"`

	Role Role `json:"role,omitempty" gorm:"foreignKey:RoleID"`
}
