package model

import (
	"time"
)

// RolePermission links a role to a permission. Rows are tenant-stamped and
// record who granted the permission and when.
type RolePermission struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	RoleID       string    `json:"role_id" gorm:"type:varchar(50);index;not null"`
	PermissionID uint      `json:"permission_id" gorm:"index;not null"`
	TenantID     string    `json:"tenant_id" gorm:"type:varchar(20);not null"`
	GrantedAt    time.Time `json:"granted_at" gorm:"autoCreateTime"`
	GrantedBy    string    `json:"granted_by" gorm:"type:varchar(36)"`

	Role       Role       `json:"role,omitempty" gorm:"foreignKey:RoleID"`
	Permission Permission `json:"permission,omitempty" gorm:"foreignKey:PermissionID"`
}
