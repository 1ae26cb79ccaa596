package model

import (
	"time"
)

// Permission types and actions. API permissions are generated READ-only;
// MENU permissions cover the full action set.
const (
	PermissionTypeAPI  = "API"
	PermissionTypeMenu = "MENU"

	ActionRead   = "READ"
	ActionWrite  = "WRITE"
	ActionDelete = "DELETE"
)

// Permission represents a grantable permission derived from the menu
// catalog. (code, type, action, tenant_id) is unique so catalog
// regeneration and concurrent generation stay idempotent.
type Permission struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Code         string    `json:"code" gorm:"type:varchar(50);not null;uniqueIndex:idx_permission_key"`
	Type         string    `json:"type" gorm:"type:varchar(20);not null;uniqueIndex:idx_permission_key"`
	Action       string    `json:"action" gorm:"type:varchar(20);not null;uniqueIndex:idx_permission_key"`
	TenantID     string    `json:"tenant_id" gorm:"type:varchar(20);not null;uniqueIndex:idx_permission_key"`
	ResourcePath string    `json:"resource_path" gorm:"type:varchar(255)"`
	Description  string    `json:"description" gorm:"type:varchar(255)"`
	MenuID       *uint     `json:"menu_id,omitempty" gorm:"index"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FullCode returns the permission code in TYPE:code:ACTION form, the
// grammar used in tokens and authorization checks.
func (p *Permission) FullCode() string {
	return p.Type + ":" + p.Code + ":" + p.Action
}
