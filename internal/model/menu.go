package model

import (
	"time"
)

// Menu represents a hierarchical catalog item that drives permission
// generation: an API endpoint implies one API:READ permission, a UI path
// implies MENU READ/WRITE/DELETE permissions.
type Menu struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Code        string    `json:"code" gorm:"type:varchar(50);uniqueIndex;not null"`
	Name        string    `json:"name" gorm:"type:varchar(100);not null"`
	Type        string    `json:"type" gorm:"type:varchar(20);default:'MENU'"` // MENU, FOLDER, LINK
	Path        string    `json:"path" gorm:"type:varchar(255)"`
	APIEndpoint string    `json:"api_endpoint" gorm:"type:varchar(255)"`
	IconName    string    `json:"icon_name" gorm:"type:varchar(50)"`
	ParentID    *uint     `json:"parent_id,omitempty" gorm:"index"`
	Order       int       `json:"order" gorm:"column:menu_order"`
	Visible     bool      `json:"visible" gorm:"default:true"`
	Active      bool      `json:"active" gorm:"default:true"`
	Description string    `json:"description" gorm:"type:varchar(255)"`
	TenantID    string    `json:"tenant_id" gorm:"type:varchar(20);index;not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
