package model

import (
	"time"

	"gorm.io/gorm"
)

// User represents the user model stored in the database.
//
// A user belongs to exactly one tenant for its lifetime. Branch, group and
// position are optional organizational attributes used for scoped
// authorization checks beyond plain permissions.
type User struct {
	EsntlID    string         `json:"esntl_id" gorm:"primaryKey;type:varchar(36);column:esntl_id"`
	UserID     string         `json:"user_id" gorm:"type:varchar(50);uniqueIndex;not null"`
	Password   string         `json:"-" gorm:"type:varchar(255);not null"`
	UserName   string         `json:"user_name" gorm:"type:varchar(100)"`
	Email      string         `json:"email" gorm:"type:varchar(100)"`
	TenantID   string         `json:"tenant_id" gorm:"type:varchar(20);index;not null"`
	BranchID   *string        `json:"branch_id,omitempty" gorm:"type:varchar(20)"`
	GroupID    *string        `json:"group_id,omitempty" gorm:"type:varchar(20)"`
	PositionID *string        `json:"position_id,omitempty" gorm:"type:varchar(20)"`
	Active     bool           `json:"active" gorm:"default:true"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}
