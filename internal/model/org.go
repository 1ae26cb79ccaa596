package model

import (
	"time"
)

// Branch is an organizational unit users can be scoped to
type Branch struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(20)"`
	TenantID  string    `json:"tenant_id" gorm:"type:varchar(20);index;not null"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Group is an organizational grouping of users
type Group struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(20)"`
	TenantID  string    `json:"tenant_id" gorm:"type:varchar(20);index;not null"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Position is a user's job position
type Position struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(20)"`
	TenantID  string    `json:"tenant_id" gorm:"type:varchar(20);index;not null"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
