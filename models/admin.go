package models

import "time"

// Admin is the seeded operator account. Authentication/role wiring lives
// outside this service; the row exists so actions have an actor id.
type Admin struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	TenantID uint `gorm:"index;column:tenant_id" json:"tenant_id"`

	FullName string `gorm:"size:255" json:"full_name"`
	Username string `gorm:"size:150;uniqueIndex" json:"username"`
	Password string `gorm:"size:255" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
