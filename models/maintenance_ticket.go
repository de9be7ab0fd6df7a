package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	MaintenanceStatusOpen       = "open"
	MaintenanceStatusInProgress = "in_progress"
	MaintenanceStatusResolved   = "resolved"
	MaintenanceStatusCancelled  = "cancelled"
)

// MaintenanceTicket. While open/in_progress with blocks_sale=true, the
// room cannot be booked at all; non-blocking tickets are informational.
type MaintenanceTicket struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	TenantID uint `gorm:"index;column:tenant_id" json:"tenant_id"`
	HotelID  uint `gorm:"index;column:hotel_id" json:"hotel_id"`

	RoomID     uint   `gorm:"index;column:room_id" json:"room_id"`
	Title      string `gorm:"size:255" json:"title"`
	Details    string `gorm:"type:text" json:"details"`
	Status     string `gorm:"size:32;index;default:'open'" json:"status"`
	Priority   string `gorm:"size:16;default:'normal'" json:"priority"`
	BlocksSale bool   `gorm:"column:blocks_sale;default:false" json:"blocks_sale"`

	ReportedByID *uint      `gorm:"column:reported_by_id" json:"reported_by_id,omitempty"`
	ResolvedAt   *time.Time `gorm:"column:resolved_at" json:"resolved_at,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
