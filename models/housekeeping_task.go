package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	HkTaskKindCleaning   = "cleaning"
	HkTaskKindInspection = "inspection"
)

const (
	HkTaskPriorityNormal = "normal"
	HkTaskPriorityHigh   = "high"
	HkTaskPriorityUrgent = "urgent"
)

const (
	HkTaskStatusPending    = "pending"
	HkTaskStatusInProgress = "in_progress"
	HkTaskStatusDone       = "done"
)

type HousekeepingTask struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	TenantID uint `gorm:"index;column:tenant_id" json:"tenant_id"`
	HotelID  uint `gorm:"index;column:hotel_id" json:"hotel_id"`

	RoomID    uint   `gorm:"index;column:room_id" json:"room_id"`
	Kind      string `gorm:"size:32;default:'cleaning'" json:"kind"`
	Priority  string `gorm:"size:16;default:'normal'" json:"priority"`
	Status    string `gorm:"size:32;index;default:'pending'" json:"status"`
	SourceTag string `gorm:"size:64;column:source_tag" json:"source_tag"`
	Notes     string `gorm:"size:512" json:"notes"`

	AssignedToID *uint      `gorm:"column:assigned_to_id" json:"assigned_to_id,omitempty"`
	DoneAt       *time.Time `gorm:"column:done_at" json:"done_at,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
