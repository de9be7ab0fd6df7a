package models

import (
	"time"

	"gorm.io/gorm"
)

type RoomType struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	TenantID uint `gorm:"index;column:tenant_id" json:"tenant_id"`
	HotelID  uint `gorm:"index;column:hotel_id" json:"hotel_id"`

	Name         string `gorm:"size:255" json:"name"`
	Description  string `gorm:"type:text" json:"description"`
	MaxOccupancy int    `gorm:"column:max_occupancy;default:2" json:"max_occupancy"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
