package models

import (
	"time"

	"gorm.io/gorm"
)

// Offer kinds drive the stay-charge quantity rule:
// night -> number of nights, short_stay -> 1, weekend -> max(2, nights).
const (
	OfferKindNight     = "night"
	OfferKindShortStay = "short_stay"
	OfferKindWeekend   = "weekend"
)

type Offer struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	TenantID uint `gorm:"index;column:tenant_id" json:"tenant_id"`
	HotelID  uint `gorm:"index;column:hotel_id" json:"hotel_id"`

	Name string `gorm:"size:255" json:"name"`
	Kind string `gorm:"size:32;default:'night'" json:"kind"`

	// Informational check-in/out windows ("14:00", "12:00").
	CheckInTime  string `gorm:"size:8;column:check_in_time" json:"check_in_time"`
	CheckOutTime string `gorm:"size:8;column:check_out_time" json:"check_out_time"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
