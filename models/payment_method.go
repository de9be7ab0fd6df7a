package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	PaymentMethodTypeCash     = "cash"
	PaymentMethodTypeCard     = "card"
	PaymentMethodTypeTransfer = "transfer"
	PaymentMethodTypeOther    = "other"
)

type PaymentMethod struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	TenantID uint `gorm:"index;column:tenant_id" json:"tenant_id"`
	HotelID  uint `gorm:"index;column:hotel_id" json:"hotel_id"`

	Name string `gorm:"size:128" json:"name"`
	Type string `gorm:"size:32;default:'other'" json:"type"`

	// For cash methods: which cash-session type must be open to take a
	// payment with this method (frontdesk or bar).
	SessionType string `gorm:"size:32;column:session_type;default:'frontdesk'" json:"session_type"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
