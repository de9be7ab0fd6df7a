package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	FolioStatusOpen   = "open"
	FolioStatusClosed = "closed"
)

// Folio is a guest's running bill. Exactly one main folio per
// reservation; POS/counter sales may create standalone folios with no
// reservation attached.
type Folio struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	TenantID uint `gorm:"index;column:tenant_id" json:"tenant_id"`
	HotelID  uint `gorm:"index;column:hotel_id" json:"hotel_id"`

	Code          string `gorm:"size:64;uniqueIndex" json:"code"`
	ReservationID *uint  `gorm:"index;column:reservation_id" json:"reservation_id,omitempty"`
	GuestID       *uint  `gorm:"column:guest_id" json:"guest_id,omitempty"`
	IsMain        bool   `gorm:"column:is_main;default:false" json:"is_main"`
	Status        string `gorm:"size:16;default:'open'" json:"status"`
	Currency      string `gorm:"size:8" json:"currency"`

	// Derived aggregates. Recomputed from child rows after every
	// mutation, never incremented in place.
	ChargesTotal  decimal.Decimal `gorm:"column:charges_total;type:decimal(12,2)" json:"charges_total"`
	PaymentsTotal decimal.Decimal `gorm:"column:payments_total;type:decimal(12,2)" json:"payments_total"`
	Balance       decimal.Decimal `gorm:"column:balance;type:decimal(12,2)" json:"balance"`

	Items    []FolioItem `gorm:"foreignKey:FolioID" json:"items,omitempty"`
	Payments []Payment   `gorm:"foreignKey:FolioID" json:"payments,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
