package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	CashSessionTypeFrontdesk = "frontdesk"
	CashSessionTypeBar       = "bar"
)

const (
	CashSessionStatusOpen              = "open"
	CashSessionStatusPendingValidation = "closed_pending_validation"
	CashSessionStatusValidated         = "validated"
)

// CashSession is a till opening-to-closing period. At most one open
// session per (hotel, type); enforced under a row lock before insert.
type CashSession struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	TenantID uint `gorm:"index;column:tenant_id" json:"tenant_id"`
	HotelID  uint `gorm:"index;column:hotel_id" json:"hotel_id"`

	Type   string `gorm:"size:32;index" json:"type"`
	Status string `gorm:"size:32;index;default:'open'" json:"status"`

	OpeningFloat   decimal.Decimal  `gorm:"column:opening_float;type:decimal(12,2)" json:"opening_float"`
	ExpectedAmount *decimal.Decimal `gorm:"column:expected_amount;type:decimal(12,2)" json:"expected_amount,omitempty"`
	DeclaredAmount *decimal.Decimal `gorm:"column:declared_amount;type:decimal(12,2)" json:"declared_amount,omitempty"`
	Deviation      *decimal.Decimal `gorm:"column:deviation;type:decimal(12,2)" json:"deviation,omitempty"`

	OpenedByID    *uint      `gorm:"column:opened_by_id" json:"opened_by_id,omitempty"`
	ClosedByID    *uint      `gorm:"column:closed_by_id" json:"closed_by_id,omitempty"`
	ValidatedByID *uint      `gorm:"column:validated_by_id" json:"validated_by_id,omitempty"`
	OpenedAt      time.Time  `gorm:"column:opened_at" json:"opened_at"`
	ClosedAt      *time.Time `gorm:"column:closed_at" json:"closed_at,omitempty"`
	ValidatedAt   *time.Time `gorm:"column:validated_at" json:"validated_at,omitempty"`

	Notes string `gorm:"size:512" json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
