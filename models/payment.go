package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	PaymentEntryNormal = "normal"
	PaymentEntryRefund = "refund"
)

// Payment is a ledger entry on a folio. Amounts are signed: refunds are
// separate negative rows referencing their origin via parent_payment_id.
// Voiding soft-deletes the row and stamps the void metadata; the row is
// never mutated into a different amount.
type Payment struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	TenantID uint `gorm:"index;column:tenant_id" json:"tenant_id"`
	HotelID  uint `gorm:"index;column:hotel_id" json:"hotel_id"`

	FolioID         uint  `gorm:"index;column:folio_id" json:"folio_id"`
	PaymentMethodID uint  `gorm:"column:payment_method_id" json:"payment_method_id"`
	CashSessionID   *uint `gorm:"column:cash_session_id" json:"cash_session_id,omitempty"`

	Amount   decimal.Decimal `gorm:"type:decimal(12,2)" json:"amount"`
	Currency string          `gorm:"size:8" json:"currency"`

	EntryType       string `gorm:"size:16;column:entry_type;default:'normal'" json:"entry_type"`
	ParentPaymentID *uint  `gorm:"index;column:parent_payment_id" json:"parent_payment_id,omitempty"`

	PaidAt       time.Time `gorm:"column:paid_at" json:"paid_at"`
	BusinessDate time.Time `gorm:"column:business_date;index" json:"business_date"`

	Reference string `gorm:"size:128" json:"reference"`
	Notes     string `gorm:"size:512" json:"notes"`

	VoidedAt   *time.Time `gorm:"column:voided_at" json:"voided_at,omitempty"`
	VoidedByID *uint      `gorm:"column:voided_by_id" json:"voided_by_id,omitempty"`
	VoidReason string     `gorm:"size:255;column:void_reason" json:"void_reason,omitempty"`

	RefundReason    string `gorm:"size:255;column:refund_reason" json:"refund_reason,omitempty"`
	RefundReference string `gorm:"size:128;column:refund_reference" json:"refund_reference,omitempty"`

	RecordedByID *uint `gorm:"column:recorded_by_id" json:"recorded_by_id,omitempty"`

	PaymentMethod PaymentMethod `gorm:"foreignKey:PaymentMethodID" json:"payment_method,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
