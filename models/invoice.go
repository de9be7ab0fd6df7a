package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is an immutable snapshot of a folio's active items at
// generation time. It is never regenerated while one exists and its
// rows are never edited after IssuedAt.
type Invoice struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	TenantID uint `gorm:"index;column:tenant_id" json:"tenant_id"`
	HotelID  uint `gorm:"index;column:hotel_id" json:"hotel_id"`

	FolioID uint   `gorm:"index;column:folio_id" json:"folio_id"`
	Number  string `gorm:"size:64;uniqueIndex" json:"number"`

	Currency    string          `gorm:"size:8" json:"currency"`
	TotalAmount decimal.Decimal `gorm:"column:total_amount;type:decimal(12,2)" json:"total_amount"`

	IssuedAt   time.Time `gorm:"column:issued_at" json:"issued_at"`
	IssuedByID *uint     `gorm:"column:issued_by_id" json:"issued_by_id,omitempty"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InvoiceItem keeps folio_item_id so the billing service can detect that
// a stay item was captured on an invoice and must stay frozen.
type InvoiceItem struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	InvoiceID uint `gorm:"index;column:invoice_id" json:"invoice_id"`

	FolioItemID uint   `gorm:"index;column:folio_item_id" json:"folio_item_id"`
	Description string `gorm:"size:512" json:"description"`

	Quantity    decimal.Decimal `gorm:"type:decimal(12,2)" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:decimal(12,2)" json:"unit_price"`
	BaseAmount  decimal.Decimal `gorm:"column:base_amount;type:decimal(12,2)" json:"base_amount"`
	TaxAmount   decimal.Decimal `gorm:"column:tax_amount;type:decimal(12,2)" json:"tax_amount"`
	TotalAmount decimal.Decimal `gorm:"column:total_amount;type:decimal(12,2)" json:"total_amount"`

	CreatedAt time.Time `json:"created_at"`
}
