package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	FolioItemTypeRoom           = "room"
	FolioItemTypeFood           = "food"
	FolioItemTypeBar            = "bar"
	FolioItemTypeStayAdjustment = "stay_adjustment"
	FolioItemTypeOther          = "other"
)

// FolioItem is one charge line. Soft-deletable; an item already captured
// on a generated invoice must never be soft-deleted afterwards.
type FolioItem struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	TenantID uint `gorm:"index;column:tenant_id" json:"tenant_id"`
	HotelID  uint `gorm:"index;column:hotel_id" json:"hotel_id"`

	FolioID     uint   `gorm:"index;column:folio_id" json:"folio_id"`
	Description string `gorm:"size:512" json:"description"`
	Type        string `gorm:"size:32;default:'other'" json:"type"`

	// At most one active stay item per folio; resegmentation soft-deletes
	// the superseded one before creating replacements.
	IsStayItem bool `gorm:"column:is_stay_item;default:false" json:"is_stay_item"`

	// Billed window of a stay segment. A room change closes the active
	// segment at the pivot and bills it from SegmentStart, not from the
	// reservation's original check-in.
	SegmentStart *time.Time `gorm:"column:segment_start" json:"segment_start,omitempty"`
	SegmentEnd   *time.Time `gorm:"column:segment_end" json:"segment_end,omitempty"`

	Quantity       decimal.Decimal `gorm:"type:decimal(12,2);default:1" json:"quantity"`
	UnitPrice      decimal.Decimal `gorm:"column:unit_price;type:decimal(12,2)" json:"unit_price"`
	BaseAmount     decimal.Decimal `gorm:"column:base_amount;type:decimal(12,2)" json:"base_amount"`
	TaxAmount      decimal.Decimal `gorm:"column:tax_amount;type:decimal(12,2)" json:"tax_amount"`
	DiscountAmount decimal.Decimal `gorm:"column:discount_amount;type:decimal(12,2)" json:"discount_amount"`
	TotalAmount    decimal.Decimal `gorm:"column:total_amount;type:decimal(12,2)" json:"total_amount"`

	RecordedByID *uint `gorm:"column:recorded_by_id" json:"recorded_by_id,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
