package models

import "time"

const (
	BusinessDayStatusOpen   = "open"
	BusinessDayStatusClosed = "closed"
)

// BusinessDay is the night-audit accounting-day lock. Absence of a row
// for a date means the date is open. Once closed, financial mutations
// dated to it are rejected.
type BusinessDay struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	TenantID uint `gorm:"index;column:tenant_id" json:"tenant_id"`
	HotelID  uint `gorm:"index:idx_business_days_hotel_date,unique;column:hotel_id" json:"hotel_id"`

	Date   time.Time `gorm:"index:idx_business_days_hotel_date,unique;column:date" json:"date"`
	Status string    `gorm:"size:16;default:'open'" json:"status"`

	ClosedAt   *time.Time `gorm:"column:closed_at" json:"closed_at,omitempty"`
	ClosedByID *uint      `gorm:"column:closed_by_id" json:"closed_by_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
