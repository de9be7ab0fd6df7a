package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Reservation lifecycle. Cancellation is a status, never a deletion.
const (
	ReservationStatusPending    = "pending"
	ReservationStatusConfirmed  = "confirmed"
	ReservationStatusInHouse    = "in_house"
	ReservationStatusCheckedOut = "checked_out"
	ReservationStatusCancelled  = "cancelled"
)

// ActiveReservationStatuses are the statuses that hold a room/date range
// for availability purposes.
var ActiveReservationStatuses = []string{
	ReservationStatusPending,
	ReservationStatusConfirmed,
	ReservationStatusInHouse,
}

type Reservation struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	TenantID uint `gorm:"index;column:tenant_id" json:"tenant_id"`
	HotelID  uint `gorm:"index;column:hotel_id" json:"hotel_id"`

	Code       string `gorm:"size:64;uniqueIndex" json:"code"`
	GuestID    uint   `gorm:"index;column:guest_id" json:"guest_id"`
	RoomTypeID uint   `gorm:"index;column:room_type_id" json:"room_type_id"`
	RoomID     *uint  `gorm:"index;column:room_id" json:"room_id,omitempty"`
	OfferID    *uint  `gorm:"column:offer_id" json:"offer_id,omitempty"`

	Status string `gorm:"size:32;index" json:"status"`

	// Planned stay window (date + time). Half-open: [check_in, check_out).
	CheckIn  time.Time `gorm:"column:check_in" json:"check_in"`
	CheckOut time.Time `gorm:"column:check_out" json:"check_out"`

	ActualCheckInAt  *time.Time `gorm:"column:actual_check_in_at" json:"actual_check_in_at,omitempty"`
	ActualCheckOutAt *time.Time `gorm:"column:actual_check_out_at" json:"actual_check_out_at,omitempty"`

	Currency    string          `gorm:"size:8" json:"currency"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:decimal(12,2)" json:"unit_price"`
	BaseAmount  decimal.Decimal `gorm:"column:base_amount;type:decimal(12,2)" json:"base_amount"`
	TaxAmount   decimal.Decimal `gorm:"column:tax_amount;type:decimal(12,2)" json:"tax_amount"`
	TotalAmount decimal.Decimal `gorm:"column:total_amount;type:decimal(12,2)" json:"total_amount"`

	Adults   int `gorm:"default:1" json:"adults"`
	Children int `gorm:"default:0" json:"children"`

	Source string `gorm:"size:64" json:"source"`
	Notes  string `gorm:"type:text" json:"notes"`

	// Draft occupant list captured at booking time, persisted as JSON.
	Occupants datatypes.JSON `gorm:"column:occupants" json:"occupants,omitempty"`

	BookedByID *uint `gorm:"column:booked_by_id" json:"booked_by_id,omitempty"`

	Guest    Guest    `gorm:"foreignKey:GuestID" json:"guest,omitempty"`
	Room     *Room    `gorm:"foreignKey:RoomID" json:"room,omitempty"`
	RoomType RoomType `gorm:"foreignKey:RoomTypeID" json:"room_type,omitempty"`
	Offer    *Offer   `gorm:"foreignKey:OfferID" json:"offer,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Nights is the whole-night count of the planned window, never below 1.
func (r *Reservation) Nights() int {
	n := int(r.CheckOut.Sub(r.CheckIn).Hours() / 24)
	if n < 1 {
		return 1
	}
	return n
}
