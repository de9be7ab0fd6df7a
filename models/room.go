package models

import (
	"time"

	"gorm.io/gorm"
)

// Room occupancy status. Owned exclusively by services.RoomStateService;
// nothing else writes rooms.status.
const (
	RoomStatusAvailable  = "available"
	RoomStatusOccupied   = "occupied"
	RoomStatusOutOfOrder = "out_of_order"
	RoomStatusInactive   = "inactive"
)

// Housekeeping status is an independent axis from occupancy status:
// an available room can still be dirty.
const (
	HkStatusClean              = "clean"
	HkStatusDirty              = "dirty"
	HkStatusAwaitingInspection = "awaiting_inspection"
	HkStatusInspected          = "inspected"
	HkStatusRedo               = "redo"
)

type Room struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	TenantID uint `gorm:"index;column:tenant_id" json:"tenant_id"`
	HotelID  uint `gorm:"index:idx_rooms_hotel_number,unique;column:hotel_id" json:"hotel_id"`

	RoomTypeID uint   `gorm:"index;column:room_type_id" json:"room_type_id"`
	Number     string `gorm:"index:idx_rooms_hotel_number,unique;size:50;column:number" json:"number"`
	Floor      string `gorm:"size:10" json:"floor"`

	Status   string `gorm:"size:32;default:'available'" json:"status"`
	HkStatus string `gorm:"size:32;column:hk_status;default:'clean'" json:"hk_status"`

	// Reservation currently occupying the room, set on check-in.
	CurrentReservationID *uint `gorm:"column:current_reservation_id" json:"current_reservation_id,omitempty"`

	RoomType RoomType `gorm:"foreignKey:RoomTypeID" json:"room_type,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
