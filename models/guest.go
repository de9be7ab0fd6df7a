package models

import "time"

type Guest struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	TenantID uint `gorm:"index;column:tenant_id" json:"tenant_id"`
	HotelID  uint `gorm:"index;column:hotel_id" json:"hotel_id"`

	FullName    string `gorm:"size:255" json:"full_name"`
	Email       string `gorm:"size:150" json:"email"`
	Phone       string `gorm:"size:50" json:"phone"`
	Nationality string `gorm:"size:100" json:"nationality"`
	IDNumber    string `gorm:"size:100;column:id_number" json:"id_number"`

	LoyaltyPoints int `gorm:"column:loyalty_points;default:0" json:"loyalty_points"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
