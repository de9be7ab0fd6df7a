package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	LoyaltyModeAmount = "amount"
	LoyaltyModeFixed  = "fixed"
)

type Hotel struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	TenantID uint   `gorm:"index;column:tenant_id" json:"tenant_id"`
	Name     string `gorm:"size:255" json:"name"`
	Address  string `gorm:"type:text" json:"address"`
	Phone    string `gorm:"size:50" json:"phone"`
	Email    string `gorm:"size:150" json:"email"`
	Currency string `gorm:"size:8;default:'XOF'" json:"currency"`

	// Loyalty earning settings. When disabled, checkout credits nothing.
	LoyaltyEnabled         bool            `gorm:"column:loyalty_enabled;default:false" json:"loyalty_enabled"`
	LoyaltyEarningMode     string          `gorm:"column:loyalty_earning_mode;size:16;default:'amount'" json:"loyalty_earning_mode"`
	LoyaltyAmountBase      decimal.Decimal `gorm:"column:loyalty_amount_base;type:decimal(12,2);default:1000" json:"loyalty_amount_base"`
	LoyaltyPointsPerAmount int             `gorm:"column:loyalty_points_per_amount;default:1" json:"loyalty_points_per_amount"`
	LoyaltyFixedPoints     int             `gorm:"column:loyalty_fixed_points;default:0" json:"loyalty_fixed_points"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
