package models

import (
	"time"

	"gorm.io/gorm"
)

// Tenant is one property-management customer. Every domain row carries
// tenant_id (and usually hotel_id); queries must always scope on both.
type Tenant struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"size:255" json:"name"`
	Domain    string `gorm:"size:255;uniqueIndex" json:"domain"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TenantContext is passed explicitly into every service call instead of
// living in ambient/request-local state, so the core stays testable.
type TenantContext struct {
	TenantID uint
	HotelID  uint
}

// ScopeTenant filters a query to the caller's tenant + hotel.
func ScopeTenant(tc TenantContext) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tenant_id = ? AND hotel_id = ?", tc.TenantID, tc.HotelID)
	}
}

// ScopeTenantOnly filters on tenant alone, for rows not tied to a hotel.
func ScopeTenantOnly(tc TenantContext) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tenant_id = ?", tc.TenantID)
	}
}
