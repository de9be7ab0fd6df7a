package services

import (
	"fmt"

	"gorm.io/gorm"

	"pms-backend/models"
)

type LoyaltyService struct {
	DB *gorm.DB
}

func NewLoyaltyService(db *gorm.DB) *LoyaltyService {
	return &LoyaltyService{DB: db}
}

// PointsFor computes the checkout award per the hotel's earning mode.
// Amount mode: floor(total / amount_base) * points_per_amount.
func (s *LoyaltyService) PointsFor(hotel *models.Hotel, res *models.Reservation) int {
	if !hotel.LoyaltyEnabled {
		return 0
	}
	switch hotel.LoyaltyEarningMode {
	case models.LoyaltyModeFixed:
		return hotel.LoyaltyFixedPoints
	case models.LoyaltyModeAmount:
		if !hotel.LoyaltyAmountBase.IsPositive() {
			return 0
		}
		units := res.TotalAmount.Div(hotel.LoyaltyAmountBase).Floor()
		return int(units.IntPart()) * hotel.LoyaltyPointsPerAmount
	default:
		return 0
	}
}

// creditPointsTx adds points to the guest balance. Skipped entirely when
// the hotel has loyalty disabled or the award is zero.
func (s *LoyaltyService) creditPointsTx(tx *gorm.DB, tc models.TenantContext, guestID uint, points int) error {
	if points <= 0 {
		return nil
	}
	if err := tx.Model(&models.Guest{}).
		Where("tenant_id = ? AND id = ?", tc.TenantID, guestID).
		Update("loyalty_points", gorm.Expr("loyalty_points + ?", points)).Error; err != nil {
		return fmt.Errorf("failed to credit loyalty points: %w", err)
	}
	return nil
}
