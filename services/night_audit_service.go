package services

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"pms-backend/models"
	"pms-backend/utils"
)

// NightAuditService owns the business-day lock: once a date is closed
// for a hotel, financial mutations dated to it are rejected unless the
// caller carries an explicit override.
type NightAuditService struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func NewNightAuditService(db *gorm.DB, log *zap.Logger) *NightAuditService {
	if log == nil {
		log = zap.NewNop()
	}
	return &NightAuditService{DB: db, Log: log}
}

// AssertBusinessDateOpen fails with a business_date validation error if
// the hotel's day is closed and no override was given.
func (s *NightAuditService) AssertBusinessDateOpen(tc models.TenantContext, date time.Time, override bool) error {
	return s.assertBusinessDateOpenTx(s.DB, tc, date, override)
}

func (s *NightAuditService) assertBusinessDateOpenTx(tx *gorm.DB, tc models.TenantContext, date time.Time, override bool) error {
	if override {
		return nil
	}
	day := utils.DateOnly(date)
	var bd models.BusinessDay
	err := tx.Scopes(models.ScopeTenant(tc)).
		Where("date = ? AND status = ?", day, models.BusinessDayStatusClosed).
		First(&bd).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check business day: %w", err)
	}
	return utils.Invalid("business_date", "business day %s is closed", day.Format("2006-01-02"))
}

// CloseBusinessDay locks a date. Idempotent: closing an already-closed
// day is a no-op.
func (s *NightAuditService) CloseBusinessDay(tc models.TenantContext, date time.Time, actorID *uint) error {
	day := utils.DateOnly(date)
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var bd models.BusinessDay
		err := tx.Scopes(models.ScopeTenant(tc)).Where("date = ?", day).First(&bd).Error
		now := time.Now().UTC()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			bd = models.BusinessDay{
				TenantID:   tc.TenantID,
				HotelID:    tc.HotelID,
				Date:       day,
				Status:     models.BusinessDayStatusClosed,
				ClosedAt:   &now,
				ClosedByID: actorID,
			}
			return tx.Create(&bd).Error
		}
		if err != nil {
			return fmt.Errorf("failed to load business day: %w", err)
		}
		if bd.Status == models.BusinessDayStatusClosed {
			return nil
		}
		return tx.Model(&bd).Updates(map[string]interface{}{
			"status":       models.BusinessDayStatusClosed,
			"closed_at":    now,
			"closed_by_id": actorID,
		}).Error
	})
}

// ReopenBusinessDay is the administrative override path.
func (s *NightAuditService) ReopenBusinessDay(tc models.TenantContext, date time.Time) error {
	day := utils.DateOnly(date)
	res := s.DB.Model(&models.BusinessDay{}).
		Scopes(models.ScopeTenant(tc)).
		Where("date = ? AND status = ?", day, models.BusinessDayStatusClosed).
		Updates(map[string]interface{}{
			"status":       models.BusinessDayStatusOpen,
			"closed_at":    nil,
			"closed_by_id": nil,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to reopen business day: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return utils.Invalid("business_date", "business day %s is not closed", day.Format("2006-01-02"))
	}
	return nil
}

// CloseYesterdayForAllHotels is the cron entry point: it closes the
// previous business day for every hotel of every tenant.
func (s *NightAuditService) CloseYesterdayForAllHotels() {
	yesterday := utils.DateOnly(time.Now().UTC().Add(-24 * time.Hour))

	var hotels []models.Hotel
	if err := s.DB.Find(&hotels).Error; err != nil {
		s.Log.Error("night audit: failed to list hotels", zap.Error(err))
		return
	}
	for _, h := range hotels {
		tc := models.TenantContext{TenantID: h.TenantID, HotelID: h.ID}
		if err := s.CloseBusinessDay(tc, yesterday, nil); err != nil {
			s.Log.Error("night audit: failed to close business day",
				zap.Uint("hotel_id", h.ID), zap.Error(err))
			continue
		}
		s.Log.Info("night audit: business day closed",
			zap.Uint("hotel_id", h.ID), zap.String("date", yesterday.Format("2006-01-02")))
	}
}
