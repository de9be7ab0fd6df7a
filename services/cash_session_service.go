package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pms-backend/models"
	"pms-backend/utils"
)

// CashSessionService manages till sessions. The one-open-session-per
// (hotel, type) rule is enforced inside a transaction with a locked
// existence check, so two concurrent opens cannot both pass.
type CashSessionService struct {
	DB *gorm.DB
}

func NewCashSessionService(db *gorm.DB) *CashSessionService {
	return &CashSessionService{DB: db}
}

func validSessionType(t string) bool {
	return t == models.CashSessionTypeFrontdesk || t == models.CashSessionTypeBar
}

func (s *CashSessionService) Open(tc models.TenantContext, sessionType string, openingFloat decimal.Decimal, actorID *uint) (*models.CashSession, error) {
	if !validSessionType(sessionType) {
		return nil, utils.Invalid("type", "unknown cash session type %q", sessionType)
	}
	if openingFloat.IsNegative() {
		return nil, utils.Invalid("opening_float", "opening float cannot be negative")
	}

	var session models.CashSession
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var open models.CashSession
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Scopes(models.ScopeTenant(tc)).
			Where("type = ? AND status = ?", sessionType, models.CashSessionStatusOpen).
			First(&open).Error
		if err == nil {
			return utils.Invalid("type", "an open %s session already exists", sessionType)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check open sessions: %w", err)
		}

		session = models.CashSession{
			TenantID:     tc.TenantID,
			HotelID:      tc.HotelID,
			Type:         sessionType,
			Status:       models.CashSessionStatusOpen,
			OpeningFloat: openingFloat,
			OpenedByID:   actorID,
			OpenedAt:     time.Now().UTC(),
		}
		return tx.Create(&session).Error
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Close declares the counted amount, computes the expected amount from
// the session's cash ledger and records the deviation. The session then
// waits for a manager validation.
func (s *CashSessionService) Close(tc models.TenantContext, sessionID uint, declared decimal.Decimal, actorID *uint, notes string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var session models.CashSession
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Scopes(models.ScopeTenant(tc)).
			First(&session, sessionID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrCashSessionNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load cash session: %w", err)
		}
		if session.Status != models.CashSessionStatusOpen {
			return utils.Invalid("status", "session is not open")
		}

		var cash struct {
			Total decimal.Decimal
		}
		if err := tx.Model(&models.Payment{}).
			Select("COALESCE(SUM(amount), 0) AS total").
			Where("cash_session_id = ?", session.ID).
			Scan(&cash).Error; err != nil {
			return fmt.Errorf("failed to sum session payments: %w", err)
		}

		expected := session.OpeningFloat.Add(cash.Total)
		deviation := declared.Sub(expected)
		now := time.Now().UTC()

		return tx.Model(&session).Updates(map[string]interface{}{
			"status":          models.CashSessionStatusPendingValidation,
			"expected_amount": expected,
			"declared_amount": declared,
			"deviation":       deviation,
			"closed_by_id":    actorID,
			"closed_at":       now,
			"notes":           notes,
		}).Error
	})
}

// Validate is the manager sign-off on a closed session.
func (s *CashSessionService) Validate(tc models.TenantContext, sessionID uint, actorID *uint) error {
	var session models.CashSession
	err := s.DB.Scopes(models.ScopeTenant(tc)).First(&session, sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.ErrCashSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load cash session: %w", err)
	}
	if session.Status != models.CashSessionStatusPendingValidation {
		return utils.Invalid("status", "session cannot be validated from status %s", session.Status)
	}
	now := time.Now().UTC()
	return s.DB.Model(&session).Updates(map[string]interface{}{
		"status":          models.CashSessionStatusValidated,
		"validated_by_id": actorID,
		"validated_at":    now,
	}).Error
}

// openSessionTx finds the open session of a type, used when taking cash
// payments.
func (s *CashSessionService) openSessionTx(tx *gorm.DB, tc models.TenantContext, sessionType string) (*models.CashSession, error) {
	var session models.CashSession
	err := tx.Scopes(models.ScopeTenant(tc)).
		Where("type = ? AND status = ?", sessionType, models.CashSessionStatusOpen).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up open session: %w", err)
	}
	return &session, nil
}

// List returns the hotel's sessions, newest first.
func (s *CashSessionService) List(tc models.TenantContext) ([]models.CashSession, error) {
	var sessions []models.CashSession
	err := s.DB.Scopes(models.ScopeTenant(tc)).
		Order("opened_at DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list cash sessions: %w", err)
	}
	return sessions, nil
}
