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

// PaymentService maintains the payment ledger. Payments are immutable
// once recorded: voiding soft-deletes with metadata, refunds are new
// negative rows referencing their origin.
type PaymentService struct {
	DB         *gorm.DB
	Folios     *FolioService
	Sessions   *CashSessionService
	NightAudit *NightAuditService
}

func NewPaymentService(db *gorm.DB, folios *FolioService, sessions *CashSessionService, nightAudit *NightAuditService) *PaymentService {
	return &PaymentService{DB: db, Folios: folios, Sessions: sessions, NightAudit: nightAudit}
}

type RecordPaymentInput struct {
	FolioID         uint
	PaymentMethodID uint
	Amount          decimal.Decimal
	PaidAt          *time.Time
	CashSessionID   *uint
	Reference       string
	Notes           string
	RecordedByID    *uint
}

// RecordPayment appends a normal ledger entry. Cash methods require an
// open cash session of the method's session type.
func (s *PaymentService) RecordPayment(tc models.TenantContext, in RecordPaymentInput) (*models.Payment, error) {
	if !in.Amount.IsPositive() {
		return nil, utils.Invalid("amount", "amount must be positive")
	}

	paidAt := time.Now().UTC()
	if in.PaidAt != nil {
		paidAt = in.PaidAt.UTC()
	}

	var payment models.Payment
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		folio, err := s.Folios.folio(tx, tc, in.FolioID)
		if err != nil {
			return err
		}
		if folio.Status != models.FolioStatusOpen {
			return utils.Invalid("folio_id", "folio is closed")
		}

		var method models.PaymentMethod
		err = tx.Scopes(models.ScopeTenant(tc)).First(&method, in.PaymentMethodID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrPaymentMethodNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load payment method: %w", err)
		}

		sessionID := in.CashSessionID
		if method.Type == models.PaymentMethodTypeCash {
			open, err := s.Sessions.openSessionTx(tx, tc, method.SessionType)
			if err != nil {
				return err
			}
			if open == nil {
				return utils.Invalid("cash_session_id", "no open %s cash session", method.SessionType)
			}
			if sessionID != nil && *sessionID != open.ID {
				return utils.Invalid("cash_session_id", "session %d is not the open %s session", *sessionID, method.SessionType)
			}
			sessionID = &open.ID
		}

		businessDate := utils.DateOnly(paidAt)
		if err := s.NightAudit.assertBusinessDateOpenTx(tx, tc, businessDate, false); err != nil {
			return err
		}

		payment = models.Payment{
			TenantID:        tc.TenantID,
			HotelID:         tc.HotelID,
			FolioID:         folio.ID,
			PaymentMethodID: method.ID,
			CashSessionID:   sessionID,
			Amount:          in.Amount,
			Currency:        folio.Currency,
			EntryType:       models.PaymentEntryNormal,
			PaidAt:          paidAt,
			BusinessDate:    businessDate,
			Reference:       in.Reference,
			Notes:           in.Notes,
			RecordedByID:    in.RecordedByID,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return fmt.Errorf("failed to create payment: %w", err)
		}
		return s.Folios.recalculateTotalsTx(tx, folio.ID)
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (s *PaymentService) paymentForUpdate(tx *gorm.DB, tc models.TenantContext, id uint) (models.Payment, error) {
	var p models.Payment
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(models.ScopeTenant(tc)).
		First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return p, utils.ErrPaymentNotFound
	}
	if err != nil {
		return p, fmt.Errorf("failed to load payment: %w", err)
	}
	return p, nil
}

// paymentForVoid loads through the soft-delete filter: a second void
// must report the payment as already voided, not as missing.
func (s *PaymentService) paymentForVoid(tx *gorm.DB, tc models.TenantContext, id uint) (models.Payment, error) {
	var p models.Payment
	err := tx.Unscoped().
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(models.ScopeTenant(tc)).
		First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return p, utils.ErrPaymentNotFound
	}
	if err != nil {
		return p, fmt.Errorf("failed to load payment: %w", err)
	}
	return p, nil
}

// refundedSoFarTx sums the absolute value of all refunds recorded
// against a payment (voided refunds excluded by the soft-delete filter).
func (s *PaymentService) refundedSoFarTx(tx *gorm.DB, paymentID uint) (decimal.Decimal, error) {
	var sum struct {
		Total decimal.Decimal
	}
	err := tx.Model(&models.Payment{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("parent_payment_id = ? AND entry_type = ?", paymentID, models.PaymentEntryRefund).
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum refunds: %w", err)
	}
	return sum.Total.Neg(), nil
}

// VoidPayment cancels a payment outright: soft-delete plus void
// metadata. Blocked once any refund exists against it, and when the
// payment's business day is closed (unless overridden).
func (s *PaymentService) VoidPayment(tc models.TenantContext, paymentID, actorID uint, reason string, override bool) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		p, err := s.paymentForVoid(tx, tc, paymentID)
		if err != nil {
			return err
		}
		if p.EntryType == models.PaymentEntryRefund {
			return utils.Invalid("payment_id", "refund entries cannot be voided")
		}
		if p.VoidedAt != nil {
			return utils.Invalid("payment_id", "payment is already voided")
		}

		refunded, err := s.refundedSoFarTx(tx, p.ID)
		if err != nil {
			return err
		}
		if refunded.IsPositive() {
			return utils.Invalid("payment_id", "payment has refunds and cannot be voided")
		}

		if err := s.NightAudit.assertBusinessDateOpenTx(tx, tc, p.BusinessDate, override); err != nil {
			return err
		}

		now := time.Now().UTC()
		if err := tx.Model(&models.Payment{}).Where("id = ?", p.ID).
			Updates(map[string]interface{}{
				"voided_at":    now,
				"voided_by_id": actorID,
				"void_reason":  reason,
			}).Error; err != nil {
			return fmt.Errorf("failed to stamp void: %w", err)
		}
		if err := tx.Delete(&models.Payment{}, p.ID).Error; err != nil {
			return fmt.Errorf("failed to void payment: %w", err)
		}
		return s.Folios.recalculateTotalsTx(tx, p.FolioID)
	})
}

type RefundPaymentInput struct {
	PaymentID       uint
	Amount          decimal.Decimal
	PaymentMethodID uint
	CashSessionID   *uint
	Reason          string
	Reference       string
	ActorID         uint
	Override        bool
}

// RefundPayment records a partial or full refund as a new negative
// ledger row linked to the original. The original row is not mutated.
// The total refunded against a payment can never exceed its amount.
func (s *PaymentService) RefundPayment(tc models.TenantContext, in RefundPaymentInput) (*models.Payment, error) {
	if !in.Amount.IsPositive() {
		return nil, utils.Invalid("amount", "refund amount must be positive")
	}

	var refund models.Payment
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		p, err := s.paymentForUpdate(tx, tc, in.PaymentID)
		if err != nil {
			return err
		}
		if p.EntryType == models.PaymentEntryRefund {
			return utils.Invalid("payment_id", "a refund cannot be refunded")
		}
		if p.VoidedAt != nil {
			return utils.Invalid("payment_id", "payment is voided")
		}

		refunded, err := s.refundedSoFarTx(tx, p.ID)
		if err != nil {
			return err
		}
		remaining := p.Amount.Sub(refunded)
		if in.Amount.GreaterThan(remaining) {
			return utils.Invalid("amount", "refund exceeds remaining refundable amount (%s)", remaining)
		}

		if err := s.NightAudit.assertBusinessDateOpenTx(tx, tc, p.BusinessDate, in.Override); err != nil {
			return err
		}

		var method models.PaymentMethod
		err = tx.Scopes(models.ScopeTenant(tc)).First(&method, in.PaymentMethodID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrPaymentMethodNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load payment method: %w", err)
		}

		sessionID := in.CashSessionID
		if method.Type == models.PaymentMethodTypeCash {
			open, err := s.Sessions.openSessionTx(tx, tc, method.SessionType)
			if err != nil {
				return err
			}
			if open == nil {
				return utils.Invalid("cash_session_id", "no open %s cash session", method.SessionType)
			}
			sessionID = &open.ID
		}

		reference := in.Reference
		if reference == "" {
			reference = utils.NewRefundReference()
		}

		now := time.Now().UTC()
		actorID := in.ActorID
		refund = models.Payment{
			TenantID:        tc.TenantID,
			HotelID:         tc.HotelID,
			FolioID:         p.FolioID,
			PaymentMethodID: method.ID,
			CashSessionID:   sessionID,
			Amount:          in.Amount.Neg(),
			Currency:        p.Currency,
			EntryType:       models.PaymentEntryRefund,
			ParentPaymentID: &p.ID,
			PaidAt:          now,
			BusinessDate:    utils.DateOnly(now),
			RefundReason:    in.Reason,
			RefundReference: reference,
			RecordedByID:    &actorID,
		}
		if err := tx.Create(&refund).Error; err != nil {
			return fmt.Errorf("failed to create refund: %w", err)
		}
		return s.Folios.recalculateTotalsTx(tx, p.FolioID)
	})
	if err != nil {
		return nil, err
	}
	return &refund, nil
}
