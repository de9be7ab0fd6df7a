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

// FolioService owns the guest-bill ledger: the main folio per
// reservation, stay-charge synchronisation, stay adjustments,
// resegmentation across room changes, invoice snapshots and aggregate
// recalculation. Aggregates are always recomputed from child rows,
// never incremented in place.
type FolioService struct {
	DB *gorm.DB
}

func NewFolioService(db *gorm.DB) *FolioService {
	return &FolioService{DB: db}
}

func (s *FolioService) folio(tx *gorm.DB, tc models.TenantContext, folioID uint) (models.Folio, error) {
	var f models.Folio
	err := tx.Scopes(models.ScopeTenant(tc)).First(&f, folioID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return f, utils.ErrFolioNotFound
	}
	if err != nil {
		return f, fmt.Errorf("failed to load folio: %w", err)
	}
	return f, nil
}

// EnsureMainFolio returns the reservation's main folio, creating it on
// first use. Idempotent: matched by reservation_id + is_main.
func (s *FolioService) EnsureMainFolio(tc models.TenantContext, reservationID uint) (*models.Folio, error) {
	var folio *models.Folio
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var res models.Reservation
		if err := tx.Scopes(models.ScopeTenant(tc)).First(&res, reservationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.ErrReservationNotFound
			}
			return err
		}
		f, err := s.ensureMainFolioTx(tx, tc, &res)
		if err != nil {
			return err
		}
		folio = f
		return nil
	})
	return folio, err
}

func (s *FolioService) ensureMainFolioTx(tx *gorm.DB, tc models.TenantContext, res *models.Reservation) (*models.Folio, error) {
	var existing models.Folio
	err := tx.Scopes(models.ScopeTenant(tc)).
		Where("reservation_id = ? AND is_main = ?", res.ID, true).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up main folio: %w", err)
	}

	currency := res.Currency
	if currency == "" {
		var hotel models.Hotel
		if err := tx.Where("tenant_id = ? AND id = ?", tc.TenantID, tc.HotelID).First(&hotel).Error; err == nil {
			currency = hotel.Currency
		}
	}

	folio := models.Folio{
		TenantID:      tc.TenantID,
		HotelID:       tc.HotelID,
		Code:          utils.MainFolioCode(res.Code),
		ReservationID: &res.ID,
		GuestID:       &res.GuestID,
		IsMain:        true,
		Status:        models.FolioStatusOpen,
		Currency:      currency,
	}
	if err := tx.Create(&folio).Error; err != nil {
		return nil, fmt.Errorf("failed to create main folio: %w", err)
	}
	return &folio, nil
}

// CreatePOSFolio opens a standalone folio for counter/bar sales with no
// reservation behind it.
func (s *FolioService) CreatePOSFolio(tc models.TenantContext, guestID *uint) (*models.Folio, error) {
	var hotel models.Hotel
	currency := ""
	if err := s.DB.Where("tenant_id = ? AND id = ?", tc.TenantID, tc.HotelID).First(&hotel).Error; err == nil {
		currency = hotel.Currency
	}
	folio := models.Folio{
		TenantID: tc.TenantID,
		HotelID:  tc.HotelID,
		Code:     utils.NewPOSFolioCode(time.Now()),
		GuestID:  guestID,
		IsMain:   false,
		Status:   models.FolioStatusOpen,
		Currency: currency,
	}
	if err := s.DB.Create(&folio).Error; err != nil {
		return nil, fmt.Errorf("failed to create folio: %w", err)
	}
	return &folio, nil
}

// activeStayItemTx finds the folio's single active stay item, if any.
func (s *FolioService) activeStayItemTx(tx *gorm.DB, folioID uint) (*models.FolioItem, error) {
	var item models.FolioItem
	err := tx.Where("folio_id = ? AND is_stay_item = ?", folioID, true).
		Order("id DESC").
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up stay item: %w", err)
	}
	return &item, nil
}

// itemInvoicedTx reports whether a folio item was captured on a
// generated invoice. Checked through invoice-item linkage, not folio
// status: this is the immutability guard.
func (s *FolioService) itemInvoicedTx(tx *gorm.DB, itemID uint) (bool, error) {
	var count int64
	if err := tx.Model(&models.InvoiceItem{}).
		Where("folio_item_id = ?", itemID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check invoice linkage: %w", err)
	}
	return count > 0, nil
}

// SyncStayCharge recomputes the reservation's stay charge and writes it
// as the folio's single active stay item.
func (s *FolioService) SyncStayCharge(tc models.TenantContext, reservationID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var res models.Reservation
		if err := tx.Preload("Offer").Preload("Room").
			Scopes(models.ScopeTenant(tc)).First(&res, reservationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.ErrReservationNotFound
			}
			return err
		}
		return s.syncStayChargeTx(tx, tc, &res)
	})
}

// syncStayChargeTx creates or replaces-in-place the active stay item
// from reservation price x kind-based quantity. If the current stay
// item is already invoiced the sync is skipped entirely.
func (s *FolioService) syncStayChargeTx(tx *gorm.DB, tc models.TenantContext, res *models.Reservation) error {
	folio, err := s.ensureMainFolioTx(tx, tc, res)
	if err != nil {
		return err
	}

	offerKind := models.OfferKindNight
	offerName := ""
	if res.Offer != nil {
		offerKind = res.Offer.Kind
		offerName = res.Offer.Name
	}

	qty := utils.StayQuantity(offerKind, res.CheckIn, res.CheckOut)
	base := res.UnitPrice.Mul(decimal.NewFromInt(int64(qty)))
	total := base.Add(res.TaxAmount)
	desc := stayDescription(offerName, res)

	item, err := s.activeStayItemTx(tx, folio.ID)
	if err != nil {
		return err
	}

	if item != nil {
		invoiced, err := s.itemInvoicedTx(tx, item.ID)
		if err != nil {
			return err
		}
		if invoiced {
			// Frozen by a generated invoice; leave it untouched.
			return nil
		}
		if err := tx.Model(&models.FolioItem{}).Where("id = ?", item.ID).
			Updates(map[string]interface{}{
				"description":   desc,
				"quantity":      decimal.NewFromInt(int64(qty)),
				"unit_price":    res.UnitPrice,
				"base_amount":   base,
				"tax_amount":    res.TaxAmount,
				"total_amount":  total,
				"segment_start": res.CheckIn,
				"segment_end":   res.CheckOut,
			}).Error; err != nil {
			return fmt.Errorf("failed to update stay item: %w", err)
		}
		return s.recalculateTotalsTx(tx, folio.ID)
	}

	segStart := res.CheckIn
	segEnd := res.CheckOut
	newItem := models.FolioItem{
		TenantID:     tc.TenantID,
		HotelID:      tc.HotelID,
		FolioID:      folio.ID,
		Description:  desc,
		Type:         models.FolioItemTypeRoom,
		IsStayItem:   true,
		SegmentStart: &segStart,
		SegmentEnd:   &segEnd,
		Quantity:     decimal.NewFromInt(int64(qty)),
		UnitPrice:    res.UnitPrice,
		BaseAmount:   base,
		TaxAmount:    res.TaxAmount,
		TotalAmount:  total,
	}
	if err := tx.Create(&newItem).Error; err != nil {
		return fmt.Errorf("failed to create stay item: %w", err)
	}
	return s.recalculateTotalsTx(tx, folio.ID)
}

func stayDescription(offerName string, res *models.Reservation) string {
	label := "Séjour"
	if offerName != "" {
		label = fmt.Sprintf("Séjour (%s)", offerName)
	}
	if res.Room != nil {
		label = fmt.Sprintf("%s - Chambre %s", label, res.Room.Number)
	}
	return fmt.Sprintf("%s du %s au %s", label,
		res.CheckIn.Format("2006-01-02"), res.CheckOut.Format("2006-01-02"))
}

// StayAdjustmentContext optionally overrides the adjustment line's
// description and quantity/unit price, allowing fractional or negative
// unit prices to represent reductions.
type StayAdjustmentContext struct {
	Description string
	Quantity    *decimal.Decimal
	UnitPrice   *decimal.Decimal
}

// AddStayAdjustment appends a stay_adjustment line for a date or price
// change delta. Additive by design: the original stay item is never
// rewritten, so the folio keeps an auditable trail of every change.
func (s *FolioService) AddStayAdjustment(tc models.TenantContext, reservationID uint, delta decimal.Decimal, reasonLabel string, ctx *StayAdjustmentContext) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var res models.Reservation
		if err := tx.Scopes(models.ScopeTenant(tc)).First(&res, reservationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.ErrReservationNotFound
			}
			return err
		}
		return s.addStayAdjustmentTx(tx, tc, &res, delta, reasonLabel, ctx)
	})
}

func (s *FolioService) addStayAdjustmentTx(tx *gorm.DB, tc models.TenantContext, res *models.Reservation, delta decimal.Decimal, reasonLabel string, ctx *StayAdjustmentContext) error {
	folio, err := s.ensureMainFolioTx(tx, tc, res)
	if err != nil {
		return err
	}

	desc := fmt.Sprintf("%s - Séjour", reasonLabel)
	qty := decimal.NewFromInt(1)
	unit := delta
	if ctx != nil {
		if ctx.Description != "" {
			desc = ctx.Description
		}
		if ctx.Quantity != nil {
			qty = *ctx.Quantity
		}
		if ctx.UnitPrice != nil {
			unit = *ctx.UnitPrice
		}
	}

	item := models.FolioItem{
		TenantID:    tc.TenantID,
		HotelID:     tc.HotelID,
		FolioID:     folio.ID,
		Description: desc,
		Type:        models.FolioItemTypeStayAdjustment,
		Quantity:    qty,
		UnitPrice:   unit,
		BaseAmount:  delta,
		TotalAmount: delta,
	}
	if err := tx.Create(&item).Error; err != nil {
		return fmt.Errorf("failed to create stay adjustment: %w", err)
	}
	return s.recalculateTotalsTx(tx, folio.ID)
}

// resegmentStayForRoomChangeTx splits the stay charge at the pivot into
// a closed old-room segment and an ongoing new-room segment, each at its
// own rate. The superseded stay item is soft-deleted; its closed portion
// is billed from the item's own segment start, so repeated room changes
// never re-bill nights already captured by earlier closed segments.
// Returns the new stay base total, or nil when nothing changed (no stay
// item, or the active one is frozen by a generated invoice).
func (s *FolioService) resegmentStayForRoomChangeTx(tx *gorm.DB, tc models.TenantContext, res *models.Reservation, oldRoom, newRoom models.Room, pivot time.Time, oldUnitPrice, newUnitPrice decimal.Decimal) (*decimal.Decimal, error) {
	folio, err := s.ensureMainFolioTx(tx, tc, res)
	if err != nil {
		return nil, err
	}

	item, err := s.activeStayItemTx(tx, folio.ID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}

	invoiced, err := s.itemInvoicedTx(tx, item.ID)
	if err != nil {
		return nil, err
	}
	if invoiced {
		return nil, nil
	}

	if err := tx.Delete(&models.FolioItem{}, item.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to soft-delete stay item: %w", err)
	}

	segStart := res.CheckIn
	if item.SegmentStart != nil {
		segStart = *item.SegmentStart
	}
	segEnd := res.CheckOut
	pivotAt := pivot

	oldNights := utils.NightsBetween(segStart, pivotAt)
	newNights := utils.NightsBetween(pivotAt, segEnd)
	newBase := newUnitPrice.Mul(decimal.NewFromInt(int64(newNights)))

	// Closed segment for the nights spent in the old room since the
	// segment started. Skipped entirely when the pivot falls on the
	// segment's first night. Not a stay item anymore: the ongoing
	// segment is the one future syncs target.
	if oldNights > 0 {
		oldBase := oldUnitPrice.Mul(decimal.NewFromInt(int64(oldNights)))
		closed := models.FolioItem{
			TenantID: tc.TenantID,
			HotelID:  tc.HotelID,
			FolioID:  folio.ID,
			Description: fmt.Sprintf("Séjour - Chambre %s du %s au %s", oldRoom.Number,
				segStart.Format("2006-01-02"), pivotAt.Format("2006-01-02")),
			Type:         models.FolioItemTypeRoom,
			SegmentStart: &segStart,
			SegmentEnd:   &pivotAt,
			Quantity:     decimal.NewFromInt(int64(oldNights)),
			UnitPrice:    oldUnitPrice,
			BaseAmount:   oldBase,
			TotalAmount:  oldBase,
		}
		if err := tx.Create(&closed).Error; err != nil {
			return nil, fmt.Errorf("failed to create old-room segment: %w", err)
		}
	}

	// Ongoing segment carries the original tax and the stay-item flag.
	ongoing := models.FolioItem{
		TenantID: tc.TenantID,
		HotelID:  tc.HotelID,
		FolioID:  folio.ID,
		Description: fmt.Sprintf("Séjour - Chambre %s du %s au %s", newRoom.Number,
			pivotAt.Format("2006-01-02"), segEnd.Format("2006-01-02")),
		Type:         models.FolioItemTypeRoom,
		IsStayItem:   true,
		SegmentStart: &pivotAt,
		SegmentEnd:   &segEnd,
		Quantity:     decimal.NewFromInt(int64(newNights)),
		UnitPrice:    newUnitPrice,
		BaseAmount:   newBase,
		TaxAmount:    item.TaxAmount,
		TotalAmount:  newBase.Add(item.TaxAmount),
	}
	if err := tx.Create(&ongoing).Error; err != nil {
		return nil, fmt.Errorf("failed to create new-room segment: %w", err)
	}

	if err := s.recalculateTotalsTx(tx, folio.ID); err != nil {
		return nil, err
	}
	total, err := s.stayBaseTotalTx(tx, folio.ID)
	if err != nil {
		return nil, err
	}
	return &total, nil
}

// stayBaseTotalTx sums the base amounts of the folio's room charges,
// closed segments included: the reservation's stay total after any
// number of resegmentations.
func (s *FolioService) stayBaseTotalTx(tx *gorm.DB, folioID uint) (decimal.Decimal, error) {
	var sum struct {
		Total decimal.Decimal
	}
	if err := tx.Model(&models.FolioItem{}).
		Select("COALESCE(SUM(base_amount), 0) AS total").
		Where("folio_id = ? AND type = ?", folioID, models.FolioItemTypeRoom).
		Scan(&sum).Error; err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum stay segments: %w", err)
	}
	return sum.Total, nil
}

// ChargeInput is a generic folio charge (POS line, minibar, ...).
type ChargeInput struct {
	Description    string
	Type           string
	Quantity       decimal.Decimal
	UnitPrice      decimal.Decimal
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	RecordedByID   *uint
}

// AddCharge validates and appends a charge line, then recalculates the
// folio aggregates.
func (s *FolioService) AddCharge(tc models.TenantContext, folioID uint, in ChargeInput) (*models.FolioItem, error) {
	if !in.Quantity.IsPositive() {
		return nil, utils.Invalid("quantity", "quantity must be positive")
	}
	if in.Description == "" {
		return nil, utils.Invalid("description", "description is required")
	}
	if in.Type == "" {
		in.Type = models.FolioItemTypeOther
	}

	base := in.Quantity.Mul(in.UnitPrice)
	total := base.Add(in.TaxAmount).Sub(in.DiscountAmount)

	var item models.FolioItem
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		folio, err := s.folio(tx, tc, folioID)
		if err != nil {
			return err
		}
		if folio.Status != models.FolioStatusOpen {
			return utils.Invalid("folio_id", "folio is closed")
		}
		item = models.FolioItem{
			TenantID:       tc.TenantID,
			HotelID:        tc.HotelID,
			FolioID:        folio.ID,
			Description:    in.Description,
			Type:           in.Type,
			Quantity:       in.Quantity,
			UnitPrice:      in.UnitPrice,
			BaseAmount:     base,
			TaxAmount:      in.TaxAmount,
			DiscountAmount: in.DiscountAmount,
			TotalAmount:    total,
			RecordedByID:   in.RecordedByID,
		}
		if err := tx.Create(&item).Error; err != nil {
			return fmt.Errorf("failed to create charge: %w", err)
		}
		return s.recalculateTotalsTx(tx, folio.ID)
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// RemoveCharge soft-deletes a charge line unless it was captured on a
// generated invoice.
func (s *FolioService) RemoveCharge(tc models.TenantContext, folioID, itemID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var item models.FolioItem
		err := tx.Scopes(models.ScopeTenant(tc)).
			Where("folio_id = ?", folioID).
			First(&item, itemID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrFolioNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load charge: %w", err)
		}
		invoiced, err := s.itemInvoicedTx(tx, item.ID)
		if err != nil {
			return err
		}
		if invoiced {
			return utils.Invalid("item_id", "charge was invoiced and can no longer be removed")
		}
		if err := tx.Delete(&models.FolioItem{}, item.ID).Error; err != nil {
			return fmt.Errorf("failed to delete charge: %w", err)
		}
		return s.recalculateTotalsTx(tx, folioID)
	})
}

// GenerateInvoice snapshots the folio's currently active items into an
// immutable invoice. The service does not guard against duplicates;
// callers must check InvoiceForFolio first (the controller does).
func (s *FolioService) GenerateInvoice(tc models.TenantContext, folioID uint, issuedByID *uint) (*models.Invoice, error) {
	var invoice models.Invoice
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		folio, err := s.folio(tx, tc, folioID)
		if err != nil {
			return err
		}

		var items []models.FolioItem
		if err := tx.Where("folio_id = ?", folio.ID).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Order("id ASC").
			Find(&items).Error; err != nil {
			return fmt.Errorf("failed to load folio items: %w", err)
		}
		if len(items) == 0 {
			return utils.Invalid("folio_id", "folio has no charges to invoice")
		}

		now := time.Now().UTC()
		total := decimal.Zero
		for _, it := range items {
			total = total.Add(it.TotalAmount)
		}

		invoice = models.Invoice{
			TenantID:    tc.TenantID,
			HotelID:     tc.HotelID,
			FolioID:     folio.ID,
			Number:      utils.NewInvoiceNumber(now),
			Currency:    folio.Currency,
			TotalAmount: total,
			IssuedAt:    now,
			IssuedByID:  issuedByID,
		}
		if err := tx.Create(&invoice).Error; err != nil {
			return fmt.Errorf("failed to create invoice: %w", err)
		}

		rows := make([]models.InvoiceItem, 0, len(items))
		for _, it := range items {
			rows = append(rows, models.InvoiceItem{
				InvoiceID:   invoice.ID,
				FolioItemID: it.ID,
				Description: it.Description,
				Quantity:    it.Quantity,
				UnitPrice:   it.UnitPrice,
				BaseAmount:  it.BaseAmount,
				TaxAmount:   it.TaxAmount,
				TotalAmount: it.TotalAmount,
			})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to create invoice items: %w", err)
		}
		invoice.Items = rows
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// InvoiceForFolio returns the folio's invoice if one was already
// generated; callers use it for the "already generated" idempotent path.
func (s *FolioService) InvoiceForFolio(tc models.TenantContext, folioID uint) (*models.Invoice, error) {
	var invoice models.Invoice
	err := s.DB.Scopes(models.ScopeTenant(tc)).
		Preload("Items").
		Where("folio_id = ?", folioID).
		First(&invoice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up invoice: %w", err)
	}
	return &invoice, nil
}

// CloseFolio closes a settled folio.
func (s *FolioService) CloseFolio(tc models.TenantContext, folioID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		folio, err := s.folio(tx, tc, folioID)
		if err != nil {
			return err
		}
		if folio.Status != models.FolioStatusOpen {
			return nil
		}
		if err := s.recalculateTotalsTx(tx, folio.ID); err != nil {
			return err
		}
		if folio, err = s.folio(tx, tc, folioID); err != nil {
			return err
		}
		if !folio.Balance.IsZero() {
			return utils.Invalid("balance", "folio balance must be zero to close (current: %s)", folio.Balance)
		}
		return tx.Model(&models.Folio{}).Where("id = ?", folio.ID).
			Update("status", models.FolioStatusClosed).Error
	})
}

// RecalculateTotals recomputes charges_total, payments_total and balance
// from the child rows.
func (s *FolioService) RecalculateTotals(tc models.TenantContext, folioID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := s.folio(tx, tc, folioID); err != nil {
			return err
		}
		return s.recalculateTotalsTx(tx, folioID)
	})
}

func (s *FolioService) recalculateTotalsTx(tx *gorm.DB, folioID uint) error {
	var charges struct {
		Total decimal.Decimal
	}
	if err := tx.Model(&models.FolioItem{}).
		Select("COALESCE(SUM(total_amount), 0) AS total").
		Where("folio_id = ?", folioID).
		Scan(&charges).Error; err != nil {
		return fmt.Errorf("failed to sum charges: %w", err)
	}

	var payments struct {
		Total decimal.Decimal
	}
	if err := tx.Model(&models.Payment{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("folio_id = ?", folioID).
		Scan(&payments).Error; err != nil {
		return fmt.Errorf("failed to sum payments: %w", err)
	}

	return tx.Model(&models.Folio{}).Where("id = ?", folioID).
		Updates(map[string]interface{}{
			"charges_total":  charges.Total,
			"payments_total": payments.Total,
			"balance":        charges.Total.Sub(payments.Total),
		}).Error
}

// Get returns a folio with its active items and payments.
func (s *FolioService) Get(tc models.TenantContext, folioID uint) (*models.Folio, error) {
	var folio models.Folio
	err := s.DB.Scopes(models.ScopeTenant(tc)).
		Preload("Items").
		Preload("Payments").
		Preload("Payments.PaymentMethod").
		First(&folio, folioID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrFolioNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load folio: %w", err)
	}
	return &folio, nil
}
