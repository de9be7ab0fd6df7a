package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pms-backend/models"
	"pms-backend/utils"
)

// ReservationService drives the reservation lifecycle
// (pending -> confirmed -> in_house -> checked_out, cancellation from
// pending/confirmed) and coordinates the room state machine, folio
// billing and checkout side effects. Every mutating operation runs the
// availability gate and the write inside one transaction, with the
// target room row locked, so concurrent requests cannot double-book.
type ReservationService struct {
	DB           *gorm.DB
	Rooms        *RoomStateService
	Availability *AvailabilityService
	Folios       *FolioService
	Housekeeping *HousekeepingService
	Loyalty      *LoyaltyService
	Notifier     *Notifier
}

func NewReservationService(
	db *gorm.DB,
	rooms *RoomStateService,
	availability *AvailabilityService,
	folios *FolioService,
	housekeeping *HousekeepingService,
	loyalty *LoyaltyService,
	notifier *Notifier,
) *ReservationService {
	return &ReservationService{
		DB:           db,
		Rooms:        rooms,
		Availability: availability,
		Folios:       folios,
		Housekeeping: housekeeping,
		Loyalty:      loyalty,
		Notifier:     notifier,
	}
}

var reservationTransitions = map[string][]string{
	models.ReservationStatusPending:   {models.ReservationStatusConfirmed, models.ReservationStatusCancelled},
	models.ReservationStatusConfirmed: {models.ReservationStatusInHouse, models.ReservationStatusCancelled},
	models.ReservationStatusInHouse:   {models.ReservationStatusCheckedOut},
}

func canTransition(from, to string) bool {
	for _, allowed := range reservationTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func (s *ReservationService) reservationForUpdate(tx *gorm.DB, tc models.TenantContext, id uint) (models.Reservation, error) {
	var res models.Reservation
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(models.ScopeTenant(tc)).
		First(&res, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return res, utils.ErrReservationNotFound
	}
	if err != nil {
		return res, fmt.Errorf("failed to load reservation: %w", err)
	}
	return res, nil
}

type CreateReservationInput struct {
	GuestID    uint
	RoomTypeID uint
	RoomID     *uint
	OfferID    *uint
	Status     string
	CheckIn    time.Time
	CheckOut   time.Time
	UnitPrice  decimal.Decimal
	TaxAmount  decimal.Decimal
	Adults     int
	Children   int
	Source     string
	Notes      string
	Occupants  datatypes.JSON
	BookedByID *uint
}

// Create books a stay. Direct creation is restricted to pending or
// confirmed; any other initial status is rejected at this boundary.
func (s *ReservationService) Create(tc models.TenantContext, in CreateReservationInput) (*models.Reservation, error) {
	if in.Status == "" {
		in.Status = models.ReservationStatusPending
	}
	if in.Status != models.ReservationStatusPending && in.Status != models.ReservationStatusConfirmed {
		return nil, utils.Invalid("status", "reservations can only be created as pending or confirmed")
	}
	if !in.CheckOut.After(in.CheckIn) {
		return nil, utils.Invalid("check_out", "check-out must be after check-in")
	}
	if in.UnitPrice.IsNegative() {
		return nil, utils.Invalid("unit_price", "unit price cannot be negative")
	}
	if in.Adults <= 0 {
		in.Adults = 1
	}
	if in.Children < 0 {
		in.Children = 0
	}

	var res models.Reservation
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var guest models.Guest
		err := tx.Scopes(models.ScopeTenantOnly(tc)).First(&guest, in.GuestID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrGuestNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load guest: %w", err)
		}

		var hotel models.Hotel
		if err := tx.Where("tenant_id = ? AND id = ?", tc.TenantID, tc.HotelID).First(&hotel).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.ErrHotelNotFound
			}
			return fmt.Errorf("failed to load hotel: %w", err)
		}

		var room *models.Room
		if in.RoomID != nil {
			// Lock the room row up front: the availability read and the
			// reservation write must be one atomic unit.
			r, err := s.Rooms.roomForUpdate(tx, tc, *in.RoomID)
			if err != nil {
				return err
			}
			room = &r
		}

		var offer *models.Offer
		if in.OfferID != nil {
			var o models.Offer
			err := tx.Scopes(models.ScopeTenant(tc)).First(&o, *in.OfferID).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.Invalid("offer_id", "offer not found")
			}
			if err != nil {
				return fmt.Errorf("failed to load offer: %w", err)
			}
			offer = &o
		}

		cand := StayCandidate{
			RoomTypeID: in.RoomTypeID,
			RoomID:     in.RoomID,
			CheckIn:    in.CheckIn,
			CheckOut:   in.CheckOut,
		}
		if err := s.Availability.ensureAvailableTx(tx, tc, cand, nil); err != nil {
			return err
		}

		offerKind := models.OfferKindNight
		if offer != nil {
			offerKind = offer.Kind
		}
		base := utils.StayBaseAmount(in.UnitPrice, offerKind, in.CheckIn, in.CheckOut)

		res = models.Reservation{
			TenantID:    tc.TenantID,
			HotelID:     tc.HotelID,
			Code:        utils.NewReservationCode(time.Now()),
			GuestID:     guest.ID,
			RoomTypeID:  in.RoomTypeID,
			RoomID:      in.RoomID,
			OfferID:     in.OfferID,
			Status:      in.Status,
			CheckIn:     in.CheckIn,
			CheckOut:    in.CheckOut,
			Currency:    hotel.Currency,
			UnitPrice:   in.UnitPrice,
			BaseAmount:  base,
			TaxAmount:   in.TaxAmount,
			TotalAmount: base.Add(in.TaxAmount),
			Adults:      in.Adults,
			Children:    in.Children,
			Source:      in.Source,
			Notes:       in.Notes,
			Occupants:   in.Occupants,
			BookedByID:  in.BookedByID,
		}
		if err := tx.Create(&res).Error; err != nil {
			return fmt.Errorf("failed to create reservation: %w", err)
		}

		res.Offer = offer
		res.Room = room
		return s.Folios.syncStayChargeTx(tx, tc, &res)
	})
	if err != nil {
		return nil, err
	}

	s.Notifier.Publish(tc, "reservation.created", map[string]interface{}{"reservation_id": res.ID, "code": res.Code})
	return &res, nil
}

// Confirm moves pending -> confirmed. No side effects beyond status.
func (s *ReservationService) Confirm(tc models.TenantContext, id uint) error {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		res, err := s.reservationForUpdate(tx, tc, id)
		if err != nil {
			return err
		}
		if !canTransition(res.Status, models.ReservationStatusConfirmed) {
			return utils.Invalid("status", "cannot confirm a %s reservation", res.Status)
		}
		return tx.Model(&models.Reservation{}).Where("id = ?", res.ID).
			Update("status", models.ReservationStatusConfirmed).Error
	})
	if err == nil {
		s.Notifier.Publish(tc, "reservation.confirmed", map[string]interface{}{"reservation_id": id})
	}
	return err
}

// Cancel is reachable from pending/confirmed only. Cancellation is a
// status change; the row is never deleted.
func (s *ReservationService) Cancel(tc models.TenantContext, id uint, reason string) error {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		res, err := s.reservationForUpdate(tx, tc, id)
		if err != nil {
			return err
		}
		if !canTransition(res.Status, models.ReservationStatusCancelled) {
			return utils.Invalid("status", "cannot cancel a %s reservation", res.Status)
		}
		updates := map[string]interface{}{"status": models.ReservationStatusCancelled}
		if reason != "" {
			updates["notes"] = fmt.Sprintf("%s\n[cancelled] %s", res.Notes, reason)
		}
		return tx.Model(&models.Reservation{}).Where("id = ?", res.ID).Updates(updates).Error
	})
	if err == nil {
		s.Notifier.Publish(tc, "reservation.cancelled", map[string]interface{}{"reservation_id": id})
	}
	return err
}

// CheckIn moves confirmed -> in_house, stamps the actual arrival and
// occupies the room.
func (s *ReservationService) CheckIn(tc models.TenantContext, id uint) error {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		res, err := s.reservationForUpdate(tx, tc, id)
		if err != nil {
			return err
		}
		if !canTransition(res.Status, models.ReservationStatusInHouse) {
			return utils.Invalid("status", "cannot check in a %s reservation", res.Status)
		}
		if res.RoomID == nil {
			return utils.Invalid("room_id", "a room must be assigned before check-in")
		}

		now := time.Now().UTC()
		if err := tx.Model(&models.Reservation{}).Where("id = ?", res.ID).
			Updates(map[string]interface{}{
				"status":             models.ReservationStatusInHouse,
				"actual_check_in_at": now,
			}).Error; err != nil {
			return err
		}
		return s.Rooms.markOccupiedTx(tx, tc, *res.RoomID, res.ID)
	})
	if err == nil {
		s.Notifier.Publish(tc, "reservation.checked_in", map[string]interface{}{"reservation_id": id})
	}
	return err
}

// CheckOut moves in_house -> checked_out. `at` supports back-dated or
// administrative checkouts; nil means now. Releases the room as dirty,
// opens a cleaning task whose priority escalates with same-day
// re-arrival pressure, and credits loyalty points when the hotel has
// earning enabled.
func (s *ReservationService) CheckOut(tc models.TenantContext, id uint, at *time.Time) error {
	pivot := time.Now().UTC()
	if at != nil {
		pivot = at.UTC()
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		res, err := s.reservationForUpdate(tx, tc, id)
		if err != nil {
			return err
		}
		if !canTransition(res.Status, models.ReservationStatusCheckedOut) {
			return utils.Invalid("status", "cannot check out a %s reservation", res.Status)
		}

		if err := tx.Model(&models.Reservation{}).Where("id = ?", res.ID).
			Updates(map[string]interface{}{
				"status":              models.ReservationStatusCheckedOut,
				"actual_check_out_at": pivot,
			}).Error; err != nil {
			return err
		}

		if res.RoomID != nil {
			if err := s.Rooms.markAvailableTx(tx, tc, *res.RoomID, models.HkStatusDirty); err != nil {
				return err
			}
			priority, err := s.Housekeeping.checkoutPriorityTx(tx, tc, *res.RoomID, pivot)
			if err != nil {
				return err
			}
			if _, err := s.Housekeeping.createCleaningTaskTx(tx, tc, *res.RoomID, priority, "checkout"); err != nil {
				return err
			}
		}

		var hotel models.Hotel
		if err := tx.Where("tenant_id = ? AND id = ?", tc.TenantID, tc.HotelID).First(&hotel).Error; err != nil {
			return fmt.Errorf("failed to load hotel: %w", err)
		}
		points := s.Loyalty.PointsFor(&hotel, &res)
		return s.Loyalty.creditPointsTx(tx, tc, res.GuestID, points)
	})
	if err == nil {
		s.Notifier.Publish(tc, "reservation.checked_out", map[string]interface{}{"reservation_id": id})
	}
	return err
}

// ChangeDates moves the stay window. The availability gate runs with
// the reservation itself excluded; the price delta is appended to the
// folio as a stay adjustment so the original stay charge stays intact
// as an audit trail.
func (s *ReservationService) ChangeDates(tc models.TenantContext, id uint, newCheckIn, newCheckOut time.Time) error {
	if !newCheckOut.After(newCheckIn) {
		return utils.Invalid("check_out", "check-out must be after check-in")
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		res, err := s.reservationForUpdate(tx, tc, id)
		if err != nil {
			return err
		}
		if res.Status == models.ReservationStatusCheckedOut || res.Status == models.ReservationStatusCancelled {
			return utils.Invalid("status", "cannot change dates of a %s reservation", res.Status)
		}

		if res.RoomID != nil {
			if _, err := s.Rooms.roomForUpdate(tx, tc, *res.RoomID); err != nil {
				return err
			}
		}
		cand := StayCandidate{
			RoomTypeID: res.RoomTypeID,
			RoomID:     res.RoomID,
			CheckIn:    newCheckIn,
			CheckOut:   newCheckOut,
		}
		if err := s.Availability.ensureAvailableTx(tx, tc, cand, &res.ID); err != nil {
			return err
		}

		offerKind := models.OfferKindNight
		offerName := ""
		if res.OfferID != nil {
			var offer models.Offer
			if err := tx.Scopes(models.ScopeTenant(tc)).First(&offer, *res.OfferID).Error; err == nil {
				offerKind = offer.Kind
				offerName = offer.Name
			}
		}

		oldBase := utils.StayBaseAmount(res.UnitPrice, offerKind, res.CheckIn, res.CheckOut)
		newBase := utils.StayBaseAmount(res.UnitPrice, offerKind, newCheckIn, newCheckOut)
		delta := newBase.Sub(oldBase)

		if err := tx.Model(&models.Reservation{}).Where("id = ?", res.ID).
			Updates(map[string]interface{}{
				"check_in":     newCheckIn,
				"check_out":    newCheckOut,
				"base_amount":  newBase,
				"total_amount": newBase.Add(res.TaxAmount),
			}).Error; err != nil {
			return err
		}

		if delta.IsZero() {
			return nil
		}

		label := "Modification de séjour"
		desc := fmt.Sprintf("%s du %s au %s", label,
			newCheckIn.Format("2006-01-02"), newCheckOut.Format("2006-01-02"))
		if offerName != "" {
			desc = fmt.Sprintf("%s (%s) du %s au %s", label, offerName,
				newCheckIn.Format("2006-01-02"), newCheckOut.Format("2006-01-02"))
		}
		return s.Folios.addStayAdjustmentTx(tx, tc, &res, delta, label, &StayAdjustmentContext{Description: desc})
	})
}

// ChangeRoom reassigns the stay to another room. Before arrival it is a
// plain reassignment plus a stay-charge resync; for an in-house stay
// the folio is resegmented at the pivot so nights before and after the
// move are billed at their respective rates.
func (s *ReservationService) ChangeRoom(tc models.TenantContext, id, newRoomID uint, newUnitPrice *decimal.Decimal, pivotAt *time.Time) error {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		res, err := s.reservationForUpdate(tx, tc, id)
		if err != nil {
			return err
		}
		if res.Status == models.ReservationStatusCheckedOut || res.Status == models.ReservationStatusCancelled {
			return utils.Invalid("status", "cannot change room of a %s reservation", res.Status)
		}
		if res.RoomID != nil && *res.RoomID == newRoomID {
			return utils.Invalid("room_id", "reservation already occupies this room")
		}

		newRoom, err := s.Rooms.roomForUpdate(tx, tc, newRoomID)
		if err != nil {
			return err
		}

		price := res.UnitPrice
		if newUnitPrice != nil {
			price = *newUnitPrice
		}

		if res.Status != models.ReservationStatusInHouse {
			cand := StayCandidate{
				RoomTypeID: newRoom.RoomTypeID,
				RoomID:     &newRoom.ID,
				CheckIn:    res.CheckIn,
				CheckOut:   res.CheckOut,
			}
			if err := s.Availability.ensureAvailableTx(tx, tc, cand, &res.ID); err != nil {
				return err
			}

			offerKind := models.OfferKindNight
			if res.OfferID != nil {
				var offer models.Offer
				if err := tx.Scopes(models.ScopeTenant(tc)).First(&offer, *res.OfferID).Error; err == nil {
					offerKind = offer.Kind
					res.Offer = &offer
				}
			}
			base := utils.StayBaseAmount(price, offerKind, res.CheckIn, res.CheckOut)
			if err := tx.Model(&models.Reservation{}).Where("id = ?", res.ID).
				Updates(map[string]interface{}{
					"room_id":      newRoom.ID,
					"room_type_id": newRoom.RoomTypeID,
					"unit_price":   price,
					"base_amount":  base,
					"total_amount": base.Add(res.TaxAmount),
				}).Error; err != nil {
				return err
			}
			res.RoomID = &newRoom.ID
			res.UnitPrice = price
			res.Room = &newRoom
			return s.Folios.syncStayChargeTx(tx, tc, &res)
		}

		// In-house move: split the stay at the pivot.
		pivot := time.Now().UTC()
		if pivotAt != nil {
			pivot = pivotAt.UTC()
		}
		if !pivot.After(res.CheckIn) || !res.CheckOut.After(pivot) {
			return utils.Invalid("pivot", "pivot must fall within the stay window")
		}

		if res.RoomID == nil {
			return utils.Invalid("room_id", "in-house reservation has no room assigned")
		}
		oldRoom, err := s.Rooms.roomForUpdate(tx, tc, *res.RoomID)
		if err != nil {
			return err
		}

		cand := StayCandidate{
			RoomTypeID: newRoom.RoomTypeID,
			RoomID:     &newRoom.ID,
			CheckIn:    pivot,
			CheckOut:   res.CheckOut,
		}
		if err := s.Availability.ensureAvailableTx(tx, tc, cand, &res.ID); err != nil {
			return err
		}

		newBase, err := s.Folios.resegmentStayForRoomChangeTx(tx, tc, &res, oldRoom, newRoom, pivot, res.UnitPrice, price)
		if err != nil {
			return err
		}

		if err := s.Rooms.markAvailableTx(tx, tc, oldRoom.ID, models.HkStatusDirty); err != nil {
			return err
		}
		if _, err := s.Housekeeping.createCleaningTaskTx(tx, tc, oldRoom.ID, models.HkTaskPriorityNormal, "room_change"); err != nil {
			return err
		}
		if err := s.Rooms.markOccupiedTx(tx, tc, newRoom.ID, res.ID); err != nil {
			return err
		}

		// When billing is frozen by an invoice the amounts stay as they
		// are; only the operational move goes through.
		updates := map[string]interface{}{
			"room_id":      newRoom.ID,
			"room_type_id": newRoom.RoomTypeID,
			"unit_price":   price,
		}
		if newBase != nil {
			updates["base_amount"] = *newBase
			updates["total_amount"] = newBase.Add(res.TaxAmount)
		}
		return tx.Model(&models.Reservation{}).Where("id = ?", res.ID).
			Updates(updates).Error
	})
	if err == nil {
		s.Notifier.Publish(tc, "reservation.room_changed", map[string]interface{}{"reservation_id": id, "room_id": newRoomID})
	}
	return err
}

// Get returns a reservation with its relations.
func (s *ReservationService) Get(tc models.TenantContext, id uint) (*models.Reservation, error) {
	var res models.Reservation
	err := s.DB.Scopes(models.ScopeTenant(tc)).
		Preload("Guest").
		Preload("Room").
		Preload("RoomType").
		Preload("Offer").
		First(&res, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load reservation: %w", err)
	}
	return &res, nil
}

// List returns the hotel's reservations, optionally filtered by status.
func (s *ReservationService) List(tc models.TenantContext, status string) ([]models.Reservation, error) {
	q := s.DB.Scopes(models.ScopeTenant(tc)).
		Preload("Guest").
		Preload("Room").
		Preload("RoomType").
		Order("check_in DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var list []models.Reservation
	if err := q.Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return list, nil
}
