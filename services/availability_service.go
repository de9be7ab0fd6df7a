package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pms-backend/models"
	"pms-backend/utils"
)

// StayCandidate is a stay being created or moved, checked for conflicts
// before any write.
type StayCandidate struct {
	RoomTypeID uint
	RoomID     *uint
	CheckIn    time.Time
	CheckOut   time.Time
}

// AvailabilityService detects overlapping reservations and blocking
// maintenance for a candidate stay. Read-only; callers run it inside
// the same transaction as the subsequent write, after locking the
// target room row, so two requests cannot both pass the check.
type AvailabilityService struct {
	DB          *gorm.DB
	Maintenance *MaintenanceService
}

func NewAvailabilityService(db *gorm.DB, maintenance *MaintenanceService) *AvailabilityService {
	return &AvailabilityService{DB: db, Maintenance: maintenance}
}

// EnsureAvailable runs the conflict check outside any caller
// transaction, for read-only availability probes.
func (s *AvailabilityService) EnsureAvailable(tc models.TenantContext, cand StayCandidate, excludeReservationID *uint) error {
	return s.ensureAvailableTx(s.DB, tc, cand, excludeReservationID)
}

func (s *AvailabilityService) ensureAvailableTx(tx *gorm.DB, tc models.TenantContext, cand StayCandidate, excludeReservationID *uint) error {
	if !cand.CheckOut.After(cand.CheckIn) {
		return utils.Invalid("check_out", "check-out must be after check-in")
	}

	if cand.RoomID != nil {
		if err := s.ensureRoomFree(tx, tc, *cand.RoomID, cand, excludeReservationID); err != nil {
			return err
		}
		return s.ensureNotBlockedByMaintenance(tx, tc, *cand.RoomID)
	}

	if cand.RoomTypeID != 0 {
		return s.ensureTypeCapacity(tx, tc, cand, excludeReservationID)
	}
	return utils.Invalid("room_type_id", "a room or room type is required")
}

// ensureRoomFree rejects any active reservation on the same room whose
// [check_in, check_out) window overlaps the candidate's. Half-open: a
// stay ending exactly when another begins is not a conflict.
func (s *AvailabilityService) ensureRoomFree(tx *gorm.DB, tc models.TenantContext, roomID uint, cand StayCandidate, excludeID *uint) error {
	q := tx.Model(&models.Reservation{}).
		Scopes(models.ScopeTenant(tc)).
		Where("room_id = ?", roomID).
		Where("status IN ?", models.ActiveReservationStatuses).
		Where("check_in < ? AND check_out > ?", cand.CheckOut, cand.CheckIn)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check room conflicts: %w", err)
	}
	if count > 0 {
		return utils.Invalid("room_id", "room is already reserved on the requested dates")
	}
	return nil
}

// ensureTypeCapacity compares overlapping active reservations for a room
// type against the physical room count of that type. The type's room
// rows are locked so concurrent type-level bookings serialize on the
// same capacity read, mirroring the room-row lock on the specific-room
// path.
func (s *AvailabilityService) ensureTypeCapacity(tx *gorm.DB, tc models.TenantContext, cand StayCandidate, excludeID *uint) error {
	var capacity int64
	if err := tx.Model(&models.Room{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(models.ScopeTenant(tc)).
		Where("room_type_id = ?", cand.RoomTypeID).
		Where("status <> ?", models.RoomStatusInactive).
		Count(&capacity).Error; err != nil {
		return fmt.Errorf("failed to count rooms: %w", err)
	}

	q := tx.Model(&models.Reservation{}).
		Scopes(models.ScopeTenant(tc)).
		Where("room_type_id = ?", cand.RoomTypeID).
		Where("status IN ?", models.ActiveReservationStatuses).
		Where("check_in < ? AND check_out > ?", cand.CheckOut, cand.CheckIn)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}

	var overlapping int64
	if err := q.Count(&overlapping).Error; err != nil {
		return fmt.Errorf("failed to count overlapping reservations: %w", err)
	}
	if overlapping+1 > capacity {
		return utils.Invalid("room_type_id", "no more rooms of this type are available on the requested dates")
	}
	return nil
}

// ensureNotBlockedByMaintenance rejects a specific room that has an open
// blocking ticket, regardless of date overlap: maintenance holds the
// room outright while active.
func (s *AvailabilityService) ensureNotBlockedByMaintenance(tx *gorm.DB, tc models.TenantContext, roomID uint) error {
	tickets, err := s.Maintenance.openBlockingTicketsForRoomTx(tx, tc, roomID)
	if err != nil {
		return err
	}
	if len(tickets) > 0 {
		return utils.Invalid("room_id", "room is unavailable due to maintenance")
	}
	return nil
}
