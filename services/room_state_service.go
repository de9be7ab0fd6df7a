package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pms-backend/models"
	"pms-backend/utils"
)

// RoomStateService is the only writer of rooms.status. Occupancy and
// housekeeping are independent axes; transitions on each are
// whitelisted and invalid ones fail loudly, never as silent no-ops.
type RoomStateService struct {
	DB *gorm.DB
}

func NewRoomStateService(db *gorm.DB) *RoomStateService {
	return &RoomStateService{DB: db}
}

var hkTransitions = map[string][]string{
	models.HkStatusClean:              {models.HkStatusDirty},
	models.HkStatusDirty:              {models.HkStatusAwaitingInspection},
	models.HkStatusAwaitingInspection: {models.HkStatusInspected, models.HkStatusRedo},
	models.HkStatusRedo:               {models.HkStatusAwaitingInspection},
	models.HkStatusInspected:          {models.HkStatusClean},
}

func (s *RoomStateService) roomForUpdate(tx *gorm.DB, tc models.TenantContext, roomID uint) (models.Room, error) {
	var room models.Room
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(models.ScopeTenant(tc)).
		First(&room, roomID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return room, utils.ErrRoomNotFound
	}
	if err != nil {
		return room, fmt.Errorf("failed to load room %d: %w", roomID, err)
	}
	return room, nil
}

// markOccupiedTx moves an available room to occupied for a reservation.
func (s *RoomStateService) markOccupiedTx(tx *gorm.DB, tc models.TenantContext, roomID, reservationID uint) error {
	room, err := s.roomForUpdate(tx, tc, roomID)
	if err != nil {
		return err
	}
	if room.Status != models.RoomStatusAvailable {
		return utils.Invalid("room_id", "room %s cannot be occupied from status %s", room.Number, room.Status)
	}
	return tx.Model(&models.Room{}).Where("id = ?", room.ID).
		Updates(map[string]interface{}{
			"status":                 models.RoomStatusOccupied,
			"current_reservation_id": reservationID,
		}).Error
}

// markAvailableTx releases a room from occupied or out_of_order. The
// caller decides the resulting housekeeping status; hkStatus "" leaves
// it untouched. The state machine does not infer housekeeping outcome.
func (s *RoomStateService) markAvailableTx(tx *gorm.DB, tc models.TenantContext, roomID uint, hkStatus string) error {
	room, err := s.roomForUpdate(tx, tc, roomID)
	if err != nil {
		return err
	}
	if room.Status != models.RoomStatusOccupied && room.Status != models.RoomStatusOutOfOrder {
		return utils.Invalid("room_id", "room %s cannot be released from status %s", room.Number, room.Status)
	}
	updates := map[string]interface{}{
		"status":                 models.RoomStatusAvailable,
		"current_reservation_id": nil,
	}
	if hkStatus != "" {
		updates["hk_status"] = hkStatus
	}
	return tx.Model(&models.Room{}).Where("id = ?", room.ID).Updates(updates).Error
}

// MarkOutOfOrder pulls a room out of service. A room in use must be
// released first.
func (s *RoomStateService) MarkOutOfOrder(tc models.TenantContext, roomID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		room, err := s.roomForUpdate(tx, tc, roomID)
		if err != nil {
			return err
		}
		if room.Status == models.RoomStatusOccupied {
			return utils.Invalid("room_id", "room %s is occupied and cannot be taken out of order", room.Number)
		}
		if room.Status != models.RoomStatusAvailable {
			return utils.Invalid("room_id", "room %s cannot go out of order from status %s", room.Number, room.Status)
		}
		return tx.Model(&models.Room{}).Where("id = ?", room.ID).
			Update("status", models.RoomStatusOutOfOrder).Error
	})
}

// ReturnToService brings an out-of-order room back to available.
func (s *RoomStateService) ReturnToService(tc models.TenantContext, roomID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		return s.markAvailableTx(tx, tc, roomID, "")
	})
}

// SetHousekeepingStatus applies a whitelisted housekeeping transition
// (clean -> dirty -> awaiting_inspection -> inspected|redo -> ...).
func (s *RoomStateService) SetHousekeepingStatus(tc models.TenantContext, roomID uint, next string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		return s.setHousekeepingStatusTx(tx, tc, roomID, next)
	})
}

func (s *RoomStateService) setHousekeepingStatusTx(tx *gorm.DB, tc models.TenantContext, roomID uint, next string) error {
	room, err := s.roomForUpdate(tx, tc, roomID)
	if err != nil {
		return err
	}
	for _, allowed := range hkTransitions[room.HkStatus] {
		if allowed == next {
			return tx.Model(&models.Room{}).Where("id = ?", room.ID).
				Update("hk_status", next).Error
		}
	}
	return utils.Invalid("hk_status", "room %s cannot go from %s to %s", room.Number, room.HkStatus, next)
}
