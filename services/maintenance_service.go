package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"pms-backend/models"
	"pms-backend/utils"
)

type MaintenanceService struct {
	DB *gorm.DB
}

func NewMaintenanceService(db *gorm.DB) *MaintenanceService {
	return &MaintenanceService{DB: db}
}

type OpenTicketInput struct {
	RoomID       uint
	Title        string
	Details      string
	Priority     string
	BlocksSale   bool
	ReportedByID *uint
}

func (s *MaintenanceService) OpenTicket(tc models.TenantContext, in OpenTicketInput) (*models.MaintenanceTicket, error) {
	if in.Title == "" {
		return nil, utils.Invalid("title", "title is required")
	}
	var room models.Room
	if err := s.DB.Scopes(models.ScopeTenant(tc)).First(&room, in.RoomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to load room: %w", err)
	}
	if in.Priority == "" {
		in.Priority = "normal"
	}
	ticket := models.MaintenanceTicket{
		TenantID:     tc.TenantID,
		HotelID:      tc.HotelID,
		RoomID:       room.ID,
		Title:        in.Title,
		Details:      in.Details,
		Priority:     in.Priority,
		BlocksSale:   in.BlocksSale,
		Status:       models.MaintenanceStatusOpen,
		ReportedByID: in.ReportedByID,
	}
	if err := s.DB.Create(&ticket).Error; err != nil {
		return nil, fmt.Errorf("failed to create maintenance ticket: %w", err)
	}
	return &ticket, nil
}

func (s *MaintenanceService) ticket(tc models.TenantContext, id uint) (models.MaintenanceTicket, error) {
	var t models.MaintenanceTicket
	err := s.DB.Scopes(models.ScopeTenant(tc)).First(&t, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return t, utils.ErrTicketNotFound
	}
	if err != nil {
		return t, fmt.Errorf("failed to load ticket: %w", err)
	}
	return t, nil
}

func (s *MaintenanceService) StartTicket(tc models.TenantContext, id uint) error {
	t, err := s.ticket(tc, id)
	if err != nil {
		return err
	}
	if t.Status != models.MaintenanceStatusOpen {
		return utils.Invalid("status", "ticket cannot start from status %s", t.Status)
	}
	return s.DB.Model(&t).Update("status", models.MaintenanceStatusInProgress).Error
}

func (s *MaintenanceService) ResolveTicket(tc models.TenantContext, id uint) error {
	t, err := s.ticket(tc, id)
	if err != nil {
		return err
	}
	if t.Status != models.MaintenanceStatusOpen && t.Status != models.MaintenanceStatusInProgress {
		return utils.Invalid("status", "ticket cannot resolve from status %s", t.Status)
	}
	now := time.Now().UTC()
	return s.DB.Model(&t).Updates(map[string]interface{}{
		"status":      models.MaintenanceStatusResolved,
		"resolved_at": now,
	}).Error
}

func (s *MaintenanceService) CancelTicket(tc models.TenantContext, id uint) error {
	t, err := s.ticket(tc, id)
	if err != nil {
		return err
	}
	if t.Status == models.MaintenanceStatusResolved {
		return utils.Invalid("status", "a resolved ticket cannot be cancelled")
	}
	return s.DB.Model(&t).Update("status", models.MaintenanceStatusCancelled).Error
}

// OpenBlockingTicketsForRoom is the query surface consumed by the
// availability check.
func (s *MaintenanceService) OpenBlockingTicketsForRoom(tc models.TenantContext, roomID uint) ([]models.MaintenanceTicket, error) {
	return s.openBlockingTicketsForRoomTx(s.DB, tc, roomID)
}

func (s *MaintenanceService) openBlockingTicketsForRoomTx(tx *gorm.DB, tc models.TenantContext, roomID uint) ([]models.MaintenanceTicket, error) {
	var tickets []models.MaintenanceTicket
	err := tx.Scopes(models.ScopeTenant(tc)).
		Where("room_id = ?", roomID).
		Where("blocks_sale = ?", true).
		Where("status IN ?", []string{models.MaintenanceStatusOpen, models.MaintenanceStatusInProgress}).
		Find(&tickets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query blocking tickets: %w", err)
	}
	return tickets, nil
}
