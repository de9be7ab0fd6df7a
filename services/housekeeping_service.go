package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"pms-backend/models"
	"pms-backend/utils"
)

type HousekeepingService struct {
	DB    *gorm.DB
	Rooms *RoomStateService
}

func NewHousekeepingService(db *gorm.DB, rooms *RoomStateService) *HousekeepingService {
	return &HousekeepingService{DB: db, Rooms: rooms}
}

// CreateCleaningTask opens a cleaning task for a room.
func (s *HousekeepingService) CreateCleaningTask(tc models.TenantContext, roomID uint, priority, sourceTag string) (*models.HousekeepingTask, error) {
	var task *models.HousekeepingTask
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		t, err := s.createCleaningTaskTx(tx, tc, roomID, priority, sourceTag)
		if err != nil {
			return err
		}
		task = t
		return nil
	})
	return task, err
}

func (s *HousekeepingService) createCleaningTaskTx(tx *gorm.DB, tc models.TenantContext, roomID uint, priority, sourceTag string) (*models.HousekeepingTask, error) {
	if priority == "" {
		priority = models.HkTaskPriorityNormal
	}
	task := models.HousekeepingTask{
		TenantID:  tc.TenantID,
		HotelID:   tc.HotelID,
		RoomID:    roomID,
		Kind:      models.HkTaskKindCleaning,
		Priority:  priority,
		Status:    models.HkTaskStatusPending,
		SourceTag: sourceTag,
	}
	if err := tx.Create(&task).Error; err != nil {
		return nil, fmt.Errorf("failed to create cleaning task: %w", err)
	}
	return &task, nil
}

// checkoutPriorityTx escalates the cleaning priority when the room has a
// same-day re-arrival: urgent if the next guest is due within four
// hours, high if due later today, normal otherwise.
func (s *HousekeepingService) checkoutPriorityTx(tx *gorm.DB, tc models.TenantContext, roomID uint, at time.Time) (string, error) {
	dayStart := utils.DateOnly(at)
	dayEnd := dayStart.Add(24 * time.Hour)

	var next models.Reservation
	err := tx.Scopes(models.ScopeTenant(tc)).
		Where("room_id = ?", roomID).
		Where("status IN ?", []string{models.ReservationStatusPending, models.ReservationStatusConfirmed}).
		Where("check_in >= ? AND check_in < ?", dayStart, dayEnd).
		Order("check_in ASC").
		First(&next).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.HkTaskPriorityNormal, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to check re-arrival pressure: %w", err)
	}

	if next.CheckIn.Sub(at) <= 4*time.Hour {
		return models.HkTaskPriorityUrgent, nil
	}
	return models.HkTaskPriorityHigh, nil
}

func (s *HousekeepingService) task(tc models.TenantContext, id uint) (models.HousekeepingTask, error) {
	var t models.HousekeepingTask
	err := s.DB.Scopes(models.ScopeTenant(tc)).First(&t, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return t, errors.New("housekeeping_task_not_found")
	}
	if err != nil {
		return t, fmt.Errorf("failed to load task: %w", err)
	}
	return t, nil
}

func (s *HousekeepingService) StartTask(tc models.TenantContext, id uint, assignee *uint) error {
	t, err := s.task(tc, id)
	if err != nil {
		return err
	}
	if t.Status != models.HkTaskStatusPending {
		return utils.Invalid("status", "task cannot start from status %s", t.Status)
	}
	return s.DB.Model(&t).Updates(map[string]interface{}{
		"status":         models.HkTaskStatusInProgress,
		"assigned_to_id": assignee,
	}).Error
}

// CompleteTask finishes a cleaning task and moves the room to
// awaiting_inspection through the housekeeping whitelist.
func (s *HousekeepingService) CompleteTask(tc models.TenantContext, id uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		t, err := s.task(tc, id)
		if err != nil {
			return err
		}
		if t.Status == models.HkTaskStatusDone {
			return nil
		}
		now := time.Now().UTC()
		if err := tx.Model(&models.HousekeepingTask{}).Where("id = ?", t.ID).
			Updates(map[string]interface{}{
				"status":  models.HkTaskStatusDone,
				"done_at": now,
			}).Error; err != nil {
			return err
		}
		if t.Kind == models.HkTaskKindCleaning {
			return s.Rooms.setHousekeepingStatusTx(tx, tc, t.RoomID, models.HkStatusAwaitingInspection)
		}
		return nil
	})
}

// PendingTasks lists open housekeeping work for the hotel.
func (s *HousekeepingService) PendingTasks(tc models.TenantContext) ([]models.HousekeepingTask, error) {
	var tasks []models.HousekeepingTask
	err := s.DB.Scopes(models.ScopeTenant(tc)).
		Where("status IN ?", []string{models.HkTaskStatusPending, models.HkTaskStatusInProgress}).
		Order("CASE priority WHEN 'urgent' THEN 0 WHEN 'high' THEN 1 ELSE 2 END, created_at ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}
