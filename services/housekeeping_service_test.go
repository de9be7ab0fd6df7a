package services

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"pms-backend/models"
)

func TestCheckoutPriorityEscalation(t *testing.T) {
	env := newTestEnv(t)

	at := day(12).Add(10 * time.Hour) // 10:00 on checkout day

	priority := func() string {
		var p string
		err := env.DB.Transaction(func(tx *gorm.DB) error {
			var err error
			p, err = env.Housekeeping.checkoutPriorityTx(tx, env.TC, env.Room.ID, at)
			return err
		})
		if err != nil {
			t.Fatalf("priority: %v", err)
		}
		return p
	}

	// No re-arrival: normal.
	if got := priority(); got != models.HkTaskPriorityNormal {
		t.Fatalf("priority = %s, want normal", got)
	}

	// Next guest arrives at 20:00 the same day: high.
	next := env.seedReservation(t, &env.Room.ID, models.ReservationStatusConfirmed,
		day(12).Add(20*time.Hour), day(14))
	if got := priority(); got != models.HkTaskPriorityHigh {
		t.Fatalf("priority = %s, want high", got)
	}

	// Move the arrival to 13:00, within four hours: urgent.
	if err := env.DB.Model(&models.Reservation{}).Where("id = ?", next.ID).
		Update("check_in", day(12).Add(13*time.Hour)).Error; err != nil {
		t.Fatalf("move arrival: %v", err)
	}
	if got := priority(); got != models.HkTaskPriorityUrgent {
		t.Fatalf("priority = %s, want urgent", got)
	}
}

func TestCompleteTaskMovesRoomToAwaitingInspection(t *testing.T) {
	env := newTestEnv(t)

	// Room must be dirty for the cleaning cycle to apply.
	if err := env.Rooms.SetHousekeepingStatus(env.TC, env.Room.ID, models.HkStatusDirty); err != nil {
		t.Fatalf("dirty room: %v", err)
	}

	task, err := env.Housekeeping.CreateCleaningTask(env.TC, env.Room.ID, "", "manual")
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.Priority != models.HkTaskPriorityNormal {
		t.Fatalf("default priority = %s, want normal", task.Priority)
	}

	assignee := uint(3)
	if err := env.Housekeeping.StartTask(env.TC, task.ID, &assignee); err != nil {
		t.Fatalf("start task: %v", err)
	}
	// A started task cannot be started again.
	if err := env.Housekeeping.StartTask(env.TC, task.ID, &assignee); err == nil {
		t.Fatal("double start must fail")
	}

	if err := env.Housekeeping.CompleteTask(env.TC, task.ID); err != nil {
		t.Fatalf("complete task: %v", err)
	}
	if got := env.reloadRoom(t, env.Room.ID).HkStatus; got != models.HkStatusAwaitingInspection {
		t.Fatalf("hk_status = %s, want awaiting_inspection", got)
	}

	// Completing again is a no-op.
	if err := env.Housekeeping.CompleteTask(env.TC, task.ID); err != nil {
		t.Fatalf("second complete must be a no-op: %v", err)
	}
}

func TestPendingTasksOrderedByPriority(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.Housekeeping.CreateCleaningTask(env.TC, env.Room.ID, models.HkTaskPriorityNormal, "checkout"); err != nil {
		t.Fatalf("create normal task: %v", err)
	}
	if _, err := env.Housekeeping.CreateCleaningTask(env.TC, env.Room2.ID, models.HkTaskPriorityUrgent, "checkout"); err != nil {
		t.Fatalf("create urgent task: %v", err)
	}

	tasks, err := env.Housekeeping.PendingTasks(env.TC)
	if err != nil {
		t.Fatalf("pending tasks: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if tasks[0].Priority != models.HkTaskPriorityUrgent {
		t.Fatalf("urgent task must come first, got %s", tasks[0].Priority)
	}
}
