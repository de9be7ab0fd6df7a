package services

import (
	"testing"

	"gorm.io/gorm"

	"pms-backend/models"
	"pms-backend/utils"
)

func TestRoomOccupancyLifecycle(t *testing.T) {
	env := newTestEnv(t)

	if err := env.DB.Transaction(func(tx *gorm.DB) error {
		return env.Rooms.markOccupiedTx(tx, env.TC, env.Room.ID, 42)
	}); err != nil {
		t.Fatalf("occupy available room: %v", err)
	}

	room := env.reloadRoom(t, env.Room.ID)
	if room.Status != models.RoomStatusOccupied {
		t.Fatalf("status = %s, want occupied", room.Status)
	}
	if room.CurrentReservationID == nil || *room.CurrentReservationID != 42 {
		t.Fatalf("current_reservation_id not stamped: %v", room.CurrentReservationID)
	}

	// Occupying an occupied room fails loudly.
	if err := env.DB.Transaction(func(tx *gorm.DB) error {
		return env.Rooms.markOccupiedTx(tx, env.TC, env.Room.ID, 43)
	}); err == nil {
		t.Fatal("double occupation must fail")
	}

	if err := env.DB.Transaction(func(tx *gorm.DB) error {
		return env.Rooms.markAvailableTx(tx, env.TC, env.Room.ID, models.HkStatusDirty)
	}); err != nil {
		t.Fatalf("release room: %v", err)
	}
	room = env.reloadRoom(t, env.Room.ID)
	if room.Status != models.RoomStatusAvailable || room.HkStatus != models.HkStatusDirty {
		t.Fatalf("after release: status=%s hk=%s", room.Status, room.HkStatus)
	}
	if room.CurrentReservationID != nil {
		t.Fatal("current_reservation_id must be cleared on release")
	}
}

func TestRoomOutOfOrderRoundTrip(t *testing.T) {
	env := newTestEnv(t)

	if err := env.Rooms.MarkOutOfOrder(env.TC, env.Room.ID); err != nil {
		t.Fatalf("mark out of order: %v", err)
	}
	if got := env.reloadRoom(t, env.Room.ID).Status; got != models.RoomStatusOutOfOrder {
		t.Fatalf("status = %s, want out_of_order", got)
	}

	// Already out of order: a second attempt is rejected, not a no-op.
	if err := env.Rooms.MarkOutOfOrder(env.TC, env.Room.ID); err == nil {
		t.Fatal("marking an out_of_order room again must fail")
	}

	if err := env.Rooms.ReturnToService(env.TC, env.Room.ID); err != nil {
		t.Fatalf("return to service: %v", err)
	}
	if got := env.reloadRoom(t, env.Room.ID).Status; got != models.RoomStatusAvailable {
		t.Fatalf("status = %s, want available", got)
	}
}

func TestOccupiedRoomCannotGoOutOfOrder(t *testing.T) {
	env := newTestEnv(t)

	if err := env.DB.Transaction(func(tx *gorm.DB) error {
		return env.Rooms.markOccupiedTx(tx, env.TC, env.Room.ID, 1)
	}); err != nil {
		t.Fatalf("occupy: %v", err)
	}

	err := env.Rooms.MarkOutOfOrder(env.TC, env.Room.ID)
	if err == nil {
		t.Fatal("occupied room must not go out of order")
	}
	if _, ok := utils.AsValidation(err); !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestHousekeepingTransitionsAreWhitelisted(t *testing.T) {
	env := newTestEnv(t)

	steps := []string{
		models.HkStatusDirty,
		models.HkStatusAwaitingInspection,
		models.HkStatusRedo,
		models.HkStatusAwaitingInspection,
		models.HkStatusInspected,
		models.HkStatusClean,
	}
	for _, next := range steps {
		if err := env.Rooms.SetHousekeepingStatus(env.TC, env.Room.ID, next); err != nil {
			t.Fatalf("transition to %s: %v", next, err)
		}
	}

	// clean -> inspected skips the cycle and must be rejected.
	err := env.Rooms.SetHousekeepingStatus(env.TC, env.Room.ID, models.HkStatusInspected)
	if err == nil {
		t.Fatal("clean -> inspected must be rejected")
	}
	if got := env.reloadRoom(t, env.Room.ID).HkStatus; got != models.HkStatusClean {
		t.Fatalf("hk_status mutated on rejected transition: %s", got)
	}
}
