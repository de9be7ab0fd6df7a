package services

import (
	"testing"
	"time"

	"pms-backend/models"
	"pms-backend/utils"
)

func day(d int) time.Time {
	return time.Date(2026, 9, d, 0, 0, 0, 0, time.UTC)
}

func (e *testEnv) seedReservation(t *testing.T, roomID *uint, status string, checkIn, checkOut time.Time) models.Reservation {
	t.Helper()
	res := models.Reservation{
		TenantID:   e.TC.TenantID,
		HotelID:    e.TC.HotelID,
		Code:       utils.NewReservationCode(time.Now()),
		GuestID:    e.Guest.ID,
		RoomTypeID: e.RoomType.ID,
		RoomID:     roomID,
		Status:     status,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Currency:   "XOF",
	}
	e.create(t, &res)
	return res
}

func TestAvailabilityRejectsOverlappingRoomReservation(t *testing.T) {
	env := newTestEnv(t)
	env.seedReservation(t, &env.Room.ID, models.ReservationStatusConfirmed, day(10), day(12))

	cand := StayCandidate{RoomTypeID: env.RoomType.ID, RoomID: &env.Room.ID, CheckIn: day(11), CheckOut: day(13)}
	err := env.Availability.EnsureAvailable(env.TC, cand, nil)
	if err == nil {
		t.Fatal("expected conflict for overlapping window")
	}
	ve, ok := utils.AsValidation(err)
	if !ok || ve.Field != "room_id" {
		t.Fatalf("expected room_id validation error, got %v", err)
	}
}

func TestAvailabilityAllowsBackToBackStays(t *testing.T) {
	env := newTestEnv(t)
	env.seedReservation(t, &env.Room.ID, models.ReservationStatusConfirmed, day(10), day(12))

	// [10,12) then [12,14): checkout day equals checkin day, no conflict.
	cand := StayCandidate{RoomTypeID: env.RoomType.ID, RoomID: &env.Room.ID, CheckIn: day(12), CheckOut: day(14)}
	if err := env.Availability.EnsureAvailable(env.TC, cand, nil); err != nil {
		t.Fatalf("back-to-back stay should be allowed: %v", err)
	}
}

func TestAvailabilityIgnoresCancelledAndCheckedOut(t *testing.T) {
	env := newTestEnv(t)
	env.seedReservation(t, &env.Room.ID, models.ReservationStatusCancelled, day(10), day(12))
	env.seedReservation(t, &env.Room.ID, models.ReservationStatusCheckedOut, day(10), day(12))

	cand := StayCandidate{RoomTypeID: env.RoomType.ID, RoomID: &env.Room.ID, CheckIn: day(10), CheckOut: day(12)}
	if err := env.Availability.EnsureAvailable(env.TC, cand, nil); err != nil {
		t.Fatalf("cancelled/checked-out stays must not block: %v", err)
	}
}

func TestAvailabilityExcludesTheReservationItself(t *testing.T) {
	env := newTestEnv(t)
	res := env.seedReservation(t, &env.Room.ID, models.ReservationStatusConfirmed, day(10), day(12))

	// Extending the same reservation only collides with itself.
	cand := StayCandidate{RoomTypeID: env.RoomType.ID, RoomID: &env.Room.ID, CheckIn: day(10), CheckOut: day(14)}
	if err := env.Availability.EnsureAvailable(env.TC, cand, &res.ID); err != nil {
		t.Fatalf("self-overlap must be excluded: %v", err)
	}
}

func TestAvailabilityTypeCapacity(t *testing.T) {
	env := newTestEnv(t)

	// Two rooms of the type; two overlapping type-level holds fill it.
	env.seedReservation(t, nil, models.ReservationStatusConfirmed, day(10), day(12))
	env.seedReservation(t, nil, models.ReservationStatusPending, day(11), day(13))

	cand := StayCandidate{RoomTypeID: env.RoomType.ID, CheckIn: day(11), CheckOut: day(12)}
	err := env.Availability.EnsureAvailable(env.TC, cand, nil)
	if err == nil {
		t.Fatal("expected capacity exhaustion")
	}
	ve, ok := utils.AsValidation(err)
	if !ok || ve.Field != "room_type_id" {
		t.Fatalf("expected room_type_id validation error, got %v", err)
	}

	// A disjoint window still fits.
	cand = StayCandidate{RoomTypeID: env.RoomType.ID, CheckIn: day(13), CheckOut: day(15)}
	if err := env.Availability.EnsureAvailable(env.TC, cand, nil); err != nil {
		t.Fatalf("disjoint window should fit: %v", err)
	}
}

func TestAvailabilityCapacityExcludesInactiveRooms(t *testing.T) {
	env := newTestEnv(t)

	// Pull one of the two rooms out of the sellable pool entirely.
	if err := env.DB.Model(&models.Room{}).Where("id = ?", env.Room2.ID).
		Update("status", models.RoomStatusInactive).Error; err != nil {
		t.Fatalf("deactivate room: %v", err)
	}
	env.seedReservation(t, nil, models.ReservationStatusConfirmed, day(10), day(12))

	cand := StayCandidate{RoomTypeID: env.RoomType.ID, CheckIn: day(10), CheckOut: day(12)}
	if err := env.Availability.EnsureAvailable(env.TC, cand, nil); err == nil {
		t.Fatal("inactive room must not count toward capacity")
	}
}

func TestAvailabilityBlockedByMaintenance(t *testing.T) {
	env := newTestEnv(t)

	ticket, err := env.Maintenance.OpenTicket(env.TC, OpenTicketInput{
		RoomID: env.Room.ID, Title: "Climatisation en panne", BlocksSale: true,
	})
	if err != nil {
		t.Fatalf("open ticket: %v", err)
	}

	cand := StayCandidate{RoomTypeID: env.RoomType.ID, RoomID: &env.Room.ID, CheckIn: day(10), CheckOut: day(12)}
	if err := env.Availability.EnsureAvailable(env.TC, cand, nil); err == nil {
		t.Fatal("blocking ticket must hold the room")
	}

	if err := env.Maintenance.ResolveTicket(env.TC, ticket.ID); err != nil {
		t.Fatalf("resolve ticket: %v", err)
	}
	if err := env.Availability.EnsureAvailable(env.TC, cand, nil); err != nil {
		t.Fatalf("resolved ticket must release the room: %v", err)
	}
}

func TestAvailabilityNonBlockingTicketDoesNotHoldRoom(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.Maintenance.OpenTicket(env.TC, OpenTicketInput{
		RoomID: env.Room.ID, Title: "Ampoule grillée", BlocksSale: false,
	}); err != nil {
		t.Fatalf("open ticket: %v", err)
	}

	cand := StayCandidate{RoomTypeID: env.RoomType.ID, RoomID: &env.Room.ID, CheckIn: day(10), CheckOut: day(12)}
	if err := env.Availability.EnsureAvailable(env.TC, cand, nil); err != nil {
		t.Fatalf("non-blocking ticket must not hold the room: %v", err)
	}
}
