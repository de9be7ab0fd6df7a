package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"pms-backend/models"
)

func (e *testEnv) bookConfirmed(t *testing.T, roomID uint, checkIn, checkOut time.Time, unitPrice int64) *models.Reservation {
	t.Helper()
	res, err := e.Reservations.Create(e.TC, CreateReservationInput{
		GuestID:    e.Guest.ID,
		RoomTypeID: e.RoomType.ID,
		RoomID:     &roomID,
		Status:     models.ReservationStatusConfirmed,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		UnitPrice:  dec(unitPrice),
	})
	if err != nil {
		t.Fatalf("create reservation: %v", err)
	}
	return res
}

func TestReservationCreateBuildsStayCharge(t *testing.T) {
	env := newTestEnv(t)

	res := env.bookConfirmed(t, env.Room.ID, day(10), day(12), 10000)

	assertDecimal(t, res.BaseAmount, 20000, "base amount")
	assertDecimal(t, res.TotalAmount, 20000, "total amount")

	folio := env.mainFolio(t, res.ID)
	items := env.folioItems(t, folio.ID)
	if len(items) != 1 {
		t.Fatalf("expected one stay item, got %d", len(items))
	}
	if !items[0].IsStayItem {
		t.Fatal("item must be flagged as the stay item")
	}
	assertDecimal(t, items[0].Quantity, 2, "stay quantity")
	assertDecimal(t, items[0].TotalAmount, 20000, "stay total")
	assertDecimal(t, folio.ChargesTotal, 20000, "folio charges")
	assertDecimal(t, folio.Balance, 20000, "folio balance")
}

func TestReservationCreateRejectsInvalidInitialStatus(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.Reservations.Create(env.TC, CreateReservationInput{
		GuestID:    env.Guest.ID,
		RoomTypeID: env.RoomType.ID,
		Status:     models.ReservationStatusInHouse,
		CheckIn:    day(10),
		CheckOut:   day(12),
		UnitPrice:  dec(10000),
	})
	if err == nil {
		t.Fatal("in_house must not be a creatable status")
	}
}

func TestReservationCreateRejectsDoubleBooking(t *testing.T) {
	env := newTestEnv(t)
	env.bookConfirmed(t, env.Room.ID, day(10), day(12), 10000)

	_, err := env.Reservations.Create(env.TC, CreateReservationInput{
		GuestID:    env.Guest.ID,
		RoomTypeID: env.RoomType.ID,
		RoomID:     &env.Room.ID,
		CheckIn:    day(11),
		CheckOut:   day(13),
		UnitPrice:  dec(10000),
	})
	if err == nil {
		t.Fatal("overlapping booking on the same room must fail")
	}
}

func TestReservationFullLifecycle(t *testing.T) {
	env := newTestEnv(t)

	res := env.bookConfirmed(t, env.Room.ID, day(10), day(12), 10000)

	if err := env.Reservations.CheckIn(env.TC, res.ID); err != nil {
		t.Fatalf("check in: %v", err)
	}
	room := env.reloadRoom(t, env.Room.ID)
	if room.Status != models.RoomStatusOccupied {
		t.Fatalf("room status = %s, want occupied", room.Status)
	}
	if room.CurrentReservationID == nil || *room.CurrentReservationID != res.ID {
		t.Fatal("room must reference the in-house reservation")
	}

	at := day(12).Add(10 * time.Hour)
	if err := env.Reservations.CheckOut(env.TC, res.ID, &at); err != nil {
		t.Fatalf("check out: %v", err)
	}

	got, err := env.Reservations.Get(env.TC, res.ID)
	if err != nil {
		t.Fatalf("reload reservation: %v", err)
	}
	if got.Status != models.ReservationStatusCheckedOut {
		t.Fatalf("status = %s, want checked_out", got.Status)
	}
	if got.ActualCheckOutAt == nil {
		t.Fatal("actual check-out timestamp missing")
	}

	room = env.reloadRoom(t, env.Room.ID)
	if room.Status != models.RoomStatusAvailable || room.HkStatus != models.HkStatusDirty {
		t.Fatalf("room after checkout: status=%s hk=%s", room.Status, room.HkStatus)
	}

	var task models.HousekeepingTask
	if err := env.DB.Where("room_id = ? AND source_tag = ?", env.Room.ID, "checkout").First(&task).Error; err != nil {
		t.Fatalf("checkout must open a cleaning task: %v", err)
	}
	if task.Priority != models.HkTaskPriorityNormal {
		t.Fatalf("no re-arrival pressure, priority = %s, want normal", task.Priority)
	}
}

func TestReservationCheckOutRequiresInHouse(t *testing.T) {
	env := newTestEnv(t)

	res, err := env.Reservations.Create(env.TC, CreateReservationInput{
		GuestID:    env.Guest.ID,
		RoomTypeID: env.RoomType.ID,
		RoomID:     &env.Room.ID,
		CheckIn:    day(10),
		CheckOut:   day(12),
		UnitPrice:  dec(10000),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// pending -> checked_out skips the whole lifecycle.
	if err := env.Reservations.CheckOut(env.TC, res.ID, nil); err == nil {
		t.Fatal("checkout from pending must fail")
	}

	// And an in-house reservation cannot be cancelled.
	if err := env.Reservations.Confirm(env.TC, res.ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if err := env.Reservations.CheckIn(env.TC, res.ID); err != nil {
		t.Fatalf("check in: %v", err)
	}
	if err := env.Reservations.Cancel(env.TC, res.ID, "changed mind"); err == nil {
		t.Fatal("cancel of an in-house reservation must fail")
	}
}

func TestReservationCheckInRequiresRoom(t *testing.T) {
	env := newTestEnv(t)

	res, err := env.Reservations.Create(env.TC, CreateReservationInput{
		GuestID:    env.Guest.ID,
		RoomTypeID: env.RoomType.ID,
		Status:     models.ReservationStatusConfirmed,
		CheckIn:    day(10),
		CheckOut:   day(12),
		UnitPrice:  dec(10000),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := env.Reservations.CheckIn(env.TC, res.ID); err == nil {
		t.Fatal("check-in without an assigned room must fail")
	}
}

func TestReservationChangeDatesAppendsAdjustment(t *testing.T) {
	env := newTestEnv(t)

	res := env.bookConfirmed(t, env.Room.ID, day(10), day(12), 10000)

	if err := env.Reservations.ChangeDates(env.TC, res.ID, day(10), day(13)); err != nil {
		t.Fatalf("change dates: %v", err)
	}

	got, err := env.Reservations.Get(env.TC, res.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	assertDecimal(t, got.BaseAmount, 30000, "new base amount")

	folio := env.mainFolio(t, res.ID)
	items := env.folioItems(t, folio.ID)
	if len(items) != 2 {
		t.Fatalf("expected stay item + adjustment, got %d items", len(items))
	}

	var adjustment *models.FolioItem
	for i := range items {
		if items[i].Type == models.FolioItemTypeStayAdjustment {
			adjustment = &items[i]
		}
	}
	if adjustment == nil {
		t.Fatal("no stay_adjustment line found")
	}
	assertDecimal(t, adjustment.TotalAmount, 10000, "adjustment delta")
	assertDecimal(t, folio.ChargesTotal, 30000, "folio charges after extension")
}

func TestReservationChangeDatesShrinkProducesNegativeAdjustment(t *testing.T) {
	env := newTestEnv(t)

	res := env.bookConfirmed(t, env.Room.ID, day(10), day(13), 10000)

	if err := env.Reservations.ChangeDates(env.TC, res.ID, day(10), day(12)); err != nil {
		t.Fatalf("change dates: %v", err)
	}

	folio := env.mainFolio(t, res.ID)
	assertDecimal(t, folio.ChargesTotal, 20000, "folio charges after shrink")
}

func TestReservationChangeRoomBeforeArrivalResyncs(t *testing.T) {
	env := newTestEnv(t)

	res := env.bookConfirmed(t, env.Room.ID, day(10), day(12), 10000)

	newPrice := dec(15000)
	if err := env.Reservations.ChangeRoom(env.TC, res.ID, env.Room2.ID, &newPrice, nil); err != nil {
		t.Fatalf("change room: %v", err)
	}

	got, err := env.Reservations.Get(env.TC, res.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.RoomID == nil || *got.RoomID != env.Room2.ID {
		t.Fatal("room not reassigned")
	}
	assertDecimal(t, got.BaseAmount, 30000, "base at new rate")

	// Pre-arrival move keeps a single stay item, re-priced in place.
	folio := env.mainFolio(t, res.ID)
	items := env.folioItems(t, folio.ID)
	if len(items) != 1 {
		t.Fatalf("expected single stay item, got %d", len(items))
	}
	assertDecimal(t, items[0].TotalAmount, 30000, "stay total at new rate")
}

func TestReservationInHouseRoomChangeResegmentsFolio(t *testing.T) {
	env := newTestEnv(t)

	res := env.bookConfirmed(t, env.Room.ID, day(10), day(20), 10000)
	if err := env.Reservations.CheckIn(env.TC, res.ID); err != nil {
		t.Fatalf("check in: %v", err)
	}

	pivot := day(14)
	if err := env.Reservations.ChangeRoom(env.TC, res.ID, env.Room2.ID, nil, &pivot); err != nil {
		t.Fatalf("change room: %v", err)
	}

	folio := env.mainFolio(t, res.ID)
	items := env.folioItems(t, folio.ID)
	if len(items) != 2 {
		t.Fatalf("expected two segments, got %d items", len(items))
	}

	var closed, ongoing *models.FolioItem
	for i := range items {
		if items[i].IsStayItem {
			ongoing = &items[i]
		} else {
			closed = &items[i]
		}
	}
	if closed == nil || ongoing == nil {
		t.Fatalf("expected one closed and one ongoing segment")
	}
	assertDecimal(t, closed.Quantity, 4, "old-room nights")
	assertDecimal(t, closed.TotalAmount, 40000, "old-room segment total")
	assertDecimal(t, ongoing.Quantity, 6, "new-room nights")
	assertDecimal(t, ongoing.TotalAmount, 60000, "new-room segment total")
	assertDecimal(t, folio.ChargesTotal, 100000, "folio charges after resegmentation")

	// Rooms swapped occupancy.
	oldRoom := env.reloadRoom(t, env.Room.ID)
	newRoom := env.reloadRoom(t, env.Room2.ID)
	if oldRoom.Status != models.RoomStatusAvailable || oldRoom.HkStatus != models.HkStatusDirty {
		t.Fatalf("old room: status=%s hk=%s", oldRoom.Status, oldRoom.HkStatus)
	}
	if newRoom.Status != models.RoomStatusOccupied {
		t.Fatalf("new room status = %s, want occupied", newRoom.Status)
	}

	var task models.HousekeepingTask
	if err := env.DB.Where("room_id = ? AND source_tag = ?", env.Room.ID, "room_change").First(&task).Error; err != nil {
		t.Fatalf("room change must open a cleaning task for the old room: %v", err)
	}
}

func TestReservationSecondRoomChangeBillsFromPreviousPivot(t *testing.T) {
	env := newTestEnv(t)

	room3 := models.Room{
		TenantID: env.TC.TenantID, HotelID: env.TC.HotelID, RoomTypeID: env.RoomType.ID,
		Number: "103", Status: models.RoomStatusAvailable, HkStatus: models.HkStatusClean,
	}
	env.create(t, &room3)

	res := env.bookConfirmed(t, env.Room.ID, day(10), day(20), 10000)
	if err := env.Reservations.CheckIn(env.TC, res.ID); err != nil {
		t.Fatalf("check in: %v", err)
	}

	pivot1 := day(14)
	if err := env.Reservations.ChangeRoom(env.TC, res.ID, env.Room2.ID, nil, &pivot1); err != nil {
		t.Fatalf("first room change: %v", err)
	}
	pivot2 := day(17)
	if err := env.Reservations.ChangeRoom(env.TC, res.ID, room3.ID, nil, &pivot2); err != nil {
		t.Fatalf("second room change: %v", err)
	}

	// The second move closes the middle segment from the first pivot,
	// not from the original check-in: 4 + 3 + 3 nights, never 4 + 7 + 3.
	folio := env.mainFolio(t, res.ID)
	items := env.folioItems(t, folio.ID)
	if len(items) != 3 {
		t.Fatalf("expected three segments, got %d items", len(items))
	}
	assertDecimal(t, items[0].Quantity, 4, "first segment nights")
	assertDecimal(t, items[0].TotalAmount, 40000, "first segment total")
	assertDecimal(t, items[1].Quantity, 3, "middle segment nights")
	assertDecimal(t, items[1].TotalAmount, 30000, "middle segment total")
	assertDecimal(t, items[2].Quantity, 3, "last segment nights")
	assertDecimal(t, items[2].TotalAmount, 30000, "last segment total")
	assertDecimal(t, folio.ChargesTotal, 100000, "charges after two room changes")

	stayItems := 0
	for _, it := range items {
		if it.IsStayItem {
			stayItems++
		}
	}
	if stayItems != 1 {
		t.Fatalf("expected a single active stay item, got %d", stayItems)
	}

	got, err := env.Reservations.Get(env.TC, res.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	assertDecimal(t, got.BaseAmount, 100000, "reservation base after two room changes")
}

func TestReservationInHouseRoomChangeFrozenByInvoice(t *testing.T) {
	env := newTestEnv(t)

	res := env.bookConfirmed(t, env.Room.ID, day(10), day(20), 10000)
	if err := env.Reservations.CheckIn(env.TC, res.ID); err != nil {
		t.Fatalf("check in: %v", err)
	}

	folio := env.mainFolio(t, res.ID)
	if _, err := env.Folios.GenerateInvoice(env.TC, folio.ID, nil); err != nil {
		t.Fatalf("generate invoice: %v", err)
	}

	pivot := day(14)
	if err := env.Reservations.ChangeRoom(env.TC, res.ID, env.Room2.ID, nil, &pivot); err != nil {
		t.Fatalf("change room: %v", err)
	}

	// The invoiced stay item stays frozen: no segments, no amount drift.
	items := env.folioItems(t, folio.ID)
	if len(items) != 1 {
		t.Fatalf("invoiced folio must keep its single stay item, got %d", len(items))
	}
	assertDecimal(t, items[0].TotalAmount, 100000, "frozen stay total")

	// The operational move itself still happened.
	if got := env.reloadRoom(t, env.Room2.ID).Status; got != models.RoomStatusOccupied {
		t.Fatalf("new room status = %s, want occupied", got)
	}
}

func TestReservationShortStayAndWeekendQuantities(t *testing.T) {
	env := newTestEnv(t)

	shortStay := models.Offer{TenantID: env.TC.TenantID, HotelID: env.TC.HotelID, Name: "Sieste", Kind: models.OfferKindShortStay}
	env.create(t, &shortStay)
	weekend := models.Offer{TenantID: env.TC.TenantID, HotelID: env.TC.HotelID, Name: "Week-end", Kind: models.OfferKindWeekend}
	env.create(t, &weekend)

	res, err := env.Reservations.Create(env.TC, CreateReservationInput{
		GuestID:    env.Guest.ID,
		RoomTypeID: env.RoomType.ID,
		RoomID:     &env.Room.ID,
		OfferID:    &shortStay.ID,
		CheckIn:    day(10),
		CheckOut:   day(10).Add(6 * time.Hour),
		UnitPrice:  dec(8000),
	})
	if err != nil {
		t.Fatalf("create short stay: %v", err)
	}
	assertDecimal(t, res.BaseAmount, 8000, "short stay billed once")

	res2, err := env.Reservations.Create(env.TC, CreateReservationInput{
		GuestID:    env.Guest.ID,
		RoomTypeID: env.RoomType.ID,
		RoomID:     &env.Room2.ID,
		OfferID:    &weekend.ID,
		CheckIn:    day(12),
		CheckOut:   day(13),
		UnitPrice:  dec(12000),
	})
	if err != nil {
		t.Fatalf("create weekend stay: %v", err)
	}
	// One actual night, billed as the two-night weekend minimum.
	if !res2.BaseAmount.Equal(decimal.NewFromInt(24000)) {
		t.Fatalf("weekend base = %s, want 24000", res2.BaseAmount)
	}
}
