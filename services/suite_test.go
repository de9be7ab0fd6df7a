package services

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pms-backend/models"
)

// testEnv wires the full service graph over an in-memory sqlite
// database with one tenant, one hotel, two rooms of the same type and
// the usual payment methods.
type testEnv struct {
	DB *gorm.DB
	TC models.TenantContext

	Hotel      models.Hotel
	Guest      models.Guest
	RoomType   models.RoomType
	Room       models.Room
	Room2      models.Room
	NightOffer models.Offer
	CashMethod models.PaymentMethod
	CardMethod models.PaymentMethod

	Rooms        *RoomStateService
	Maintenance  *MaintenanceService
	Availability *AvailabilityService
	Folios       *FolioService
	Housekeeping *HousekeepingService
	Loyalty      *LoyaltyService
	NightAudit   *NightAuditService
	Sessions     *CashSessionService
	Payments     *PaymentService
	Reservations *ReservationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	// A plain ":memory:" DSN gives every pooled connection its own
	// empty database; a per-test file keeps one database across the pool.
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "pms.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Tenant{},
		&models.Hotel{},
		&models.Admin{},
		&models.Guest{},
		&models.RoomType{},
		&models.Offer{},
		&models.Room{},
		&models.Reservation{},
		&models.Folio{},
		&models.FolioItem{},
		&models.PaymentMethod{},
		&models.CashSession{},
		&models.Payment{},
		&models.Invoice{},
		&models.InvoiceItem{},
		&models.MaintenanceTicket{},
		&models.HousekeepingTask{},
		&models.BusinessDay{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	env := &testEnv{DB: db}

	tenant := models.Tenant{Name: "Test Tenant", Domain: "test.local"}
	env.create(t, &tenant)
	env.Hotel = models.Hotel{TenantID: tenant.ID, Name: "Test Hotel", Currency: "XOF"}
	env.create(t, &env.Hotel)
	env.TC = models.TenantContext{TenantID: tenant.ID, HotelID: env.Hotel.ID}

	env.Guest = models.Guest{TenantID: tenant.ID, HotelID: env.Hotel.ID, FullName: "Awa Diop"}
	env.create(t, &env.Guest)

	env.RoomType = models.RoomType{TenantID: tenant.ID, HotelID: env.Hotel.ID, Name: "Standard", MaxOccupancy: 2}
	env.create(t, &env.RoomType)

	env.Room = models.Room{
		TenantID: tenant.ID, HotelID: env.Hotel.ID, RoomTypeID: env.RoomType.ID,
		Number: "101", Status: models.RoomStatusAvailable, HkStatus: models.HkStatusClean,
	}
	env.create(t, &env.Room)
	env.Room2 = models.Room{
		TenantID: tenant.ID, HotelID: env.Hotel.ID, RoomTypeID: env.RoomType.ID,
		Number: "102", Status: models.RoomStatusAvailable, HkStatus: models.HkStatusClean,
	}
	env.create(t, &env.Room2)

	env.NightOffer = models.Offer{TenantID: tenant.ID, HotelID: env.Hotel.ID, Name: "Nuitée", Kind: models.OfferKindNight}
	env.create(t, &env.NightOffer)

	env.CashMethod = models.PaymentMethod{
		TenantID: tenant.ID, HotelID: env.Hotel.ID,
		Name: "Espèces", Type: models.PaymentMethodTypeCash, SessionType: models.CashSessionTypeFrontdesk,
	}
	env.create(t, &env.CashMethod)
	env.CardMethod = models.PaymentMethod{
		TenantID: tenant.ID, HotelID: env.Hotel.ID,
		Name: "Carte bancaire", Type: models.PaymentMethodTypeCard,
	}
	env.create(t, &env.CardMethod)

	env.Rooms = NewRoomStateService(db)
	env.Maintenance = NewMaintenanceService(db)
	env.Availability = NewAvailabilityService(db, env.Maintenance)
	env.Folios = NewFolioService(db)
	env.Housekeeping = NewHousekeepingService(db, env.Rooms)
	env.Loyalty = NewLoyaltyService(db)
	env.NightAudit = NewNightAuditService(db, nil)
	env.Sessions = NewCashSessionService(db)
	env.Payments = NewPaymentService(db, env.Folios, env.Sessions, env.NightAudit)
	env.Reservations = NewReservationService(
		db, env.Rooms, env.Availability, env.Folios, env.Housekeeping, env.Loyalty,
		NewNotifier(nil, "", nil),
	)
	return env
}

func (e *testEnv) create(t *testing.T, value interface{}) {
	t.Helper()
	if err := e.DB.Create(value).Error; err != nil {
		t.Fatalf("seed %T: %v", value, err)
	}
}

func (e *testEnv) mainFolio(t *testing.T, reservationID uint) models.Folio {
	t.Helper()
	var folio models.Folio
	if err := e.DB.Where("reservation_id = ? AND is_main = ?", reservationID, true).First(&folio).Error; err != nil {
		t.Fatalf("load main folio: %v", err)
	}
	return folio
}

func (e *testEnv) folioItems(t *testing.T, folioID uint) []models.FolioItem {
	t.Helper()
	var items []models.FolioItem
	if err := e.DB.Where("folio_id = ?", folioID).Order("id ASC").Find(&items).Error; err != nil {
		t.Fatalf("load folio items: %v", err)
	}
	return items
}

func (e *testEnv) reloadRoom(t *testing.T, id uint) models.Room {
	t.Helper()
	var room models.Room
	if err := e.DB.First(&room, id).Error; err != nil {
		t.Fatalf("load room: %v", err)
	}
	return room
}

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func assertDecimal(t *testing.T, got decimal.Decimal, want int64, label string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Fatalf("%s = %s, want %d", label, got, want)
	}
}
