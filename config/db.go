package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pms-backend/models"
)

var DB *gorm.DB

func envOrDefault(key, def string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	return value
}

func mysqlDSNFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	user := u.User.Username()
	pass, _ := u.User.Password()
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "3306"
	}

	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return "", fmt.Errorf("mysql url missing database name")
	}

	q := u.Query()
	if q.Get("charset") == "" {
		q.Set("charset", "utf8mb4")
	}
	if q.Get("parseTime") == "" {
		q.Set("parseTime", "True")
	}
	if q.Get("loc") == "" {
		q.Set("loc", "Local")
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", user, pass, host, port, dbName, q.Encode()), nil
}

func resolveMySQLDSN() (string, error) {
	raw := strings.TrimSpace(os.Getenv("MYSQL_URL"))
	if raw == "" {
		raw = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}
	if raw != "" {
		if strings.HasPrefix(raw, "mysql://") {
			return mysqlDSNFromURL(raw)
		}
		return raw, nil
	}

	user := envOrDefault("DB_USER", "root")
	pass := envOrDefault("DB_PASS", "")
	host := envOrDefault("DB_HOST", "127.0.0.1")
	port := envOrDefault("DB_PORT", "3306")
	dbName := envOrDefault("DB_NAME", "pms_db")

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, pass, host, port, dbName), nil
}

func ConnectDatabase() error {
	dsn, err := resolveMySQLDSN()
	if err != nil {
		return err
	}

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Warn,
			Colorful:      true,
		},
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return err
	}
	DB = db

	// AutoMigrate in parent->child order.
	if err := DB.AutoMigrate(
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
		return err
	}

	SeedDatabase()
	return nil
}

// SeedDatabase creates the minimum rows a fresh install needs: a
// tenant + hotel, a default admin, room types, offers and payment
// methods. Safe to run repeatedly.
func SeedDatabase() {
	var tenantCount int64
	DB.Model(&models.Tenant{}).Count(&tenantCount)
	if tenantCount == 0 {
		tenant := models.Tenant{Name: "Default Tenant", Domain: envOrDefault("DEFAULT_TENANT_DOMAIN", "pms.local")}
		if err := DB.Create(&tenant).Error; err != nil {
			log.Printf("warning: failed to seed tenant: %v", err)
			return
		}
		hotel := models.Hotel{
			TenantID: tenant.ID,
			Name:     envOrDefault("DEFAULT_HOTEL_NAME", "Main Hotel"),
			Currency: envOrDefault("DEFAULT_CURRENCY", "XOF"),
		}
		if err := DB.Create(&hotel).Error; err != nil {
			log.Printf("warning: failed to seed hotel: %v", err)
		}
		log.Println("Tenant and hotel seeded")
	}

	var adminCount int64
	DB.Model(&models.Admin{}).Count(&adminCount)
	if adminCount == 0 {
		hash, err := bcrypt.GenerateFromPassword([]byte(envOrDefault("DEFAULT_ADMIN_PASSWORD", "admin123")), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("warning: failed to hash default admin password: %v", err)
		} else {
			var tenant models.Tenant
			DB.First(&tenant)
			admin := models.Admin{
				TenantID: tenant.ID,
				FullName: "Admin User",
				Username: "admin@pms.local",
				Password: string(hash),
			}
			if err := DB.Create(&admin).Error; err != nil {
				log.Printf("warning: failed to create default admin: %v", err)
			} else {
				log.Println("Default admin seeded")
			}
		}
	}

	var hotel models.Hotel
	if err := DB.First(&hotel).Error; err != nil {
		return
	}

	var rtCount int64
	DB.Model(&models.RoomType{}).Count(&rtCount)
	if rtCount == 0 {
		roomTypes := []models.RoomType{
			{TenantID: hotel.TenantID, HotelID: hotel.ID, Name: "Standard", Description: "Standard Room", MaxOccupancy: 2},
			{TenantID: hotel.TenantID, HotelID: hotel.ID, Name: "Superior", Description: "Superior Room", MaxOccupancy: 3},
			{TenantID: hotel.TenantID, HotelID: hotel.ID, Name: "Deluxe", Description: "Deluxe Room", MaxOccupancy: 4},
		}
		DB.Create(&roomTypes)
		log.Println("Room types seeded")
	}

	var offerCount int64
	DB.Model(&models.Offer{}).Count(&offerCount)
	if offerCount == 0 {
		offers := []models.Offer{
			{TenantID: hotel.TenantID, HotelID: hotel.ID, Name: "Nuitée", Kind: models.OfferKindNight, CheckInTime: "14:00", CheckOutTime: "12:00"},
			{TenantID: hotel.TenantID, HotelID: hotel.ID, Name: "Sieste", Kind: models.OfferKindShortStay, CheckInTime: "10:00", CheckOutTime: "18:00"},
			{TenantID: hotel.TenantID, HotelID: hotel.ID, Name: "Week-end", Kind: models.OfferKindWeekend, CheckInTime: "14:00", CheckOutTime: "12:00"},
		}
		DB.Create(&offers)
		log.Println("Offers seeded")
	}

	var pmCount int64
	DB.Model(&models.PaymentMethod{}).Count(&pmCount)
	if pmCount == 0 {
		methods := []models.PaymentMethod{
			{TenantID: hotel.TenantID, HotelID: hotel.ID, Name: "Espèces", Type: models.PaymentMethodTypeCash, SessionType: models.CashSessionTypeFrontdesk},
			{TenantID: hotel.TenantID, HotelID: hotel.ID, Name: "Espèces bar", Type: models.PaymentMethodTypeCash, SessionType: models.CashSessionTypeBar},
			{TenantID: hotel.TenantID, HotelID: hotel.ID, Name: "Carte bancaire", Type: models.PaymentMethodTypeCard},
			{TenantID: hotel.TenantID, HotelID: hotel.ID, Name: "Virement", Type: models.PaymentMethodTypeTransfer},
		}
		DB.Create(&methods)
		log.Println("Payment methods seeded")
	}
}
