package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"pms-backend/config"
	"pms-backend/controllers"
	"pms-backend/routes"
	"pms-backend/services"
)

func main() {
	// Load .env (optional)
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env not found or couldn't load it; continuing with environment variables")
	}

	config.InitLogger()
	logger := config.Logger
	defer logger.Sync()

	// Connect database (config.ConnectDatabase sets config.DB)
	if err := config.ConnectDatabase(); err != nil {
		logger.Fatal("database connect failed", zap.Error(err))
	}
	db := config.DB
	if db == nil {
		logger.Fatal("config.DB is nil after ConnectDatabase()")
	}
	logger.Info("database connection established and migrations applied")

	// Redis is optional; the notifier degrades to a no-op without it.
	redisClient := config.InitRedis()
	notifyChannel := os.Getenv("NOTIFY_CHANNEL")
	if notifyChannel == "" {
		notifyChannel = "pms.events"
	}
	notifier := services.NewNotifier(redisClient, notifyChannel, logger)

	// Initialize services
	roomService := services.NewRoomStateService(db)
	maintenanceService := services.NewMaintenanceService(db)
	availabilityService := services.NewAvailabilityService(db, maintenanceService)
	folioService := services.NewFolioService(db)
	housekeepingService := services.NewHousekeepingService(db, roomService)
	loyaltyService := services.NewLoyaltyService(db)
	nightAuditService := services.NewNightAuditService(db, logger)
	cashSessionService := services.NewCashSessionService(db)
	paymentService := services.NewPaymentService(db, folioService, cashSessionService, nightAuditService)
	reservationService := services.NewReservationService(
		db,
		roomService,
		availabilityService,
		folioService,
		housekeepingService,
		loyaltyService,
		notifier,
	)

	// Initialize controllers
	guestController := controllers.NewGuestController(db)
	reservationController := controllers.NewReservationController(reservationService)
	roomController := controllers.NewRoomController(db, roomService)
	folioController := controllers.NewFolioController(folioService)
	paymentController := controllers.NewPaymentController(paymentService)
	cashSessionController := controllers.NewCashSessionController(cashSessionService)
	maintenanceController := controllers.NewMaintenanceController(maintenanceService)
	housekeepingController := controllers.NewHousekeepingController(housekeepingService)
	nightAuditController := controllers.NewNightAuditController(nightAuditService)

	// Night audit scheduler: closes yesterday's business day per hotel.
	auditSpec := os.Getenv("NIGHT_AUDIT_CRON")
	if auditSpec == "" {
		auditSpec = "0 4 * * *"
	}
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(auditSpec, nightAuditService.CloseYesterdayForAllHotels); err != nil {
		logger.Fatal("invalid NIGHT_AUDIT_CRON expression", zap.String("spec", auditSpec), zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Build router
	router := routes.SetupRouter(
		guestController,
		reservationController,
		roomController,
		folioController,
		paymentController,
		cashSessionController,
		maintenanceController,
		housekeepingController,
		nightAuditController,
	)

	// Port from env (prefer), fallback to 8080
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	addr := ":" + port

	srv := &http.Server{
		Addr:    addr,
		Handler: router,
		// useful timeouts
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("🚀 server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen and serve failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with timeout
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("⚠️  shutdown signal received, shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	if redisClient != nil {
		_ = redisClient.Close()
	}
	logger.Info("✅ server stopped gracefully")
}
