package routes

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"pms-backend/config"
	"pms-backend/controllers"
	"pms-backend/middleware"
)

func parseCorsOrigins() []string {
	raw := strings.TrimSpace(os.Getenv("CORS_ORIGINS"))
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// SetupRouter wires controller instances onto the HTTP surface. Every
// /api route runs behind the tenant-context middleware.
func SetupRouter(
	gc *controllers.GuestController,
	rc *controllers.ReservationController,
	roc *controllers.RoomController,
	fc *controllers.FolioController,
	pc *controllers.PaymentController,
	csc *controllers.CashSessionController,
	mc *controllers.MaintenanceController,
	hkc *controllers.HousekeepingController,
	nac *controllers.NightAuditController,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(config.Logger))

	origins := parseCorsOrigins()
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", "X-Tenant-ID", "X-Hotel-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.Use(middleware.TenantContext())
	{
		guests := api.Group("/guests")
		{
			guests.GET("", gc.List)
			guests.GET("/:id", gc.Get)
			guests.POST("", gc.Create)
			guests.PATCH("/:id", gc.Update)
		}

		reservations := api.Group("/reservations")
		{
			reservations.GET("", rc.List)
			reservations.POST("", rc.Create)
			reservations.GET("/:id", rc.Get)
			reservations.POST("/:id/confirm", rc.Confirm)
			reservations.POST("/:id/cancel", rc.Cancel)
			reservations.POST("/:id/checkin", rc.CheckIn)
			reservations.POST("/:id/checkout", rc.CheckOut)
			reservations.POST("/:id/change-dates", rc.ChangeDates)
			reservations.POST("/:id/change-room", rc.ChangeRoom)
			reservations.POST("/:id/folio", fc.EnsureForReservation)
		}

		rooms := api.Group("/rooms")
		{
			rooms.GET("", roc.List)
			rooms.POST("", roc.Create)
			rooms.POST("/:id/out-of-order", roc.MarkOutOfOrder)
			rooms.POST("/:id/return-to-service", roc.ReturnToService)
			rooms.PATCH("/:id/housekeeping", roc.SetHousekeepingStatus)
		}

		folios := api.Group("/folios")
		{
			folios.POST("/pos", fc.CreatePOS)
			folios.GET("/:id", fc.Get)
			folios.POST("/:id/charges", fc.AddCharge)
			folios.DELETE("/:id/charges/:itemId", fc.RemoveCharge)
			folios.POST("/:id/invoice", fc.GenerateInvoice)
			folios.POST("/:id/close", fc.Close)
		}

		payments := api.Group("/payments")
		{
			payments.POST("", pc.Record)
			payments.POST("/:id/void", pc.Void)
			payments.POST("/:id/refund", pc.Refund)
		}

		sessions := api.Group("/cash-sessions")
		{
			sessions.GET("", csc.List)
			sessions.POST("", csc.Open)
			sessions.POST("/:id/close", csc.Close)
			sessions.POST("/:id/validate", csc.Validate)
		}

		maintenance := api.Group("/maintenance-tickets")
		{
			maintenance.POST("", mc.Open)
			maintenance.POST("/:id/start", mc.Start)
			maintenance.POST("/:id/resolve", mc.Resolve)
			maintenance.POST("/:id/cancel", mc.Cancel)
		}

		housekeeping := api.Group("/housekeeping-tasks")
		{
			housekeeping.GET("/pending", hkc.Pending)
			housekeeping.POST("", hkc.Create)
			housekeeping.POST("/:id/start", hkc.Start)
			housekeeping.POST("/:id/complete", hkc.Complete)
		}

		nightAudit := api.Group("/night-audit")
		{
			nightAudit.POST("/close", nac.CloseDay)
			nightAudit.POST("/reopen", nac.ReopenDay)
		}
	}

	return r
}
