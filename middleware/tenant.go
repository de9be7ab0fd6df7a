package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pms-backend/models"
)

const TenantContextKey = "tenant_context"

// TenantContext resolves the caller's tenant + hotel from headers and
// stores an explicit models.TenantContext on the request. The core
// services never read ambient tenant state; handlers pass this value
// into every call.
func TenantContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, err1 := strconv.ParseUint(c.GetHeader("X-Tenant-ID"), 10, 64)
		hotelID, err2 := strconv.ParseUint(c.GetHeader("X-Hotel-ID"), 10, 64)
		if err1 != nil || err2 != nil || tenantID == 0 || hotelID == 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "X-Tenant-ID and X-Hotel-ID headers are required",
			})
			return
		}
		c.Set(TenantContextKey, models.TenantContext{
			TenantID: uint(tenantID),
			HotelID:  uint(hotelID),
		})
		c.Next()
	}
}

// GetTenantContext reads the context stored by the middleware.
func GetTenantContext(c *gin.Context) models.TenantContext {
	v, _ := c.Get(TenantContextKey)
	tc, _ := v.(models.TenantContext)
	return tc
}
