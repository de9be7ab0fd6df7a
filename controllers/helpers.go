package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pms-backend/middleware"
	"pms-backend/models"
	"pms-backend/utils"
)

func tenantCtx(c *gin.Context) models.TenantContext {
	return middleware.GetTenantContext(c)
}

func parseUintParam(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return uint(id), err
}

func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		utils.JSONError(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return uint(id), true
}

// fail maps core errors onto HTTP: field-keyed validation errors are
// 422, not-found sentinels are 404, anything else is a 500.
func fail(c *gin.Context, err error) {
	if ve, ok := utils.AsValidation(err); ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"error":   ve.Message,
			"field":   ve.Field,
		})
		return
	}
	if utils.IsNotFound(err) {
		utils.JSONError(c, http.StatusNotFound, err.Error())
		return
	}
	utils.JSONError(c, http.StatusInternalServerError, err.Error())
}
