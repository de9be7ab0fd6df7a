package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pms-backend/services"
	"pms-backend/utils"
)

type NightAuditController struct {
	Service *services.NightAuditService
}

func NewNightAuditController(service *services.NightAuditService) *NightAuditController {
	return &NightAuditController{Service: service}
}

type businessDayRequest struct {
	Date    string `json:"date" binding:"required"`
	ActorID *uint  `json:"actor_id"`
}

func (r businessDayRequest) parsedDate() (time.Time, error) {
	return time.Parse("2006-01-02", r.Date)
}

func (ctl *NightAuditController) CloseDay(c *gin.Context) {
	var req businessDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload")
		return
	}
	date, err := req.parsedDate()
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	if err := ctl.Service.CloseBusinessDay(tenantCtx(c), date, req.ActorID); err != nil {
		fail(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"date": req.Date, "status": "closed"})
}

func (ctl *NightAuditController) ReopenDay(c *gin.Context) {
	var req businessDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload")
		return
	}
	date, err := req.parsedDate()
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	if err := ctl.Service.ReopenBusinessDay(tenantCtx(c), date); err != nil {
		fail(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"date": req.Date, "status": "open"})
}
