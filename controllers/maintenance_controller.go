package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pms-backend/services"
	"pms-backend/utils"
)

type MaintenanceController struct {
	Service *services.MaintenanceService
}

func NewMaintenanceController(service *services.MaintenanceService) *MaintenanceController {
	return &MaintenanceController{Service: service}
}

func (ctl *MaintenanceController) Open(c *gin.Context) {
	var req struct {
		RoomID     uint   `json:"room_id" binding:"required"`
		Title      string `json:"title" binding:"required"`
		Details    string `json:"details"`
		Priority   string `json:"priority"`
		BlocksSale bool   `json:"blocks_sale"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload")
		return
	}
	ticket, err := ctl.Service.OpenTicket(tenantCtx(c), services.OpenTicketInput{
		RoomID:     req.RoomID,
		Title:      req.Title,
		Details:    req.Details,
		Priority:   req.Priority,
		BlocksSale: req.BlocksSale,
	})
	if err != nil {
		fail(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, ticket)
}

func (ctl *MaintenanceController) Start(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := ctl.Service.StartTicket(tenantCtx(c), id); err != nil {
		fail(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"id": id, "status": "in_progress"})
}

func (ctl *MaintenanceController) Resolve(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := ctl.Service.ResolveTicket(tenantCtx(c), id); err != nil {
		fail(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"id": id, "status": "resolved"})
}

func (ctl *MaintenanceController) Cancel(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := ctl.Service.CancelTicket(tenantCtx(c), id); err != nil {
		fail(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"id": id, "status": "cancelled"})
}
