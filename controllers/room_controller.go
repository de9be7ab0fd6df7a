package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"pms-backend/models"
	"pms-backend/services"
	"pms-backend/utils"
)

type RoomController struct {
	DB    *gorm.DB
	Rooms *services.RoomStateService
}

func NewRoomController(db *gorm.DB, rooms *services.RoomStateService) *RoomController {
	return &RoomController{DB: db, Rooms: rooms}
}

func (ctl *RoomController) List(c *gin.Context) {
	var rooms []models.Room
	if err := ctl.DB.Scopes(models.ScopeTenant(tenantCtx(c))).
		Preload("RoomType").
		Order("number ASC").
		Find(&rooms).Error; err != nil {
		fail(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, rooms)
}

func (ctl *RoomController) Create(c *gin.Context) {
	tc := tenantCtx(c)
	var req struct {
		RoomTypeID uint   `json:"room_type_id" binding:"required"`
		Number     string `json:"number" binding:"required"`
		Floor      string `json:"floor"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload")
		return
	}
	room := models.Room{
		TenantID:   tc.TenantID,
		HotelID:    tc.HotelID,
		RoomTypeID: req.RoomTypeID,
		Number:     req.Number,
		Floor:      req.Floor,
		Status:     models.RoomStatusAvailable,
		HkStatus:   models.HkStatusClean,
	}
	if err := ctl.DB.Create(&room).Error; err != nil {
		utils.JSONError(c, http.StatusConflict, "room number already exists or could not be created")
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, room)
}

func (ctl *RoomController) MarkOutOfOrder(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := ctl.Rooms.MarkOutOfOrder(tenantCtx(c), id); err != nil {
		fail(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"id": id, "status": models.RoomStatusOutOfOrder})
}

func (ctl *RoomController) ReturnToService(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := ctl.Rooms.ReturnToService(tenantCtx(c), id); err != nil {
		fail(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"id": id, "status": models.RoomStatusAvailable})
}

func (ctl *RoomController) SetHousekeepingStatus(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := ctl.Rooms.SetHousekeepingStatus(tenantCtx(c), id, req.Status); err != nil {
		fail(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"id": id, "hk_status": req.Status})
}
