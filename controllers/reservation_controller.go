package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"pms-backend/services"
	"pms-backend/utils"
)

type ReservationController struct {
	Service *services.ReservationService
}

func NewReservationController(service *services.ReservationService) *ReservationController {
	return &ReservationController{Service: service}
}

type createReservationRequest struct {
	GuestID    uint            `json:"guest_id" binding:"required"`
	RoomTypeID uint            `json:"room_type_id" binding:"required"`
	RoomID     *uint           `json:"room_id"`
	OfferID    *uint           `json:"offer_id"`
	Status     string          `json:"status"`
	CheckIn    time.Time       `json:"check_in" binding:"required"`
	CheckOut   time.Time       `json:"check_out" binding:"required"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TaxAmount  decimal.Decimal `json:"tax_amount"`
	Adults     int             `json:"adults"`
	Children   int             `json:"children"`
	Source     string          `json:"source"`
	Notes      string          `json:"notes"`
	Occupants  datatypes.JSON  `json:"occupants"`
}

func (ctl *ReservationController) Create(c *gin.Context) {
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload")
		return
	}
	res, err := ctl.Service.Create(tenantCtx(c), services.CreateReservationInput{
		GuestID:    req.GuestID,
		RoomTypeID: req.RoomTypeID,
		RoomID:     req.RoomID,
		OfferID:    req.OfferID,
		Status:     req.Status,
		CheckIn:    req.CheckIn,
		CheckOut:   req.CheckOut,
		UnitPrice:  req.UnitPrice,
		TaxAmount:  req.TaxAmount,
		Adults:     req.Adults,
		Children:   req.Children,
		Source:     req.Source,
		Notes:      req.Notes,
		Occupants:  req.Occupants,
	})
	if err != nil {
		fail(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, res)
}

func (ctl *ReservationController) List(c *gin.Context) {
	list, err := ctl.Service.List(tenantCtx(c), c.Query("status"))
	if err != nil {
		fail(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

func (ctl *ReservationController) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	res, err := ctl.Service.Get(tenantCtx(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, res)
}

func (ctl *ReservationController) Confirm(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := ctl.Service.Confirm(tenantCtx(c), id); err != nil {
		fail(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"id": id, "status": "confirmed"})
}

func (ctl *ReservationController) Cancel(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)
	if err := ctl.Service.Cancel(tenantCtx(c), id, req.Reason); err != nil {
		fail(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"id": id, "status": "cancelled"})
}

func (ctl *ReservationController) CheckIn(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := ctl.Service.CheckIn(tenantCtx(c), id); err != nil {
		fail(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"id": id, "status": "in_house"})
}

func (ctl *ReservationController) CheckOut(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req struct {
		At *time.Time `json:"at"`
	}
	_ = c.ShouldBindJSON(&req)
	if err := ctl.Service.CheckOut(tenantCtx(c), id, req.At); err != nil {
		fail(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"id": id, "status": "checked_out"})
}

func (ctl *ReservationController) ChangeDates(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req struct {
		CheckIn  time.Time `json:"check_in" binding:"required"`
		CheckOut time.Time `json:"check_out" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := ctl.Service.ChangeDates(tenantCtx(c), id, req.CheckIn, req.CheckOut); err != nil {
		fail(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"id": id})
}

func (ctl *ReservationController) ChangeRoom(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req struct {
		RoomID    uint             `json:"room_id" binding:"required"`
		UnitPrice *decimal.Decimal `json:"unit_price"`
		PivotAt   *time.Time       `json:"pivot_at"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := ctl.Service.ChangeRoom(tenantCtx(c), id, req.RoomID, req.UnitPrice, req.PivotAt); err != nil {
		fail(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"id": id, "room_id": req.RoomID})
}
