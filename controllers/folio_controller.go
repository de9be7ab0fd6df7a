package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"pms-backend/services"
	"pms-backend/utils"
)

type FolioController struct {
	Service *services.FolioService
}

func NewFolioController(service *services.FolioService) *FolioController {
	return &FolioController{Service: service}
}

func (ctl *FolioController) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	folio, err := ctl.Service.Get(tenantCtx(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, folio)
}

func (ctl *FolioController) CreatePOS(c *gin.Context) {
	var req struct {
		GuestID *uint `json:"guest_id"`
	}
	_ = c.ShouldBindJSON(&req)
	folio, err := ctl.Service.CreatePOSFolio(tenantCtx(c), req.GuestID)
	if err != nil {
		fail(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, folio)
}

func (ctl *FolioController) EnsureForReservation(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	folio, err := ctl.Service.EnsureMainFolio(tenantCtx(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, folio)
}

func (ctl *FolioController) AddCharge(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req struct {
		Description    string          `json:"description" binding:"required"`
		Type           string          `json:"type"`
		Quantity       decimal.Decimal `json:"quantity"`
		UnitPrice      decimal.Decimal `json:"unit_price"`
		TaxAmount      decimal.Decimal `json:"tax_amount"`
		DiscountAmount decimal.Decimal `json:"discount_amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload")
		return
	}
	item, err := ctl.Service.AddCharge(tenantCtx(c), id, services.ChargeInput{
		Description:    req.Description,
		Type:           req.Type,
		Quantity:       req.Quantity,
		UnitPrice:      req.UnitPrice,
		TaxAmount:      req.TaxAmount,
		DiscountAmount: req.DiscountAmount,
	})
	if err != nil {
		fail(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, item)
}

func (ctl *FolioController) RemoveCharge(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	itemID, err := parseUintParam(c, "itemId")
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid item id")
		return
	}
	if err := ctl.Service.RemoveCharge(tenantCtx(c), id, itemID); err != nil {
		fail(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"folio_id": id, "item_id": itemID})
}

// GenerateInvoice is the idempotency boundary: if the folio already has
// an invoice, it is returned as-is instead of generating another.
func (ctl *FolioController) GenerateInvoice(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	tc := tenantCtx(c)
	existing, err := ctl.Service.InvoiceForFolio(tc, id)
	if err != nil {
		fail(c, err)
		return
	}
	if existing != nil {
		utils.JSONSuccess(c, http.StatusOK, gin.H{"invoice": existing, "already_generated": true})
		return
	}
	invoice, err := ctl.Service.GenerateInvoice(tc, id, nil)
	if err != nil {
		fail(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, gin.H{"invoice": invoice, "already_generated": false})
}

func (ctl *FolioController) Close(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := ctl.Service.CloseFolio(tenantCtx(c), id); err != nil {
		fail(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"id": id, "status": "closed"})
}
