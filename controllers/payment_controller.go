package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"pms-backend/services"
	"pms-backend/utils"
)

type PaymentController struct {
	Service *services.PaymentService
}

func NewPaymentController(service *services.PaymentService) *PaymentController {
	return &PaymentController{Service: service}
}

func (ctl *PaymentController) Record(c *gin.Context) {
	var req struct {
		FolioID         uint            `json:"folio_id" binding:"required"`
		PaymentMethodID uint            `json:"payment_method_id" binding:"required"`
		Amount          decimal.Decimal `json:"amount"`
		PaidAt          *time.Time      `json:"paid_at"`
		CashSessionID   *uint           `json:"cash_session_id"`
		Reference       string          `json:"reference"`
		Notes           string          `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload")
		return
	}
	payment, err := ctl.Service.RecordPayment(tenantCtx(c), services.RecordPaymentInput{
		FolioID:         req.FolioID,
		PaymentMethodID: req.PaymentMethodID,
		Amount:          req.Amount,
		PaidAt:          req.PaidAt,
		CashSessionID:   req.CashSessionID,
		Reference:       req.Reference,
		Notes:           req.Notes,
	})
	if err != nil {
		fail(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, payment)
}

func (ctl *PaymentController) Void(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req struct {
		ActorID  uint   `json:"actor_id" binding:"required"`
		Reason   string `json:"reason"`
		Override bool   `json:"override"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := ctl.Service.VoidPayment(tenantCtx(c), id, req.ActorID, req.Reason, req.Override); err != nil {
		fail(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"id": id, "voided": true})
}

func (ctl *PaymentController) Refund(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req struct {
		Amount          decimal.Decimal `json:"amount"`
		PaymentMethodID uint            `json:"payment_method_id" binding:"required"`
		CashSessionID   *uint           `json:"cash_session_id"`
		Reason          string          `json:"reason"`
		Reference       string          `json:"reference"`
		ActorID         uint            `json:"actor_id" binding:"required"`
		Override        bool            `json:"override"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload")
		return
	}
	refund, err := ctl.Service.RefundPayment(tenantCtx(c), services.RefundPaymentInput{
		PaymentID:       id,
		Amount:          req.Amount,
		PaymentMethodID: req.PaymentMethodID,
		CashSessionID:   req.CashSessionID,
		Reason:          req.Reason,
		Reference:       req.Reference,
		ActorID:         req.ActorID,
		Override:        req.Override,
	})
	if err != nil {
		fail(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, refund)
}
