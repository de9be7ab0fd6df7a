package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"pms-backend/services"
	"pms-backend/utils"
)

type CashSessionController struct {
	Service *services.CashSessionService
}

func NewCashSessionController(service *services.CashSessionService) *CashSessionController {
	return &CashSessionController{Service: service}
}

func (ctl *CashSessionController) List(c *gin.Context) {
	sessions, err := ctl.Service.List(tenantCtx(c))
	if err != nil {
		fail(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, sessions)
}

func (ctl *CashSessionController) Open(c *gin.Context) {
	var req struct {
		Type         string          `json:"type" binding:"required"`
		OpeningFloat decimal.Decimal `json:"opening_float"`
		ActorID      *uint           `json:"actor_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload")
		return
	}
	session, err := ctl.Service.Open(tenantCtx(c), req.Type, req.OpeningFloat, req.ActorID)
	if err != nil {
		fail(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, session)
}

func (ctl *CashSessionController) Close(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req struct {
		DeclaredAmount decimal.Decimal `json:"declared_amount"`
		ActorID        *uint           `json:"actor_id"`
		Notes          string          `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := ctl.Service.Close(tenantCtx(c), id, req.DeclaredAmount, req.ActorID, req.Notes); err != nil {
		fail(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"id": id, "status": "closed_pending_validation"})
}

func (ctl *CashSessionController) Validate(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req struct {
		ActorID *uint `json:"actor_id"`
	}
	_ = c.ShouldBindJSON(&req)
	if err := ctl.Service.Validate(tenantCtx(c), id, req.ActorID); err != nil {
		fail(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"id": id, "status": "validated"})
}
