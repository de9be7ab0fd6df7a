package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pms-backend/services"
	"pms-backend/utils"
)

type HousekeepingController struct {
	Service *services.HousekeepingService
}

func NewHousekeepingController(service *services.HousekeepingService) *HousekeepingController {
	return &HousekeepingController{Service: service}
}

func (ctl *HousekeepingController) Pending(c *gin.Context) {
	tasks, err := ctl.Service.PendingTasks(tenantCtx(c))
	if err != nil {
		fail(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, tasks)
}

func (ctl *HousekeepingController) Create(c *gin.Context) {
	var req struct {
		RoomID   uint   `json:"room_id" binding:"required"`
		Priority string `json:"priority"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload")
		return
	}
	task, err := ctl.Service.CreateCleaningTask(tenantCtx(c), req.RoomID, req.Priority, "manual")
	if err != nil {
		fail(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, task)
}

func (ctl *HousekeepingController) Start(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req struct {
		AssigneeID *uint `json:"assignee_id"`
	}
	_ = c.ShouldBindJSON(&req)
	if err := ctl.Service.StartTask(tenantCtx(c), id, req.AssigneeID); err != nil {
		fail(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"id": id, "status": "in_progress"})
}

func (ctl *HousekeepingController) Complete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := ctl.Service.CompleteTask(tenantCtx(c), id); err != nil {
		fail(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"id": id, "status": "done"})
}
