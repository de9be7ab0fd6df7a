package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"pms-backend/models"
	"pms-backend/utils"
)

type GuestController struct {
	DB *gorm.DB
}

func NewGuestController(db *gorm.DB) *GuestController {
	return &GuestController{DB: db}
}

func (ctl *GuestController) List(c *gin.Context) {
	query := ctl.DB.Scopes(models.ScopeTenant(tenantCtx(c))).Order("full_name ASC")
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		like := "%" + q + "%"
		query = query.Where("full_name LIKE ? OR phone LIKE ? OR email LIKE ?", like, like, like)
	}

	var guests []models.Guest
	if err := query.Limit(200).Find(&guests).Error; err != nil {
		fail(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, guests)
}

func (ctl *GuestController) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var guest models.Guest
	err := ctl.DB.Scopes(models.ScopeTenant(tenantCtx(c))).First(&guest, id).Error
	if err == gorm.ErrRecordNotFound {
		utils.JSONError(c, http.StatusNotFound, "guest not found")
		return
	}
	if err != nil {
		fail(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, guest)
}

func (ctl *GuestController) Create(c *gin.Context) {
	tc := tenantCtx(c)
	var req struct {
		FullName    string `json:"full_name" binding:"required"`
		Email       string `json:"email"`
		Phone       string `json:"phone"`
		Nationality string `json:"nationality"`
		IDNumber    string `json:"id_number"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload")
		return
	}
	guest := models.Guest{
		TenantID:    tc.TenantID,
		HotelID:     tc.HotelID,
		FullName:    req.FullName,
		Email:       req.Email,
		Phone:       req.Phone,
		Nationality: req.Nationality,
		IDNumber:    req.IDNumber,
	}
	if err := ctl.DB.Create(&guest).Error; err != nil {
		fail(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, guest)
}

func (ctl *GuestController) Update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var guest models.Guest
	err := ctl.DB.Scopes(models.ScopeTenant(tenantCtx(c))).First(&guest, id).Error
	if err == gorm.ErrRecordNotFound {
		utils.JSONError(c, http.StatusNotFound, "guest not found")
		return
	}
	if err != nil {
		fail(c, err)
		return
	}

	var req map[string]interface{}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload")
		return
	}
	allowed := map[string]bool{
		"full_name": true, "email": true, "phone": true,
		"nationality": true, "id_number": true,
	}
	updates := map[string]interface{}{}
	for k, v := range req {
		if allowed[k] {
			updates[k] = v
		}
	}
	if len(updates) > 0 {
		if err := ctl.DB.Model(&guest).Updates(updates).Error; err != nil {
			fail(c, err)
			return
		}
	}
	utils.JSONSuccess(c, http.StatusOK, guest)
}
