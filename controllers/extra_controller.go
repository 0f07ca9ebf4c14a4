// controllers/extra_controller.go
package controllers

import (
	"errors"
	"net/http"

	"carrental-backend/models"
	"carrental-backend/services"
	"carrental-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ExtraController struct {
	DB        *gorm.DB
	Inventory *services.InventoryService
}

func NewExtraController(db *gorm.DB, inventory *services.InventoryService) *ExtraController {
	return &ExtraController{DB: db, Inventory: inventory}
}

type AvailabilityRequest struct {
	StartDate string                  `json:"start_date" binding:"required"`
	EndDate   string                  `json:"end_date" binding:"required"`
	Extras    []services.ExtraRequest `json:"extras" binding:"required"`
}

// CheckAvailability handles POST /api/extras/availability: a trial
// date range before the client commits to a booking. Unlimited extras
// report the sentinel rather than an error.
func (ctrl *ExtraController) CheckAvailability(c *gin.Context) {
	var payload AvailabilityRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONErrorDetails(c, http.StatusBadRequest, "error.invalidPayload",
			"start_date, end_date and extras are required.", err.Error())
		return
	}

	start, err := services.ParseDate(payload.StartDate)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidRequest", "start_date must be an ISO date.")
		return
	}
	end, err := services.ParseDate(payload.EndDate)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidRequest", "end_date must be an ISO date.")
		return
	}

	ids := make([]uint, 0, len(payload.Extras))
	for _, e := range payload.Extras {
		ids = append(ids, e.ExtraID)
	}

	availability, err := ctrl.Inventory.AvailabilityForRange(start, end, ids)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRange):
			utils.JSONError(c, http.StatusBadRequest, "error.invalidRequest", "start_date must not be after end_date.")
		case errors.Is(err, services.ErrExtraNotFound):
			utils.JSONError(c, http.StatusBadRequest, "error.invalidRequest", "One of the requested extras does not exist.")
		default:
			utils.JSONError(c, http.StatusInternalServerError, "error.internal", "An internal error occurred.")
		}
		return
	}

	result := gin.H{}
	for id, available := range availability {
		result[strconvUint(id)] = gin.H{"available_quantity": available}
	}
	utils.JSONSuccess(c, http.StatusOK, result)
}

// GetExtras handles GET /api/extras.
func (ctrl *ExtraController) GetExtras(c *gin.Context) {
	var extras []models.Extra
	if err := ctrl.DB.Order("id").Find(&extras).Error; err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "Failed to load extras.")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, extras)
}

// GetExtraByID handles GET /api/extras/:id.
func (ctrl *ExtraController) GetExtraByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var extra models.Extra
	if err := ctrl.DB.First(&extra, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.JSONError(c, http.StatusNotFound, "error.notFound", "Extra not found.")
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "Failed to load extra.")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, extra)
}

type ExtraPayload struct {
	Name          string  `json:"name" binding:"required"`
	Description   string  `json:"description"`
	PriceType     string  `json:"price_type"`
	PriceAmount   float64 `json:"price_amount"`
	TotalQuantity *int    `json:"total_quantity"`
}

func (p *ExtraPayload) validate() (string, bool) {
	switch p.PriceType {
	case "", models.PriceTypeDaily, models.PriceTypeTrip:
	default:
		return "price_type must be DAILY or TRIP.", false
	}
	if p.PriceAmount < 0 {
		return "price_amount must not be negative.", false
	}
	if p.TotalQuantity != nil && *p.TotalQuantity < 0 {
		return "total_quantity must not be negative.", false
	}
	return "", true
}

// CreateExtra handles POST /api/extras (admin).
func (ctrl *ExtraController) CreateExtra(c *gin.Context) {
	var payload ExtraPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONErrorDetails(c, http.StatusBadRequest, "error.invalidPayload", "name is required.", err.Error())
		return
	}
	if msg, ok := payload.validate(); !ok {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidRequest", msg)
		return
	}

	priceType := payload.PriceType
	if priceType == "" {
		priceType = models.PriceTypeDaily
	}

	extra := models.Extra{
		Name:          payload.Name,
		Description:   payload.Description,
		PriceType:     priceType,
		PriceAmount:   payload.PriceAmount,
		TotalQuantity: payload.TotalQuantity,
	}
	if err := ctrl.DB.Create(&extra).Error; err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "Failed to create extra.")
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, extra)
}

// UpdateExtra handles PUT /api/extras/:id (admin). Booking rows keep
// their snapshot name, so renames never rewrite history.
func (ctrl *ExtraController) UpdateExtra(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var extra models.Extra
	if err := ctrl.DB.First(&extra, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.JSONError(c, http.StatusNotFound, "error.notFound", "Extra not found.")
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "Failed to load extra.")
		return
	}

	var payload ExtraPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONErrorDetails(c, http.StatusBadRequest, "error.invalidPayload", "name is required.", err.Error())
		return
	}
	if msg, ok := payload.validate(); !ok {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidRequest", msg)
		return
	}

	updates := map[string]interface{}{
		"name":           payload.Name,
		"description":    payload.Description,
		"price_amount":   payload.PriceAmount,
		"total_quantity": payload.TotalQuantity,
	}
	if payload.PriceType != "" {
		updates["price_type"] = payload.PriceType
	}
	if err := ctrl.DB.Model(&extra).Updates(updates).Error; err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "Failed to update extra.")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, extra)
}

// DeleteExtra handles DELETE /api/extras/:id (admin). Soft delete;
// existing booking extras keep their rows.
func (ctrl *ExtraController) DeleteExtra(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	res := ctrl.DB.Delete(&models.Extra{}, id)
	if res.Error != nil {
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "Failed to delete extra.")
		return
	}
	if res.RowsAffected == 0 {
		utils.JSONError(c, http.StatusNotFound, "error.notFound", "Extra not found.")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"deleted": id})
}
