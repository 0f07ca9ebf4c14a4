// controllers/vehicle_controller.go
package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"carrental-backend/models"
	"carrental-backend/services"
	"carrental-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func marshalFeatures(features []string) datatypes.JSON {
	if features == nil {
		return nil
	}
	b, _ := json.Marshal(features) // best-effort
	return datatypes.JSON(b)
}

type VehicleController struct {
	DB *gorm.DB
}

func NewVehicleController(db *gorm.DB) *VehicleController {
	return &VehicleController{DB: db}
}

// GetVehicles handles GET /api/vehicles with optional browse filters
// (?type=, ?make=, ?seats=, ?gas_type=).
func (ctrl *VehicleController) GetVehicles(c *gin.Context) {
	q := ctrl.DB.Preload("Images").Preload("Extras")

	if t := strings.TrimSpace(c.Query("type")); t != "" {
		q = q.Where("vehicle_type = ?", t)
	}
	if m := strings.TrimSpace(c.Query("make")); m != "" {
		q = q.Where("make = ?", m)
	}
	if g := strings.TrimSpace(c.Query("gas_type")); g != "" {
		q = q.Where("gas_type = ?", g)
	}
	if s := c.Query("seats"); s != "" {
		seats, err := strconv.Atoi(s)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "error.invalidRequest", "seats must be a number.")
			return
		}
		q = q.Where("seats >= ?", seats)
	}

	var vehicles []models.Vehicle
	if err := q.Order("id").Find(&vehicles).Error; err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "Failed to load vehicles.")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, vehicles)
}

// GetVehicleByID handles GET /api/vehicles/:id.
func (ctrl *VehicleController) GetVehicleByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var vehicle models.Vehicle
	err := ctrl.DB.Preload("Images").Preload("Extras").First(&vehicle, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.JSONError(c, http.StatusNotFound, "error.notFound", "Vehicle not found.")
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "Failed to load vehicle.")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, vehicle)
}

type VehiclePayload struct {
	Make        string   `json:"make" binding:"required"`
	Model       string   `json:"model" binding:"required"`
	Year        int      `json:"year"`
	VehicleType string   `json:"vehicle_type"`
	Seats       int      `json:"seats"`
	Doors       int      `json:"doors"`
	MPG         int      `json:"mpg"`
	GasType     string   `json:"gas_type"`
	PricePerDay float64  `json:"price_per_day"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
	ExtraIDs    []uint   `json:"extra_ids"`
}

func (ctrl *VehicleController) resolveExtras(ids []uint) ([]models.Extra, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var extras []models.Extra
	if err := ctrl.DB.Where("id IN ?", ids).Find(&extras).Error; err != nil {
		return nil, err
	}
	if len(extras) != len(ids) {
		return nil, services.ErrExtraNotFound
	}
	return extras, nil
}

// CreateVehicle handles POST /api/vehicles (admin).
func (ctrl *VehicleController) CreateVehicle(c *gin.Context) {
	var payload VehiclePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONErrorDetails(c, http.StatusBadRequest, "error.invalidPayload", "make and model are required.", err.Error())
		return
	}
	if payload.PricePerDay < 0 {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidRequest", "price_per_day must not be negative.")
		return
	}

	extras, err := ctrl.resolveExtras(payload.ExtraIDs)
	if err != nil {
		if errors.Is(err, services.ErrExtraNotFound) {
			utils.JSONError(c, http.StatusBadRequest, "error.invalidRequest", "One of the listed extras does not exist.")
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "Failed to resolve extras.")
		return
	}

	vehicle := models.Vehicle{
		Make:        strings.TrimSpace(payload.Make),
		Model:       strings.TrimSpace(payload.Model),
		Year:        payload.Year,
		VehicleType: payload.VehicleType,
		Seats:       payload.Seats,
		Doors:       payload.Doors,
		MPG:         payload.MPG,
		GasType:     payload.GasType,
		PricePerDay: payload.PricePerDay,
		Description: payload.Description,
		Features:    marshalFeatures(payload.Features),
		Extras:      extras,
	}
	if err := ctrl.DB.Create(&vehicle).Error; err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "Failed to create vehicle.")
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, vehicle)
}

// UpdateVehicle handles PUT /api/vehicles/:id (admin). Existing
// bookings already captured their price; the new rate only affects
// future bookings.
func (ctrl *VehicleController) UpdateVehicle(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var vehicle models.Vehicle
	if err := ctrl.DB.First(&vehicle, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.JSONError(c, http.StatusNotFound, "error.notFound", "Vehicle not found.")
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "Failed to load vehicle.")
		return
	}

	var payload VehiclePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONErrorDetails(c, http.StatusBadRequest, "error.invalidPayload", "make and model are required.", err.Error())
		return
	}
	if payload.PricePerDay < 0 {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidRequest", "price_per_day must not be negative.")
		return
	}

	extras, err := ctrl.resolveExtras(payload.ExtraIDs)
	if err != nil {
		if errors.Is(err, services.ErrExtraNotFound) {
			utils.JSONError(c, http.StatusBadRequest, "error.invalidRequest", "One of the listed extras does not exist.")
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "Failed to resolve extras.")
		return
	}

	updates := map[string]interface{}{
		"make":          strings.TrimSpace(payload.Make),
		"model":         strings.TrimSpace(payload.Model),
		"year":          payload.Year,
		"vehicle_type":  payload.VehicleType,
		"seats":         payload.Seats,
		"doors":         payload.Doors,
		"mpg":           payload.MPG,
		"gas_type":      payload.GasType,
		"price_per_day": payload.PricePerDay,
		"description":   payload.Description,
		"features":      marshalFeatures(payload.Features),
	}
	if err := ctrl.DB.Model(&vehicle).Updates(updates).Error; err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "Failed to update vehicle.")
		return
	}
	if payload.ExtraIDs != nil {
		if err := ctrl.DB.Model(&vehicle).Association("Extras").Replace(extras); err != nil {
			utils.JSONError(c, http.StatusInternalServerError, "error.internal", "Failed to update vehicle extras.")
			return
		}
	}
	utils.JSONSuccess(c, http.StatusOK, vehicle)
}

// DeleteVehicle handles DELETE /api/vehicles/:id (admin). Vehicles
// with active bookings cannot be removed.
func (ctrl *VehicleController) DeleteVehicle(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var activeCount int64
	err := ctrl.DB.Model(&models.Booking{}).
		Where("vehicle_id = ? AND status = ?", id, models.BookingStatusActive).
		Count(&activeCount).Error
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "Failed to check bookings.")
		return
	}
	if activeCount > 0 {
		utils.JSONError(c, http.StatusConflict, "error.vehicleInUse", "The vehicle still has active bookings.")
		return
	}

	res := ctrl.DB.Delete(&models.Vehicle{}, id)
	if res.Error != nil {
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "Failed to delete vehicle.")
		return
	}
	if res.RowsAffected == 0 {
		utils.JSONError(c, http.StatusNotFound, "error.notFound", "Vehicle not found.")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"deleted": id})
}

type VehicleImagePayload struct {
	Image    string `json:"image" binding:"required"` // base64, optionally a data URL
	Position int    `json:"position"`
}

// UploadVehicleImage handles POST /api/vehicles/:id/images (admin).
func (ctrl *VehicleController) UploadVehicleImage(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var vehicle models.Vehicle
	if err := ctrl.DB.First(&vehicle, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.JSONError(c, http.StatusNotFound, "error.notFound", "Vehicle not found.")
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "Failed to load vehicle.")
		return
	}

	var payload VehicleImagePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONErrorDetails(c, http.StatusBadRequest, "error.invalidPayload", "image is required.", err.Error())
		return
	}

	path, err := services.SaveBase64Image(payload.Image, "vehicles")
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidRequest", "The image payload could not be decoded.")
		return
	}

	image := models.VehicleImage{
		VehicleID: vehicle.ID,
		Path:      path,
		Position:  payload.Position,
	}
	if err := ctrl.DB.Create(&image).Error; err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "Failed to save image.")
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, image)
}

// DeleteVehicleImage handles DELETE /api/vehicles/:id/images/:imageId.
func (ctrl *VehicleController) DeleteVehicleImage(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	imageID, err := strconv.ParseUint(c.Param("imageId"), 10, 32)
	if err != nil || imageID == 0 {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidId", "imageId must be a positive number.")
		return
	}

	res := ctrl.DB.Where("vehicle_id = ?", id).Delete(&models.VehicleImage{}, uint(imageID))
	if res.Error != nil {
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "Failed to delete image.")
		return
	}
	if res.RowsAffected == 0 {
		utils.JSONError(c, http.StatusNotFound, "error.notFound", "Image not found.")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"deleted": imageID})
}
