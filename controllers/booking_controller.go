// controllers/booking_controller.go
package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"carrental-backend/middleware"
	"carrental-backend/services"
	"carrental-backend/utils"

	"github.com/gin-gonic/gin"
)

// ---------------------------
// Payload / DTOs
// ---------------------------

type CreateBookingRequest struct {
	VehicleID     uint                    `json:"vehicle_id" binding:"required"`
	StartDate     string                  `json:"start_date" binding:"required"`
	EndDate       string                  `json:"end_date" binding:"required"`
	Extras        []services.ExtraRequest `json:"extras"`
	TotalPrice    float64                 `json:"total_price"`
	PayPalOrderID string                  `json:"paypal_order_id"`
}

type UpdateBookingRequest struct {
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	Status    *string `json:"status"`
}

// ---------------------------
// Controller
// ---------------------------

type BookingController struct {
	BookingSvc *services.BookingService
}

func NewBookingController(svc *services.BookingService) *BookingController {
	return &BookingController{BookingSvc: svc}
}

func strconvUint(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidId", "The id in the URL must be a positive number.")
		return 0, false
	}
	return uint(id), true
}

// respondBookingError maps service errors onto the HTTP surface.
// User-facing messages stay free of internal identifiers.
func respondBookingError(c *gin.Context, err error) {
	var extraErr *services.ExtraUnavailableError

	switch {
	case errors.As(err, &extraErr):
		utils.JSONErrorDetails(c, http.StatusConflict, "error.extraUnavailable",
			"One or more extras are not available for the selected dates.",
			gin.H{
				"extra_id":           extraErr.ExtraID,
				"extra_name":         extraErr.ExtraName,
				"requested":          extraErr.Requested,
				"available_quantity": extraErr.Available,
			})

	case errors.Is(err, services.ErrVehicleUnavailable):
		utils.JSONError(c, http.StatusConflict, "error.vehicleUnavailable",
			"The vehicle is already booked for the selected dates.")

	case errors.Is(err, services.ErrResourceConflict):
		utils.JSONError(c, http.StatusConflict, "error.resourceConflict",
			"The booking could not be completed due to a concurrent request. Please try again.")

	case errors.Is(err, services.ErrInvalidTransition):
		utils.JSONError(c, http.StatusBadRequest, "error.invalidTransition",
			"The requested status change is not allowed.")

	case errors.Is(err, services.ErrInvalidRequest), errors.Is(err, services.ErrInvalidRange):
		utils.JSONError(c, http.StatusBadRequest, "error.invalidRequest", err.Error())

	case errors.Is(err, services.ErrPaymentNotCaptured):
		utils.JSONError(c, http.StatusBadRequest, "error.paymentNotCaptured",
			"The payment for this booking has not been captured.")

	case errors.Is(err, services.ErrBookingNotFound),
		errors.Is(err, services.ErrVehicleNotFound),
		errors.Is(err, services.ErrExtraNotFound),
		errors.Is(err, services.ErrUserNotFound):
		utils.JSONError(c, http.StatusNotFound, "error.notFound", "The requested resource does not exist.")

	default:
		log.Printf("booking handler internal error: %v", err)
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "An internal error occurred.")
	}
}

// CreateBooking handles POST /api/bookings. The user id always comes
// from the authenticated session, never from the request body.
func (ctrl *BookingController) CreateBooking(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "error.unauthenticated", "Authentication required.")
		return
	}

	var payload CreateBookingRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONErrorDetails(c, http.StatusBadRequest, "error.invalidPayload",
			"vehicle_id, start_date and end_date are required.", err.Error())
		return
	}

	booking, err := ctrl.BookingSvc.Create(services.CreateBookingInput{
		VehicleID:     payload.VehicleID,
		UserID:        userID,
		StartDate:     payload.StartDate,
		EndDate:       payload.EndDate,
		Extras:        payload.Extras,
		TotalPrice:    payload.TotalPrice,
		PayPalOrderID: payload.PayPalOrderID,
	})
	if err != nil {
		respondBookingError(c, err)
		return
	}

	utils.JSONSuccess(c, http.StatusCreated, booking)
}

// GetBookings returns the caller's bookings, newest first. Admins may
// query another user's with ?user_id=.
func (ctrl *BookingController) GetBookings(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "error.unauthenticated", "Authentication required.")
		return
	}

	if raw := c.Query("user_id"); raw != "" && middleware.IsAdmin(c) {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "error.invalidRequest", "user_id must be a number.")
			return
		}
		userID = uint(parsed)
	}

	list, err := ctrl.BookingSvc.ListByUser(userID)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

// GetBookingByID returns one booking with vehicle + extras resolved.
// Owner or admin only.
func (ctrl *BookingController) GetBookingByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	booking, err := ctrl.BookingSvc.GetByID(id)
	if err != nil {
		respondBookingError(c, err)
		return
	}

	userID, _ := middleware.UserID(c)
	if booking.UserID != userID && !middleware.IsAdmin(c) {
		utils.JSONError(c, http.StatusForbidden, "error.forbidden", "You can only view your own bookings.")
		return
	}

	utils.JSONSuccess(c, http.StatusOK, booking)
}

// UpdateBooking handles PUT /api/bookings/:id — partial update of
// start_date/end_date/status.
func (ctrl *BookingController) UpdateBooking(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var payload UpdateBookingRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONErrorDetails(c, http.StatusBadRequest, "error.invalidPayload", "Invalid request payload.", err.Error())
		return
	}

	if !ctrl.authorizeOwner(c, id) {
		return
	}

	booking, err := ctrl.BookingSvc.Update(id, services.UpdateBookingInput{
		StartDate: payload.StartDate,
		EndDate:   payload.EndDate,
		Status:    payload.Status,
	})
	if err != nil {
		respondBookingError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

// CancelBooking handles DELETE /api/bookings/:id. This cancels rather
// than deletes: history stays and the held inventory is released.
func (ctrl *BookingController) CancelBooking(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if !ctrl.authorizeOwner(c, id) {
		return
	}

	booking, err := ctrl.BookingSvc.Cancel(id)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

// authorizeOwner loads the booking and verifies the caller owns it or
// is an admin. Responds on failure.
func (ctrl *BookingController) authorizeOwner(c *gin.Context, bookingID uint) bool {
	booking, err := ctrl.BookingSvc.GetByID(bookingID)
	if err != nil {
		respondBookingError(c, err)
		return false
	}
	userID, _ := middleware.UserID(c)
	if booking.UserID != userID && !middleware.IsAdmin(c) {
		utils.JSONError(c, http.StatusForbidden, "error.forbidden", "You can only modify your own bookings.")
		return false
	}
	return true
}

// ---------------------------
// Admin surface
// ---------------------------

// AdminListBookings handles GET /api/admin/bookings.
func (ctrl *BookingController) AdminListBookings(c *gin.Context) {
	list, err := ctrl.BookingSvc.ListAll()
	if err != nil {
		respondBookingError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

// AdminDeleteBooking handles DELETE /api/admin/bookings/:id — the
// destructive override that removes the row entirely.
func (ctrl *BookingController) AdminDeleteBooking(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := ctrl.BookingSvc.Delete(id); err != nil {
		respondBookingError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"deleted": id})
}
