// controllers/cron_controller.go
package controllers

import (
	"net/http"
	"time"

	"carrental-backend/services"
	"carrental-backend/utils"

	"github.com/gin-gonic/gin"
)

type CronController struct {
	Sweep *services.SweepService
}

func NewCronController(sweep *services.SweepService) *CronController {
	return &CronController{Sweep: sweep}
}

// ReconcileBookings handles POST /api/cron/reconcile-bookings.
// Duplicate triggers are harmless: the underlying transition is
// idempotent, so a booking is only completed (and its inventory
// released) once.
func (ctrl *CronController) ReconcileBookings(c *gin.Context) {
	count, err := ctrl.Sweep.CompleteExpired(time.Now().UTC())
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "Reconciliation run failed.")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"completed": count})
}
