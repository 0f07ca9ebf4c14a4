// controllers/user_controller.go
package controllers

import (
	"errors"
	"net/http"

	"carrental-backend/middleware"
	"carrental-backend/models"
	"carrental-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type UserController struct {
	DB *gorm.DB
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{DB: db}
}

// Me returns the authenticated user's profile.
func (ctrl *UserController) Me(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "error.unauthenticated", "Authentication required.")
		return
	}

	var user models.User
	if err := ctrl.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.JSONError(c, http.StatusNotFound, "error.notFound", "User not found.")
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "Failed to load user.")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, user)
}

// AdminListUsers handles GET /api/users (admin).
func (ctrl *UserController) AdminListUsers(c *gin.Context) {
	var users []models.User
	if err := ctrl.DB.Order("id").Find(&users).Error; err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "Failed to load users.")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, users)
}

// AdminGetUser handles GET /api/users/:id (admin).
func (ctrl *UserController) AdminGetUser(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var user models.User
	if err := ctrl.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.JSONError(c, http.StatusNotFound, "error.notFound", "User not found.")
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "Failed to load user.")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, user)
}

// AdminDeleteUser handles DELETE /api/users/:id (admin). Soft delete;
// the user's booking history stays intact.
func (ctrl *UserController) AdminDeleteUser(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	callerID, _ := middleware.UserID(c)
	if callerID == id {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidRequest", "You cannot delete your own account.")
		return
	}

	res := ctrl.DB.Delete(&models.User{}, id)
	if res.Error != nil {
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "Failed to delete user.")
		return
	}
	if res.RowsAffected == 0 {
		utils.JSONError(c, http.StatusNotFound, "error.notFound", "User not found.")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"deleted": id})
}
