// controllers/auth_controller.go
package controllers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"carrental-backend/models"
	"carrental-backend/utils"

	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const sessionCookie = "session"

type AuthController struct {
	DB     *gorm.DB
	Secret string
}

func NewAuthController(db *gorm.DB, secret string) *AuthController {
	return &AuthController{DB: db, Secret: secret}
}

type registerPayload struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPayload struct {
	Email string `json:"email"`
}

type resetPayload struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func isDuplicateKeyErr(err error) bool {
	var me *mysqldrv.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	lc := strings.ToLower(err.Error())
	return strings.Contains(lc, "duplicate") || strings.Contains(lc, "unique")
}

func (ctrl *AuthController) sessionTTL() time.Duration {
	return 72 * time.Hour
}

// secureCookies is controlled by COOKIE_SECURE so local HTTP
// development still works; set it to "true" behind TLS.
func secureCookies() bool {
	return strings.EqualFold(utils.EnvOrDefault("COOKIE_SECURE", "false"), "true")
}

// Register creates an unverified user and sends the verification
// link. The response never includes the password hash.
func (ctrl *AuthController) Register(c *gin.Context) {
	var payload registerPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONErrorDetails(c, http.StatusBadRequest, "error.invalidPayload",
			"full_name, email and password are required.", err.Error())
		return
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if email == "" || !strings.Contains(email, "@") {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidRequest", "A valid email address is required.")
		return
	}
	if len(payload.Password) < 8 {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidRequest", "Password must be at least 8 characters.")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "Failed to process password.")
		return
	}

	verifyToken, err := utils.GenerateSecureToken(32)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "Failed to generate token.")
		return
	}

	user := models.User{
		FullName:    strings.TrimSpace(payload.FullName),
		Email:       email,
		Password:    string(hash),
		Role:        "user",
		VerifyToken: &verifyToken,
	}
	if err := ctrl.DB.Create(&user).Error; err != nil {
		if isDuplicateKeyErr(err) {
			utils.JSONError(c, http.StatusConflict, "error.emailTaken", "An account with this email already exists.")
			return
		}
		log.Printf("register: create user failed: %v", err)
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "Failed to create account.")
		return
	}

	frontend := utils.EnvOrDefault("FRONTEND_URL", "http://localhost:3000")
	verifyLink := strings.TrimRight(frontend, "/") + "/verify?token=" + verifyToken
	if mailErr := utils.SendVerificationEmail(user.Email, user.FullName, verifyLink); mailErr != nil {
		log.Printf("register: verification email for user %d failed: %v", user.ID, mailErr)
	}

	utils.JSONSuccess(c, http.StatusCreated, user)
}

// Login checks credentials and sets the HTTP-only session cookie.
func (ctrl *AuthController) Login(c *gin.Context) {
	var payload loginPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidPayload", "email and password are required.")
		return
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if email == "" || payload.Password == "" {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidRequest", "email and password are required.")
		return
	}

	var user models.User
	if err := ctrl.DB.Where("email = ?", email).First(&user).Error; err != nil {
		utils.JSONError(c, http.StatusUnauthorized, "error.invalidCredentials", "Invalid email or password.")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(payload.Password)) != nil {
		utils.JSONError(c, http.StatusUnauthorized, "error.invalidCredentials", "Invalid email or password.")
		return
	}

	token, err := utils.NewSessionToken(ctrl.Secret, user.ID, user.Role, ctrl.sessionTTL())
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "Failed to create session.")
		return
	}

	c.SetCookie(sessionCookie, token, int(ctrl.sessionTTL().Seconds()), "/", "", secureCookies(), true)
	utils.JSONSuccess(c, http.StatusOK, gin.H{
		"user":  user,
		"token": token,
	})
}

// Logout clears the session cookie.
func (ctrl *AuthController) Logout(c *gin.Context) {
	c.SetCookie(sessionCookie, "", -1, "/", "", secureCookies(), true)
	utils.JSONSuccess(c, http.StatusOK, gin.H{"logged_out": true})
}

// Verify handles GET /api/auth/verify?token=.
func (ctrl *AuthController) Verify(c *gin.Context) {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidRequest", "token is required.")
		return
	}

	var user models.User
	if err := ctrl.DB.Where("verify_token = ?", token).First(&user).Error; err != nil {
		utils.JSONError(c, http.StatusUnauthorized, "error.invalidToken", "The verification link is invalid or already used.")
		return
	}

	if err := ctrl.DB.Model(&user).Updates(map[string]interface{}{
		"verified":     true,
		"verify_token": nil,
	}).Error; err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "Failed to verify account.")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"verified": true})
}

// Forgot always answers 200 so the endpoint can't be used to probe
// which emails exist.
func (ctrl *AuthController) Forgot(c *gin.Context) {
	var payload forgotPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidPayload", "email is required.")
		return
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	var user models.User
	if err := ctrl.DB.Where("email = ?", email).First(&user).Error; err == nil {
		if token, tErr := utils.GenerateSecureToken(24); tErr == nil {
			expiry := time.Now().UTC().Add(1 * time.Hour)
			ctrl.DB.Model(&user).Updates(map[string]interface{}{
				"reset_token":         token,
				"reset_token_expires": expiry,
			})

			frontend := utils.EnvOrDefault("FRONTEND_URL", "http://localhost:3000")
			resetLink := strings.TrimRight(frontend, "/") + "/reset?token=" + token
			if mailErr := utils.SendPasswordResetEmail(user.Email, user.FullName, resetLink); mailErr != nil {
				log.Printf("forgot: reset email for user %d failed: %v", user.ID, mailErr)
			}
		}
	}

	utils.JSONSuccess(c, http.StatusOK, gin.H{"message": "If this email exists, a reset link was sent."})
}

// Reset consumes a reset token and sets the new password.
func (ctrl *AuthController) Reset(c *gin.Context) {
	var payload resetPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidPayload", "token and password are required.")
		return
	}
	if len(payload.Password) < 8 {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidRequest", "Password must be at least 8 characters.")
		return
	}

	var user models.User
	err := ctrl.DB.
		Where("reset_token = ? AND reset_token_expires > ?", payload.Token, time.Now().UTC()).
		First(&user).Error
	if err != nil {
		utils.JSONError(c, http.StatusUnauthorized, "error.invalidToken", "The reset link is invalid or expired.")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "Failed to process password.")
		return
	}

	if err := ctrl.DB.Model(&user).Updates(map[string]interface{}{
		"password":            string(hash),
		"reset_token":         nil,
		"reset_token_expires": nil,
	}).Error; err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "Failed to reset password.")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"reset": true})
}
