package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/n11047500/Capstone-2024-sub000/config"
	"github.com/n11047500/Capstone-2024-sub000/models"
	"github.com/n11047500/Capstone-2024-sub000/services"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the work factor for stored password hashes
const BcryptCost = 10

// RegisterRequest represents the request body for creating an account
type RegisterRequest struct {
	FirstName      string `json:"first_name" binding:"required"`
	LastName       string `json:"last_name" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required,min=6"`
	Mobile         string `json:"mobile"`
	DateOfBirth    string `json:"date_of_birth" binding:"omitempty,datetime=2006-01-02"`
	RecaptchaToken string `json:"recaptcha_token"`
}

// LoginRequest represents the request body for logging in
type LoginRequest struct {
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required"`
	RecaptchaToken string `json:"recaptcha_token"`
}

// ForgotPasswordRequest represents the request body for starting a password reset
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest represents the request body for completing a password reset
type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=6"`
}

// verifyCaptcha writes an error response and returns false when the captcha check fails
func verifyCaptcha(c *gin.Context, token string) bool {
	valid, err := services.GetCaptchaVerifier().Verify(c.Request.Context(), token, c.ClientIP())
	if err != nil {
		respondInternalError(c, "CAPTCHA_ERROR", "Failed to verify reCAPTCHA", err)
		return false
	}
	if !valid {
		respondError(c, http.StatusBadRequest, "CAPTCHA_FAILED", "reCAPTCHA verification failed")
		return false
	}
	return true
}

func parseDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil
	}
	return &t
}

// Register handles POST /api/v1/register
func Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	if !verifyCaptcha(c, req.RecaptchaToken) {
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	db := config.GetDB()

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		respondInternalError(c, "DATABASE_ERROR", "Failed to check existing user", err)
		return
	}
	if count > 0 {
		respondError(c, http.StatusBadRequest, "USER_EXISTS", "User already exists.")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), BcryptCost)
	if err != nil {
		respondInternalError(c, "HASH_ERROR", "Failed to process password", err)
		return
	}

	user := models.User{
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        email,
		PasswordHash: string(hash),
		Mobile:       req.Mobile,
		DateOfBirth:  parseDate(req.DateOfBirth),
		Role:         models.RoleCustomer,
	}

	if err := db.Create(&user).Error; err != nil {
		// Lost a race with a concurrent registration
		if isDuplicateKey(err) {
			respondError(c, http.StatusBadRequest, "USER_EXISTS", "User already exists.")
			return
		}
		respondInternalError(c, "DATABASE_ERROR", "Failed to create user", err)
		return
	}

	respondSuccess(c, http.StatusCreated, user)
}

// Login handles POST /api/v1/login and returns a signed session token
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	if !verifyCaptcha(c, req.RecaptchaToken) {
		return
	}

	var user models.User
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := config.GetDB().Where("email = ?", email).First(&user).Error; err != nil {
		if isNotFound(err) {
			respondError(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
			return
		}
		respondInternalError(c, "DATABASE_ERROR", "Failed to fetch user", err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		respondError(c, http.StatusUnauthorized, "INCORRECT_PASSWORD", "Incorrect password.")
		return
	}

	token, err := services.GetTokenService().IssueSessionToken(&user)
	if err != nil {
		respondInternalError(c, "TOKEN_ERROR", "Failed to create session", err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"email": user.Email,
		"role":  user.Role,
		"token": token,
		"user":  user,
	})
}

// ForgotPassword handles POST /api/v1/forgot-password - emails a one hour reset link
func ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	var user models.User
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := config.GetDB().Where("email = ?", email).First(&user).Error; err != nil {
		if isNotFound(err) {
			respondError(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
			return
		}
		respondInternalError(c, "DATABASE_ERROR", "Failed to fetch user", err)
		return
	}

	token, err := services.GetTokenService().IssueResetToken(user.Email)
	if err != nil {
		respondInternalError(c, "TOKEN_ERROR", "Failed to create reset token", err)
		return
	}

	cfg := config.GetConfig()
	resetURL := fmt.Sprintf("%s/reset-password/%s", strings.TrimRight(cfg.FrontendURL, "/"), token)

	msg, err := services.PasswordResetEmail(user.Email, services.PasswordResetData{
		Name:     user.FirstName,
		ResetURL: resetURL,
	})
	if err != nil {
		respondInternalError(c, "EMAIL_ERROR", "Failed to send reset email", err)
		return
	}
	if err := services.GetMailer().Send(c.Request.Context(), msg); err != nil {
		respondInternalError(c, "EMAIL_ERROR", "Failed to send reset email", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Password reset email sent",
	})
}

// ResetPassword handles POST /api/v1/reset-password/:token
func ResetPassword(c *gin.Context) {
	emailAddr, err := services.GetTokenService().ParseResetToken(c.Param("token"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_TOKEN", "Invalid or expired token")
		return
	}

	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), BcryptCost)
	if err != nil {
		respondInternalError(c, "HASH_ERROR", "Failed to process password", err)
		return
	}

	result := config.GetDB().Model(&models.User{}).Where("email = ?", emailAddr).Update("password_hash", string(hash))
	if result.Error != nil {
		respondInternalError(c, "DATABASE_ERROR", "Failed to update password", result.Error)
		return
	}
	if result.RowsAffected == 0 {
		respondError(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Password has been reset",
	})
}
