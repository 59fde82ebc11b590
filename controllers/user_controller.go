package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/n11047500/Capstone-2024-sub000/config"
	"github.com/n11047500/Capstone-2024-sub000/middleware"
	"github.com/n11047500/Capstone-2024-sub000/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UpdateUserRequest represents the request body for updating a user profile.
// Empty fields are left unchanged; a non-nil address is upserted.
type UpdateUserRequest struct {
	FirstName       string  `json:"first_name"`
	LastName        string  `json:"last_name"`
	Mobile          string  `json:"mobile"`
	DateOfBirth     string  `json:"date_of_birth" binding:"omitempty,datetime=2006-01-02"`
	ShippingAddress *string `json:"shipping_address"`
	BillingAddress  *string `json:"billing_address"`
}

// UpdateRoleRequest represents the request body for changing a user's role
type UpdateRoleRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required,oneof=customer employee"`
}

// authorizeUserAccess lets users read and edit their own profile and employees any profile
func authorizeUserAccess(c *gin.Context, email string) bool {
	callerEmail, err := middleware.GetUserEmail(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return false
	}
	role, _ := middleware.GetRole(c)

	if !strings.EqualFold(callerEmail, email) && role != models.RoleEmployee {
		respondError(c, http.StatusForbidden, "FORBIDDEN", "You can only access your own profile")
		return false
	}
	return true
}

// GetUser handles GET /api/v1/user/:email - returns the profile and saved addresses
func GetUser(c *gin.Context) {
	email := strings.ToLower(c.Param("email"))
	if !authorizeUserAccess(c, email) {
		return
	}

	var user models.User
	if err := config.GetDB().Preload("Addresses").Where("email = ?", email).First(&user).Error; err != nil {
		if isNotFound(err) {
			respondError(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
			return
		}
		respondInternalError(c, "DATABASE_ERROR", "Failed to fetch user", err)
		return
	}

	respondSuccess(c, http.StatusOK, user)
}

// UpdateUser handles PUT /api/v1/user/:email - updates profile fields and addresses in one transaction
func UpdateUser(c *gin.Context) {
	email := strings.ToLower(c.Param("email"))
	if !authorizeUserAccess(c, email) {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	db := config.GetDB()
	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if isNotFound(err) {
			respondError(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
			return
		}
		respondInternalError(c, "DATABASE_ERROR", "Failed to fetch user", err)
		return
	}

	updates := make(map[string]interface{})
	if req.FirstName != "" {
		updates["first_name"] = strings.TrimSpace(req.FirstName)
	}
	if req.LastName != "" {
		updates["last_name"] = strings.TrimSpace(req.LastName)
	}
	if req.Mobile != "" {
		updates["mobile"] = req.Mobile
	}
	if req.DateOfBirth != "" {
		updates["date_of_birth"] = parseDate(req.DateOfBirth)
	}

	addresses := []models.Address{}
	if req.ShippingAddress != nil {
		addresses = append(addresses, models.Address{UserID: user.ID, Type: models.AddressShipping, Address: *req.ShippingAddress})
	}
	if req.BillingAddress != nil {
		addresses = append(addresses, models.Address{UserID: user.ID, Type: models.AddressBilling, Address: *req.BillingAddress})
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&user).Updates(updates).Error; err != nil {
				return err
			}
		}
		if len(addresses) > 0 {
			return tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "type"}},
				DoUpdates: clause.AssignmentColumns([]string{"address", "updated_at"}),
			}).Create(&addresses).Error
		}
		return nil
	})
	if err != nil {
		respondInternalError(c, "DATABASE_ERROR", "Failed to update user profile", err)
		return
	}

	if err := db.Preload("Addresses").First(&user, user.ID).Error; err != nil {
		respondInternalError(c, "DATABASE_ERROR", "Failed to fetch updated profile", err)
		return
	}

	respondSuccess(c, http.StatusOK, user)
}

// UpdateRole handles POST /api/v1/update-role - employee only
func UpdateRole(c *gin.Context) {
	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	db := config.GetDB()
	email := strings.ToLower(strings.TrimSpace(req.Email))

	// MySQL reports changed rows, so an unchanged role would look like a missing user
	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if isNotFound(err) {
			respondError(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
			return
		}
		respondInternalError(c, "DATABASE_ERROR", "Failed to fetch user", err)
		return
	}

	if user.Role != req.Role {
		if err := db.Model(&user).Update("role", req.Role).Error; err != nil {
			respondInternalError(c, "DATABASE_ERROR", "Failed to update role", err)
			return
		}
		user.Role = req.Role
	}

	respondSuccess(c, http.StatusOK, user)
}
