package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/n11047500/Capstone-2024-sub000/config"
	"github.com/n11047500/Capstone-2024-sub000/models"
	"github.com/n11047500/Capstone-2024-sub000/services"
)

// ContactRequest represents the contact form body
type ContactRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Message string `json:"message" binding:"required,max=5000"`
}

// ResendConfirmationRequest identifies an order by its payment client secret
type ResendConfirmationRequest struct {
	ClientSecret string `json:"client_secret" binding:"required"`
}

// SendContactEmail handles POST /api/v1/send-contact-email - forwards the message to the store inbox
func SendContactEmail(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	email, err := services.ContactEmail(config.GetConfig().StoreEmail, services.ContactData{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	})
	if err != nil {
		respondInternalError(c, "EMAIL_ERROR", "Failed to send email", err)
		return
	}
	if err := services.GetMailer().Send(c.Request.Context(), email); err != nil {
		respondInternalError(c, "EMAIL_ERROR", "Failed to send email", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Email sent successfully",
	})
}

// ResendOrderConfirmation handles POST /api/v1/send-email - re-sends an order's confirmation
func ResendOrderConfirmation(c *gin.Context) {
	var req ResendConfirmationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	db := config.GetDB()
	var order models.Order
	if err := db.Where("client_secret = ?", req.ClientSecret).First(&order).Error; err != nil {
		if isNotFound(err) {
			respondError(c, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found")
			return
		}
		respondInternalError(c, "DATABASE_ERROR", "Failed to fetch order", err)
		return
	}

	lines, err := orderLines(db, &order)
	if err != nil {
		respondInternalError(c, "DATABASE_ERROR", "Failed to fetch order products", err)
		return
	}

	if err := sendOrderConfirmation(c.Request.Context(), &order, lines); err != nil {
		respondInternalError(c, "EMAIL_ERROR", "Failed to send email", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Email sent successfully",
	})
}
