package controllers

import (
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/n11047500/Capstone-2024-sub000/config"
	"github.com/n11047500/Capstone-2024-sub000/models"
)

// CreateReviewRequest represents the request body for posting a review
type CreateReviewRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
	Comment   string `json:"comment" binding:"max=2000"`
	UserEmail string `json:"user_email" binding:"omitempty,email"`
}

// GetProductReviews handles GET /api/v1/reviews/:productId - reviews plus average rating and count
func GetProductReviews(c *gin.Context) {
	productID, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}

	db := config.GetDB()
	var reviews []models.Review
	if err := db.Where("product_id = ?", productID).Order("created_at DESC").Find(&reviews).Error; err != nil {
		respondInternalError(c, "DATABASE_ERROR", "Failed to fetch reviews", err)
		return
	}

	average := 0.0
	if len(reviews) > 0 {
		sum := 0
		for _, r := range reviews {
			sum += r.Rating
		}
		average = math.Round(float64(sum)/float64(len(reviews))*100) / 100
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"reviews": reviews,
		"average": average,
		"count":   len(reviews),
	})
}

// CreateReview handles POST /api/v1/reviews - guests may review, a known user_email links the account
func CreateReview(c *gin.Context) {
	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	db := config.GetDB()
	var product models.Product
	if err := db.First(&product, req.ProductID).Error; err != nil {
		if isNotFound(err) {
			respondError(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found")
			return
		}
		respondInternalError(c, "DATABASE_ERROR", "Failed to fetch product", err)
		return
	}

	review := models.Review{
		ProductID: product.ID,
		Rating:    req.Rating,
		Comment:   strings.TrimSpace(req.Comment),
	}

	if req.UserEmail != "" {
		var user models.User
		err := db.Where("email = ?", strings.ToLower(req.UserEmail)).First(&user).Error
		if err == nil {
			review.UserID = &user.ID
		} else if !isNotFound(err) {
			respondInternalError(c, "DATABASE_ERROR", "Failed to fetch user", err)
			return
		}
	}

	if err := db.Omit("Product", "User").Create(&review).Error; err != nil {
		respondInternalError(c, "DATABASE_ERROR", "Failed to create review", err)
		return
	}

	respondSuccess(c, http.StatusCreated, review)
}
