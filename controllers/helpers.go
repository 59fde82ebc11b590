package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/n11047500/Capstone-2024-sub000/models"
	"github.com/n11047500/Capstone-2024-sub000/utils"
	"gorm.io/gorm"
)

// respondError writes the standard error envelope
func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// respondValidationError writes a 400 carrying the binding error as details
func respondValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "VALIDATION_ERROR",
			"message": "Invalid request data",
			"details": err.Error(),
		},
	})
}

// respondInternalError logs err and writes a generic 500
func respondInternalError(c *gin.Context, code, message string, err error) {
	log.Printf("%s: %s: %v", code, message, err)
	respondError(c, http.StatusInternalServerError, code, message)
}

// respondSuccess writes the standard success envelope
func respondSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

// respondUploadError maps file validation failures to 400 with their code
func respondUploadError(c *gin.Context, err error) {
	var uploadErr *utils.FileUploadError
	if errors.As(err, &uploadErr) {
		respondError(c, http.StatusBadRequest, uploadErr.Code, uploadErr.Message)
		return
	}
	respondInternalError(c, "UPLOAD_ERROR", "Failed to process uploaded file", err)
}

// parseIDParam reads a positive numeric path parameter
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// isNotFound reports whether err is gorm's record-not-found
func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// isDuplicateKey detects unique constraint violations across MySQL, PostgreSQL and SQLite
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate") ||
		strings.Contains(errMsg, "unique constraint") ||
		strings.Contains(errMsg, "unique")
}

// orderLines loads the products referenced by an order and groups them into line items
func orderLines(db *gorm.DB, order *models.Order) ([]utils.OrderLine, error) {
	ids := utils.UniqueProductIDs(utils.ParseProductIDs(order.ProductIDs))
	if len(ids) == 0 {
		return []utils.OrderLine{}, nil
	}

	var products []models.Product
	if err := db.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return utils.GroupProducts(order.ProductIDs, products), nil
}

// OrderWithProducts is an order plus its reconstructed line items
type OrderWithProducts struct {
	models.Order
	Products []utils.OrderLine `json:"products"`
}
