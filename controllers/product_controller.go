package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/n11047500/Capstone-2024-sub000/config"
	"github.com/n11047500/Capstone-2024-sub000/models"
	"github.com/n11047500/Capstone-2024-sub000/utils"
	"github.com/shopspring/decimal"
)

// ProductRequest is the body for creating or replacing a product.
// It is accepted as JSON or as multipart form fields with an optional "image" file.
type ProductRequest struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Description string          `json:"description"`
	Dimensions  string          `json:"dimensions"`
	Options     string          `json:"options"`
	ImageURL    string          `json:"image_url"`
}

func (r *ProductRequest) validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required")
	}
	if !r.Price.IsPositive() {
		return errors.New("price must be greater than 0")
	}
	if r.Quantity < 0 {
		return errors.New("quantity cannot be negative")
	}
	return nil
}

// bindProductRequest reads a ProductRequest from JSON or multipart form data,
// saving an uploaded image to the local upload directory.
func bindProductRequest(c *gin.Context) (*ProductRequest, bool) {
	var req ProductRequest

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		req.Name = c.PostForm("name")
		req.Description = c.PostForm("description")
		req.Dimensions = c.PostForm("dimensions")
		req.Options = c.PostForm("options")
		req.ImageURL = c.PostForm("image_url")

		price, err := decimal.NewFromString(c.DefaultPostForm("price", "0"))
		if err != nil {
			respondValidationError(c, errors.New("price must be a number"))
			return nil, false
		}
		req.Price = price

		quantity, err := strconv.Atoi(c.DefaultPostForm("quantity", "0"))
		if err != nil {
			respondValidationError(c, errors.New("quantity must be a whole number"))
			return nil, false
		}
		req.Quantity = quantity
	} else if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return nil, false
	}

	if err := req.validate(); err != nil {
		respondValidationError(c, err)
		return nil, false
	}

	if fileHeader, err := c.FormFile("image"); err == nil {
		if err := utils.ValidateImageFile(fileHeader); err != nil {
			respondUploadError(c, err)
			return nil, false
		}

		filename, err := utils.SaveUploadedFile(fileHeader, utils.UploadDir)
		if err != nil {
			respondInternalError(c, "UPLOAD_ERROR", "Failed to save image", err)
			return nil, false
		}
		req.ImageURL = utils.GetImageURL(filename)
	}

	return &req, true
}

// ListProducts handles GET /api/v1/products - lists the catalog, optionally filtered by ?ids=1,2,3
func ListProducts(c *gin.Context) {
	db := config.GetDB()
	query := db.Order("id ASC")

	if idsParam := strings.TrimSpace(c.Query("ids")); idsParam != "" {
		ids := []uint{}
		for _, part := range strings.Split(idsParam, ",") {
			id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
			if err != nil {
				respondError(c, http.StatusBadRequest, "INVALID_IDS", "ids must be a comma-separated list of numbers")
				return
			}
			ids = append(ids, uint(id))
		}
		query = query.Where("id IN ?", ids)
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		respondInternalError(c, "DATABASE_ERROR", "Failed to fetch products", err)
		return
	}

	respondSuccess(c, http.StatusOK, products)
}

// GetProduct handles GET /api/v1/products/:id
func GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var product models.Product
	if err := config.GetDB().First(&product, id).Error; err != nil {
		if isNotFound(err) {
			respondError(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found")
			return
		}
		respondInternalError(c, "DATABASE_ERROR", "Failed to fetch product", err)
		return
	}

	respondSuccess(c, http.StatusOK, product)
}

// CreateProduct handles POST /api/v1/products - employee only
func CreateProduct(c *gin.Context) {
	req, ok := bindProductRequest(c)
	if !ok {
		return
	}

	product := models.Product{
		Name:        strings.TrimSpace(req.Name),
		Price:       req.Price,
		Quantity:    req.Quantity,
		Description: req.Description,
		Dimensions:  req.Dimensions,
		Options:     req.Options,
		ImageURL:    req.ImageURL,
	}

	if err := config.GetDB().Create(&product).Error; err != nil {
		respondInternalError(c, "DATABASE_ERROR", "Failed to create product", err)
		return
	}

	respondSuccess(c, http.StatusCreated, product)
}

// UpdateProduct handles PUT /api/v1/products/:id - employee only
func UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	db := config.GetDB()
	var product models.Product
	if err := db.First(&product, id).Error; err != nil {
		if isNotFound(err) {
			respondError(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found")
			return
		}
		respondInternalError(c, "DATABASE_ERROR", "Failed to fetch product", err)
		return
	}

	req, ok := bindProductRequest(c)
	if !ok {
		return
	}

	updates := map[string]interface{}{
		"name":        strings.TrimSpace(req.Name),
		"price":       req.Price,
		"quantity":    req.Quantity,
		"description": req.Description,
		"dimensions":  req.Dimensions,
		"options":     req.Options,
	}
	if req.ImageURL != "" {
		updates["image_url"] = req.ImageURL
	}

	if err := db.Model(&product).Updates(updates).Error; err != nil {
		respondInternalError(c, "DATABASE_ERROR", "Failed to update product", err)
		return
	}

	if err := db.First(&product, id).Error; err != nil {
		respondInternalError(c, "DATABASE_ERROR", "Failed to fetch updated product", err)
		return
	}

	respondSuccess(c, http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/v1/products/:id - employee only
func DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result := config.GetDB().Delete(&models.Product{}, id)
	if result.Error != nil {
		respondInternalError(c, "DATABASE_ERROR", "Failed to delete product", result.Error)
		return
	}
	if result.RowsAffected == 0 {
		respondError(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Product deleted successfully",
	})
}

// SearchProducts handles GET /api/v1/search?query= - matches name or description
func SearchProducts(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		respondError(c, http.StatusBadRequest, "MISSING_QUERY", "Search query is required")
		return
	}

	pattern := "%" + strings.ToLower(query) + "%"
	var products []models.Product
	err := config.GetDB().
		Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern).
		Order("name ASC").
		Find(&products).Error
	if err != nil {
		respondInternalError(c, "DATABASE_ERROR", "Failed to search products", err)
		return
	}

	respondSuccess(c, http.StatusOK, products)
}
