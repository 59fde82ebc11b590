package controllers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/n11047500/Capstone-2024-sub000/config"
	"github.com/n11047500/Capstone-2024-sub000/models"
	"github.com/n11047500/Capstone-2024-sub000/services"
	"github.com/tealeg/xlsx"
)

// UpdateOrderStatusRequest represents the request body for changing an order's status
type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

// ListOrders handles GET /api/v1/orders - employee only, newest first, optional ?status= filter
func ListOrders(c *gin.Context) {
	status := c.Query("status")
	if status != "" && !models.IsValidOrderStatus(status) {
		respondError(c, http.StatusBadRequest, "INVALID_STATUS", "Invalid status filter. Must be one of: Pending, Completed")
		return
	}

	query := config.GetDB().Order("created_at DESC").Order("id DESC")
	if status != "" {
		query = query.Where("status = ?", normalizeOrderStatus(status))
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		respondInternalError(c, "DATABASE_ERROR", "Failed to fetch orders", err)
		return
	}

	respondSuccess(c, http.StatusOK, orders)
}

// GetOrder handles GET /api/v1/orders/:id - employee only, includes grouped line items
func GetOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	db := config.GetDB()
	var order models.Order
	if err := db.First(&order, id).Error; err != nil {
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

	respondSuccess(c, http.StatusOK, OrderWithProducts{Order: order, Products: lines})
}

// UpdateOrderStatus handles PUT /api/v1/orders/:id - employee only
func UpdateOrderStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Status is required")
		return
	}
	if !models.IsValidOrderStatus(req.Status) {
		respondError(c, http.StatusBadRequest, "INVALID_STATUS", "Invalid status. Must be one of: Pending, Completed, Shipped")
		return
	}

	db := config.GetDB()
	var order models.Order
	if err := db.First(&order, id).Error; err != nil {
		if isNotFound(err) {
			respondError(c, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found")
			return
		}
		respondInternalError(c, "DATABASE_ERROR", "Failed to fetch order", err)
		return
	}

	if err := db.Model(&order).Update("status", normalizeOrderStatus(req.Status)).Error; err != nil {
		respondInternalError(c, "DATABASE_ERROR", "Failed to update order status", err)
		return
	}

	respondSuccess(c, http.StatusOK, order)
}

// ExportOrders handles GET /api/v1/orders/export - employee only, xlsx download
func ExportOrders(c *gin.Context) {
	status := c.Query("status")
	if status != "" && !models.IsValidOrderStatus(status) {
		respondError(c, http.StatusBadRequest, "INVALID_STATUS", "Invalid status filter. Must be one of: Pending, Completed")
		return
	}

	query := config.GetDB().Order("created_at DESC").Order("id DESC")
	if status != "" {
		query = query.Where("status = ?", normalizeOrderStatus(status))
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		respondInternalError(c, "DATABASE_ERROR", "Failed to fetch orders", err)
		return
	}

	file, err := buildOrdersWorkbook(orders)
	if err != nil {
		respondInternalError(c, "EXPORT_ERROR", "Failed to create Excel sheet", err)
		return
	}

	filename := fmt.Sprintf("orders-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Transfer-Encoding", "binary")
	c.Header("Expires", "0")

	if err := file.Write(c.Writer); err != nil {
		log.Printf("Failed to write Excel file: %v", err)
	}
}

func buildOrdersWorkbook(orders []models.Order) (*xlsx.File, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		return nil, err
	}

	headers := []string{
		"ID", "Customer", "Email", "Mobile", "Street Address", "Order Type",
		"Products", "Total", "Status", "Payment Intent", "Created At",
	}
	headerRow := sheet.AddRow()
	for _, h := range headers {
		headerRow.AddCell().SetValue(h)
	}

	for _, o := range orders {
		row := sheet.AddRow()
		row.AddCell().SetInt(int(o.ID))
		row.AddCell().SetValue(o.CustomerName)
		row.AddCell().SetValue(o.CustomerEmail)
		row.AddCell().SetValue(o.CustomerMobile)
		row.AddCell().SetValue(o.StreetAddress)
		row.AddCell().SetValue(o.OrderType)
		row.AddCell().SetValue(o.ProductIDs)
		total, _ := o.TotalAmount.Float64()
		row.AddCell().SetFloatWithFormat(total, "0.00")
		row.AddCell().SetValue(o.Status)
		row.AddCell().SetValue(o.PaymentIntentID)
		row.AddCell().SetValue(o.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	return file, nil
}

// OrderFeed handles GET /api/v1/orders/feed - employee only websocket of new orders
func OrderFeed(c *gin.Context) {
	feed := services.GetOrderFeed()
	if feed == nil {
		respondError(c, http.StatusServiceUnavailable, "FEED_UNAVAILABLE", "Order feed is not running")
		return
	}

	if err := feed.Serve(c.Writer, c.Request); err != nil {
		log.Printf("Order feed upgrade failed: %v", err)
	}
}

// normalizeOrderStatus stores Shipped as Completed so status filters see one value
func normalizeOrderStatus(status string) string {
	if status == models.OrderStatusShipped {
		return models.OrderStatusCompleted
	}
	return status
}
