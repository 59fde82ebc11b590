package controllers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/n11047500/Capstone-2024-sub000/config"
	"github.com/n11047500/Capstone-2024-sub000/models"
	"github.com/n11047500/Capstone-2024-sub000/services"
	"github.com/n11047500/Capstone-2024-sub000/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CheckoutRequest is the body posted by the storefront's payment step.
// ProductIDs holds one "id:option" entry per unit in the cart.
type CheckoutRequest struct {
	Name            string          `json:"name"`
	Email           string          `json:"email"`
	Mobile          string          `json:"mobile"`
	StreetAddress   string          `json:"street_address"`
	OrderType       string          `json:"order_type"`
	PaymentMethodID string          `json:"payment_method_id"`
	ProductIDs      []string        `json:"product_ids"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	IdempotencyKey  string          `json:"idempotency_key"`
}

func (r *CheckoutRequest) missingFields() bool {
	return strings.TrimSpace(r.Name) == "" ||
		strings.TrimSpace(r.Email) == "" ||
		r.PaymentMethodID == "" ||
		len(r.ProductIDs) == 0 ||
		r.TotalAmount.IsZero() ||
		r.OrderType == ""
}

// CreateCheckoutOrder handles POST /api/v1/checkout/orders.
// It confirms a PaymentIntent and records the order when the payment succeeds or needs 3-D Secure.
func CreateCheckoutOrder(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	if req.missingFields() {
		respondError(c, http.StatusBadRequest, "MISSING_FIELDS", "Missing required fields")
		return
	}
	if !models.IsValidOrderType(req.OrderType) {
		respondError(c, http.StatusBadRequest, "INVALID_ORDER_TYPE", "Order type must be Delivery or Click and Collect")
		return
	}
	if req.OrderType == models.OrderTypeDelivery && strings.TrimSpace(req.StreetAddress) == "" {
		respondError(c, http.StatusBadRequest, "MISSING_FIELDS", "Street address is required for delivery")
		return
	}

	refs := utils.ParseProductIDs(strings.Join(req.ProductIDs, ","))
	if len(refs) == 0 {
		respondError(c, http.StatusBadRequest, "MISSING_FIELDS", "Missing required fields")
		return
	}
	productIDs := utils.JoinProductIDs(refs)

	db := config.GetDB()
	ids := utils.UniqueProductIDs(refs)
	var products []models.Product
	if err := db.Where("id IN ?", ids).Find(&products).Error; err != nil {
		respondInternalError(c, "DATABASE_ERROR", "Failed to fetch products", err)
		return
	}
	if len(products) != len(ids) {
		respondError(c, http.StatusBadRequest, "UNKNOWN_PRODUCT", "One or more products no longer exist")
		return
	}

	byID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	for _, ref := range refs {
		if product := byID[ref.ProductID]; !product.OffersOption(ref.Option) {
			respondError(c, http.StatusBadRequest, "INVALID_OPTION",
				fmt.Sprintf("%s is not available with option %q", product.Name, ref.Option))
			return
		}
	}

	lines := utils.GroupProducts(productIDs, products)
	total := utils.LinesTotal(lines)
	if !total.Equal(req.TotalAmount.Round(2)) {
		respondError(c, http.StatusBadRequest, "TOTAL_MISMATCH", "Total amount does not match the cart")
		return
	}

	payment, err := services.GetPaymentService().CreatePaymentIntent(c.Request.Context(), services.PaymentRequest{
		AmountCents:     utils.ToMinorUnits(total),
		PaymentMethodID: req.PaymentMethodID,
		ReceiptEmail:    req.Email,
		Description:     "Planter box order",
		IdempotencyKey:  req.IdempotencyKey,
	})
	if services.IsCardDeclined(err) {
		log.Printf("Card declined for %s: %v", req.Email, err)
		respondError(c, http.StatusPaymentRequired, "PAYMENT_FAILED", "Payment failed")
		return
	}
	if err != nil {
		respondInternalError(c, "PAYMENT_ERROR", "Payment processing failed", err)
		return
	}

	if payment.Status != services.PaymentStatusSucceeded && payment.Status != services.PaymentStatusRequiresAction {
		log.Printf("Payment intent %s ended in status %s", payment.ID, payment.Status)
		respondError(c, http.StatusPaymentRequired, "PAYMENT_FAILED", "Payment failed")
		return
	}

	order := models.Order{
		CustomerName:    strings.TrimSpace(req.Name),
		CustomerEmail:   strings.TrimSpace(req.Email),
		CustomerMobile:  req.Mobile,
		StreetAddress:   req.StreetAddress,
		OrderType:       req.OrderType,
		ProductIDs:      productIDs,
		TotalAmount:     total,
		ClientSecret:    payment.ClientSecret,
		PaymentIntentID: payment.ID,
		Status:          models.OrderStatusPending,
	}

	created := false
	err = db.Transaction(func(tx *gorm.DB) error {
		// A retried request with the same idempotency key returns the same intent
		var existing models.Order
		err := tx.Where("payment_intent_id = ?", payment.ID).First(&existing).Error
		if err == nil {
			order = existing
			return nil
		}
		if !isNotFound(err) {
			return err
		}
		created = true
		return tx.Create(&order).Error
	})
	if err != nil {
		respondInternalError(c, "DATABASE_ERROR", "Failed to save order", err)
		return
	}

	if payment.Status == services.PaymentStatusRequiresAction {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data": gin.H{
				"id":              order.ID,
				"requires_action": true,
				"client_secret":   order.ClientSecret,
			},
		})
		return
	}

	if created {
		if err := sendOrderConfirmation(c.Request.Context(), &order, lines); err != nil {
			log.Printf("Failed to send confirmation for order %d: %v", order.ID, err)
		}
		if feed := services.GetOrderFeed(); feed != nil {
			feed.Broadcast(&order)
		}
	}

	respondSuccess(c, http.StatusCreated, gin.H{
		"id":            order.ID,
		"client_secret": order.ClientSecret,
		"products":      lines,
		"order":         order,
	})
}

// GetCheckoutOrderDetails handles GET /api/v1/checkout/orders/details?client_secret=
func GetCheckoutOrderDetails(c *gin.Context) {
	clientSecret := c.Query("client_secret")
	if clientSecret == "" {
		respondError(c, http.StatusBadRequest, "MISSING_CLIENT_SECRET", "client_secret is required")
		return
	}

	db := config.GetDB()
	var order models.Order
	if err := db.Where("client_secret = ?", clientSecret).First(&order).Error; err != nil {
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

// sendOrderConfirmation emails the customer their grouped order lines
func sendOrderConfirmation(ctx context.Context, order *models.Order, lines []utils.OrderLine) error {
	email, err := services.OrderConfirmationEmail(services.OrderConfirmationData{
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		OrderID:       order.ID,
		OrderType:     order.OrderType,
		StreetAddress: order.StreetAddress,
		Lines:         lines,
		Total:         order.TotalAmount,
	})
	if err != nil {
		return err
	}
	return services.GetMailer().Send(ctx, email)
}
