package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderStatusPending   = "Pending"
	OrderStatusCompleted = "Completed"
	OrderStatusShipped   = "Shipped"

	OrderTypeDelivery        = "Delivery"
	OrderTypeClickAndCollect = "Click and Collect"
)

// Order represents a paid storefront order.
// ProductIDs holds one "id:option" entry per unit purchased, comma separated.
type Order struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	CustomerName    string          `gorm:"not null" json:"customer_name"`
	CustomerEmail   string          `gorm:"not null;index" json:"customer_email"`
	CustomerMobile  string          `json:"customer_mobile"`
	StreetAddress   string          `json:"street_address"`
	OrderType       string          `gorm:"not null" json:"order_type"` // "Delivery" or "Click and Collect"
	ProductIDs      string          `gorm:"column:product_ids;type:text;not null" json:"product_ids"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	ClientSecret    string          `gorm:"index" json:"client_secret"`
	PaymentIntentID string          `gorm:"index" json:"payment_intent_id"`
	Status          string          `gorm:"not null;default:'Pending'" json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// IsValidOrderStatus reports whether status may be set on an order
func IsValidOrderStatus(status string) bool {
	switch status {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusShipped:
		return true
	}
	return false
}

// IsValidOrderType reports whether orderType is a supported fulfilment method
func IsValidOrderType(orderType string) bool {
	return orderType == OrderTypeDelivery || orderType == OrderTypeClickAndCollect
}
