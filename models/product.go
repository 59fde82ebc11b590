package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func init() {
	// Prices go out as JSON numbers so the storefront can do arithmetic on them directly
	decimal.MarshalJSONWithoutQuotes = true
}

// Product represents a planter box in the catalog
type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"not null" json:"name"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Quantity    int             `gorm:"not null;default:0" json:"quantity"` // units available
	Description string          `gorm:"type:text" json:"description"`
	Dimensions  string          `json:"dimensions"`
	Options     string          `json:"options"` // comma-separated, e.g. "Default,Custom"
	ImageURL    string          `json:"image_url"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// OptionList returns the product options as a trimmed slice, skipping empty entries
func (p Product) OptionList() []string {
	if strings.TrimSpace(p.Options) == "" {
		return []string{}
	}

	parts := strings.Split(p.Options, ",")
	options := make([]string, 0, len(parts))
	for _, part := range parts {
		if opt := strings.TrimSpace(part); opt != "" {
			options = append(options, opt)
		}
	}
	return options
}

// OffersOption reports whether the product can be ordered with option.
// A product without listed options is only sold as "Default".
func (p Product) OffersOption(option string) bool {
	options := p.OptionList()
	if len(options) == 0 {
		return option == "Default"
	}
	for _, o := range options {
		if o == option {
			return true
		}
	}
	return false
}
