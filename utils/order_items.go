package utils

import (
	"strconv"
	"strings"

	"github.com/n11047500/Capstone-2024-sub000/models"
	"github.com/shopspring/decimal"
)

// ProductRef is one "id:option" entry of an order's ProductIDs string
type ProductRef struct {
	ProductID uint
	Option    string
}

// String renders the reference in the stored "id:option" form
func (r ProductRef) String() string {
	return strconv.FormatUint(uint64(r.ProductID), 10) + ":" + r.Option
}

// OrderLine is a reconstructed order line item
type OrderLine struct {
	ProductID  uint            `json:"product_id"`
	Name       string          `json:"name"`
	Option     string          `json:"option"`
	ImageURL   string          `json:"image_url"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// ParseProductIDs splits a denormalised "id:option,id:option" string.
// An entry without an option gets "Default"; entries with a non-numeric id are skipped.
func ParseProductIDs(productIDs string) []ProductRef {
	refs := []ProductRef{}
	for _, entry := range strings.Split(productIDs, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		idPart, option, found := strings.Cut(entry, ":")
		if !found || strings.TrimSpace(option) == "" {
			option = "Default"
		}

		id, err := strconv.ParseUint(strings.TrimSpace(idPart), 10, 64)
		if err != nil {
			continue
		}
		refs = append(refs, ProductRef{ProductID: uint(id), Option: strings.TrimSpace(option)})
	}
	return refs
}

// JoinProductIDs is the inverse of ParseProductIDs
func JoinProductIDs(refs []ProductRef) string {
	parts := make([]string, len(refs))
	for i, ref := range refs {
		parts[i] = ref.String()
	}
	return strings.Join(parts, ",")
}

// UniqueProductIDs returns the distinct product ids referenced, in first-seen order
func UniqueProductIDs(refs []ProductRef) []uint {
	seen := make(map[uint]bool, len(refs))
	ids := []uint{}
	for _, ref := range refs {
		if !seen[ref.ProductID] {
			seen[ref.ProductID] = true
			ids = append(ids, ref.ProductID)
		}
	}
	return ids
}

// GroupProducts rebuilds order lines from the denormalised ProductIDs string.
// Repeated id:option pairs collapse into one line whose quantity is the repeat count.
// Lines keep first-seen order; pairs whose product is missing from details are dropped.
func GroupProducts(productIDs string, details []models.Product) []OrderLine {
	byID := make(map[uint]models.Product, len(details))
	for _, p := range details {
		byID[p.ID] = p
	}

	lines := []OrderLine{}
	index := make(map[ProductRef]int)
	for _, ref := range ParseProductIDs(productIDs) {
		product, ok := byID[ref.ProductID]
		if !ok {
			continue
		}

		if i, exists := index[ref]; exists {
			lines[i].Quantity++
			lines[i].TotalPrice = lines[i].UnitPrice.Mul(decimal.NewFromInt(int64(lines[i].Quantity)))
			continue
		}

		index[ref] = len(lines)
		lines = append(lines, OrderLine{
			ProductID:  product.ID,
			Name:       product.Name,
			Option:     ref.Option,
			ImageURL:   product.ImageURL,
			UnitPrice:  product.Price,
			Quantity:   1,
			TotalPrice: product.Price,
		})
	}
	return lines
}

// LinesTotal sums the total price of every line
func LinesTotal(lines []OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.TotalPrice)
	}
	return total
}

// ToMinorUnits converts a currency amount to cents, rounding half away from zero
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
