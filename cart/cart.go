// Package cart is the client-side shopping cart. Lines are keyed by
// (product id, option) and the whole cart is persisted after every change.
package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/n11047500/Capstone-2024-sub000/models"
	"github.com/shopspring/decimal"
)

// DefaultKey is the storage key used when none is given
const DefaultKey = "cart"

// DefaultOption is assumed when a line is added without an option
const DefaultOption = "Default"

// Product is the part of a catalog product a cart line keeps
type Product struct {
	ID       uint            `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	ImageURL string          `json:"image_url"`
}

// ProductFromModel copies the fields a cart line needs
func ProductFromModel(p models.Product) Product {
	return Product{ID: p.ID, Name: p.Name, Price: p.Price, ImageURL: p.ImageURL}
}

// Item is one cart line
type Item struct {
	Product  Product `json:"product"`
	Option   string  `json:"option"`
	Quantity int     `json:"quantity"`
}

// LineTotal is the unit price times quantity
func (i Item) LineTotal() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (i Item) matches(productID uint, option string) bool {
	return i.Product.ID == productID && i.Option == option
}

// Manager holds the cart state and writes it to storage on every mutation
type Manager struct {
	mu      sync.Mutex
	storage Storage
	key     string
	items   []Item
}

// New loads the cart saved under key. Unreadable cart data is discarded
// and the cart starts empty; storage failures are returned.
func New(storage Storage, key string) (*Manager, error) {
	if key == "" {
		key = DefaultKey
	}
	m := &Manager{storage: storage, key: key, items: []Item{}}

	data, err := storage.Load(key)
	if errors.Is(err, ErrNotFound) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		log.Printf("Discarding unreadable cart %q: %v", key, err)
		return m, nil
	}
	for _, item := range items {
		if item.Quantity < 1 {
			continue
		}
		if item.Option == "" {
			item.Option = DefaultOption
		}
		m.items = append(m.items, item)
	}
	return m, nil
}

// AddToCart merges quantity into the (product, option) line or appends a new line.
// A quantity below 1 adds a single unit.
func (m *Manager) AddToCart(product Product, option string, quantity int) error {
	option = normalizeOption(option)
	if quantity < 1 {
		quantity = 1
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.items {
		if m.items[i].matches(product.ID, option) {
			m.items[i].Quantity += quantity
			return m.persist()
		}
	}

	m.items = append(m.items, Item{Product: product, Option: option, Quantity: quantity})
	return m.persist()
}

// UpdateQuantity sets a line's quantity, never below 1. Unknown lines are ignored.
func (m *Manager) UpdateQuantity(productID uint, option string, quantity int) error {
	option = normalizeOption(option)
	if quantity < 1 {
		quantity = 1
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.items {
		if m.items[i].matches(productID, option) {
			m.items[i].Quantity = quantity
			return m.persist()
		}
	}
	return nil
}

// RemoveFromCart drops the (product, option) line
func (m *Manager) RemoveFromCart(productID uint, option string) error {
	option = normalizeOption(option)

	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.items[:0]
	for _, item := range m.items {
		if !item.matches(productID, option) {
			kept = append(kept, item)
		}
	}
	m.items = kept
	return m.persist()
}

// ClearCart empties the cart and removes its storage key
func (m *Manager) ClearCart() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = []Item{}
	if err := m.storage.Remove(m.key); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// Items returns a copy of the cart lines in insertion order
func (m *Manager) Items() []Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Item(nil), m.items...)
}

// Count is the total number of units in the cart
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, item := range m.items {
		count += item.Quantity
	}
	return count
}

// Subtotal sums every line total
func (m *Manager) Subtotal() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := decimal.Zero
	for _, item := range m.items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// FlattenProductIDs returns one "id:option" entry per unit, the form the order API expects
func (m *Manager) FlattenProductIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := []string{}
	for _, item := range m.items {
		entry := strconv.FormatUint(uint64(item.Product.ID), 10) + ":" + item.Option
		for n := 0; n < item.Quantity; n++ {
			ids = append(ids, entry)
		}
	}
	return ids
}

// persist must be called with mu held
func (m *Manager) persist() error {
	data, err := json.Marshal(m.items)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := m.storage.Save(m.key, data); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func normalizeOption(option string) string {
	option = strings.TrimSpace(option)
	if option == "" {
		return DefaultOption
	}
	return option
}
