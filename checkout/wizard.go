// Package checkout drives the storefront checkout: a three step wizard
// over a cart, and the payment adapter that turns a card into a paid order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/n11047500/Capstone-2024-sub000/cart"
	"github.com/n11047500/Capstone-2024-sub000/models"
)

// Step is the wizard position, 1 through 3
type Step int

const (
	StepPersonalInfo Step = iota + 1
	StepShipping
	StepPayment
)

var (
	// ErrSubmissionInProgress is returned by Submit while an earlier Submit has not returned
	ErrSubmissionInProgress = errors.New("checkout: payment already in progress")

	// ErrNotAtPaymentStep is returned by Submit before the wizard reaches step 3
	ErrNotAtPaymentStep = errors.New("checkout: payment step not reached")
)

// ValidationError names the field that blocked a step
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// PersonalInfo is collected on step 1
type PersonalInfo struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   string
}

// FullName joins first and last name
func (p PersonalInfo) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
}

// Validate checks every step 1 field is present and the email looks like one
func (p PersonalInfo) Validate() error {
	required := []struct {
		field, label, value string
	}{
		{"first_name", "First name", p.FirstName},
		{"last_name", "Last name", p.LastName},
		{"email", "Email", p.Email},
		{"phone", "Phone", p.Phone},
		{"address", "Address", p.Address},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &ValidationError{Field: r.field, Message: r.label + " is required"}
		}
	}
	if !strings.Contains(p.Email, "@") {
		return &ValidationError{Field: "email", Message: "Please enter a valid email address"}
	}
	return nil
}

// Payer performs the payment for a completed wizard
type Payer interface {
	Pay(ctx context.Context, payment Payment) (*OrderResult, error)
}

// Wizard is the linear personal info → shipping → payment flow over a cart
type Wizard struct {
	mu             sync.Mutex
	step           Step
	info           PersonalInfo
	orderType      string
	cart           *cart.Manager
	payer          Payer
	idempotencyKey string
	submitting     bool
}

// NewWizard starts at step 1 with a fresh idempotency key
func NewWizard(c *cart.Manager, payer Payer) *Wizard {
	return &Wizard{
		step:           StepPersonalInfo,
		cart:           c,
		payer:          payer,
		idempotencyKey: uuid.NewString(),
	}
}

// Step returns the current step
func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// SetPersonalInfo stores the step 1 form
func (w *Wizard) SetPersonalInfo(info PersonalInfo) {
	w.mu.Lock()
	w.info = info
	w.mu.Unlock()
}

// PersonalInfo returns the step 1 form
func (w *Wizard) PersonalInfo() PersonalInfo {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.info
}

// SelectOrderType stores the step 2 choice
func (w *Wizard) SelectOrderType(orderType string) error {
	if !models.IsValidOrderType(orderType) {
		return &ValidationError{Field: "order_type", Message: "Please choose Click and Collect or Delivery"}
	}
	w.mu.Lock()
	w.orderType = orderType
	w.mu.Unlock()
	return nil
}

// OrderType returns the step 2 choice, empty until one is selected
func (w *Wizard) OrderType() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.orderType
}

// IdempotencyKey is the base key for the next payment attempt. A failed
// attempt starts a new one so a retry is never replayed against the old intent.
func (w *Wizard) IdempotencyKey() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.idempotencyKey
}

// Next validates the current step and advances. Step 3 is final.
func (w *Wizard) Next() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.step {
	case StepPersonalInfo:
		if err := w.info.Validate(); err != nil {
			return err
		}
	case StepShipping:
		if w.orderType == "" {
			return &ValidationError{Field: "order_type", Message: "Please choose Click and Collect or Delivery"}
		}
	case StepPayment:
		return nil
	}

	w.step++
	return nil
}

// Back moves one step back; at step 1 it does nothing
func (w *Wizard) Back() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step > StepPersonalInfo {
		w.step--
	}
}

// Submit pays for the cart with card. Only one Submit runs at a time;
// the cart is cleared once the order is recorded.
func (w *Wizard) Submit(ctx context.Context, card Card) (*OrderResult, error) {
	w.mu.Lock()
	if w.submitting {
		w.mu.Unlock()
		return nil, ErrSubmissionInProgress
	}
	if w.step != StepPayment {
		w.mu.Unlock()
		return nil, ErrNotAtPaymentStep
	}
	if w.cart.Count() == 0 {
		w.mu.Unlock()
		return nil, &ValidationError{Field: "cart", Message: "Your cart is empty"}
	}
	w.submitting = true
	payment := Payment{
		Info:           w.info,
		OrderType:      w.orderType,
		Card:           card,
		ProductIDs:     w.cart.FlattenProductIDs(),
		Total:          w.cart.Subtotal(),
		IdempotencyKey: w.idempotencyKey,
	}
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.submitting = false
		w.mu.Unlock()
	}()

	result, err := w.payer.Pay(ctx, payment)
	if err != nil {
		if !errors.Is(err, ErrActionRequired) {
			w.mu.Lock()
			w.idempotencyKey = uuid.NewString()
			w.mu.Unlock()
		}
		return nil, err
	}

	if err := w.cart.ClearCart(); err != nil {
		log.Printf("Order %d placed but the cart could not be cleared: %v", result.ID, err)
		return result, fmt.Errorf("order placed: %w", err)
	}
	return result, nil
}
