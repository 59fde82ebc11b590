package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	appConfig "github.com/n11047500/Capstone-2024-sub000/config"
	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/paymentintent"
)

// Payment intent statuses the checkout flow branches on
const (
	PaymentStatusSucceeded      = string(stripe.PaymentIntentStatusSucceeded)
	PaymentStatusRequiresAction = string(stripe.PaymentIntentStatusRequiresAction)
)

// PaymentRequest describes a card charge confirmed server-side
type PaymentRequest struct {
	AmountCents     int64
	PaymentMethodID string
	ReceiptEmail    string
	Description     string
	IdempotencyKey  string
}

// PaymentResult is the outcome of creating a payment intent
type PaymentResult struct {
	ID           string
	ClientSecret string
	Status       string
}

// PaymentService creates and confirms payment intents
type PaymentService interface {
	CreatePaymentIntent(ctx context.Context, req PaymentRequest) (*PaymentResult, error)
}

// StripePaymentService confirms payment intents through the Stripe API
type StripePaymentService struct {
	client   *paymentintent.Client
	currency string
}

var paymentServiceInstance PaymentService

// InitPaymentService initializes the Stripe payment service from configuration
func InitPaymentService() PaymentService {
	cfg := appConfig.GetConfig()
	paymentServiceInstance = NewStripePaymentService(cfg.StripeSecretKey, cfg.StripeCurrency, stripe.GetBackend(stripe.APIBackend))
	return paymentServiceInstance
}

// NewStripePaymentService builds a service over the given Stripe backend
func NewStripePaymentService(secretKey, currency string, backend stripe.Backend) *StripePaymentService {
	return &StripePaymentService{
		client:   &paymentintent.Client{B: backend, Key: secretKey},
		currency: strings.ToLower(currency),
	}
}

// GetPaymentService returns the initialized payment service instance
func GetPaymentService() PaymentService {
	return paymentServiceInstance
}

// SetPaymentService sets the payment service instance (primarily for testing)
func SetPaymentService(service PaymentService) {
	paymentServiceInstance = service
}

// CreatePaymentIntent creates and immediately confirms an off-session card payment
func (s *StripePaymentService) CreatePaymentIntent(ctx context.Context, req PaymentRequest) (*PaymentResult, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(req.AmountCents),
		Currency:           stripe.String(s.currency),
		PaymentMethod:      stripe.String(req.PaymentMethodID),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Confirm:            stripe.Bool(true),
		OffSession:         stripe.Bool(true),
	}
	if req.ReceiptEmail != "" {
		params.ReceiptEmail = stripe.String(req.ReceiptEmail)
	}
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}
	params.Context = ctx

	intent, err := s.client.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return &PaymentResult{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
		Status:       string(intent.Status),
	}, nil
}

// IsCardDeclined reports a card_error from Stripe. With confirm=true a
// declined or failed card comes back as an API error, not as an intent status.
func IsCardDeclined(err error) bool {
	var stripeErr *stripe.Error
	return errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeCard
}

// MockPaymentService returns a canned result and records each request
type MockPaymentService struct {
	Status string
	Err    error

	mu       sync.Mutex
	requests []PaymentRequest
}

// NewMockPaymentService creates a mock whose intents end in the given status
func NewMockPaymentService(status string) *MockPaymentService {
	return &MockPaymentService{Status: status}
}

// SetAsMockForTesting sets this mock as the global payment service instance for testing
func (m *MockPaymentService) SetAsMockForTesting() {
	SetPaymentService(m)
}

// CreatePaymentIntent records the request and returns the configured outcome
func (m *MockPaymentService) CreatePaymentIntent(ctx context.Context, req PaymentRequest) (*PaymentResult, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	n := len(m.requests)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}

	id := fmt.Sprintf("pi_mock_%d", n)
	return &PaymentResult{
		ID:           id,
		ClientSecret: id + "_secret_mock",
		Status:       m.Status,
	}, nil
}

// Requests returns a copy of every request received
func (m *MockPaymentService) Requests() []PaymentRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PaymentRequest(nil), m.requests...)
}
