package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/n11047500/Capstone-2024-sub000/models"
	"github.com/n11047500/Capstone-2024-sub000/utils"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/paymentmethod"
)

// ErrActionRequired is returned when the card needs 3-D Secure and no CardActionHandler is set
var ErrActionRequired = errors.New("checkout: card requires additional authentication")

// Card is the tokenised card the shopper entered
type Card struct {
	Token string
}

// BillingDetails is attached to the created PaymentMethod
type BillingDetails struct {
	Name  string
	Email string
	Phone string
}

// PaymentMethodCreator turns a card into a PaymentMethod id
type PaymentMethodCreator interface {
	CreatePaymentMethod(ctx context.Context, card Card, billing BillingDetails) (string, error)
}

// CardActionHandler completes 3-D Secure for a PaymentIntent client secret
type CardActionHandler interface {
	HandleCardAction(ctx context.Context, clientSecret string) error
}

// OrderAPI is the part of the storefront API the adapter calls
type OrderAPI interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*OrderResult, error)
	OrderDetails(ctx context.Context, clientSecret string) (*OrderResult, error)
	SendConfirmation(ctx context.Context, clientSecret string) error
}

// Payment is everything the adapter needs to place one order
type Payment struct {
	Info           PersonalInfo
	OrderType      string
	Card           Card
	ProductIDs     []string
	Total          decimal.Decimal
	IdempotencyKey string
}

// OrderResult is a placed order as returned by the API
type OrderResult struct {
	ID             uint              `json:"id"`
	ClientSecret   string            `json:"client_secret"`
	RequiresAction bool              `json:"requires_action"`
	Products       []utils.OrderLine `json:"products"`
	Order          *models.Order     `json:"order,omitempty"`
}

// PaymentAdapter creates the PaymentMethod and submits the order
type PaymentAdapter struct {
	methods PaymentMethodCreator
	orders  OrderAPI
	actions CardActionHandler
}

// NewPaymentAdapter wires the adapter; actions may be nil when 3-D Secure cannot be completed
func NewPaymentAdapter(methods PaymentMethodCreator, orders OrderAPI, actions CardActionHandler) *PaymentAdapter {
	return &PaymentAdapter{methods: methods, orders: orders, actions: actions}
}

// Pay creates a PaymentMethod for the card and posts the order.
// When the bank asks for authentication the handler runs, then the
// recorded order is fetched and its confirmation email requested.
func (a *PaymentAdapter) Pay(ctx context.Context, p Payment) (*OrderResult, error) {
	if len(p.ProductIDs) == 0 {
		return nil, &ValidationError{Field: "cart", Message: "Your cart is empty"}
	}

	methodID, err := a.methods.CreatePaymentMethod(ctx, p.Card, BillingDetails{
		Name:  p.Info.FullName(),
		Email: p.Info.Email,
		Phone: p.Info.Phone,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create payment method: %w", err)
	}

	req := OrderRequest{
		Name:            p.Info.FullName(),
		Email:           p.Info.Email,
		Mobile:          p.Info.Phone,
		StreetAddress:   p.Info.Address,
		OrderType:       p.OrderType,
		PaymentMethodID: methodID,
		ProductIDs:      p.ProductIDs,
		TotalAmount:     p.Total,
		IdempotencyKey:  RequestKey(p.IdempotencyKey, methodID),
	}
	result, err := a.orders.CreateOrder(ctx, req)
	if err != nil && isTransportError(ctx, err) {
		// Same PaymentMethod and key, so Stripe replays the first intent
		// if the lost request did reach it.
		log.Printf("Resending order request after transport error: %v", err)
		result, err = a.orders.CreateOrder(ctx, req)
	}
	if err != nil {
		return nil, err
	}
	if !result.RequiresAction {
		return result, nil
	}

	if a.actions == nil {
		return result, ErrActionRequired
	}
	if err := a.actions.HandleCardAction(ctx, result.ClientSecret); err != nil {
		return nil, fmt.Errorf("card authentication failed: %w", err)
	}

	details, err := a.orders.OrderDetails(ctx, result.ClientSecret)
	if err != nil {
		return nil, err
	}
	if err := a.orders.SendConfirmation(ctx, result.ClientSecret); err != nil {
		return details, fmt.Errorf("order placed but the confirmation email failed: %w", err)
	}
	return details, nil
}

// RequestKey scopes a checkout's idempotency key to one PaymentMethod.
// Stripe rejects a key replayed with different parameters, so each card
// attempt needs its own key while a resend of the same request keeps it.
func RequestKey(base, paymentMethodID string) string {
	if base == "" {
		return ""
	}
	return base + ":" + paymentMethodID
}

func isTransportError(ctx context.Context, err error) bool {
	return ctx.Err() == nil && errors.Is(err, ErrTransport)
}

// StripePaymentMethodCreator creates card PaymentMethods with a publishable key
type StripePaymentMethodCreator struct {
	client *paymentmethod.Client
}

// NewStripePaymentMethodCreator builds a creator over backend; a nil backend uses Stripe's API
func NewStripePaymentMethodCreator(publishableKey string, backend stripe.Backend) *StripePaymentMethodCreator {
	if backend == nil {
		backend = stripe.GetBackend(stripe.APIBackend)
	}
	return &StripePaymentMethodCreator{
		client: &paymentmethod.Client{B: backend, Key: publishableKey},
	}
}

// CreatePaymentMethod creates a card PaymentMethod from a card token
func (s *StripePaymentMethodCreator) CreatePaymentMethod(ctx context.Context, card Card, billing BillingDetails) (string, error) {
	if card.Token == "" {
		return "", &ValidationError{Field: "card", Message: "Card details are required"}
	}

	params := &stripe.PaymentMethodParams{
		Type: stripe.String(string(stripe.PaymentMethodTypeCard)),
		Card: &stripe.PaymentMethodCardParams{
			Token: stripe.String(card.Token),
		},
		BillingDetails: &stripe.PaymentMethodBillingDetailsParams{
			Name:  stripe.String(billing.Name),
			Email: stripe.String(billing.Email),
			Phone: stripe.String(billing.Phone),
		},
	}
	params.Context = ctx

	pm, err := s.client.New(params)
	if err != nil {
		return "", err
	}
	return pm.ID, nil
}
