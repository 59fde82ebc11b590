package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/n11047500/Capstone-2024-sub000/models"
	"github.com/n11047500/Capstone-2024-sub000/utils"
	"github.com/shopspring/decimal"
)

// DefaultTimeout bounds each storefront API call
const DefaultTimeout = 30 * time.Second

// OrderRequest is the body of POST /api/v1/checkout/orders
type OrderRequest struct {
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

// ErrTransport marks a request that never got an HTTP response
var ErrTransport = errors.New("checkout: no response from the storefront API")

// APIError is an error envelope returned by the storefront API
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d %s)", e.Message, e.StatusCode, e.Code)
}

// IsPaymentDeclined reports whether err is the API's 402 payment failure
func IsPaymentDeclined(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusPaymentRequired
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// APIClient calls the storefront's checkout endpoints
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient targets baseURL (scheme and host); a nil httpClient gets DefaultTimeout
func NewAPIClient(baseURL string, httpClient *http.Client) *APIClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &APIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// CreateOrder posts the order and returns the recorded order or the 3-D Secure hand-off
func (c *APIClient) CreateOrder(ctx context.Context, req OrderRequest) (*OrderResult, error) {
	var result OrderResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/checkout/orders", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// OrderDetails fetches an order and its grouped products by client secret
func (c *APIClient) OrderDetails(ctx context.Context, clientSecret string) (*OrderResult, error) {
	var details struct {
		models.Order
		Products []utils.OrderLine `json:"products"`
	}
	path := "/api/v1/checkout/orders/details?client_secret=" + url.QueryEscape(clientSecret)
	if err := c.do(ctx, http.MethodGet, path, nil, &details); err != nil {
		return nil, err
	}

	order := details.Order
	return &OrderResult{
		ID:           order.ID,
		ClientSecret: order.ClientSecret,
		Products:     details.Products,
		Order:        &order,
	}, nil
}

// SendConfirmation asks the API to email the order confirmation
func (c *APIClient) SendConfirmation(ctx context.Context, clientSecret string) error {
	return c.do(ctx, http.MethodPost, "/api/v1/send-email", map[string]string{"client_secret": clientSecret}, nil)
}

func (c *APIClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w: %w", path, ErrTransport, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		apiErr := &APIError{StatusCode: resp.StatusCode, Code: "UNKNOWN", Message: http.StatusText(resp.StatusCode)}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return apiErr
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}
