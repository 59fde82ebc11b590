package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	appConfig "github.com/n11047500/Capstone-2024-sub000/config"
)

// RecaptchaVerifyURL is Google's siteverify endpoint
const RecaptchaVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

// CaptchaVerifier checks a client-side captcha response token
type CaptchaVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) (bool, error)
}

// recaptchaResponse is the body returned by siteverify
type recaptchaResponse struct {
	Success    bool     `json:"success"`
	Hostname   string   `json:"hostname"`
	ErrorCodes []string `json:"error-codes"`
}

// RecaptchaService verifies tokens against Google reCAPTCHA
type RecaptchaService struct {
	secret     string
	verifyURL  string
	httpClient *http.Client
}

// DisabledCaptchaVerifier accepts every token; used when no secret is configured
type DisabledCaptchaVerifier struct{}

var captchaVerifierInstance CaptchaVerifier

// InitCaptchaVerifier initializes the verifier from configuration
func InitCaptchaVerifier() CaptchaVerifier {
	cfg := appConfig.GetConfig()
	if cfg.RecaptchaSecret == "" {
		if cfg.IsProduction() {
			log.Printf("warning: RECAPTCHA_SECRET not set in production, captcha checks are disabled")
		}
		captchaVerifierInstance = DisabledCaptchaVerifier{}
		return captchaVerifierInstance
	}

	captchaVerifierInstance = NewRecaptchaService(cfg.RecaptchaSecret, RecaptchaVerifyURL)
	return captchaVerifierInstance
}

// NewRecaptchaService creates a verifier for the given secret and endpoint
func NewRecaptchaService(secret, verifyURL string) *RecaptchaService {
	return &RecaptchaService{
		secret:    secret,
		verifyURL: verifyURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// GetCaptchaVerifier returns the initialized verifier instance
func GetCaptchaVerifier() CaptchaVerifier {
	return captchaVerifierInstance
}

// SetCaptchaVerifier sets the verifier instance (primarily for testing)
func SetCaptchaVerifier(verifier CaptchaVerifier) {
	captchaVerifierInstance = verifier
}

// Verify posts the token to siteverify and reports whether Google accepted it
func (s *RecaptchaService) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	if token == "" {
		return false, nil
	}

	form := url.Values{}
	form.Set("secret", s.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to call siteverify endpoint: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return false, fmt.Errorf("siteverify endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	var result recaptchaResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("failed to decode siteverify response: %w", err)
	}

	if !result.Success {
		log.Printf("reCAPTCHA rejected token: %v", result.ErrorCodes)
	}
	return result.Success, nil
}

// Verify always succeeds
func (DisabledCaptchaVerifier) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	return true, nil
}

// MockCaptchaVerifier returns a fixed answer and records tokens
type MockCaptchaVerifier struct {
	Valid bool
	Err   error

	mu     sync.Mutex
	tokens []string
}

// NewMockCaptchaVerifier creates a mock that accepts or rejects every token
func NewMockCaptchaVerifier(valid bool) *MockCaptchaVerifier {
	return &MockCaptchaVerifier{Valid: valid}
}

// SetAsMockForTesting sets this mock as the global verifier instance for testing
func (m *MockCaptchaVerifier) SetAsMockForTesting() {
	SetCaptchaVerifier(m)
}

// Verify records the token and returns the configured answer
func (m *MockCaptchaVerifier) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	m.mu.Lock()
	m.tokens = append(m.tokens, token)
	m.mu.Unlock()
	return m.Valid, m.Err
}

// Tokens returns the tokens verified so far
func (m *MockCaptchaVerifier) Tokens() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.tokens...)
}
