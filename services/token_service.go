package services

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	appConfig "github.com/n11047500/Capstone-2024-sub000/config"
	"github.com/n11047500/Capstone-2024-sub000/models"
)

// Token purposes carried in the "purpose" claim
const (
	PurposeSession       = "session"
	PurposePasswordReset = "password_reset"
)

const (
	sessionTokenTTL = 24 * time.Hour
	resetTokenTTL   = time.Hour
)

// ErrInvalidToken is returned for any token that fails verification
var ErrInvalidToken = errors.New("invalid or expired token")

// TokenClaims is the payload of every token the API signs
type TokenClaims struct {
	Email   string `json:"email"`
	Role    string `json:"role,omitempty"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// TokenService signs session and password reset tokens with HS256
type TokenService struct {
	secret   []byte
	issuer   string
	audience string
	now      func() time.Time
}

var tokenServiceInstance *TokenService

// InitTokenService initializes the token service from configuration
func InitTokenService() *TokenService {
	cfg := appConfig.GetConfig()
	tokenServiceInstance = NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience)
	return tokenServiceInstance
}

// NewTokenService creates a token service
func NewTokenService(secret, issuer, audience string) *TokenService {
	return &TokenService{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		now:      time.Now,
	}
}

// GetTokenService returns the initialized token service instance
func GetTokenService() *TokenService {
	return tokenServiceInstance
}

// SetTokenService sets the token service instance (primarily for testing)
func SetTokenService(service *TokenService) {
	tokenServiceInstance = service
}

// IssueSessionToken signs a login token for user
func (s *TokenService) IssueSessionToken(user *models.User) (string, error) {
	return s.sign(TokenClaims{
		Email:   user.Email,
		Role:    user.Role,
		Purpose: PurposeSession,
		RegisteredClaims: s.registered(strconv.FormatUint(uint64(user.ID), 10), sessionTokenTTL),
	})
}

// IssueResetToken signs a one hour password reset token for email
func (s *TokenService) IssueResetToken(email string) (string, error) {
	return s.sign(TokenClaims{
		Email:            email,
		Purpose:          PurposePasswordReset,
		RegisteredClaims: s.registered(email, resetTokenTTL),
	})
}

// ParseResetToken verifies a reset token and returns the email it was issued for
func (s *TokenService) ParseResetToken(tokenString string) (string, error) {
	claims := &TokenClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Purpose != PurposePasswordReset || claims.Email == "" {
		return "", ErrInvalidToken
	}
	return claims.Email, nil
}

// Secret returns the signing key, shared with the request validator
func (s *TokenService) Secret() []byte {
	return s.secret
}

func (s *TokenService) registered(subject string, ttl time.Duration) jwt.RegisteredClaims {
	now := s.now()
	return jwt.RegisteredClaims{
		Issuer:    s.issuer,
		Subject:   subject,
		Audience:  jwt.ClaimStrings{s.audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (s *TokenService) sign(claims TokenClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
