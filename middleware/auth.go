package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/n11047500/Capstone-2024-sub000/config"
	"github.com/n11047500/Capstone-2024-sub000/models"
	"gorm.io/gorm"
)

// sessionPurpose must match the purpose claim of login tokens
const sessionPurpose = "session"

// CustomClaims contains custom data we want from the token.
type CustomClaims struct {
	Email   string `json:"email"`
	Role    string `json:"role"`
	Purpose string `json:"purpose"`
}

// Validate rejects tokens that were not issued for a login session,
// so a password reset token cannot be used as a bearer token.
func (c CustomClaims) Validate(ctx context.Context) error {
	if c.Purpose != sessionPurpose {
		return errors.New("token is not a session token")
	}
	if c.Email == "" {
		return errors.New("token has no email claim")
	}
	return nil
}

// EnsureValidToken is a middleware that will check the validity of our JWT.
// The token is read from the Authorization header or the "token" query parameter.
func EnsureValidToken(cfg *config.Config) gin.HandlerFunc {
	secret := []byte(cfg.JWTSecret)
	keyFunc := func(ctx context.Context) (interface{}, error) {
		return secret, nil
	}

	jwtValidator, err := validator.New(
		keyFunc,
		validator.HS256,
		cfg.JWTIssuer,
		[]string{cfg.JWTAudience},
		validator.WithCustomClaims(
			func() validator.CustomClaims {
				return &CustomClaims{}
			},
		),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		log.Fatalf("Failed to set up the jwt validator: %v", err)
	}

	errorHandler := func(w http.ResponseWriter, r *http.Request, err error) {
		log.Printf("Encountered error while validating JWT: %v", err)

		body := `{"success":false,"error":{"code":"INVALID_TOKEN","message":"Failed to validate JWT."}}`
		if errors.Is(err, jwtmiddleware.ErrJWTMissing) {
			body = `{"success":false,"error":{"code":"MISSING_TOKEN","message":"Authentication required"}}`
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		if _, writeErr := w.Write([]byte(body)); writeErr != nil {
			log.Printf("Failed to write error response: %v", writeErr)
		}
	}

	middleware := jwtmiddleware.New(
		jwtValidator.ValidateToken,
		jwtmiddleware.WithErrorHandler(errorHandler),
		jwtmiddleware.WithTokenExtractor(jwtmiddleware.MultiTokenExtractor(
			jwtmiddleware.AuthHeaderTokenExtractor,
			jwtmiddleware.ParameterTokenExtractor("token"),
		)),
	)

	return func(c *gin.Context) {
		authorized := false
		var handler http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
			authorized = true
			token := r.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)
			claims := token.CustomClaims.(*CustomClaims)

			c.Request = r
			c.Set("user_id", token.RegisteredClaims.Subject)
			c.Set("user_email", claims.Email)
			c.Set("user_role", claims.Role)

			c.Next()
		}

		middleware.CheckJWT(handler).ServeHTTP(c.Writer, c.Request)
		if !authorized {
			c.Abort()
		}
	}
}

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) (string, error) {
	return getString(c, "user_id", "USER_ID")
}

// GetUserEmail extracts the authenticated email from the Gin context
func GetUserEmail(c *gin.Context) (string, error) {
	return getString(c, "user_email", "USER_EMAIL")
}

// GetRole extracts the authenticated user's role from the Gin context
func GetRole(c *gin.Context) (string, error) {
	return getString(c, "user_role", "USER_ROLE")
}

func getString(c *gin.Context, key, code string) (string, error) {
	value, exists := c.Get(key)
	if !exists {
		return "", &AuthError{Code: "MISSING_" + code, Message: key + " not found in context"}
	}

	str, ok := value.(string)
	if !ok {
		return "", &AuthError{Code: "INVALID_" + code, Message: key + " is not a string"}
	}

	return str, nil
}

// RequireRole only lets users with the given role through. The token's role
// claim is checked first, then the account's current role in the database,
// so a demotion takes effect without waiting for the session to expire.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, err := GetRole(c)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "MISSING_CLAIMS", "Could not retrieve token claims")
			return
		}
		if userRole != role {
			abortWithError(c, http.StatusForbidden, "INSUFFICIENT_ROLE", "Insufficient permissions to access this resource")
			return
		}

		userID, err := GetUserID(c)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "MISSING_CLAIMS", "Could not retrieve token claims")
			return
		}
		id, err := strconv.ParseUint(userID, 10, 64)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "INVALID_TOKEN", "Failed to validate JWT.")
			return
		}

		var user models.User
		if err := config.GetDB().Select("id", "role").First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				abortWithError(c, http.StatusUnauthorized, "ACCOUNT_NOT_FOUND", "Account no longer exists")
				return
			}
			log.Printf("Failed to load role for user %d: %v", id, err)
			abortWithError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to verify permissions")
			return
		}
		if user.Role != role {
			abortWithError(c, http.StatusForbidden, "INSUFFICIENT_ROLE", "Insufficient permissions to access this resource")
			return
		}

		c.Next()
	}
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// AuthError represents an authentication error
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
