package testutil

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/n11047500/Capstone-2024-sub000/models"
	"github.com/n11047500/Capstone-2024-sub000/services"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// CreateUser stores an account whose password hashes to password
func CreateUser(t *testing.T, db *gorm.DB, email, password, role string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	user := &models.User{
		FirstName:    "Test",
		LastName:     "User",
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create user %s: %v", email, err)
	}
	return user
}

// SessionToken signs a login token for user with the installed token service
func SessionToken(t *testing.T, user *models.User) string {
	t.Helper()

	token, err := services.GetTokenService().IssueSessionToken(user)
	if err != nil {
		t.Fatalf("Failed to issue session token: %v", err)
	}
	return token
}

// BearerHeader formats token for the Authorization header
func BearerHeader(token string) string {
	return "Bearer " + token
}

// SetMockAuthContext sets the values EnsureValidToken stores for a valid session
func SetMockAuthContext(c *gin.Context, userID, email, role string) {
	c.Set("user_id", userID)
	c.Set("user_email", email)
	c.Set("user_role", role)
}

// CreateTestContext creates a test Gin context
func CreateTestContext() (*gin.Context, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	c, engine := gin.CreateTestContext(nil)
	return c, engine
}
