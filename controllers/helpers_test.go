package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/n11047500/Capstone-2024-sub000/config"
	"github.com/n11047500/Capstone-2024-sub000/models"
	"github.com/n11047500/Capstone-2024-sub000/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	// Every connection to :memory: is a separate database, so pin the pool to one
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	config.SetDB(db)
	return db
}

func setupTestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{
		GoEnv:          "test",
		JWTSecret:      "controller-test-secret",
		JWTIssuer:      "planterbox-api",
		JWTAudience:    "planterbox-storefront",
		StripeCurrency: "aud",
		FrontendURL:    "http://localhost:3000",
		StoreEmail:     "store@example.com",
	}
	config.SetConfig(cfg)
	services.SetTokenService(services.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience))
	t.Cleanup(func() {
		config.SetConfig(nil)
		services.SetTokenService(nil)
	})
	return cfg
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// mockAuthMiddleware sets the context values EnsureValidToken would set for a valid session
func mockAuthMiddleware(userID, email, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("user_email", email)
		c.Set("user_role", role)
		c.Next()
	}
}

func jsonRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), "body: %s", w.Body.String())
	return response
}

func errorCode(response map[string]interface{}) string {
	errObj, ok := response["error"].(map[string]interface{})
	if !ok {
		return ""
	}
	code, _ := errObj["code"].(string)
	return code
}

func errorMessage(response map[string]interface{}) string {
	errObj, ok := response["error"].(map[string]interface{})
	if !ok {
		return ""
	}
	msg, _ := errObj["message"].(string)
	return msg
}

func seedProducts(t *testing.T, db *gorm.DB) []models.Product {
	t.Helper()
	products := []models.Product{
		{ID: 101, Name: "Cedar Planter Box", Price: decimal.RequireFromString("89.50"), Quantity: 10, Description: "Rot resistant cedar", Dimensions: "60x30x30", Options: "Default,Custom"},
		{ID: 102, Name: "Raised Garden Bed", Price: decimal.RequireFromString("149.00"), Quantity: 5, Description: "Galvanised steel bed", Dimensions: "120x60x40", Options: "Default,Custom"},
		{ID: 103, Name: "Herb Window Box", Price: decimal.RequireFromString("39.95"), Quantity: 0, Description: "Compact box for herbs", Dimensions: "50x15x15", Options: "Default"},
	}
	require.NoError(t, db.Create(&products).Error)
	return products
}

func seedUser(t *testing.T, db *gorm.DB, email, password, role string) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := models.User{
		FirstName:    "Test",
		LastName:     "User",
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedOrder(t *testing.T, db *gorm.DB, order models.Order) models.Order {
	t.Helper()
	if order.CustomerName == "" {
		order.CustomerName = "Jane Doe"
	}
	if order.CustomerEmail == "" {
		order.CustomerEmail = "jane@example.com"
	}
	if order.OrderType == "" {
		order.OrderType = models.OrderTypeClickAndCollect
	}
	if order.Status == "" {
		order.Status = models.OrderStatusPending
	}
	require.NoError(t, db.Create(&order).Error)
	return order
}
