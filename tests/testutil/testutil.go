package testutil

import (
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/n11047500/Capstone-2024-sub000/config"
	"github.com/n11047500/Capstone-2024-sub000/models"
	"github.com/n11047500/Capstone-2024-sub000/routes"
	"github.com/n11047500/Capstone-2024-sub000/services"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// RequireTestEnvironment ensures that tests are running in the test environment.
// This prevents accidental execution of tests against production or development databases.
// It will fail the test immediately if GO_ENV is not set to "test".
func RequireTestEnvironment(t *testing.T) {
	t.Helper()

	env := os.Getenv("GO_ENV")
	if env != "test" {
		t.Fatalf("SAFETY CHECK FAILED: Tests must run with GO_ENV=test to prevent data loss. Current GO_ENV=%q. Set GO_ENV=test before running tests.", env)
	}
}

// MustSetTestEnvironment sets GO_ENV to test and fails if it cannot be set.
// Use this in TestMain or suite setup functions.
func MustSetTestEnvironment(t *testing.T) {
	t.Helper()

	if err := os.Setenv("GO_ENV", "test"); err != nil {
		t.Fatalf("Failed to set GO_ENV=test: %v", err)
	}

	if os.Getenv("GO_ENV") != "test" {
		t.Fatal("Failed to verify GO_ENV=test")
	}
}

// TestConfig installs a test configuration and a token service signing with its secret
func TestConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := &config.Config{
		GoEnv:          "test",
		Port:           "8080",
		JWTSecret:      "suite-test-secret",
		JWTIssuer:      "planterbox-api",
		JWTAudience:    "planterbox-storefront",
		StripeCurrency: "aud",
		FrontendURL:    "http://localhost:3000",
		StoreEmail:     "store@example.com",
		MailFrom:       "orders@example.com",
		AWSRegion:      "us-east-1",
		AWSS3Bucket:    "test-bucket",
	}
	config.SetConfig(cfg)
	services.InitTokenService()
	return cfg
}

// NewTestDB opens a migrated in-memory SQLite database and installs it as config.DB
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	RequireTestEnvironment(t)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Every connection to :memory: is its own database
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get database handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	config.SetDB(db)
	return db
}

// ResetTables empties every storefront table
func ResetTables(t *testing.T, db *gorm.DB) {
	t.Helper()
	for _, table := range []string{"reviews", "orders", "addresses", "users", "products"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			t.Fatalf("Failed to clear %s: %v", table, err)
		}
	}
}

// Mocks holds the service doubles installed by InstallMocks
type Mocks struct {
	Payment *services.MockPaymentService
	Mailer  *services.MockMailer
	Captcha *services.MockCaptchaVerifier
	S3      *services.MockS3Service
}

// InstallMocks replaces every external service with an in-memory double.
// Payments succeed unless paymentStatus says otherwise.
func InstallMocks(paymentStatus string) *Mocks {
	m := &Mocks{
		Payment: services.NewMockPaymentService(paymentStatus),
		Mailer:  services.NewMockMailer(),
		Captcha: services.NewMockCaptchaVerifier(true),
		S3:      services.NewMockS3Service(),
	}
	m.Payment.SetAsMockForTesting()
	m.Mailer.SetAsMockForTesting()
	m.Captcha.SetAsMockForTesting()
	m.S3.SetAsMockForTesting()
	services.InitAttachmentService(m.S3)
	services.SetOrderFeed(nil)
	return m
}

// NewRouter builds the application router the same way the server does
func NewRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	routes.Setup(router, cfg)
	return router
}

// SeedCatalog inserts the products used across the suites
func SeedCatalog(t *testing.T, db *gorm.DB) []models.Product {
	t.Helper()

	products := []models.Product{
		{ID: 101, Name: "Cedar Planter Box", Price: decimal.RequireFromString("89.50"), Quantity: 20, Options: "Default,Custom"},
		{ID: 102, Name: "Raised Garden Bed", Price: decimal.RequireFromString("149.00"), Quantity: 10, Options: "Default,Custom"},
		{ID: 103, Name: "Herb Window Box", Price: decimal.RequireFromString("39.95"), Quantity: 35, Options: "Default"},
	}
	for i := range products {
		if err := db.Create(&products[i]).Error; err != nil {
			t.Fatalf("Failed to seed %s: %v", products[i].Name, err)
		}
	}
	return products
}
