package acceptance

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/n11047500/Capstone-2024-sub000/models"
	"github.com/n11047500/Capstone-2024-sub000/services"
	"github.com/n11047500/Capstone-2024-sub000/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// AuthAcceptanceTestSuite drives the account endpoints over HTTP
type AuthAcceptanceTestSuite struct {
	suite.Suite
	server *httptest.Server
	db     *gorm.DB
	mocks  *testutil.Mocks
}

// SetupSuite runs once before all tests
func (suite *AuthAcceptanceTestSuite) SetupSuite() {
	testutil.MustSetTestEnvironment(suite.T())
	cfg := testutil.TestConfig(suite.T())
	suite.db = testutil.NewTestDB(suite.T())
	suite.server = httptest.NewServer(testutil.NewRouter(cfg))
}

// TearDownSuite runs once after all tests
func (suite *AuthAcceptanceTestSuite) TearDownSuite() {
	suite.server.Close()
	if sqlDB, err := suite.db.DB(); err == nil {
		sqlDB.Close()
	}
}

// SetupTest runs before each test
func (suite *AuthAcceptanceTestSuite) SetupTest() {
	testutil.ResetTables(suite.T(), suite.db)
	suite.mocks = testutil.InstallMocks(services.PaymentStatusSucceeded)
}

// TestAccountLifecycle registers, logs in, edits the profile and resets the password
func (suite *AuthAcceptanceTestSuite) TestAccountLifecycle() {
	base := suite.server.URL

	status, resp := call(suite.T(), base, http.MethodPost, "/api/v1/register", "", map[string]string{
		"first_name":    "Jane",
		"last_name":     "Doe",
		"email":         "jane@example.com",
		"password":      "secret123",
		"date_of_birth": "1990-04-12",
	})
	suite.Require().Equal(http.StatusCreated, status, resp.Error)

	status, resp = call(suite.T(), base, http.MethodPost, "/api/v1/login", "", map[string]string{
		"email": "jane@example.com", "password": "secret123",
	})
	suite.Require().Equal(http.StatusOK, status)
	var session struct {
		Token string `json:"token"`
		Role  string `json:"role"`
	}
	into(suite.T(), resp, &session)
	suite.Require().NotEmpty(session.Token)
	assert.Equal(suite.T(), models.RoleCustomer, session.Role)

	status, resp = call(suite.T(), base, http.MethodPut, "/api/v1/user/jane@example.com", session.Token, map[string]interface{}{
		"mobile":           "0400000000",
		"shipping_address": "1 Garden St, Brisbane QLD 4000",
	})
	suite.Require().Equal(http.StatusOK, status, resp.Error)

	status, resp = call(suite.T(), base, http.MethodGet, "/api/v1/user/jane@example.com", session.Token, nil)
	suite.Require().Equal(http.StatusOK, status)
	var profile models.User
	into(suite.T(), resp, &profile)
	assert.Equal(suite.T(), "0400000000", profile.Mobile)
	suite.Require().Len(profile.Addresses, 1)
	assert.Equal(suite.T(), models.AddressShipping, profile.Addresses[0].Type)
	assert.Equal(suite.T(), "1 Garden St, Brisbane QLD 4000", profile.Addresses[0].Address)

	status, _ = call(suite.T(), base, http.MethodPost, "/api/v1/forgot-password", "", map[string]string{"email": "jane@example.com"})
	suite.Require().Equal(http.StatusOK, status)
	suite.Require().Len(suite.mocks.Mailer.Sent(), 1)

	resetToken, err := services.GetTokenService().IssueResetToken("jane@example.com")
	suite.Require().NoError(err)
	status, _ = call(suite.T(), base, http.MethodPost, "/api/v1/reset-password/"+resetToken, "", map[string]string{"password": "newsecret1"})
	suite.Require().Equal(http.StatusOK, status)

	status, resp = call(suite.T(), base, http.MethodPost, "/api/v1/login", "", map[string]string{
		"email": "jane@example.com", "password": "secret123",
	})
	assert.Equal(suite.T(), http.StatusUnauthorized, status)
	assert.Equal(suite.T(), "INCORRECT_PASSWORD", resp.Error.Code)
}

// TestErrorResponseFormat validates the error envelope on auth failures
func (suite *AuthAcceptanceTestSuite) TestErrorResponseFormat() {
	cases := []struct {
		name  string
		token string
		code  string
	}{
		{"without token", "", "MISSING_TOKEN"},
		{"with invalid token", "invalid-token", "INVALID_TOKEN"},
	}

	for _, tc := range cases {
		suite.Run(tc.name, func() {
			status, resp := call(suite.T(), suite.server.URL, http.MethodGet, "/api/v1/orders", tc.token, nil)
			assert.Equal(suite.T(), http.StatusUnauthorized, status)
			assert.False(suite.T(), resp.Success)
			suite.Require().NotNil(resp.Error)
			assert.Equal(suite.T(), tc.code, resp.Error.Code)
			assert.NotEmpty(suite.T(), resp.Error.Message)
		})
	}
}

// TestContentTypeHeaders validates that responses have the JSON content type
func (suite *AuthAcceptanceTestSuite) TestContentTypeHeaders() {
	for _, path := range []string{"/api/v1/products", "/api/v1/orders"} {
		resp, err := http.Get(suite.server.URL + path)
		suite.Require().NoError(err)
		resp.Body.Close()
		assert.Contains(suite.T(), resp.Header.Get("Content-Type"), "application/json", path)
	}
}

// TestAuthAcceptanceTestSuite runs the acceptance test suite
func TestAuthAcceptanceTestSuite(t *testing.T) {
	if os.Getenv("SKIP_AUTH_TESTS") == "true" {
		t.Skip("Skipping auth acceptance tests")
	}

	suite.Run(t, new(AuthAcceptanceTestSuite))
}
