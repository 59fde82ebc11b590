package integration

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/n11047500/Capstone-2024-sub000/config"
	"github.com/n11047500/Capstone-2024-sub000/models"
	"github.com/n11047500/Capstone-2024-sub000/services"
	"github.com/n11047500/Capstone-2024-sub000/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"
)

// OrderIntegrationTestSuite exercises the employee order views through the real router
type OrderIntegrationTestSuite struct {
	suite.Suite
	router        *gin.Engine
	db            *gorm.DB
	cfg           *config.Config
	mocks         *testutil.Mocks
	employeeToken string
}

// SetupSuite runs once before all tests
func (suite *OrderIntegrationTestSuite) SetupSuite() {
	testutil.MustSetTestEnvironment(suite.T())
	suite.cfg = testutil.TestConfig(suite.T())
}

// SetupTest runs before each test
func (suite *OrderIntegrationTestSuite) SetupTest() {
	suite.db = testutil.NewTestDB(suite.T())
	suite.mocks = testutil.InstallMocks(services.PaymentStatusSucceeded)
	suite.router = testutil.NewRouter(suite.cfg)

	testutil.SeedCatalog(suite.T(), suite.db)
	staff := testutil.CreateUser(suite.T(), suite.db, "staff@example.com", "secret123", models.RoleEmployee)
	suite.employeeToken = testutil.SessionToken(suite.T(), staff)
}

// TearDownTest runs after each test
func (suite *OrderIntegrationTestSuite) TearDownTest() {
	services.SetOrderFeed(nil)
	if sqlDB, err := suite.db.DB(); err == nil {
		sqlDB.Close()
	}
}

func (suite *OrderIntegrationTestSuite) createOrder(name, productIDs, total, status string, createdAt time.Time) models.Order {
	order := models.Order{
		CustomerName:    name,
		CustomerEmail:   strings.ToLower(strings.Fields(name)[0]) + "@example.com",
		OrderType:       models.OrderTypeClickAndCollect,
		ProductIDs:      productIDs,
		TotalAmount:     decimal.RequireFromString(total),
		ClientSecret:    "pi_" + name + "_secret",
		PaymentIntentID: "pi_" + name,
		Status:          status,
		CreatedAt:       createdAt,
	}
	suite.Require().NoError(suite.db.Create(&order).Error)
	return order
}

func (suite *OrderIntegrationTestSuite) seedOrders() (first, second, third models.Order) {
	now := time.Now()
	first = suite.createOrder("Ann Lee", "101:Default", "89.50", models.OrderStatusPending, now.Add(-3*time.Hour))
	second = suite.createOrder("Bob Ray", "102:Custom,102:Custom", "298.00", models.OrderStatusCompleted, now.Add(-2*time.Hour))
	third = suite.createOrder("Cal Fox", "103:Default,101:Default,103:Default", "169.40", models.OrderStatusPending, now.Add(-1*time.Hour))
	return first, second, third
}

// TestListOrders_NewestFirstWithFilter lists every order and filters by status
func (suite *OrderIntegrationTestSuite) TestListOrders_NewestFirstWithFilter() {
	first, second, third := suite.seedOrders()

	w := request(suite.T(), suite.router, http.MethodGet, "/api/v1/orders", suite.employeeToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	orders := dataList(suite.T(), w)
	suite.Require().Len(orders, 3)
	assert.Equal(suite.T(), float64(third.ID), orders[0].(map[string]interface{})["id"])
	assert.Equal(suite.T(), float64(second.ID), orders[1].(map[string]interface{})["id"])
	assert.Equal(suite.T(), float64(first.ID), orders[2].(map[string]interface{})["id"])

	w = request(suite.T(), suite.router, http.MethodGet, "/api/v1/orders?status=Pending", suite.employeeToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	assert.Len(suite.T(), dataList(suite.T(), w), 2)

	w = request(suite.T(), suite.router, http.MethodGet, "/api/v1/orders?status=Refunded", suite.employeeToken, nil)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "INVALID_STATUS", errorCode(suite.T(), w))
}

// TestGetOrder_GroupsProducts rebuilds quantities from repeated product entries
func (suite *OrderIntegrationTestSuite) TestGetOrder_GroupsProducts() {
	_, _, third := suite.seedOrders()

	w := request(suite.T(), suite.router, http.MethodGet, "/api/v1/orders/"+strconv.Itoa(int(third.ID)), suite.employeeToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	data := dataObject(suite.T(), w)
	assert.Equal(suite.T(), "Cal Fox", data["customer_name"])
	products := data["products"].([]interface{})
	suite.Require().Len(products, 2)

	herbs := products[0].(map[string]interface{})
	assert.Equal(suite.T(), "Herb Window Box", herbs["name"])
	assert.Equal(suite.T(), float64(2), herbs["quantity"])
	assert.Equal(suite.T(), 79.9, herbs["total_price"])

	cedar := products[1].(map[string]interface{})
	assert.Equal(suite.T(), "Cedar Planter Box", cedar["name"])
	assert.Equal(suite.T(), float64(1), cedar["quantity"])

	w = request(suite.T(), suite.router, http.MethodGet, "/api/v1/orders/9999", suite.employeeToken, nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

// TestUpdateOrderStatus_Workflow completes an order and shows it under the Completed filter
func (suite *OrderIntegrationTestSuite) TestUpdateOrderStatus_Workflow() {
	first, _, _ := suite.seedOrders()
	path := "/api/v1/orders/" + strconv.Itoa(int(first.ID))

	w := request(suite.T(), suite.router, http.MethodPut, path, suite.employeeToken, map[string]string{"status": "Shipped"})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	assert.Equal(suite.T(), models.OrderStatusCompleted, dataObject(suite.T(), w)["status"])

	w = request(suite.T(), suite.router, http.MethodGet, "/api/v1/orders?status=Completed", suite.employeeToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	assert.Len(suite.T(), dataList(suite.T(), w), 2)

	w = request(suite.T(), suite.router, http.MethodPut, path, suite.employeeToken, map[string]string{"status": "Lost"})
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	var stored models.Order
	suite.Require().NoError(suite.db.First(&stored, first.ID).Error)
	assert.Equal(suite.T(), models.OrderStatusCompleted, stored.Status)
}

// TestExportOrders_Workbook downloads the spreadsheet an employee would open
func (suite *OrderIntegrationTestSuite) TestExportOrders_Workbook() {
	suite.seedOrders()

	w := request(suite.T(), suite.router, http.MethodGet, "/api/v1/orders/export?status=Pending", suite.employeeToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	assert.Contains(suite.T(), w.Header().Get("Content-Disposition"), "attachment; filename=orders-")

	file, err := xlsx.OpenBinary(w.Body.Bytes())
	suite.Require().NoError(err)
	sheet, ok := file.Sheet["Orders"]
	suite.Require().True(ok)
	suite.Require().Len(sheet.Rows, 3)
	assert.Equal(suite.T(), "Customer", sheet.Rows[0].Cells[1].String())
	assert.Equal(suite.T(), "Cal Fox", sheet.Rows[1].Cells[1].String())
	assert.Equal(suite.T(), "Ann Lee", sheet.Rows[2].Cells[1].String())
}

// TestOrderFeed_ReceivesCheckout streams a new order to a connected employee
func (suite *OrderIntegrationTestSuite) TestOrderFeed_ReceivesCheckout() {
	services.InitOrderFeed(nil)
	server := httptest.NewServer(suite.router)
	defer server.Close()

	feedURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/orders/feed?token=" + suite.employeeToken
	conn, resp, err := websocket.DefaultDialer.Dial(feedURL, nil)
	suite.Require().NoError(err)
	defer conn.Close()
	assert.Equal(suite.T(), http.StatusSwitchingProtocols, resp.StatusCode)

	// The upgrade registers the client before Dial returns, but give the server a moment
	suite.Require().Eventually(func() bool {
		return services.GetOrderFeed().ClientCount() == 1
	}, time.Second, 10*time.Millisecond)

	w := request(suite.T(), suite.router, http.MethodPost, "/api/v1/checkout/orders", "", map[string]interface{}{
		"name":              "Dee Park",
		"email":             "dee@example.com",
		"order_type":        models.OrderTypeClickAndCollect,
		"payment_method_id": "pm_card_visa",
		"product_ids":       []string{"101:Default"},
		"total_amount":      89.5,
		"idempotency_key":   "feed-key",
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	suite.Require().NoError(conn.SetReadDeadline(time.Now().Add(2 * time.Second)))
	var order models.Order
	suite.Require().NoError(conn.ReadJSON(&order))
	assert.Equal(suite.T(), "Dee Park", order.CustomerName)
	assert.Equal(suite.T(), models.OrderStatusPending, order.Status)
}

// TestOrderFeed_RequiresEmployee rejects the websocket upgrade for customers
func (suite *OrderIntegrationTestSuite) TestOrderFeed_RequiresEmployee() {
	services.InitOrderFeed(nil)
	customer := testutil.CreateUser(suite.T(), suite.db, "jane@example.com", "secret123", models.RoleCustomer)

	server := httptest.NewServer(suite.router)
	defer server.Close()

	feedURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/orders/feed?token=" + testutil.SessionToken(suite.T(), customer)
	_, resp, err := websocket.DefaultDialer.Dial(feedURL, nil)
	suite.Require().Error(err)
	suite.Require().NotNil(resp)
	assert.Equal(suite.T(), http.StatusForbidden, resp.StatusCode)
}

// TestOrderIntegrationTestSuite runs the order integration test suite
func TestOrderIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(OrderIntegrationTestSuite))
}
