package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/n11047500/Capstone-2024-sub000/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userRouter(email, role string) *gin.Engine {
	router := setupTestRouter()
	authed := router.Group("/", mockAuthMiddleware("1", email, role))
	authed.GET("/user/:email", GetUser)
	authed.PUT("/user/:email", UpdateUser)
	authed.POST("/update-role", UpdateRole)
	return router
}

func TestGetUser_Access(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "jane@example.com", "secret123", models.RoleCustomer)
	seedUser(t, db, "sam@example.com", "secret123", models.RoleCustomer)

	tests := []struct {
		name           string
		callerEmail    string
		callerRole     string
		path           string
		expectedStatus int
	}{
		{"own profile", "jane@example.com", models.RoleCustomer, "/user/jane@example.com", http.StatusOK},
		{"own profile different case", "Jane@Example.com", models.RoleCustomer, "/user/jane@example.com", http.StatusOK},
		{"another customer's profile", "sam@example.com", models.RoleCustomer, "/user/jane@example.com", http.StatusForbidden},
		{"employee reads any profile", "staff@example.com", models.RoleEmployee, "/user/jane@example.com", http.StatusOK},
		{"unknown profile", "staff@example.com", models.RoleEmployee, "/user/ghost@example.com", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(userRouter(tt.callerEmail, tt.callerRole), httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestGetUser_Unauthenticated(t *testing.T) {
	setupTestDB(t)
	router := setupTestRouter()
	router.GET("/user/:email", GetUser)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/user/jane@example.com", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateUser_ProfileAndAddresses(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "jane@example.com", "secret123", models.RoleCustomer)
	router := userRouter("jane@example.com", models.RoleCustomer)

	w := serve(router, jsonRequest(t, http.MethodPut, "/user/jane@example.com", map[string]interface{}{
		"first_name":       "Janet",
		"mobile":           "0411111111",
		"date_of_birth":    "1991-02-03",
		"shipping_address": "1 Garden St, Brisbane",
		"billing_address":  "PO Box 9, Brisbane",
	}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	data := decodeResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "Janet", data["first_name"])
	assert.Equal(t, "User", data["last_name"], "unset fields keep their value")
	assert.Len(t, data["addresses"], 2)

	// Second update replaces the shipping address instead of adding a row
	w = serve(router, jsonRequest(t, http.MethodPut, "/user/jane@example.com", map[string]interface{}{
		"shipping_address": "22 Orchard Rd, Brisbane",
	}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var addresses []models.Address
	require.NoError(t, db.Where("user_id = ?", user.ID).Order("type ASC").Find(&addresses).Error)
	require.Len(t, addresses, 2)
	assert.Equal(t, models.AddressBilling, addresses[0].Type)
	assert.Equal(t, "PO Box 9, Brisbane", addresses[0].Address)
	assert.Equal(t, models.AddressShipping, addresses[1].Type)
	assert.Equal(t, "22 Orchard Rd, Brisbane", addresses[1].Address)

	var updated models.User
	require.NoError(t, db.First(&updated, user.ID).Error)
	assert.Equal(t, "0411111111", updated.Mobile)
	require.NotNil(t, updated.DateOfBirth)
	assert.Equal(t, "1991-02-03", updated.DateOfBirth.Format("2006-01-02"))
}

func TestUpdateUser_Validation(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "jane@example.com", "secret123", models.RoleCustomer)

	w := serve(userRouter("jane@example.com", models.RoleCustomer), jsonRequest(t, http.MethodPut, "/user/jane@example.com", map[string]interface{}{
		"date_of_birth": "03/02/1991",
	}))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(userRouter("sam@example.com", models.RoleCustomer), jsonRequest(t, http.MethodPut, "/user/jane@example.com", map[string]interface{}{
		"first_name": "Hacked",
	}))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdateRole(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "jane@example.com", "secret123", models.RoleCustomer)
	router := userRouter("staff@example.com", models.RoleEmployee)

	tests := []struct {
		name           string
		body           map[string]interface{}
		expectedStatus int
	}{
		{"promote to employee", map[string]interface{}{"email": "jane@example.com", "role": "employee"}, http.StatusOK},
		{"invalid role", map[string]interface{}{"email": "jane@example.com", "role": "admin"}, http.StatusBadRequest},
		{"unknown user", map[string]interface{}{"email": "ghost@example.com", "role": "employee"}, http.StatusNotFound},
		{"missing email", map[string]interface{}{"role": "employee"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(router, jsonRequest(t, http.MethodPost, "/update-role", tt.body))
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
		})
	}

	var user models.User
	require.NoError(t, db.Where("email = ?", "jane@example.com").First(&user).Error)
	assert.True(t, user.IsEmployee())
}

func TestUpdateRole_SameRoleTwice(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "jane@example.com", "secret123", models.RoleCustomer)
	router := userRouter("staff@example.com", models.RoleEmployee)
	body := map[string]interface{}{"email": "jane@example.com", "role": "employee"}

	for i := 0; i < 2; i++ {
		w := serve(router, jsonRequest(t, http.MethodPost, "/update-role", body))
		require.Equal(t, http.StatusOK, w.Code, "attempt %d: %s", i+1, w.Body.String())
		data := decodeResponse(t, w)["data"].(map[string]interface{})
		assert.Equal(t, "employee", data["role"])
	}

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("role = ?", models.RoleEmployee).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
