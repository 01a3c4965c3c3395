package controller

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/model"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/db"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testUserID  = "user_2a9Xk1"
	otherUserID = "user_7bQp03"
)

// setupControllerDB opens an in-memory database loaded with the demo catalog.
func setupControllerDB(t *testing.T) *gorm.DB {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})
	require.NoError(t, db.SeedCatalogForTest(testDB))

	gin.SetMode(gin.TestMode)
	return testDB
}

// asUser wraps a handler so it runs as if Authenticate had accepted userID.
func asUser(userID string, handler gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		handler(c)
	}
}

func performRequest(router *gin.Engine, method, path string, body interface{}, headers ...map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, h := range headers {
		for k, v := range h {
			req.Header.Set(k, v)
		}
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func variantBySKU(t *testing.T, testDB *gorm.DB, sku string) *model.ProductVariant {
	t.Helper()
	var variant model.ProductVariant
	require.NoError(t, testDB.Where("sku = ?", sku).First(&variant).Error)
	return &variant
}

func createTestAddress(t *testing.T, testDB *gorm.DB, userID string) *model.Address {
	t.Helper()
	address := &model.Address{
		UserID:       userID,
		AddressType:  model.AddressTypeBoth,
		FullName:     "Aisha Khan",
		Phone:        "9876543210",
		AddressLine1: "12 MG Road",
		City:         "Lucknow",
		State:        "Uttar Pradesh",
		PostalCode:   "226001",
		Country:      "India",
		IsDefault:    true,
	}
	require.NoError(t, testDB.Create(address).Error)
	return address
}

// fieldErrors pulls the field names out of an errors[] list.
func fieldErrors(response map[string]interface{}) []string {
	raw, _ := response["errors"].([]interface{})
	fields := make([]string, 0, len(raw))
	for _, e := range raw {
		if m, ok := e.(map[string]interface{}); ok {
			fields = append(fields, m["field"].(string))
		}
	}
	return fields
}
