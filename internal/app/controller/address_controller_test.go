package controller

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/repository"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAddressControllerTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	testDB := setupControllerDB(t)
	ctrl := NewAddressController(service.NewAddressService(repository.NewAddressRepository(testDB)))

	router := gin.New()
	router.GET("/addresses", asUser(testUserID, ctrl.ListAddresses))
	router.POST("/addresses", asUser(testUserID, ctrl.CreateAddress))
	router.PATCH("/addresses/default", asUser(testUserID, ctrl.SetDefaultAddress))
	router.GET("/addresses/:id", asUser(testUserID, ctrl.GetAddress))
	router.PATCH("/addresses/:id", asUser(testUserID, ctrl.UpdateAddress))
	router.DELETE("/addresses/:id", asUser(testUserID, ctrl.DeleteAddress))
	return router, testDB
}

func newAddressBody(addressType string, isDefault bool) gin.H {
	return gin.H{
		"address_type":  addressType,
		"full_name":     "Fatima Siddiqui",
		"phone":         "9811122233",
		"address_line1": "4 Hazratganj",
		"city":          "Lucknow",
		"state":         "Uttar Pradesh",
		"postal_code":   "226001",
		"is_default":    isDefault,
	}
}

func TestAddressController_CreateAndList(t *testing.T) {
	router, _ := setupAddressControllerTest(t)

	w := performRequest(router, http.MethodPost, "/addresses", newAddressBody("shipping", true))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	address := decodeBody(t, w)["address"].(map[string]interface{})
	assert.Equal(t, testUserID, address["user_id"])
	assert.Equal(t, "India", address["country"])

	w = performRequest(router, http.MethodPost, "/addresses", newAddressBody("billing", false))
	require.Equal(t, http.StatusCreated, w.Code)

	w = performRequest(router, http.MethodGet, "/addresses", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decodeBody(t, w)["count"])

	w = performRequest(router, http.MethodGet, "/addresses?type=billing", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decodeBody(t, w)["count"])

	w = performRequest(router, http.MethodGet, "/addresses?type=office", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"address_type"}, fieldErrors(decodeBody(t, w)))
}

func TestAddressController_CreateValidation(t *testing.T) {
	router, _ := setupAddressControllerTest(t)

	w := performRequest(router, http.MethodPost, "/addresses", gin.H{"address_type": "shipping"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	fields := fieldErrors(decodeBody(t, w))
	for _, field := range []string{"full_name", "phone", "address_line1", "city", "state", "postal_code"} {
		assert.Contains(t, fields, field)
	}
}

func TestAddressController_OwnershipAndDefault(t *testing.T) {
	router, testDB := setupAddressControllerTest(t)
	foreign := createTestAddress(t, testDB, otherUserID)

	w := performRequest(router, http.MethodGet, fmt.Sprintf("/addresses/%d", foreign.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "ADDRESS_NOT_FOUND", decodeBody(t, w)["error"])

	w = performRequest(router, http.MethodPost, "/addresses", newAddressBody("both", true))
	require.Equal(t, http.StatusCreated, w.Code)
	firstID := decodeBody(t, w)["address"].(map[string]interface{})["id"]

	w = performRequest(router, http.MethodPost, "/addresses", newAddressBody("both", false))
	require.Equal(t, http.StatusCreated, w.Code)
	secondID := decodeBody(t, w)["address"].(map[string]interface{})["id"]

	w = performRequest(router, http.MethodPatch, "/addresses/default", gin.H{"address_id": secondID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, decodeBody(t, w)["address"].(map[string]interface{})["is_default"])

	w = performRequest(router, http.MethodGet, fmt.Sprintf("/addresses/%v", firstID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decodeBody(t, w)["address"].(map[string]interface{})["is_default"])

	w = performRequest(router, http.MethodPatch, fmt.Sprintf("/addresses/%v", firstID), gin.H{"city": "Kanpur"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Kanpur", decodeBody(t, w)["address"].(map[string]interface{})["city"])

	w = performRequest(router, http.MethodDelete, fmt.Sprintf("/addresses/%v", firstID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = performRequest(router, http.MethodGet, fmt.Sprintf("/addresses/%v", firstID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
