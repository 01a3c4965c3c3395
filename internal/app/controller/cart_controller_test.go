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

func setupCartControllerTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	testDB := setupControllerDB(t)

	cartService := service.NewCartService(
		repository.NewTransactionManager(testDB),
		repository.NewCartRepository(testDB),
		repository.NewProductRepository(testDB),
		nil,
	)
	ctrl := NewCartController(cartService)

	router := gin.New()
	router.GET("/cart", asUser(testUserID, ctrl.GetCart))
	router.POST("/cart/items", asUser(testUserID, ctrl.AddToCart))
	router.PATCH("/cart/items/:id", asUser(testUserID, ctrl.UpdateCartItem))
	router.DELETE("/cart/items/:id", asUser(testUserID, ctrl.RemoveFromCart))
	router.DELETE("/cart", asUser(testUserID, ctrl.ClearCart))
	router.POST("/cart/merge", asUser(testUserID, ctrl.MergeGuestCart))
	router.GET("/anonymous/cart", ctrl.GetCart)
	return router, testDB
}

func TestCartController_GetCart_Empty(t *testing.T) {
	router, _ := setupCartControllerTest(t)

	w := performRequest(router, http.MethodGet, "/cart", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	response := decodeBody(t, w)
	assert.Equal(t, float64(0), response["item_count"])
	assert.Empty(t, response["items"])
}

func TestCartController_RequiresUser(t *testing.T) {
	router, _ := setupCartControllerTest(t)

	w := performRequest(router, http.MethodGet, "/anonymous/cart", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "AUTH_UNAUTHORIZED", decodeBody(t, w)["error"])
}

func TestCartController_AddToCart(t *testing.T) {
	router, testDB := setupCartControllerTest(t)
	variant := variantBySKU(t, testDB, "KUR-CHK-001-M-WHT")

	w := performRequest(router, http.MethodPost, "/cart/items", gin.H{
		"variant_id": variant.ID,
		"quantity":   2,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	item := decodeBody(t, w)["item"].(map[string]interface{})
	assert.Equal(t, float64(2), item["quantity"])

	w = performRequest(router, http.MethodGet, "/cart", nil)
	require.Equal(t, http.StatusOK, w.Code)
	response := decodeBody(t, w)
	assert.Equal(t, float64(2), response["item_count"])
	totals := response["totals"].(map[string]interface{})
	assert.Equal(t, "2598", totals["subtotal"])
}

func TestCartController_AddToCart_Validation(t *testing.T) {
	router, testDB := setupCartControllerTest(t)
	variant := variantBySKU(t, testDB, "KUR-CHK-001-XL-WHT")

	tests := []struct {
		name       string
		body       gin.H
		wantStatus int
		wantCode   string
		wantField  string
	}{
		{"missing quantity", gin.H{"variant_id": variant.ID}, http.StatusBadRequest, "VALIDATION_INVALID_INPUT", "quantity"},
		{"bad item type", gin.H{"variant_id": variant.ID, "quantity": 1, "item_type": "later"}, http.StatusBadRequest, "VALIDATION_INVALID_INPUT", "item_type"},
		{"unknown variant", gin.H{"variant_id": 99999, "quantity": 1}, http.StatusNotFound, "VARIANT_NOT_FOUND", ""},
		{"over stock", gin.H{"variant_id": variant.ID, "quantity": 5}, http.StatusBadRequest, "CART_INSUFFICIENT_STOCK", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(router, http.MethodPost, "/cart/items", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			response := decodeBody(t, w)
			assert.Equal(t, tt.wantCode, response["error"])
			if tt.wantField != "" {
				assert.Contains(t, fieldErrors(response), tt.wantField)
			}
		})
	}
}

func TestCartController_UpdateAndRemove(t *testing.T) {
	router, testDB := setupCartControllerTest(t)
	variant := variantBySKU(t, testDB, "DUP-BAN-001-FS-RED")

	w := performRequest(router, http.MethodPost, "/cart/items", gin.H{"variant_id": variant.ID, "quantity": 1})
	require.Equal(t, http.StatusCreated, w.Code)
	itemID := uint(decodeBody(t, w)["item"].(map[string]interface{})["id"].(float64))
	itemPath := fmt.Sprintf("/cart/items/%d", itemID)

	w = performRequest(router, http.MethodPatch, itemPath, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(router, http.MethodPatch, itemPath, gin.H{"item_type": "save_for_later"})
	require.Equal(t, http.StatusOK, w.Code)

	w = performRequest(router, http.MethodGet, "/cart", nil)
	response := decodeBody(t, w)
	assert.Empty(t, response["items"])
	assert.Len(t, response["saved_for_later"], 1)

	w = performRequest(router, http.MethodDelete, itemPath, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = performRequest(router, http.MethodDelete, itemPath, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "CART_ITEM_NOT_FOUND", decodeBody(t, w)["error"])

	w = performRequest(router, http.MethodDelete, "/cart/items/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"id"}, fieldErrors(decodeBody(t, w)))
}

func TestCartController_ClearCart(t *testing.T) {
	router, testDB := setupCartControllerTest(t)
	variant := variantBySKU(t, testDB, "DUP-BAN-001-FS-GRN")

	w := performRequest(router, http.MethodPost, "/cart/items", gin.H{"variant_id": variant.ID, "quantity": 3})
	require.Equal(t, http.StatusCreated, w.Code)

	w = performRequest(router, http.MethodDelete, "/cart", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = performRequest(router, http.MethodGet, "/cart", nil)
	assert.Equal(t, float64(0), decodeBody(t, w)["item_count"])
}

func TestCartController_MergeWithoutGuestStore(t *testing.T) {
	router, _ := setupCartControllerTest(t)

	w := performRequest(router, http.MethodPost, "/cart/merge", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"guest_token"}, fieldErrors(decodeBody(t, w)))

	// without a guest store the merge is a no-op that returns the cart
	w = performRequest(router, http.MethodPost, "/cart/merge", gin.H{"guest_token": "abc"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), decodeBody(t, w)["item_count"])
}
