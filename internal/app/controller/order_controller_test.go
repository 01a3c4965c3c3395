package controller

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/model"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/repository"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupOrderControllerTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	testDB := setupControllerDB(t)

	txManager := repository.NewTransactionManager(testDB)
	orderRepo := repository.NewOrderRepository(testDB)
	checkoutCtrl := NewCheckoutController(service.NewCheckoutService(
		txManager, orderRepo, repository.NewAddressRepository(testDB), nil, nil, "INR", 30*time.Second,
	))
	orderCtrl := NewOrderController(service.NewOrderService(txManager, orderRepo, nil))

	router := gin.New()
	router.POST("/checkout", asUser(testUserID, checkoutCtrl.Checkout))
	router.GET("/orders", asUser(testUserID, orderCtrl.GetOrders))
	router.GET("/orders/:id", asUser(testUserID, orderCtrl.GetOrderByID))
	router.POST("/orders/:id/cancel", asUser(testUserID, orderCtrl.CancelOrder))
	router.GET("/other/orders/:id", asUser(otherUserID, orderCtrl.GetOrderByID))
	return router, testDB
}

func fillCart(t *testing.T, testDB *gorm.DB, userID, sku string, quantity int) {
	t.Helper()
	variant := variantBySKU(t, testDB, sku)
	cart := model.Cart{UserID: userID}
	require.NoError(t, testDB.Where(model.Cart{UserID: userID}).FirstOrCreate(&cart).Error)
	require.NoError(t, testDB.Create(&model.CartItem{
		CartID:    cart.ID,
		VariantID: variant.ID,
		Quantity:  quantity,
		ItemType:  model.CartItemTypeCart,
	}).Error)
}

func checkoutBody(address *model.Address, method string) gin.H {
	return gin.H{
		"shipping_address_id": address.ID,
		"billing_address_id":  address.ID,
		"payment_method":      method,
	}
}

func TestCheckoutController_Checkout(t *testing.T) {
	router, testDB := setupOrderControllerTest(t)
	address := createTestAddress(t, testDB, testUserID)
	fillCart(t, testDB, testUserID, "KUR-CHK-001-S-WHT", 1)

	headers := map[string]string{idempotencyKeyHeader: "checkout-1"}
	w := performRequest(router, http.MethodPost, "/checkout", checkoutBody(address, "cod"), headers)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	response := decodeBody(t, w)
	assert.Equal(t, "Order placed successfully", response["message"])
	assert.Equal(t, false, response["requires_payment"])
	order := response["order"].(map[string]interface{})
	assert.Equal(t, "pending", order["order_status"])
	assert.Equal(t, "cod_pending", order["payment_status"])
	assert.Len(t, order["items"], 1)

	// same key replays the order instead of failing on the now empty cart
	w = performRequest(router, http.MethodPost, "/checkout", checkoutBody(address, "cod"), headers)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	replay := decodeBody(t, w)
	assert.Equal(t, "Order already placed", replay["message"])
	assert.Equal(t, order["id"], replay["order"].(map[string]interface{})["id"])

	w = performRequest(router, http.MethodPost, "/checkout", checkoutBody(address, "cod"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "CART_EMPTY", decodeBody(t, w)["error"])
}

func TestCheckoutController_Validation(t *testing.T) {
	router, testDB := setupOrderControllerTest(t)
	address := createTestAddress(t, testDB, testUserID)
	foreign := createTestAddress(t, testDB, otherUserID)
	fillCart(t, testDB, testUserID, "DUP-BAN-001-FS-RED", 1)

	w := performRequest(router, http.MethodPost, "/checkout", checkoutBody(address, "paypal"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"payment_method"}, fieldErrors(decodeBody(t, w)))

	w = performRequest(router, http.MethodPost, "/checkout", gin.H{"payment_method": "cod"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.ElementsMatch(t, []string{"shipping_address_id", "billing_address_id"}, fieldErrors(decodeBody(t, w)))

	w = performRequest(router, http.MethodPost, "/checkout", checkoutBody(foreign, "cod"))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "ADDRESS_NOT_FOUND", decodeBody(t, w)["error"])
}

func TestOrderController_ListGetCancel(t *testing.T) {
	router, testDB := setupOrderControllerTest(t)
	address := createTestAddress(t, testDB, testUserID)
	fillCart(t, testDB, testUserID, "DUP-BAN-001-FS-GRN", 2)

	w := performRequest(router, http.MethodPost, "/checkout", checkoutBody(address, "razorpay"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, true, decodeBody(t, w)["requires_payment"])
	orderID := uint(decodeBody(t, w)["order"].(map[string]interface{})["id"].(float64))

	w = performRequest(router, http.MethodGet, "/orders?limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeBody(t, w)
	assert.Len(t, list["orders"], 1)
	assert.Equal(t, float64(5), list["pagination"].(map[string]interface{})["limit"])

	w = performRequest(router, http.MethodGet, "/orders?status=lost", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"status"}, fieldErrors(decodeBody(t, w)))

	w = performRequest(router, http.MethodGet, "/orders?from=2024-13-01", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(router, http.MethodGet, fmt.Sprintf("/orders/%d", orderID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	order := decodeBody(t, w)["order"].(map[string]interface{})
	assert.NotNil(t, order["shipping_address"])
	assert.Len(t, order["status_history"], 1)

	w = performRequest(router, http.MethodGet, fmt.Sprintf("/other/orders/%d", orderID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "ORDER_NOT_FOUND", decodeBody(t, w)["error"])

	cancelPath := fmt.Sprintf("/orders/%d/cancel", orderID)
	w = performRequest(router, http.MethodPost, cancelPath, gin.H{"reason": "ordered the wrong colour"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "cancelled", decodeBody(t, w)["order"].(map[string]interface{})["order_status"])

	w = performRequest(router, http.MethodPost, cancelPath, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ORDER_NOT_CANCELLABLE", decodeBody(t, w)["error"])
}
