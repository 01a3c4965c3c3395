package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kashan16/fatima-botique-ecom-sub001/config"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/controller"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/model"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/repository"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/service"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/db"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/middleware"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/router"
	"github.com/kashan16/fatima-botique-ecom-sub001/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testJWTSecret = "integration-secret"

type TestServer struct {
	Router *gin.Engine
	DB     *gorm.DB
}

func setupIntegrationTest(t *testing.T) *TestServer {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})
	require.NoError(t, db.SeedCatalogForTest(testDB))

	txManager := repository.NewTransactionManager(testDB)
	productRepo := repository.NewProductRepository(testDB)
	cartRepo := repository.NewCartRepository(testDB)
	orderRepo := repository.NewOrderRepository(testDB)
	addressRepo := repository.NewAddressRepository(testDB)
	wishlistRepo := repository.NewWishlistRepository(testDB)

	cartService := service.NewCartService(txManager, cartRepo, productRepo, nil)

	controllers := router.Controllers{
		Product:   controller.NewProductController(service.NewCatalogService(productRepo, repository.NewCategoryRepository(testDB))),
		Cart:      controller.NewCartController(cartService),
		GuestCart: controller.NewGuestCartController(service.NewGuestCartService(nil, productRepo)),
		Wishlist:  controller.NewWishlistController(service.NewWishlistService(wishlistRepo, productRepo, cartService)),
		Address:   controller.NewAddressController(service.NewAddressService(addressRepo)),
		Profile: controller.NewProfileController(
			service.NewProfileService(repository.NewProfileRepository(testDB)),
			service.NewUserAssetService(cartRepo, wishlistRepo),
		),
		Checkout: controller.NewCheckoutController(service.NewCheckoutService(txManager, orderRepo, addressRepo, nil, nil, "INR", 30*time.Second)),
		Order:    controller.NewOrderController(service.NewOrderService(txManager, orderRepo, nil)),
		Payment:  controller.NewPaymentController(service.NewPaymentService(txManager, orderRepo, nil, nil)),
	}

	cfg := &config.Config{
		Server: config.ServerConfig{GinMode: gin.TestMode},
		CORS:   config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}
	engine := router.NewRouter(controllers, middleware.NewAuthMiddleware(testJWTSecret, ""), cfg).Setup()

	return &TestServer{Router: engine, DB: testDB}
}

func (s *TestServer) token(t *testing.T, userID, role string) string {
	t.Helper()
	token, err := util.GenerateAccessToken(userID, userID+"@example.com", role, testJWTSecret, time.Hour)
	require.NoError(t, err)
	return token
}

func (s *TestServer) do(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)

	var response map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), w.Body.String())
	}
	return w.Code, response
}

func TestIntegration_HealthAndCORS(t *testing.T) {
	server := setupIntegrationTest(t)

	code, body := server.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", body["status"])

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/cart", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	server.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Idempotency-Key")
}

func TestIntegration_AuthBoundaries(t *testing.T) {
	server := setupIntegrationTest(t)

	code, _ := server.do(t, http.MethodGet, "/api/v1/products", "", nil)
	assert.Equal(t, http.StatusOK, code, "catalog is public")

	code, body := server.do(t, http.MethodGet, "/api/v1/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "AUTH_UNAUTHORIZED", body["error"])

	code, _ = server.do(t, http.MethodGet, "/api/v1/cart", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	userToken := server.token(t, "user_shopper", "user")
	code, body = server.do(t, http.MethodPost, "/api/v1/admin/products/1/images", userToken, gin.H{"url": "https://cdn.example.com/a.jpg"})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "AUTHZ_FORBIDDEN", body["error"])

	adminToken := server.token(t, "user_admin", "admin")
	code, _ = server.do(t, http.MethodPost, "/api/v1/admin/products/1/images", adminToken, gin.H{"url": "https://cdn.example.com/a.jpg"})
	assert.Equal(t, http.StatusCreated, code)

	code, body = server.do(t, http.MethodPost, "/api/v1/guest-cart", "", nil)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "INTERNAL_EXTERNAL_API", body["error"])
}

func TestIntegration_CashOnDeliveryPurchase(t *testing.T) {
	server := setupIntegrationTest(t)
	token := server.token(t, "user_shopper", "user")

	code, body := server.do(t, http.MethodPost, "/api/v1/user/initialize-assets", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.NotZero(t, body["cart_id"])

	var variant model.ProductVariant
	require.NoError(t, server.DB.Where("sku = ?", "KUR-CHK-001-XL-WHT").First(&variant).Error)

	code, body = server.do(t, http.MethodPost, "/api/v1/cart/items", token, gin.H{"variant_id": variant.ID, "quantity": 2})
	require.Equal(t, http.StatusCreated, code, body)

	code, body = server.do(t, http.MethodPost, "/api/v1/addresses", token, gin.H{
		"address_type":  "both",
		"full_name":     "Fatima Siddiqui",
		"phone":         "9811122233",
		"address_line1": "4 Hazratganj",
		"city":          "Lucknow",
		"state":         "Uttar Pradesh",
		"postal_code":   "226001",
		"is_default":    true,
	})
	require.Equal(t, http.StatusCreated, code, body)
	addressID := body["address"].(map[string]interface{})["id"]

	code, body = server.do(t, http.MethodPost, "/api/v1/checkout", token, gin.H{
		"shipping_address_id": addressID,
		"billing_address_id":  addressID,
		"payment_method":      "cod",
		"notes":               "Please call before delivery",
	})
	require.Equal(t, http.StatusCreated, code, body)
	order := body["order"].(map[string]interface{})
	orderID := order["id"]
	assert.Equal(t, "2798", order["subtotal"])

	code, body = server.do(t, http.MethodGet, "/api/v1/cart", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(0), body["item_count"], "checkout empties the cart")

	code, body = server.do(t, http.MethodPost, "/api/v1/payments/razorpay/order", token, gin.H{"order_id": orderID})
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "PAYMENT_GATEWAY_ERROR", body["error"])

	code, body = server.do(t, http.MethodPost, "/api/v1/payments/cod/confirm", token, gin.H{"order_id": orderID})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, true, body["success"])

	code, body = server.do(t, http.MethodGet, fmt.Sprintf("/api/v1/payments/orders/%v", orderID), token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "confirmed", body["order_status"])
	assert.Equal(t, "cod_pending", body["payment_status"])
	assert.Equal(t, false, body["is_paid"])

	otherToken := server.token(t, "user_other", "user")
	code, _ = server.do(t, http.MethodGet, fmt.Sprintf("/api/v1/orders/%v", orderID), otherToken, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, body = server.do(t, http.MethodPost, fmt.Sprintf("/api/v1/orders/%v/cancel", orderID), token, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "ORDER_NOT_CANCELLABLE", body["error"])
}
