package controller

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/model"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/repository"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupWishlistControllerTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	testDB := setupControllerDB(t)

	productRepo := repository.NewProductRepository(testDB)
	cartService := service.NewCartService(
		repository.NewTransactionManager(testDB),
		repository.NewCartRepository(testDB),
		productRepo,
		nil,
	)
	ctrl := NewWishlistController(service.NewWishlistService(
		repository.NewWishlistRepository(testDB), productRepo, cartService,
	))

	router := gin.New()
	router.GET("/wishlist", asUser(testUserID, ctrl.GetWishlist))
	router.POST("/wishlist/items", asUser(testUserID, ctrl.AddToWishlist))
	router.DELETE("/wishlist/items/:id", asUser(testUserID, ctrl.RemoveFromWishlist))
	router.POST("/wishlist/items/:id/move-to-cart", asUser(testUserID, ctrl.MoveToCart))
	return router, testDB
}

func productBySlug(t *testing.T, testDB *gorm.DB, slug string) *model.Product {
	t.Helper()
	var product model.Product
	require.NoError(t, testDB.Where("slug = ?", slug).First(&product).Error)
	return &product
}

func TestWishlistController_AddIsIdempotent(t *testing.T) {
	router, testDB := setupWishlistControllerTest(t)
	product := productBySlug(t, testDB, "banarasi-silk-dupatta")

	w := performRequest(router, http.MethodPost, "/wishlist/items", gin.H{"product_id": product.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	first := decodeBody(t, w)["item"].(map[string]interface{})["id"]

	w = performRequest(router, http.MethodPost, "/wishlist/items", gin.H{"product_id": product.ID})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, first, decodeBody(t, w)["item"].(map[string]interface{})["id"])

	w = performRequest(router, http.MethodGet, "/wishlist", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decodeBody(t, w)["count"])

	w = performRequest(router, http.MethodPost, "/wishlist/items", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"product_id"}, fieldErrors(decodeBody(t, w)))

	w = performRequest(router, http.MethodPost, "/wishlist/items", gin.H{"product_id": 99999})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "PRODUCT_NOT_FOUND", decodeBody(t, w)["error"])
}

func TestWishlistController_MoveToCart(t *testing.T) {
	router, testDB := setupWishlistControllerTest(t)
	product := productBySlug(t, testDB, "banarasi-silk-dupatta")
	variant := variantBySKU(t, testDB, "DUP-BAN-001-FS-RED")

	w := performRequest(router, http.MethodPost, "/wishlist/items", gin.H{"product_id": product.ID})
	require.Equal(t, http.StatusOK, w.Code)
	itemID := decodeBody(t, w)["item"].(map[string]interface{})["id"]
	movePath := fmt.Sprintf("/wishlist/items/%v/move-to-cart", itemID)

	w = performRequest(router, http.MethodPost, movePath, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"variant_id"}, fieldErrors(decodeBody(t, w)))

	w = performRequest(router, http.MethodPost, movePath, gin.H{"variant_id": variant.ID, "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cartItem := decodeBody(t, w)["cart_item"].(map[string]interface{})
	assert.Equal(t, float64(2), cartItem["quantity"])

	w = performRequest(router, http.MethodGet, "/wishlist", nil)
	assert.Equal(t, float64(0), decodeBody(t, w)["count"])

	w = performRequest(router, http.MethodDelete, fmt.Sprintf("/wishlist/items/%v", itemID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "WISHLIST_ITEM_NOT_FOUND", decodeBody(t, w)["error"])
}
