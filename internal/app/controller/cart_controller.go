package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/model"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/service"
	apperrors "github.com/kashan16/fatima-botique-ecom-sub001/internal/errors"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/middleware"
)

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

type AddToCartRequest struct {
	VariantID uint   `json:"variant_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	ItemType  string `json:"item_type" binding:"omitempty,oneof=cart save_for_later"`
}

type UpdateCartItemRequest struct {
	Quantity *int    `json:"quantity" binding:"omitempty,min=1"`
	ItemType *string `json:"item_type" binding:"omitempty,oneof=cart save_for_later"`
}

type MergeCartRequest struct {
	GuestToken string `json:"guest_token" binding:"required"`
}

// GetCart returns the caller's cart with a totals preview
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	view, err := ctrl.cartService.GetCart(c.Request.Context(), userID)
	if err != nil {
		respondWithServiceError(c, err, "get cart")
		return
	}
	c.JSON(http.StatusOK, view)
}

// AddToCart adds a variant to the cart or bumps its quantity
// POST /api/v1/cart/items
func (ctrl *CartController) AddToCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add to cart request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		apperrors.RespondWithBindingError(c, err)
		return
	}

	item, err := ctrl.cartService.AddItem(c.Request.Context(), userID, service.AddCartItemInput{
		VariantID: req.VariantID,
		Quantity:  req.Quantity,
		ItemType:  model.CartItemType(req.ItemType),
	})
	if err != nil {
		respondWithServiceError(c, err, "add cart item")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Item added to cart",
		"item":    item,
	})
}

// UpdateCartItem changes quantity or moves an item between cart and saved list
// PATCH /api/v1/cart/items/:id
func (ctrl *CartController) UpdateCartItem(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	itemID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.RespondWithBindingError(c, err)
		return
	}
	if req.Quantity == nil && req.ItemType == nil {
		apperrors.RespondWithValidationError(c, []apperrors.FieldError{{Field: "body", Message: "quantity or item_type is required"}})
		return
	}

	input := service.UpdateCartItemInput{Quantity: req.Quantity}
	if req.ItemType != nil {
		t := model.CartItemType(*req.ItemType)
		input.ItemType = &t
	}

	item, err := ctrl.cartService.UpdateItem(c.Request.Context(), userID, itemID, input)
	if err != nil {
		respondWithServiceError(c, err, "update cart item")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item updated",
		"item":    item,
	})
}

// RemoveFromCart deletes a cart line
// DELETE /api/v1/cart/items/:id
func (ctrl *CartController) RemoveFromCart(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	itemID, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.cartService.RemoveItem(c.Request.Context(), userID, itemID); err != nil {
		respondWithServiceError(c, err, "delete cart item")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item removed from cart"})
}

// ClearCart empties the purchasable lines
// DELETE /api/v1/cart
func (ctrl *CartController) ClearCart(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	if err := ctrl.cartService.ClearCart(c.Request.Context(), userID); err != nil {
		respondWithServiceError(c, err, "delete cart items")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}

// MergeGuestCart folds a guest cart into the caller's cart after login
// POST /api/v1/cart/merge
func (ctrl *CartController) MergeGuestCart(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req MergeCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.RespondWithBindingError(c, err)
		return
	}

	view, err := ctrl.cartService.MergeGuestCart(c.Request.Context(), userID, req.GuestToken)
	if err != nil {
		respondWithServiceError(c, err, "merge cart")
		return
	}
	c.JSON(http.StatusOK, view)
}
