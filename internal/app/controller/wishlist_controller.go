package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/service"
	apperrors "github.com/kashan16/fatima-botique-ecom-sub001/internal/errors"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/middleware"
)

type WishlistController struct {
	wishlistService service.WishlistService
}

func NewWishlistController(wishlistService service.WishlistService) *WishlistController {
	return &WishlistController{
		wishlistService: wishlistService,
	}
}

type AddToWishlistRequest struct {
	ProductID uint  `json:"product_id" binding:"required"`
	VariantID *uint `json:"variant_id"`
}

type MoveToCartRequest struct {
	VariantID *uint `json:"variant_id"`
	Quantity  int   `json:"quantity" binding:"omitempty,min=1"`
}

// GetWishlist returns the caller's wishlist
// GET /api/v1/wishlist
func (ctrl *WishlistController) GetWishlist(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	items, err := ctrl.wishlistService.GetWishlist(c.Request.Context(), userID)
	if err != nil {
		respondWithServiceError(c, err, "get wishlist")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

// AddToWishlist adds a product; adding it twice returns the existing entry
// POST /api/v1/wishlist/items
func (ctrl *WishlistController) AddToWishlist(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req AddToWishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.RespondWithBindingError(c, err)
		return
	}

	item, err := ctrl.wishlistService.AddItem(c.Request.Context(), userID, service.AddWishlistItemInput{
		ProductID: req.ProductID,
		VariantID: req.VariantID,
	})
	if err != nil {
		respondWithServiceError(c, err, "add wishlist item")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Added to wishlist",
		"item":    item,
	})
}

// RemoveFromWishlist deletes a wishlist entry
// DELETE /api/v1/wishlist/items/:id
func (ctrl *WishlistController) RemoveFromWishlist(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	itemID, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.wishlistService.RemoveItem(c.Request.Context(), userID, itemID); err != nil {
		respondWithServiceError(c, err, "delete wishlist item")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Removed from wishlist"})
}

// MoveToCart moves a wishlist entry into the cart
// POST /api/v1/wishlist/items/:id/move-to-cart
func (ctrl *WishlistController) MoveToCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUser(c)
	if !ok {
		return
	}
	itemID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req MoveToCartRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apperrors.RespondWithBindingError(c, err)
			return
		}
	}

	cartItem, err := ctrl.wishlistService.MoveToCart(c.Request.Context(), userID, itemID, service.MoveToCartInput{
		VariantID: req.VariantID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		respondWithServiceError(c, err, "move wishlist item")
		return
	}

	log.Info("Wishlist item moved to cart", map[string]interface{}{
		"user_id":          userID,
		"wishlist_item_id": itemID,
	})
	c.JSON(http.StatusOK, gin.H{
		"message":   "Moved to cart",
		"cart_item": cartItem,
	})
}
