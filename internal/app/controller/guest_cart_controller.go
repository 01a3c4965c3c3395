package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/service"
	apperrors "github.com/kashan16/fatima-botique-ecom-sub001/internal/errors"
)

const guestTokenHeader = "X-Guest-Token"

type GuestCartController struct {
	guestCartService service.GuestCartService
}

func NewGuestCartController(guestCartService service.GuestCartService) *GuestCartController {
	return &GuestCartController{guestCartService: guestCartService}
}

type AddGuestItemRequest struct {
	VariantID uint `json:"variant_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

func guestToken(c *gin.Context) (string, bool) {
	token := c.GetHeader(guestTokenHeader)
	if token == "" {
		apperrors.RespondWithValidationError(c, []apperrors.FieldError{{Field: guestTokenHeader, Message: "is required"}})
		return "", false
	}
	return token, true
}

// CreateGuestCart issues a new guest token
// POST /api/v1/guest-cart
func (ctrl *GuestCartController) CreateGuestCart(c *gin.Context) {
	view, err := ctrl.guestCartService.CreateGuestCart(c.Request.Context())
	if err != nil {
		respondWithServiceError(c, err, "create guest cart")
		return
	}
	c.JSON(http.StatusCreated, view)
}

// GetGuestCart returns the guest cart for X-Guest-Token
// GET /api/v1/guest-cart
func (ctrl *GuestCartController) GetGuestCart(c *gin.Context) {
	token, ok := guestToken(c)
	if !ok {
		return
	}
	view, err := ctrl.guestCartService.GetGuestCart(c.Request.Context(), token)
	if err != nil {
		respondWithServiceError(c, err, "get guest cart")
		return
	}
	c.JSON(http.StatusOK, view)
}

// AddGuestItem adds a variant to the guest cart
// POST /api/v1/guest-cart/items
func (ctrl *GuestCartController) AddGuestItem(c *gin.Context) {
	token, ok := guestToken(c)
	if !ok {
		return
	}

	var req AddGuestItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.RespondWithBindingError(c, err)
		return
	}

	view, err := ctrl.guestCartService.AddGuestItem(c.Request.Context(), token, req.VariantID, req.Quantity)
	if err != nil {
		respondWithServiceError(c, err, "add guest cart item")
		return
	}
	c.JSON(http.StatusOK, view)
}

// RemoveGuestItem drops a variant from the guest cart
// DELETE /api/v1/guest-cart/items/:variant_id
func (ctrl *GuestCartController) RemoveGuestItem(c *gin.Context) {
	token, ok := guestToken(c)
	if !ok {
		return
	}
	variantID, ok := idParam(c, "variant_id")
	if !ok {
		return
	}

	view, err := ctrl.guestCartService.RemoveGuestItem(c.Request.Context(), token, variantID)
	if err != nil {
		respondWithServiceError(c, err, "delete guest cart item")
		return
	}
	c.JSON(http.StatusOK, view)
}
