package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/model"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/service"
	apperrors "github.com/kashan16/fatima-botique-ecom-sub001/internal/errors"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/middleware"
)

const idempotencyKeyHeader = "Idempotency-Key"

type CheckoutController struct {
	checkoutService service.CheckoutService
}

func NewCheckoutController(checkoutService service.CheckoutService) *CheckoutController {
	return &CheckoutController{checkoutService: checkoutService}
}

type CheckoutRequest struct {
	ShippingAddressID uint   `json:"shipping_address_id" binding:"required"`
	BillingAddressID  uint   `json:"billing_address_id" binding:"required"`
	PaymentMethod     string `json:"payment_method" binding:"required,oneof=razorpay cod"`
	Notes             string `json:"notes" binding:"max=500"`
}

// Checkout turns the caller's cart into an order
// POST /api/v1/checkout
func (ctrl *CheckoutController) Checkout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid checkout request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		apperrors.RespondWithBindingError(c, err)
		return
	}

	result, err := ctrl.checkoutService.Checkout(c.Request.Context(), userID, service.CheckoutInput{
		ShippingAddressID: req.ShippingAddressID,
		BillingAddressID:  req.BillingAddressID,
		PaymentMethod:     model.PaymentMethod(req.PaymentMethod),
		Notes:             req.Notes,
		IdempotencyKey:    c.GetHeader(idempotencyKeyHeader),
	})
	if err != nil {
		respondWithServiceError(c, err, "create order")
		return
	}

	status, message := http.StatusCreated, "Order placed successfully"
	if result.Replayed {
		status, message = http.StatusOK, "Order already placed"
	}

	log.Info("Checkout completed", map[string]interface{}{
		"user_id":      userID,
		"order_id":     result.Order.ID,
		"order_number": result.Order.OrderNumber,
		"replayed":     result.Replayed,
	})

	c.JSON(status, gin.H{
		"message":          message,
		"order":            result.Order,
		"requires_payment": result.RequiresPayment,
	})
}
