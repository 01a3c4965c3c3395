package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/service"
	apperrors "github.com/kashan16/fatima-botique-ecom-sub001/internal/errors"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/middleware"
)

type PaymentController struct {
	paymentService service.PaymentService
}

func NewPaymentController(paymentService service.PaymentService) *PaymentController {
	return &PaymentController{
		paymentService: paymentService,
	}
}

type OrderRefRequest struct {
	OrderID uint `json:"order_id" binding:"required"`
}

type VerifyPaymentRequest struct {
	OrderID           uint   `json:"order_id" binding:"required"`
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	RazorpaySignature string `json:"razorpay_signature" binding:"required"`
	Method            string `json:"method"`
}

type PaymentFailureRequest struct {
	OrderID           uint   `json:"order_id" binding:"required"`
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	Reason            string `json:"reason" binding:"max=500"`
}

// CreateRazorpayOrder opens a gateway payment attempt for an order
// POST /api/v1/payments/razorpay/order
func (ctrl *PaymentController) CreateRazorpayOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req OrderRefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.RespondWithBindingError(c, err)
		return
	}

	session, err := ctrl.paymentService.InitializeGatewayPayment(c.Request.Context(), userID, req.OrderID)
	if err != nil {
		respondWithServiceError(c, err, "create payment")
		return
	}

	log.Info("Gateway payment initialized", map[string]interface{}{
		"user_id":          userID,
		"order_id":         req.OrderID,
		"gateway_order_id": session.GatewayOrderID,
	})
	c.JSON(http.StatusOK, session)
}

// VerifyRazorpayPayment is the checkout success callback
// POST /api/v1/payments/razorpay/verify
func (ctrl *PaymentController) VerifyRazorpayPayment(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.RespondWithBindingError(c, err)
		return
	}

	order, err := ctrl.paymentService.HandlePaymentSuccess(c.Request.Context(), userID, service.PaymentSuccessInput{
		OrderID:          req.OrderID,
		GatewayOrderID:   req.RazorpayOrderID,
		GatewayPaymentID: req.RazorpayPaymentID,
		Signature:        req.RazorpaySignature,
		Method:           req.Method,
	})
	if err != nil {
		respondWithServiceError(c, err, "verify payment")
		return
	}

	log.Info("Payment verified", map[string]interface{}{
		"user_id":  userID,
		"order_id": order.ID,
	})
	c.JSON(http.StatusOK, gin.H{
		"message": "Payment successful",
		"order":   order,
	})
}

// RazorpayPaymentFailed records a failed gateway attempt
// POST /api/v1/payments/razorpay/failure
func (ctrl *PaymentController) RazorpayPaymentFailed(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req PaymentFailureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.RespondWithBindingError(c, err)
		return
	}

	order, err := ctrl.paymentService.HandlePaymentFailure(c.Request.Context(), userID, service.PaymentFailureInput{
		OrderID:          req.OrderID,
		GatewayOrderID:   req.RazorpayOrderID,
		GatewayPaymentID: req.RazorpayPaymentID,
		Reason:           req.Reason,
	})
	if err != nil {
		respondWithServiceError(c, err, "record payment failure")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment failure recorded",
		"order":   order,
	})
}

// ConfirmCashOnDelivery confirms a cod order
// POST /api/v1/payments/cod/confirm
func (ctrl *PaymentController) ConfirmCashOnDelivery(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req OrderRefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.RespondWithBindingError(c, err)
		return
	}

	success, err := ctrl.paymentService.HandleCashOnDeliveryOrder(c.Request.Context(), userID, req.OrderID)
	if err != nil {
		respondWithServiceError(c, err, "confirm order")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": success})
}

// GetPaymentStatus reports the order's payment state and attempts
// GET /api/v1/payments/orders/:id
func (ctrl *PaymentController) GetPaymentStatus(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}

	status, err := ctrl.paymentService.GetPaymentStatus(c.Request.Context(), userID, orderID)
	if err != nil {
		respondWithServiceError(c, err, "get payment status")
		return
	}
	c.JSON(http.StatusOK, status)
}
