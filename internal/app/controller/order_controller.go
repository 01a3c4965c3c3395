package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/model"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/service"
	apperrors "github.com/kashan16/fatima-botique-ecom-sub001/internal/errors"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/middleware"
)

type OrderController struct {
	orderService service.OrderService
}

func NewOrderController(orderService service.OrderService) *OrderController {
	return &OrderController{
		orderService: orderService,
	}
}

type ListOrdersQuery struct {
	Page          int       `form:"page" binding:"omitempty,min=1"`
	Limit         int       `form:"limit" binding:"omitempty,min=1,max=100"`
	Status        string    `form:"status" binding:"omitempty,oneof=pending confirmed processing shipped delivered cancelled"`
	PaymentStatus string    `form:"payment_status" binding:"omitempty,oneof=pending cod_pending completed failed refunded"`
	From          time.Time `form:"from" time_format:"2006-01-02"`
	To            time.Time `form:"to" time_format:"2006-01-02"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// GetOrders returns the caller's orders, newest first
// GET /api/v1/orders
func (ctrl *OrderController) GetOrders(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var query ListOrdersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		apperrors.RespondWithBindingError(c, err)
		return
	}

	input := service.ListOrdersInput{
		Page:          query.Page,
		Limit:         query.Limit,
		Status:        model.OrderStatus(query.Status),
		PaymentStatus: model.PaymentStatus(query.PaymentStatus),
	}
	if !query.From.IsZero() {
		input.From = &query.From
	}
	if !query.To.IsZero() {
		// inclusive of the whole "to" day
		to := query.To.Add(24*time.Hour - time.Nanosecond)
		input.To = &to
	}

	page, err := ctrl.orderService.ListOrders(c.Request.Context(), userID, input)
	if err != nil {
		respondWithServiceError(c, err, "list orders")
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetOrderByID returns a single owned order with items, addresses, history and payments
// GET /api/v1/orders/:id
func (ctrl *OrderController) GetOrderByID(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}

	order, err := ctrl.orderService.GetOrder(c.Request.Context(), userID, orderID)
	if err != nil {
		respondWithServiceError(c, err, "get order")
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

// CancelOrder cancels a pending, unpaid order
// POST /api/v1/orders/:id/cancel
func (ctrl *OrderController) CancelOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUser(c)
	if !ok {
		return
	}
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req CancelOrderRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apperrors.RespondWithBindingError(c, err)
			return
		}
	}

	order, err := ctrl.orderService.CancelOrder(c.Request.Context(), userID, orderID, req.Reason)
	if err != nil {
		respondWithServiceError(c, err, "update order")
		return
	}

	log.Info("Order cancelled by customer", map[string]interface{}{
		"user_id":  userID,
		"order_id": orderID,
	})
	c.JSON(http.StatusOK, gin.H{
		"message": "Order cancelled",
		"order":   order,
	})
}
