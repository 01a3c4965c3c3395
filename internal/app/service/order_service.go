package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/model"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/repository"
	"github.com/kashan16/fatima-botique-ecom-sub001/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderNotCancellable = errors.New("order can no longer be cancelled")
)

const cancelledPaymentReason = "order cancelled"

type ListOrdersInput struct {
	Page          int
	Limit         int
	Status        model.OrderStatus
	PaymentStatus model.PaymentStatus
	From          *time.Time
	To            *time.Time
}

type OrderPage struct {
	Orders     []model.Order `json:"orders"`
	Pagination Pagination    `json:"pagination"`
}

type OrderService interface {
	ListOrders(ctx context.Context, userID string, input ListOrdersInput) (*OrderPage, error)
	GetOrder(ctx context.Context, userID string, orderID uint) (*model.Order, error)
	CancelOrder(ctx context.Context, userID string, orderID uint, reason string) (*model.Order, error)
}

type orderService struct {
	txManager repository.TransactionManager
	orderRepo repository.OrderRepository
	events    OrderEventPublisher
}

func NewOrderService(txManager repository.TransactionManager, orderRepo repository.OrderRepository, events OrderEventPublisher) OrderService {
	if events == nil {
		events = noopPublisher{}
	}
	return &orderService{
		txManager: txManager,
		orderRepo: orderRepo,
		events:    events,
	}
}

func (s *orderService) ListOrders(ctx context.Context, userID string, input ListOrdersInput) (*OrderPage, error) {
	page, limit := normalizePage(input.Page, input.Limit)

	orders, total, err := s.orderRepo.ListByUser(userID, repository.OrderFilter{
		Status:        input.Status,
		PaymentStatus: input.PaymentStatus,
		From:          input.From,
		To:            input.To,
		Limit:         limit,
		Offset:        (page - 1) * limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if orders == nil {
		orders = []model.Order{}
	}

	return &OrderPage{
		Orders:     orders,
		Pagination: newPagination(page, limit, total),
	}, nil
}

func (s *orderService) GetOrder(ctx context.Context, userID string, orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindOwned(userID, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Order not found for user", map[string]interface{}{
				"user_id":  userID,
				"order_id": orderID,
			})
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

// CancelOrder cancels an order that is still pending and unpaid.
func (s *orderService) CancelOrder(ctx context.Context, userID string, orderID uint, reason string) (*model.Order, error) {
	order, err := s.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.OrderStatus != model.OrderStatusPending || order.IsPaid {
		logger.Warn("Order not cancellable", map[string]interface{}{
			"order_id":     order.ID,
			"order_status": order.OrderStatus,
			"is_paid":      order.IsPaid,
		})
		return nil, ErrOrderNotCancellable
	}

	note := "Cancelled by customer"
	if reason != "" {
		note += ": " + reason
	}

	err = s.txManager.WithinTx(ctx, func(r repository.TxRepos) error {
		if err := r.Orders().UpdateWithVersion(order.ID, order.Version, map[string]interface{}{
			"order_status": model.OrderStatusCancelled,
		}); err != nil {
			return err
		}
		closed, err := r.Orders().FailOpenPayments(order.ID, cancelledPaymentReason)
		if err != nil {
			return err
		}
		if closed > 0 {
			logger.Info("Closed open payment attempts of cancelled order", map[string]interface{}{
				"order_id": order.ID,
				"count":    closed,
			})
		}
		return r.Orders().AppendStatusHistory(&model.OrderStatusHistory{
			OrderID:   order.ID,
			Status:    model.OrderStatusCancelled,
			Note:      note,
			ChangedBy: userID,
		})
	})
	if err != nil {
		logger.Error("Failed to cancel order", err, map[string]interface{}{
			"order_id": order.ID,
		})
		return nil, err
	}

	updated, err := s.orderRepo.FindByID(order.ID)
	if err != nil {
		order.OrderStatus = model.OrderStatusCancelled
		updated = order
	}
	s.events.PublishOrderEvent(model.NewOrderEvent(model.OrderEventCancelled, updated))

	logger.Info("Order cancelled", map[string]interface{}{
		"order_id": order.ID,
		"user_id":  userID,
	})
	return updated, nil
}
