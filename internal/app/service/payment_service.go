package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/model"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/repository"
	"github.com/kashan16/fatima-botique-ecom-sub001/pkg/logger"
	"github.com/kashan16/fatima-botique-ecom-sub001/pkg/payment/razorpay"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrPaymentMethodMismatch   = errors.New("order uses a different payment method")
	ErrOrderAlreadyPaid        = errors.New("order is already paid")
	ErrOrderNotPayable         = errors.New("order can no longer be paid")
	ErrInvalidPaymentSignature = errors.New("invalid payment signature")
	ErrPaymentAttemptNotFound  = errors.New("payment attempt not found")
	ErrPaymentGateway          = errors.New("payment gateway unavailable")
	ErrOrderVersionConflict    = repository.ErrVersionConflict
)

const (
	providerRazorpay    = "razorpay"
	staleSweepBatchSize = 100
	systemActor         = "system"
	expiredReason       = "expired"
)

// PaymentGateway is the subset of the Razorpay client the service needs.
type PaymentGateway interface {
	KeyID() string
	CreateOrder(ctx context.Context, req razorpay.CreateOrderRequest) (*razorpay.Order, error)
	VerifyPaymentSignature(gatewayOrderID, gatewayPaymentID, signature string) error
}

// GatewayPaymentSession is what the client needs to open the checkout widget.
type GatewayPaymentSession struct {
	OrderID        uint   `json:"order_id"`
	OrderNumber    string `json:"order_number"`
	GatewayOrderID string `json:"gateway_order_id"`
	Amount         int64  `json:"amount"` // minor units (paise)
	Currency       string `json:"currency"`
	KeyID          string `json:"key_id"`
}

type PaymentSuccessInput struct {
	OrderID          uint
	GatewayOrderID   string
	GatewayPaymentID string
	Signature        string
	Method           string
}

type PaymentFailureInput struct {
	OrderID          uint
	GatewayOrderID   string
	GatewayPaymentID string
	Reason           string
}

type PaymentStatusView struct {
	OrderID       uint                 `json:"order_id"`
	OrderNumber   string               `json:"order_number"`
	PaymentMethod model.PaymentMethod  `json:"payment_method"`
	PaymentStatus model.PaymentStatus  `json:"payment_status"`
	OrderStatus   model.OrderStatus    `json:"order_status"`
	IsPaid        bool                 `json:"is_paid"`
	PaidAt        *time.Time           `json:"paid_at,omitempty"`
	TotalAmount   decimal.Decimal      `json:"total_amount"`
	Currency      string               `json:"currency"`
	Attempts      []model.OrderPayment `json:"attempts"`
}

type PaymentService interface {
	InitializeGatewayPayment(ctx context.Context, userID string, orderID uint) (*GatewayPaymentSession, error)
	HandlePaymentSuccess(ctx context.Context, userID string, input PaymentSuccessInput) (*model.Order, error)
	HandlePaymentFailure(ctx context.Context, userID string, input PaymentFailureInput) (*model.Order, error)
	HandleCashOnDeliveryOrder(ctx context.Context, userID string, orderID uint) (bool, error)
	GetPaymentStatus(ctx context.Context, userID string, orderID uint) (*PaymentStatusView, error)
	ExpireStalePayments(ctx context.Context, ttl time.Duration) (int, error)
}

type paymentService struct {
	txManager repository.TransactionManager
	orderRepo repository.OrderRepository
	gateway   PaymentGateway
	events    OrderEventPublisher
	now       func() time.Time
}

func NewPaymentService(
	txManager repository.TransactionManager,
	orderRepo repository.OrderRepository,
	gateway PaymentGateway,
	events OrderEventPublisher,
) PaymentService {
	if events == nil {
		events = noopPublisher{}
	}
	return &paymentService{
		txManager: txManager,
		orderRepo: orderRepo,
		gateway:   gateway,
		events:    events,
		now:       time.Now,
	}
}

func (s *paymentService) findOwnedOrder(userID string, orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindOwned(userID, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("load order: %w", err)
	}
	return order, nil
}

// reload refetches the aggregate after a write, falling back to the stale copy.
func (s *paymentService) reload(order *model.Order) *model.Order {
	fresh, err := s.orderRepo.FindByID(order.ID)
	if err != nil {
		logger.Warn("Failed to reload order after payment update", map[string]interface{}{
			"order_id": order.ID,
			"error":    err.Error(),
		})
		return order
	}
	return fresh
}

// ToMinorUnits converts a rupee amount to paise.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func (s *paymentService) InitializeGatewayPayment(ctx context.Context, userID string, orderID uint) (*GatewayPaymentSession, error) {
	logger.Info("Initializing gateway payment", map[string]interface{}{
		"user_id":  userID,
		"order_id": orderID,
	})

	if s.gateway == nil {
		logger.Warn("Payment gateway is not configured")
		return nil, ErrPaymentGateway
	}

	order, err := s.findOwnedOrder(userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentMethod != model.PaymentMethodRazorpay {
		return nil, ErrPaymentMethodMismatch
	}
	if order.IsPaid || order.PaymentStatus == model.PaymentStatusCompleted {
		return nil, ErrOrderAlreadyPaid
	}
	if order.OrderStatus == model.OrderStatusCancelled {
		return nil, ErrOrderNotPayable
	}

	gwOrder, err := s.gateway.CreateOrder(ctx, razorpay.CreateOrderRequest{
		Amount:   ToMinorUnits(order.TotalAmount),
		Currency: order.Currency,
		Receipt:  order.OrderNumber,
		Notes: map[string]string{
			"order_id": fmt.Sprintf("%d", order.ID),
			"user_id":  userID,
		},
	})
	if err != nil {
		logger.Error("Gateway order creation failed", err, map[string]interface{}{
			"order_id": order.ID,
		})
		return nil, fmt.Errorf("%w: %v", ErrPaymentGateway, err)
	}

	err = s.txManager.WithinTx(ctx, func(r repository.TxRepos) error {
		if err := r.Orders().CreatePayment(&model.OrderPayment{
			OrderID:        order.ID,
			Provider:       providerRazorpay,
			GatewayOrderID: gwOrder.ID,
			Amount:         order.TotalAmount,
			Currency:       order.Currency,
			Status:         model.PaymentAttemptCreated,
		}); err != nil {
			return fmt.Errorf("record payment attempt: %w", err)
		}

		// A retry after a failed attempt puts the order back in pending.
		if order.PaymentStatus == model.PaymentStatusFailed {
			return r.Orders().UpdateWithVersion(order.ID, order.Version, map[string]interface{}{
				"payment_status": model.PaymentStatusPending,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Gateway payment initialized", map[string]interface{}{
		"order_id":         order.ID,
		"gateway_order_id": gwOrder.ID,
		"amount":           gwOrder.Amount,
	})

	return &GatewayPaymentSession{
		OrderID:        order.ID,
		OrderNumber:    order.OrderNumber,
		GatewayOrderID: gwOrder.ID,
		Amount:         ToMinorUnits(order.TotalAmount),
		Currency:       order.Currency,
		KeyID:          s.gateway.KeyID(),
	}, nil
}

// HandlePaymentSuccess settles a verified gateway callback. A repeated
// callback for an already paid order returns the order unchanged.
func (s *paymentService) HandlePaymentSuccess(ctx context.Context, userID string, input PaymentSuccessInput) (*model.Order, error) {
	logger.Info("Handling payment success", map[string]interface{}{
		"user_id":          userID,
		"order_id":         input.OrderID,
		"gateway_order_id": input.GatewayOrderID,
	})

	if s.gateway == nil {
		return nil, ErrPaymentGateway
	}

	order, err := s.findOwnedOrder(userID, input.OrderID)
	if err != nil {
		return nil, err
	}

	if err := s.gateway.VerifyPaymentSignature(input.GatewayOrderID, input.GatewayPaymentID, input.Signature); err != nil {
		logger.Warn("Payment signature verification failed", map[string]interface{}{
			"order_id":         order.ID,
			"gateway_order_id": input.GatewayOrderID,
		})
		return nil, ErrInvalidPaymentSignature
	}

	attempt, err := s.orderRepo.FindPaymentByGatewayOrderID(order.ID, input.GatewayOrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentAttemptNotFound
		}
		return nil, fmt.Errorf("load payment attempt: %w", err)
	}

	if order.IsPaid {
		logger.Info("Order already paid, ignoring duplicate callback", map[string]interface{}{
			"order_id": order.ID,
		})
		return order, nil
	}

	// Money captured for a cancelled order is recorded for a refund, but the
	// order stays cancelled.
	cancelled := order.OrderStatus == model.OrderStatusCancelled
	updates := map[string]interface{}{
		"payment_status": model.PaymentStatusCompleted,
		"is_paid":        true,
		"paid_at":        s.now(),
	}
	entry := &model.OrderStatusHistory{
		OrderID:   order.ID,
		Status:    model.OrderStatusConfirmed,
		Note:      "Payment received via " + providerRazorpay,
		ChangedBy: userID,
	}
	if cancelled {
		entry.Status = model.OrderStatusCancelled
		entry.Note = "Payment received via " + providerRazorpay + " after cancellation, refund due"
		logger.Warn("Payment captured for cancelled order", map[string]interface{}{
			"order_id":           order.ID,
			"gateway_payment_id": input.GatewayPaymentID,
		})
	} else {
		updates["order_status"] = model.OrderStatusConfirmed
	}

	err = s.txManager.WithinTx(ctx, func(r repository.TxRepos) error {
		attempt.Status = model.PaymentAttemptCaptured
		attempt.GatewayPaymentID = input.GatewayPaymentID
		attempt.Method = input.Method
		attempt.FailureReason = ""
		if err := r.Orders().UpdatePayment(attempt); err != nil {
			return fmt.Errorf("capture payment attempt: %w", err)
		}
		if err := r.Orders().UpdateWithVersion(order.ID, order.Version, updates); err != nil {
			return err
		}
		return r.Orders().AppendStatusHistory(entry)
	})
	if err != nil {
		logger.Error("Failed to settle payment", err, map[string]interface{}{
			"order_id": order.ID,
		})
		return nil, err
	}

	updated := s.reload(order)
	s.events.PublishOrderEvent(model.NewOrderEvent(model.OrderEventPaymentCompleted, updated))

	logger.Info("Payment captured", map[string]interface{}{
		"order_id":           order.ID,
		"gateway_payment_id": input.GatewayPaymentID,
	})
	return updated, nil
}

func (s *paymentService) HandlePaymentFailure(ctx context.Context, userID string, input PaymentFailureInput) (*model.Order, error) {
	logger.Info("Handling payment failure", map[string]interface{}{
		"user_id":          userID,
		"order_id":         input.OrderID,
		"gateway_order_id": input.GatewayOrderID,
	})

	order, err := s.findOwnedOrder(userID, input.OrderID)
	if err != nil {
		return nil, err
	}
	if order.IsPaid {
		return nil, ErrOrderAlreadyPaid
	}

	attempt, err := s.orderRepo.FindPaymentByGatewayOrderID(order.ID, input.GatewayOrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentAttemptNotFound
		}
		return nil, fmt.Errorf("load payment attempt: %w", err)
	}
	if attempt.Status == model.PaymentAttemptCaptured {
		return nil, ErrOrderAlreadyPaid
	}
	if input.GatewayPaymentID != "" {
		attempt.GatewayPaymentID = input.GatewayPaymentID
	}

	reason := input.Reason
	if reason == "" {
		reason = "payment failed"
	}
	if err := s.failAttempt(ctx, order, attempt, reason, userID); err != nil {
		return nil, err
	}
	return s.reload(order), nil
}

// failAttempt marks attempt failed and, while the order still awaits payment
// and is not cancelled, moves it to failed with a pending history row carrying the reason.
func (s *paymentService) failAttempt(ctx context.Context, order *model.Order, attempt *model.OrderPayment, reason, changedBy string) error {
	moveOrder := !order.IsPaid && order.OrderStatus != model.OrderStatusCancelled &&
		(order.PaymentStatus == model.PaymentStatusPending || order.PaymentStatus == model.PaymentStatusFailed)

	err := s.txManager.WithinTx(ctx, func(r repository.TxRepos) error {
		attempt.Status = model.PaymentAttemptFailed
		attempt.FailureReason = reason
		if err := r.Orders().UpdatePayment(attempt); err != nil {
			return fmt.Errorf("fail payment attempt: %w", err)
		}
		if !moveOrder {
			return nil
		}

		if err := r.Orders().UpdateWithVersion(order.ID, order.Version, map[string]interface{}{
			"payment_status": model.PaymentStatusFailed,
		}); err != nil {
			return err
		}

		return r.Orders().AppendStatusHistory(&model.OrderStatusHistory{
			OrderID:   order.ID,
			Status:    model.OrderStatusPending,
			Note:      "Payment failed: " + reason,
			ChangedBy: changedBy,
		})
	})
	if err != nil {
		logger.Error("Failed to record payment failure", err, map[string]interface{}{
			"order_id":   order.ID,
			"payment_id": attempt.ID,
		})
		return err
	}

	if moveOrder {
		order.PaymentStatus = model.PaymentStatusFailed
		s.events.PublishOrderEvent(model.NewOrderEvent(model.OrderEventPaymentFailed, order))
	}

	logger.Info("Payment attempt failed", map[string]interface{}{
		"order_id":   order.ID,
		"payment_id": attempt.ID,
		"reason":     reason,
	})
	return nil
}

// HandleCashOnDeliveryOrder confirms a COD order. Payment stays cod_pending
// until the courier collects it.
func (s *paymentService) HandleCashOnDeliveryOrder(ctx context.Context, userID string, orderID uint) (bool, error) {
	logger.Info("Confirming cash on delivery order", map[string]interface{}{
		"user_id":  userID,
		"order_id": orderID,
	})

	order, err := s.findOwnedOrder(userID, orderID)
	if err != nil {
		return false, err
	}
	if order.PaymentMethod != model.PaymentMethodCOD {
		return false, ErrPaymentMethodMismatch
	}
	if order.OrderStatus == model.OrderStatusConfirmed {
		return true, nil
	}
	if order.OrderStatus != model.OrderStatusPending {
		return false, ErrOrderNotPayable
	}

	err = s.txManager.WithinTx(ctx, func(r repository.TxRepos) error {
		if err := r.Orders().UpdateWithVersion(order.ID, order.Version, map[string]interface{}{
			"order_status": model.OrderStatusConfirmed,
		}); err != nil {
			return err
		}
		return r.Orders().AppendStatusHistory(&model.OrderStatusHistory{
			OrderID:   order.ID,
			Status:    model.OrderStatusConfirmed,
			Note:      "Cash on delivery order confirmed",
			ChangedBy: userID,
		})
	})
	if err != nil {
		logger.Error("Failed to confirm cash on delivery order", err, map[string]interface{}{
			"order_id": order.ID,
		})
		return false, err
	}

	order.OrderStatus = model.OrderStatusConfirmed
	s.events.PublishOrderEvent(model.NewOrderEvent(model.OrderEventConfirmed, order))
	return true, nil
}

func (s *paymentService) GetPaymentStatus(ctx context.Context, userID string, orderID uint) (*PaymentStatusView, error) {
	order, err := s.findOwnedOrder(userID, orderID)
	if err != nil {
		return nil, err
	}

	attempts := order.Payments
	if attempts == nil {
		attempts = []model.OrderPayment{}
	}
	return &PaymentStatusView{
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		PaymentMethod: order.PaymentMethod,
		PaymentStatus: order.PaymentStatus,
		OrderStatus:   order.OrderStatus,
		IsPaid:        order.IsPaid,
		PaidAt:        order.PaidAt,
		TotalAmount:   order.TotalAmount,
		Currency:      order.Currency,
		Attempts:      attempts,
	}, nil
}

// ExpireStalePayments fails attempts left in "created" longer than ttl and
// returns how many were expired. Errors on one attempt do not stop the sweep.
func (s *paymentService) ExpireStalePayments(ctx context.Context, ttl time.Duration) (int, error) {
	cutoff := s.now().Add(-ttl)
	stale, err := s.orderRepo.FindStalePayments(cutoff, staleSweepBatchSize)
	if err != nil {
		return 0, fmt.Errorf("find stale payments: %w", err)
	}
	if len(stale) == 0 {
		return 0, nil
	}

	logger.Info("Expiring stale payment attempts", map[string]interface{}{
		"count":  len(stale),
		"cutoff": cutoff,
	})

	expired := 0
	for i := range stale {
		if ctx.Err() != nil {
			return expired, ctx.Err()
		}
		attempt := &stale[i]

		order, err := s.orderRepo.FindByID(attempt.OrderID)
		if err != nil {
			logger.Error("Failed to load order for stale payment", err, map[string]interface{}{
				"payment_id": attempt.ID,
				"order_id":   attempt.OrderID,
			})
			continue
		}

		if err := s.failAttempt(ctx, order, attempt, expiredReason, systemActor); err != nil {
			continue
		}
		expired++
	}
	return expired, nil
}
