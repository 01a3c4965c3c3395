package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/model"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/repository"
	apperrors "github.com/kashan16/fatima-botique-ecom-sub001/internal/errors"
	"github.com/kashan16/fatima-botique-ecom-sub001/pkg/logger"
	"github.com/kashan16/fatima-botique-ecom-sub001/pkg/util"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrInvalidPaymentMethod   = errors.New("invalid payment method")
	ErrEmptyCart              = errors.New("cart is empty")
	ErrAddressNotFound        = errors.New("address not found")
	ErrCheckoutInProgress     = errors.New("another checkout is in progress")
	ErrCartItemUnavailable    = errors.New("cart item is no longer available")
	ErrNotesTooLong           = errors.New("notes exceed 500 characters")
	ErrOrderNumberUnavailable = errors.New("could not allocate a unique order number")
)

const (
	maxNotesLength         = 500
	maxOrderNumberAttempts = 3
	orderPlacedNote        = "Order placed"
)

type CheckoutInput struct {
	ShippingAddressID uint
	BillingAddressID  uint
	PaymentMethod     model.PaymentMethod
	Notes             string
	IdempotencyKey    string
}

type CheckoutResult struct {
	Order           *model.Order
	RequiresPayment bool
	// Replayed is true when IdempotencyKey matched an order placed earlier.
	Replayed bool
}

type CheckoutService interface {
	Checkout(ctx context.Context, userID string, input CheckoutInput) (*CheckoutResult, error)
}

type checkoutService struct {
	txManager   repository.TransactionManager
	orderRepo   repository.OrderRepository
	addressRepo repository.AddressRepository
	locker      CheckoutLocker
	events      OrderEventPublisher
	currency    string
	lockTTL     time.Duration
	now         func() time.Time
}

func NewCheckoutService(
	txManager repository.TransactionManager,
	orderRepo repository.OrderRepository,
	addressRepo repository.AddressRepository,
	locker CheckoutLocker,
	events OrderEventPublisher,
	currency string,
	lockTTL time.Duration,
) CheckoutService {
	if locker == nil {
		locker = NoopLocker{}
	}
	if events == nil {
		events = noopPublisher{}
	}
	if currency == "" {
		currency = "INR"
	}
	return &checkoutService{
		txManager:   txManager,
		orderRepo:   orderRepo,
		addressRepo: addressRepo,
		locker:      locker,
		events:      events,
		currency:    currency,
		lockTTL:     lockTTL,
		now:         time.Now,
	}
}

// Checkout converts the caller's cart-type items into an order in one
// transaction. Item insertion failure rolls the order back; history and cart
// clearing failures are logged and do not fail the checkout.
func (s *checkoutService) Checkout(ctx context.Context, userID string, input CheckoutInput) (*CheckoutResult, error) {
	logger.Info("Starting checkout", map[string]interface{}{
		"user_id":         userID,
		"payment_method":  input.PaymentMethod,
		"idempotency_key": input.IdempotencyKey != "",
	})

	// A replayed request returns the original order even if its addresses
	// have changed since.
	if input.IdempotencyKey != "" {
		existing, err := s.orderRepo.FindByIdempotencyKey(userID, input.IdempotencyKey)
		if err == nil {
			logger.Info("Replaying checkout for idempotency key", map[string]interface{}{
				"user_id":  userID,
				"order_id": existing.ID,
			})
			return &CheckoutResult{Order: existing, RequiresPayment: existing.PaymentMethod.RequiresPayment(), Replayed: true}, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("lookup idempotency key: %w", err)
		}
	}

	if err := s.validate(userID, input); err != nil {
		return nil, err
	}

	release, acquired, err := s.locker.Acquire(ctx, "checkout:"+userID, s.lockTTL)
	if err != nil {
		// Fail open: the cart row lock below still serializes this user.
		logger.Warn("Checkout lock unavailable, continuing without it", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
	} else if !acquired {
		logger.Warn("Concurrent checkout rejected", map[string]interface{}{
			"user_id": userID,
		})
		return nil, ErrCheckoutInProgress
	}
	defer release()

	var (
		created  *model.Order
		replayed *model.Order
	)
	err = s.txManager.WithinTx(ctx, func(r repository.TxRepos) error {
		order, replay, err := s.placeOrder(r, userID, input)
		created, replayed = order, replay
		return err
	})
	if err != nil {
		logger.Error("Checkout failed", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	if replayed != nil {
		return &CheckoutResult{Order: replayed, RequiresPayment: replayed.PaymentMethod.RequiresPayment(), Replayed: true}, nil
	}

	full, err := s.orderRepo.FindByID(created.ID)
	if err != nil {
		logger.Warn("Failed to reload order after checkout, returning minimal order", map[string]interface{}{
			"order_id": created.ID,
			"error":    err.Error(),
		})
		full = created
	}

	s.events.PublishOrderEvent(model.NewOrderEvent(model.OrderEventCreated, full))

	logger.Info("Checkout completed", map[string]interface{}{
		"user_id":      userID,
		"order_id":     full.ID,
		"order_number": full.OrderNumber,
		"total_amount": full.TotalAmount.String(),
	})

	return &CheckoutResult{
		Order:           full,
		RequiresPayment: full.PaymentMethod.RequiresPayment(),
	}, nil
}

// validate runs every check that needs no transaction.
func (s *checkoutService) validate(userID string, input CheckoutInput) error {
	if !input.PaymentMethod.Valid() {
		return ErrInvalidPaymentMethod
	}
	if len([]rune(input.Notes)) > maxNotesLength {
		return ErrNotesTooLong
	}

	for _, id := range []uint{input.ShippingAddressID, input.BillingAddressID} {
		if id == 0 {
			return ErrAddressNotFound
		}
		if _, err := s.addressRepo.FindOwned(userID, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				logger.Warn("Checkout address not owned by user", map[string]interface{}{
					"user_id":    userID,
					"address_id": id,
				})
				return ErrAddressNotFound
			}
			return fmt.Errorf("resolve address: %w", err)
		}
	}
	return nil
}

// placeOrder is the transactional body of Checkout. It returns the inserted
// order, or the order owning the idempotency key when a concurrent request won.
func (s *checkoutService) placeOrder(r repository.TxRepos, userID string, input CheckoutInput) (*model.Order, *model.Order, error) {
	cart, err := r.Carts().LockByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrEmptyCart
		}
		return nil, nil, fmt.Errorf("lock cart: %w", err)
	}

	items, err := r.Carts().ListItems(cart.ID, model.CartItemTypeCart)
	if err != nil {
		return nil, nil, fmt.Errorf("load cart items: %w", err)
	}
	if len(items) == 0 {
		return nil, nil, ErrEmptyCart
	}
	for _, item := range items {
		v := item.Variant
		if v == nil || v.Product == nil || !v.IsActive || !v.Product.IsActive {
			logger.Warn("Cart contains unavailable variant", map[string]interface{}{
				"user_id":    userID,
				"variant_id": item.VariantID,
			})
			return nil, nil, ErrCartItemUnavailable
		}
	}

	totals := ComputeOrderTotals(items)
	order := &model.Order{
		UserID:            userID,
		ShippingAddressID: input.ShippingAddressID,
		BillingAddressID:  input.BillingAddressID,
		Subtotal:          totals.Subtotal,
		ShippingCost:      totals.ShippingCost,
		TaxAmount:         totals.TaxAmount,
		DiscountAmount:    totals.DiscountAmount,
		TotalAmount:       totals.TotalAmount,
		Currency:          s.currency,
		PaymentMethod:     input.PaymentMethod,
		PaymentStatus:     input.PaymentMethod.InitialPaymentStatus(),
		OrderStatus:       model.OrderStatusPending,
		Notes:             strings.TrimSpace(input.Notes),
		Version:           1,
	}
	if input.IdempotencyKey != "" {
		key := input.IdempotencyKey
		order.IdempotencyKey = &key
	}

	for attempt := 1; ; attempt++ {
		order.ID = 0
		order.OrderNumber = util.GenerateOrderNumber(s.now())

		err := r.Savepoint(fmt.Sprintf("order_insert_%d", attempt), func(r repository.TxRepos) error {
			return r.Orders().Create(order)
		})
		if err == nil {
			break
		}
		if !apperrors.IsUniqueViolation(err) {
			return nil, nil, fmt.Errorf("insert order: %w", err)
		}
		if order.IdempotencyKey != nil {
			if existing, findErr := r.Orders().FindByIdempotencyKey(userID, *order.IdempotencyKey); findErr == nil {
				return nil, existing, nil
			}
		}
		if attempt >= maxOrderNumberAttempts {
			return nil, nil, ErrOrderNumberUnavailable
		}
		logger.Warn("Order number collision, regenerating", map[string]interface{}{
			"user_id": userID,
			"attempt": attempt,
		})
	}

	orderItems := make([]model.OrderItem, 0, len(items))
	for _, item := range items {
		unit := item.Variant.UnitPrice()
		orderItems = append(orderItems, model.OrderItem{
			OrderID:     order.ID,
			ProductID:   item.Variant.ProductID,
			VariantID:   item.VariantID,
			ProductName: item.Variant.Product.Name,
			ProductSKU:  item.Variant.SKU,
			Size:        item.Variant.Size,
			Color:       item.Variant.Color,
			ImageURL:    item.Variant.Product.PrimaryImageURL(),
			Quantity:    item.Quantity,
			UnitPrice:   unit,
			Subtotal:    unit.Mul(decimal.NewFromInt(int64(item.Quantity))),
		})
	}
	if err := r.Orders().CreateItems(orderItems); err != nil {
		return nil, nil, fmt.Errorf("insert order items: %w", err)
	}
	order.Items = orderItems

	if err := r.Savepoint("order_history", func(r repository.TxRepos) error {
		return r.Orders().AppendStatusHistory(&model.OrderStatusHistory{
			OrderID:   order.ID,
			Status:    model.OrderStatusPending,
			Note:      orderPlacedNote,
			ChangedBy: userID,
		})
	}); err != nil {
		logger.Error("Failed to record initial order history, continuing", err, map[string]interface{}{
			"order_id": order.ID,
		})
	}

	if err := r.Savepoint("clear_cart", func(r repository.TxRepos) error {
		_, err := r.Carts().ClearItems(cart.ID, model.CartItemTypeCart)
		return err
	}); err != nil {
		logger.Error("Failed to clear cart after checkout, continuing", err, map[string]interface{}{
			"order_id": order.ID,
			"cart_id":  cart.ID,
		})
	}

	return order, nil, nil
}
