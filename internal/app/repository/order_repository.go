package repository

import (
	"errors"
	"time"

	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/model"
	"github.com/kashan16/fatima-botique-ecom-sub001/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrVersionConflict is returned when an order changed since it was read.
var ErrVersionConflict = errors.New("order version conflict")

type OrderFilter struct {
	Status        model.OrderStatus
	PaymentStatus model.PaymentStatus
	From          *time.Time
	To            *time.Time
	Limit         int
	Offset        int
}

type OrderRepository interface {
	Create(order *model.Order) error
	CreateItems(items []model.OrderItem) error
	AppendStatusHistory(entry *model.OrderStatusHistory) error
	FindByID(id uint) (*model.Order, error)
	FindOwned(userID string, id uint) (*model.Order, error)
	FindByIdempotencyKey(userID, key string) (*model.Order, error)
	ListByUser(userID string, filter OrderFilter) ([]model.Order, int64, error)
	UpdateWithVersion(id uint, version int, updates map[string]interface{}) error

	CreatePayment(payment *model.OrderPayment) error
	FindPaymentByGatewayOrderID(orderID uint, gatewayOrderID string) (*model.OrderPayment, error)
	UpdatePayment(payment *model.OrderPayment) error
	FailOpenPayments(orderID uint, reason string) (int64, error)
	FindStalePayments(olderThan time.Time, limit int) ([]model.OrderPayment, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// preloadOrder joins every sub-resource of the aggregate. Addresses are read
// unscoped so deleted address book entries still render on old orders.
func (r *orderRepository) preloadOrder() *gorm.DB {
	unscoped := func(db *gorm.DB) *gorm.DB { return db.Unscoped() }
	return r.db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("ShippingAddress", unscoped).
		Preload("BillingAddress", unscoped).
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") })
}

// Create inserts only the order row; items and history are written separately.
func (r *orderRepository) Create(order *model.Order) error {
	logger.Debug("Creating order in database", map[string]interface{}{
		"user_id":      order.UserID,
		"order_number": order.OrderNumber,
		"total_amount": order.TotalAmount.String(),
	})

	if err := r.db.Omit(clause.Associations).Create(order).Error; err != nil {
		logger.Error("Failed to create order in database", err, map[string]interface{}{
			"user_id":      order.UserID,
			"order_number": order.OrderNumber,
		})
		return err
	}

	logger.Debug("Order created in database", map[string]interface{}{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
	})
	return nil
}

func (r *orderRepository) CreateItems(items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	logger.Debug("Creating order items in database", map[string]interface{}{
		"order_id": items[0].OrderID,
		"count":    len(items),
	})

	if err := r.db.Create(&items).Error; err != nil {
		logger.Error("Failed to create order items in database", err, map[string]interface{}{
			"order_id": items[0].OrderID,
		})
		return err
	}
	return nil
}

func (r *orderRepository) AppendStatusHistory(entry *model.OrderStatusHistory) error {
	if err := r.db.Create(entry).Error; err != nil {
		logger.Error("Failed to append order status history", err, map[string]interface{}{
			"order_id": entry.OrderID,
			"status":   entry.Status,
		})
		return err
	}
	return nil
}

func (r *orderRepository) FindByID(id uint) (*model.Order, error) {
	logger.Debug("Finding order by ID in database", map[string]interface{}{
		"order_id": id,
	})

	var order model.Order
	if err := r.preloadOrder().First(&order, id).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find order by ID in database", err, map[string]interface{}{
				"order_id": id,
			})
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindOwned(userID string, id uint) (*model.Order, error) {
	var order model.Order
	if err := r.preloadOrder().Where("id = ? AND user_id = ?", id, userID).First(&order).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find owned order in database", err, map[string]interface{}{
				"order_id": id,
				"user_id":  userID,
			})
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindByIdempotencyKey(userID, key string) (*model.Order, error) {
	var order model.Order
	if err := r.preloadOrder().
		Where("user_id = ? AND idempotency_key = ?", userID, key).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) ListByUser(userID string, filter OrderFilter) ([]model.Order, int64, error) {
	logger.Debug("Finding orders by user ID in database", map[string]interface{}{
		"user_id":        userID,
		"status":         filter.Status,
		"payment_status": filter.PaymentStatus,
		"limit":          filter.Limit,
		"offset":         filter.Offset,
	})

	scope := func(db *gorm.DB) *gorm.DB {
		db = db.Where("user_id = ?", userID)
		if filter.Status != "" {
			db = db.Where("order_status = ?", filter.Status)
		}
		if filter.PaymentStatus != "" {
			db = db.Where("payment_status = ?", filter.PaymentStatus)
		}
		if filter.From != nil {
			db = db.Where("created_at >= ?", *filter.From)
		}
		if filter.To != nil {
			db = db.Where("created_at < ?", *filter.To)
		}
		return db
	}

	var total int64
	if err := r.db.Model(&model.Order{}).Scopes(scope).Count(&total).Error; err != nil {
		logger.Error("Failed to count orders by user ID", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, 0, err
	}

	query := r.db.Scopes(scope).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Order("created_at DESC, id DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var orders []model.Order
	if err := query.Find(&orders).Error; err != nil {
		logger.Error("Failed to find orders by user ID in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, 0, err
	}

	logger.Debug("Orders found by user ID in database", map[string]interface{}{
		"user_id": userID,
		"count":   len(orders),
		"total":   total,
	})
	return orders, total, nil
}

// UpdateWithVersion applies updates only if the row still carries version, then bumps it.
func (r *orderRepository) UpdateWithVersion(id uint, version int, updates map[string]interface{}) error {
	logger.Debug("Updating order with version check", map[string]interface{}{
		"order_id": id,
		"version":  version,
	})

	changes := make(map[string]interface{}, len(updates)+1)
	for k, v := range updates {
		changes[k] = v
	}
	changes["version"] = gorm.Expr("version + 1")

	result := r.db.Model(&model.Order{}).
		Where("id = ? AND version = ?", id, version).
		Updates(changes)
	if result.Error != nil {
		logger.Error("Failed to update order", result.Error, map[string]interface{}{
			"order_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		logger.Warn("Order version conflict", map[string]interface{}{
			"order_id": id,
			"version":  version,
		})
		return ErrVersionConflict
	}
	return nil
}

func (r *orderRepository) CreatePayment(payment *model.OrderPayment) error {
	logger.Debug("Creating order payment attempt", map[string]interface{}{
		"order_id":         payment.OrderID,
		"gateway_order_id": payment.GatewayOrderID,
	})

	if err := r.db.Create(payment).Error; err != nil {
		logger.Error("Failed to create order payment attempt", err, map[string]interface{}{
			"order_id": payment.OrderID,
		})
		return err
	}
	return nil
}

func (r *orderRepository) FindPaymentByGatewayOrderID(orderID uint, gatewayOrderID string) (*model.OrderPayment, error) {
	var payment model.OrderPayment
	err := r.db.Where("order_id = ? AND gateway_order_id = ?", orderID, gatewayOrderID).
		Order("id DESC").
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *orderRepository) UpdatePayment(payment *model.OrderPayment) error {
	err := r.db.Model(&model.OrderPayment{}).
		Where("id = ?", payment.ID).
		Updates(map[string]interface{}{
			"status":             payment.Status,
			"gateway_payment_id": payment.GatewayPaymentID,
			"method":             payment.Method,
			"failure_reason":     payment.FailureReason,
		}).Error
	if err != nil {
		logger.Error("Failed to update order payment attempt", err, map[string]interface{}{
			"payment_id": payment.ID,
			"status":     payment.Status,
		})
		return err
	}
	return nil
}

// FailOpenPayments marks every attempt of the order still "created" as failed.
func (r *orderRepository) FailOpenPayments(orderID uint, reason string) (int64, error) {
	result := r.db.Model(&model.OrderPayment{}).
		Where("order_id = ? AND status = ?", orderID, model.PaymentAttemptCreated).
		Updates(map[string]interface{}{
			"status":         model.PaymentAttemptFailed,
			"failure_reason": reason,
		})
	if result.Error != nil {
		logger.Error("Failed to close open payment attempts", result.Error, map[string]interface{}{
			"order_id": orderID,
		})
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// FindStalePayments lists attempts still "created" before olderThan, oldest first.
func (r *orderRepository) FindStalePayments(olderThan time.Time, limit int) ([]model.OrderPayment, error) {
	var payments []model.OrderPayment
	query := r.db.Where("status = ? AND created_at < ?", model.PaymentAttemptCreated, olderThan).
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&payments).Error; err != nil {
		logger.Error("Failed to find stale payment attempts", err)
		return nil, err
	}
	return payments, nil
}
