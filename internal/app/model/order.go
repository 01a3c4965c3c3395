package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string
type PaymentStatus string
type PaymentMethod string
type PaymentAttemptStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"

	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusCODPending PaymentStatus = "cod_pending" // collected on delivery
	PaymentStatusCompleted  PaymentStatus = "completed"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusRefunded   PaymentStatus = "refunded"

	PaymentMethodRazorpay PaymentMethod = "razorpay"
	PaymentMethodCOD      PaymentMethod = "cod"

	PaymentAttemptCreated  PaymentAttemptStatus = "created"
	PaymentAttemptCaptured PaymentAttemptStatus = "captured"
	PaymentAttemptFailed   PaymentAttemptStatus = "failed"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodRazorpay || m == PaymentMethodCOD
}

// RequiresPayment reports whether the buyer still has to pay through the gateway
func (m PaymentMethod) RequiresPayment() bool {
	return m != PaymentMethodCOD
}

// InitialPaymentStatus is the payment_status an order starts with
func (m PaymentMethod) InitialPaymentStatus() PaymentStatus {
	if m == PaymentMethodCOD {
		return PaymentStatusCODPending
	}
	return PaymentStatusPending
}

// Order is the aggregate root of a purchase. Pricing fields are a snapshot and
// never recomputed. Every mutation compares and increments Version.
type Order struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	OrderNumber       string          `gorm:"size:40;not null;uniqueIndex" json:"order_number"`
	UserID            string          `gorm:"size:64;not null;index;uniqueIndex:idx_orders_user_idempotency,priority:1" json:"user_id"`
	IdempotencyKey    *string         `gorm:"size:128;uniqueIndex:idx_orders_user_idempotency,priority:2" json:"-"`
	ShippingAddressID uint            `gorm:"not null;index" json:"shipping_address_id"`
	BillingAddressID  uint            `gorm:"not null;index" json:"billing_address_id"`
	Subtotal          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	ShippingCost      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"shipping_cost"`
	TaxAmount         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"tax_amount"`
	DiscountAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"discount_amount"`
	TotalAmount       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	Currency          string          `gorm:"size:3;not null;default:'INR'" json:"currency"`
	PaymentMethod     PaymentMethod   `gorm:"type:varchar(20);not null" json:"payment_method"`
	PaymentStatus     PaymentStatus   `gorm:"type:varchar(20);not null;default:'pending';index" json:"payment_status"`
	OrderStatus       OrderStatus     `gorm:"type:varchar(20);not null;default:'pending';index" json:"order_status"`
	IsPaid            bool            `gorm:"not null;default:false" json:"is_paid"`
	PaidAt            *time.Time      `json:"paid_at,omitempty"`
	Notes             string          `gorm:"type:text" json:"notes,omitempty"`
	Version           int             `gorm:"not null;default:1" json:"version"`
	CreatedAt         time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`

	ShippingAddress *Address             `gorm:"foreignKey:ShippingAddressID" json:"shipping_address,omitempty"`
	BillingAddress  *Address             `gorm:"foreignKey:BillingAddressID" json:"billing_address,omitempty"`
	Items           []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	StatusHistory   []OrderStatusHistory `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"status_history,omitempty"`
	Payments        []OrderPayment       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"payments,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem snapshots catalog data so later catalog edits do not rewrite history.
type OrderItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderID     uint            `gorm:"not null;index" json:"order_id"`
	ProductID   uint            `gorm:"not null;index" json:"product_id"`
	VariantID   uint            `gorm:"not null;index" json:"variant_id"`
	ProductName string          `gorm:"size:200;not null" json:"product_name"`
	ProductSKU  string          `gorm:"size:64;not null" json:"product_sku"`
	Size        string          `gorm:"size:20" json:"size"`
	Color       string          `gorm:"size:40" json:"color"`
	ImageURL    string          `gorm:"type:text" json:"image_url,omitempty"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// OrderStatusHistory is an append-only audit trail. Order.OrderStatus stays authoritative.
type OrderStatusHistory struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	OrderID   uint        `gorm:"not null;index" json:"order_id"`
	Status    OrderStatus `gorm:"type:varchar(20);not null" json:"status"`
	Note      string      `gorm:"type:text" json:"note,omitempty"`
	ChangedBy string      `gorm:"size:64" json:"changed_by,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

func (OrderStatusHistory) TableName() string {
	return "order_status_history"
}

// OrderPayment records one gateway attempt; an order may have several.
type OrderPayment struct {
	ID               uint                 `gorm:"primaryKey" json:"id"`
	OrderID          uint                 `gorm:"not null;index" json:"order_id"`
	Provider         string               `gorm:"size:30;not null" json:"provider"`
	GatewayOrderID   string               `gorm:"size:64;index" json:"gateway_order_id"`
	GatewayPaymentID string               `gorm:"size:64" json:"gateway_payment_id,omitempty"`
	Method           string               `gorm:"size:30" json:"method,omitempty"` // card, upi, netbanking
	Amount           decimal.Decimal      `gorm:"type:decimal(12,2);not null" json:"amount"`
	Currency         string               `gorm:"size:3;not null" json:"currency"`
	Status           PaymentAttemptStatus `gorm:"type:varchar(20);not null;default:'created';index" json:"status"`
	FailureReason    string               `gorm:"type:text" json:"failure_reason,omitempty"`
	CreatedAt        time.Time            `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

func (OrderPayment) TableName() string {
	return "order_payments"
}
