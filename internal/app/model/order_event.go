package model

type OrderEventType string

const (
	OrderEventCreated          OrderEventType = "order.created"
	OrderEventPaymentCompleted OrderEventType = "order.payment_completed"
	OrderEventPaymentFailed    OrderEventType = "order.payment_failed"
	OrderEventConfirmed        OrderEventType = "order.confirmed"
	OrderEventCancelled        OrderEventType = "order.cancelled"
)

// OrderEvent is pushed to the owner's live sessions after an order changes.
type OrderEvent struct {
	Type          OrderEventType `json:"type"`
	UserID        string         `json:"-"`
	OrderID       uint           `json:"order_id"`
	OrderNumber   string         `json:"order_number"`
	OrderStatus   OrderStatus    `json:"order_status"`
	PaymentStatus PaymentStatus  `json:"payment_status"`
}

// NewOrderEvent snapshots the order's current state
func NewOrderEvent(eventType OrderEventType, order *Order) OrderEvent {
	return OrderEvent{
		Type:          eventType,
		UserID:        order.UserID,
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		OrderStatus:   order.OrderStatus,
		PaymentStatus: order.PaymentStatus,
	}
}
