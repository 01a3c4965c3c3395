package service

import (
	"context"
	"time"

	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/model"
)

// OrderEventPublisher fans order changes out to live sessions. Publishing is
// best effort and never fails the caller.
type OrderEventPublisher interface {
	PublishOrderEvent(event model.OrderEvent)
}

type noopPublisher struct{}

func (noopPublisher) PublishOrderEvent(model.OrderEvent) {}

// CheckoutLocker serializes checkouts of one user across instances.
type CheckoutLocker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), acquired bool, err error)
}

// NoopLocker always grants the lock. Used when Redis is not configured; the
// cart row lock inside the checkout transaction still prevents double orders.
type NoopLocker struct{}

func (NoopLocker) Acquire(context.Context, string, time.Duration) (func(), bool, error) {
	return func() {}, true, nil
}
