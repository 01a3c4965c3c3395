package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/kashan16/fatima-botique-ecom-sub001/pkg/logger"
	"github.com/robfig/cron/v3"
)

// StalePaymentExpirer fails gateway attempts that never completed.
type StalePaymentExpirer interface {
	ExpireStalePayments(ctx context.Context, ttl time.Duration) (int, error)
}

// PaymentSweeper periodically expires payment attempts left in "created".
type PaymentSweeper struct {
	cron     *cron.Cron
	spec     string
	ttl      time.Duration
	payments StalePaymentExpirer

	// one sweep at a time; a slow sweep skips the next tick
	running sync.Mutex
}

func NewPaymentSweeper(payments StalePaymentExpirer, spec string, ttl time.Duration) *PaymentSweeper {
	return &PaymentSweeper{
		cron:     cron.New(),
		spec:     spec,
		ttl:      ttl,
		payments: payments,
	}
}

func (s *PaymentSweeper) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.Sweep); err != nil {
		logger.Error("Failed to add cron job for payment sweep", err, map[string]interface{}{
			"spec": s.spec,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Payment sweeper started", map[string]interface{}{
		"spec": s.spec,
		"ttl":  s.ttl.String(),
	})
	return nil
}

// Sweep runs one expiry pass.
func (s *PaymentSweeper) Sweep() {
	if !s.running.TryLock() {
		logger.Warn("Previous payment sweep still running, skipping", nil)
		return
	}
	defer s.running.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	start := time.Now()
	expired, err := s.payments.ExpireStalePayments(ctx, s.ttl)
	if err != nil {
		logger.Error("Payment sweep failed", err, map[string]interface{}{
			"expired": expired,
		})
		return
	}

	if expired > 0 {
		logger.Info("Expired stale payment attempts", map[string]interface{}{
			"expired":     expired,
			"duration_ms": time.Since(start).Milliseconds(),
		})
	}
}

// Stop waits for a running sweep to finish.
func (s *PaymentSweeper) Stop() {
	logger.Info("Stopping payment sweeper...", nil)
	<-s.cron.Stop().Done()
	logger.Info("Payment sweeper stopped", nil)
}
