package repository

import (
	"context"

	"gorm.io/gorm"
)

// TxRepos exposes repositories bound to one open transaction.
type TxRepos interface {
	Orders() OrderRepository
	Carts() CartRepository
	// Savepoint runs fn behind a savepoint. A failing fn rolls back to the
	// savepoint and leaves the outer transaction usable.
	Savepoint(name string, fn func(r TxRepos) error) error
}

// TransactionManager hides begin/commit/rollback from services.
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}

type txRepos struct {
	tx *gorm.DB
}

func newTxRepos(tx *gorm.DB) *txRepos {
	return &txRepos{tx: tx}
}

func (r *txRepos) Orders() OrderRepository { return NewOrderRepository(r.tx) }
func (r *txRepos) Carts() CartRepository   { return NewCartRepository(r.tx) }

func (r *txRepos) Savepoint(name string, fn func(r TxRepos) error) error {
	if err := r.tx.SavePoint(name).Error; err != nil {
		return err
	}
	if err := fn(r); err != nil {
		if rbErr := r.tx.RollbackTo(name).Error; rbErr != nil {
			return rbErr
		}
		return err
	}
	return nil
}

type gormTxManager struct {
	db *gorm.DB
}

func NewTransactionManager(db *gorm.DB) TransactionManager {
	return &gormTxManager{db: db}
}

func (m *gormTxManager) WithinTx(ctx context.Context, fn func(r TxRepos) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newTxRepos(tx))
	})
}
