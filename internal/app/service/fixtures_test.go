package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/model"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/repository"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testUserID  = "user_2a9Xk1"
	otherUserID = "user_7bQp03"
)

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})
	return testDB
}

var fixtureSeq int

// createVariant inserts an active product with one variant priced base + adjustment.
func createVariant(t *testing.T, testDB *gorm.DB, base, adjustment string, stock int) *model.ProductVariant {
	t.Helper()
	fixtureSeq++
	product := &model.Product{
		Name:      fmt.Sprintf("Product %d", fixtureSeq),
		Slug:      fmt.Sprintf("product-%d", fixtureSeq),
		SKU:       fmt.Sprintf("SKU-%d", fixtureSeq),
		BasePrice: decimal.RequireFromString(base),
		IsActive:  true,
		Variants: []model.ProductVariant{{
			SKU:             fmt.Sprintf("SKU-%d-M", fixtureSeq),
			Size:            "M",
			Color:           "Blue",
			StockQuantity:   stock,
			PriceAdjustment: decimal.RequireFromString(adjustment),
			IsActive:        true,
		}},
		Images: []model.ProductImage{{URL: fmt.Sprintf("https://cdn.test/%d.jpg", fixtureSeq), IsPrimary: true}},
	}
	require.NoError(t, testDB.Create(product).Error)

	variant := product.Variants[0]
	variant.Product = product
	return &variant
}

func createAddress(t *testing.T, testDB *gorm.DB, userID string, addressType model.AddressType, isDefault bool) *model.Address {
	t.Helper()
	address := &model.Address{
		UserID:       userID,
		AddressType:  addressType,
		FullName:     "Aisha Khan",
		Phone:        "9876543210",
		AddressLine1: "12 MG Road",
		City:         "Lucknow",
		State:        "Uttar Pradesh",
		PostalCode:   "226001",
		Country:      "India",
		IsDefault:    isDefault,
	}
	require.NoError(t, testDB.Create(address).Error)
	return address
}

func addCartLine(t *testing.T, testDB *gorm.DB, userID string, variantID uint, qty int, itemType model.CartItemType) {
	t.Helper()
	cart := model.Cart{UserID: userID}
	require.NoError(t, testDB.Where(model.Cart{UserID: userID}).FirstOrCreate(&cart).Error)
	require.NoError(t, testDB.Create(&model.CartItem{
		CartID:    cart.ID,
		VariantID: variantID,
		Quantity:  qty,
		ItemType:  itemType,
	}).Error)
}

func countRows(t *testing.T, testDB *gorm.DB, value interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, testDB.Model(value).Count(&n).Error)
	return n
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.OrderEvent
}

func (p *recordingPublisher) PublishOrderEvent(event model.OrderEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) Events() []model.OrderEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]model.OrderEvent(nil), p.events...)
}

// memoryLocker mimics SETNX semantics without expiry.
type memoryLocker struct {
	mu   sync.Mutex
	held map[string]bool
	err  error
}

func newMemoryLocker() *memoryLocker {
	return &memoryLocker{held: make(map[string]bool)}
}

func (l *memoryLocker) Acquire(_ context.Context, key string, _ time.Duration) (func(), bool, error) {
	if l.err != nil {
		return func() {}, false, l.err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return func() {}, false, nil
	}
	l.held[key] = true
	return func() {
		l.mu.Lock()
		delete(l.held, key)
		l.mu.Unlock()
	}, true, nil
}

// placeTestOrder checks out a single line of price base for userID.
func placeTestOrder(t *testing.T, testDB *gorm.DB, userID string, method model.PaymentMethod, base string) *model.Order {
	t.Helper()
	address := createAddress(t, testDB, userID, model.AddressTypeBoth, false)
	variant := createVariant(t, testDB, base, "0", 10)
	addCartLine(t, testDB, userID, variant.ID, 1, model.CartItemTypeCart)

	checkout := NewCheckoutService(
		repository.NewTransactionManager(testDB),
		repository.NewOrderRepository(testDB),
		repository.NewAddressRepository(testDB),
		nil, nil, "INR", 0,
	)
	result, err := checkout.Checkout(context.Background(), userID, CheckoutInput{
		ShippingAddressID: address.ID,
		BillingAddressID:  address.ID,
		PaymentMethod:     method,
	})
	require.NoError(t, err)
	return result.Order
}

// memoryGuestCarts is an in-process GuestCartStore.
type memoryGuestCarts struct {
	mu    sync.Mutex
	seq   int
	carts map[string][]model.GuestCartItem
}

func newMemoryGuestCarts() *memoryGuestCarts {
	return &memoryGuestCarts{carts: make(map[string][]model.GuestCartItem)}
}

func (m *memoryGuestCarts) Create(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	token := fmt.Sprintf("guest-%d", m.seq)
	m.carts[token] = []model.GuestCartItem{}
	return token, nil
}

func (m *memoryGuestCarts) Get(_ context.Context, token string) ([]model.GuestCartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items, ok := m.carts[token]
	if !ok {
		return nil, ErrGuestCartNotFound
	}
	return append([]model.GuestCartItem(nil), items...), nil
}

func (m *memoryGuestCarts) Save(_ context.Context, token string, items []model.GuestCartItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[token] = append([]model.GuestCartItem(nil), items...)
	return nil
}

func (m *memoryGuestCarts) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, token)
	return nil
}
