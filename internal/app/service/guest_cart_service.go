package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/model"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/repository"
	"github.com/kashan16/fatima-botique-ecom-sub001/pkg/logger"
	"github.com/shopspring/decimal"
)

var (
	ErrGuestCartNotFound    = repository.ErrGuestCartNotFound
	ErrGuestCartUnavailable = errors.New("guest carts are not available")
)

// GuestCartStore persists anonymous carts by opaque token.
type GuestCartStore interface {
	Create(ctx context.Context) (string, error)
	Get(ctx context.Context, token string) ([]model.GuestCartItem, error)
	Save(ctx context.Context, token string, items []model.GuestCartItem) error
	Delete(ctx context.Context, token string) error
}

type GuestCartLine struct {
	VariantID uint                  `json:"variant_id"`
	Quantity  int                   `json:"quantity"`
	AddedAt   time.Time             `json:"added_at"`
	Variant   *model.ProductVariant `json:"variant,omitempty"`
}

type GuestCartView struct {
	Token    string          `json:"guest_token"`
	Items    []GuestCartLine `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type GuestCartService interface {
	CreateGuestCart(ctx context.Context) (*GuestCartView, error)
	GetGuestCart(ctx context.Context, token string) (*GuestCartView, error)
	AddGuestItem(ctx context.Context, token string, variantID uint, quantity int) (*GuestCartView, error)
	RemoveGuestItem(ctx context.Context, token string, variantID uint) (*GuestCartView, error)
}

type guestCartService struct {
	store       GuestCartStore
	productRepo repository.ProductRepository
	now         func() time.Time
}

func NewGuestCartService(store GuestCartStore, productRepo repository.ProductRepository) GuestCartService {
	return &guestCartService{
		store:       store,
		productRepo: productRepo,
		now:         time.Now,
	}
}

func (s *guestCartService) CreateGuestCart(ctx context.Context) (*GuestCartView, error) {
	if s.store == nil {
		return nil, ErrGuestCartUnavailable
	}
	token, err := s.store.Create(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("Guest cart created")
	return &GuestCartView{Token: token, Items: []GuestCartLine{}, Subtotal: decimal.Zero}, nil
}

func (s *guestCartService) GetGuestCart(ctx context.Context, token string) (*GuestCartView, error) {
	if s.store == nil {
		return nil, ErrGuestCartUnavailable
	}
	items, err := s.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.hydrate(token, items), nil
}

// hydrate attaches variants and drops lines whose variant is gone.
func (s *guestCartService) hydrate(token string, items []model.GuestCartItem) *GuestCartView {
	view := &GuestCartView{Token: token, Items: []GuestCartLine{}, Subtotal: decimal.Zero}
	for _, item := range items {
		variant, err := s.productRepo.FindVariantByID(item.VariantID)
		if err != nil {
			continue
		}
		view.Items = append(view.Items, GuestCartLine{
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
			AddedAt:   item.AddedAt,
			Variant:   variant,
		})
		view.Subtotal = view.Subtotal.Add(variant.UnitPrice().Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return view
}

func (s *guestCartService) AddGuestItem(ctx context.Context, token string, variantID uint, quantity int) (*GuestCartView, error) {
	if s.store == nil {
		return nil, ErrGuestCartUnavailable
	}
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	items, err := s.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	variant, err := s.productRepo.FindVariantByID(variantID)
	if err != nil {
		return nil, ErrVariantNotFound
	}

	found := false
	for i := range items {
		if items[i].VariantID == variantID {
			items[i].Quantity += quantity
			quantity = items[i].Quantity
			found = true
			break
		}
	}
	if err := checkStock(variant, model.CartItemTypeCart, quantity); err != nil {
		return nil, err
	}
	if !found {
		items = append(items, model.GuestCartItem{VariantID: variantID, Quantity: quantity, AddedAt: s.now()})
	}

	if err := s.store.Save(ctx, token, items); err != nil {
		return nil, fmt.Errorf("save guest cart: %w", err)
	}
	return s.hydrate(token, items), nil
}

func (s *guestCartService) RemoveGuestItem(ctx context.Context, token string, variantID uint) (*GuestCartView, error) {
	if s.store == nil {
		return nil, ErrGuestCartUnavailable
	}
	items, err := s.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	kept := items[:0]
	for _, item := range items {
		if item.VariantID != variantID {
			kept = append(kept, item)
		}
	}
	if len(kept) == len(items) {
		return nil, ErrCartItemNotFound
	}

	if err := s.store.Save(ctx, token, kept); err != nil {
		return nil, fmt.Errorf("save guest cart: %w", err)
	}
	return s.hydrate(token, kept), nil
}
