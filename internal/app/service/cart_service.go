package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/model"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/repository"
	"github.com/kashan16/fatima-botique-ecom-sub001/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrCartItemNotFound  = errors.New("cart item not found")
	ErrVariantNotFound   = errors.New("product variant not found")
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrInvalidItemType   = errors.New("invalid cart item type")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type AddCartItemInput struct {
	VariantID uint
	Quantity  int
	ItemType  model.CartItemType
}

type UpdateCartItemInput struct {
	Quantity *int
	ItemType *model.CartItemType
}

// CartView splits the cart into purchasable lines and saved-for-later lines
// and previews what checkout would charge.
type CartView struct {
	CartID        uint             `json:"cart_id"`
	Items         []model.CartItem `json:"items"`
	SavedForLater []model.CartItem `json:"saved_for_later"`
	ItemCount     int              `json:"item_count"`
	Totals        OrderTotals      `json:"totals"`
}

type CartService interface {
	GetCart(ctx context.Context, userID string) (*CartView, error)
	AddItem(ctx context.Context, userID string, input AddCartItemInput) (*model.CartItem, error)
	UpdateItem(ctx context.Context, userID string, itemID uint, input UpdateCartItemInput) (*model.CartItem, error)
	RemoveItem(ctx context.Context, userID string, itemID uint) error
	ClearCart(ctx context.Context, userID string) error
	MergeGuestCart(ctx context.Context, userID, guestToken string) (*CartView, error)
}

type cartService struct {
	txManager   repository.TransactionManager
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	guestCarts  GuestCartStore
}

func NewCartService(
	txManager repository.TransactionManager,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	guestCarts GuestCartStore,
) CartService {
	return &cartService{
		txManager:   txManager,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		guestCarts:  guestCarts,
	}
}

func (s *cartService) GetCart(ctx context.Context, userID string) (*CartView, error) {
	cart, err := s.cartRepo.EnsureForUser(userID)
	if err != nil {
		return nil, fmt.Errorf("ensure cart: %w", err)
	}

	items, err := s.cartRepo.ListItems(cart.ID, "")
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}

	view := &CartView{
		CartID:        cart.ID,
		Items:         []model.CartItem{},
		SavedForLater: []model.CartItem{},
		Totals:        ComputeOrderTotals(items),
	}
	for _, item := range items {
		if item.ItemType == model.CartItemTypeSaveForLater {
			view.SavedForLater = append(view.SavedForLater, item)
			continue
		}
		view.Items = append(view.Items, item)
		view.ItemCount += item.Quantity
	}
	return view, nil
}

func (s *cartService) findVariant(variantID uint) (*model.ProductVariant, error) {
	variant, err := s.productRepo.FindVariantByID(variantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVariantNotFound
		}
		return nil, fmt.Errorf("load variant: %w", err)
	}
	return variant, nil
}

// checkStock only applies to purchasable lines; saved items may exceed stock.
func checkStock(variant *model.ProductVariant, itemType model.CartItemType, quantity int) error {
	if itemType == model.CartItemTypeCart && quantity > variant.StockQuantity {
		logger.Warn("Insufficient stock for cart line", map[string]interface{}{
			"variant_id": variant.ID,
			"requested":  quantity,
			"available":  variant.StockQuantity,
		})
		return ErrInsufficientStock
	}
	return nil
}

// AddItem adds a line, or increments the existing line of the same variant and type.
func (s *cartService) AddItem(ctx context.Context, userID string, input AddCartItemInput) (*model.CartItem, error) {
	if input.ItemType == "" {
		input.ItemType = model.CartItemTypeCart
	}
	if !input.ItemType.Valid() {
		return nil, ErrInvalidItemType
	}
	if input.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	logger.Info("Adding item to cart", map[string]interface{}{
		"user_id":    userID,
		"variant_id": input.VariantID,
		"quantity":   input.Quantity,
		"item_type":  input.ItemType,
	})

	variant, err := s.findVariant(input.VariantID)
	if err != nil {
		return nil, err
	}

	cart, err := s.cartRepo.EnsureForUser(userID)
	if err != nil {
		return nil, fmt.Errorf("ensure cart: %w", err)
	}

	existing, err := s.cartRepo.FindItemByVariant(cart.ID, variant.ID, input.ItemType)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find cart item: %w", err)
	}

	if existing != nil {
		quantity := existing.Quantity + input.Quantity
		if err := checkStock(variant, input.ItemType, quantity); err != nil {
			return nil, err
		}
		existing.Quantity = quantity
		if err := s.cartRepo.UpdateItem(existing); err != nil {
			return nil, fmt.Errorf("update cart item: %w", err)
		}
		existing.Variant = variant
		return existing, nil
	}

	if err := checkStock(variant, input.ItemType, input.Quantity); err != nil {
		return nil, err
	}
	item := &model.CartItem{
		CartID:    cart.ID,
		VariantID: variant.ID,
		Quantity:  input.Quantity,
		ItemType:  input.ItemType,
	}
	if err := s.cartRepo.CreateItem(item); err != nil {
		return nil, fmt.Errorf("create cart item: %w", err)
	}
	item.Variant = variant
	return item, nil
}

func (s *cartService) ownedItem(userID string, itemID uint) (*model.Cart, *model.CartItem, error) {
	cart, err := s.cartRepo.FindByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrCartItemNotFound
		}
		return nil, nil, fmt.Errorf("load cart: %w", err)
	}
	item, err := s.cartRepo.FindItem(cart.ID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrCartItemNotFound
		}
		return nil, nil, fmt.Errorf("load cart item: %w", err)
	}
	return cart, item, nil
}

// UpdateItem changes quantity and/or moves a line between cart and
// save_for_later. Moving onto a variant already present in the target list
// folds the two lines together.
func (s *cartService) UpdateItem(ctx context.Context, userID string, itemID uint, input UpdateCartItemInput) (*model.CartItem, error) {
	cart, item, err := s.ownedItem(userID, itemID)
	if err != nil {
		return nil, err
	}

	quantity, itemType := item.Quantity, item.ItemType
	if input.Quantity != nil {
		if *input.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
		quantity = *input.Quantity
	}
	if input.ItemType != nil {
		if !input.ItemType.Valid() {
			return nil, ErrInvalidItemType
		}
		itemType = *input.ItemType
	}
	if item.Variant == nil || item.Variant.Product == nil {
		return nil, ErrVariantNotFound
	}

	var target *model.CartItem
	if itemType != item.ItemType {
		target, err = s.cartRepo.FindItemByVariant(cart.ID, item.VariantID, itemType)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("find cart item: %w", err)
		}
	}

	if target == nil {
		if err := checkStock(item.Variant, itemType, quantity); err != nil {
			return nil, err
		}
		item.Quantity, item.ItemType = quantity, itemType
		if err := s.cartRepo.UpdateItem(item); err != nil {
			return nil, fmt.Errorf("update cart item: %w", err)
		}
		return item, nil
	}

	merged := target.Quantity + quantity
	if err := checkStock(item.Variant, itemType, merged); err != nil {
		return nil, err
	}
	err = s.txManager.WithinTx(ctx, func(r repository.TxRepos) error {
		target.Quantity = merged
		if err := r.Carts().UpdateItem(target); err != nil {
			return err
		}
		return r.Carts().DeleteItem(cart.ID, item.ID)
	})
	if err != nil {
		return nil, fmt.Errorf("merge cart items: %w", err)
	}
	target.Variant = item.Variant
	return target, nil
}

func (s *cartService) RemoveItem(ctx context.Context, userID string, itemID uint) error {
	cart, err := s.cartRepo.FindByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCartItemNotFound
		}
		return fmt.Errorf("load cart: %w", err)
	}
	if err := s.cartRepo.DeleteItem(cart.ID, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCartItemNotFound
		}
		return fmt.Errorf("delete cart item: %w", err)
	}

	logger.Info("Cart item removed", map[string]interface{}{
		"user_id":      userID,
		"cart_item_id": itemID,
	})
	return nil
}

// ClearCart empties the purchasable lines; saved-for-later lines stay.
func (s *cartService) ClearCart(ctx context.Context, userID string) error {
	cart, err := s.cartRepo.FindByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("load cart: %w", err)
	}

	deleted, err := s.cartRepo.ClearItems(cart.ID, model.CartItemTypeCart)
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}

	logger.Info("Cart cleared", map[string]interface{}{
		"user_id": userID,
		"deleted": deleted,
	})
	return nil
}

// MergeGuestCart folds a guest cart into the user's cart, capping each line
// at available stock, then drops the guest cart. Unknown or expired tokens
// leave the cart unchanged.
func (s *cartService) MergeGuestCart(ctx context.Context, userID, guestToken string) (*CartView, error) {
	if s.guestCarts == nil || guestToken == "" {
		return s.GetCart(ctx, userID)
	}

	guestItems, err := s.guestCarts.Get(ctx, guestToken)
	if err != nil {
		if errors.Is(err, ErrGuestCartNotFound) {
			logger.Info("Guest cart not found for merge, nothing to do", map[string]interface{}{
				"user_id": userID,
			})
			return s.GetCart(ctx, userID)
		}
		return nil, fmt.Errorf("load guest cart: %w", err)
	}

	cart, err := s.cartRepo.EnsureForUser(userID)
	if err != nil {
		return nil, fmt.Errorf("ensure cart: %w", err)
	}

	type mergeLine struct {
		variant  *model.ProductVariant
		quantity int
	}
	lines := make([]mergeLine, 0, len(guestItems))
	for _, gi := range guestItems {
		variant, err := s.findVariant(gi.VariantID)
		if err != nil {
			logger.Warn("Skipping unavailable guest cart line", map[string]interface{}{
				"variant_id": gi.VariantID,
			})
			continue
		}
		lines = append(lines, mergeLine{variant: variant, quantity: gi.Quantity})
	}

	merged := 0
	err = s.txManager.WithinTx(ctx, func(r repository.TxRepos) error {
		for _, line := range lines {
			existing, err := r.Carts().FindItemByVariant(cart.ID, line.variant.ID, model.CartItemTypeCart)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			quantity := line.quantity
			if existing != nil {
				quantity += existing.Quantity
			}
			if quantity > line.variant.StockQuantity {
				quantity = line.variant.StockQuantity
			}
			if quantity < 1 {
				continue
			}

			if existing != nil {
				existing.Quantity = quantity
				if err := r.Carts().UpdateItem(existing); err != nil {
					return err
				}
			} else if err := r.Carts().CreateItem(&model.CartItem{
				CartID:    cart.ID,
				VariantID: line.variant.ID,
				Quantity:  quantity,
				ItemType:  model.CartItemTypeCart,
			}); err != nil {
				return err
			}
			merged++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("merge guest cart: %w", err)
	}

	if err := s.guestCarts.Delete(ctx, guestToken); err != nil {
		logger.Warn("Failed to delete merged guest cart", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
	}

	logger.Info("Guest cart merged", map[string]interface{}{
		"user_id":      userID,
		"merged_lines": merged,
	})
	return s.GetCart(ctx, userID)
}
