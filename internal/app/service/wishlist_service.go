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
	ErrWishlistItemNotFound = errors.New("wishlist item not found")
	ErrVariantRequired      = errors.New("variant_id is required to move this item to the cart")
	ErrVariantMismatch      = errors.New("variant does not belong to the wishlisted product")
)

type AddWishlistItemInput struct {
	ProductID uint
	VariantID *uint
}

type MoveToCartInput struct {
	VariantID *uint
	Quantity  int
}

type WishlistService interface {
	GetWishlist(ctx context.Context, userID string) ([]model.WishlistItem, error)
	AddItem(ctx context.Context, userID string, input AddWishlistItemInput) (*model.WishlistItem, error)
	RemoveItem(ctx context.Context, userID string, itemID uint) error
	MoveToCart(ctx context.Context, userID string, itemID uint, input MoveToCartInput) (*model.CartItem, error)
}

type wishlistService struct {
	wishlistRepo repository.WishlistRepository
	productRepo  repository.ProductRepository
	carts        CartService
}

func NewWishlistService(
	wishlistRepo repository.WishlistRepository,
	productRepo repository.ProductRepository,
	carts CartService,
) WishlistService {
	return &wishlistService{
		wishlistRepo: wishlistRepo,
		productRepo:  productRepo,
		carts:        carts,
	}
}

func (s *wishlistService) GetWishlist(ctx context.Context, userID string) ([]model.WishlistItem, error) {
	wishlist, err := s.wishlistRepo.EnsureForUser(userID)
	if err != nil {
		return nil, fmt.Errorf("ensure wishlist: %w", err)
	}

	items, err := s.wishlistRepo.ListItems(wishlist.ID)
	if err != nil {
		return nil, fmt.Errorf("list wishlist items: %w", err)
	}

	logger.Debug("User wishlist fetched", map[string]interface{}{
		"user_id": userID,
		"count":   len(items),
	})
	return items, nil
}

// AddItem returns the existing entry when the product (and variant) is already wishlisted.
func (s *wishlistService) AddItem(ctx context.Context, userID string, input AddWishlistItemInput) (*model.WishlistItem, error) {
	logger.Info("Adding item to wishlist", map[string]interface{}{
		"user_id":    userID,
		"product_id": input.ProductID,
	})

	product, err := s.productRepo.FindByID(input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("load product: %w", err)
	}

	var variant *model.ProductVariant
	if input.VariantID != nil {
		variant, err = s.productVariant(product.ID, *input.VariantID)
		if err != nil {
			return nil, err
		}
	}

	wishlist, err := s.wishlistRepo.EnsureForUser(userID)
	if err != nil {
		return nil, fmt.Errorf("ensure wishlist: %w", err)
	}

	existing, err := s.wishlistRepo.FindItemByProduct(wishlist.ID, product.ID, input.VariantID)
	if err == nil {
		existing.Product, existing.Variant = product, variant
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find wishlist item: %w", err)
	}

	item := &model.WishlistItem{
		WishlistID: wishlist.ID,
		ProductID:  product.ID,
		VariantID:  input.VariantID,
	}
	if err := s.wishlistRepo.CreateItem(item); err != nil {
		return nil, fmt.Errorf("create wishlist item: %w", err)
	}

	logger.Info("Item added to wishlist", map[string]interface{}{
		"wishlist_item_id": item.ID,
		"user_id":          userID,
	})
	item.Product, item.Variant = product, variant
	return item, nil
}

func (s *wishlistService) productVariant(productID, variantID uint) (*model.ProductVariant, error) {
	variant, err := s.productRepo.FindVariantByID(variantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVariantNotFound
		}
		return nil, fmt.Errorf("load variant: %w", err)
	}
	if variant.ProductID != productID {
		return nil, ErrVariantMismatch
	}
	return variant, nil
}

func (s *wishlistService) ownedItem(userID string, itemID uint) (*model.WishlistItem, error) {
	wishlist, err := s.wishlistRepo.EnsureForUser(userID)
	if err != nil {
		return nil, fmt.Errorf("ensure wishlist: %w", err)
	}
	item, err := s.wishlistRepo.FindItem(wishlist.ID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWishlistItemNotFound
		}
		return nil, fmt.Errorf("load wishlist item: %w", err)
	}
	return item, nil
}

func (s *wishlistService) RemoveItem(ctx context.Context, userID string, itemID uint) error {
	item, err := s.ownedItem(userID, itemID)
	if err != nil {
		return err
	}
	if err := s.wishlistRepo.DeleteItem(item.WishlistID, item.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWishlistItemNotFound
		}
		return fmt.Errorf("delete wishlist item: %w", err)
	}

	logger.Info("Item removed from wishlist", map[string]interface{}{
		"wishlist_item_id": itemID,
		"user_id":          userID,
	})
	return nil
}

// MoveToCart adds the item to the cart and drops it from the wishlist.
// A variant given in the request wins over the wishlisted one.
func (s *wishlistService) MoveToCart(ctx context.Context, userID string, itemID uint, input MoveToCartInput) (*model.CartItem, error) {
	item, err := s.ownedItem(userID, itemID)
	if err != nil {
		return nil, err
	}

	variantID := item.VariantID
	if input.VariantID != nil {
		if _, err := s.productVariant(item.ProductID, *input.VariantID); err != nil {
			return nil, err
		}
		variantID = input.VariantID
	}
	if variantID == nil {
		return nil, ErrVariantRequired
	}

	quantity := input.Quantity
	if quantity == 0 {
		quantity = 1
	}

	cartItem, err := s.carts.AddItem(ctx, userID, AddCartItemInput{
		VariantID: *variantID,
		Quantity:  quantity,
		ItemType:  model.CartItemTypeCart,
	})
	if err != nil {
		return nil, err
	}

	if err := s.wishlistRepo.DeleteItem(item.WishlistID, item.ID); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Warn("Moved wishlist item to cart but failed to remove it", map[string]interface{}{
			"wishlist_item_id": item.ID,
			"user_id":          userID,
			"error":            err.Error(),
		})
	}

	logger.Info("Wishlist item moved to cart", map[string]interface{}{
		"wishlist_item_id": item.ID,
		"cart_item_id":     cartItem.ID,
		"user_id":          userID,
	})
	return cartItem, nil
}
