package service

import (
	"context"
	"fmt"

	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/repository"
	"github.com/kashan16/fatima-botique-ecom-sub001/pkg/logger"
)

type UserAssets struct {
	CartID     uint `json:"cart_id"`
	WishlistID uint `json:"wishlist_id"`
}

// UserAssetService bootstraps the per-user singletons. Both inserts are
// ON CONFLICT (user_id) DO NOTHING, so concurrent calls converge on the same rows.
type UserAssetService interface {
	InitializeAssets(ctx context.Context, userID string) (*UserAssets, error)
}

type userAssetService struct {
	cartRepo     repository.CartRepository
	wishlistRepo repository.WishlistRepository
}

func NewUserAssetService(cartRepo repository.CartRepository, wishlistRepo repository.WishlistRepository) UserAssetService {
	return &userAssetService{cartRepo: cartRepo, wishlistRepo: wishlistRepo}
}

func (s *userAssetService) InitializeAssets(ctx context.Context, userID string) (*UserAssets, error) {
	cart, err := s.cartRepo.EnsureForUser(userID)
	if err != nil {
		return nil, fmt.Errorf("ensure cart: %w", err)
	}
	wishlist, err := s.wishlistRepo.EnsureForUser(userID)
	if err != nil {
		return nil, fmt.Errorf("ensure wishlist: %w", err)
	}

	logger.Debug("User assets initialized", map[string]interface{}{
		"user_id":     userID,
		"cart_id":     cart.ID,
		"wishlist_id": wishlist.ID,
	})
	return &UserAssets{CartID: cart.ID, WishlistID: wishlist.ID}, nil
}
