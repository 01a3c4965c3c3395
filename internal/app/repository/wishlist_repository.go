package repository

import (
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/model"
	"github.com/kashan16/fatima-botique-ecom-sub001/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WishlistRepository interface {
	EnsureForUser(userID string) (*model.Wishlist, error)
	ListItems(wishlistID uint) ([]model.WishlistItem, error)
	FindItem(wishlistID, itemID uint) (*model.WishlistItem, error)
	FindItemByProduct(wishlistID, productID uint, variantID *uint) (*model.WishlistItem, error)
	CreateItem(item *model.WishlistItem) error
	DeleteItem(wishlistID, itemID uint) error
}

type wishlistRepository struct {
	db *gorm.DB
}

func NewWishlistRepository(db *gorm.DB) WishlistRepository {
	return &wishlistRepository{db: db}
}

func (r *wishlistRepository) EnsureForUser(userID string) (*model.Wishlist, error) {
	wishlist := model.Wishlist{UserID: userID}
	if err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&wishlist).Error; err != nil {
		logger.Error("Failed to ensure wishlist in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	var existing model.Wishlist
	if err := r.db.Where("user_id = ?", userID).First(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

func (r *wishlistRepository) ListItems(wishlistID uint) ([]model.WishlistItem, error) {
	logger.Debug("Finding wishlist items in database", map[string]interface{}{
		"wishlist_id": wishlistID,
	})

	var items []model.WishlistItem
	err := r.db.Where("wishlist_id = ?", wishlistID).
		Preload("Product").
		Preload("Product.Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		Preload("Variant").
		Order("created_at DESC, id DESC").
		Find(&items).Error
	if err != nil {
		logger.Error("Failed to find wishlist items in database", err, map[string]interface{}{
			"wishlist_id": wishlistID,
		})
		return nil, err
	}
	return items, nil
}

func (r *wishlistRepository) FindItem(wishlistID, itemID uint) (*model.WishlistItem, error) {
	var item model.WishlistItem
	if err := r.db.Where("id = ? AND wishlist_id = ?", itemID, wishlistID).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *wishlistRepository) FindItemByProduct(wishlistID, productID uint, variantID *uint) (*model.WishlistItem, error) {
	query := r.db.Where("wishlist_id = ? AND product_id = ?", wishlistID, productID)
	if variantID != nil {
		query = query.Where("variant_id = ?", *variantID)
	} else {
		query = query.Where("variant_id IS NULL")
	}

	var item model.WishlistItem
	if err := query.First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *wishlistRepository) CreateItem(item *model.WishlistItem) error {
	logger.Debug("Creating wishlist item in database", map[string]interface{}{
		"wishlist_id": item.WishlistID,
		"product_id":  item.ProductID,
	})

	if err := r.db.Omit(clause.Associations).Create(item).Error; err != nil {
		logger.Error("Failed to create wishlist item in database", err, map[string]interface{}{
			"wishlist_id": item.WishlistID,
			"product_id":  item.ProductID,
		})
		return err
	}
	return nil
}

func (r *wishlistRepository) DeleteItem(wishlistID, itemID uint) error {
	result := r.db.Where("id = ? AND wishlist_id = ?", itemID, wishlistID).Delete(&model.WishlistItem{})
	if result.Error != nil {
		logger.Error("Failed to delete wishlist item", result.Error, map[string]interface{}{
			"wishlist_item_id": itemID,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
