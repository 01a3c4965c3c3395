package repository

import (
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/model"
	"github.com/kashan16/fatima-botique-ecom-sub001/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartRepository interface {
	EnsureForUser(userID string) (*model.Cart, error)
	FindByUserID(userID string) (*model.Cart, error)
	LockByUserID(userID string) (*model.Cart, error)
	ListItems(cartID uint, itemType model.CartItemType) ([]model.CartItem, error)
	FindItem(cartID, itemID uint) (*model.CartItem, error)
	FindItemByVariant(cartID, variantID uint, itemType model.CartItemType) (*model.CartItem, error)
	CreateItem(item *model.CartItem) error
	UpdateItem(item *model.CartItem) error
	DeleteItem(cartID, itemID uint) error
	ClearItems(cartID uint, itemType model.CartItemType) (int64, error)
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

// EnsureForUser returns the user's cart, inserting it with ON CONFLICT DO NOTHING when absent.
// Safe under concurrent callers: the unique user_id index picks one winner.
func (r *cartRepository) EnsureForUser(userID string) (*model.Cart, error) {
	cart := model.Cart{UserID: userID}
	if err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&cart).Error; err != nil {
		logger.Error("Failed to ensure cart in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	var existing model.Cart
	if err := r.db.Where("user_id = ?", userID).First(&existing).Error; err != nil {
		logger.Error("Failed to load ensured cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return &existing, nil
}

func (r *cartRepository) FindByUserID(userID string) (*model.Cart, error) {
	var cart model.Cart
	if err := r.db.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// LockByUserID reads the cart row FOR UPDATE; only meaningful inside a transaction.
func (r *cartRepository) LockByUserID(userID string) (*model.Cart, error) {
	var cart model.Cart
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// ListItems returns the cart's lines with variant, product and images. An empty itemType lists every line.
func (r *cartRepository) ListItems(cartID uint, itemType model.CartItemType) ([]model.CartItem, error) {
	logger.Debug("Finding cart items in database", map[string]interface{}{
		"cart_id":   cartID,
		"item_type": itemType,
	})

	query := r.db.Where("cart_id = ?", cartID)
	if itemType != "" {
		query = query.Where("item_type = ?", itemType)
	}

	var items []model.CartItem
	err := query.
		Preload("Variant").
		Preload("Variant.Product").
		Preload("Variant.Product.Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		Order("created_at ASC, id ASC").
		Find(&items).Error
	if err != nil {
		logger.Error("Failed to find cart items in database", err, map[string]interface{}{
			"cart_id": cartID,
		})
		return nil, err
	}

	logger.Debug("Cart items found in database", map[string]interface{}{
		"cart_id": cartID,
		"count":   len(items),
	})
	return items, nil
}

func (r *cartRepository) FindItem(cartID, itemID uint) (*model.CartItem, error) {
	var item model.CartItem
	err := r.db.Preload("Variant").Preload("Variant.Product").
		Where("id = ? AND cart_id = ?", itemID, cartID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *cartRepository) FindItemByVariant(cartID, variantID uint, itemType model.CartItemType) (*model.CartItem, error) {
	var item model.CartItem
	err := r.db.Where("cart_id = ? AND variant_id = ? AND item_type = ?", cartID, variantID, itemType).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *cartRepository) CreateItem(item *model.CartItem) error {
	logger.Debug("Creating cart item in database", map[string]interface{}{
		"cart_id":    item.CartID,
		"variant_id": item.VariantID,
		"quantity":   item.Quantity,
		"item_type":  item.ItemType,
	})

	if err := r.db.Omit(clause.Associations).Create(item).Error; err != nil {
		logger.Error("Failed to create cart item in database", err, map[string]interface{}{
			"cart_id":    item.CartID,
			"variant_id": item.VariantID,
		})
		return err
	}
	return nil
}

func (r *cartRepository) UpdateItem(item *model.CartItem) error {
	logger.Debug("Updating cart item in database", map[string]interface{}{
		"cart_item_id": item.ID,
		"quantity":     item.Quantity,
		"item_type":    item.ItemType,
	})

	err := r.db.Model(&model.CartItem{}).
		Where("id = ? AND cart_id = ?", item.ID, item.CartID).
		Updates(map[string]interface{}{
			"quantity":  item.Quantity,
			"item_type": item.ItemType,
		}).Error
	if err != nil {
		logger.Error("Failed to update cart item in database", err, map[string]interface{}{
			"cart_item_id": item.ID,
		})
		return err
	}
	return nil
}

func (r *cartRepository) DeleteItem(cartID, itemID uint) error {
	result := r.db.Where("id = ? AND cart_id = ?", itemID, cartID).Delete(&model.CartItem{})
	if result.Error != nil {
		logger.Error("Failed to delete cart item from database", result.Error, map[string]interface{}{
			"cart_item_id": itemID,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ClearItems deletes the cart's lines of itemType, or all lines when itemType is empty.
func (r *cartRepository) ClearItems(cartID uint, itemType model.CartItemType) (int64, error) {
	logger.Debug("Clearing cart items", map[string]interface{}{
		"cart_id":   cartID,
		"item_type": itemType,
	})

	query := r.db.Where("cart_id = ?", cartID)
	if itemType != "" {
		query = query.Where("item_type = ?", itemType)
	}
	result := query.Delete(&model.CartItem{})
	if result.Error != nil {
		logger.Error("Failed to clear cart items", result.Error, map[string]interface{}{
			"cart_id": cartID,
		})
		return 0, result.Error
	}

	logger.Debug("Cart items cleared", map[string]interface{}{
		"cart_id": cartID,
		"deleted": result.RowsAffected,
	})
	return result.RowsAffected, nil
}
