package repository

import (
	"fmt"
	"strings"

	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/model"
	"github.com/kashan16/fatima-botique-ecom-sub001/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductSort string

const (
	ProductSortCreatedAt ProductSort = "created_at"
	ProductSortPrice     ProductSort = "price"
	ProductSortName      ProductSort = "name"
)

type ProductFilter struct {
	CategorySlug  string
	Search        string
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	Size          string
	Color         string
	InStock       bool
	FeaturedOnly  bool
	SortBy        ProductSort
	SortAscending bool
	Limit         int
	Offset        int
}

type ProductRepository interface {
	Create(product *model.Product) error
	FindWithFilter(filter ProductFilter) ([]model.Product, int64, error)
	FindByID(id uint) (*model.Product, error)
	FindBySlug(slug string) (*model.Product, error)
	FindVariantByID(id uint) (*model.ProductVariant, error)
	AddImage(image *model.ProductImage) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(product *model.Product) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"name": product.Name,
		"sku":  product.SKU,
	})

	if err := r.db.Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"name": product.Name,
			"sku":  product.SKU,
		})
		return err
	}

	logger.Debug("Product created in database", map[string]interface{}{
		"product_id": product.ID,
		"variants":   len(product.Variants),
	})
	return nil
}

// withDetails preloads everything a product page needs
func withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Category").
		Preload("Variants", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = ?", true).Order("id ASC")
		}).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		})
}

// applyFilter translates filter parameters into predicates on products
func (r *productRepository) applyFilter(query *gorm.DB, filter ProductFilter) *gorm.DB {
	query = query.Where("products.is_active = ?", true)

	if filter.CategorySlug != "" {
		query = query.Where("products.category_id IN (?)",
			r.db.Model(&model.Category{}).Select("id").Where("slug = ?", filter.CategorySlug))
	}

	if filter.Search != "" {
		like := fmt.Sprintf("%%%s%%", strings.ToLower(filter.Search))
		query = query.Where("LOWER(products.name) LIKE ? OR LOWER(products.description) LIKE ?", like, like)
	}

	if filter.MinPrice != nil {
		query = query.Where("products.base_price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("products.base_price <= ?", *filter.MaxPrice)
	}

	if filter.FeaturedOnly {
		query = query.Where("products.is_featured = ?", true)
	}

	if filter.Size != "" || filter.Color != "" || filter.InStock {
		variants := r.db.Model(&model.ProductVariant{}).
			Select("product_id").
			Where("is_active = ?", true)
		if filter.Size != "" {
			variants = variants.Where("size = ?", filter.Size)
		}
		if filter.Color != "" {
			variants = variants.Where("LOWER(color) = ?", strings.ToLower(filter.Color))
		}
		if filter.InStock {
			variants = variants.Where("stock_quantity > 0")
		}
		query = query.Where("products.id IN (?)", variants)
	}

	return query
}

func (r *productRepository) FindWithFilter(filter ProductFilter) ([]model.Product, int64, error) {
	logger.Debug("Finding products with filter", map[string]interface{}{
		"category":  filter.CategorySlug,
		"search":    filter.Search,
		"size":      filter.Size,
		"color":     filter.Color,
		"in_stock":  filter.InStock,
		"sort_by":   filter.SortBy,
		"ascending": filter.SortAscending,
		"limit":     filter.Limit,
		"offset":    filter.Offset,
	})

	var total int64
	if err := r.applyFilter(r.db.Model(&model.Product{}), filter).Count(&total).Error; err != nil {
		logger.Error("Failed to count products with filter", err)
		return nil, 0, err
	}

	query := withDetails(r.applyFilter(r.db.Model(&model.Product{}), filter))

	direction := "DESC"
	if filter.SortAscending {
		direction = "ASC"
	}
	switch filter.SortBy {
	case ProductSortPrice:
		query = query.Order("products.base_price " + direction)
	case ProductSortName:
		query = query.Order("products.name " + direction)
	default:
		query = query.Order("products.created_at " + direction)
	}
	query = query.Order("products.id DESC")

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var products []model.Product
	if err := query.Find(&products).Error; err != nil {
		logger.Error("Failed to find products with filter", err)
		return nil, 0, err
	}

	logger.Debug("Products found with filter", map[string]interface{}{
		"count": len(products),
		"total": total,
	})
	return products, total, nil
}

func (r *productRepository) FindByID(id uint) (*model.Product, error) {
	var product model.Product
	if err := withDetails(r.db).Where("is_active = ?", true).First(&product, id).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find product by ID in database", err, map[string]interface{}{
				"product_id": id,
			})
		}
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindBySlug(slug string) (*model.Product, error) {
	logger.Debug("Finding product by slug in database", map[string]interface{}{
		"slug": slug,
	})

	var product model.Product
	if err := withDetails(r.db).Where("slug = ? AND is_active = ?", slug, true).First(&product).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find product by slug in database", err, map[string]interface{}{
				"slug": slug,
			})
		}
		return nil, err
	}
	return &product, nil
}

// FindVariantByID loads a variant with its product so the unit price can be derived
func (r *productRepository) FindVariantByID(id uint) (*model.ProductVariant, error) {
	var variant model.ProductVariant
	err := r.db.Preload("Product").
		Where("id = ? AND is_active = ?", id, true).
		First(&variant).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find variant by ID in database", err, map[string]interface{}{
				"variant_id": id,
			})
		}
		return nil, err
	}
	if variant.Product == nil || !variant.Product.IsActive {
		return nil, gorm.ErrRecordNotFound
	}
	return &variant, nil
}

// AddImage appends an image; a primary image demotes the previous primary
func (r *productRepository) AddImage(image *model.ProductImage) error {
	logger.Debug("Adding product image", map[string]interface{}{
		"product_id": image.ProductID,
		"is_primary": image.IsPrimary,
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if image.IsPrimary {
			if err := tx.Model(&model.ProductImage{}).
				Where("product_id = ?", image.ProductID).
				Update("is_primary", false).Error; err != nil {
				return err
			}
		}
		if image.SortOrder == 0 {
			var maxOrder int
			if err := tx.Model(&model.ProductImage{}).
				Where("product_id = ?", image.ProductID).
				Select("COALESCE(MAX(sort_order), 0)").
				Scan(&maxOrder).Error; err != nil {
				return err
			}
			image.SortOrder = maxOrder + 1
		}
		return tx.Create(image).Error
	})
	if err != nil {
		logger.Error("Failed to add product image", err, map[string]interface{}{
			"product_id": image.ProductID,
		})
		return err
	}
	return nil
}
