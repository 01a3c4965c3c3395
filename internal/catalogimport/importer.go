package catalogimport

import (
	"context"
	"errors"
	"fmt"

	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/model"
	"github.com/kashan16/fatima-botique-ecom-sub001/pkg/logger"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrUnknownReference = errors.New("unknown reference")

// Summary counts rows written per sheet.
type Summary struct {
	Categories int
	Products   int
	Variants   int
	Images     int
}

type Importer struct {
	db *gorm.DB
}

func NewImporter(db *gorm.DB) *Importer {
	return &Importer{db: db}
}

// Import upserts categories and products by slug and variants by sku in a
// single transaction. Images are added when their (product, url) pair is new.
// Re-running the same workbook is a no-op apart from updated fields.
func (im *Importer) Import(ctx context.Context, catalog *Catalog) (*Summary, error) {
	summary := &Summary{}
	err := im.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		categoryIDs, err := upsertCategories(tx, catalog.Categories)
		if err != nil {
			return err
		}
		summary.Categories = len(catalog.Categories)

		productIDs, err := upsertProducts(tx, catalog.Products, categoryIDs)
		if err != nil {
			return err
		}
		summary.Products = len(catalog.Products)

		if summary.Variants, err = upsertVariants(tx, catalog.Variants, productIDs); err != nil {
			return err
		}
		if summary.Images, err = addImages(tx, catalog.Images, productIDs); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		logger.Error("Catalog import failed", err)
		return nil, err
	}

	logger.Info("Catalog import completed", map[string]interface{}{
		"categories": summary.Categories,
		"products":   summary.Products,
		"variants":   summary.Variants,
		"images":     summary.Images,
	})
	return summary, nil
}

// idBySlug resolves slugs that are not part of this workbook from the table.
func idBySlug(tx *gorm.DB, table interface{}, cache map[string]uint, slug string) (uint, error) {
	if id, ok := cache[slug]; ok {
		return id, nil
	}
	var id uint
	err := tx.Unscoped().Model(table).Select("id").Where("slug = ?", slug).Scan(&id).Error
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, fmt.Errorf("%w: slug %q", ErrUnknownReference, slug)
	}
	cache[slug] = id
	return id, nil
}

// setFlags writes boolean columns explicitly. Create skips false values on
// columns that carry a database default.
func setFlags(tx *gorm.DB, table interface{}, id uint, flags map[string]interface{}) error {
	return tx.Model(table).Where("id = ?", id).Updates(flags).Error
}

func upsertCategories(tx *gorm.DB, rows []CategoryRow) (map[string]uint, error) {
	ids := make(map[string]uint, len(rows))

	// parents first: rows are written without parent, then linked
	for _, row := range rows {
		category := model.Category{
			Name:        row.Name,
			Slug:        row.Slug,
			Description: row.Description,
			IsActive:    row.IsActive,
			SortOrder:   row.SortOrder,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "description", "is_active", "sort_order", "updated_at"}),
		}).Create(&category).Error
		if err != nil {
			return nil, fmt.Errorf("upsert category %s: %w", row.Slug, err)
		}
		delete(ids, row.Slug)
		id, err := idBySlug(tx, &model.Category{}, ids, row.Slug)
		if err != nil {
			return nil, err
		}
		if err := setFlags(tx, &model.Category{}, id, map[string]interface{}{"is_active": row.IsActive}); err != nil {
			return nil, err
		}
	}

	for _, row := range rows {
		var parentID *uint
		if row.ParentSlug != "" {
			id, err := idBySlug(tx, &model.Category{}, ids, row.ParentSlug)
			if err != nil {
				return nil, fmt.Errorf("category %s parent: %w", row.Slug, err)
			}
			parentID = &id
		}
		if err := tx.Model(&model.Category{}).Where("id = ?", ids[row.Slug]).Update("parent_id", parentID).Error; err != nil {
			return nil, fmt.Errorf("link category %s: %w", row.Slug, err)
		}
	}
	return ids, nil
}

func upsertProducts(tx *gorm.DB, rows []ProductRow, categoryIDs map[string]uint) (map[string]uint, error) {
	ids := make(map[string]uint, len(rows))
	for _, row := range rows {
		product := model.Product{
			Name:        row.Name,
			Slug:        row.Slug,
			SKU:         row.SKU,
			Description: row.Description,
			BasePrice:   row.BasePrice,
			Tags:        pq.StringArray(row.Tags),
			IsActive:    row.IsActive,
			IsFeatured:  row.IsFeatured,
		}
		if row.CategorySlug != "" {
			id, err := idBySlug(tx, &model.Category{}, categoryIDs, row.CategorySlug)
			if err != nil {
				return nil, fmt.Errorf("product %s category: %w", row.Slug, err)
			}
			product.CategoryID = &id
		}

		err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"category_id", "name", "sku", "description", "base_price", "tags", "is_active", "is_featured", "updated_at", "deleted_at",
			}),
		}).Create(&product).Error
		if err != nil {
			return nil, fmt.Errorf("upsert product %s: %w", row.Slug, err)
		}
		id, err := idBySlug(tx, &model.Product{}, ids, row.Slug)
		if err != nil {
			return nil, err
		}
		flags := map[string]interface{}{"is_active": row.IsActive, "is_featured": row.IsFeatured}
		if err := setFlags(tx, &model.Product{}, id, flags); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

func upsertVariants(tx *gorm.DB, rows []VariantRow, productIDs map[string]uint) (int, error) {
	for _, row := range rows {
		productID, err := idBySlug(tx, &model.Product{}, productIDs, row.ProductSlug)
		if err != nil {
			return 0, fmt.Errorf("variant %s product: %w", row.SKU, err)
		}
		variant := model.ProductVariant{
			ProductID:       productID,
			SKU:             row.SKU,
			Size:            row.Size,
			Color:           row.Color,
			StockQuantity:   row.StockQuantity,
			PriceAdjustment: row.PriceAdjustment,
			IsActive:        row.IsActive,
		}
		err = tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "sku"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"product_id", "size", "color", "stock_quantity", "price_adjustment", "is_active", "updated_at",
			}),
		}).Create(&variant).Error
		if err != nil {
			return 0, fmt.Errorf("upsert variant %s: %w", row.SKU, err)
		}
		if err := tx.Model(&model.ProductVariant{}).Where("sku = ?", row.SKU).
			Update("is_active", row.IsActive).Error; err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

func addImages(tx *gorm.DB, rows []ImageRow, productIDs map[string]uint) (int, error) {
	added := 0
	for _, row := range rows {
		productID, err := idBySlug(tx, &model.Product{}, productIDs, row.ProductSlug)
		if err != nil {
			return 0, fmt.Errorf("image %s product: %w", row.URL, err)
		}

		var existing int64
		if err := tx.Model(&model.ProductImage{}).
			Where("product_id = ? AND url = ?", productID, row.URL).
			Count(&existing).Error; err != nil {
			return 0, err
		}
		if existing > 0 {
			continue
		}

		if row.IsPrimary {
			if err := tx.Model(&model.ProductImage{}).
				Where("product_id = ? AND is_primary = ?", productID, true).
				Update("is_primary", false).Error; err != nil {
				return 0, err
			}
		}
		image := model.ProductImage{
			ProductID: productID,
			URL:       row.URL,
			AltText:   row.AltText,
			SortOrder: row.SortOrder,
			IsPrimary: row.IsPrimary,
		}
		if err := tx.Create(&image).Error; err != nil {
			return 0, fmt.Errorf("add image %s: %w", row.URL, err)
		}
		added++
	}
	return added, nil
}
