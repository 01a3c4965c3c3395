package db

import (
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/model"
	"github.com/kashan16/fatima-botique-ecom-sub001/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Models lists every table owned by the service, in dependency order
func Models() []interface{} {
	return []interface{}{
		&model.UserProfile{},
		&model.Address{},
		&model.Category{},
		&model.Product{},
		&model.ProductVariant{},
		&model.ProductImage{},
		&model.Cart{},
		&model.CartItem{},
		&model.Wishlist{},
		&model.WishlistItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.OrderStatusHistory{},
		&model.OrderPayment{},
	}
}

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// Seed inserts a small demo catalog when the catalog is empty
func Seed() error {
	return seedCatalog(DB)
}

func seedCatalog(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Info("Catalog already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	logger.Info("Seeding demo catalog...")

	return db.Transaction(func(tx *gorm.DB) error {
		kurtas := model.Category{Name: "Kurtas", Slug: "kurtas", IsActive: true, SortOrder: 1}
		dupattas := model.Category{Name: "Dupattas", Slug: "dupattas", IsActive: true, SortOrder: 2}
		if err := tx.Create(&kurtas).Error; err != nil {
			return err
		}
		if err := tx.Create(&dupattas).Error; err != nil {
			return err
		}

		products := []model.Product{
			{
				CategoryID: &kurtas.ID,
				Name:       "Chikankari Cotton Kurta",
				Slug:       "chikankari-cotton-kurta",
				SKU:        "KUR-CHK-001",
				BasePrice:  decimal.NewFromInt(1299),
				Tags:       []string{"cotton", "handwork"},
				IsActive:   true,
				IsFeatured: true,
				Variants: []model.ProductVariant{
					{SKU: "KUR-CHK-001-S-WHT", Size: "S", Color: "White", StockQuantity: 10, IsActive: true},
					{SKU: "KUR-CHK-001-M-WHT", Size: "M", Color: "White", StockQuantity: 8, IsActive: true},
					{SKU: "KUR-CHK-001-XL-WHT", Size: "XL", Color: "White", StockQuantity: 4, PriceAdjustment: decimal.NewFromInt(100), IsActive: true},
				},
				Images: []model.ProductImage{
					{URL: "https://placehold.co/600x800?text=Kurta", AltText: "Chikankari kurta", IsPrimary: true},
				},
			},
			{
				CategoryID: &dupattas.ID,
				Name:       "Banarasi Silk Dupatta",
				Slug:       "banarasi-silk-dupatta",
				SKU:        "DUP-BAN-001",
				BasePrice:  decimal.NewFromInt(450),
				Tags:       []string{"silk"},
				IsActive:   true,
				Variants: []model.ProductVariant{
					{SKU: "DUP-BAN-001-FS-RED", Size: "Free", Color: "Red", StockQuantity: 15, IsActive: true},
					{SKU: "DUP-BAN-001-FS-GRN", Size: "Free", Color: "Green", StockQuantity: 6, IsActive: true},
				},
				Images: []model.ProductImage{
					{URL: "https://placehold.co/600x800?text=Dupatta", AltText: "Banarasi dupatta", IsPrimary: true},
				},
			},
		}
		for i := range products {
			if err := tx.Create(&products[i]).Error; err != nil {
				logger.Error("Failed to create product", err, map[string]interface{}{
					"slug": products[i].Slug,
				})
				return err
			}
		}

		logger.Info("Demo catalog seeded successfully", map[string]interface{}{
			"categories": 2,
			"products":   len(products),
		})
		return nil
	})
}
