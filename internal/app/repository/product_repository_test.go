package repository

import (
	"testing"

	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/model"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupProductTest(t *testing.T) (*gorm.DB, ProductRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	require.NoError(t, db.SeedCatalogForTest(testDB))

	repo := NewProductRepository(testDB)
	return testDB, repo
}

func TestProductRepository_Create(t *testing.T) {
	testDB, repo := setupProductTest(t)
	defer db.CleanupTestDB(testDB)

	product := &model.Product{
		Name:      "Mulmul Saree",
		Slug:      "mulmul-saree",
		SKU:       "SAR-MUL-001",
		BasePrice: decimal.NewFromInt(2499),
		IsActive:  true,
		Variants: []model.ProductVariant{
			{SKU: "SAR-MUL-001-FS-BLU", Size: "Free", Color: "Blue", StockQuantity: 3, IsActive: true},
		},
	}

	err := repo.Create(product)
	assert.NoError(t, err)
	assert.NotZero(t, product.ID)
	assert.NotZero(t, product.Variants[0].ID)

	duplicate := &model.Product{Name: "Copy", Slug: "mulmul-saree", SKU: "SAR-MUL-002", IsActive: true}
	assert.Error(t, repo.Create(duplicate))
}

func TestProductRepository_FindWithFilter(t *testing.T) {
	testDB, repo := setupProductTest(t)
	defer db.CleanupTestDB(testDB)

	price := func(v int64) *decimal.Decimal {
		d := decimal.NewFromInt(v)
		return &d
	}

	tests := []struct {
		name      string
		filter    ProductFilter
		wantSlugs []string
	}{
		{"all active", ProductFilter{SortBy: ProductSortName, SortAscending: true}, []string{"banarasi-silk-dupatta", "chikankari-cotton-kurta"}},
		{"category", ProductFilter{CategorySlug: "dupattas"}, []string{"banarasi-silk-dupatta"}},
		{"search is case insensitive", ProductFilter{Search: "chikankari"}, []string{"chikankari-cotton-kurta"}},
		{"price range", ProductFilter{MinPrice: price(400), MaxPrice: price(500)}, []string{"banarasi-silk-dupatta"}},
		{"size", ProductFilter{Size: "XL"}, []string{"chikankari-cotton-kurta"}},
		{"color ignores case", ProductFilter{Color: "green"}, []string{"banarasi-silk-dupatta"}},
		{"featured", ProductFilter{FeaturedOnly: true}, []string{"chikankari-cotton-kurta"}},
		{"price descending", ProductFilter{SortBy: ProductSortPrice}, []string{"chikankari-cotton-kurta", "banarasi-silk-dupatta"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products, total, err := repo.FindWithFilter(tt.filter)
			require.NoError(t, err)
			assert.Equal(t, int64(len(tt.wantSlugs)), total)

			slugs := make([]string, 0, len(products))
			for _, p := range products {
				slugs = append(slugs, p.Slug)
			}
			assert.Equal(t, tt.wantSlugs, slugs)
		})
	}
}

func TestProductRepository_FindWithFilter_Pagination(t *testing.T) {
	testDB, repo := setupProductTest(t)
	defer db.CleanupTestDB(testDB)

	products, total, err := repo.FindWithFilter(ProductFilter{Limit: 1, Offset: 1, SortBy: ProductSortName, SortAscending: true})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, products, 1)
	assert.Equal(t, "chikankari-cotton-kurta", products[0].Slug)
}

func TestProductRepository_InStockAndInactive(t *testing.T) {
	testDB, repo := setupProductTest(t)
	defer db.CleanupTestDB(testDB)

	require.NoError(t, testDB.Model(&model.ProductVariant{}).
		Where("sku LIKE ?", "DUP-BAN-001-%").
		Update("stock_quantity", 0).Error)

	products, _, err := repo.FindWithFilter(ProductFilter{InStock: true})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "chikankari-cotton-kurta", products[0].Slug)

	require.NoError(t, testDB.Model(&model.Product{}).
		Where("slug = ?", "chikankari-cotton-kurta").
		Update("is_active", false).Error)

	_, err = repo.FindBySlug("chikankari-cotton-kurta")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var variant model.ProductVariant
	require.NoError(t, testDB.Where("sku = ?", "KUR-CHK-001-S-WHT").First(&variant).Error)
	_, err = repo.FindVariantByID(variant.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound, "variants of inactive products are not sellable")
}

func TestProductRepository_FindBySlug(t *testing.T) {
	testDB, repo := setupProductTest(t)
	defer db.CleanupTestDB(testDB)

	product, err := repo.FindBySlug("chikankari-cotton-kurta")
	require.NoError(t, err)
	require.NotNil(t, product.Category)
	assert.Equal(t, "kurtas", product.Category.Slug)
	assert.Len(t, product.Variants, 3)
	assert.Len(t, product.Images, 1)
}

func TestProductRepository_FindVariantByID(t *testing.T) {
	testDB, repo := setupProductTest(t)
	defer db.CleanupTestDB(testDB)

	var xl model.ProductVariant
	require.NoError(t, testDB.Where("sku = ?", "KUR-CHK-001-XL-WHT").First(&xl).Error)

	variant, err := repo.FindVariantByID(xl.ID)
	require.NoError(t, err)
	require.NotNil(t, variant.Product)
	assert.True(t, decimal.NewFromInt(1399).Equal(variant.UnitPrice()))

	_, err = repo.FindVariantByID(99999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestProductRepository_AddImage(t *testing.T) {
	testDB, repo := setupProductTest(t)
	defer db.CleanupTestDB(testDB)

	product, err := repo.FindBySlug("banarasi-silk-dupatta")
	require.NoError(t, err)

	image := &model.ProductImage{ProductID: product.ID, URL: "https://cdn.example.com/d-2.jpg", IsPrimary: true}
	require.NoError(t, repo.AddImage(image))
	assert.Equal(t, 1, image.SortOrder)

	reloaded, err := repo.FindBySlug("banarasi-silk-dupatta")
	require.NoError(t, err)
	require.Len(t, reloaded.Images, 2)
	assert.Equal(t, "https://cdn.example.com/d-2.jpg", reloaded.PrimaryImageURL())

	primaries := 0
	for _, img := range reloaded.Images {
		if img.IsPrimary {
			primaries++
		}
	}
	assert.Equal(t, 1, primaries)
}
