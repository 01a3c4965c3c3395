package catalogimport

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/model"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

func buildWorkbook(t *testing.T, sheets map[string][][]interface{}) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	t.Cleanup(func() { f.Close() })

	for name, rows := range sheets {
		_, err := f.NewSheet(name)
		require.NoError(t, err)
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}
	return f
}

func sampleSheets() map[string][][]interface{} {
	return map[string][][]interface{}{
		SheetCategories: {
			{"slug", "name", "parent_slug", "sort_order"},
			{"kurtas", "Kurtas", "women", 2},
			{"women", "Women", "", 1},
		},
		SheetProducts: {
			{"name", "slug", "sku", "category_slug", "base_price", "tags", "is_featured"},
			{"Anarkali Kurta", "anarkali-kurta", "AK-001", "kurtas", "1499.50", "cotton, festive", "yes"},
		},
		SheetVariants: {
			{"sku", "product_slug", "size", "color", "stock_quantity", "price_adjustment"},
			{"AK-001-S", "anarkali-kurta", "S", "Red", 5, "0"},
			{"AK-001-M", "anarkali-kurta", "M", "Red", 3, "50"},
		},
		SheetImages: {
			{"product_slug", "url", "alt_text", "is_primary"},
			{"anarkali-kurta", "https://cdn.example.com/ak-1.jpg", "Front", "true"},
		},
	}
}

func setupImportDB(t *testing.T) *gorm.DB {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })
	return testDB
}

func TestRead_ParsesSheetsByHeader(t *testing.T) {
	catalog, err := Read(buildWorkbook(t, sampleSheets()))
	require.NoError(t, err)

	require.Len(t, catalog.Categories, 2)
	assert.Equal(t, "women", catalog.Categories[0].ParentSlug)
	assert.True(t, catalog.Categories[0].IsActive)

	require.Len(t, catalog.Products, 1)
	product := catalog.Products[0]
	assert.Equal(t, "anarkali-kurta", product.Slug)
	assert.Equal(t, "1499.5", product.BasePrice.String())
	assert.Equal(t, []string{"cotton", "festive"}, product.Tags)
	assert.True(t, product.IsFeatured)

	require.Len(t, catalog.Variants, 2)
	assert.Equal(t, 3, catalog.Variants[1].StockQuantity)
	assert.Equal(t, "50", catalog.Variants[1].PriceAdjustment.String())

	require.Len(t, catalog.Images, 1)
	assert.True(t, catalog.Images[0].IsPrimary)
}

func TestRead_MissingSheetsAreEmpty(t *testing.T) {
	catalog, err := Read(buildWorkbook(t, map[string][][]interface{}{
		SheetCategories: {{"slug", "name"}, {"sale", "Sale"}},
	}))
	require.NoError(t, err)
	assert.Len(t, catalog.Categories, 1)
	assert.Empty(t, catalog.Products)
	assert.Empty(t, catalog.Variants)
}

func TestRead_RowErrors(t *testing.T) {
	tests := []struct {
		name   string
		sheets map[string][][]interface{}
		column string
	}{
		{
			name:   "missing required value",
			sheets: map[string][][]interface{}{SheetCategories: {{"slug", "name"}, {"sale", ""}}},
			column: "name",
		},
		{
			name: "bad price",
			sheets: map[string][][]interface{}{SheetProducts: {
				{"slug", "sku", "name", "base_price"},
				{"p", "P-1", "P", "abc"},
			}},
			column: "base_price",
		},
		{
			name: "bad boolean",
			sheets: map[string][][]interface{}{SheetVariants: {
				{"sku", "product_slug", "is_active"},
				{"V-1", "p", "maybe"},
			}},
			column: "is_active",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(buildWorkbook(t, tt.sheets))
			var rowErr *RowError
			require.ErrorAs(t, err, &rowErr)
			assert.Equal(t, 2, rowErr.Row)
			assert.Equal(t, tt.column, rowErr.Column)
		})
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.xlsx")
	require.NoError(t, buildWorkbook(t, sampleSheets()).SaveAs(path))

	catalog, err := ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, catalog.Products, 1)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.Error(t, err)
}

func TestImporter_Import(t *testing.T) {
	testDB := setupImportDB(t)
	catalog, err := Read(buildWorkbook(t, sampleSheets()))
	require.NoError(t, err)

	summary, err := NewImporter(testDB).Import(context.Background(), catalog)
	require.NoError(t, err)
	assert.Equal(t, &Summary{Categories: 2, Products: 1, Variants: 2, Images: 1}, summary)

	var women, kurtas model.Category
	require.NoError(t, testDB.Where("slug = ?", "women").First(&women).Error)
	require.NoError(t, testDB.Where("slug = ?", "kurtas").First(&kurtas).Error)
	require.NotNil(t, kurtas.ParentID)
	assert.Equal(t, women.ID, *kurtas.ParentID)
	assert.Nil(t, women.ParentID)

	var product model.Product
	require.NoError(t, testDB.Preload("Variants").Preload("Images").Where("slug = ?", "anarkali-kurta").First(&product).Error)
	require.NotNil(t, product.CategoryID)
	assert.Equal(t, kurtas.ID, *product.CategoryID)
	assert.True(t, product.IsFeatured)
	assert.Len(t, product.Variants, 2)
	assert.Equal(t, "https://cdn.example.com/ak-1.jpg", product.PrimaryImageURL())
}

func TestImporter_ReimportUpdatesInPlace(t *testing.T) {
	testDB := setupImportDB(t)
	importer := NewImporter(testDB)

	catalog, err := Read(buildWorkbook(t, sampleSheets()))
	require.NoError(t, err)
	_, err = importer.Import(context.Background(), catalog)
	require.NoError(t, err)

	catalog.Products[0].Name = "Anarkali Kurta Set"
	catalog.Products[0].IsActive = false
	catalog.Variants[0].StockQuantity = 12

	summary, err := importer.Import(context.Background(), catalog)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Images, "existing images are not duplicated")

	var products []model.Product
	require.NoError(t, testDB.Find(&products).Error)
	require.Len(t, products, 1)
	assert.Equal(t, "Anarkali Kurta Set", products[0].Name)
	assert.False(t, products[0].IsActive)

	var variant model.ProductVariant
	require.NoError(t, testDB.Where("sku = ?", "AK-001-S").First(&variant).Error)
	assert.Equal(t, 12, variant.StockQuantity)

	var images int64
	require.NoError(t, testDB.Model(&model.ProductImage{}).Count(&images).Error)
	assert.Equal(t, int64(1), images)
}

func TestImporter_UnknownReferenceRollsBack(t *testing.T) {
	testDB := setupImportDB(t)

	catalog := &Catalog{
		Categories: []CategoryRow{{Slug: "women", Name: "Women", IsActive: true}},
		Variants:   []VariantRow{{SKU: "X-1", ProductSlug: "ghost", IsActive: true}},
	}
	_, err := NewImporter(testDB).Import(context.Background(), catalog)
	assert.ErrorIs(t, err, ErrUnknownReference)

	var count int64
	require.NoError(t, testDB.Model(&model.Category{}).Count(&count).Error)
	assert.Zero(t, count)
}
