package catalogimport

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Sheet names expected in the workbook.
const (
	SheetCategories = "categories"
	SheetProducts   = "products"
	SheetVariants   = "variants"
	SheetImages     = "images"
)

type CategoryRow struct {
	Slug        string
	Name        string
	Description string
	ParentSlug  string
	SortOrder   int
	IsActive    bool
}

type ProductRow struct {
	Slug         string
	SKU          string
	Name         string
	CategorySlug string
	Description  string
	BasePrice    decimal.Decimal
	Tags         []string
	IsActive     bool
	IsFeatured   bool
}

type VariantRow struct {
	SKU             string
	ProductSlug     string
	Size            string
	Color           string
	StockQuantity   int
	PriceAdjustment decimal.Decimal
	IsActive        bool
}

type ImageRow struct {
	ProductSlug string
	URL         string
	AltText     string
	SortOrder   int
	IsPrimary   bool
}

// Catalog is the parsed content of a workbook.
type Catalog struct {
	Categories []CategoryRow
	Products   []ProductRow
	Variants   []VariantRow
	Images     []ImageRow
}

// RowError points at the offending cell row (1-based, header is row 1).
type RowError struct {
	Sheet  string
	Row    int
	Column string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s row %d column %q: %v", e.Sheet, e.Row, e.Column, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// sheetRow reads cells by header name so column order does not matter.
type sheetRow struct {
	sheet  string
	index  int
	header map[string]int
	cells  []string
}

func (r sheetRow) str(column string) string {
	i, ok := r.header[column]
	if !ok || i >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(r.cells[i])
}

func (r sheetRow) required(column string) (string, error) {
	v := r.str(column)
	if v == "" {
		return "", &RowError{Sheet: r.sheet, Row: r.index, Column: column, Err: fmt.Errorf("value is required")}
	}
	return v, nil
}

func (r sheetRow) integer(column string, fallback int) (int, error) {
	v := r.str(column)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &RowError{Sheet: r.sheet, Row: r.index, Column: column, Err: err}
	}
	return n, nil
}

func (r sheetRow) money(column string) (decimal.Decimal, error) {
	v := r.str(column)
	if v == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, &RowError{Sheet: r.sheet, Row: r.index, Column: column, Err: err}
	}
	return d.Round(2), nil
}

func (r sheetRow) boolean(column string, fallback bool) (bool, error) {
	switch strings.ToLower(r.str(column)) {
	case "":
		return fallback, nil
	case "true", "yes", "y", "1":
		return true, nil
	case "false", "no", "n", "0":
		return false, nil
	default:
		return false, &RowError{Sheet: r.sheet, Row: r.index, Column: column, Err: fmt.Errorf("not a boolean: %q", r.str(column))}
	}
}

func readSheet(f *excelize.File, sheet string) ([]sheetRow, error) {
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		header[strings.ToLower(strings.TrimSpace(name))] = i
	}

	out := make([]sheetRow, 0, len(rows)-1)
	for i, cells := range rows[1:] {
		if isBlank(cells) {
			continue
		}
		out = append(out, sheetRow{sheet: sheet, index: i + 2, header: header, cells: cells})
	}
	return out, nil
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// ReadFile opens and parses a workbook from disk.
func ReadFile(path string) (*Catalog, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses the four catalog sheets. Missing sheets yield no rows.
func Read(f *excelize.File) (*Catalog, error) {
	catalog := &Catalog{}

	rows, err := readSheet(f, SheetCategories)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		var row CategoryRow
		if row.Slug, err = r.required("slug"); err != nil {
			return nil, err
		}
		if row.Name, err = r.required("name"); err != nil {
			return nil, err
		}
		row.Description = r.str("description")
		row.ParentSlug = r.str("parent_slug")
		if row.SortOrder, err = r.integer("sort_order", 0); err != nil {
			return nil, err
		}
		if row.IsActive, err = r.boolean("is_active", true); err != nil {
			return nil, err
		}
		catalog.Categories = append(catalog.Categories, row)
	}

	if rows, err = readSheet(f, SheetProducts); err != nil {
		return nil, err
	}
	for _, r := range rows {
		var row ProductRow
		if row.Slug, err = r.required("slug"); err != nil {
			return nil, err
		}
		if row.SKU, err = r.required("sku"); err != nil {
			return nil, err
		}
		if row.Name, err = r.required("name"); err != nil {
			return nil, err
		}
		row.CategorySlug = r.str("category_slug")
		row.Description = r.str("description")
		if row.BasePrice, err = r.money("base_price"); err != nil {
			return nil, err
		}
		for _, tag := range strings.Split(r.str("tags"), ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				row.Tags = append(row.Tags, tag)
			}
		}
		if row.IsActive, err = r.boolean("is_active", true); err != nil {
			return nil, err
		}
		if row.IsFeatured, err = r.boolean("is_featured", false); err != nil {
			return nil, err
		}
		catalog.Products = append(catalog.Products, row)
	}

	if rows, err = readSheet(f, SheetVariants); err != nil {
		return nil, err
	}
	for _, r := range rows {
		var row VariantRow
		if row.SKU, err = r.required("sku"); err != nil {
			return nil, err
		}
		if row.ProductSlug, err = r.required("product_slug"); err != nil {
			return nil, err
		}
		row.Size = r.str("size")
		row.Color = r.str("color")
		if row.StockQuantity, err = r.integer("stock_quantity", 0); err != nil {
			return nil, err
		}
		if row.PriceAdjustment, err = r.money("price_adjustment"); err != nil {
			return nil, err
		}
		if row.IsActive, err = r.boolean("is_active", true); err != nil {
			return nil, err
		}
		catalog.Variants = append(catalog.Variants, row)
	}

	if rows, err = readSheet(f, SheetImages); err != nil {
		return nil, err
	}
	for _, r := range rows {
		var row ImageRow
		if row.ProductSlug, err = r.required("product_slug"); err != nil {
			return nil, err
		}
		if row.URL, err = r.required("url"); err != nil {
			return nil, err
		}
		row.AltText = r.str("alt_text")
		if row.SortOrder, err = r.integer("sort_order", 0); err != nil {
			return nil, err
		}
		if row.IsPrimary, err = r.boolean("is_primary", false); err != nil {
			return nil, err
		}
		catalog.Images = append(catalog.Images, row)
	}

	return catalog, nil
}
