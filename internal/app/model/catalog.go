package model

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Slug        string    `gorm:"size:120;not null;uniqueIndex" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	ParentID    *uint     `gorm:"index" json:"parent_id,omitempty"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	SortOrder   int       `gorm:"default:0" json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Category) TableName() string {
	return "categories"
}

type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	CategoryID  *uint           `gorm:"index" json:"category_id,omitempty"`
	Name        string          `gorm:"size:200;not null" json:"name"`
	Slug        string          `gorm:"size:220;not null;uniqueIndex" json:"slug"`
	SKU         string          `gorm:"size:64;not null;uniqueIndex" json:"sku"`
	Description string          `gorm:"type:text" json:"description"`
	BasePrice   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"base_price"`
	Tags        pq.StringArray  `gorm:"type:text[]" json:"tags"`
	IsActive    bool            `gorm:"default:true;index" json:"is_active"`
	IsFeatured  bool            `gorm:"default:false" json:"is_featured"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`

	Category *Category        `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Variants []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"variants,omitempty"`
	Images   []ProductImage   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"images,omitempty"`
}

func (Product) TableName() string {
	return "products"
}

// PrimaryImageURL returns the primary image, falling back to the first by sort order
func (p *Product) PrimaryImageURL() string {
	for _, img := range p.Images {
		if img.IsPrimary {
			return img.URL
		}
	}
	if len(p.Images) > 0 {
		return p.Images[0].URL
	}
	return ""
}

type ProductVariant struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	ProductID       uint            `gorm:"not null;index" json:"product_id"`
	SKU             string          `gorm:"size:64;not null;uniqueIndex" json:"sku"`
	Size            string          `gorm:"size:20;index" json:"size"`
	Color           string          `gorm:"size:40;index" json:"color"`
	StockQuantity   int             `gorm:"not null;default:0" json:"stock_quantity"`
	PriceAdjustment decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"price_adjustment"`
	IsActive        bool            `gorm:"default:true" json:"is_active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (ProductVariant) TableName() string {
	return "product_variants"
}

// UnitPrice is base_price + price_adjustment. Product must be loaded.
func (v *ProductVariant) UnitPrice() decimal.Decimal {
	if v.Product == nil {
		return v.PriceAdjustment
	}
	return v.Product.BasePrice.Add(v.PriceAdjustment)
}

type ProductImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	URL       string    `gorm:"type:text;not null" json:"url"`
	AltText   string    `gorm:"size:200" json:"alt_text"`
	SortOrder int       `gorm:"default:0" json:"sort_order"`
	IsPrimary bool      `gorm:"default:false" json:"is_primary"`
	CreatedAt time.Time `json:"created_at"`
}

func (ProductImage) TableName() string {
	return "product_images"
}
