package model

import (
	"time"
)

// Wishlist is a per-user singleton like Cart.
type Wishlist struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"size:64;not null;uniqueIndex" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items []WishlistItem `gorm:"foreignKey:WishlistID;constraint:OnDelete:CASCADE" json:"items"`
}

func (Wishlist) TableName() string {
	return "wishlists"
}

type WishlistItem struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	WishlistID uint      `gorm:"not null;index" json:"wishlist_id"`
	ProductID  uint      `gorm:"not null;index" json:"product_id"`
	VariantID  *uint     `gorm:"index" json:"variant_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`

	Product *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Variant *ProductVariant `gorm:"foreignKey:VariantID" json:"variant,omitempty"`
}

func (WishlistItem) TableName() string {
	return "wishlist_items"
}
