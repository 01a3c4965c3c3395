package model

import (
	"time"
)

type CartItemType string

const (
	CartItemTypeCart         CartItemType = "cart"
	CartItemTypeSaveForLater CartItemType = "save_for_later"
)

func (t CartItemType) Valid() bool {
	return t == CartItemTypeCart || t == CartItemTypeSaveForLater
}

// Cart is a per-user singleton, created lazily or by asset bootstrap.
type Cart struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"size:64;not null;uniqueIndex" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
}

func (Cart) TableName() string {
	return "carts"
}

type CartItem struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	CartID    uint         `gorm:"not null;index" json:"cart_id"`
	VariantID uint         `gorm:"not null;index" json:"variant_id"`
	Quantity  int          `gorm:"not null;default:1" json:"quantity"`
	ItemType  CartItemType `gorm:"type:varchar(20);not null;default:'cart'" json:"item_type"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`

	Variant *ProductVariant `gorm:"foreignKey:VariantID" json:"variant,omitempty"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

// GuestCartItem is a line of an anonymous cart kept outside the database.
type GuestCartItem struct {
	VariantID uint      `json:"variant_id"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}
