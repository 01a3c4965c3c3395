package model

import (
	"time"

	"gorm.io/gorm"
)

type AddressType string

const (
	AddressTypeShipping AddressType = "shipping"
	AddressTypeBilling  AddressType = "billing"
	AddressTypeBoth     AddressType = "both"
)

func (t AddressType) Valid() bool {
	switch t {
	case AddressTypeShipping, AddressTypeBilling, AddressTypeBoth:
		return true
	}
	return false
}

// ConflictingTypes lists the address types whose default flag competes with a
// default of type t. A "both" default occupies the shipping and the billing slot.
func (t AddressType) ConflictingTypes() []AddressType {
	switch t {
	case AddressTypeShipping:
		return []AddressType{AddressTypeShipping, AddressTypeBoth}
	case AddressTypeBilling:
		return []AddressType{AddressTypeBilling, AddressTypeBoth}
	default:
		return []AddressType{AddressTypeShipping, AddressTypeBilling, AddressTypeBoth}
	}
}

type Address struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UserID       string         `gorm:"size:64;not null;index" json:"user_id"` // identity provider subject
	AddressType  AddressType    `gorm:"type:varchar(20);not null;default:'shipping';index" json:"address_type"`
	FullName     string         `gorm:"size:100;not null" json:"full_name"`
	Phone        string         `gorm:"size:30;not null" json:"phone"`
	AddressLine1 string         `gorm:"type:text;not null" json:"address_line1"`
	AddressLine2 string         `gorm:"type:text" json:"address_line2"`
	Landmark     string         `gorm:"size:120" json:"landmark"`
	City         string         `gorm:"size:100;not null" json:"city"`
	State        string         `gorm:"size:100;not null" json:"state"`
	PostalCode   string         `gorm:"size:12;not null" json:"postal_code"`
	Country      string         `gorm:"size:60;not null;default:'India'" json:"country"`
	IsDefault    bool           `gorm:"default:false" json:"is_default"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"` // orders keep resolving soft-deleted rows
}

func (Address) TableName() string {
	return "addresses"
}
