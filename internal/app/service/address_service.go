package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/model"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/repository"
	"github.com/kashan16/fatima-botique-ecom-sub001/pkg/logger"
	"gorm.io/gorm"
)

var ErrInvalidAddressType = errors.New("invalid address type")

type AddressInput struct {
	AddressType  model.AddressType
	FullName     string
	Phone        string
	AddressLine1 string
	AddressLine2 string
	Landmark     string
	City         string
	State        string
	PostalCode   string
	Country      string
	IsDefault    bool
}

// AddressPatch carries only the fields a PATCH request set.
type AddressPatch struct {
	AddressType  *model.AddressType
	FullName     *string
	Phone        *string
	AddressLine1 *string
	AddressLine2 *string
	Landmark     *string
	City         *string
	State        *string
	PostalCode   *string
	Country      *string
	IsDefault    *bool
}

type AddressService interface {
	ListAddresses(ctx context.Context, userID string, addressType model.AddressType) ([]model.Address, error)
	GetAddress(ctx context.Context, userID string, addressID uint) (*model.Address, error)
	CreateAddress(ctx context.Context, userID string, input AddressInput) (*model.Address, error)
	UpdateAddress(ctx context.Context, userID string, addressID uint, patch AddressPatch) (*model.Address, error)
	DeleteAddress(ctx context.Context, userID string, addressID uint) error
	SetDefaultAddress(ctx context.Context, userID string, addressID uint) (*model.Address, error)
}

type addressService struct {
	addressRepo repository.AddressRepository
}

func NewAddressService(addressRepo repository.AddressRepository) AddressService {
	return &addressService{
		addressRepo: addressRepo,
	}
}

func (s *addressService) ListAddresses(ctx context.Context, userID string, addressType model.AddressType) ([]model.Address, error) {
	if addressType != "" && !addressType.Valid() {
		return nil, ErrInvalidAddressType
	}

	addresses, err := s.addressRepo.FindByUserID(userID, addressType)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	if addresses == nil {
		addresses = []model.Address{}
	}
	return addresses, nil
}

func (s *addressService) GetAddress(ctx context.Context, userID string, addressID uint) (*model.Address, error) {
	address, err := s.addressRepo.FindOwned(userID, addressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, fmt.Errorf("get address: %w", err)
	}
	return address, nil
}

// CreateAddress stores a new address. The first address filling a slot
// becomes its default even when not requested.
func (s *addressService) CreateAddress(ctx context.Context, userID string, input AddressInput) (*model.Address, error) {
	if input.AddressType == "" {
		input.AddressType = model.AddressTypeShipping
	}
	if !input.AddressType.Valid() {
		return nil, ErrInvalidAddressType
	}

	logger.Info("Creating address", map[string]interface{}{
		"user_id":      userID,
		"address_type": input.AddressType,
		"is_default":   input.IsDefault,
	})

	address := &model.Address{
		UserID:       userID,
		AddressType:  input.AddressType,
		FullName:     strings.TrimSpace(input.FullName),
		Phone:        strings.TrimSpace(input.Phone),
		AddressLine1: strings.TrimSpace(input.AddressLine1),
		AddressLine2: strings.TrimSpace(input.AddressLine2),
		Landmark:     strings.TrimSpace(input.Landmark),
		City:         strings.TrimSpace(input.City),
		State:        strings.TrimSpace(input.State),
		PostalCode:   strings.TrimSpace(input.PostalCode),
		Country:      strings.TrimSpace(input.Country),
		IsDefault:    input.IsDefault,
	}
	if address.Country == "" {
		address.Country = "India"
	}

	if !address.IsDefault {
		defaults, err := s.addressRepo.CountDefaults(userID, address.AddressType.ConflictingTypes())
		if err != nil {
			return nil, fmt.Errorf("count default addresses: %w", err)
		}
		if defaults == 0 {
			logger.Debug("Setting first address of slot as default", map[string]interface{}{
				"user_id":      userID,
				"address_type": address.AddressType,
			})
			address.IsDefault = true
		}
	}

	if err := s.addressRepo.Create(address); err != nil {
		return nil, fmt.Errorf("create address: %w", err)
	}

	logger.Info("Address created successfully", map[string]interface{}{
		"user_id":    userID,
		"address_id": address.ID,
		"is_default": address.IsDefault,
	})
	return address, nil
}

func (s *addressService) UpdateAddress(ctx context.Context, userID string, addressID uint, patch AddressPatch) (*model.Address, error) {
	address, err := s.GetAddress(ctx, userID, addressID)
	if err != nil {
		return nil, err
	}

	if patch.AddressType != nil {
		if !patch.AddressType.Valid() {
			return nil, ErrInvalidAddressType
		}
		address.AddressType = *patch.AddressType
	}
	setTrimmed(&address.FullName, patch.FullName)
	setTrimmed(&address.Phone, patch.Phone)
	setTrimmed(&address.AddressLine1, patch.AddressLine1)
	setTrimmed(&address.AddressLine2, patch.AddressLine2)
	setTrimmed(&address.Landmark, patch.Landmark)
	setTrimmed(&address.City, patch.City)
	setTrimmed(&address.State, patch.State)
	setTrimmed(&address.PostalCode, patch.PostalCode)
	setTrimmed(&address.Country, patch.Country)
	if patch.IsDefault != nil {
		address.IsDefault = *patch.IsDefault
	}

	if err := s.addressRepo.Update(address); err != nil {
		return nil, fmt.Errorf("update address: %w", err)
	}

	logger.Info("Address updated successfully", map[string]interface{}{
		"user_id":    userID,
		"address_id": address.ID,
	})
	return address, nil
}

func setTrimmed(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

func (s *addressService) DeleteAddress(ctx context.Context, userID string, addressID uint) error {
	if err := s.addressRepo.Delete(userID, addressID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAddressNotFound
		}
		return fmt.Errorf("delete address: %w", err)
	}

	logger.Info("Address deleted successfully", map[string]interface{}{
		"user_id":    userID,
		"address_id": addressID,
	})
	return nil
}

func (s *addressService) SetDefaultAddress(ctx context.Context, userID string, addressID uint) (*model.Address, error) {
	address, err := s.addressRepo.SetDefault(userID, addressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, fmt.Errorf("set default address: %w", err)
	}

	logger.Info("Default address set successfully", map[string]interface{}{
		"user_id":      userID,
		"address_id":   address.ID,
		"address_type": address.AddressType,
	})
	return address, nil
}
