package repository

import (
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/model"
	"github.com/kashan16/fatima-botique-ecom-sub001/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AddressRepository interface {
	Create(address *model.Address) error
	FindByUserID(userID string, addressType model.AddressType) ([]model.Address, error)
	FindOwned(userID string, id uint) (*model.Address, error)
	CountDefaults(userID string, types []model.AddressType) (int64, error)
	Update(address *model.Address) error
	Delete(userID string, id uint) error
	SetDefault(userID string, addressID uint) (*model.Address, error)
}

type addressRepository struct {
	db *gorm.DB
}

func NewAddressRepository(db *gorm.DB) AddressRepository {
	return &addressRepository{db: db}
}

// clearConflictingDefaults unsets every default that competes with a default of addressType.
func clearConflictingDefaults(tx *gorm.DB, userID string, addressType model.AddressType, exceptID uint) error {
	q := tx.Model(&model.Address{}).
		Where("user_id = ? AND is_default = ? AND address_type IN ?", userID, true, addressType.ConflictingTypes())
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	return q.Update("is_default", false).Error
}

// Create inserts the address. A default address clears competing defaults in the same transaction.
func (r *addressRepository) Create(address *model.Address) error {
	logger.Debug("Creating address in database", map[string]interface{}{
		"user_id":      address.UserID,
		"address_type": address.AddressType,
		"is_default":   address.IsDefault,
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if address.IsDefault {
			if err := clearConflictingDefaults(tx, address.UserID, address.AddressType, 0); err != nil {
				return err
			}
		}
		return tx.Create(address).Error
	})
	if err != nil {
		logger.Error("Failed to create address in database", err, map[string]interface{}{
			"user_id":      address.UserID,
			"address_type": address.AddressType,
		})
		return err
	}

	logger.Debug("Address created in database", map[string]interface{}{
		"address_id": address.ID,
		"user_id":    address.UserID,
	})
	return nil
}

// FindByUserID lists the user's addresses. A non-empty addressType also matches "both" rows.
func (r *addressRepository) FindByUserID(userID string, addressType model.AddressType) ([]model.Address, error) {
	logger.Debug("Finding addresses by user ID in database", map[string]interface{}{
		"user_id":      userID,
		"address_type": addressType,
	})

	query := r.db.Where("user_id = ?", userID)
	if addressType != "" {
		query = query.Where("address_type IN ?", []model.AddressType{addressType, model.AddressTypeBoth})
	}

	var addresses []model.Address
	if err := query.Order("is_default DESC, created_at DESC").Find(&addresses).Error; err != nil {
		logger.Error("Failed to find addresses by user ID in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Debug("Addresses found by user ID in database", map[string]interface{}{
		"user_id": userID,
		"count":   len(addresses),
	})
	return addresses, nil
}

// FindOwned resolves an address only if it belongs to userID, in a single query.
func (r *addressRepository) FindOwned(userID string, id uint) (*model.Address, error) {
	logger.Debug("Finding owned address in database", map[string]interface{}{
		"user_id":    userID,
		"address_id": id,
	})

	var address model.Address
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&address).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find owned address in database", err, map[string]interface{}{
				"user_id":    userID,
				"address_id": id,
			})
		}
		return nil, err
	}
	return &address, nil
}

func (r *addressRepository) CountDefaults(userID string, types []model.AddressType) (int64, error) {
	var count int64
	err := r.db.Model(&model.Address{}).
		Where("user_id = ? AND is_default = ? AND address_type IN ?", userID, true, types).
		Count(&count).Error
	if err != nil {
		logger.Error("Failed to count default addresses", err, map[string]interface{}{
			"user_id": userID,
		})
		return 0, err
	}
	return count, nil
}

func (r *addressRepository) Update(address *model.Address) error {
	logger.Debug("Updating address in database", map[string]interface{}{
		"address_id": address.ID,
		"user_id":    address.UserID,
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if address.IsDefault {
			if err := clearConflictingDefaults(tx, address.UserID, address.AddressType, address.ID); err != nil {
				return err
			}
		}
		return tx.Save(address).Error
	})
	if err != nil {
		logger.Error("Failed to update address in database", err, map[string]interface{}{
			"address_id": address.ID,
			"user_id":    address.UserID,
		})
		return err
	}

	logger.Debug("Address updated in database", map[string]interface{}{
		"address_id": address.ID,
		"user_id":    address.UserID,
	})
	return nil
}

func (r *addressRepository) Delete(userID string, id uint) error {
	logger.Debug("Deleting address from database", map[string]interface{}{
		"address_id": id,
		"user_id":    userID,
	})

	result := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&model.Address{})
	if result.Error != nil {
		logger.Error("Failed to delete address from database", result.Error, map[string]interface{}{
			"address_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.Debug("Address deleted from database", map[string]interface{}{
		"address_id": id,
	})
	return nil
}

// SetDefault locks the target row, clears competing defaults and sets the new one atomically.
func (r *addressRepository) SetDefault(userID string, addressID uint) (*model.Address, error) {
	logger.Debug("Setting default address", map[string]interface{}{
		"user_id":    userID,
		"address_id": addressID,
	})

	var address model.Address
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ?", addressID, userID).
			First(&address).Error; err != nil {
			return err
		}

		if err := clearConflictingDefaults(tx, userID, address.AddressType, address.ID); err != nil {
			return err
		}

		if err := tx.Model(&address).Update("is_default", true).Error; err != nil {
			return err
		}
		address.IsDefault = true
		return nil
	})
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to set default address", err, map[string]interface{}{
				"user_id":    userID,
				"address_id": addressID,
			})
		}
		return nil, err
	}

	logger.Debug("Default address set successfully", map[string]interface{}{
		"user_id":      userID,
		"address_id":   addressID,
		"address_type": address.AddressType,
	})
	return &address, nil
}
