package repository

import (
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/model"
	"github.com/kashan16/fatima-botique-ecom-sub001/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileRepository interface {
	FindByUserID(userID string) (*model.UserProfile, error)
	CreateIfAbsent(profile *model.UserProfile) (created bool, err error)
	Update(profile *model.UserProfile) error
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) FindByUserID(userID string) (*model.UserProfile, error) {
	var profile model.UserProfile
	if err := r.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// CreateIfAbsent inserts with ON CONFLICT (user_id) DO NOTHING and reports whether a row was written.
func (r *profileRepository) CreateIfAbsent(profile *model.UserProfile) (bool, error) {
	logger.Debug("Initializing user profile", map[string]interface{}{
		"user_id": profile.UserID,
	})

	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(profile)
	if result.Error != nil {
		logger.Error("Failed to initialize user profile", result.Error, map[string]interface{}{
			"user_id": profile.UserID,
		})
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *profileRepository) Update(profile *model.UserProfile) error {
	err := r.db.Model(&model.UserProfile{}).
		Where("user_id = ?", profile.UserID).
		Updates(map[string]interface{}{
			"full_name":  profile.FullName,
			"email":      profile.Email,
			"phone":      profile.Phone,
			"avatar_url": profile.AvatarURL,
		}).Error
	if err != nil {
		logger.Error("Failed to update user profile", err, map[string]interface{}{
			"user_id": profile.UserID,
		})
		return err
	}
	return nil
}
