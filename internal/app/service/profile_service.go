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

var ErrProfileNotFound = errors.New("profile not found")

type ProfileInput struct {
	FullName  string
	Email     string
	Phone     string
	AvatarURL string
}

type ProfilePatch struct {
	FullName  *string
	Email     *string
	Phone     *string
	AvatarURL *string
}

type ProfileService interface {
	GetProfile(ctx context.Context, userID string) (*model.UserProfile, error)
	UpdateProfile(ctx context.Context, userID string, patch ProfilePatch) (*model.UserProfile, error)
	InitializeProfile(ctx context.Context, userID string, input ProfileInput) (*model.UserProfile, bool, error)
}

type profileService struct {
	profileRepo repository.ProfileRepository
}

func NewProfileService(profileRepo repository.ProfileRepository) ProfileService {
	return &profileService{profileRepo: profileRepo}
}

func (s *profileService) GetProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	profile, err := s.profileRepo.FindByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return profile, nil
}

func (s *profileService) UpdateProfile(ctx context.Context, userID string, patch ProfilePatch) (*model.UserProfile, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	setTrimmed(&profile.FullName, patch.FullName)
	setTrimmed(&profile.Email, patch.Email)
	setTrimmed(&profile.Phone, patch.Phone)
	setTrimmed(&profile.AvatarURL, patch.AvatarURL)

	if err := s.profileRepo.Update(profile); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	logger.Info("Profile updated", map[string]interface{}{
		"user_id": userID,
	})
	return s.GetProfile(ctx, userID)
}

// InitializeProfile is create-if-absent. The boolean reports whether a row was written;
// an existing profile is returned untouched.
func (s *profileService) InitializeProfile(ctx context.Context, userID string, input ProfileInput) (*model.UserProfile, bool, error) {
	created, err := s.profileRepo.CreateIfAbsent(&model.UserProfile{
		UserID:    userID,
		FullName:  strings.TrimSpace(input.FullName),
		Email:     strings.TrimSpace(input.Email),
		Phone:     strings.TrimSpace(input.Phone),
		AvatarURL: strings.TrimSpace(input.AvatarURL),
	})
	if err != nil {
		return nil, false, fmt.Errorf("initialize profile: %w", err)
	}

	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, false, err
	}

	if created {
		logger.Info("Profile initialized", map[string]interface{}{
			"user_id": userID,
		})
	}
	return profile, created, nil
}
