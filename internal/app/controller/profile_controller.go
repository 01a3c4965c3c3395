package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/service"
	apperrors "github.com/kashan16/fatima-botique-ecom-sub001/internal/errors"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/middleware"
)

type ProfileController struct {
	profileService service.ProfileService
	assetService   service.UserAssetService
}

func NewProfileController(profileService service.ProfileService, assetService service.UserAssetService) *ProfileController {
	return &ProfileController{
		profileService: profileService,
		assetService:   assetService,
	}
}

type InitializeProfileRequest struct {
	FullName  string `json:"full_name" binding:"max=100"`
	Email     string `json:"email" binding:"omitempty,email"`
	Phone     string `json:"phone" binding:"max=30"`
	AvatarURL string `json:"avatar_url" binding:"omitempty,url"`
}

type UpdateProfileRequest struct {
	FullName  *string `json:"full_name" binding:"omitempty,max=100"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Phone     *string `json:"phone" binding:"omitempty,max=30"`
	AvatarURL *string `json:"avatar_url" binding:"omitempty,url"`
}

// GetProfile returns the caller's profile
// GET /api/v1/profile
func (ctrl *ProfileController) GetProfile(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	profile, err := ctrl.profileService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondWithServiceError(c, err, "get profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// UpdateProfile applies a partial update
// PATCH /api/v1/profile
func (ctrl *ProfileController) UpdateProfile(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.RespondWithBindingError(c, err)
		return
	}

	profile, err := ctrl.profileService.UpdateProfile(c.Request.Context(), userID, service.ProfilePatch{
		FullName:  req.FullName,
		Email:     req.Email,
		Phone:     req.Phone,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		respondWithServiceError(c, err, "update profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated",
		"profile": profile,
	})
}

// InitializeProfile creates the profile if absent. The token email is used
// when the body carries none.
// POST /api/v1/profile/initialize
func (ctrl *ProfileController) InitializeProfile(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req InitializeProfileRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apperrors.RespondWithBindingError(c, err)
			return
		}
	}
	if req.Email == "" {
		req.Email, _ = middleware.GetUserEmail(c)
	}

	profile, created, err := ctrl.profileService.InitializeProfile(c.Request.Context(), userID, service.ProfileInput{
		FullName:  req.FullName,
		Email:     req.Email,
		Phone:     req.Phone,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		respondWithServiceError(c, err, "create profile")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		log.Info("Profile created on first login", map[string]interface{}{
			"user_id": userID,
		})
	}
	c.JSON(status, gin.H{
		"profile": profile,
		"created": created,
	})
}

// InitializeAssets ensures the caller's cart and wishlist exist
// POST /api/v1/user/initialize-assets
func (ctrl *ProfileController) InitializeAssets(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	assets, err := ctrl.assetService.InitializeAssets(c.Request.Context(), userID)
	if err != nil {
		respondWithServiceError(c, err, "initialize assets")
		return
	}
	c.JSON(http.StatusOK, assets)
}
