package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/model"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/service"
	apperrors "github.com/kashan16/fatima-botique-ecom-sub001/internal/errors"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/middleware"
)

type AddressController struct {
	addressService service.AddressService
}

func NewAddressController(addressService service.AddressService) *AddressController {
	return &AddressController{
		addressService: addressService,
	}
}

type CreateAddressRequest struct {
	AddressType  string `json:"address_type" binding:"required,oneof=shipping billing both"`
	FullName     string `json:"full_name" binding:"required,max=100"`
	Phone        string `json:"phone" binding:"required,max=20"`
	AddressLine1 string `json:"address_line1" binding:"required,max=255"`
	AddressLine2 string `json:"address_line2" binding:"max=255"`
	Landmark     string `json:"landmark" binding:"max=255"`
	City         string `json:"city" binding:"required,max=100"`
	State        string `json:"state" binding:"required,max=100"`
	PostalCode   string `json:"postal_code" binding:"required,max=20"`
	Country      string `json:"country" binding:"max=100"`
	IsDefault    bool   `json:"is_default"`
}

type UpdateAddressRequest struct {
	AddressType  *string `json:"address_type" binding:"omitempty,oneof=shipping billing both"`
	FullName     *string `json:"full_name" binding:"omitempty,min=1,max=100"`
	Phone        *string `json:"phone" binding:"omitempty,min=1,max=20"`
	AddressLine1 *string `json:"address_line1" binding:"omitempty,min=1,max=255"`
	AddressLine2 *string `json:"address_line2" binding:"omitempty,max=255"`
	Landmark     *string `json:"landmark" binding:"omitempty,max=255"`
	City         *string `json:"city" binding:"omitempty,min=1,max=100"`
	State        *string `json:"state" binding:"omitempty,min=1,max=100"`
	PostalCode   *string `json:"postal_code" binding:"omitempty,min=1,max=20"`
	Country      *string `json:"country" binding:"omitempty,max=100"`
	IsDefault    *bool   `json:"is_default"`
}

type SetDefaultAddressRequest struct {
	AddressID uint `json:"address_id" binding:"required"`
}

// ListAddresses returns the caller's address book
// GET /api/v1/addresses
func (ctrl *AddressController) ListAddresses(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	addresses, err := ctrl.addressService.ListAddresses(c.Request.Context(), userID, model.AddressType(c.Query("type")))
	if err != nil {
		respondWithServiceError(c, err, "list addresses")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"addresses": addresses,
		"count":     len(addresses),
	})
}

// GetAddress returns one owned address
// GET /api/v1/addresses/:id
func (ctrl *AddressController) GetAddress(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	addressID, ok := idParam(c, "id")
	if !ok {
		return
	}

	address, err := ctrl.addressService.GetAddress(c.Request.Context(), userID, addressID)
	if err != nil {
		respondWithServiceError(c, err, "get address")
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": address})
}

// CreateAddress adds an address to the book
// POST /api/v1/addresses
func (ctrl *AddressController) CreateAddress(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req CreateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid create address request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		apperrors.RespondWithBindingError(c, err)
		return
	}

	address, err := ctrl.addressService.CreateAddress(c.Request.Context(), userID, service.AddressInput{
		AddressType:  model.AddressType(req.AddressType),
		FullName:     req.FullName,
		Phone:        req.Phone,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		Landmark:     req.Landmark,
		City:         req.City,
		State:        req.State,
		PostalCode:   req.PostalCode,
		Country:      req.Country,
		IsDefault:    req.IsDefault,
	})
	if err != nil {
		respondWithServiceError(c, err, "create address")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Address created",
		"address": address,
	})
}

// UpdateAddress applies a partial update
// PATCH /api/v1/addresses/:id
func (ctrl *AddressController) UpdateAddress(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	addressID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req UpdateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.RespondWithBindingError(c, err)
		return
	}

	patch := service.AddressPatch{
		FullName:     req.FullName,
		Phone:        req.Phone,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		Landmark:     req.Landmark,
		City:         req.City,
		State:        req.State,
		PostalCode:   req.PostalCode,
		Country:      req.Country,
		IsDefault:    req.IsDefault,
	}
	if req.AddressType != nil {
		t := model.AddressType(*req.AddressType)
		patch.AddressType = &t
	}

	address, err := ctrl.addressService.UpdateAddress(c.Request.Context(), userID, addressID, patch)
	if err != nil {
		respondWithServiceError(c, err, "update address")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Address updated",
		"address": address,
	})
}

// DeleteAddress soft-deletes an address
// DELETE /api/v1/addresses/:id
func (ctrl *AddressController) DeleteAddress(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	addressID, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.addressService.DeleteAddress(c.Request.Context(), userID, addressID); err != nil {
		respondWithServiceError(c, err, "delete address")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Address deleted"})
}

// SetDefaultAddress makes an address the default for its slot(s)
// PATCH /api/v1/addresses/default
func (ctrl *AddressController) SetDefaultAddress(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req SetDefaultAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.RespondWithBindingError(c, err)
		return
	}

	address, err := ctrl.addressService.SetDefaultAddress(c.Request.Context(), userID, req.AddressID)
	if err != nil {
		respondWithServiceError(c, err, "update address")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Default address updated",
		"address": address,
	})
}
