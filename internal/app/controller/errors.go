package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/service"
	apperrors "github.com/kashan16/fatima-botique-ecom-sub001/internal/errors"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/middleware"
)

// serviceError maps a service sentinel to its HTTP shape. A non-empty field
// turns the response into a validation error with a single errors[] entry.
type serviceError struct {
	target  error
	status  int
	code    string
	field   string
	message string
}

var serviceErrors = []serviceError{
	// validation
	{service.ErrInvalidPaymentMethod, http.StatusBadRequest, apperrors.ValidationInvalidInput, "payment_method", "must be one of [razorpay cod]"},
	{service.ErrNotesTooLong, http.StatusBadRequest, apperrors.ValidationInvalidInput, "notes", "must be at most 500 characters"},
	{service.ErrEmptyCart, http.StatusBadRequest, apperrors.CartEmpty, "cart", "must contain at least one item"},
	{service.ErrCartItemUnavailable, http.StatusBadRequest, apperrors.VariantNotFound, "cart", "contains an item that is no longer available"},
	{service.ErrInvalidQuantity, http.StatusBadRequest, apperrors.ValidationInvalidInput, "quantity", "must be at least 1"},
	{service.ErrInvalidItemType, http.StatusBadRequest, apperrors.ValidationInvalidInput, "item_type", "must be one of [cart save_for_later]"},
	{service.ErrInvalidAddressType, http.StatusBadRequest, apperrors.ValidationInvalidInput, "address_type", "must be one of [shipping billing both]"},
	{service.ErrInvalidSort, http.StatusBadRequest, apperrors.ValidationInvalidInput, "sort", "must be one of [newest price_asc price_desc name]"},
	{service.ErrInvalidPriceRange, http.StatusBadRequest, apperrors.ValidationInvalidInput, "min_price", "must not exceed max_price"},
	{service.ErrInvalidImageURL, http.StatusBadRequest, apperrors.ValidationInvalidInput, "url", "is required"},
	{service.ErrVariantRequired, http.StatusBadRequest, apperrors.ValidationRequired, "variant_id", "is required"},
	{service.ErrVariantMismatch, http.StatusBadRequest, apperrors.ValidationInvalidInput, "variant_id", "does not belong to the product"},

	// business rules
	{service.ErrInsufficientStock, http.StatusBadRequest, apperrors.InsufficientStock, "", "Not enough stock for the requested quantity"},
	{service.ErrInvalidPaymentSignature, http.StatusBadRequest, apperrors.PaymentSignatureBad, "", "Payment signature verification failed"},
	{service.ErrPaymentMethodMismatch, http.StatusBadRequest, apperrors.PaymentMethodMismatch, "", "Order uses a different payment method"},
	{service.ErrOrderNotPayable, http.StatusBadRequest, apperrors.OrderNotPayable, "", "Order can no longer be paid"},

	// not found
	{service.ErrAddressNotFound, http.StatusNotFound, apperrors.AddressNotFound, "", "Address not found"},
	{service.ErrOrderNotFound, http.StatusNotFound, apperrors.OrderNotFound, "", "Order not found"},
	{service.ErrProductNotFound, http.StatusNotFound, apperrors.ProductNotFound, "", "Product not found"},
	{service.ErrCategoryNotFound, http.StatusNotFound, apperrors.CategoryNotFound, "", "Category not found"},
	{service.ErrVariantNotFound, http.StatusNotFound, apperrors.VariantNotFound, "", "Product variant not found"},
	{service.ErrCartItemNotFound, http.StatusNotFound, apperrors.CartItemNotFound, "", "Cart item not found"},
	{service.ErrWishlistItemNotFound, http.StatusNotFound, apperrors.WishlistItemNotFound, "", "Wishlist item not found"},
	{service.ErrGuestCartNotFound, http.StatusNotFound, apperrors.GuestCartInvalid, "", "Guest cart not found or expired"},
	{service.ErrPaymentAttemptNotFound, http.StatusNotFound, apperrors.PaymentAttemptNotFound, "", "Payment attempt not found"},
	{service.ErrProfileNotFound, http.StatusNotFound, apperrors.ProfileNotFound, "", "Profile not found"},

	// conflicts
	{service.ErrCheckoutInProgress, http.StatusConflict, apperrors.CheckoutInProgress, "", "Another checkout is already in progress"},
	{service.ErrOrderVersionConflict, http.StatusConflict, apperrors.OrderVersionConflict, "", "Order was modified concurrently, please retry"},
	{service.ErrOrderAlreadyPaid, http.StatusConflict, apperrors.PaymentAlreadyComplete, "", "Order is already paid"},
	{service.ErrOrderNotCancellable, http.StatusConflict, apperrors.OrderNotCancellable, "", "Order can no longer be cancelled"},

	// dependencies
	{service.ErrPaymentGateway, http.StatusInternalServerError, apperrors.PaymentGatewayError, "", "Payment gateway is unavailable"},
	{service.ErrGuestCartUnavailable, http.StatusInternalServerError, apperrors.InternalExternalAPI, "", "Guest carts are temporarily unavailable"},
}

// respondWithServiceError writes the mapped response for err, falling back to
// a generic 500 that never leaks store details.
func respondWithServiceError(c *gin.Context, err error, operation string) {
	log := middleware.GetLoggerFromContext(c)

	for _, se := range serviceErrors {
		if !errors.Is(err, se.target) {
			continue
		}
		if se.status >= http.StatusInternalServerError {
			log.Error("Request failed on a dependency", err, map[string]interface{}{
				"operation": operation,
			})
		} else {
			log.Warn("Request rejected", map[string]interface{}{
				"operation": operation,
				"reason":    err.Error(),
			})
		}
		if se.field != "" {
			c.JSON(se.status, apperrors.ErrorResponse{
				Error:   se.code,
				Message: "Request validation failed",
				Errors:  []apperrors.FieldError{{Field: se.field, Message: se.message}},
			})
			return
		}
		apperrors.RespondWithError(c, se.status, se.code, se.message)
		return
	}

	log.Error("Request failed", err, map[string]interface{}{
		"operation": operation,
	})
	info := apperrors.ParseError(err, operation)
	if info.Code == apperrors.ResourceNotFound {
		apperrors.NotFound(c, info.Code, info.Message)
		return
	}
	apperrors.InternalError(c, "")
}

// requireUser reads the authenticated subject, writing a 401 when absent.
func requireUser(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		middleware.GetLoggerFromContext(c).Warn("Unauthenticated request reached a protected handler", map[string]interface{}{
			"path": c.Request.URL.Path,
		})
		apperrors.Unauthorized(c, "")
		return "", false
	}
	return userID, true
}

// idParam parses a positive numeric path parameter, writing a 400 on failure.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		apperrors.RespondWithValidationError(c, []apperrors.FieldError{{Field: name, Message: "must be a positive integer"}})
		return 0, false
	}
	return uint(id), true
}
