package errors

// Error codes returned in the "error" field of every error body.
// Format: CATEGORY_SPECIFIC_DETAIL. Clients map these to display copy.

const (
	// Authentication
	AuthUnauthorized = "AUTH_UNAUTHORIZED"
	AuthTokenExpired = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid = "AUTH_TOKEN_INVALID"

	// Authorization
	AuthzForbidden    = "AUTHZ_FORBIDDEN"
	AuthzRoleNotFound = "AUTHZ_ROLE_NOT_FOUND"

	// Validation
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID    = "VALIDATION_INVALID_ID"
	ValidationRequired     = "VALIDATION_REQUIRED"

	// Resources
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// Catalog
	ProductNotFound   = "PRODUCT_NOT_FOUND"
	VariantNotFound   = "VARIANT_NOT_FOUND"
	CategoryNotFound  = "CATEGORY_NOT_FOUND"
	InsufficientStock = "CART_INSUFFICIENT_STOCK"

	// Cart / wishlist
	CartItemNotFound     = "CART_ITEM_NOT_FOUND"
	CartEmpty            = "CART_EMPTY"
	GuestCartInvalid     = "GUEST_CART_INVALID"
	WishlistItemNotFound = "WISHLIST_ITEM_NOT_FOUND"

	// Address
	AddressNotFound = "ADDRESS_NOT_FOUND"

	// Orders / checkout
	OrderNotFound          = "ORDER_NOT_FOUND"
	OrderVersionConflict   = "ORDER_VERSION_CONFLICT"
	OrderNotCancellable    = "ORDER_NOT_CANCELLABLE"
	OrderNotPayable        = "ORDER_NOT_PAYABLE"
	CheckoutInProgress     = "CHECKOUT_IN_PROGRESS"
	PaymentMethodMismatch  = "PAYMENT_METHOD_MISMATCH"
	PaymentAlreadyComplete = "PAYMENT_ALREADY_COMPLETED"
	PaymentSignatureBad    = "PAYMENT_SIGNATURE_INVALID"
	PaymentAttemptNotFound = "PAYMENT_ATTEMPT_NOT_FOUND"
	PaymentGatewayError    = "PAYMENT_GATEWAY_ERROR"

	// Profile
	ProfileNotFound = "PROFILE_NOT_FOUND"

	// Uploads
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadFailed          = "UPLOAD_FAILED"

	// Internal
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
)
