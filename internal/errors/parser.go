package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo is a client-safe code and message derived from a store error
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError maps gorm/postgres errors to client-safe codes without leaking SQL detail.
// context names the operation, e.g. "create address".
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: InternalServerError, Message: defaultMessage(context)}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{Code: ResourceNotFound, Message: notFoundMessage(context)}
	}

	errLower := strings.ToLower(err.Error())

	switch {
	case IsUniqueViolation(err):
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "The resource already exists"}
	case errors.Is(err, gorm.ErrForeignKeyViolated) || strings.Contains(errLower, "foreign key constraint"):
		if strings.Contains(errLower, "still referenced") {
			return ErrorInfo{Code: ResourceConflict, Message: "The resource is still referenced and cannot be removed"}
		}
		return ErrorInfo{Code: ResourceNotFound, Message: "A referenced resource does not exist"}
	case strings.Contains(errLower, "violates not-null constraint") || strings.Contains(errLower, "not null constraint failed"):
		return ErrorInfo{Code: ValidationRequired, Message: "A required field is missing"}
	case strings.Contains(errLower, "check constraint"):
		return ErrorInfo{Code: ValidationInvalidInput, Message: "A field value is out of range"}
	case strings.Contains(errLower, "connection refused") ||
		strings.Contains(errLower, "no such host") ||
		strings.Contains(errLower, "timeout"):
		return ErrorInfo{Code: InternalExternalAPI, Message: "A dependency is unavailable. Please try again later"}
	}

	return ErrorInfo{Code: InternalServerError, Message: defaultMessage(context)}
}

// IsUniqueViolation reports whether err is a unique-index violation on postgres (23505) or sqlite.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	errLower := strings.ToLower(err.Error())
	return strings.Contains(errLower, "duplicate key") ||
		strings.Contains(errLower, "unique constraint") ||
		strings.Contains(errLower, "sqlstate 23505")
}

func notFoundMessage(context string) string {
	contextLower := strings.ToLower(context)
	for _, resource := range []string{"address", "order", "product", "cart", "wishlist", "profile", "category"} {
		if strings.Contains(contextLower, resource) {
			return strings.ToUpper(resource[:1]) + resource[1:] + " not found"
		}
	}
	return "The requested resource was not found"
}

func defaultMessage(context string) string {
	contextLower := strings.ToLower(context)
	switch {
	case strings.Contains(contextLower, "create"):
		return "Failed to create the resource. Please try again later"
	case strings.Contains(contextLower, "update"):
		return "Failed to update the resource. Please try again later"
	case strings.Contains(contextLower, "delete"):
		return "Failed to delete the resource. Please try again later"
	}
	return "Something went wrong. Please try again later"
}

// ParseAndRespond writes the parsed error with the given status
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	info := ParseError(err, context)
	c.JSON(statusCode, ErrorResponse{
		Error:   info.Code,
		Message: info.Message,
	})
}
