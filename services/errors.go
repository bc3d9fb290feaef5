package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// DomainError is a business-rule failure with a stable code for the API envelope
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

var (
	ErrNotFound           = &DomainError{Code: "NOT_FOUND", Message: "Resource not found"}
	ErrSlugTaken          = &DomainError{Code: "SLUG_TAKEN", Message: "Slug is already in use"}
	ErrEmailTaken         = &DomainError{Code: "EMAIL_TAKEN", Message: "Email is already in use"}
	ErrInvalidTransition  = &DomainError{Code: "INVALID_TRANSITION", Message: "Status change is not allowed"}
	ErrInsufficientStock  = &DomainError{Code: "INSUFFICIENT_STOCK", Message: "Insufficient stock"}
	ErrProductUnavailable = &DomainError{Code: "PRODUCT_UNAVAILABLE", Message: "Product is not available"}
	ErrEmptyCart          = &DomainError{Code: "EMPTY_CART", Message: "Order must contain at least one item"}
	ErrSlotUnavailable    = &DomainError{Code: "SLOT_UNAVAILABLE", Message: "This slot is fully booked"}
	ErrInvalidSlot        = &DomainError{Code: "INVALID_SLOT", Message: "Slot is outside opening hours"}
	ErrInvalidDate        = &DomainError{Code: "INVALID_DATE", Message: "Date is not bookable"}
	ErrServiceInactive    = &DomainError{Code: "SERVICE_UNAVAILABLE", Message: "Service is not available for booking"}
	ErrInvalidCredentials = &DomainError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password"}
	ErrLastOwner          = &DomainError{Code: "LAST_OWNER", Message: "At least one active owner is required"}
	ErrSelfModification   = &DomainError{Code: "SELF_MODIFICATION", Message: "You cannot remove or demote your own account"}
	ErrInvalidRole        = &DomainError{Code: "INVALID_ROLE", Message: "Unknown role"}
	ErrWeakPassword       = &DomainError{Code: "WEAK_PASSWORD", Message: "Password must be at least 10 characters"}
	ErrPasswordTooLong    = &DomainError{Code: "PASSWORD_TOO_LONG", Message: "Password must be at most 72 bytes"}
	ErrUnsupportedExport  = &DomainError{Code: "UNSUPPORTED_EXPORT", Message: "Unsupported export resource or format"}
)

// detail wraps a sentinel with extra context while keeping errors.Is/As working
func detail(sentinel *DomainError, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}

// notFound maps gorm's record-not-found to ErrNotFound and wraps everything else
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("failed to load %s: %w", what, err)
}

// AsDomainError extracts the DomainError in err's chain
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
