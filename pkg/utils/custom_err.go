package utils

import (
	"errors"
	"fmt"
)

var (
	ErrValidation              = errors.New("validation error")
	ErrQuotaExceeded           = errors.New("quota exceeded")
	ErrDailyQuotaExceeded      = errors.New("daily link creation limit reached")
	ErrActiveQuotaExceeded     = errors.New("active link limit reached")
	ErrLinkNotFoundOrForbidden = errors.New("link not found or not owned by caller")
	ErrSlugInvalid             = errors.New("invalid slug")
	ErrSlugTaken               = errors.New("slug already in use")
	ErrSlugAllocationFailed    = errors.New("could not allocate slug")

	ErrLinkNotFound      = errors.New("link not found")
	ErrLinkExpired       = errors.New("link expired")
	ErrLinkLimitExceeded = errors.New("link click limit exceeded")
	ErrLinkInactive      = errors.New("link inactive")

	ErrGateway              = errors.New("payment gateway error")
	ErrPaymentNotApproved   = errors.New("payment was not approved")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrAlreadySubscribed    = errors.New("subscription is already active")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrAccountNotFound      = errors.New("account not found")
	ErrDatabaseError        = errors.New("database error")
)

// ValidationError carries a user-facing reason.
type ValidationError struct {
	Field  string
	Reason string
	// Kind narrows the failure, e.g. ErrSlugInvalid.
	Kind error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return e.Reason
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation || (e.Kind != nil && target == e.Kind)
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// QuotaError is returned when a plan limit blocks an operation.
type QuotaError struct {
	Kind   error
	Reason string
}

func (e *QuotaError) Error() string { return e.Reason }

func (e *QuotaError) Is(target error) bool {
	return target == ErrQuotaExceeded || target == e.Kind
}

// GatewayError is any failed call to the payment provider. StatusCode is 0
// for transport failures and timeouts.
type GatewayError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *GatewayError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s failed: status %d: %s", e.Op, e.StatusCode, e.Body)
}

func (e *GatewayError) Unwrap() error { return e.Err }

func (e *GatewayError) Is(target error) bool { return target == ErrGateway }

// DatabaseError wraps a storage failure while matching ErrDatabaseError.
func DatabaseError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrDatabaseError, err)
}
