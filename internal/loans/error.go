package loans

import (
	"errors"
	"fmt"
)

// Kind is the machine-readable reason a loan operation was refused.
type Kind string

const (
	KindNoCopies        Kind = "NO_COPIES_AVAILABLE"
	KindAdminForbidden  Kind = "ADMIN_NOT_PERMITTED"
	KindAlreadyReturned Kind = "ALREADY_RETURNED"
	KindOverdue         Kind = "OVERDUE"
	KindRenewalLimit    Kind = "RENEWAL_LIMIT_REACHED"
	KindNotReturned     Kind = "NOT_RETURNED"
	KindNotFound        Kind = "NOT_FOUND"
	KindInvalidArgument Kind = "INVALID_ARGUMENT"
	KindConflict        Kind = "CONFLICT"
)

// ValidationError is a business-rule refusal. Message is safe to show to the member as is.
type ValidationError struct {
	Kind    Kind
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newValidationError(kind Kind, msg string) error {
	return &ValidationError{Kind: kind, Message: msg}
}

var (
	ErrNoCopies        = newValidationError(KindNoCopies, "no copies available")
	ErrAdminForbidden  = newValidationError(KindAdminForbidden, "admin not permitted")
	ErrAlreadyReturned = newValidationError(KindAlreadyReturned, "already returned")
	ErrOverdue         = newValidationError(KindOverdue, "overdue")
	ErrRenewalLimit    = newValidationError(KindRenewalLimit, "renewal limit reached")
	ErrNotReturned     = newValidationError(KindNotReturned, "not returned")
	ErrConcurrent      = newValidationError(KindConflict, "loan was changed by another request, try again")
)

func NewNotFoundError(msg string) error {
	return newValidationError(KindNotFound, msg)
}

func NewInvalidArgumentError(msg string) error {
	return newValidationError(KindInvalidArgument, msg)
}

// KindOf returns the kind of a ValidationError in err's chain, or "" for any other error.
func KindOf(err error) Kind {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Kind
	}
	return ""
}

func ToHTTPStatus(err error) int {
	switch KindOf(err) {
	case KindInvalidArgument:
		return 400
	case KindAdminForbidden:
		return 403
	case KindNotFound:
		return 404
	case KindNoCopies, KindAlreadyReturned, KindNotReturned, KindConflict:
		return 409
	case KindOverdue, KindRenewalLimit:
		return 422
	default:
		return 500
	}
}
