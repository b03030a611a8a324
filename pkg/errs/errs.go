// Package errs holds the error classes shared by the ticketing packages.
package errs

import "errors"

var (
	// ErrNotFound is returned when a panel, multipanel, category, role, user or ticket does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateID is returned when creating something whose key is already taken.
	ErrDuplicateID = errors.New("duplicate id")

	// ErrUnauthorized is returned when a permission or staff role check fails.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidValue is returned for malformed input.
	ErrInvalidValue = errors.New("invalid value")

	// ErrDependencyUnavailable is returned when a call to the chat platform or the store fails.
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrAlreadyClaimed is returned when claiming a ticket that already has a claimant.
	ErrAlreadyClaimed = errors.New("already claimed")
)

// Kind is the class of an error as reported back to a user.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindDuplicateID
	KindUnauthorized
	KindInvalidValue
	KindDependencyUnavailable
	KindAlreadyClaimed
)

// KindOf classifies err. Errors outside the taxonomy are KindUnknown.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrDuplicateID):
		return KindDuplicateID
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrInvalidValue):
		return KindInvalidValue
	case errors.Is(err, ErrAlreadyClaimed):
		return KindAlreadyClaimed
	case errors.Is(err, ErrDependencyUnavailable):
		return KindDependencyUnavailable
	default:
		return KindUnknown
	}
}

// IsValidation reports whether err is a validation class error that should be answered privately
// rather than logged as a failure.
func IsValidation(err error) bool {
	switch KindOf(err) {
	case KindNotFound, KindDuplicateID, KindUnauthorized, KindInvalidValue, KindAlreadyClaimed:
		return true
	default:
		return false
	}
}
