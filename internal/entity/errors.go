package entity

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure for the transport layer.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindUnauthorized
	KindNotFound
	KindInvalidArgument
	KindInvalidState
	KindConflict
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindInvalidState:
		return "invalid_state"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is a classified domain error. Details, when set, is serialized next to
// the message (e.g. the available products on a failed lookup).
type Error struct {
	Kind    ErrorKind
	Message string
	Details map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind and message, so the sentinels
// below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == e.Message
}

func Unauthorized(msg string) *Error { return &Error{Kind: KindUnauthorized, Message: msg} }

func NotFound(msg string) *Error { return &Error{Kind: KindNotFound, Message: msg} }

func InvalidArgument(msg string) *Error { return &Error{Kind: KindInvalidArgument, Message: msg} }

func InvalidState(msg string) *Error { return &Error{Kind: KindInvalidState, Message: msg} }

func Conflict(msg string) *Error { return &Error{Kind: KindConflict, Message: msg} }

// Internal wraps a storage or infrastructure failure.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

var (
	ErrUnauthorized      = Unauthorized("Unauthorized")
	ErrProductIDRequired = InvalidArgument("Product ID is required")
	ErrInvalidQuantity   = InvalidArgument("Quantity must be at least 1")
	ErrQuantityTooLarge  = InvalidArgument(fmt.Sprintf("Quantity cannot exceed %d", MaxLineQuantity))
	ErrOutOfStock        = InvalidState("Product is out of stock")
	ErrCartItemNotFound  = NotFound("Cart item not found")
	ErrProductNotFound   = NotFound("Product not found")
	ErrUserNotFound      = NotFound("User not found")
	ErrAddressNotFound   = NotFound("Address not found")
	ErrWishlistNotFound  = NotFound("Item not found")
	ErrBadCredentials    = Unauthorized("Invalid email or password")
	ErrEmailTaken        = Conflict("Email already registered")
)

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
