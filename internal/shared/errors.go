package shared

import (
	"errors"
	"fmt"
)

// Kind is a machine-readable error category returned to API clients.
type Kind string

const (
	KindNotFound               Kind = "NotFound"
	KindCapacityExceeded       Kind = "CapacityExceeded"
	KindInvalidQuantity        Kind = "InvalidQuantity"
	KindStorageAlreadyAttached Kind = "StorageAlreadyAttached"
	KindStorageNotAttached     Kind = "StorageNotAttached"
	KindInventoryNotEmpty      Kind = "InventoryNotEmpty"
	KindProductInUse           Kind = "ProductInUse"
	KindValidation             Kind = "ValidationFailed"
	KindDuplicate              Kind = "Duplicate"
	KindUnauthorized           Kind = "Unauthorized"
	KindForbidden              Kind = "Forbidden"
	KindInternal               Kind = "Internal"
)

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrCapacityExceeded indicates a weight or volume ceiling would be crossed.
	ErrCapacityExceeded = errors.New("capacity exceeded")
	// ErrInvalidQuantity indicates a non-positive or oversized quantity.
	ErrInvalidQuantity = errors.New("invalid quantity")
	// ErrStorageAlreadyAttached indicates the storage unit belongs to another inventory.
	ErrStorageAlreadyAttached = errors.New("storage unit already attached")
	// ErrStorageNotAttached indicates the storage unit is not attached to the inventory.
	ErrStorageNotAttached = errors.New("storage unit not attached")
	// ErrInventoryNotEmpty indicates delete of an inventory that still holds something.
	ErrInventoryNotEmpty = errors.New("inventory not empty")
	// ErrProductInUse indicates delete of a product still held by an inventory.
	ErrProductInUse = errors.New("product in use")
	// ErrValidation indicates a malformed request.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicate indicates an idempotency or uniqueness conflict.
	ErrDuplicate = errors.New("duplicate")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized indicates a missing or unknown bearer token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden indicates the caller lacks the required role.
	ErrForbidden = errors.New("forbidden")
)

var kindSentinels = map[Kind]error{
	KindNotFound:               ErrNotFound,
	KindCapacityExceeded:       ErrCapacityExceeded,
	KindInvalidQuantity:        ErrInvalidQuantity,
	KindStorageAlreadyAttached: ErrStorageAlreadyAttached,
	KindStorageNotAttached:     ErrStorageNotAttached,
	KindInventoryNotEmpty:      ErrInventoryNotEmpty,
	KindProductInUse:           ErrProductInUse,
	KindValidation:             ErrValidation,
	KindDuplicate:              ErrDuplicate,
	KindUnauthorized:           ErrUnauthorized,
	KindForbidden:              ErrForbidden,
}

// Error carries a kind and a client-facing message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the kind sentinel so callers can use errors.Is.
func (e *Error) Unwrap() error {
	return kindSentinels[e.Kind]
}

// Errorf builds an *Error with a formatted message.
func Errorf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf reports the kind of err, falling back to sentinel matching.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, ErrInvalidCredentials) {
		return KindUnauthorized
	}
	for kind, sentinel := range kindSentinels {
		if errors.Is(err, sentinel) {
			return kind
		}
	}
	return KindInternal
}

// UserSafeMessage returns the message of a typed error and hides anything else.
func UserSafeMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	if KindOf(err) != KindInternal {
		return err.Error()
	}
	return "internal error"
}
