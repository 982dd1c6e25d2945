package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind classifies domain failures independently of any transport.
// HTTP status codes are derived from kinds at the edge only.
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindNotFound
	KindConflict
	KindIntegrity
	KindUnauthorized
)

// Error is a tagged domain error with no extra payload.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) ErrorKind() ErrorKind { return e.Kind }

var (
	ErrEmptyCart       = &Error{Kind: KindValidation, Message: "cart must contain at least one item"}
	ErrInvalidQuantity = &Error{Kind: KindValidation, Message: "quantity must be greater than zero"}
	ErrUserNotFound    = &Error{Kind: KindNotFound, Message: "user not found"}
	ErrTableNotFound   = &Error{Kind: KindNotFound, Message: "table not found"}
	ErrOrderNotFound   = &Error{Kind: KindNotFound, Message: "order not found"}
	ErrEventNotFound   = &Error{Kind: KindNotFound, Message: "event not found"}
	ErrLinkNotFound    = &Error{Kind: KindNotFound, Message: "link not found"}

	ErrUsernameTaken     = &Error{Kind: KindIntegrity, Message: "username already taken"}
	ErrTableNumberTaken  = &Error{Kind: KindIntegrity, Message: "table number already in use"}
	ErrAlreadyRegistered = &Error{Kind: KindIntegrity, Message: "email already registered for this event"}

	ErrInvalidCredentials = &Error{Kind: KindUnauthorized, Message: "invalid credentials"}
)

// ItemNotFoundError reports a cart line referencing an unknown menu item.
type ItemNotFoundError struct {
	ItemID string
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("menu item %s not found", e.ItemID)
}

func (e *ItemNotFoundError) ErrorKind() ErrorKind { return KindNotFound }

// InsufficientStockError reports how short an item is, so callers can act.
type InsufficientStockError struct {
	ItemID string
	Have   int
	Need   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for menu item %s: have %d, need %d", e.ItemID, e.Have, e.Need)
}

func (e *InsufficientStockError) ErrorKind() ErrorKind { return KindConflict }

// SlotTakenError reports a reservation slot already occupied.
type SlotTakenError struct {
	TableID string
	Slot    time.Time
}

func (e *SlotTakenError) Error() string {
	return fmt.Sprintf("table %s is already reserved at %s", e.TableID, e.Slot.Format(time.RFC3339))
}

func (e *SlotTakenError) ErrorKind() ErrorKind { return KindConflict }

// KindOf reports the taxonomy kind of err, or 0 if err is not a domain error.
func KindOf(err error) ErrorKind {
	var kinder interface{ ErrorKind() ErrorKind }
	if errors.As(err, &kinder) {
		return kinder.ErrorKind()
	}
	return 0
}

// Validation builds a one-off validation error for malformed request fields.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}
