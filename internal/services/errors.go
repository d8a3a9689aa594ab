package services

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/DylanJC13/movil-2/internal/store"
)

// Kind classifies service failures for the HTTP boundary.
type Kind string

const (
	KindInvalidInput       Kind = "invalid_input"
	KindNotFound           Kind = "not_found"
	KindInsufficientStock  Kind = "insufficient_stock"
	KindConflictDuplicate  Kind = "conflict_duplicate"
	KindStorageUnavailable Kind = "storage_unavailable"
	KindStorageError       Kind = "storage_error"
)

// Sentinels for errors.Is; they match any *Error of the same kind.
var (
	ErrInvalidInput       = &Error{Kind: KindInvalidInput}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrInsufficientStock  = &Error{Kind: KindInsufficientStock}
	ErrConflictDuplicate  = &Error{Kind: KindConflictDuplicate}
	ErrStorageUnavailable = &Error{Kind: KindStorageUnavailable}
	ErrStorageError       = &Error{Kind: KindStorageError}
)

type Error struct {
	Kind    Kind
	Message string
	// Entity and ID identify the offending record when there is one.
	Entity  string
	ID      uint
	Details map[string]string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Status is the HTTP status hint for the error kind.
func (e *Error) Status() int {
	switch e.Kind {
	case KindInvalidInput, KindInsufficientStock:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflictDuplicate:
		return http.StatusConflict
	case KindStorageUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// StatusOf returns the status hint of err, 500 for foreign errors.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status()
	}
	return http.StatusInternalServerError
}

func InvalidInput(msg string, details map[string]string) *Error {
	return &Error{Kind: KindInvalidInput, Message: msg, Details: details}
}

func NotFound(entity string, id uint) *Error {
	return &Error{Kind: KindNotFound, Entity: entity, ID: id, Message: fmt.Sprintf("%s %d not found", entity, id)}
}

func InsufficientStock(productID uint, productName string, available, requested int) *Error {
	return &Error{
		Kind:    KindInsufficientStock,
		Entity:  "product",
		ID:      productID,
		Message: fmt.Sprintf("insufficient stock for product %s", productName),
		Details: map[string]string{
			"product":   productName,
			"available": fmt.Sprint(available),
			"requested": fmt.Sprint(requested),
		},
	}
}

// fromStore maps a store error onto the service taxonomy. Errors that are
// already *Error pass through unchanged.
func fromStore(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	switch {
	case errors.Is(err, store.ErrDuplicate):
		return &Error{Kind: KindConflictDuplicate, Message: op + ": already exists", Err: err}
	case errors.Is(err, store.ErrUnavailable):
		return &Error{Kind: KindStorageUnavailable, Message: op + ": storage unavailable", Err: err}
	}
	return &Error{Kind: KindStorageError, Message: op, Err: err}
}
