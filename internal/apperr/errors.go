package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Stable machine-readable business error codes. Handlers return them to
// clients unchanged so the mobile/web apps can switch on them.
const (
	CodeUnauthorized      = 4001
	CodeValidation        = 4002
	CodeCrossTenant       = 4003
	CodeNotFound          = 4004
	CodeNoInventory       = 4005
	CodeInsufficientStock = 4006
	CodeInvalidDiscount   = 4007
	CodeForbidden         = 4008
	CodeConflict          = 4009
	CodeInternal          = 5000
)

// Error is a typed business-rule failure. Services return it, the handler
// boundary translates it to an HTTP response exactly once.
type Error struct {
	Code    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether the caller may retry the same request.
// Stock races and order-number collisions are transient; validation,
// ownership and not-found failures are not.
func (e *Error) Retryable() bool {
	return e.Code == CodeInsufficientStock || e.Code == CodeConflict
}

// HTTPStatus maps the error code to a response status. Cross-tenant access
// is deliberately returned as 404 so callers cannot tell whether a resource
// exists in another store.
func (e *Error) HTTPStatus() int {
	switch e.Code {
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound, CodeCrossTenant:
		return http.StatusNotFound
	case CodeConflict, CodeInsufficientStock:
		return http.StatusConflict
	case CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// PublicCode is the code exposed to clients. Cross-tenant failures are
// indistinguishable from not-found externally; the internal code is kept
// for logging.
func (e *Error) PublicCode() int {
	if e.Code == CodeCrossTenant {
		return CodeNotFound
	}
	return e.Code
}

// PublicMessage is the message exposed to clients.
func (e *Error) PublicMessage() string {
	switch e.Code {
	case CodeCrossTenant:
		return "resource not found"
	case CodeInternal:
		return "internal server error"
	default:
		return e.Message
	}
}

func New(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Newf(code int, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(message string) *Error {
	return New(CodeUnauthorized, message)
}

func Forbidden(message string) *Error {
	return New(CodeForbidden, message)
}

func Validation(message string) *Error {
	return New(CodeValidation, message)
}

func NotFound(resource string, id uint) *Error {
	return Newf(CodeNotFound, "%s not found: %d", resource, id)
}

// CrossTenant marks an access attempt against another store's resource.
func CrossTenant(resource string, id uint) *Error {
	return Newf(CodeCrossTenant, "%s %d does not belong to your store", resource, id)
}

func Conflict(message string) *Error {
	return New(CodeConflict, message)
}

func InsufficientStock(productName string, available, requested int) *Error {
	return Newf(CodeInsufficientStock, "insufficient stock for %s: available %d, requested %d",
		productName, available, requested)
}

func Internal(err error) *Error {
	return &Error{Code: CodeInternal, Message: "internal error", Err: err}
}

// From coerces any error into an *Error, wrapping unknown errors as internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
