package common

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Kind classifies an error for transport mapping. Repositories and services
// return *Error values; handlers translate them to HTTP statuses with Fail.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindUnauthorized
	KindInvalid
	KindConflict
	KindInternal
)

type Error struct {
	Kind    Kind
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

func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Unauthorizedf(format string, args ...any) *Error {
	return &Error{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

func Invalidf(format string, args ...any) *Error {
	return &Error{Kind: KindInvalid, Message: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps a persistence or infrastructure failure. The wrapped error is
// logged server-side; only the message crosses the wire.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf returns the Kind of err, defaulting to KindInternal for plain errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func httpStatus(kind Kind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindInvalid:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// OK writes the success envelope used by every endpoint.
func OK(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "success",
		"data":   data,
	})
}

// Fail writes the error envelope, mapping the error kind to an HTTP status.
// Internal error causes are not leaked to the caller.
func Fail(c echo.Context, err error) error {
	message := "operation could not be completed"
	var e *Error
	if errors.As(err, &e) {
		message = e.Message
	}
	return c.JSON(httpStatus(KindOf(err)), map[string]any{
		"status":  "error",
		"message": message,
	})
}
