package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

// エラーコード（HTTPステータスに落とす前の業務上の分類）
const (
	CodeNotFound                   = "NOT_FOUND"
	CodeUnauthorized               = "UNAUTHORIZED"
	CodeInvalidTransition          = "INVALID_TRANSITION"
	CodeItemsLocked                = "ITEMS_LOCKED"
	CodeAlreadyCancelled           = "ALREADY_CANCELLED"
	CodeReturnConfirmationRequired = "RETURN_CONFIRMATION_REQUIRED"
	CodeValidation                 = "VALIDATION_ERROR"
	CodeInternal                   = "INTERNAL"
)

type HTTPError struct {
	Status  int
	Code    string
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

func NewHTTPError(status int, code string, message string) error {
	return &HTTPError{
		Status:  status,
		Code:    code,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

func errNotFound() error {
	return NewHTTPError(http.StatusNotFound, CodeNotFound, "not found")
}

func errUnauthorized() error {
	return NewHTTPError(http.StatusForbidden, CodeUnauthorized, "unauthorized")
}

func errInvalidTransition(msg string) error {
	return NewHTTPError(http.StatusConflict, CodeInvalidTransition, msg)
}

func errItemsLocked() error {
	return NewHTTPError(http.StatusConflict, CodeItemsLocked, "items cannot be changed after dispatch")
}

func errAlreadyCancelled() error {
	return NewHTTPError(http.StatusConflict, CodeAlreadyCancelled, "order is already cancelled")
}

func errReturnConfirmationRequired() error {
	return NewHTTPError(http.StatusConflict, CodeReturnConfirmationRequired, "goods return must be confirmed for a delivered order")
}

func errValidation(msg string) error {
	return NewHTTPError(http.StatusBadRequest, CodeValidation, msg)
}

func errInternal() error {
	return NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
}
