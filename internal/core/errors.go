// errors.go

package core

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrDuplicateContact = errors.New("duplicate contact")
	ErrForbidden        = errors.New("forbidden")
	ErrTokenInvalid     = errors.New("token invalid")
	ErrTokenExpired     = errors.New("token expired")
	ErrAccountLocked    = errors.New("account locked")
)

// AppError is the only error shape that crosses the HTTP boundary.
// Everything else is logged and collapsed into a generic response so
// internal detail never reaches a client.
type AppError struct {
	Err     error
	Message string
	Status  int
	Code    string
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(err error, message string, status int, code string) *AppError {
	return &AppError{
		Err:     err,
		Message: message,
		Status:  status,
		Code:    code,
	}
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func ValidationError(message string) *AppError {
	return NewAppError(nil, message, http.StatusBadRequest, "VALIDATION_ERROR")
}

func UnauthorizedError(message string) *AppError {
	if message == "" {
		message = "authentication required"
	}
	return NewAppError(nil, message, http.StatusUnauthorized, "UNAUTHENTICATED")
}

func InvalidCredentialsError() *AppError {
	// Deliberately identical for unknown identifier and wrong password.
	return NewAppError(
		nil,
		"invalid credentials",
		http.StatusUnauthorized,
		"INVALID_CREDENTIALS",
	)
}

func InvalidSessionError() *AppError {
	return NewAppError(
		ErrTokenInvalid,
		"invalid or expired session",
		http.StatusUnauthorized,
		"INVALID_SESSION",
	)
}

func ForbiddenError(message string) *AppError {
	if message == "" {
		message = "insufficient permissions"
	}
	return NewAppError(ErrForbidden, message, http.StatusForbidden, "FORBIDDEN")
}

func CsrfMismatchError() *AppError {
	return NewAppError(
		nil,
		"csrf token missing or mismatched",
		http.StatusForbidden,
		"CSRF_MISMATCH",
	)
}

func OriginRejectedError() *AppError {
	return NewAppError(
		nil,
		"request origin not allowed",
		http.StatusForbidden,
		"ORIGIN_REJECTED",
	)
}

func NotFoundError(resource string) *AppError {
	return NewAppError(
		ErrNotFound,
		fmt.Sprintf("%s not found", resource),
		http.StatusNotFound,
		"NOT_FOUND",
	)
}

func DuplicateContactError() *AppError {
	return NewAppError(
		ErrDuplicateContact,
		"an account with this contact already exists",
		http.StatusBadRequest,
		"DUPLICATE_CONTACT",
	)
}

func AccountLockedError(retryAfterMinutes int) *AppError {
	return NewAppError(
		ErrAccountLocked,
		fmt.Sprintf(
			"account locked, try again in %d minutes",
			retryAfterMinutes,
		),
		http.StatusTooManyRequests,
		"ACCOUNT_LOCKED",
	)
}

// FormatValidationError converts a validator error into a short
// field-indicative message suitable for a 400 body.
func FormatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return "invalid request"
	}

	fe := validationErrors[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "min":
		return fmt.Sprintf(
			"%s must be at least %s characters",
			fe.Field(),
			fe.Param(),
		)
	case "max":
		return fmt.Sprintf(
			"%s must be at most %s characters",
			fe.Field(),
			fe.Param(),
		)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "gt", "gte":
		return fmt.Sprintf("%s must be positive", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
