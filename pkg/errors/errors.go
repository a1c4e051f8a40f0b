package errors

import (
	"errors"
	"fmt"
)

// Domain errors - Sentinel errors for use with errors.Is()
var (
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrBadRequest       = errors.New("bad request")
	ErrConflict         = errors.New("resource already exists")
	ErrInternalServer   = errors.New("internal server error")
	ErrValidation       = errors.New("validation error")
	ErrExpired          = errors.New("resource expired")
	ErrMalformedPath    = errors.New("malformed path")
	ErrPathNotFound     = errors.New("path not found")
	ErrEmailNotVerified = errors.New("email not verified")
	ErrSettings         = errors.New("invalid link settings")
	ErrUnsupportedType  = errors.New("unsupported link type")
	ErrCursorReset      = errors.New("cursor reset required")
	ErrTooManyUsers     = errors.New("too many users in batch")
)

// Custom error type with context
type AppError struct {
	Code    string
	Message string
	Err     error
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

// Constructors
func NotFound(msg string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: msg, Err: ErrNotFound}
}

func Unauthorized(msg string) *AppError {
	return &AppError{Code: "UNAUTHORIZED", Message: msg, Err: ErrUnauthorized}
}

func Forbidden(msg string) *AppError {
	return &AppError{Code: "FORBIDDEN", Message: msg, Err: ErrForbidden}
}

func BadRequest(msg string) *AppError {
	return &AppError{Code: "BAD_REQUEST", Message: msg, Err: ErrBadRequest}
}

func Conflict(msg string) *AppError {
	return &AppError{Code: "CONFLICT", Message: msg, Err: ErrConflict}
}

func InternalServer(msg string, err error) *AppError {
	return &AppError{Code: "INTERNAL_SERVER_ERROR", Message: msg, Err: err}
}

func Expired(msg string) *AppError {
	return &AppError{Code: "EXPIRED", Message: msg, Err: ErrExpired}
}

func MalformedPath(msg string) *AppError {
	return &AppError{Code: "MALFORMED_PATH", Message: msg, Err: ErrMalformedPath}
}

func PathNotFound(msg string) *AppError {
	return &AppError{Code: "PATH_NOT_FOUND", Message: msg, Err: ErrPathNotFound}
}

func EmailNotVerified() *AppError {
	return &AppError{Code: "EMAIL_NOT_VERIFIED", Message: "email address is not verified", Err: ErrEmailNotVerified}
}

func Settings(msg string) *AppError {
	return &AppError{Code: "SETTINGS_ERROR", Message: msg, Err: ErrSettings}
}

func UnsupportedType(msg string) *AppError {
	return &AppError{Code: "UNSUPPORTED_LINK_TYPE", Message: msg, Err: ErrUnsupportedType}
}

func CursorReset(msg string) *AppError {
	return &AppError{Code: "RESET", Message: msg, Err: ErrCursorReset}
}

func TooManyUsers(msg string) *AppError {
	return &AppError{Code: "TOO_MANY_USERS", Message: msg, Err: ErrTooManyUsers}
}
