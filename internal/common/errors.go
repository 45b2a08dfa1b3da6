package common

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound       = errors.New("requested resource not found")
	ErrInternalServer = errors.New("internal server error")

	ErrInvalidInput       = errors.New("invalid input")
	ErrWeakPassword       = errors.New("password does not meet the password policy")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrDuplicateUser      = errors.New("user with given username or email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials") // same for unknown user and wrong password
	ErrTooManyAttempts    = errors.New("too many failed login attempts")

	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidSignature = errors.New("token signature is invalid")
	ErrMalformedToken   = errors.New("token is malformed")
	ErrUserNotFound     = errors.New("token subject no longer exists")
	ErrUserDisabled     = errors.New("user account is disabled")
	ErrCorruptHash      = errors.New("stored password hash is corrupt")
)

// HTTPStatusFromError maps domain errors to HTTP status codes.
func HTTPStatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrWeakPassword) || errors.Is(err, ErrInvalidEmail) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrDuplicateUser) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidCredentials) || errors.Is(err, ErrExpiredToken) ||
		errors.Is(err, ErrInvalidSignature) || errors.Is(err, ErrMalformedToken) ||
		errors.Is(err, ErrUserNotFound) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, ErrUserDisabled) {
		return http.StatusForbidden
	}
	if errors.Is(err, ErrTooManyAttempts) {
		return http.StatusTooManyRequests
	}

	// Unique violation that slipped past a repository
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			return http.StatusConflict
		}
	}

	return http.StatusInternalServerError
}

// Errorf creates a new error with formatting, useful for wrapping.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
