package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrAuthentication      = fmt.Errorf("authentication error")
	ErrInvalidCredentials  = fmt.Errorf("invalid credentials")
	ErrUsernameTaken       = fmt.Errorf("username already taken")
	ErrInvalidPassword     = fmt.Errorf("password does not meet requirements")
	ErrInvalidUsername     = fmt.Errorf("invalid username")
	ErrTokenGeneration     = fmt.Errorf("token generation failed")
	ErrDuplicateConnection = fmt.Errorf("duplicate connection id")
	ErrWorkerPanic         = fmt.Errorf("worker panic")
	ErrEmptyWords          = fmt.Errorf("no words have been found")
)

// MapToHTTPStatus translates domain errors to HTTP status codes at the
// API boundary. Unknown errors are reported as 500 without leaking details.
func MapToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, ErrUsernameTaken):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidPassword), errors.Is(err, ErrInvalidUsername):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
