package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidCredentials covers both unknown usernames and wrong passwords
	// so responses cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrAccountLocked is returned when a locked account attempts to log in.
	ErrAccountLocked = errors.New("account is locked")
	// ErrTokenExpired is returned when a token's validity window has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid is returned for malformed or badly signed tokens.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrForbidden is returned when the caller's role does not permit an operation.
	ErrForbidden = errors.New("insufficient privileges")
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidParameter is returned for out-of-range or malformed input.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrUnsupportedFile is returned for uploads that are not CSV or XLSX.
	ErrUnsupportedFile = errors.New("unsupported file type")
	// ErrFileTooLarge is returned when an upload exceeds the size limit.
	ErrFileTooLarge = errors.New("file too large")
	// ErrUserExists is returned when a username or email is already taken.
	ErrUserExists = errors.New("user already exists")
	// ErrRateLimited is returned when a client exceeds the login rate limit.
	ErrRateLimited = errors.New("too many requests")
	// ErrDatabaseUnavailable is returned when the store cannot be reached.
	ErrDatabaseUnavailable = errors.New("database unavailable")
)

// MissingColumnError reports a required column absent from an uploaded file.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing required column %q", e.Column)
}

// RowError records one rejected row during bulk import.
type RowError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Line, e.Reason)
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var missing *MissingColumnError
	if errors.As(err, &missing) {
		return NewHTTPError(http.StatusBadRequest, missing.Error(), "MISSING_COLUMN")
	}

	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidCredentials.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrTokenExpired):
		return NewHTTPError(http.StatusUnauthorized, ErrTokenExpired.Error(), "TOKEN_EXPIRED")
	case errors.Is(err, ErrTokenInvalid):
		return NewHTTPError(http.StatusUnauthorized, ErrTokenInvalid.Error(), "TOKEN_INVALID")
	case errors.Is(err, ErrAccountLocked):
		return NewHTTPError(http.StatusForbidden, ErrAccountLocked.Error(), "ACCOUNT_LOCKED")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, ErrForbidden.Error(), "FORBIDDEN")
	case errors.Is(err, ErrNotFound):
		return NewHTTPError(http.StatusNotFound, ErrNotFound.Error(), "NOT_FOUND")
	case errors.Is(err, ErrInvalidParameter):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_PARAMETER")
	case errors.Is(err, ErrUnsupportedFile):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "UNSUPPORTED_FILE")
	case errors.Is(err, ErrFileTooLarge):
		return NewHTTPError(http.StatusRequestEntityTooLarge, ErrFileTooLarge.Error(), "FILE_TOO_LARGE")
	case errors.Is(err, ErrUserExists):
		return NewHTTPError(http.StatusBadRequest, ErrUserExists.Error(), "USER_EXISTS")
	case errors.Is(err, ErrRateLimited):
		return NewHTTPError(http.StatusTooManyRequests, ErrRateLimited.Error(), "RATE_LIMITED")
	case errors.Is(err, ErrDatabaseUnavailable):
		return NewHTTPError(http.StatusInternalServerError, ErrDatabaseUnavailable.Error(), "DATABASE_UNAVAILABLE")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
