package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrInvalidCredentialFormat is returned when sign-in input is malformed.
	ErrInvalidCredentialFormat = errors.New("invalid credential format")
	// ErrInvalidUsernameOrPassword is returned for unknown users and wrong passwords alike.
	ErrInvalidUsernameOrPassword = errors.New("invalid username or password")
	// ErrIncompleteExternalProfile is returned when a provider profile lacks required fields.
	ErrIncompleteExternalProfile = errors.New("external profile is missing required fields")
	// ErrUserNotFound is returned when a session subject no longer resolves to a user.
	ErrUserNotFound = errors.New("User not found")
	// ErrUnauthorized is returned when a protected path is requested without a valid session.
	ErrUnauthorized = errors.New("Unauthorized")
	// ErrInternal is returned for unexpected storage or provider failures.
	ErrInternal = errors.New("internal server error")

	// ErrSessionInvalid is returned when a session can no longer be refreshed.
	ErrSessionInvalid = errors.New("session is invalid or expired")
	// ErrUserAlreadyExists is returned when registering a taken username or email.
	ErrUserAlreadyExists = errors.New("Username or email already exists")
	// ErrExternalIdentityConflict is returned when the email belongs to an account
	// already bound to another provider identity.
	ErrExternalIdentityConflict = errors.New("account is linked to a different external identity")
	// ErrSneakerNotFound is returned when a sneaker does not exist or is not owned by the caller.
	ErrSneakerNotFound = errors.New("Sneaker not found or unauthorized")
	// ErrValidation is the sentinel wrapped by every ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrOAuthState is returned when an OAuth callback carries an unknown or expired state.
	ErrOAuthState = errors.New("invalid or expired oauth state")
)

// ValidationError carries field level details for a rejected payload.
type ValidationError struct {
	Details string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), e.Details)
}

// Unwrap lets errors.Is match ErrValidation.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError builds a ValidationError from a format string.
func NewValidationError(format string, args ...any) error {
	return &ValidationError{Details: fmt.Sprintf(format, args...)}
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	Details    string
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
		Error:   e.Message,
		Code:    e.Code,
		Details: e.Details,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Unknown errors collapse
// into an opaque 500 so driver messages never reach the client.
func MapErrorToHTTP(err error) *HTTPError {
	var vErr *ValidationError
	switch {
	case errors.As(err, &vErr):
		httpErr := NewHTTPError(http.StatusBadRequest, ErrValidation.Error(), "VALIDATION_FAILED")
		httpErr.Details = vErr.Details
		return httpErr
	case errors.Is(err, ErrInvalidCredentialFormat):
		return NewHTTPError(http.StatusBadRequest, ErrInvalidCredentialFormat.Error(), "INVALID_CREDENTIAL_FORMAT")
	case errors.Is(err, ErrInvalidUsernameOrPassword):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidUsernameOrPassword.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrIncompleteExternalProfile):
		return NewHTTPError(http.StatusForbidden, ErrIncompleteExternalProfile.Error(), "INCOMPLETE_EXTERNAL_PROFILE")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, ErrUserNotFound.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrUnauthorized):
		return NewHTTPError(http.StatusUnauthorized, ErrUnauthorized.Error(), "UNAUTHORIZED")
	case errors.Is(err, ErrSessionInvalid):
		return NewHTTPError(http.StatusUnauthorized, ErrSessionInvalid.Error(), "SESSION_INVALID")
	case errors.Is(err, ErrUserAlreadyExists):
		return NewHTTPError(http.StatusBadRequest, ErrUserAlreadyExists.Error(), "USER_ALREADY_EXISTS")
	case errors.Is(err, ErrExternalIdentityConflict):
		return NewHTTPError(http.StatusConflict, ErrExternalIdentityConflict.Error(), "EXTERNAL_IDENTITY_CONFLICT")
	case errors.Is(err, ErrSneakerNotFound):
		return NewHTTPError(http.StatusNotFound, ErrSneakerNotFound.Error(), "SNEAKER_NOT_FOUND")
	case errors.Is(err, ErrOAuthState):
		return NewHTTPError(http.StatusBadRequest, ErrOAuthState.Error(), "INVALID_OAUTH_STATE")
	default:
		return NewHTTPError(http.StatusInternalServerError, ErrInternal.Error(), "INTERNAL_ERROR")
	}
}

// IsDuplicateKey reports whether err is a unique-constraint violation. It
// covers drivers whose errors were not translated by gorm.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint")
}
