package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"credential format", ErrInvalidCredentialFormat, http.StatusBadRequest, "INVALID_CREDENTIAL_FORMAT"},
		{"bad credentials", ErrInvalidUsernameOrPassword, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"incomplete profile", ErrIncompleteExternalProfile, http.StatusForbidden, "INCOMPLETE_EXTERNAL_PROFILE"},
		{"user not found", ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"session invalid", ErrSessionInvalid, http.StatusUnauthorized, "SESSION_INVALID"},
		{"duplicate user", ErrUserAlreadyExists, http.StatusBadRequest, "USER_ALREADY_EXISTS"},
		{"identity conflict", ErrExternalIdentityConflict, http.StatusConflict, "EXTERNAL_IDENTITY_CONFLICT"},
		{"sneaker not found", ErrSneakerNotFound, http.StatusNotFound, "SNEAKER_NOT_FOUND"},
		{"oauth state", ErrOAuthState, http.StatusBadRequest, "INVALID_OAUTH_STATE"},
		{"wrapped sentinel", fmt.Errorf("sign in: %w", ErrInvalidUsernameOrPassword), http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"validation", NewValidationError("brand is required"), http.StatusBadRequest, "VALIDATION_FAILED"},
		{"unknown", errors.New("dial tcp 10.0.0.1:3306: connection refused"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.wantStatus, httpErr.StatusCode)
			assert.Equal(t, tt.wantCode, httpErr.Code)
		})
	}
}

func TestMapErrorToHTTP_HidesInternalDetail(t *testing.T) {
	httpErr := MapErrorToHTTP(errors.New("Error 1045: Access denied for user 'root'"))
	resp := httpErr.ToErrorResponse()

	assert.Equal(t, "internal server error", resp.Error)
	assert.Empty(t, resp.Details)
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("size must be between %d and %d", 4, 18)

	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "validation failed: size must be between 4 and 18", err.Error())
	assert.Equal(t, "size must be between 4 and 18", MapErrorToHTTP(err).Details)
}

func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, IsDuplicateKey(errors.New("Error 1062 (23000): Duplicate entry 'alice' for key 'users.idx_users_username'")))
	assert.True(t, IsDuplicateKey(errors.New("UNIQUE constraint failed: users.email")))
	assert.True(t, IsDuplicateKey(errors.New(`ERROR: duplicate key value violates unique constraint "idx_users_email"`)))
	assert.False(t, IsDuplicateKey(errors.New("connection reset")))
	assert.False(t, IsDuplicateKey(nil))
}
