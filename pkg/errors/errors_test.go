package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeToHTTPStatus(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want int
	}{
		{CodeValidationFailed, http.StatusBadRequest},
		{CodeInvalidParam, http.StatusBadRequest},
		{CodeInvalidCredentials, http.StatusUnauthorized},
		{CodeTokenExpired, http.StatusUnauthorized},
		{CodeIterationNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeDuplicateUser, http.StatusConflict},
		{CodeGenerationFailed, http.StatusInternalServerError},
		{CodeDatabaseError, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, New(tc.code, "x").HTTPStatus, "code %s", tc.code)
	}
}

func TestMissingField(t *testing.T) {
	err := MissingField("plot")
	assert.Equal(t, "plot", err.Field)
	assert.Equal(t, "Missing required field: plot", err.Message)
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus)
}

func TestWithHelpersDoNotMutateSharedErrors(t *testing.T) {
	detailed := ErrConflict.WithDetail("username taken").WithField("username")

	assert.Empty(t, ErrConflict.Detail)
	assert.Empty(t, ErrConflict.Field)
	assert.Equal(t, "username taken", detailed.Detail)
	assert.Equal(t, "username", detailed.Field)
}

func TestAsAppErrorUnwrapsChains(t *testing.T) {
	cause := stderrors.New("boom")
	wrapped := fmt.Errorf("handler: %w", Wrap(cause, CodeDatabaseError, "database error"))

	appErr := AsAppError(wrapped)
	require.NotNil(t, appErr)
	assert.Equal(t, CodeDatabaseError, appErr.Code)
	assert.ErrorIs(t, appErr, cause)
	assert.True(t, IsAppError(wrapped))

	unknown := AsAppError(cause)
	assert.Equal(t, CodeUnknown, unknown.Code)
	assert.False(t, IsAppError(cause))
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("login: %w", ErrInvalidCredentials.WithError(stderrors.New("hash mismatch")))
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.NotErrorIs(t, err, ErrUnauthorized)
}
