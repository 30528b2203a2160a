package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorTypePredicates(t *testing.T) {
	assert.True(t, IsNotFound(NewNotFoundError("bookshop")))
	assert.True(t, IsValidation(NewValidationError("bad field")))
	assert.True(t, IsDatabase(NewDatabaseError("get", errors.New("boom"))))

	assert.False(t, IsNotFound(NewValidationError("bad field")))
	assert.False(t, IsNotFound(errors.New("plain")))
	assert.False(t, IsNotFound(nil))
}

func TestHTTPStatusMapping(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, NewValidationError("x").HTTPStatus)
	assert.Equal(t, http.StatusNotFound, NewNotFoundError("x").HTTPStatus)
	assert.Equal(t, http.StatusUnauthorized, NewUnauthorizedError("").HTTPStatus)
	assert.Equal(t, http.StatusForbidden, NewForbiddenError("").HTTPStatus)
	assert.Equal(t, http.StatusInternalServerError, NewDatabaseError("op", errors.New("x")).HTTPStatus)
	assert.Equal(t, http.StatusServiceUnavailable, NewUnavailableError("dynamodb").HTTPStatus)
}

func TestGetAppErrorThroughWrapping(t *testing.T) {
	inner := NewNotFoundError("bookshop")
	wrapped := fmt.Errorf("handler: %w", inner)

	appErr := GetAppError(wrapped)
	assert.NotNil(t, appErr)
	assert.Equal(t, ErrorTypeNotFound, appErr.Type)
	assert.True(t, IsNotFound(wrapped))
}

func TestWithCauseUnwraps(t *testing.T) {
	cause := errors.New("socket closed")
	err := NewInternalError("marshal failed").WithCause(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "socket closed")
}

func TestWrapPreservesType(t *testing.T) {
	err := Wrap(NewValidationError("bad payload"), "patch")
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "patch")

	err = Wrap(errors.New("plain"), "context")
	assert.True(t, IsType(err, ErrorTypeInternal))

	assert.Nil(t, Wrap(nil, "context"))
}
