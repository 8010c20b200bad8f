package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorWrapping(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := fmt.Errorf("failed to create record: %w", Unavailable("store", cause))

	appErr, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, ErrUnavailable, appErr.Code)
	assert.Equal(t, "store unavailable: connection refused", appErr.Error())
	assert.ErrorIs(t, err, cause)

	_, ok = As(cause)
	assert.False(t, ok)
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, NotFound("patient", nil).Code.HTTPStatus())
	assert.Equal(t, http.StatusBadRequest, BadRequest("bad", nil).Code.HTTPStatus())
	assert.Equal(t, http.StatusUnauthorized, Unauthorized(nil).Code.HTTPStatus())
	assert.Equal(t, http.StatusConflict, Conflict("dup", nil).Code.HTTPStatus())
	assert.Equal(t, http.StatusBadGateway, Unavailable("store", nil).Code.HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, Internal(nil).Code.HTTPStatus())
}
