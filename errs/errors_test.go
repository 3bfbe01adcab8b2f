package errs

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCodeAndMessage(t *testing.T) {
	err := Errorf(ENOTFOUND, "The recipe does not exist.")
	assert.Equal(t, ENOTFOUND, ErrorCode(err))
	assert.Equal(t, "The recipe does not exist.", ErrorMessage(err))

	// Wrapped application errors still unwrap to their code.
	wrapped := fmt.Errorf("searching: %w", err)
	assert.Equal(t, ENOTFOUND, ErrorCode(wrapped))

	// Anything else is an internal error with a hidden cause.
	plain := fmt.Errorf("disk on fire")
	assert.Equal(t, EINTERNAL, ErrorCode(plain))
	assert.Equal(t, "Internal error.", ErrorMessage(plain))

	assert.Equal(t, "", ErrorCode(nil))
}

func TestErrorStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, ErrorStatusCode(EINVALID))
	assert.Equal(t, http.StatusUnauthorized, ErrorStatusCode(EUNAUTHORIZED))
	assert.Equal(t, http.StatusForbidden, ErrorStatusCode(EFORBIDDEN))
	assert.Equal(t, http.StatusNotFound, ErrorStatusCode(ENOTFOUND))
	assert.Equal(t, http.StatusInternalServerError, ErrorStatusCode(EINTERNAL))
	assert.Equal(t, http.StatusInternalServerError, ErrorStatusCode("mystery"))
}
