package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("disk gone")
	err := fmt.Errorf("reading upload: %w", Wrap(cause, CodeNotFound, "document file not found"))

	assert.True(t, errors.Is(err, cause))
	assert.True(t, Is(err))
	assert.True(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(err, CodeInternal))
	assert.Equal(t, CodeNotFound, CodeOf(err))
}

func TestCodeOfPlainError(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	assert.False(t, Is(errors.New("boom")))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeBadRequest:    http.StatusBadRequest,
		CodeValidation:    http.StatusBadRequest,
		CodeNotFound:      http.StatusNotFound,
		CodeUnprocessable: http.StatusUnprocessableEntity,
		CodeUnauthorized:  http.StatusUnauthorized,
		CodeTimeout:       http.StatusGatewayTimeout,
		CodeInternal:      http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, HTTPStatus(code), code)
	}
}
