package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeInvalid:       http.StatusBadRequest,
		CodeAlreadyExists: http.StatusBadRequest,
		CodeUnauthorized:  http.StatusUnauthorized,
		CodeForbidden:     http.StatusForbidden,
		CodeNotFound:      http.StatusNotFound,
		CodeUpstream:      http.StatusBadGateway,
		CodeInternal:      http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, HTTPStatus(New(code, "x")), string(code))
	}
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(fmt.Errorf("plain")))
}

func TestCodeSurvivesWrapping(t *testing.T) {
	base := New(CodeNotFound, "plant with ID 1 not found")
	wrapped := fmt.Errorf("service: %w", base)

	assert.True(t, IsCode(wrapped, CodeNotFound))
	assert.Equal(t, CodeNotFound, CodeOf(wrapped))
	assert.False(t, IsCode(wrapped, CodeInvalid))
}

func TestErrorString(t *testing.T) {
	err := Wrap(fmt.Errorf("boom"), CodeInternal, "failed to save")
	assert.Equal(t, "internal: failed to save: boom", err.Error())
	assert.Equal(t, "forbidden: Admin already exists", New(CodeForbidden, "Admin already exists").Error())
}
