package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_ErrorAndUnwrap(t *testing.T) {
	inner := errors.New("boom")
	appErr := Internal(inner)

	assert.Contains(t, appErr.Error(), "INTERNAL_ERROR")
	assert.Contains(t, appErr.Error(), "boom")
	assert.True(t, errors.Is(appErr, inner))
}

func TestNotFound_MatchesSentinel(t *testing.T) {
	err := NotFound("product", "p-1")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.Contains(t, err.Message, "p-1")
}

func TestUnavailable_MatchesSentinel(t *testing.T) {
	err := Unavailable("elasticsearch", errors.New("connection refused"))
	assert.True(t, errors.Is(err, ErrServiceUnavail))
	assert.Equal(t, http.StatusServiceUnavailable, err.Status)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"app error", InvalidInput("bad"), http.StatusBadRequest},
		{"wrapped not found", fmt.Errorf("lookup: %w", ErrNotFound), http.StatusNotFound},
		{"wrapped invalid input", fmt.Errorf("parse: %w", ErrInvalidInput), http.StatusBadRequest},
		{"wrapped unavailable", fmt.Errorf("ping: %w", ErrServiceUnavail), http.StatusServiceUnavailable},
		{"unknown", errors.New("mystery"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
