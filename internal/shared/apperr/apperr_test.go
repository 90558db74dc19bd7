package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errEmailTaken = New(ErrConflict, "email already exists")

func TestStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil", nil, http.StatusOK},
		{"validation kind", ErrValidation, http.StatusBadRequest},
		{"validation error", New(ErrValidation, "product_name is required"), http.StatusBadRequest},
		{"auth", New(ErrAuth, "invalid token"), http.StatusUnauthorized},
		{"wrapped conflict", fmt.Errorf("create user: %w", errEmailTaken), http.StatusConflict},
		{"double wrapped not found", fmt.Errorf("get: %w", fmt.Errorf("repo: %w", New(ErrNotFound, "invoice not found"))), http.StatusNotFound},
		{"upstream", Newf(ErrUpstream, "gemini returned status %d", 503), http.StatusBadGateway},
		{"unclassified", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, Status(tt.err))
		})
	}
}

func TestMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "email already exists", Message(fmt.Errorf("create user: %w", errEmailTaken)))
	assert.Equal(t, "internal server error", Message(errors.New("dial tcp: connection refused")))
	assert.True(t, errors.Is(fmt.Errorf("wrap: %w", errEmailTaken), errEmailTaken))
	assert.True(t, errors.Is(errEmailTaken, ErrConflict))
}
