package usecase

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"purchase_backend/internal/shared/apperr"
)

func TestValidateEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		email string
		valid bool
	}{
		{"a@x.com", true},
		{"user.name+tag@example.co.jp", true},
		{"first_last@sub.domain.org", true},
		{"", false},
		{"plainaddress", false},
		{"@example.com", false},
		{"user@", false},
		{"user@domain", false},
		{"user@domain.c", false},
		{"user name@example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.valid, ValidateEmail(tt.email))
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "user@example.com", NormalizeEmail("  User@Example.COM "))
}

// TestValidatePassword は強度要件を満たさないパスワードが常に拒否されることを検証します。
func TestValidatePassword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		password string
		reason   string
	}{
		{"valid", "Abcd1234", ""},
		{"valid with symbols", "P@ssw0rd!", ""},
		{"too short", "Ab1", "password must be at least 8 characters long"},
		{"seven chars", "Abcd123", "password must be at least 8 characters long"},
		{"no uppercase", "abcd1234", "password must contain at least one uppercase letter"},
		{"no lowercase", "ABCD1234", "password must contain at least one lowercase letter"},
		{"no digit", "Abcdefgh", "password must contain at least one digit"},
		{"empty", "", "password must be at least 8 characters long"},
		{"too long for bcrypt", "Abcd1234" + strings.Repeat("x", 65), "password must be at most 72 bytes long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidatePassword(tt.password)
			if tt.reason == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.reason)
			assert.True(t, errors.Is(err, apperr.ErrValidation), "should be a validation error")
		})
	}
}
