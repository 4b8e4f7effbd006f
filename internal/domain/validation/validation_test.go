package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "collab-novel-api/pkg/errors"
)

func TestValidateUsername(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want bool
	}{
		{"valid", "validuser", true},
		{"underscore and digits", "user_01", true},
		{"min length", "abc", true},
		{"max length", strings.Repeat("a", 30), true},
		{"too short", "ab", false},
		{"too long", strings.Repeat("a", 31), false},
		{"hyphen", "bad-name", false},
		{"space", "bad name", false},
		{"empty", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ValidateUsername(tc.in))
		})
	}
}

func TestValidateEmailAddress(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"valid@example.com", true},
		{"first.last+tag@sub.example.org", true},
		{"invalid-email", false},
		{"user@", false},
		{"@example.com", false},
		{"", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ValidateEmailAddress(tc.in), "email %q", tc.in)
	}
}

func TestValidatePassword(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want bool
	}{
		{"valid", "Validpass1", true},
		{"exactly eight", "Abcdefg1", true},
		{"too short", "Vp1", false},
		{"no digit", "Validpass", false},
		{"no uppercase", "validpass1", false},
		{"no lowercase", "VALIDPASS1", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ValidatePassword(tc.in))
		})
	}
}

func TestValidateSignupReportsField(t *testing.T) {
	require.NoError(t, ValidateSignup("validuser", "valid@example.com", "Validpass1"))

	cases := []struct {
		username, email, password string
		field, message            string
	}{
		{"ab", "valid@example.com", "Validpass1", "username", "Invalid username"},
		{"validuser", "invalid-email", "Validpass1", "email", "Invalid email address"},
		{"validuser", "valid@example.com", "short", "password", "Invalid password"},
	}
	for _, tc := range cases {
		err := ValidateSignup(tc.username, tc.email, tc.password)
		require.Error(t, err)
		appErr := apperrors.AsAppError(err)
		assert.Equal(t, apperrors.CodeValidationFailed, appErr.Code)
		assert.Equal(t, tc.field, appErr.Field)
		assert.Equal(t, tc.message, appErr.Message)
	}
}
