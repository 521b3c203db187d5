package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain digits", "15551234567", "15551234567"},
		{"plus prefix", "+15551234567", "15551234567"},
		{"formatted", "+1 (555) 123-4567", "15551234567"},
		{"dots and spaces", "555.123.4567", "5551234567"},
		{"letters stripped", "555-CALL-NOW", "555"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizePhone(tt.input))
		})
	}
}

func TestIsValidPhone(t *testing.T) {
	assert.True(t, IsValidPhone("+1 (555) 123-4567"))
	assert.True(t, IsValidPhone("5551234567"))
	assert.False(t, IsValidPhone("123456789"))
	assert.False(t, IsValidPhone(""))
	assert.False(t, IsValidPhone("555-HELP"))
}
