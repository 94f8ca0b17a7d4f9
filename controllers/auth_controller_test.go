package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidUsername(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"abc", true},
		{"香客小王", true},
		{"user-01", true},
		{"user_01", false},
		{"user 01", false},
		{"user@x", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.valid, validUsername(tt.name), tt.name)
	}
}

func TestValidPassword(t *testing.T) {
	assert.True(t, validPassword("abc123-_.A"))
	assert.False(t, validPassword("abc 123"))
	assert.False(t, validPassword("密码123456"))
}

func TestSanitizeUsername(t *testing.T) {
	assert.Equal(t, "john_doe", sanitizeUsername("John.Doe"))
	assert.Equal(t, "jane", sanitizeUsername("  Jane  "))
	assert.Equal(t, "", sanitizeUsername("小明"))
	assert.Equal(t, "a_b", sanitizeUsername("_a-b_"))
}

func TestFallback(t *testing.T) {
	assert.Equal(t, "x", fallback("", "  ", "x", "y"))
	assert.Equal(t, "", fallback("", " "))
}
