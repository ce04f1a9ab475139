package sanitizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/emailauth/pkg/sanitizer"
)

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "trims whitespace and converts to lowercase", input: "  USER@EXAMPLE.COM  ", expected: "user@example.com"},
		{name: "keeps dots and plus tags", input: "First.Last+Tag@Example.com", expected: "first.last+tag@example.com"},
		{name: "keeps invalid input otherwise intact", input: " Invalid-Email ", expected: "invalid-email"},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, sanitizer.NormalizeEmail(tt.input))
		})
	}
}

func TestMaskEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{input: "john@example.com", expected: "j***@example.com"},
		{input: "a@example.com", expected: "*@example.com"},
		{input: "ёжик@example.com", expected: "ё***@example.com"},
		{input: "notanemail", expected: "n********l"},
		{input: "@example.com", expected: "@**********m"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, sanitizer.MaskEmail(tt.input))
		})
	}
}

func TestMaskString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ab****gh", sanitizer.MaskString("abcdefgh", 2))
	assert.Equal(t, "****", sanitizer.MaskString("abcd", 2))
	assert.Equal(t, "a*c", sanitizer.MaskString("abc", -1))
	assert.Equal(t, "", sanitizer.MaskString("", 1))
}

func TestSingleLine(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Reset your password Bcc: x@y.z", sanitizer.SingleLine("Reset your\r\npassword\n\tBcc: x@y.z "))
	assert.Equal(t, "ab", sanitizer.SingleLine("a\x00b"))
}
