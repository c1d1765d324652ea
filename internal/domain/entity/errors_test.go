package entity

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		message  string
		expected string
	}{
		{
			name:     "simple validation error",
			field:    "sourceUrl",
			message:  "is required",
			expected: "validation error on field 'sourceUrl': is required",
		},
		{
			name:     "empty field name",
			field:    "",
			message:  "test message",
			expected: "validation error on field '': test message",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &ValidationError{Field: tt.field, Message: tt.message}
			assert.Equal(t, tt.expected, err.Error())
		})
	}
}

func TestValidationError_IsValidationFailed(t *testing.T) {
	err := fmt.Errorf("decode: %w", &ValidationError{Field: "url", Message: "bad"})
	assert.True(t, errors.Is(err, ErrValidationFailed))
	assert.False(t, errors.Is(fmt.Errorf("decode: %w", errors.New("bad")), ErrValidationFailed))
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "newsletter[0].categoryTitle", Message: "is required"},
		{Field: "newsletter[0].items[1].sourceType", Message: "must be one of YouTube, X, LinkedIn, Journal, Web"},
	}
	assert.Equal(t,
		"validation failed: newsletter[0].categoryTitle: is required; newsletter[0].items[1].sourceType: must be one of YouTube, X, LinkedIn, Journal, Web",
		errs.Error())
	assert.True(t, errors.Is(errs, ErrValidationFailed))
}
