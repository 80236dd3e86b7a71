package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_IsMatchesByCode(t *testing.T) {
	custom := ErrNotFound.WithMessage("Order not found")

	assert.True(t, errors.Is(custom, ErrNotFound))
	assert.True(t, errors.Is(fmt.Errorf("wrapped: %w", custom), ErrNotFound))
	assert.False(t, errors.Is(custom, ErrInvalidState))
	assert.Equal(t, "Order not found", custom.Error())
	assert.Equal(t, "Resource not found", ErrNotFound.Error(), "original must stay untouched")
}

func TestDomainError_WithField(t *testing.T) {
	err := NewFieldError("password", "Passwords do not match.")
	assert.Equal(t, "VALIDATION_ERROR", err.Code)
	assert.Equal(t, "password", err.Field)

	moved := ErrInvalidInput.WithField("product_id")
	assert.Equal(t, "product_id", moved.Field)
	assert.Empty(t, ErrInvalidInput.Field)
}
