// normalize_test.go

package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "jane@example.com", NormalizeEmail("  Jane@Example.COM "))
	assert.Equal(t, "", NormalizeEmail("   "))
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "+254712345678", NormalizePhone(" +254 712-345-678 "))
	assert.Equal(t, "0712345678", NormalizePhone("(071) 234 5678"))
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("jane@example.com"))
	assert.True(t, IsValidEmail("Jane@Example.com"))
	assert.False(t, IsValidEmail("jane@"))
	assert.False(t, IsValidEmail("not-an-email"))
}

func TestIsValidPhone(t *testing.T) {
	assert.True(t, IsValidPhone("+254712345678"))
	assert.True(t, IsValidPhone("0712 345 678"))
	assert.False(t, IsValidPhone("abc"))
}

func TestClassifyIdentifier(t *testing.T) {
	normalized, kind := ClassifyIdentifier("Jane@Example.COM")
	assert.Equal(t, "jane@example.com", normalized)
	assert.Equal(t, "email", kind)

	normalized, kind = ClassifyIdentifier("+254 712 345 678")
	assert.Equal(t, "+254712345678", normalized)
	assert.Equal(t, "phone", kind)
}
