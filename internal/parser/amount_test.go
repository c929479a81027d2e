package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/insightdelivered/card-statement-parser/internal/models"
)

func TestNormalizeAmount(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"₹25,625.00", "25625.00"},
		{"Rs. 1,234.50", "1234.50"},
		{"Rs 99", "99"},
		{"INR 1,50,000", "150000"},
		{"$5.67", "5.67"},
		{"USD 12.00", "12.00"},
		{"1,234", "1234"},
		{"500.00 Cr", "500.00"},
		{"1,290.00 DR", "1290.00"},
		{"1.234.56", "1234.56"},
		{"  42 . 10 ", "42.10"},
		{"abc", models.NotFound},
		{"", models.NotFound},
		{".", models.NotFound},
		{models.NotFound, models.NotFound},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeAmount(tt.input))
		})
	}
}

func TestNormalizeAmountIdempotent(t *testing.T) {
	inputs := []string{"₹25,625.00", "Rs. 1,234.50", "$1,000,000.99", "12", "x", models.NotFound, "3.4.5"}
	for _, in := range inputs {
		once := NormalizeAmount(in)
		assert.Equal(t, once, NormalizeAmount(once), "input %q", in)
	}
}

func TestIsPositiveAmount(t *testing.T) {
	assert.True(t, isPositiveAmount("0.01"))
	assert.False(t, isPositiveAmount("0.00"))
	assert.False(t, isPositiveAmount(models.NotFound))
}
