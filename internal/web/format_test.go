package web

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatINR(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "₹0"},
		{"999", "₹999"},
		{"1000", "₹1,000"},
		{"125000", "₹1,25,000"},
		{"1234567.5", "₹12,34,567.50"},
		{"10000000", "₹1,00,00,000"},
		{"8000.05", "₹8,000.05"},
		{"-65000", "-₹65,000"},
		{"99.999", "₹100"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatINR(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestImageIndex(t *testing.T) {
	assert.Equal(t, 0, imageIndex(5, 0))
	assert.Equal(t, 1, imageIndex(3, 2))
	assert.Equal(t, 2, imageIndex(-1, 3))
	assert.Equal(t, 0, imageIndex(0, 1))
}

func TestDescriptionRenderer(t *testing.T) {
	d := newDescriptionRenderer()
	assert.Empty(t, d.Render("   "))
	assert.Contains(t, string(d.Render("Plain text.")), "<p>Plain text.</p>")
	assert.NotContains(t, string(d.Render(`<img src=x onerror="alert(1)">`)), "onerror")
}
