package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/avelkin/storefront/internal/models"
)

func line(price string, qty uint) models.CartItem {
	return models.CartItem{Price: decimal.RequireFromString(price), Quantity: qty}
}

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name     string
		lines    []models.CartItem
		subtotal string
		tax      string
		shipping string
		total    string
	}{
		{
			name:     "free shipping over threshold",
			lines:    []models.CartItem{line("60.00", 2)},
			subtotal: "120.00",
			tax:      "9.60",
			shipping: "0",
			total:    "129.60",
		},
		{
			name:     "flat shipping under threshold",
			lines:    []models.CartItem{line("30.00", 1)},
			subtotal: "30.00",
			tax:      "2.40",
			shipping: "10",
			total:    "42.40",
		},
		{
			name:     "subtotal exactly at threshold still pays shipping",
			lines:    []models.CartItem{line("50.00", 2)},
			subtotal: "100.00",
			tax:      "8.00",
			shipping: "10",
			total:    "116.00",
		},
		{
			name:     "empty cart",
			lines:    nil,
			subtotal: "0",
			tax:      "0",
			shipping: "10",
			total:    "10",
		},
		{
			name:     "mixed lines",
			lines:    []models.CartItem{line("19.99", 3), line("5.25", 1)},
			subtotal: "65.22",
			tax:      "5.22",
			shipping: "10",
			total:    "80.44",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTotals(tt.lines)
			require.True(t, got.Subtotal.Equal(decimal.RequireFromString(tt.subtotal)), "subtotal %s", got.Subtotal)
			require.True(t, got.Tax.Equal(decimal.RequireFromString(tt.tax)), "tax %s", got.Tax)
			require.True(t, got.Shipping.Equal(decimal.RequireFromString(tt.shipping)), "shipping %s", got.Shipping)
			require.True(t, got.Total.Equal(decimal.RequireFromString(tt.total)), "total %s", got.Total)
		})
	}
}

func TestComputeTotalsIdentity(t *testing.T) {
	// The persisted breakdown must reconcile exactly, whatever the prices.
	lines := []models.CartItem{line("0.01", 7), line("3.33", 2), line("99.99", 1)}
	got := ComputeTotals(lines)
	require.True(t, got.Total.Equal(got.Subtotal.Add(got.Tax).Add(got.Shipping)))
}

func TestComputeTotalsPure(t *testing.T) {
	lines := []models.CartItem{line("10.00", 2)}
	before := lines[0]
	_ = ComputeTotals(lines)
	require.Equal(t, before, lines[0])
}
