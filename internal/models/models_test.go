package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestEffectivePrice(t *testing.T) {
	list := decimal.RequireFromString("50.00")

	p := Product{Price: list}
	require.True(t, p.EffectivePrice().Equal(list))

	p.SalePrice = decimal.NewNullDecimal(decimal.RequireFromString("39.99"))
	require.True(t, p.EffectivePrice().Equal(decimal.RequireFromString("39.99")))

	// A sale price at or above the list price is ignored.
	p.SalePrice = decimal.NewNullDecimal(decimal.RequireFromString("50.00"))
	require.True(t, p.EffectivePrice().Equal(list))

	p.SalePrice = decimal.NullDecimal{}
	require.True(t, p.EffectivePrice().Equal(list))
}

func TestAddressScanRoundTrip(t *testing.T) {
	a := Address{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Street:    "1 Analytical Way",
		City:      "London",
		State:     "LDN",
		Zip:       "10001",
	}

	v, err := a.Value()
	require.NoError(t, err)

	var got Address
	require.NoError(t, got.Scan(v))
	require.Equal(t, a, got)

	require.NoError(t, got.Scan(nil))
	require.Equal(t, Address{}, got)
}
