package receipt

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func sample() Receipt {
	return Receipt{
		Lines: []Line{
			{Name: "Espresso", Quantity: 2, UnitPrice: decimal.NewFromInt(150), LineTotal: decimal.NewFromInt(300)},
			{Name: "Latte", Quantity: 1, UnitPrice: decimal.NewFromInt(225), LineTotal: decimal.NewFromInt(225)},
		},
		Total:   decimal.NewFromInt(525),
		Payment: decimal.NewFromInt(600),
		Change:  decimal.NewFromInt(75),
	}
}

func TestFormat(t *testing.T) {
	want := "Receipt:\n" +
		"Espresso x2 - ₱300.00\n" +
		"Latte x1 - ₱225.00\n" +
		"\nTotal: ₱525.00" +
		"\nPayment: ₱600.00" +
		"\nChange: ₱75.00"
	require.Equal(t, want, Format(sample()))
}

func TestFormatNumberedWithCurrency(t *testing.T) {
	r := sample()
	r.Number = 12
	r.Payment = decimal.RequireFromString("600.005")
	r.Change = decimal.RequireFromString("75.005")

	got := Formatter{Currency: "$"}.Format(r)
	require.True(t, strings.HasPrefix(got, "Receipt:\nNo. 12\nEspresso x2"), got)
	require.Contains(t, got, "Payment: $600.01")
	require.Contains(t, got, "Change: $75.01")
}

func TestFormatIsDeterministic(t *testing.T) {
	r := sample()
	require.Equal(t, Format(r), Format(r))
}

func TestFormatEmptyReceipt(t *testing.T) {
	got := Format(Receipt{Total: decimal.Zero, Payment: decimal.NewFromInt(20), Change: decimal.NewFromInt(20)})
	require.Equal(t, "Receipt:\n\nTotal: ₱0.00\nPayment: ₱20.00\nChange: ₱20.00", got)
}

func TestUnstampedReceiptOmitsStampFields(t *testing.T) {
	body, err := json.Marshal(sample())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	require.NotContains(t, decoded, "issuedAt")
	require.NotContains(t, decoded, "number")
	require.NotContains(t, decoded, "registerId")
	require.Equal(t, "525", decoded["total"])
}

func TestStampedReceiptCarriesIssuedAt(t *testing.T) {
	r := sample()
	r.Number = 3
	r.RegisterID = "front"
	r.IssuedAt = time.Date(2024, time.May, 1, 8, 30, 0, 0, time.UTC)

	body, err := json.Marshal(r)
	require.NoError(t, err)
	require.Contains(t, string(body), `"issuedAt":"2024-05-01T08:30:00Z"`)
	require.Contains(t, string(body), `"number":3`)
}
