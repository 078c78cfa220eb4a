package money

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := map[string]struct {
		symbol  string
		in      string
		want    string
		wantErr bool
	}{
		"integer":              {in: "600", want: "600"},
		"two decimals":         {in: "525.50", want: "525.5"},
		"surrounding spaces":   {in: "  75.25 ", want: "75.25"},
		"currency prefix":      {in: "₱100.00", want: "100"},
		"configured currency":  {symbol: "$", in: "$600", want: "600"},
		"other currency":       {symbol: "$", in: "₱600", wantErr: true},
		"zero":                 {in: "0", want: "0"},
		"largest accepted":     {in: "999999999999.9999", want: "999999999999.9999"},
		"empty":                {in: "", wantErr: true},
		"only spaces":          {in: "   ", wantErr: true},
		"letters":              {in: "abc", wantErr: true},
		"trailing garbage":     {in: "12.5x", wantErr: true},
		"negative":             {in: "-1", wantErr: true},
		"plus sign":            {in: "+5", wantErr: true},
		"exponent":             {in: "1e3", wantErr: true},
		"huge exponent":        {in: "1e8000000", wantErr: true},
		"negative exponent":    {in: "5E-2", wantErr: true},
		"too many digits":      {in: strings.Repeat("9", 200), wantErr: true},
		"too many decimals":    {in: "1.00001", wantErr: true},
		"missing integer part": {in: ".5", wantErr: true},
		"dangling point":       {in: "12.", wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := Parse(tt.symbol, tt.in)
			if tt.wantErr {
				require.Error(t, err)
				require.True(t, errors.Is(err, ErrInvalidAmount))
				return
			}
			require.NoError(t, err)
			require.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestFormat(t *testing.T) {
	require.Equal(t, "₱525.00", Format(DefaultCurrency, decimal.NewFromInt(525)))
	require.Equal(t, "$0.10", Format("$", decimal.RequireFromString("0.1")))
	require.Equal(t, "₱0.13", Format(DefaultCurrency, decimal.RequireFromString("0.125")))
}

func TestRepeatedAdditionKeepsExactCents(t *testing.T) {
	sum := decimal.Zero
	tenCents := decimal.RequireFromString("0.10")
	for i := 0; i < 1000; i++ {
		sum = sum.Add(tenCents)
	}
	require.True(t, sum.Equal(decimal.NewFromInt(100)))
	require.Equal(t, "₱100.00", Format(DefaultCurrency, sum))
}

func TestParseErrorDoesNotEchoLongInput(t *testing.T) {
	_, err := Parse("", strings.Repeat("9", 200))
	require.ErrorIs(t, err, ErrInvalidAmount)
	require.Less(t, len(err.Error()), 100)
}
