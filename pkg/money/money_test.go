package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentOf(t *testing.T) {
	tests := []struct {
		name     string
		percent  string
		amount   Cents
		expected Cents
	}{
		{name: "sales tax on 260.00", percent: "8.9", amount: 26000, expected: 2314},
		{name: "half deposit of odd cents rounds half up", percent: "50", amount: 28315, expected: 14158},
		{name: "zero percent", percent: "0", amount: 99999, expected: 0},
		{name: "full amount", percent: "100", amount: 12345, expected: 12345},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePercent(tt.percent)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, p.Of(tt.amount))
		})
	}
}

func TestFromDecimalString(t *testing.T) {
	c, err := FromDecimalString("283.14")
	require.NoError(t, err)
	assert.Equal(t, Cents(28314), c)

	c, err = FromDecimalString("200")
	require.NoError(t, err)
	assert.Equal(t, Cents(20000), c)

	_, err = FromDecimalString("1.005")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = FromDecimalString("abc")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "283.14", Cents(28314).String())
	assert.Equal(t, "$141.57", Format(14157, "usd"))
	assert.Equal(t, "-$0.05", Format(-5, "USD"))
	assert.Equal(t, "10.00 EUR", Format(1000, "eur"))
}
