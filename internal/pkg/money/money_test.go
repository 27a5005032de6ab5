package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundHalfUpRatio(t *testing.T) {
	cases := []struct {
		name     string
		amount   Cents
		num, den int64
		want     Cents
	}{
		{"Exact", 10000, 1, 2, 5000},
		{"Rounds Up At Half", 101, 1, 2, 51},
		{"Rounds Down Below Half", 1004, 1, 10, 100},
		{"Rounds Up Above Half", 1005, 1, 10, 101},
		{"Negative Half Rounds Up", -101, 1, 2, -50},
		{"Negative Rounds Down Below Half", -106, 1, 10, -11},
		{"Negative Exact", -104, 1, 2, -52},
		{"Zero Denominator", 100, 1, 0, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, RoundHalfUpRatio(tc.amount, tc.num, tc.den))
		})
	}
}

func TestPercentBP(t *testing.T) {
	// 12% of $1500.00
	assert.Equal(t, Cents(18000), PercentBP(150000, 1200))
	// 8.75% of $123.45 = 10.801875 -> 10.80
	assert.Equal(t, Cents(1080), PercentBP(12345, 875))
	assert.Equal(t, Cents(0), PercentBP(150000, 0))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "1680.00", Cents(168000).Format())
	assert.Equal(t, "0.05", Cents(5).Format())
	assert.Equal(t, "-12.30", Cents(-1230).Format())
}
