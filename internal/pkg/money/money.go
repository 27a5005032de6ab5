package money

import "fmt"

// Cents is a monetary amount in the minor currency unit.
// All pricing math happens on integers to avoid floating point drift.
type Cents int64

// RoundHalfUpRatio computes amount * num / den rounded half-up to the
// nearest minor unit; ties round toward positive infinity for negative
// amounts too. Percentage adjustments (taxes, percent coupons) must go
// through this exactly once so a breakdown carries no cumulative
// per-line rounding error.
func RoundHalfUpRatio(amount Cents, num, den int64) Cents {
	if den == 0 {
		return 0
	}
	if den < 0 {
		num, den = -num, -den
	}
	q := int64(amount)*num + den/2
	r := q / den
	if q%den != 0 && q < 0 {
		r--
	}
	return Cents(r)
}

// PercentBP applies a percentage expressed in basis points
// (e.g. 1200 = 12%).
func PercentBP(amount Cents, bp int64) Cents {
	return RoundHalfUpRatio(amount, bp, 10000)
}

// Format renders the amount as a decimal string, e.g. 168000 -> "1680.00".
func (c Cents) Format() string {
	v := int64(c)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}
