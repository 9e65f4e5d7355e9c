// Package fixed provides the Q16.16 fixed-point arithmetic and the
// angle-indexed trigonometry tables used by the renderer and the automap.
package fixed

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Fixed is a signed Q16.16 fixed-point number.
type Fixed int32

const (
	FracBits = 16
	FracUnit = Fixed(1 << FracBits)

	MaxFixed = Fixed(math.MaxInt32)
	MinFixed = Fixed(math.MinInt32)
)

// FromInt converts an integer to fixed point.
func FromInt[T constraints.Integer](n T) Fixed {
	return Fixed(int32(n) << FracBits)
}

// FromFloat converts a float to fixed point, truncating toward zero.
func FromFloat(f float64) Fixed {
	return Fixed(f * float64(FracUnit))
}

// Int returns the integer part (arithmetic shift, rounds toward -inf).
func (f Fixed) Int() int {
	return int(f >> FracBits)
}

// Float64 converts to a float for diagnostics and setup-time math.
func (f Fixed) Float64() float64 {
	return float64(f) / float64(FracUnit)
}

// Mul multiplies two fixed-point values with a 64-bit intermediate.
func Mul(a, b Fixed) Fixed {
	return Fixed((int64(a) * int64(b)) >> FracBits)
}

// Div divides a by b. Quotients that do not fit saturate to MaxFixed or
// MinFixed depending on the sign of the result.
func Div(a, b Fixed) Fixed {
	if Abs(a)>>14 >= Abs(b) {
		if (a ^ b) < 0 {
			return MinFixed
		}
		return MaxFixed
	}
	return Fixed((int64(a) << FracBits) / int64(b))
}

// Reciprocal returns 1/s.
//
// The round trip Reciprocal(Reciprocal(s)) never undershoots s and exceeds
// it by at most 1 + s*s/2^32 units; for s <= FracUnit that is one unit.
func Reciprocal(s Fixed) Fixed {
	return Div(FracUnit, s)
}

// Abs returns the absolute value of n.
func Abs[T constraints.Signed](n T) T {
	if n < 0 {
		return -n
	}
	return n
}

// Clamp limits v to [lo, hi].
func Clamp[T constraints.Integer](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
