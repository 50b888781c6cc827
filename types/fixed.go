package types

import (
	"math"

	"ledconfig-go/x/mathx"
)

// Fixed is a signed Q16.16 fixed-point number.
type Fixed int32

const FixedOne Fixed = 1 << 16

// FixedFromFloat rounds f to the nearest Fixed, saturating at the int32 range.
func FixedFromFloat(f float64) Fixed {
	v := math.Round(f * float64(FixedOne))
	v = mathx.Clamp(v, math.MinInt32, math.MaxInt32)
	return Fixed(v)
}

// FixedFromInt converts n without loss for |n| < 32768.
func FixedFromInt(n int16) Fixed { return Fixed(int32(n) << 16) }

// Float returns the real value; for diagnostics and host tools only.
func (x Fixed) Float() float64 { return float64(x) / float64(FixedOne) }
