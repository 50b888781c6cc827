// Package mathx holds the small generic numeric helpers the firmware shares.
package mathx

import "golang.org/x/exp/constraints"

// Clamp limits v to [lo, hi]. If lo > hi, the bounds are swapped.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if hi < lo {
		lo, hi = hi, lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func Min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

// FloorDiv returns a/b for unsigned integers, 0 when b is 0.
func FloorDiv[T constraints.Unsigned](a, b T) T {
	if b == 0 {
		return 0
	}
	return a / b
}
