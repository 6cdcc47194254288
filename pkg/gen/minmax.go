package gen

import "cmp"

type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

func Clamp[T cmp.Ordered](v, min, max T) T {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// FloorDiv divides a by b, rounding towards negative infinity.
// b must be positive.
func FloorDiv[T Integer](a, b T) T {
	q := a / b
	if a%b != 0 && a < 0 {
		q--
	}
	return q
}

// Wrap returns v modulo n, in the range [0, n).
// If n is zero, the result is zero.
func Wrap[T Integer](v, n T) T {
	if n <= 0 {
		return 0
	}
	r := v % n
	if r < 0 {
		r += n
	}
	return r
}
