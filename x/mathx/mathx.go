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

// Between reports lo <= v && v <= hi (order-insensitive).
func Between[T constraints.Ordered](v, lo, hi T) bool {
	if hi < lo {
		lo, hi = hi, lo
	}
	return v >= lo && v <= hi
}

// CeilDiv returns ceil(a/b) for positive integers.
func CeilDiv[T ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~int](a, b T) T {
	if b == 0 {
		return 0
	}
	return (a + b - 1) / b
}
