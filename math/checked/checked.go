/*
Package checked implements basic arithmetic operations
with underflow and overflow checks.
*/
package checked

import (
	"errors"
	"math"
)

var ErrOverflow = errors.New("arithmetic overflow")

// AddUint8 returns a + b
// with an integer overflow check.
func AddUint8(a, b uint8) (sum uint8, ok bool) {
	if math.MaxUint8-a < b {
		return 0, false
	}
	return a + b, true
}

// SubUint8 returns a - b
// with an integer overflow check.
func SubUint8(a, b uint8) (diff uint8, ok bool) {
	if a < b {
		return 0, false
	}
	return a - b, true
}

// MulUint8 returns a * b
// with an integer overflow check.
func MulUint8(a, b uint8) (product uint8, ok bool) {
	if b > 0 && a > math.MaxUint8/b {
		return 0, false
	}
	return a * b, true
}

// AddUint16 returns a + b
// with an integer overflow check.
func AddUint16(a, b uint16) (sum uint16, ok bool) {
	if math.MaxUint16-a < b {
		return 0, false
	}
	return a + b, true
}

// SubUint16 returns a - b
// with an integer overflow check.
func SubUint16(a, b uint16) (diff uint16, ok bool) {
	if a < b {
		return 0, false
	}
	return a - b, true
}

// MulUint16 returns a * b
// with an integer overflow check.
func MulUint16(a, b uint16) (product uint16, ok bool) {
	if b > 0 && a > math.MaxUint16/b {
		return 0, false
	}
	return a * b, true
}

// AddUint32 returns a + b
// with an integer overflow check.
func AddUint32(a, b uint32) (sum uint32, ok bool) {
	if math.MaxUint32-a < b {
		return 0, false
	}
	return a + b, true
}

// SubUint32 returns a - b
// with an integer overflow check.
func SubUint32(a, b uint32) (diff uint32, ok bool) {
	if a < b {
		return 0, false
	}
	return a - b, true
}

// MulUint32 returns a * b
// with an integer overflow check.
func MulUint32(a, b uint32) (product uint32, ok bool) {
	if b > 0 && a > math.MaxUint32/b {
		return 0, false
	}
	return a * b, true
}

// LshiftUint32 returns a << b
// with an integer overflow check.
func LshiftUint32(a, b uint32) (result uint32, ok bool) {
	if b >= 32 {
		return 0, false
	}
	if a > math.MaxUint32>>uint(b) {
		return 0, false
	}
	return a << uint(b), true
}

// AddUint64 returns a + b
// with an integer overflow check.
func AddUint64(a, b uint64) (sum uint64, ok bool) {
	if math.MaxUint64-a < b {
		return 0, false
	}
	return a + b, true
}

// SubUint64 returns a - b
// with an integer overflow check.
func SubUint64(a, b uint64) (diff uint64, ok bool) {
	if a < b {
		return 0, false
	}
	return a - b, true
}

// MulUint64 returns a * b
// with an integer overflow check.
func MulUint64(a, b uint64) (product uint64, ok bool) {
	if b > 0 && a > math.MaxUint64/b {
		return 0, false
	}
	return a * b, true
}

// LshiftUint64 returns a << b
// with an integer overflow check.
func LshiftUint64(a, b uint64) (result uint64, ok bool) {
	if b >= 64 {
		return 0, false
	}
	if a > math.MaxUint64>>uint(b) {
		return 0, false
	}
	return a << uint(b), true
}
