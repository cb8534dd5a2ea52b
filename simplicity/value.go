package simplicity

import "encoding/hex"

// A Value is a concrete inhabitant of a structural type: the unit
// value, a tagged left or right injection, or a pair.
type Value struct {
	kind valueKind
	a, b *Value
}

type valueKind uint8

const (
	unitVal valueKind = iota
	leftVal
	rightVal
	pairVal
)

var unitValue = &Value{kind: unitVal}

// UnitValue returns the unit value.
func UnitValue() *Value { return unitValue }

// LeftValue returns the left injection of v.
func LeftValue(v *Value) *Value { return &Value{kind: leftVal, a: v} }

// RightValue returns the right injection of v.
func RightValue(v *Value) *Value { return &Value{kind: rightVal, a: v} }

// PairValue returns the pair of a and b.
func PairValue(a, b *Value) *Value { return &Value{kind: pairVal, a: a, b: b} }

// BitValue returns the bit b as a value of type 1+1:
// false is the left injection of unit, true the right.
func BitValue(b bool) *Value {
	if b {
		return RightValue(unitValue)
	}
	return LeftValue(unitValue)
}

// WordValue encodes x as a word of the given bit width (a power of two
// up to 64): a single bit, or a pair of half-width words with the high
// half on the left.
func WordValue(bits uint, x uint64) *Value {
	if bits == 1 {
		return BitValue(x&1 == 1)
	}
	half := bits / 2
	return PairValue(WordValue(half, x>>half), WordValue(half, x&(uint64(1)<<half-1)))
}

// WordValueFromBytes encodes big-endian bytes as a word of len(b)*8
// bits. len(b) must be a power of two.
func WordValueFromBytes(b []byte) *Value {
	if len(b) == 1 {
		return WordValue(8, uint64(b[0]))
	}
	half := len(b) / 2
	return PairValue(WordValueFromBytes(b[:half]), WordValueFromBytes(b[half:]))
}

// Uint64 decodes v as a word of the given bit width.
func (v *Value) Uint64(bits uint) (uint64, bool) {
	if bits == 1 {
		switch v.kind {
		case leftVal:
			return 0, v.a.kind == unitVal
		case rightVal:
			return 1, v.a.kind == unitVal
		}
		return 0, false
	}
	if v.kind != pairVal {
		return 0, false
	}
	half := bits / 2
	hi, ok := v.a.Uint64(half)
	if !ok {
		return 0, false
	}
	lo, ok := v.b.Uint64(half)
	if !ok {
		return 0, false
	}
	return hi<<half | lo, true
}

// Bytes decodes v as a word of bits/8 big-endian bytes.
func (v *Value) Bytes(bits uint) ([]byte, bool) {
	if bits <= 64 {
		x, ok := v.Uint64(bits)
		if !ok {
			return nil, false
		}
		n := bits / 8
		out := make([]byte, n)
		for i := uint(0); i < n; i++ {
			out[n-1-i] = byte(x >> (8 * i))
		}
		return out, true
	}
	if v.kind != pairVal {
		return nil, false
	}
	hi, ok := v.a.Bytes(bits / 2)
	if !ok {
		return nil, false
	}
	lo, ok := v.b.Bytes(bits / 2)
	if !ok {
		return nil, false
	}
	return append(hi, lo...), true
}

// Matches reports whether v inhabits the type t.
func (v *Value) Matches(t *Type) bool {
	switch v.kind {
	case unitVal:
		return t.kind == unitKind
	case leftVal:
		return t.kind == sumKind && v.a.Matches(t.left)
	case rightVal:
		return t.kind == sumKind && v.a.Matches(t.right)
	default:
		return t.kind == prodKind && v.a.Matches(t.left) && v.b.Matches(t.right)
	}
}

// Equal reports whether v and o are structurally identical.
func (v *Value) Equal(o *Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case unitVal:
		return true
	case pairVal:
		return v.a.Equal(o.a) && v.b.Equal(o.b)
	default:
		return v.a.Equal(o.a)
	}
}

// key returns a canonical encoding of v, used for hash-consing and
// commitment hashing of constant nodes.
func (v *Value) key() string {
	switch v.kind {
	case unitVal:
		return "u"
	case leftVal:
		return "l" + v.a.key()
	case rightVal:
		return "r" + v.a.key()
	default:
		return "p" + v.a.key() + v.b.key()
	}
}

func (v *Value) String() string {
	// Compact bit-level rendering, readable enough for test failures.
	return hexOrKey(v)
}

func hexOrKey(v *Value) string {
	for _, bits := range []uint{8, 16, 32, 64} {
		if x, ok := v.Uint64(bits); ok {
			b := make([]byte, bits/8)
			for i := uint(0); i < bits/8; i++ {
				b[bits/8-1-i] = byte(x >> (8 * i))
			}
			return "0x" + hex.EncodeToString(b)
		}
	}
	return v.key()
}
