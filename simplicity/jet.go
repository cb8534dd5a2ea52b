package simplicity

import (
	"crypto/sha256"
	"fmt"
	"math/bits"

	"github.com/coremoon/SimplicityHL/errors"
	"github.com/coremoon/SimplicityHL/math/checked"
)

// ErrAssertionFailed is the root of execution failures raised by the
// verify jet and by assert nodes whose pruned branch is taken.
var ErrAssertionFailed = errors.New("assertion failed")

// ErrBadJetInput indicates a jet input value that does not inhabit the
// jet's domain. Construction-time type discipline makes this
// unreachable for well-formed graphs.
var ErrBadJetInput = errors.New("malformed jet input")

// A Jet is a primitive operation with a fixed, statically known type
// signature, treated as an opaque leaf by the compiler.
type Jet struct {
	Name string
	Dom  *Type
	Cod  *Type
	fn   func(*Environ, *Value) (*Value, error)
}

var jetsByName = make(map[string]*Jet)

// LookupJet returns the named jet, or nil.
func LookupJet(name string) *Jet { return jetsByName[name] }

func defineJet(name string, dom, cod *Type, fn func(*Environ, *Value) (*Value, error)) {
	jetsByName[name] = &Jet{Name: name, Dom: dom, Cod: cod, fn: fn}
}

// splitArgs decodes a two-argument jet input into its halves.
func splitArgs(v *Value) (*Value, *Value, error) {
	if v.kind != pairVal {
		return nil, nil, ErrBadJetInput
	}
	return v.a, v.b, nil
}

// wordArgs decodes a (uN, uN) jet input.
func wordArgs(v *Value, w uint) (uint64, uint64, error) {
	a, b, err := splitArgs(v)
	if err != nil {
		return 0, 0, err
	}
	x, ok := a.Uint64(w)
	if !ok {
		return 0, 0, ErrBadJetInput
	}
	y, ok := b.Uint64(w)
	if !ok {
		return 0, 0, ErrBadJetInput
	}
	return x, y, nil
}

func addCarries(w uint, a, b uint64) bool {
	switch w {
	case 8:
		_, ok := checked.AddUint8(uint8(a), uint8(b))
		return !ok
	case 16:
		_, ok := checked.AddUint16(uint16(a), uint16(b))
		return !ok
	case 32:
		_, ok := checked.AddUint32(uint32(a), uint32(b))
		return !ok
	default:
		_, ok := checked.AddUint64(a, b)
		return !ok
	}
}

func subBorrows(w uint, a, b uint64) bool {
	switch w {
	case 8:
		_, ok := checked.SubUint8(uint8(a), uint8(b))
		return !ok
	case 16:
		_, ok := checked.SubUint16(uint16(a), uint16(b))
		return !ok
	case 32:
		_, ok := checked.SubUint32(uint32(a), uint32(b))
		return !ok
	default:
		_, ok := checked.SubUint64(a, b)
		return !ok
	}
}

func init() {
	bit := WordType(1)
	u32 := WordType(32)
	u256 := WordType(256)

	defineJet("verify", bit, unitType, func(_ *Environ, v *Value) (*Value, error) {
		x, ok := v.Uint64(1)
		if !ok {
			return nil, ErrBadJetInput
		}
		if x == 0 {
			return nil, errors.Wrap(ErrAssertionFailed, "jet verify")
		}
		return unitValue, nil
	})

	defineJet("not", bit, bit, func(_ *Environ, v *Value) (*Value, error) {
		x, ok := v.Uint64(1)
		if !ok {
			return nil, ErrBadJetInput
		}
		return BitValue(x == 0), nil
	})

	for _, name := range []string{"and", "or", "xor"} {
		name := name
		defineJet(name, ProdType(bit, bit), bit, func(_ *Environ, v *Value) (*Value, error) {
			x, y, err := wordArgs(v, 1)
			if err != nil {
				return nil, err
			}
			switch name {
			case "and":
				return BitValue(x&y == 1), nil
			case "or":
				return BitValue(x|y == 1), nil
			default:
				return BitValue(x^y == 1), nil
			}
		})
	}

	for _, w := range []uint{8, 16, 32, 64} {
		w := w
		uN := WordType(w)
		pairN := ProdType(uN, uN)
		mask := uint64(1)<<(w-1)<<1 - 1 // avoids the w == 64 shift overflow
		suffix := fmt.Sprintf("_%d", w)

		defineJet("eq"+suffix, pairN, bit, func(_ *Environ, v *Value) (*Value, error) {
			x, y, err := wordArgs(v, w)
			if err != nil {
				return nil, err
			}
			return BitValue(x == y), nil
		})
		defineJet("lt"+suffix, pairN, bit, func(_ *Environ, v *Value) (*Value, error) {
			x, y, err := wordArgs(v, w)
			if err != nil {
				return nil, err
			}
			return BitValue(x < y), nil
		})
		defineJet("le"+suffix, pairN, bit, func(_ *Environ, v *Value) (*Value, error) {
			x, y, err := wordArgs(v, w)
			if err != nil {
				return nil, err
			}
			return BitValue(x <= y), nil
		})
		defineJet("add"+suffix, pairN, ProdType(bit, uN), func(_ *Environ, v *Value) (*Value, error) {
			x, y, err := wordArgs(v, w)
			if err != nil {
				return nil, err
			}
			return PairValue(BitValue(addCarries(w, x, y)), WordValue(w, (x+y)&mask)), nil
		})
		defineJet("subtract"+suffix, pairN, ProdType(bit, uN), func(_ *Environ, v *Value) (*Value, error) {
			x, y, err := wordArgs(v, w)
			if err != nil {
				return nil, err
			}
			return PairValue(BitValue(subBorrows(w, x, y)), WordValue(w, (x-y)&mask)), nil
		})
		defineJet("multiply"+suffix, pairN, WordType(2*w), func(_ *Environ, v *Value) (*Value, error) {
			x, y, err := wordArgs(v, w)
			if err != nil {
				return nil, err
			}
			if w == 64 {
				hi, lo := bits.Mul64(x, y)
				return PairValue(WordValue(64, hi), WordValue(64, lo)), nil
			}
			return WordValue(2*w, x*y), nil
		})
		defineJet("and"+suffix, pairN, uN, func(_ *Environ, v *Value) (*Value, error) {
			x, y, err := wordArgs(v, w)
			if err != nil {
				return nil, err
			}
			return WordValue(w, x&y), nil
		})
		defineJet("or"+suffix, pairN, uN, func(_ *Environ, v *Value) (*Value, error) {
			x, y, err := wordArgs(v, w)
			if err != nil {
				return nil, err
			}
			return WordValue(w, x|y), nil
		})
		defineJet("xor"+suffix, pairN, uN, func(_ *Environ, v *Value) (*Value, error) {
			x, y, err := wordArgs(v, w)
			if err != nil {
				return nil, err
			}
			return WordValue(w, x^y), nil
		})
		defineJet("complement"+suffix, uN, uN, func(_ *Environ, v *Value) (*Value, error) {
			x, ok := v.Uint64(w)
			if !ok {
				return nil, ErrBadJetInput
			}
			return WordValue(w, ^x&mask), nil
		})
		defineJet("min"+suffix, pairN, uN, func(_ *Environ, v *Value) (*Value, error) {
			x, y, err := wordArgs(v, w)
			if err != nil {
				return nil, err
			}
			if y < x {
				x = y
			}
			return WordValue(w, x), nil
		})
		defineJet("max"+suffix, pairN, uN, func(_ *Environ, v *Value) (*Value, error) {
			x, y, err := wordArgs(v, w)
			if err != nil {
				return nil, err
			}
			if y > x {
				x = y
			}
			return WordValue(w, x), nil
		})
	}

	// Wide equality works structurally, without decoding.
	for _, w := range []uint{128, 256} {
		uN := WordType(w)
		defineJet(fmt.Sprintf("eq_%d", w), ProdType(uN, uN), bit, func(_ *Environ, v *Value) (*Value, error) {
			a, b, err := splitArgs(v)
			if err != nil {
				return nil, err
			}
			return BitValue(a.Equal(b)), nil
		})
	}

	defineJet("sha2_256", u256, u256, func(_ *Environ, v *Value) (*Value, error) {
		b, ok := v.Bytes(256)
		if !ok {
			return nil, ErrBadJetInput
		}
		sum := sha256.Sum256(b)
		return WordValueFromBytes(sum[:]), nil
	})

	defineJet("lock_time", unitType, u32, func(env *Environ, _ *Value) (*Value, error) {
		return WordValue(32, uint64(env.LockTime)), nil
	})
	defineJet("sequence", unitType, u32, func(env *Environ, _ *Value) (*Value, error) {
		return WordValue(32, uint64(env.Sequence)), nil
	})
}
