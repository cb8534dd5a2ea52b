package simplicity

// A Type is a structural Simplicity type: the unit type, a two-way sum,
// or a two-way product. Words (unsigned integers of width 2^n bits) are
// balanced product trees over the bit type 1+1.
//
// Types are compared structurally. Each Type carries a canonical key
// string, computed on construction, so comparison and hash-consing are
// string operations.
type Type struct {
	kind  typeKind
	left  *Type
	right *Type
	key   string
}

type typeKind uint8

const (
	unitKind typeKind = iota
	sumKind
	prodKind
)

var unitType = &Type{kind: unitKind, key: "1"}

// UnitType returns the unit type.
func UnitType() *Type { return unitType }

// SumType returns the sum of l and r.
func SumType(l, r *Type) *Type {
	return &Type{kind: sumKind, left: l, right: r, key: "+" + l.key + r.key + ";"}
}

// ProdType returns the product of l and r.
func ProdType(l, r *Type) *Type {
	return &Type{kind: prodKind, left: l, right: r, key: "*" + l.key + r.key + ";"}
}

var wordTypes = make(map[uint]*Type)

// WordType returns the type of unsigned integers with the given number
// of bits, which must be a power of two between 1 and 256. A 1-bit word
// is the bit type 1+1; wider words are balanced pairs of half words.
func WordType(bits uint) *Type {
	if t, ok := wordTypes[bits]; ok {
		return t
	}
	var t *Type
	if bits == 1 {
		t = SumType(unitType, unitType)
	} else {
		half := WordType(bits / 2)
		t = ProdType(half, half)
	}
	wordTypes[bits] = t
	return t
}

// Equal reports whether t and o are structurally identical.
func (t *Type) Equal(o *Type) bool {
	return t.key == o.key
}

// Key returns the canonical encoding of t. Two types are structurally
// equal iff their keys are equal.
func (t *Type) Key() string { return t.key }

func (t *Type) String() string {
	switch t.kind {
	case unitKind:
		return "1"
	case sumKind:
		return "(" + t.left.String() + " + " + t.right.String() + ")"
	default:
		return "(" + t.left.String() + " * " + t.right.String() + ")"
	}
}
