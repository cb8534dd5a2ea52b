package compiler

import (
	"fmt"
	"strings"

	"github.com/coremoon/SimplicityHL/simplicity"
)

// ResolvedType is a surface type with every alias substituted away.
// Types are compared structurally: two types are equal iff they have
// identical shape. There is no nominal identity.
type ResolvedType struct {
	kind  typeKind
	width uint            // uintKind
	elems []*ResolvedType // tupleKind
	elem  *ResolvedType   // arrayKind
	size  int             // arrayKind
	left  *ResolvedType   // eitherKind
	right *ResolvedType   // eitherKind
	inner *ResolvedType   // optionKind
}

type typeKind uint8

const (
	unitType typeKind = iota
	boolType
	uintType
	tupleType
	arrayType
	eitherType
	optionType
)

var (
	typeUnit = &ResolvedType{kind: unitType}
	typeBool = &ResolvedType{kind: boolType}

	// uintCache holds the singleton for each supported width. It is
	// read-only after package init; UintType must never write to it.
	uintCache = func() map[uint]*ResolvedType {
		m := make(map[uint]*ResolvedType, len(uintWidths))
		for _, w := range uintWidths {
			m[w] = &ResolvedType{kind: uintType, width: w}
		}
		return m
	}()
)

// UnitType returns the unit type ().
func UnitType() *ResolvedType { return typeUnit }

// BoolType returns bool.
func BoolType() *ResolvedType { return typeBool }

// UintType returns the unsigned integer type of the given bit width,
// one of 8, 16, 32, 64, 128 or 256. Unsupported widths get a fresh,
// uncached value; callers reject them with a diagnostic.
func UintType(width uint) *ResolvedType {
	if t, ok := uintCache[width]; ok {
		return t
	}
	return &ResolvedType{kind: uintType, width: width}
}

var uintWidths = []uint{8, 16, 32, 64, 128, 256}

func validUintWidth(w uint) bool {
	for _, v := range uintWidths {
		if v == w {
			return true
		}
	}
	return false
}

// TupleType returns the tuple of the given element types.
func TupleType(elems ...*ResolvedType) *ResolvedType {
	if len(elems) == 0 {
		return typeUnit
	}
	return &ResolvedType{kind: tupleType, elems: elems}
}

// ArrayType returns the fixed-size array type [elem; size].
func ArrayType(elem *ResolvedType, size int) *ResolvedType {
	return &ResolvedType{kind: arrayType, elem: elem, size: size}
}

// EitherType returns the two-way sum Either<l, r>.
func EitherType(l, r *ResolvedType) *ResolvedType {
	return &ResolvedType{kind: eitherType, left: l, right: r}
}

// OptionType returns Option<inner>.
func OptionType(inner *ResolvedType) *ResolvedType {
	return &ResolvedType{kind: optionType, inner: inner}
}

// Equal reports whether t and o are structurally identical.
func (t *ResolvedType) Equal(o *ResolvedType) bool {
	if t.kind != o.kind {
		return false
	}
	switch t.kind {
	case unitType, boolType:
		return true
	case uintType:
		return t.width == o.width
	case tupleType:
		if len(t.elems) != len(o.elems) {
			return false
		}
		for i := range t.elems {
			if !t.elems[i].Equal(o.elems[i]) {
				return false
			}
		}
		return true
	case arrayType:
		return t.size == o.size && t.elem.Equal(o.elem)
	case eitherType:
		return t.left.Equal(o.left) && t.right.Equal(o.right)
	default:
		return t.inner.Equal(o.inner)
	}
}

func (t *ResolvedType) String() string {
	switch t.kind {
	case unitType:
		return "()"
	case boolType:
		return "bool"
	case uintType:
		return fmt.Sprintf("u%d", t.width)
	case tupleType:
		parts := make([]string, len(t.elems))
		for i, e := range t.elems {
			parts[i] = e.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case arrayType:
		return fmt.Sprintf("[%s; %d]", t.elem, t.size)
	case eitherType:
		return fmt.Sprintf("Either<%s, %s>", t.left, t.right)
	default:
		return fmt.Sprintf("Option<%s>", t.inner)
	}
}

// Structural lowers t to its structural Simplicity type. Tuples become
// right-nested pairs; arrays become left-heavy balanced pairing trees;
// bool and Option lower with unit on the left (false, None).
func (t *ResolvedType) Structural() *simplicity.Type {
	switch t.kind {
	case unitType:
		return simplicity.UnitType()
	case boolType:
		return simplicity.WordType(1)
	case uintType:
		return simplicity.WordType(t.width)
	case tupleType:
		return prodRightNested(structuralSlice(t.elems))
	case arrayType:
		parts := make([]*simplicity.Type, t.size)
		el := t.elem.Structural()
		for i := range parts {
			parts[i] = el
		}
		return prodBalanced(parts)
	case eitherType:
		return simplicity.SumType(t.left.Structural(), t.right.Structural())
	default:
		return simplicity.SumType(simplicity.UnitType(), t.inner.Structural())
	}
}

func structuralSlice(elems []*ResolvedType) []*simplicity.Type {
	out := make([]*simplicity.Type, len(elems))
	for i, e := range elems {
		out[i] = e.Structural()
	}
	return out
}

// prodRightNested folds types into (t0, (t1, (... tn))).
func prodRightNested(ts []*simplicity.Type) *simplicity.Type {
	switch len(ts) {
	case 0:
		return simplicity.UnitType()
	case 1:
		return ts[0]
	}
	return simplicity.ProdType(ts[0], prodRightNested(ts[1:]))
}

// prodBalanced folds types into a left-heavy balanced tree: the left
// half holds ceil(n/2) elements.
func prodBalanced(ts []*simplicity.Type) *simplicity.Type {
	switch len(ts) {
	case 0:
		return simplicity.UnitType()
	case 1:
		return ts[0]
	}
	split := (len(ts) + 1) / 2
	return simplicity.ProdType(prodBalanced(ts[:split]), prodBalanced(ts[split:]))
}
