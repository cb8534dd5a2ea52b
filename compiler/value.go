package compiler

import (
	stdjson "encoding/json"
	"fmt"
	"strings"

	"github.com/coremoon/SimplicityHL/encoding/json"
	"github.com/coremoon/SimplicityHL/errors"
	"github.com/coremoon/SimplicityHL/simplicity"
)

// Value is a typed surface value: an argument bound to a parameter or
// a witness value supplied at satisfaction time.
type Value struct {
	typ   *ResolvedType
	tag   valueTag
	bits  uint64   // boolTag, uintTag widths <= 64
	big   []byte   // uintTag widths 128 and 256, big-endian
	elems []*Value // tupleTag, arrayTag
	inner *Value   // leftTag, rightTag, someTag
}

type valueTag uint8

const (
	unitTag valueTag = iota
	boolTag
	uintTag
	tupleTag
	arrayTag
	leftTag
	rightTag
	someTag
	noneTag
)

// ValueUnit returns the unit value ().
func ValueUnit() *Value {
	return &Value{typ: UnitType(), tag: unitTag}
}

// ValueBool returns a bool value.
func ValueBool(b bool) *Value {
	v := &Value{typ: BoolType(), tag: boolTag}
	if b {
		v.bits = 1
	}
	return v
}

// ValueUint returns an unsigned integer value of the given width,
// which must be 8, 16, 32 or 64. x must fit the width.
func ValueUint(width uint, x uint64) (*Value, error) {
	if !validUintWidth(width) || width > 64 {
		return nil, errors.WithDetailf(ErrBadValue, "width u%d", width)
	}
	if width < 64 && x >= uint64(1)<<width {
		return nil, errors.WithDetailf(ErrBadValue, "%d does not fit u%d", x, width)
	}
	return &Value{typ: UintType(width), tag: uintTag, bits: x}, nil
}

// ValueUintBytes returns an unsigned integer value of the given width
// from big-endian bytes, exactly width/8 of them.
func ValueUintBytes(width uint, b []byte) (*Value, error) {
	if !validUintWidth(width) {
		return nil, errors.WithDetailf(ErrBadValue, "width u%d", width)
	}
	if uint(len(b))*8 != width {
		return nil, errors.WithDetailf(ErrBadValue, "u%d wants %d bytes, got %d", width, width/8, len(b))
	}
	if width <= 64 {
		var x uint64
		for _, c := range b {
			x = x<<8 | uint64(c)
		}
		return &Value{typ: UintType(width), tag: uintTag, bits: x}, nil
	}
	big := make([]byte, len(b))
	copy(big, b)
	return &Value{typ: UintType(width), tag: uintTag, big: big}, nil
}

// ValueTuple returns a tuple value.
func ValueTuple(elems ...*Value) *Value {
	if len(elems) == 0 {
		return ValueUnit()
	}
	ts := make([]*ResolvedType, len(elems))
	for i, e := range elems {
		ts[i] = e.typ
	}
	return &Value{typ: TupleType(ts...), tag: tupleTag, elems: elems}
}

// ValueArray returns an array value. All elements must share a type
// and there must be at least one.
func ValueArray(elems ...*Value) (*Value, error) {
	if len(elems) == 0 {
		return nil, errors.WithDetail(ErrBadValue, "empty array")
	}
	for _, e := range elems[1:] {
		if !e.typ.Equal(elems[0].typ) {
			return nil, errors.WithDetailf(ErrBadValue, "mixed array element types %s and %s", elems[0].typ, e.typ)
		}
	}
	return &Value{typ: ArrayType(elems[0].typ, len(elems)), tag: arrayTag, elems: elems}, nil
}

// ValueLeft returns Left(inner) of type Either<inner, right>.
func ValueLeft(inner *Value, right *ResolvedType) *Value {
	return &Value{typ: EitherType(inner.typ, right), tag: leftTag, inner: inner}
}

// ValueRight returns Right(inner) of type Either<left, inner>.
func ValueRight(inner *Value, left *ResolvedType) *Value {
	return &Value{typ: EitherType(left, inner.typ), tag: rightTag, inner: inner}
}

// ValueSome returns Some(inner).
func ValueSome(inner *Value) *Value {
	return &Value{typ: OptionType(inner.typ), tag: someTag, inner: inner}
}

// ValueNone returns None of type Option<inner>.
func ValueNone(inner *ResolvedType) *Value {
	return &Value{typ: OptionType(inner), tag: noneTag}
}

// ErrBadValue means a surface value could not be constructed or
// decoded.
var ErrBadValue = errors.New("bad value")

// Type is the value's surface type.
func (v *Value) Type() *ResolvedType { return v.typ }

// Equal reports structural equality of values.
func (v *Value) Equal(o *Value) bool {
	if v.tag != o.tag || !v.typ.Equal(o.typ) {
		return false
	}
	switch v.tag {
	case unitTag, noneTag:
		return true
	case boolTag:
		return v.bits == o.bits
	case uintTag:
		if v.typ.width <= 64 {
			return v.bits == o.bits
		}
		return string(v.big) == string(o.big)
	case tupleTag, arrayTag:
		for i := range v.elems {
			if !v.elems[i].Equal(o.elems[i]) {
				return false
			}
		}
		return true
	default:
		return v.inner.Equal(o.inner)
	}
}

// Structural lowers v to the structural value matching
// v.Type().Structural().
func (v *Value) Structural() *simplicity.Value {
	switch v.tag {
	case unitTag:
		return simplicity.UnitValue()
	case boolTag:
		return simplicity.BitValue(v.bits == 1)
	case uintTag:
		if v.typ.width <= 64 {
			return simplicity.WordValue(v.typ.width, v.bits)
		}
		return simplicity.WordValueFromBytes(v.big)
	case tupleTag:
		return valueRightNested(structuralValues(v.elems))
	case arrayTag:
		return valueBalanced(structuralValues(v.elems))
	case leftTag:
		return simplicity.LeftValue(v.inner.Structural())
	case rightTag:
		return simplicity.RightValue(v.inner.Structural())
	case someTag:
		return simplicity.RightValue(v.inner.Structural())
	default:
		return simplicity.LeftValue(simplicity.UnitValue())
	}
}

func structuralValues(elems []*Value) []*simplicity.Value {
	out := make([]*simplicity.Value, len(elems))
	for i, e := range elems {
		out[i] = e.Structural()
	}
	return out
}

func valueRightNested(vs []*simplicity.Value) *simplicity.Value {
	switch len(vs) {
	case 0:
		return simplicity.UnitValue()
	case 1:
		return vs[0]
	}
	return simplicity.PairValue(vs[0], valueRightNested(vs[1:]))
}

func valueBalanced(vs []*simplicity.Value) *simplicity.Value {
	switch len(vs) {
	case 0:
		return simplicity.UnitValue()
	case 1:
		return vs[0]
	}
	split := (len(vs) + 1) / 2
	return simplicity.PairValue(valueBalanced(vs[:split]), valueBalanced(vs[split:]))
}

func (v *Value) String() string {
	switch v.tag {
	case unitTag:
		return "()"
	case boolTag:
		if v.bits == 1 {
			return "true"
		}
		return "false"
	case uintTag:
		if v.typ.width <= 64 {
			return fmt.Sprintf("%d", v.bits)
		}
		return fmt.Sprintf("0x%x", v.big)
	case tupleTag, arrayTag:
		parts := make([]string, len(v.elems))
		for i, e := range v.elems {
			parts[i] = e.String()
		}
		if v.tag == tupleTag {
			return "(" + strings.Join(parts, ", ") + ")"
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case leftTag:
		return fmt.Sprintf("Left(%s)", v.inner)
	case rightTag:
		return fmt.Sprintf("Right(%s)", v.inner)
	case someTag:
		return fmt.Sprintf("Some(%s)", v.inner)
	default:
		return "None"
	}
}

// JSON documents. A typed value serializes as {"type": ..., "value":
// ...} where the type is its surface syntax and the value encoding is
// type-directed: bools are JSON bools, integers up to u64 are JSON
// numbers or hex strings, u128 and u256 are hex strings, tuples and
// arrays are JSON arrays, sums are {"left": v} / {"right": v} /
// {"some": v} / null.

type valueDoc struct {
	Type  string             `json:"type"`
	Value stdjson.RawMessage `json:"value"`
}

// MarshalJSON encodes v as a typed document.
func (v *Value) MarshalJSON() ([]byte, error) {
	raw, err := v.marshalValue()
	if err != nil {
		return nil, err
	}
	return stdjson.Marshal(valueDoc{Type: v.typ.String(), Value: raw})
}

func (v *Value) marshalValue() (stdjson.RawMessage, error) {
	switch v.tag {
	case unitTag:
		return stdjson.RawMessage(`[]`), nil
	case boolTag:
		return stdjson.Marshal(v.bits == 1)
	case uintTag:
		if v.typ.width <= 64 {
			return stdjson.Marshal(v.bits)
		}
		return stdjson.Marshal(json.HexBytes(v.big))
	case tupleTag, arrayTag:
		parts := make([]stdjson.RawMessage, len(v.elems))
		for i, e := range v.elems {
			raw, err := e.marshalValue()
			if err != nil {
				return nil, err
			}
			parts[i] = raw
		}
		return stdjson.Marshal(parts)
	case leftTag:
		return marshalWrapped("left", v.inner)
	case rightTag:
		return marshalWrapped("right", v.inner)
	case someTag:
		return marshalWrapped("some", v.inner)
	default:
		return stdjson.RawMessage(`null`), nil
	}
}

func marshalWrapped(key string, inner *Value) (stdjson.RawMessage, error) {
	raw, err := inner.marshalValue()
	if err != nil {
		return nil, err
	}
	return stdjson.Marshal(map[string]stdjson.RawMessage{key: raw})
}

// UnmarshalJSON decodes a typed document.
func (v *Value) UnmarshalJSON(data []byte) error {
	var doc valueDoc
	if err := stdjson.Unmarshal(data, &doc); err != nil {
		return err
	}
	t, err := ParseType(doc.Type)
	if err != nil {
		return err
	}
	decoded, err := unmarshalValue(t, doc.Value)
	if err != nil {
		return err
	}
	*v = *decoded
	return nil
}

// ParseType parses surface type syntax, e.g. "u32", "(bool, u8)",
// "Either<u16, ()>". Aliases are not available here.
func ParseType(s string) (*ResolvedType, error) {
	p := &parser{buf: []byte(s)}
	var (
		te   typeExpr
		perr error
	)
	func() {
		defer func() {
			if val := recover(); val != nil {
				if e, ok := val.(parserErr); ok {
					perr = e
					return
				}
				panic(val)
			}
		}()
		te = parseType(p)
	}()
	if perr != nil {
		return nil, errors.Wrapf(perr, "parsing type %q", s)
	}
	if p.tokenPos() != len(p.buf) {
		return nil, errors.WithDetailf(ErrBadValue, "trailing input in type %q", s)
	}
	r := &resolver{buf: p.buf}
	return r.resolveType(te)
}

func unmarshalValue(t *ResolvedType, raw stdjson.RawMessage) (*Value, error) {
	switch t.kind {
	case unitType:
		return ValueUnit(), nil
	case boolType:
		var b bool
		if err := stdjson.Unmarshal(raw, &b); err != nil {
			return nil, errors.Wrap(err, "bool value")
		}
		return ValueBool(b), nil
	case uintType:
		return unmarshalUint(t, raw)
	case tupleType, arrayType:
		var parts []stdjson.RawMessage
		if err := stdjson.Unmarshal(raw, &parts); err != nil {
			return nil, errors.Wrapf(err, "%s value", t)
		}
		var want int
		if t.kind == tupleType {
			want = len(t.elems)
		} else {
			want = t.size
		}
		if len(parts) != want {
			return nil, errors.WithDetailf(ErrBadValue, "%s wants %d elements, got %d", t, want, len(parts))
		}
		elems := make([]*Value, len(parts))
		for i, part := range parts {
			et := t.elem
			if t.kind == tupleType {
				et = t.elems[i]
			}
			e, err := unmarshalValue(et, part)
			if err != nil {
				return nil, err
			}
			elems[i] = e
		}
		if t.kind == tupleType {
			return &Value{typ: t, tag: tupleTag, elems: elems}, nil
		}
		return &Value{typ: t, tag: arrayTag, elems: elems}, nil
	case eitherType:
		var wrapped map[string]stdjson.RawMessage
		if err := stdjson.Unmarshal(raw, &wrapped); err != nil {
			return nil, errors.Wrapf(err, "%s value", t)
		}
		if inner, ok := wrapped["left"]; ok && len(wrapped) == 1 {
			iv, err := unmarshalValue(t.left, inner)
			if err != nil {
				return nil, err
			}
			return ValueLeft(iv, t.right), nil
		}
		if inner, ok := wrapped["right"]; ok && len(wrapped) == 1 {
			iv, err := unmarshalValue(t.right, inner)
			if err != nil {
				return nil, err
			}
			return ValueRight(iv, t.left), nil
		}
		return nil, errors.WithDetailf(ErrBadValue, "%s wants {\"left\": ...} or {\"right\": ...}", t)
	default:
		if string(raw) == "null" {
			return ValueNone(t.inner), nil
		}
		var wrapped map[string]stdjson.RawMessage
		if err := stdjson.Unmarshal(raw, &wrapped); err != nil {
			return nil, errors.Wrapf(err, "%s value", t)
		}
		inner, ok := wrapped["some"]
		if !ok || len(wrapped) != 1 {
			return nil, errors.WithDetailf(ErrBadValue, "%s wants null or {\"some\": ...}", t)
		}
		iv, err := unmarshalValue(t.inner, inner)
		if err != nil {
			return nil, err
		}
		return ValueSome(iv), nil
	}
}

func unmarshalUint(t *ResolvedType, raw stdjson.RawMessage) (*Value, error) {
	if len(raw) > 0 && raw[0] == '"' {
		var hb json.HexBytes
		if err := stdjson.Unmarshal(raw, &hb); err != nil {
			return nil, errors.Wrapf(err, "u%d value", t.width)
		}
		return ValueUintBytes(t.width, hb)
	}
	if t.width > 64 {
		return nil, errors.WithDetailf(ErrBadValue, "u%d wants a hex string", t.width)
	}
	var x uint64
	if err := stdjson.Unmarshal(raw, &x); err != nil {
		return nil, errors.Wrapf(err, "u%d value", t.width)
	}
	return ValueUint(t.width, x)
}
