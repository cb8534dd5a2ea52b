package compiler

import (
	stdjson "encoding/json"
	"testing"

	"github.com/coremoon/SimplicityHL/simplicity"
	"github.com/coremoon/SimplicityHL/testutil"
)

func TestParseTypeSyntax(t *testing.T) {
	cases := []string{
		"u32",
		"bool",
		"()",
		"(u8, bool)",
		"[u16; 3]",
		"Either<u32, Option<bool>>",
		"Option<(u8, u8, u8)>",
	}
	for _, src := range cases {
		parsed, err := ParseType(src)
		if err != nil {
			t.Errorf("ParseType(%q): %v", src, err)
			continue
		}
		if parsed.String() != src {
			t.Errorf("ParseType(%q) prints as %q", src, parsed)
		}
	}

	if _, err := ParseType("u32 trailing"); err == nil {
		t.Error("trailing input accepted")
	}
	if _, err := ParseType("Vec<u8>"); err == nil {
		t.Error("unknown type accepted")
	}
}

func TestValueJSON(t *testing.T) {
	big := make([]byte, 32)
	big[31] = 0xff
	u256, err := ValueUintBytes(256, big)
	if err != nil {
		testutil.FatalErr(t, err)
	}
	some, err := ValueUint(16, 700)
	if err != nil {
		testutil.FatalErr(t, err)
	}
	values := []*Value{
		ValueBool(true),
		mustUint(t, 32, 42),
		u256,
		ValueTuple(ValueBool(false), mustUint(t, 8, 7)),
		ValueLeft(mustUint(t, 32, 1), BoolType()),
		ValueSome(some),
		ValueNone(UintType(64)),
	}
	for _, v := range values {
		data, err := stdjson.Marshal(v)
		if err != nil {
			t.Errorf("marshal %s: %v", v, err)
			continue
		}
		var back Value
		if err := stdjson.Unmarshal(data, &back); err != nil {
			t.Errorf("unmarshal %s (%s): %v", v, data, err)
			continue
		}
		if !back.Equal(v) {
			t.Errorf("round trip of %s gives %s", v, &back)
		}
	}
}

func TestValueJSONDocuments(t *testing.T) {
	// Documents as an operator would write them by hand.
	var v Value
	err := stdjson.Unmarshal([]byte(`{"type": "u32", "value": "0000002a"}`), &v)
	if err != nil {
		testutil.FatalErr(t, err)
	}
	if !v.Equal(mustUint(t, 32, 42)) {
		t.Errorf("hex-string u32 decoded as %s", &v)
	}

	err = stdjson.Unmarshal([]byte(`{"type": "Option<bool>", "value": null}`), &v)
	if err != nil {
		testutil.FatalErr(t, err)
	}
	if !v.Equal(ValueNone(BoolType())) {
		t.Errorf("null option decoded as %s", &v)
	}

	bad := []string{
		`{"type": "u8", "value": 256}`,
		`{"type": "u128", "value": 5}`,
		`{"type": "(u8, u8)", "value": [1]}`,
		`{"type": "Either<u8, u8>", "value": {"middle": 1}}`,
	}
	for _, doc := range bad {
		if err := stdjson.Unmarshal([]byte(doc), new(Value)); err == nil {
			t.Errorf("bad document %s accepted", doc)
		}
	}
}

func TestConsistency(t *testing.T) {
	declared := Parameters{
		"limit": UintType(32),
		"flag":  BoolType(),
	}

	ok := Arguments{"limit": mustUint(t, 32, 9), "flag": ValueBool(true)}
	if err := ok.IsConsistent(declared); err != nil {
		testutil.FatalErr(t, err)
	}

	missing := Arguments{"limit": mustUint(t, 32, 9)}
	err := missing.IsConsistent(declared)
	ce, is := err.(*ConsistencyError)
	if !is || ce.Kind != MissingKey || ce.Key != "flag" {
		t.Errorf("got %v, want MissingKey flag", err)
	}

	extra := Arguments{
		"limit": mustUint(t, 32, 9),
		"flag":  ValueBool(true),
		"bonus": ValueBool(false),
	}
	err = extra.IsConsistent(declared)
	ce, is = err.(*ConsistencyError)
	if !is || ce.Kind != UnexpectedKey || ce.Key != "bonus" {
		t.Errorf("got %v, want UnexpectedKey bonus", err)
	}

	mistyped := Arguments{"limit": mustUint(t, 32, 9), "flag": mustUint(t, 32, 1)}
	err = mistyped.IsConsistent(declared)
	ce, is = err.(*ConsistencyError)
	if !is || ce.Kind != TypeMismatch || ce.Key != "flag" {
		t.Errorf("got %v, want TypeMismatch flag", err)
	}
	if is && (!ce.Declared.Equal(BoolType()) || !ce.Supplied.Equal(UintType(32))) {
		t.Errorf("mismatch types %s/%s, want bool/u32", ce.Declared, ce.Supplied)
	}
}

func TestStructuralLayouts(t *testing.T) {
	// Pinned layouts: right-nested tuples, left-heavy balanced
	// arrays.
	u8 := simplicity.WordType(8)
	tuple := TupleType(UintType(8), UintType(16), UintType(32))
	wantTuple := simplicity.ProdType(u8, simplicity.ProdType(simplicity.WordType(16), simplicity.WordType(32)))
	if !tuple.Structural().Equal(wantTuple) {
		t.Errorf("3-tuple lowers to %s, want %s", tuple.Structural(), wantTuple)
	}

	arr := ArrayType(UintType(8), 5)
	wantArr := simplicity.ProdType(
		simplicity.ProdType(simplicity.ProdType(u8, u8), u8),
		simplicity.ProdType(u8, u8),
	)
	if !arr.Structural().Equal(wantArr) {
		t.Errorf("5-array lowers to %s, want %s", arr.Structural(), wantArr)
	}

	if !BoolType().Structural().Equal(simplicity.WordType(1)) {
		t.Error("bool does not lower to the bit type")
	}
	if !OptionType(UintType(8)).Structural().Equal(simplicity.SumType(simplicity.UnitType(), u8)) {
		t.Error("Option<u8> does not lower to 1+u8")
	}
}
