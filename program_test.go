package simplicityhl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coremoon/SimplicityHL/compiler"
	"github.com/coremoon/SimplicityHL/errors"
	"github.com/coremoon/SimplicityHL/simplicity"
)

func uintValue(t *testing.T, width uint, x uint64) *compiler.Value {
	t.Helper()
	v, err := compiler.ValueUint(width, x)
	require.NoError(t, err)
	return v
}

func TestScenarioConstants(t *testing.T) {
	src := `fn main() { let x: u32 = 5; assert!(jet::eq_32(x, 5)); }`

	tmpl, err := NewTemplate("const.simf", src)
	require.NoError(t, err)
	assert.Empty(t, tmpl.Parameters())
	assert.Empty(t, tmpl.WitnessTypes())

	prog, err := tmpl.Instantiate(nil, false)
	require.NoError(t, err)

	sat, err := prog.Satisfy(nil, nil)
	require.NoError(t, err)
	assert.NoError(t, sat.Redeem().Run(nil))
}

func TestScenarioWitnessTypeMismatch(t *testing.T) {
	src := `fn main() { assert!(witness::w); }`

	prog, err := Compile("w.simf", src, nil, false)
	require.NoError(t, err)
	assert.Equal(t, compiler.WitnessTypes{"w": compiler.BoolType()}, prog.WitnessTypes())

	_, err = prog.Satisfy(compiler.WitnessValues{"w": uintValue(t, 32, 1)}, nil)
	require.Error(t, err)

	ce, ok := errors.Root(err).(*compiler.ConsistencyError)
	require.True(t, ok, "got %T: %v", err, err)
	assert.Equal(t, compiler.TypeMismatch, ce.Kind)
	assert.Equal(t, "w", ce.Key)
	assert.Contains(t, err.Error(), `"w"`)
	assert.Contains(t, err.Error(), "bool")
	assert.Contains(t, err.Error(), "u32")
	assert.Contains(t, err.Error(), "w.simf")
}

func TestScenarioMissingArgument(t *testing.T) {
	src := `fn main() { assert!(jet::eq_32(param::p, 5)); }`

	tmpl, err := NewTemplate("p.simf", src)
	require.NoError(t, err)
	assert.Equal(t, compiler.Parameters{"p": compiler.UintType(32)}, tmpl.Parameters())

	_, err = tmpl.Instantiate(nil, false)
	require.Error(t, err)

	ce, ok := errors.Root(err).(*compiler.ConsistencyError)
	require.True(t, ok, "got %T: %v", err, err)
	assert.Equal(t, compiler.MissingKey, ce.Kind)
	assert.Equal(t, "p", ce.Key)

	prog, err := tmpl.Instantiate(compiler.Arguments{"p": uintValue(t, 32, 5)}, false)
	require.NoError(t, err)
	sat, err := prog.Satisfy(nil, nil)
	require.NoError(t, err)
	assert.NoError(t, sat.Redeem().Run(nil))
}

func TestExactCorrespondence(t *testing.T) {
	src := `
fn main() {
	assert!(jet::eq_32(param::p, 5));
	assert!(witness::w);
}
`
	tmpl, err := NewTemplate("exact.simf", src)
	require.NoError(t, err)

	_, err = tmpl.Instantiate(compiler.Arguments{
		"p":     uintValue(t, 32, 5),
		"bonus": uintValue(t, 32, 6),
	}, false)
	require.Error(t, err)
	ce, ok := errors.Root(err).(*compiler.ConsistencyError)
	require.True(t, ok)
	assert.Equal(t, compiler.UnexpectedKey, ce.Kind)
	assert.Equal(t, "bonus", ce.Key)

	prog, err := tmpl.Instantiate(compiler.Arguments{"p": uintValue(t, 32, 5)}, false)
	require.NoError(t, err)

	_, err = prog.Satisfy(compiler.WitnessValues{}, nil)
	require.Error(t, err)
	ce, ok = errors.Root(err).(*compiler.ConsistencyError)
	require.True(t, ok)
	assert.Equal(t, compiler.MissingKey, ce.Kind)
	assert.Equal(t, "w", ce.Key)

	sat, err := prog.Satisfy(compiler.WitnessValues{"w": compiler.ValueBool(true)}, nil)
	require.NoError(t, err)
	assert.NoError(t, sat.Redeem().Run(nil))
}

func TestDeterminism(t *testing.T) {
	src := `
fn main() {
	let limit: u32 = param::limit;
	assert!(witness::spend <= limit);
}
`
	args := compiler.Arguments{"limit": uintValue(t, 32, 100)}
	a, err := Compile("d.simf", src, args, false)
	require.NoError(t, err)
	b, err := Compile("d.simf", src, args, false)
	require.NoError(t, err)
	assert.Equal(t, a.Commit().Root(), b.Commit().Root())
	assert.Equal(t, a.Commit().Size(), b.Commit().Size())
}

func TestNameIrrelevance(t *testing.T) {
	p1 := `
fn main() {
	let x: u32 = 5;
	let y: u32 = 6;
	assert!(x < y);
}
`
	p2 := `
fn main() {
	let first: u32 = 5;
	let second: u32 = 6;
	assert!(first < second);
}
`
	a, err := Compile("p1.simf", p1, nil, false)
	require.NoError(t, err)
	b, err := Compile("p2.simf", p2, nil, false)
	require.NoError(t, err)
	assert.Equal(t, a.Commit().Root(), b.Commit().Root())
}

func TestOperatorDesugaring(t *testing.T) {
	prefix := "fn main() {\n\tlet a: u32 = witness::a;\n\tlet b: u32 = witness::b;\n"
	sugar := prefix + "\tassert!(a != b);\n}"
	desugared := prefix + "\tassert!(jet::not(jet::eq_32(a, b)));\n}"

	a, err := Compile("sugar.simf", sugar, nil, false)
	require.NoError(t, err)
	b, err := Compile("plain.simf", desugared, nil, false)
	require.NoError(t, err)
	assert.Equal(t, a.Commit().Root(), b.Commit().Root())
}

func TestSatisfyWithEnvironmentPrunes(t *testing.T) {
	src := `
fn main() {
	let tall: bool = witness::tall;
	match tall {
		false => { assert!(jet::le_32(jet::lock_time(), 499999999)); },
		true => { assert!(jet::le_32(500000000, jet::lock_time())); },
	};
}
`
	prog, err := Compile("lock.simf", src, nil, false)
	require.NoError(t, err)

	env := &simplicity.Environ{LockTime: 700000000}
	witnesses := compiler.WitnessValues{"tall": compiler.ValueBool(true)}

	full, err := prog.Satisfy(witnesses, nil)
	require.NoError(t, err)
	pruned, err := prog.Satisfy(witnesses, env)
	require.NoError(t, err)

	assert.Less(t, pruned.Redeem().Size(), full.Redeem().Size())
	assert.Equal(t, full.Redeem().Root(), pruned.Redeem().Root())
	assert.NoError(t, pruned.Redeem().Run(env))

	// The environment contradicts the witness: satisfaction with
	// pruning must fail instead of producing a bad artifact.
	short := &simplicity.Environ{LockTime: 1000}
	_, err = prog.Satisfy(witnesses, short)
	require.Error(t, err)
	assert.Equal(t, simplicity.ErrAssertionFailed, errors.Root(err))
}

func TestDepthSafety(t *testing.T) {
	deep := "fn main() { let x: u8 = " + strings.Repeat("(", 600) + "1u8" + strings.Repeat(")", 600) + "; }"
	_, err := NewTemplate("deep.simf", deep)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nesting")
	assert.Contains(t, err.Error(), "deep.simf")
}

func TestErrorsCarryFileIdentity(t *testing.T) {
	_, err := NewTemplate("broken.simf", "fn main() { assert!(nope); }")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.simf")
	assert.Contains(t, err.Error(), "line ")
}

func TestDebugSymbolsSurvive(t *testing.T) {
	src := `
fn main() {
	let secret: u32 = witness::secret;
	assert!(jet::eq_32(secret, 7));
}
`
	prog, err := Compile("dbg.simf", src, nil, true)
	require.NoError(t, err)
	require.NotZero(t, prog.DebugSymbols().Len())

	sat, err := prog.Satisfy(compiler.WitnessValues{"secret": uintValue(t, 32, 7)}, nil)
	require.NoError(t, err)
	assert.Equal(t, prog.DebugSymbols().Len(), sat.DebugSymbols().Len())
	assert.NoError(t, sat.Redeem().Run(nil))
}
