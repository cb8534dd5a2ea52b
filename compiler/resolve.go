package compiler

import (
	"encoding/hex"
	"fmt"
	"strconv"
)

// maxArraySize bounds declared array sizes. Lowering materializes one
// pairing-tree leaf per element, so the size caps allocation.
const maxArraySize = 1 << 16

// Program is an analyzed source file: parsed, alias-substituted and
// type-checked, with parameter and witness declarations collected by
// use. A Program is immutable once built.
type Program struct {
	buf       []byte
	funcs     map[string]*funcDef
	main      *funcDef
	params    Parameters
	witnesses WitnessTypes
}

// Analyze parses and type-checks a source file. Every function body
// is checked, reachable from main or not.
func Analyze(src []byte) (*Program, error) {
	parsed, err := parse(src)
	if err != nil {
		return nil, err
	}
	r := &resolver{
		buf:       src,
		aliases:   make(map[string]*aliasDecl),
		resolved:  make(map[string]*ResolvedType),
		resolving: make(map[string]bool),
		funcs:     make(map[string]*funcDef),
		params:    make(Parameters),
		witnesses: make(WitnessTypes),
	}
	for _, a := range parsed.aliases {
		if _, ok := r.aliases[a.name]; ok {
			return nil, r.errorf(a.offset, "duplicate type alias `%s`", a.name)
		}
		r.aliases[a.name] = a
	}
	for _, f := range parsed.funcs {
		if _, ok := r.funcs[f.name]; ok {
			return nil, r.errorf(f.offset, "duplicate function `%s`", f.name)
		}
		r.funcs[f.name] = f
	}
	for _, f := range parsed.funcs {
		if err := r.resolveSignature(f); err != nil {
			return nil, err
		}
	}
	main := r.funcs["main"]
	switch {
	case main == nil:
		return nil, r.errorf(len(src), "no main function")
	case len(main.params) > 0:
		return nil, r.errorf(main.offset, "main takes no parameters")
	case !main.resultType.Equal(UnitType()):
		return nil, r.errorf(main.offset, "main returns `%s`, want `()`", main.resultType)
	}
	for _, f := range parsed.funcs {
		if err := r.checkFunc(f); err != nil {
			return nil, err
		}
	}
	return &Program{
		buf:       src,
		funcs:     r.funcs,
		main:      main,
		params:    r.params,
		witnesses: r.witnesses,
	}, nil
}

// Parameters returns a copy of the parameter declarations
// (param::NAME uses).
func (p *Program) Parameters() Parameters {
	out := make(Parameters, len(p.params))
	for k, v := range p.params {
		out[k] = v
	}
	return out
}

// WitnessTypes returns a copy of the witness declarations
// (witness::NAME uses).
func (p *Program) WitnessTypes() WitnessTypes {
	out := make(WitnessTypes, len(p.witnesses))
	for k, v := range p.witnesses {
		out[k] = v
	}
	return out
}

// Errors.

type posError struct {
	buf    []byte
	offset int
	msg    string
}

func (e posError) Error() string {
	line, col := lineCol(e.buf, e.offset)
	return fmt.Sprintf("line %d, col %d: %s", line, col, e.msg)
}

// TypeError means an expression's type does not match what its
// context requires.
type TypeError struct {
	buf      []byte
	Offset   int
	Expected *ResolvedType
	Found    *ResolvedType
}

func (e *TypeError) Error() string {
	line, col := lineCol(e.buf, e.Offset)
	return fmt.Sprintf("line %d, col %d: Expected expression of type `%s`, found type `%s`", line, col, e.Expected, e.Found)
}

// AliasCycleError means a type alias refers to itself, directly or
// through other aliases.
type AliasCycleError struct {
	buf    []byte
	Offset int
	Name   string
}

func (e *AliasCycleError) Error() string {
	line, col := lineCol(e.buf, e.Offset)
	return fmt.Sprintf("line %d, col %d: type alias `%s` refers to itself", line, col, e.Name)
}

type resolver struct {
	buf       []byte
	aliases   map[string]*aliasDecl
	resolved  map[string]*ResolvedType
	resolving map[string]bool
	funcs     map[string]*funcDef
	params    Parameters
	witnesses WitnessTypes
}

func (r *resolver) errorf(offset int, format string, args ...interface{}) error {
	return posError{buf: r.buf, offset: offset, msg: fmt.Sprintf(format, args...)}
}

func (r *resolver) typeError(offset int, expected, found *ResolvedType) error {
	return &TypeError{buf: r.buf, Offset: offset, Expected: expected, Found: found}
}

// Type resolution.

func (r *resolver) resolveType(te typeExpr) (*ResolvedType, error) {
	switch te := te.(type) {
	case *unitTypeExpr:
		return UnitType(), nil
	case *typeRef:
		return r.resolveTypeRef(te)
	case *tupleTypeExpr:
		elems := make([]*ResolvedType, len(te.elems))
		for i, e := range te.elems {
			t, err := r.resolveType(e)
			if err != nil {
				return nil, err
			}
			elems[i] = t
		}
		return TupleType(elems...), nil
	case *arrayTypeExpr:
		if te.size < 1 {
			return nil, r.errorf(te.offset, "array size must be at least 1")
		}
		if te.size > maxArraySize {
			return nil, r.errorf(te.offset, "array size %d exceeds the limit of %d", te.size, maxArraySize)
		}
		elem, err := r.resolveType(te.elem)
		if err != nil {
			return nil, err
		}
		return ArrayType(elem, te.size), nil
	case *eitherTypeExpr:
		left, err := r.resolveType(te.left)
		if err != nil {
			return nil, err
		}
		right, err := r.resolveType(te.right)
		if err != nil {
			return nil, err
		}
		return EitherType(left, right), nil
	case *optionTypeExpr:
		inner, err := r.resolveType(te.inner)
		if err != nil {
			return nil, err
		}
		return OptionType(inner), nil
	}
	panic("unreachable type expression")
}

func (r *resolver) resolveTypeRef(te *typeRef) (*ResolvedType, error) {
	if te.name == "bool" {
		return BoolType(), nil
	}
	if len(te.name) > 1 && te.name[0] == 'u' {
		if w, err := strconv.ParseUint(te.name[1:], 10, 32); err == nil {
			if !validUintWidth(uint(w)) {
				return nil, r.errorf(te.offset, "unsupported integer width `%s`", te.name)
			}
			return UintType(uint(w)), nil
		}
	}
	if t, ok := r.resolved[te.name]; ok {
		return t, nil
	}
	decl, ok := r.aliases[te.name]
	if !ok {
		return nil, r.errorf(te.offset, "unknown type `%s`", te.name)
	}
	if r.resolving[te.name] {
		return nil, &AliasCycleError{buf: r.buf, Offset: te.offset, Name: te.name}
	}
	r.resolving[te.name] = true
	t, err := r.resolveType(decl.typ)
	delete(r.resolving, te.name)
	if err != nil {
		return nil, err
	}
	r.resolved[te.name] = t
	return t, nil
}

func (r *resolver) resolveSignature(f *funcDef) error {
	for _, p := range f.params {
		t, err := r.resolveType(p.typ)
		if err != nil {
			return err
		}
		p.resolved = t
	}
	if f.result == nil {
		f.resultType = UnitType()
		return nil
	}
	t, err := r.resolveType(f.result)
	if err != nil {
		return err
	}
	f.resultType = t
	return nil
}

// Variable scopes. Later bindings of the same name shadow earlier
// ones.

type scopeTypes struct {
	parent *scopeTypes
	vars   map[string]*ResolvedType
}

func newScope(parent *scopeTypes) *scopeTypes {
	return &scopeTypes{parent: parent, vars: make(map[string]*ResolvedType)}
}

func (s *scopeTypes) lookup(name string) (*ResolvedType, bool) {
	for ; s != nil; s = s.parent {
		if t, ok := s.vars[name]; ok {
			return t, true
		}
	}
	return nil, false
}

// Expression checking. checkExpr verifies e against expected and
// annotates the node; a nil expected means infer. Nodes whose type
// comes only from context (witness::, param::, Left, Right, Some,
// None, unsuffixed literals) cannot be inferred.

func (r *resolver) checkFunc(f *funcDef) error {
	env := newScope(nil)
	for _, p := range f.params {
		env.vars[p.name] = p.resolved
	}
	_, err := r.checkExpr(env, f.body, f.resultType)
	return err
}

func (r *resolver) checkExpr(env *scopeTypes, e expression, expected *ResolvedType) (*ResolvedType, error) {
	t, err := r.typeExpr(env, e, expected)
	if err != nil {
		return nil, err
	}
	e.setType(t)
	return t, nil
}

func (r *resolver) cannotInfer(e expression) error {
	return r.errorf(e.exprPos(), "cannot infer type of expression; add a type annotation")
}

// synthesized reconciles a computed type against an expected one.
func (r *resolver) synthesized(e expression, t, expected *ResolvedType) (*ResolvedType, error) {
	if expected != nil && !t.Equal(expected) {
		return nil, r.typeError(e.exprPos(), expected, t)
	}
	return t, nil
}

func (r *resolver) typeExpr(env *scopeTypes, e expression, expected *ResolvedType) (*ResolvedType, error) {
	switch e := e.(type) {
	case *intLiteral:
		return r.typeIntLiteral(e, expected)

	case *boolLiteral:
		return r.synthesized(e, BoolType(), expected)

	case *varRef:
		t, ok := env.lookup(e.name)
		if !ok {
			return nil, r.errorf(e.offset, "undefined variable `%s`", e.name)
		}
		return r.synthesized(e, t, expected)

	case *paramRef:
		if expected == nil {
			return nil, r.cannotInfer(e)
		}
		return expected, r.recordDecl(r.params, "param", e.name, expected, e.offset)

	case *witnessRef:
		if expected == nil {
			return nil, r.cannotInfer(e)
		}
		return expected, r.recordDecl(r.witnesses, "witness", e.name, expected, e.offset)

	case *jetCall:
		info := lookupSurfaceJet(e.name)
		if info == nil {
			return nil, r.errorf(e.offset, "unknown jet `%s`", e.name)
		}
		if len(e.args) != len(info.params) {
			return nil, r.errorf(e.offset, "jet `%s` takes %d arguments, got %d", e.name, len(info.params), len(e.args))
		}
		for i, arg := range e.args {
			if _, err := r.checkExpr(env, arg, info.params[i]); err != nil {
				return nil, err
			}
		}
		e.jet = info
		return r.synthesized(e, info.result, expected)

	case *callExpr:
		f := r.funcs[e.name]
		if f == nil {
			return nil, r.errorf(e.offset, "undefined function `%s`", e.name)
		}
		if len(e.args) != len(f.params) {
			return nil, r.errorf(e.offset, "function `%s` takes %d arguments, got %d", e.name, len(f.params), len(e.args))
		}
		for i, arg := range e.args {
			if _, err := r.checkExpr(env, arg, f.params[i].resolved); err != nil {
				return nil, err
			}
		}
		e.target = f
		return r.synthesized(e, f.resultType, expected)

	case *tupleExpr:
		return r.typeTuple(env, e, expected)

	case *arrayExpr:
		return r.typeArray(env, e, expected)

	case *injectExpr:
		if expected == nil {
			return nil, r.cannotInfer(e)
		}
		if expected.kind != eitherType {
			return nil, r.errorf(e.offset, "expected expression of type `%s`, found an Either constructor", expected)
		}
		want := expected.left
		if e.right {
			want = expected.right
		}
		if _, err := r.checkExpr(env, e.inner, want); err != nil {
			return nil, err
		}
		return expected, nil

	case *someExpr:
		if expected == nil {
			return nil, r.cannotInfer(e)
		}
		if expected.kind != optionType {
			return nil, r.errorf(e.offset, "expected expression of type `%s`, found Some(...)", expected)
		}
		if _, err := r.checkExpr(env, e.inner, expected.inner); err != nil {
			return nil, err
		}
		return expected, nil

	case *noneExpr:
		if expected == nil {
			return nil, r.cannotInfer(e)
		}
		if expected.kind != optionType {
			return nil, r.errorf(e.offset, "expected expression of type `%s`, found None", expected)
		}
		return expected, nil

	case *unaryExpr:
		return r.typeUnary(env, e, expected)

	case *binaryExpr:
		return r.typeBinary(env, e, expected)

	case *blockExpr:
		return r.typeBlock(env, e, expected)

	case *matchExpr:
		return r.typeMatch(env, e, expected)
	}
	panic("unreachable expression")
}

func (r *resolver) recordDecl(decls map[string]*ResolvedType, kind, name string, t *ResolvedType, offset int) error {
	if prev, ok := decls[name]; ok {
		if !prev.Equal(t) {
			return r.errorf(offset, "%s::%s used with conflicting types %s and %s", kind, name, prev, t)
		}
		return nil
	}
	decls[name] = t
	return nil
}

func (r *resolver) typeIntLiteral(e *intLiteral, expected *ResolvedType) (*ResolvedType, error) {
	if expected == nil {
		switch {
		case e.suffix != 0:
			if !validUintWidth(e.suffix) {
				return nil, r.errorf(e.offset, "unsupported integer width `u%d`", e.suffix)
			}
			expected = UintType(e.suffix)
		case e.isHex && validUintWidth(uint(len(e.text))*4):
			expected = UintType(uint(len(e.text)) * 4)
		default:
			return nil, r.cannotInfer(e)
		}
	}
	if expected.kind != uintType {
		return nil, r.errorf(e.offset, "expected expression of type `%s`, found an integer literal", expected)
	}
	if e.suffix != 0 {
		if !validUintWidth(e.suffix) {
			return nil, r.errorf(e.offset, "unsupported integer width `u%d`", e.suffix)
		}
		if e.suffix != expected.width {
			return nil, r.typeError(e.offset, expected, UintType(e.suffix))
		}
	}
	if e.isHex {
		if uint(len(e.text))*4 != expected.width {
			return nil, r.errorf(e.offset, "hex literal with %d digits does not fit `u%d`, want %d digits", len(e.text), expected.width, expected.width/4)
		}
		if expected.width <= 64 {
			x, err := strconv.ParseUint(e.text, 16, 64)
			if err != nil {
				return nil, r.errorf(e.offset, "invalid hex literal: %v", err)
			}
			e.value = x
		} else {
			b, err := hex.DecodeString(e.text)
			if err != nil {
				return nil, r.errorf(e.offset, "invalid hex literal: %v", err)
			}
			e.big = b
		}
		return expected, nil
	}
	if expected.width > 64 {
		return nil, r.errorf(e.offset, "decimal literals do not fit `u%d`, use hex", expected.width)
	}
	x, err := strconv.ParseUint(e.text, 10, 64)
	if err != nil {
		return nil, r.errorf(e.offset, "invalid integer literal: %v", err)
	}
	if expected.width < 64 && x >= uint64(1)<<expected.width {
		return nil, r.errorf(e.offset, "%s does not fit `u%d`", e.text, expected.width)
	}
	e.value = x
	return expected, nil
}

func (r *resolver) typeTuple(env *scopeTypes, e *tupleExpr, expected *ResolvedType) (*ResolvedType, error) {
	if len(e.elems) == 0 {
		return r.synthesized(e, UnitType(), expected)
	}
	if expected == nil {
		elems := make([]*ResolvedType, len(e.elems))
		for i, el := range e.elems {
			t, err := r.checkExpr(env, el, nil)
			if err != nil {
				return nil, err
			}
			elems[i] = t
		}
		return TupleType(elems...), nil
	}
	if expected.kind != tupleType || len(expected.elems) != len(e.elems) {
		return nil, r.errorf(e.offset, "expected expression of type `%s`, found a %d-tuple", expected, len(e.elems))
	}
	for i, el := range e.elems {
		if _, err := r.checkExpr(env, el, expected.elems[i]); err != nil {
			return nil, err
		}
	}
	return expected, nil
}

func (r *resolver) typeArray(env *scopeTypes, e *arrayExpr, expected *ResolvedType) (*ResolvedType, error) {
	if expected == nil {
		if len(e.elems) == 0 {
			return nil, r.cannotInfer(e)
		}
		first, err := r.checkExpr(env, e.elems[0], nil)
		if err != nil {
			return nil, err
		}
		for _, el := range e.elems[1:] {
			if _, err := r.checkExpr(env, el, first); err != nil {
				return nil, err
			}
		}
		return ArrayType(first, len(e.elems)), nil
	}
	if expected.kind != arrayType || expected.size != len(e.elems) {
		return nil, r.errorf(e.offset, "expected expression of type `%s`, found an array of %d elements", expected, len(e.elems))
	}
	for _, el := range e.elems {
		if _, err := r.checkExpr(env, el, expected.elem); err != nil {
			return nil, err
		}
	}
	return expected, nil
}

func (r *resolver) typeUnary(env *scopeTypes, e *unaryExpr, expected *ResolvedType) (*ResolvedType, error) {
	var t *ResolvedType
	if expected != nil {
		if expected.kind != boolType && expected.kind != uintType {
			return nil, r.errorf(e.offset, "operator ! yields bool or an unsigned integer, not `%s`", expected)
		}
		t = expected
	}
	t, err := r.checkExpr(env, e.operand, t)
	if err != nil {
		return nil, err
	}
	if t.kind != boolType && (t.kind != uintType || t.width > 64) {
		return nil, r.errorf(e.offset, "operator ! wants a bool or unsigned integer operand up to u64, got `%s`", t)
	}
	return t, nil
}

func (r *resolver) typeBinary(env *scopeTypes, e *binaryExpr, expected *ResolvedType) (*ResolvedType, error) {
	switch e.op {
	case "&&", "||":
		if _, err := r.checkExpr(env, e.left, BoolType()); err != nil {
			return nil, err
		}
		if _, err := r.checkExpr(env, e.right, BoolType()); err != nil {
			return nil, err
		}
		return r.synthesized(e, BoolType(), expected)
	}

	// Comparison: operand type comes from whichever side can be
	// inferred, then the other side is checked against it.
	t, err := r.checkExpr(env, e.left, nil)
	if err != nil {
		t, err = r.checkExpr(env, e.right, nil)
		if err != nil {
			return nil, r.errorf(e.offset, "cannot infer operand type of `%s`; add a suffix or annotation", e.op)
		}
		if _, err := r.checkExpr(env, e.left, t); err != nil {
			return nil, err
		}
	} else if _, err := r.checkExpr(env, e.right, t); err != nil {
		return nil, err
	}
	if t.kind != uintType {
		return nil, r.errorf(e.offset, "operator %s wants unsigned integer operands, got `%s`", e.op, t)
	}
	if t.width > 64 && e.op != "==" && e.op != "!=" {
		return nil, r.errorf(e.offset, "operator %s is not defined for `u%d`", e.op, t.width)
	}
	return r.synthesized(e, BoolType(), expected)
}

func (r *resolver) typeBlock(env *scopeTypes, e *blockExpr, expected *ResolvedType) (*ResolvedType, error) {
	child := newScope(env)
	for _, s := range e.stmts {
		switch s := s.(type) {
		case *letStatement:
			declared, err := r.resolveType(s.typ)
			if err != nil {
				return nil, err
			}
			if _, err := r.checkExpr(child, s.init, declared); err != nil {
				return nil, err
			}
			s.declared = declared
			if err := r.bindPattern(child, s.pat, declared); err != nil {
				return nil, err
			}
		case *assertStatement:
			if _, err := r.checkExpr(child, s.cond, BoolType()); err != nil {
				return nil, err
			}
		case *exprStatement:
			if _, err := r.checkExpr(child, s.expr, UnitType()); err != nil {
				return nil, err
			}
		}
	}
	if e.final == nil {
		if expected != nil && !expected.Equal(UnitType()) {
			return nil, r.typeError(e.offset, expected, UnitType())
		}
		return UnitType(), nil
	}
	return r.checkExpr(child, e.final, expected)
}

func (r *resolver) bindPattern(env *scopeTypes, pat pattern, t *ResolvedType) error {
	switch pat := pat.(type) {
	case *namePattern:
		env.vars[pat.name] = t
		return nil
	case *ignorePattern:
		return nil
	case *tuplePattern:
		switch t.kind {
		case tupleType:
			if len(pat.elems) != len(t.elems) {
				return r.errorf(pat.offset, "pattern has %d elements but `%s` has %d", len(pat.elems), t, len(t.elems))
			}
			for i, sub := range pat.elems {
				if err := r.bindPattern(env, sub, t.elems[i]); err != nil {
					return err
				}
			}
			return nil
		case arrayType:
			if len(pat.elems) != t.size {
				return r.errorf(pat.offset, "pattern has %d elements but `%s` has %d", len(pat.elems), t, t.size)
			}
			for _, sub := range pat.elems {
				if err := r.bindPattern(env, sub, t.elem); err != nil {
					return err
				}
			}
			return nil
		}
		return r.errorf(pat.offset, "cannot destructure `%s`", t)
	}
	panic("unreachable pattern")
}

func (r *resolver) typeMatch(env *scopeTypes, e *matchExpr, expected *ResolvedType) (*ResolvedType, error) {
	scrutT, err := r.checkExpr(env, e.scrutinee, nil)
	if err != nil {
		return nil, err
	}
	e.scrutType = scrutT

	// Arm order is fixed: the structurally-left constructor comes
	// first (false, Left, None).
	var want [2]armKind
	binderTypes := [2]*ResolvedType{UnitType(), UnitType()}
	switch scrutT.kind {
	case boolType:
		want = [2]armKind{armFalse, armTrue}
	case eitherType:
		want = [2]armKind{armLeft, armRight}
		binderTypes = [2]*ResolvedType{scrutT.left, scrutT.right}
	case optionType:
		want = [2]armKind{armNone, armSome}
		binderTypes[1] = scrutT.inner
	default:
		return nil, r.errorf(e.scrutinee.exprPos(), "cannot match on `%s`", scrutT)
	}
	for i, arm := range e.arms {
		if arm.kind != want[i] {
			return nil, r.errorf(arm.offset, "match on `%s` wants arms %s then %s", scrutT, armName(want[0]), armName(want[1]))
		}
		arm.binderType = binderTypes[i]
	}

	result := expected
	for i, arm := range e.arms {
		armEnv := newScope(env)
		if arm.binder != "" {
			armEnv.vars[arm.binder] = arm.binderType
		}
		t, err := r.checkExpr(armEnv, arm.body, result)
		if err != nil {
			return nil, err
		}
		if i == 0 && result == nil {
			result = t
		}
	}
	return result, nil
}

func armName(k armKind) string {
	switch k {
	case armLeft:
		return "Left"
	case armRight:
		return "Right"
	case armFalse:
		return "false"
	case armTrue:
		return "true"
	case armNone:
		return "None"
	default:
		return "Some"
	}
}
