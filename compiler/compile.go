package compiler

import (
	"fmt"

	"github.com/coremoon/SimplicityHL/errors"
	"github.com/coremoon/SimplicityHL/simplicity"
)

// ErrLowering means the lowering pass produced an ill-typed graph.
// The type checker is supposed to make this impossible; seeing it is
// a compiler bug, not a user error.
var ErrLowering = errors.New("internal: ill-typed graph during lowering")

// maxInlineDepth bounds the call inlining stack. Recursion is refused
// outright, so this only trips on pathologically deep non-recursive
// call chains.
const maxInlineDepth = 500

// Compile lowers the program to a combinator graph, binding each
// param::NAME to its argument value as a constant and leaving each
// witness::NAME as a placeholder. args must already be consistent
// with p.Parameters(). Function calls are expanded inline at each
// call site; recursion is refused.
//
// The returned DebugSymbols is empty unless includeDebug is set.
func (p *Program) Compile(args Arguments, includeDebug bool) (*simplicity.Graph, *DebugSymbols, error) {
	c := &compiler{
		g:          simplicity.NewGraph(),
		prog:       p,
		args:       args,
		nameCounts: make(map[string]int),
	}
	if includeDebug {
		c.debug = newDebugSymbols()
	}
	f := rootFrame(&ignorePattern{}, UnitType())
	root, err := c.compileBlock(f, p.main.body)
	if err != nil {
		return nil, nil, err
	}
	c.g.SetName(root, c.unique("main"))
	c.g.SetRoot(root)
	dbg := c.debug
	if dbg == nil {
		dbg = newDebugSymbols()
	}
	return c.g, dbg, nil
}

type compiler struct {
	g          *simplicity.Graph
	prog       *Program
	args       Arguments
	debug      *DebugSymbols
	inlining   []string
	nameCounts map[string]int
}

func (c *compiler) errorf(offset int, format string, args ...interface{}) error {
	return posError{buf: c.prog.buf, offset: offset, msg: fmt.Sprintf(format, args...)}
}

// internal wraps a graph construction error. These indicate bugs in
// the lowering scheme.
func (c *compiler) internal(err error) error {
	return errors.WithDetailf(ErrLowering, "%v", err)
}

// unique disambiguates node names: the first binding of x is named
// "x", later ones "x#2", "x#3" and so on.
func (c *compiler) unique(name string) string {
	c.nameCounts[name]++
	if n := c.nameCounts[name]; n > 1 {
		return fmt.Sprintf("%s#%d", name, n)
	}
	return name
}

// Environment frames. Every expression compiles to a combinator from
// its environment type to its own type. The root environment of main
// is unit; a let pushes its binding on the right, (env, bound); a
// match arm pushes its binder on the left, (bound, env). Variable
// references become take/drop projection chains through this shape.

type frame struct {
	prev    *frame
	pat     pattern
	patType *ResolvedType
	left    bool
	envT    *simplicity.Type
}

func rootFrame(pat pattern, t *ResolvedType) *frame {
	return &frame{pat: pat, patType: t, envT: t.Structural()}
}

func (f *frame) push(pat pattern, t *ResolvedType, left bool) *frame {
	bound := t.Structural()
	envT := simplicity.ProdType(f.envT, bound)
	if left {
		envT = simplicity.ProdType(bound, f.envT)
	}
	return &frame{prev: f, pat: pat, patType: t, left: left, envT: envT}
}

// step is one take or drop on the way to a variable. other is the
// type of the discarded half.
type step struct {
	take  bool
	other *simplicity.Type
}

func (f *frame) lookup(name string) ([]step, *ResolvedType, bool) {
	if steps, leaf, ok := patPath(f.pat, f.patType, name); ok {
		if f.prev == nil {
			return steps, leaf, true
		}
		first := step{take: f.left, other: f.prev.envT}
		return append([]step{first}, steps...), leaf, true
	}
	if f.prev == nil {
		return nil, nil, false
	}
	steps, leaf, ok := f.prev.lookup(name)
	if !ok {
		return nil, nil, false
	}
	first := step{take: !f.left, other: f.patType.Structural()}
	return append([]step{first}, steps...), leaf, true
}

// patPath finds a name inside a pattern and returns the projection
// steps from the bound value to it. Tuples are right-nested, arrays
// are left-heavy balanced, mirroring value lowering.
func patPath(pat pattern, t *ResolvedType, name string) ([]step, *ResolvedType, bool) {
	switch pat := pat.(type) {
	case *namePattern:
		if pat.name == name {
			return nil, t, true
		}
	case *tuplePattern:
		switch t.kind {
		case tupleType:
			for i, sub := range pat.elems {
				steps, leaf, ok := patPath(sub, t.elems[i], name)
				if !ok {
					continue
				}
				var prefix []step
				for j := 0; j < i; j++ {
					prefix = append(prefix, step{take: false, other: t.elems[j].Structural()})
				}
				if i < len(pat.elems)-1 {
					prefix = append(prefix, step{take: true, other: prodRightNested(structuralSlice(t.elems[i+1:]))})
				}
				return append(prefix, steps...), leaf, true
			}
		case arrayType:
			return arrayPatPath(pat.elems, t.elem, name)
		}
	}
	return nil, nil, false
}

func arrayPatPath(elems []pattern, elemT *ResolvedType, name string) ([]step, *ResolvedType, bool) {
	if len(elems) == 1 {
		return patPath(elems[0], elemT, name)
	}
	split := (len(elems) + 1) / 2
	if steps, leaf, ok := arrayPatPath(elems[:split], elemT, name); ok {
		first := step{take: true, other: balancedArrayType(elemT, len(elems)-split)}
		return append([]step{first}, steps...), leaf, true
	}
	if steps, leaf, ok := arrayPatPath(elems[split:], elemT, name); ok {
		first := step{take: false, other: balancedArrayType(elemT, split)}
		return append([]step{first}, steps...), leaf, true
	}
	return nil, nil, false
}

func balancedArrayType(elemT *ResolvedType, n int) *simplicity.Type {
	parts := make([]*simplicity.Type, n)
	el := elemT.Structural()
	for i := range parts {
		parts[i] = el
	}
	return prodBalanced(parts)
}

// projection builds the take/drop chain for a variable. Steps apply
// outermost first, so the chain is assembled inside out.
func (c *compiler) projection(steps []step, leaf *simplicity.Type) simplicity.NodeID {
	id := c.g.Iden(leaf)
	for i := len(steps) - 1; i >= 0; i-- {
		if steps[i].take {
			id = c.g.Take(id, steps[i].other)
		} else {
			id = c.g.Drop(id, steps[i].other)
		}
	}
	return id
}

func (c *compiler) compileExpr(f *frame, e expression) (simplicity.NodeID, error) {
	switch e := e.(type) {
	case *intLiteral:
		t := e.exprType()
		var v *simplicity.Value
		if t.width <= 64 {
			v = simplicity.WordValue(t.width, e.value)
		} else {
			v = simplicity.WordValueFromBytes(e.big)
		}
		return c.constNode(f, t, v)

	case *boolLiteral:
		return c.constNode(f, BoolType(), simplicity.BitValue(e.val))

	case *varRef:
		steps, leaf, ok := f.lookup(e.name)
		if !ok {
			return 0, c.internal(fmt.Errorf("unresolved variable %s", e.name))
		}
		return c.projection(steps, leaf.Structural()), nil

	case *paramRef:
		arg, ok := c.args[e.name]
		if !ok {
			return 0, c.internal(fmt.Errorf("no argument for param::%s", e.name))
		}
		return c.constNode(f, e.exprType(), arg.Structural())

	case *witnessRef:
		id := c.g.Witness(e.name, f.envT, e.exprType().Structural())
		c.debug.record(id, e.name, c.prog.buf, e.offset)
		return id, nil

	case *jetCall:
		argsN, err := c.pairRight(f, e.args)
		if err != nil {
			return 0, err
		}
		return c.comp(argsN, c.g.JetNode(simplicity.LookupJet(e.name)))

	case *callExpr:
		return c.compileCall(f, e)

	case *tupleExpr:
		return c.pairRight(f, e.elems)

	case *arrayExpr:
		return c.pairBalanced(f, e.elems)

	case *injectExpr:
		inner, err := c.compileExpr(f, e.inner)
		if err != nil {
			return 0, err
		}
		t := e.exprType()
		if e.right {
			return c.g.InjR(inner, t.left.Structural()), nil
		}
		return c.g.InjL(inner, t.right.Structural()), nil

	case *someExpr:
		inner, err := c.compileExpr(f, e.inner)
		if err != nil {
			return 0, err
		}
		return c.g.InjR(inner, simplicity.UnitType()), nil

	case *noneExpr:
		return c.g.InjL(c.g.Unit(f.envT), e.exprType().inner.Structural()), nil

	case *unaryExpr:
		operand, err := c.compileExpr(f, e.operand)
		if err != nil {
			return 0, err
		}
		t := e.exprType()
		name := "not"
		if t.kind == uintType {
			name = fmt.Sprintf("complement_%d", t.width)
		}
		return c.comp(operand, c.g.JetNode(simplicity.LookupJet(name)))

	case *binaryExpr:
		return c.compileBinary(f, e)

	case *blockExpr:
		return c.compileBlock(f, e)

	case *matchExpr:
		return c.compileMatch(f, e)
	}
	panic("unreachable expression")
}

func (c *compiler) constNode(f *frame, t *ResolvedType, v *simplicity.Value) (simplicity.NodeID, error) {
	id, err := c.g.Const(f.envT, t.Structural(), v)
	if err != nil {
		return 0, c.internal(err)
	}
	return id, nil
}

func (c *compiler) comp(s, t simplicity.NodeID) (simplicity.NodeID, error) {
	id, err := c.g.Comp(s, t)
	if err != nil {
		return 0, c.internal(err)
	}
	return id, nil
}

func (c *compiler) pair(s, t simplicity.NodeID) (simplicity.NodeID, error) {
	id, err := c.g.Pair(s, t)
	if err != nil {
		return 0, c.internal(err)
	}
	return id, nil
}

// pairRight compiles expressions into a right-nested pair. No
// expressions yields the unit combinator; one compiles bare.
func (c *compiler) pairRight(f *frame, elems []expression) (simplicity.NodeID, error) {
	if len(elems) == 0 {
		return c.g.Unit(f.envT), nil
	}
	head, err := c.compileExpr(f, elems[0])
	if err != nil {
		return 0, err
	}
	if len(elems) == 1 {
		return head, nil
	}
	rest, err := c.pairRight(f, elems[1:])
	if err != nil {
		return 0, err
	}
	return c.pair(head, rest)
}

// pairBalanced compiles expressions into a left-heavy balanced pair
// tree, the array layout.
func (c *compiler) pairBalanced(f *frame, elems []expression) (simplicity.NodeID, error) {
	if len(elems) == 0 {
		return c.g.Unit(f.envT), nil
	}
	if len(elems) == 1 {
		return c.compileExpr(f, elems[0])
	}
	split := (len(elems) + 1) / 2
	left, err := c.pairBalanced(f, elems[:split])
	if err != nil {
		return 0, err
	}
	right, err := c.pairBalanced(f, elems[split:])
	if err != nil {
		return 0, err
	}
	return c.pair(left, right)
}

func (c *compiler) compileCall(f *frame, e *callExpr) (simplicity.NodeID, error) {
	for _, name := range c.inlining {
		if name == e.name {
			return 0, c.errorf(e.offset, "recursive call to function `%s`", e.name)
		}
	}
	if len(c.inlining) >= maxInlineDepth {
		return 0, c.errorf(e.offset, "function call nesting exceeds %d levels", maxInlineDepth)
	}
	argsN, err := c.pairRight(f, e.args)
	if err != nil {
		return 0, err
	}

	callee := e.target
	var calleeF *frame
	switch len(callee.params) {
	case 0:
		calleeF = rootFrame(&ignorePattern{}, UnitType())
	case 1:
		calleeF = rootFrame(&namePattern{name: callee.params[0].name}, callee.params[0].resolved)
	default:
		pats := make([]pattern, len(callee.params))
		types := make([]*ResolvedType, len(callee.params))
		for i, p := range callee.params {
			pats[i] = &namePattern{name: p.name}
			types[i] = p.resolved
		}
		calleeF = rootFrame(&tuplePattern{elems: pats}, TupleType(types...))
	}

	c.inlining = append(c.inlining, e.name)
	body, err := c.compileBlock(calleeF, callee.body)
	c.inlining = c.inlining[:len(c.inlining)-1]
	if err != nil {
		return 0, err
	}
	return c.comp(argsN, body)
}

func (c *compiler) compileBinary(f *frame, e *binaryExpr) (simplicity.NodeID, error) {
	switch e.op {
	case "&&":
		return c.jetOfPair(f, "and", e.left, e.right)
	case "||":
		return c.jetOfPair(f, "or", e.left, e.right)
	}
	w := e.left.exprType().width
	switch e.op {
	case "==":
		return c.jetOfPair(f, fmt.Sprintf("eq_%d", w), e.left, e.right)
	case "!=":
		eq, err := c.jetOfPair(f, fmt.Sprintf("eq_%d", w), e.left, e.right)
		if err != nil {
			return 0, err
		}
		return c.comp(eq, c.g.JetNode(simplicity.LookupJet("not")))
	case "<":
		return c.jetOfPair(f, fmt.Sprintf("lt_%d", w), e.left, e.right)
	case ">":
		return c.jetOfPair(f, fmt.Sprintf("lt_%d", w), e.right, e.left)
	case "<=":
		return c.jetOfPair(f, fmt.Sprintf("le_%d", w), e.left, e.right)
	default: // ">="
		return c.jetOfPair(f, fmt.Sprintf("le_%d", w), e.right, e.left)
	}
}

func (c *compiler) jetOfPair(f *frame, jet string, a, b expression) (simplicity.NodeID, error) {
	an, err := c.compileExpr(f, a)
	if err != nil {
		return 0, err
	}
	bn, err := c.compileExpr(f, b)
	if err != nil {
		return 0, err
	}
	p, err := c.pair(an, bn)
	if err != nil {
		return 0, err
	}
	return c.comp(p, c.g.JetNode(simplicity.LookupJet(jet)))
}

func (c *compiler) compileMatch(f *frame, e *matchExpr) (simplicity.NodeID, error) {
	scrut, err := c.compileExpr(f, e.scrutinee)
	if err != nil {
		return 0, err
	}
	var arms [2]simplicity.NodeID
	for i, arm := range e.arms {
		var pat pattern = &ignorePattern{}
		if arm.binder != "" {
			pat = &namePattern{name: arm.binder}
		}
		armF := f.push(pat, arm.binderType, true)
		arms[i], err = c.compileExpr(armF, arm.body)
		if err != nil {
			return 0, err
		}
	}
	caseN, err := c.g.Case(arms[0], arms[1])
	if err != nil {
		return 0, c.internal(err)
	}
	pairN, err := c.pair(scrut, c.g.Iden(f.envT))
	if err != nil {
		return 0, err
	}
	return c.comp(pairN, caseN)
}

func (c *compiler) compileBlock(f *frame, b *blockExpr) (simplicity.NodeID, error) {
	return c.compileStmts(f, b.stmts, b.final)
}

// compileStmts iterates over the statement list: a forward pass
// compiles each statement under its frame, then a backward pass folds
// the block together. Statement lists are flat and may be long; only
// nesting recurses.
func (c *compiler) compileStmts(f *frame, stmts []statement, final expression) (simplicity.NodeID, error) {
	type lowered struct {
		let  bool
		node simplicity.NodeID
		f    *frame
	}
	chain := make([]lowered, 0, len(stmts))
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *letStatement:
			init, err := c.compileExpr(f, s.init)
			if err != nil {
				return 0, err
			}
			if np, ok := s.pat.(*namePattern); ok {
				c.g.SetName(init, c.unique(np.name))
				c.debug.record(init, np.name, c.prog.buf, s.offset)
			}
			chain = append(chain, lowered{let: true, node: init, f: f})
			f = f.push(s.pat, s.declared, false)

		case *assertStatement:
			cond, err := c.compileExpr(f, s.cond)
			if err != nil {
				return 0, err
			}
			check, err := c.comp(cond, c.g.JetNode(simplicity.LookupJet("verify")))
			if err != nil {
				return 0, err
			}
			chain = append(chain, lowered{node: check, f: f})

		default:
			effect, err := c.compileExpr(f, stmt.(*exprStatement).expr)
			if err != nil {
				return 0, err
			}
			chain = append(chain, lowered{node: effect, f: f})
		}
	}

	var rest simplicity.NodeID
	if final == nil {
		rest = c.g.Unit(f.envT)
	} else {
		var err error
		rest, err = c.compileExpr(f, final)
		if err != nil {
			return 0, err
		}
	}

	// A let extends the environment: comp (pair iden init) rest. A
	// unit-typed effect runs and is dropped: comp (pair effect iden)
	// (drop rest).
	for i := len(chain) - 1; i >= 0; i-- {
		st := chain[i]
		if st.let {
			pairN, err := c.pair(c.g.Iden(st.f.envT), st.node)
			if err != nil {
				return 0, err
			}
			rest, err = c.comp(pairN, rest)
			if err != nil {
				return 0, err
			}
			continue
		}
		pairN, err := c.pair(st.node, c.g.Iden(st.f.envT))
		if err != nil {
			return 0, err
		}
		rest, err = c.comp(pairN, c.g.Drop(rest, simplicity.UnitType()))
		if err != nil {
			return 0, err
		}
	}
	return rest, nil
}
