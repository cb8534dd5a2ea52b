package compiler

// Parse tree. Offsets are byte positions into the source buffer and
// feed error messages and debug symbols.

type program struct {
	aliases []*aliasDecl
	funcs   []*funcDef
}

type aliasDecl struct {
	name   string
	typ    typeExpr
	offset int
}

type funcDef struct {
	name       string
	params     []*funcParam
	result     typeExpr // nil means ()
	body       *blockExpr
	offset     int
	resultType *ResolvedType
}

type funcParam struct {
	name     string
	typ      typeExpr
	resolved *ResolvedType
	offset   int
}

// Type syntax, prior to alias substitution.

type typeExpr interface {
	typePos() int
}

type typeRef struct {
	name   string // builtin (bool, u8..u256) or alias name
	offset int
}

type unitTypeExpr struct{ offset int }

type tupleTypeExpr struct {
	elems  []typeExpr
	offset int
}

type arrayTypeExpr struct {
	elem   typeExpr
	size   int
	offset int
}

type eitherTypeExpr struct {
	left, right typeExpr
	offset      int
}

type optionTypeExpr struct {
	inner  typeExpr
	offset int
}

func (t *typeRef) typePos() int        { return t.offset }
func (t *unitTypeExpr) typePos() int   { return t.offset }
func (t *tupleTypeExpr) typePos() int  { return t.offset }
func (t *arrayTypeExpr) typePos() int  { return t.offset }
func (t *eitherTypeExpr) typePos() int { return t.offset }
func (t *optionTypeExpr) typePos() int { return t.offset }

// Statements.

type statement interface {
	stmtPos() int
}

type letStatement struct {
	pat      pattern
	typ      typeExpr
	init     expression
	declared *ResolvedType
	offset   int
}

type assertStatement struct {
	cond   expression
	offset int
}

type exprStatement struct {
	expr   expression
	offset int
}

func (s *letStatement) stmtPos() int    { return s.offset }
func (s *assertStatement) stmtPos() int { return s.offset }
func (s *exprStatement) stmtPos() int   { return s.offset }

// Patterns.

type pattern interface {
	patPos() int
}

type namePattern struct {
	name   string
	offset int
}

type ignorePattern struct{ offset int }

type tuplePattern struct {
	elems  []pattern
	offset int
}

func (p *namePattern) patPos() int   { return p.offset }
func (p *ignorePattern) patPos() int { return p.offset }
func (p *tuplePattern) patPos() int  { return p.offset }

// Expressions. The rtype field is filled in by the resolver and read
// by the lowering pass.

type expression interface {
	exprPos() int
	exprType() *ResolvedType
	setType(*ResolvedType)
}

type exprInfo struct {
	offset int
	rtype  *ResolvedType
}

func (e *exprInfo) exprPos() int            { return e.offset }
func (e *exprInfo) exprType() *ResolvedType { return e.rtype }
func (e *exprInfo) setType(t *ResolvedType) { e.rtype = t }

type intLiteral struct {
	exprInfo
	text   string // digits, without 0x or suffix
	isHex  bool
	suffix uint // 0 when unsuffixed
	value  uint64
	big    []byte // widths over 64 bits
}

type boolLiteral struct {
	exprInfo
	val bool
}

type varRef struct {
	exprInfo
	name string
}

type paramRef struct {
	exprInfo
	name string
}

type witnessRef struct {
	exprInfo
	name string
}

type jetCall struct {
	exprInfo
	name string
	args []expression
	jet  *jetInfo
}

type callExpr struct {
	exprInfo
	name   string
	args   []expression
	target *funcDef
}

type tupleExpr struct {
	exprInfo
	elems []expression // empty means the unit value ()
}

type arrayExpr struct {
	exprInfo
	elems []expression
}

type injectExpr struct {
	exprInfo
	right bool // Right(x) vs Left(x)
	inner expression
}

type someExpr struct {
	exprInfo
	inner expression
}

type noneExpr struct {
	exprInfo
}

type unaryExpr struct {
	exprInfo
	op      string
	operand expression
}

type binaryExpr struct {
	exprInfo
	op          string
	left, right expression
}

type blockExpr struct {
	exprInfo
	stmts []statement
	final expression // nil means the block yields ()
}

type armKind uint8

const (
	armLeft armKind = iota
	armRight
	armFalse
	armTrue
	armNone
	armSome
)

type matchArm struct {
	kind       armKind
	binder     string // empty for _, false/true, None
	binderType *ResolvedType
	body       expression
	offset     int
}

type matchExpr struct {
	exprInfo
	scrutinee expression
	arms      [2]*matchArm
	scrutType *ResolvedType
}
