package compiler

import (
	"bytes"
	"fmt"
	"strconv"
	"unicode"
)

// We have some function naming conventions.
//
// For terminals:
//   scanX     takes buf and position, returns new position (and maybe a value)
//   peekX     takes *parser, returns bool or string
//   consumeX  takes *parser and maybe a required literal, maybe returns value
//             also updates the parser position
//
// For nonterminals:
//   parseX    takes *parser, returns AST node, updates parser position

// maxParseDepth bounds expression and type nesting so that hostile
// sources cannot blow the goroutine stack.
const maxParseDepth = 500

type parser struct {
	buf   []byte
	pos   int
	depth int
}

func (p *parser) errorf(format string, args ...interface{}) {
	panic(parserErr{buf: p.buf, offset: p.pos, format: format, args: args})
}

func (p *parser) enter() {
	p.depth++
	if p.depth > maxParseDepth {
		p.errorf("expression nesting exceeds %d levels", maxParseDepth)
	}
}

func (p *parser) leave() { p.depth-- }

// tokenPos is the offset of the next token, past whitespace and
// comments. AST nodes record it so errors and debug symbols can point
// at the construct rather than at trailing whitespace.
func (p *parser) tokenPos() int {
	return skipWsAndComments(p.buf, p.pos)
}

// parse is the main entry point to the parser
func parse(buf []byte) (prog *program, err error) {
	defer func() {
		if val := recover(); val != nil {
			if e, ok := val.(parserErr); ok {
				err = e
			} else {
				panic(val)
			}
		}
	}()
	p := &parser{buf: buf}
	prog = parseProgram(p)
	return
}

// parse functions

func parseProgram(p *parser) *program {
	prog := new(program)
	for {
		switch peekKeyword(p) {
		case "type":
			prog.aliases = append(prog.aliases, parseAlias(p))
		case "fn":
			prog.funcs = append(prog.funcs, parseFn(p))
		case "":
			if p.tokenPos() < len(p.buf) {
				p.errorf("expected declaration")
			}
			return prog
		default:
			p.errorf("unknown keyword \"%s\"", peekKeyword(p))
		}
	}
}

// type Name = TYPE;
func parseAlias(p *parser) *aliasDecl {
	offset := p.tokenPos()
	consumeKeyword(p, "type")
	name := consumeIdentifier(p)
	consumeTok(p, "=")
	typ := parseType(p)
	consumeTok(p, ";")
	return &aliasDecl{name: name, typ: typ, offset: offset}
}

// fn name(p1: t1, p2: t2) -> t { ... }
func parseFn(p *parser) *funcDef {
	offset := p.tokenPos()
	consumeKeyword(p, "fn")
	name := consumeIdentifier(p)
	params := parseFnParams(p)
	var result typeExpr
	if peekTok(p, "->") {
		consumeTok(p, "->")
		result = parseType(p)
	}
	body := parseBlock(p)
	return &funcDef{name: name, params: params, result: result, body: body, offset: offset}
}

func parseFnParams(p *parser) []*funcParam {
	var params []*funcParam
	consumeTok(p, "(")
	first := true
	for !peekTok(p, ")") {
		if first {
			first = false
		} else {
			consumeTok(p, ",")
		}
		offset := p.tokenPos()
		name := consumeIdentifier(p)
		consumeTok(p, ":")
		typ := parseType(p)
		params = append(params, &funcParam{name: name, typ: typ, offset: offset})
	}
	consumeTok(p, ")")
	return params
}

func parseType(p *parser) typeExpr {
	p.enter()
	defer p.leave()
	offset := p.tokenPos()
	if peekTok(p, "(") {
		consumeTok(p, "(")
		if peekTok(p, ")") {
			consumeTok(p, ")")
			return &unitTypeExpr{offset: offset}
		}
		elems := []typeExpr{parseType(p)}
		for peekTok(p, ",") {
			consumeTok(p, ",")
			elems = append(elems, parseType(p))
		}
		consumeTok(p, ")")
		if len(elems) == 1 {
			return elems[0]
		}
		return &tupleTypeExpr{elems: elems, offset: offset}
	}
	if peekTok(p, "[") {
		consumeTok(p, "[")
		elem := parseType(p)
		consumeTok(p, ";")
		size := consumeIntConst(p)
		consumeTok(p, "]")
		return &arrayTypeExpr{elem: elem, size: size, offset: offset}
	}
	name := consumeIdentifier(p)
	switch name {
	case "Either":
		consumeTok(p, "<")
		left := parseType(p)
		consumeTok(p, ",")
		right := parseType(p)
		consumeTok(p, ">")
		return &eitherTypeExpr{left: left, right: right, offset: offset}
	case "Option":
		consumeTok(p, "<")
		inner := parseType(p)
		consumeTok(p, ">")
		return &optionTypeExpr{inner: inner, offset: offset}
	}
	return &typeRef{name: name, offset: offset}
}

// { stmt... [expr] }
func parseBlock(p *parser) *blockExpr {
	offset := p.tokenPos()
	block := &blockExpr{exprInfo: exprInfo{offset: offset}}
	consumeTok(p, "{")
	for !peekTok(p, "}") {
		switch peekKeyword(p) {
		case "let":
			block.stmts = append(block.stmts, parseLet(p))
			continue
		case "assert":
			block.stmts = append(block.stmts, parseAssert(p))
			continue
		}
		stmtOffset := p.tokenPos()
		e := parseExpr(p)
		if peekTok(p, ";") {
			consumeTok(p, ";")
			block.stmts = append(block.stmts, &exprStatement{expr: e, offset: stmtOffset})
			continue
		}
		block.final = e
		break
	}
	consumeTok(p, "}")
	return block
}

// let pat: TYPE = expr;
func parseLet(p *parser) *letStatement {
	offset := p.tokenPos()
	consumeKeyword(p, "let")
	pat := parsePattern(p)
	consumeTok(p, ":")
	typ := parseType(p)
	consumeTok(p, "=")
	init := parseExpr(p)
	consumeTok(p, ";")
	return &letStatement{pat: pat, typ: typ, init: init, offset: offset}
}

// assert!(expr);
func parseAssert(p *parser) *assertStatement {
	offset := p.tokenPos()
	consumeKeyword(p, "assert")
	consumeTok(p, "!")
	consumeTok(p, "(")
	cond := parseExpr(p)
	consumeTok(p, ")")
	consumeTok(p, ";")
	return &assertStatement{cond: cond, offset: offset}
}

func parsePattern(p *parser) pattern {
	offset := p.tokenPos()
	if peekTok(p, "(") {
		consumeTok(p, "(")
		var elems []pattern
		first := true
		for !peekTok(p, ")") {
			if first {
				first = false
			} else {
				consumeTok(p, ",")
			}
			elems = append(elems, parsePattern(p))
		}
		consumeTok(p, ")")
		return &tuplePattern{elems: elems, offset: offset}
	}
	name := consumeIdentifier(p)
	if name == "_" {
		return &ignorePattern{offset: offset}
	}
	return &namePattern{name: name, offset: offset}
}

func parseExpr(p *parser) expression {
	// Uses the precedence-climbing algorithm
	// <https://en.wikipedia.org/wiki/Operator-precedence_parser#Precedence_climbing_method>
	p.enter()
	defer p.leave()
	expr := parseUnaryExpr(p)
	expr2, pos := parseExprCont(p, expr, 0)
	if pos < 0 {
		p.errorf("expected expression")
	}
	p.pos = pos
	return expr2
}

func parseUnaryExpr(p *parser) expression {
	offset := p.tokenPos()
	op, pos := scanUnaryOp(p.buf, p.pos)
	if pos < 0 {
		return parseExpr2(p)
	}
	p.pos = pos
	expr := parseUnaryExpr(p)
	return &unaryExpr{exprInfo: exprInfo{offset: offset}, op: op, operand: expr}
}

func parseExprCont(p *parser, lhs expression, minPrecedence int) (expression, int) {
	for {
		op, pos := scanBinaryOp(p.buf, p.pos)
		if pos < 0 || op.precedence < minPrecedence {
			break
		}
		p.pos = pos

		rhs := parseUnaryExpr(p)

		for {
			op2, pos2 := scanBinaryOp(p.buf, p.pos)
			if pos2 < 0 || op2.precedence <= op.precedence {
				break
			}
			rhs, p.pos = parseExprCont(p, rhs, op2.precedence)
			if p.pos < 0 {
				return nil, -1
			}
		}
		lhs = &binaryExpr{exprInfo: exprInfo{offset: lhs.exprPos()}, left: lhs, right: rhs, op: op.op}
	}
	return lhs, p.pos
}

func parseExpr2(p *parser) expression {
	if expr, pos := scanIntLiteral(p.buf, p.pos); pos >= 0 {
		p.pos = pos
		return expr
	}
	return parseExpr3(p)
}

func parseExpr3(p *parser) expression {
	offset := p.tokenPos()
	if peekTok(p, "(") {
		consumeTok(p, "(")
		if peekTok(p, ")") {
			consumeTok(p, ")")
			return &tupleExpr{exprInfo: exprInfo{offset: offset}}
		}
		elems := []expression{parseExpr(p)}
		for peekTok(p, ",") {
			consumeTok(p, ",")
			elems = append(elems, parseExpr(p))
		}
		consumeTok(p, ")")
		if len(elems) == 1 {
			return elems[0]
		}
		return &tupleExpr{exprInfo: exprInfo{offset: offset}, elems: elems}
	}
	if peekTok(p, "[") {
		consumeTok(p, "[")
		var elems []expression
		first := true
		for !peekTok(p, "]") {
			if first {
				first = false
			} else {
				consumeTok(p, ",")
			}
			elems = append(elems, parseExpr(p))
		}
		consumeTok(p, "]")
		return &arrayExpr{exprInfo: exprInfo{offset: offset}, elems: elems}
	}
	if peekKeyword(p) == "match" {
		return parseMatch(p)
	}
	if peekTok(p, "{") {
		return parseBlock(p)
	}
	name := consumeIdentifier(p)
	info := exprInfo{offset: offset}
	switch name {
	case "true":
		return &boolLiteral{exprInfo: info, val: true}
	case "false":
		return &boolLiteral{exprInfo: info, val: false}
	case "None":
		return &noneExpr{exprInfo: info}
	case "Some":
		consumeTok(p, "(")
		inner := parseExpr(p)
		consumeTok(p, ")")
		return &someExpr{exprInfo: info, inner: inner}
	case "Left", "Right":
		consumeTok(p, "(")
		inner := parseExpr(p)
		consumeTok(p, ")")
		return &injectExpr{exprInfo: info, right: name == "Right", inner: inner}
	case "jet":
		consumeTok(p, "::")
		jname := consumeIdentifier(p)
		args := parseArgs(p)
		return &jetCall{exprInfo: info, name: jname, args: args}
	case "param":
		consumeTok(p, "::")
		return &paramRef{exprInfo: info, name: consumeIdentifier(p)}
	case "witness":
		consumeTok(p, "::")
		return &witnessRef{exprInfo: info, name: consumeIdentifier(p)}
	}
	if peekTok(p, "(") {
		args := parseArgs(p)
		return &callExpr{exprInfo: info, name: name, args: args}
	}
	return &varRef{exprInfo: info, name: name}
}

// match scrutinee { pat => expr, pat => expr }
func parseMatch(p *parser) *matchExpr {
	offset := p.tokenPos()
	consumeKeyword(p, "match")
	scrutinee := parseExpr(p)
	consumeTok(p, "{")
	m := &matchExpr{exprInfo: exprInfo{offset: offset}, scrutinee: scrutinee}
	for i := 0; i < 2; i++ {
		m.arms[i] = parseMatchArm(p)
		if peekTok(p, ",") {
			consumeTok(p, ",")
		}
	}
	consumeTok(p, "}")
	return m
}

func parseMatchArm(p *parser) *matchArm {
	offset := p.tokenPos()
	arm := &matchArm{offset: offset}
	switch name := consumeIdentifier(p); name {
	case "false":
		arm.kind = armFalse
	case "true":
		arm.kind = armTrue
	case "None":
		arm.kind = armNone
	case "Left", "Right", "Some":
		switch name {
		case "Left":
			arm.kind = armLeft
		case "Right":
			arm.kind = armRight
		default:
			arm.kind = armSome
		}
		consumeTok(p, "(")
		binder := consumeIdentifier(p)
		if binder != "_" {
			arm.binder = binder
		}
		consumeTok(p, ")")
	default:
		p.errorf("unknown match pattern \"%s\"", name)
	}
	consumeTok(p, "=>")
	arm.body = parseExpr(p)
	return arm
}

func parseArgs(p *parser) []expression {
	var exprs []expression
	consumeTok(p, "(")
	first := true
	for !peekTok(p, ")") {
		if first {
			first = false
		} else {
			consumeTok(p, ",")
		}
		e := parseExpr(p)
		exprs = append(exprs, e)
	}
	consumeTok(p, ")")
	return exprs
}

// peek functions

func peekKeyword(p *parser) string {
	name, _ := scanIdentifier(p.buf, p.pos)
	return name
}

func peekTok(p *parser, token string) bool {
	pos := scanTok(p.buf, p.pos, token)
	return pos >= 0
}

// consume functions

func consumeKeyword(p *parser, keyword string) {
	pos := scanKeyword(p.buf, p.pos, keyword)
	if pos < 0 {
		p.errorf("expected keyword %s", keyword)
	}
	p.pos = pos
}

func consumeIdentifier(p *parser) string {
	name, pos := scanIdentifier(p.buf, p.pos)
	if pos < 0 {
		p.errorf("expected identifier")
	}
	p.pos = pos
	return name
}

func consumeTok(p *parser, token string) {
	pos := scanTok(p.buf, p.pos, token)
	if pos < 0 {
		p.errorf("expected %s token", token)
	}
	p.pos = pos
}

func consumeIntConst(p *parser) int {
	offset := skipWsAndComments(p.buf, p.pos)
	i := offset
	for ; i < len(p.buf) && unicode.IsDigit(rune(p.buf[i])); i++ {
	}
	if i == offset {
		p.errorf("expected integer")
	}
	n, err := strconv.Atoi(string(p.buf[offset:i]))
	if err != nil {
		p.errorf("bad integer: %v", err)
	}
	p.pos = i
	return n
}

// scan functions

type binaryOp struct {
	op         string
	precedence int
}

var binaryOps = []binaryOp{
	{op: "||", precedence: 1},
	{op: "&&", precedence: 2},
	{op: "==", precedence: 3},
	{op: "!=", precedence: 3},
	{op: "<=", precedence: 4},
	{op: ">=", precedence: 4},
	{op: "<", precedence: 4},
	{op: ">", precedence: 4},
}

func scanUnaryOp(buf []byte, offset int) (string, int) {
	// Make sure "!=" never scans as a prefix "!".
	if pos := scanTok(buf, offset, "!="); pos >= 0 {
		return "", -1
	}
	if pos := scanTok(buf, offset, "!"); pos >= 0 {
		return "!", pos
	}
	return "", -1
}

func scanBinaryOp(buf []byte, offset int) (*binaryOp, int) {
	offset = skipWsAndComments(buf, offset)
	// "->" and "=>" begin no expression; without this, "<" would match
	// inside neither but ">" could shadow ">=". Maximum munch.
	var (
		found     *binaryOp
		newOffset = -1
	)
	for i, op := range binaryOps {
		offset2 := scanTok(buf, offset, op.op)
		if offset2 >= 0 {
			if found == nil || len(op.op) > len(found.op) {
				found = &binaryOps[i]
				newOffset = offset2
			}
		}
	}
	return found, newOffset
}

// scanIntLiteral scans a decimal or 0x-prefixed hex literal with an
// optional width suffix glued on, e.g. 17, 42u32, 0xdeadbeef,
// 0xffu8. Interpretation is deferred until the expected type is known.
func scanIntLiteral(buf []byte, offset int) (*intLiteral, int) {
	offset = skipWsAndComments(buf, offset)
	start := offset
	isHex := false
	if offset+2 < len(buf) && buf[offset] == '0' && buf[offset+1] == 'x' && isHexDigit(buf[offset+2]) {
		isHex = true
		offset += 2
	}
	i := offset
	if isHex {
		for ; i < len(buf) && isHexDigit(buf[i]); i++ {
		}
	} else {
		for ; i < len(buf) && unicode.IsDigit(rune(buf[i])); i++ {
		}
	}
	if i == offset {
		return nil, -1
	}
	lit := &intLiteral{
		exprInfo: exprInfo{offset: start},
		text:     string(buf[offset:i]),
		isHex:    isHex,
	}
	if i < len(buf) && buf[i] == 'u' {
		j := i + 1
		for ; j < len(buf) && unicode.IsDigit(rune(buf[j])); j++ {
		}
		if j > i+1 {
			w, err := strconv.ParseUint(string(buf[i+1:j]), 10, 32)
			if err == nil {
				lit.suffix = uint(w)
				i = j
			}
		}
	}
	return lit, i
}

func scanIdentifier(buf []byte, offset int) (string, int) {
	offset = skipWsAndComments(buf, offset)
	i := offset
	for ; i < len(buf) && isIDChar(buf[i], i == offset); i++ {
	}
	if i == offset {
		return "", -1
	}
	return string(buf[offset:i]), i
}

func scanTok(buf []byte, offset int, s string) int {
	offset = skipWsAndComments(buf, offset)
	prefix := []byte(s)
	if bytes.HasPrefix(buf[offset:], prefix) {
		return offset + len(prefix)
	}
	return -1
}

func scanKeyword(buf []byte, offset int, keyword string) int {
	id, newOffset := scanIdentifier(buf, offset)
	if newOffset < 0 {
		return -1
	}
	if id != keyword {
		return -1
	}
	return newOffset
}

func skipWsAndComments(buf []byte, offset int) int {
	var inComment bool
	for ; offset < len(buf); offset++ {
		c := buf[offset]
		if inComment {
			if c == '\n' {
				inComment = false
			}
		} else {
			if c == '/' && offset < len(buf)-1 && buf[offset+1] == '/' {
				inComment = true
				offset++ // skip two chars instead of one
			} else if !unicode.IsSpace(rune(c)) {
				break
			}
		}
	}
	return offset
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func isIDChar(c byte, initial bool) bool {
	if c >= 'a' && c <= 'z' {
		return true
	}
	if c >= 'A' && c <= 'Z' {
		return true
	}
	if c == '_' {
		return true
	}
	if initial {
		return false
	}
	return unicode.IsDigit(rune(c))
}

type parserErr struct {
	buf    []byte
	offset int
	format string
	args   []interface{}
}

func (p parserErr) Error() string {
	line, col := lineCol(p.buf, p.offset)
	args := []interface{}{line, col}
	args = append(args, p.args...)
	return fmt.Sprintf("line %d, col %d: "+p.format, args...)
}

// lineCol converts a byte offset into a position. Lines start at 1,
// columns start at 0, like nature intended.
func lineCol(buf []byte, offset int) (line, col int) {
	line = 1
	for i := 0; i < offset && i < len(buf); i++ {
		if buf[i] == '\n' {
			line++
			col = 0
		} else {
			col++
		}
	}
	return line, col
}
