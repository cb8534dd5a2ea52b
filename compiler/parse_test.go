package compiler

import (
	"strings"
	"testing"
)

func TestParseProgram(t *testing.T) {
	src := `
// A timelocked payment with an escape hatch.
type Hash = u256;

fn check(h: Hash) -> bool {
	jet::eq_256(jet::sha2_256(witness::preimage), h)
}

fn main() {
	let after: u32 = param::height;
	match witness::path {
		false => { assert!(jet::le_32(after, jet::lock_time())); },
		true => { assert!(check(param::target)); },
	};
}
`
	prog, err := parse([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	if len(prog.aliases) != 1 || prog.aliases[0].name != "Hash" {
		t.Errorf("got aliases %v", prog.aliases)
	}
	if len(prog.funcs) != 2 {
		t.Fatalf("got %d functions, want 2", len(prog.funcs))
	}
	main := prog.funcs[1]
	if main.name != "main" || len(main.params) != 0 || main.result != nil {
		t.Errorf("bad main signature: %+v", main)
	}
	if len(main.body.stmts) != 2 || main.body.final != nil {
		t.Errorf("got %d statements and final %v", len(main.body.stmts), main.body.final)
	}
}

func TestParseLiterals(t *testing.T) {
	cases := []struct {
		src    string
		text   string
		isHex  bool
		suffix uint
	}{
		{src: "42", text: "42"},
		{src: "42u32", text: "42", suffix: 32},
		{src: "0xdeadbeef", text: "deadbeef", isHex: true},
		{src: "0xffu8", text: "ff", isHex: true, suffix: 8},
		{src: "0u256", text: "0", suffix: 256},
	}
	for _, c := range cases {
		lit, pos := scanIntLiteral([]byte(c.src), 0)
		if pos != len(c.src) {
			t.Errorf("%s: scanned %d bytes, want %d", c.src, pos, len(c.src))
			continue
		}
		if lit.text != c.text || lit.isHex != c.isHex || lit.suffix != c.suffix {
			t.Errorf("%s: got {text: %q, isHex: %v, suffix: %d}", c.src, lit.text, lit.isHex, lit.suffix)
		}
	}
}

func TestParseOperatorPrecedence(t *testing.T) {
	src := `fn main() { assert!(a == b && c < d || e); }`
	prog, err := parse([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	cond := prog.funcs[0].body.stmts[0].(*assertStatement).cond
	or, ok := cond.(*binaryExpr)
	if !ok || or.op != "||" {
		t.Fatalf("top operator is %v, want ||", cond)
	}
	and, ok := or.left.(*binaryExpr)
	if !ok || and.op != "&&" {
		t.Fatalf("left of || is %v, want &&", or.left)
	}
	if l, ok := and.left.(*binaryExpr); !ok || l.op != "==" {
		t.Errorf("left of && is %v, want ==", and.left)
	}
	if r, ok := and.right.(*binaryExpr); !ok || r.op != "<" {
		t.Errorf("right of && is %v, want <", and.right)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []string{
		"fn main( { }",
		"fn main() { let x = 5; }",           // missing type annotation
		"fn main() { assert(true); }",        // missing !
		"fn main() { match x { } }",          // no arms
		"type T u32;",                        // missing =
		"fn main() { let x: u32 = 5 }",       // missing semicolon
		"contract foo() {}",                  // unknown keyword
	}
	for _, src := range cases {
		_, err := parse([]byte(src))
		if err == nil {
			t.Errorf("parse(%q) succeeded, want error", src)
			continue
		}
		if !strings.HasPrefix(err.Error(), "line ") {
			t.Errorf("parse(%q): error %q lacks position", src, err)
		}
	}
}

func TestParseDepthLimit(t *testing.T) {
	deep := "fn main() { let x: u8 = " + strings.Repeat("(", 600) + "1u8" + strings.Repeat(")", 600) + "; }"
	_, err := parse([]byte(deep))
	if err == nil {
		t.Fatal("deeply nested expression parsed, want depth error")
	}
	if !strings.Contains(err.Error(), "nesting") {
		t.Errorf("got %q, want a nesting diagnostic", err)
	}

	ok := "fn main() { let x: u8 = " + strings.Repeat("(", 100) + "1u8" + strings.Repeat(")", 100) + "; }"
	if _, err := parse([]byte(ok)); err != nil {
		t.Errorf("modest nesting rejected: %v", err)
	}
}

func TestParseDeepTypeLimit(t *testing.T) {
	deep := "fn main() { let x: " + strings.Repeat("Option<", 600) + "u8" + strings.Repeat(">", 600) + " = witness::x; }"
	_, err := parse([]byte(deep))
	if err == nil {
		t.Fatal("deeply nested type parsed, want depth error")
	}
}

func TestParseComments(t *testing.T) {
	src := `
// leading comment
fn main() { // trailing comment
	// a full-line comment
	assert!(true);
}
`
	if _, err := parse([]byte(src)); err != nil {
		t.Fatal(err)
	}
}
