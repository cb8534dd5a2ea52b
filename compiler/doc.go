/*
Package compiler turns contract source into a Simplicity combinator
graph.

A program describes a spending condition. Its main function either
runs to completion, approving the spend, or fails an assertion,
rejecting it. The program is compiled in two stages: parameters
(param::NAME) are bound to argument values at instantiation time,
while witnesses (witness::NAME) stay placeholders until satisfaction
time. Both are declared by use: mentioning param::threshold at type
u32 declares a u32 parameter named threshold.

The grammar:

  program = (alias | function)*

  alias = "type" identifier "=" type ";"

    Aliases are purely structural shorthand. They may not refer to
    themselves, directly or through other aliases.

  function = "fn" identifier "(" [params] ")" ["->" type] block

    A program must define fn main() with no parameters and no
    result. Calls to other functions are expanded inline at each
    call site; recursive calls are rejected.

  params = param | params "," param

  param = identifier ":" type

  type = "bool" | "u8" | "u16" | "u32" | "u64" | "u128" | "u256"
       | "(" ")" | "(" type ("," type)+ ")"
       | "[" type ";" int "]"
       | "Either" "<" type "," type ">"
       | "Option" "<" type ">"
       | identifier

    Types are compared structurally. Tuples lower to right-nested
    pairs, arrays to left-heavy balanced pair trees, bool to 1+1
    with false on the left, Option<T> to 1+T with None on the left.

  block = "{" statement* [expr] "}"

    The trailing expression without a semicolon is the block's
    value; without one the block yields ().

  statement = let | assert | expr ";"

  let = "let" pattern ":" type "=" expr ";"

    Later bindings of the same name shadow earlier ones.

  pattern = identifier | "_" | "(" pattern ("," pattern)* ")"

    Tuple patterns destructure tuples and arrays.

  assert = "assert" "!" "(" expr ")" ";"

    Fails the program unless the boolean expression holds.

  expr = literal | identifier
       | "param" "::" identifier | "witness" "::" identifier
       | "jet" "::" identifier "(" [args] ")"
       | identifier "(" [args] ")"
       | "(" [args] ")" | "[" args "]"
       | "Left" "(" expr ")" | "Right" "(" expr ")"
       | "Some" "(" expr ")" | "None"
       | "!" expr | expr binop expr
       | block | match

  binop = "||" | "&&" | "==" | "!=" | "<" | ">" | "<=" | ">="

    Operators desugar to jet calls: a != b is jet::not applied to
    jet::eq_N(a, b), a > b is jet::lt_N(b, a), and so on. && and
    || evaluate both sides.

  match = "match" expr "{" arm "," arm [","] "}"

  arm = armpat "=>" expr

  armpat = "false" | "true"
         | "Left" "(" binder ")" | "Right" "(" binder ")"
         | "None" | "Some" "(" binder ")"

    Both arms are required, with the structurally-left constructor
    first: false before true, Left before Right, None before Some.

Integer literals are decimal with an optional width suffix (42u32) or
hex (0xdeadbeef). A hex literal must spell its full width: 8 digits
for u32. Decimal literals are limited to widths up to u64.
*/
package compiler
