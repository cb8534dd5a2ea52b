/*
Package simplicityhl compiles a small statically-typed contract
language to Simplicity combinator graphs for use as spending
conditions.

A program moves through three states. NewTemplate parses and
type-checks source into a TemplateProgram. Instantiate binds the
program's parameters to concrete values, producing a CompiledProgram
with a commitment root that a transaction output can lock to. Satisfy
fills in the witness values a spender supplies, producing a
SatisfiedProgram that can be run, and optionally prunes untaken
branches against an execution environment.

	tmpl, err := simplicityhl.NewTemplate("lock.simf", src)
	prog, err := tmpl.Instantiate(args, false)
	sat, err := prog.Satisfy(witnesses, &simplicity.Environ{LockTime: 700000})
	err = sat.Redeem().Run(&simplicity.Environ{LockTime: 700000})

The language itself is documented in the compiler package; the graph,
commitment and execution machinery lives in the simplicity package.
*/
package simplicityhl
