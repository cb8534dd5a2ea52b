package simplicityhl

import (
	"github.com/coremoon/SimplicityHL/compiler"
	"github.com/coremoon/SimplicityHL/errors"
	"github.com/coremoon/SimplicityHL/simplicity"
)

// TemplateProgram is a parsed and type-checked source file whose
// parameters have not been bound yet. One template can be
// instantiated many times with different arguments.
type TemplateProgram struct {
	file string
	prog *compiler.Program
}

// NewTemplate parses and type-checks source. The file name is used in
// error messages only.
func NewTemplate(file, source string) (*TemplateProgram, error) {
	prog, err := compiler.Analyze([]byte(source))
	if err != nil {
		return nil, errors.Wrap(err, file)
	}
	return &TemplateProgram{file: file, prog: prog}, nil
}

// Parameters returns the declared parameters (param::NAME uses) and
// their types.
func (t *TemplateProgram) Parameters() compiler.Parameters {
	return t.prog.Parameters()
}

// WitnessTypes returns the declared witnesses (witness::NAME uses)
// and their types.
func (t *TemplateProgram) WitnessTypes() compiler.WitnessTypes {
	return t.prog.WitnessTypes()
}

// Instantiate binds every parameter to its argument value and lowers
// the program to a combinator graph. The arguments must match the
// declared parameters exactly. When includeDebugSymbols is set, the
// compiled program carries a table mapping graph nodes back to source
// positions.
func (t *TemplateProgram) Instantiate(args compiler.Arguments, includeDebugSymbols bool) (*CompiledProgram, error) {
	if err := args.IsConsistent(t.prog.Parameters()); err != nil {
		return nil, errors.Wrap(err, t.file)
	}
	graph, debug, err := t.prog.Compile(args, includeDebugSymbols)
	if err != nil {
		return nil, errors.Wrap(err, t.file)
	}
	commit, err := graph.Commit()
	if err != nil {
		return nil, errors.Wrap(err, t.file)
	}
	return &CompiledProgram{
		file:      t.file,
		graph:     graph,
		commit:    commit,
		witnesses: t.prog.WitnessTypes(),
		debug:     debug,
	}, nil
}

// CompiledProgram is an instantiated program: parameters bound,
// witnesses still placeholders. Its commitment root is what a
// spending condition locks to.
type CompiledProgram struct {
	file      string
	graph     *simplicity.Graph
	commit    *simplicity.Commit
	witnesses compiler.WitnessTypes
	debug     *compiler.DebugSymbols
}

// Commit is the committed form of the program. Its root is invariant
// under binding names and witness population.
func (c *CompiledProgram) Commit() *simplicity.Commit { return c.commit }

// WitnessTypes returns the witnesses the program still needs and
// their types.
func (c *CompiledProgram) WitnessTypes() compiler.WitnessTypes {
	out := make(compiler.WitnessTypes, len(c.witnesses))
	for k, v := range c.witnesses {
		out[k] = v
	}
	return out
}

// DebugSymbols is the node-to-source table. It is empty unless the
// program was instantiated with includeDebugSymbols.
func (c *CompiledProgram) DebugSymbols() *compiler.DebugSymbols { return c.debug }

// Satisfy fills every witness placeholder with its value. The values
// must match the declared witnesses exactly. With a non-nil env the
// program is also executed and pruned: match branches the execution
// did not take are cut down to their commitment roots, which leaves
// the commitment root unchanged. With a nil env the program is
// returned unpruned and unexecuted.
func (c *CompiledProgram) Satisfy(values compiler.WitnessValues, env *simplicity.Environ) (*SatisfiedProgram, error) {
	if err := values.IsConsistent(c.witnesses); err != nil {
		return nil, errors.Wrap(err, c.file)
	}
	lowered := make(map[string]*simplicity.Value, len(values))
	for name, v := range values {
		lowered[name] = v.Structural()
	}
	redeem, err := c.graph.PopulateWitnesses(lowered)
	if err != nil {
		return nil, errors.Wrap(err, c.file)
	}
	if env != nil {
		redeem, err = redeem.Prune(env)
		if err != nil {
			return nil, errors.Wrap(err, c.file)
		}
	}
	return &SatisfiedProgram{file: c.file, redeem: redeem, debug: c.debug}, nil
}

// SatisfiedProgram has all witnesses filled in and is ready to run.
type SatisfiedProgram struct {
	file   string
	redeem *simplicity.Redeem
	debug  *compiler.DebugSymbols
}

// Redeem is the runnable form of the program.
func (s *SatisfiedProgram) Redeem() *simplicity.Redeem { return s.redeem }

// DebugSymbols is the node-to-source table carried over from
// instantiation.
func (s *SatisfiedProgram) DebugSymbols() *compiler.DebugSymbols { return s.debug }

// Compile parses, checks and instantiates source in one step.
func Compile(file, source string, args compiler.Arguments, includeDebugSymbols bool) (*CompiledProgram, error) {
	t, err := NewTemplate(file, source)
	if err != nil {
		return nil, err
	}
	return t.Instantiate(args, includeDebugSymbols)
}

// Satisfy compiles source and fills its witnesses in one step.
func Satisfy(file, source string, args compiler.Arguments, values compiler.WitnessValues, env *simplicity.Environ) (*SatisfiedProgram, error) {
	c, err := Compile(file, source, args, false)
	if err != nil {
		return nil, err
	}
	return c.Satisfy(values, env)
}
