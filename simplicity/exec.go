package simplicity

import "github.com/coremoon/SimplicityHL/errors"

// ErrEvalDepth indicates a program whose evaluation nesting exceeds the
// supported bound. Graph depth is bounded by the front end, so this is
// a guard against malformed graphs, not a limit honest programs hit.
var ErrEvalDepth = errors.New("evaluation exceeds supported depth")

// ErrPrunedBranch indicates execution reached the hidden branch of an
// assert node, meaning the program was pruned for a different
// environment than it is now being run in.
var ErrPrunedBranch = errors.New("execution reached a pruned branch")

const maxEvalDepth = 1 << 15

type evaluator struct {
	nodes []node
	env   *Environ
	trace map[NodeID]uint8 // case branches taken; nil when not tracing
}

const (
	tookLeft  uint8 = 1 << iota
	tookRight
)

// Run interprets the redeem-form program in the given environment. A
// nil environment means the zero environment. The error is terminal:
// either an assertion/jet failure or a structural defect.
func (r *Redeem) Run(env *Environ) error {
	_, err := r.run(env, nil)
	return err
}

func (r *Redeem) run(env *Environ, trace map[NodeID]uint8) (*Value, error) {
	if env == nil {
		env = &Environ{}
	}
	ev := &evaluator{nodes: r.nodes, env: env, trace: trace}
	return ev.eval(r.root, unitValue, 0)
}

func (ev *evaluator) eval(id NodeID, input *Value, depth int) (*Value, error) {
	if depth > maxEvalDepth {
		return nil, ErrEvalDepth
	}
	n := &ev.nodes[id]
	switch n.op {
	case OpIden:
		return input, nil

	case OpUnit:
		return unitValue, nil

	case OpInjL:
		v, err := ev.eval(n.x, input, depth+1)
		if err != nil {
			return nil, err
		}
		return LeftValue(v), nil

	case OpInjR:
		v, err := ev.eval(n.x, input, depth+1)
		if err != nil {
			return nil, err
		}
		return RightValue(v), nil

	case OpTake:
		if input.kind != pairVal {
			return nil, errors.Wrap(ErrBadJetInput, "take on non-pair")
		}
		return ev.eval(n.x, input.a, depth+1)

	case OpDrop:
		if input.kind != pairVal {
			return nil, errors.Wrap(ErrBadJetInput, "drop on non-pair")
		}
		return ev.eval(n.x, input.b, depth+1)

	case OpComp:
		mid, err := ev.eval(n.x, input, depth+1)
		if err != nil {
			return nil, err
		}
		return ev.eval(n.y, mid, depth+1)

	case OpPair:
		a, err := ev.eval(n.x, input, depth+1)
		if err != nil {
			return nil, err
		}
		b, err := ev.eval(n.y, input, depth+1)
		if err != nil {
			return nil, err
		}
		return PairValue(a, b), nil

	case OpCase, OpAssertL, OpAssertR:
		return ev.evalCase(id, n, input, depth)

	case OpWitness:
		if n.value == nil {
			return nil, errors.Wrap(ErrWitnessShape, "unpopulated witness")
		}
		return n.value, nil

	case OpConst:
		return n.value, nil

	case OpJet:
		return n.jet.fn(ev.env, input)
	}
	return nil, errors.Wrapf(ErrBadJetInput, "unknown operator %d", n.op)
}

func (ev *evaluator) evalCase(id NodeID, n *node, input *Value, depth int) (*Value, error) {
	if input.kind != pairVal {
		return nil, errors.Wrap(ErrBadJetInput, "case on non-pair")
	}
	scrut, rest := input.a, input.b
	switch scrut.kind {
	case leftVal:
		if n.op == OpAssertR {
			return nil, errors.Wrap(ErrPrunedBranch, "left")
		}
		if ev.trace != nil {
			ev.trace[id] |= tookLeft
		}
		return ev.eval(n.x, PairValue(scrut.a, rest), depth+1)

	case rightVal:
		if n.op == OpAssertL {
			return nil, errors.Wrap(ErrPrunedBranch, "right")
		}
		if ev.trace != nil {
			ev.trace[id] |= tookRight
		}
		arm := n.y
		if n.op == OpAssertR {
			arm = n.x
		}
		return ev.eval(arm, PairValue(scrut.a, rest), depth+1)
	}
	return nil, errors.Wrap(ErrBadJetInput, "case on non-sum")
}
