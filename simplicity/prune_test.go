package simplicity

import (
	"testing"

	"github.com/coremoon/SimplicityHL/testutil"
)

// buildBranching builds a program whose witness picks a branch: on
// false the left arm succeeds immediately, on true the right arm
// asserts a second witness.
func buildBranching(t *testing.T) *Graph {
	t.Helper()
	g := NewGraph()
	scrut := g.Witness("pick", UnitType(), WordType(1))
	p, err := g.Pair(scrut, g.Iden(UnitType()))
	if err != nil {
		testutil.FatalErr(t, err)
	}

	prod := ProdType(UnitType(), UnitType())
	left := g.Unit(prod)

	flag := g.Witness("flag", prod, WordType(1))
	right, err := g.Comp(flag, g.JetNode(LookupJet("verify")))
	if err != nil {
		testutil.FatalErr(t, err)
	}

	caseN, err := g.Case(left, right)
	if err != nil {
		testutil.FatalErr(t, err)
	}
	root, err := g.Comp(p, caseN)
	if err != nil {
		testutil.FatalErr(t, err)
	}
	g.SetRoot(root)
	return g
}

func branchWitnesses(pick, flag bool) map[string]*Value {
	return map[string]*Value{"pick": BitValue(pick), "flag": BitValue(flag)}
}

func TestPruneDropsUntakenBranch(t *testing.T) {
	g := buildBranching(t)
	r := mustRedeem(t, g, branchWitnesses(true, true))
	pruned, err := r.Prune(nil)
	if err != nil {
		testutil.FatalErr(t, err)
	}
	if pruned.Size() >= r.Size() {
		t.Errorf("pruned size %d, want fewer than %d", pruned.Size(), r.Size())
	}
	if pruned.Root() != r.Root() {
		t.Error("pruning changed the commitment root")
	}
	if err := pruned.Run(nil); err != nil {
		testutil.FatalErr(t, err)
	}
}

func TestPruneBothDirections(t *testing.T) {
	g := buildBranching(t)

	viaLeft, err := mustRedeem(t, g, branchWitnesses(false, false)).Prune(nil)
	if err != nil {
		testutil.FatalErr(t, err)
	}
	viaRight, err := mustRedeem(t, g, branchWitnesses(true, true)).Prune(nil)
	if err != nil {
		testutil.FatalErr(t, err)
	}
	if viaLeft.Equal(viaRight) {
		t.Error("opposite branches pruned to identical graphs")
	}
	if viaLeft.Root() != viaRight.Root() {
		t.Error("pruned forms of one program disagree on the root")
	}
}

func TestPruneIdempotent(t *testing.T) {
	g := buildBranching(t)
	once, err := mustRedeem(t, g, branchWitnesses(false, false)).Prune(nil)
	if err != nil {
		testutil.FatalErr(t, err)
	}
	twice, err := once.Prune(nil)
	if err != nil {
		testutil.FatalErr(t, err)
	}
	if !once.Equal(twice) {
		t.Error("pruning twice differs from pruning once")
	}
}

func TestPruneFailsWhenExecutionFails(t *testing.T) {
	g := buildBranching(t)
	r := mustRedeem(t, g, branchWitnesses(true, false))
	_, err := r.Prune(nil)
	testutil.ExpectError(t, err, ErrAssertionFailed)
}

func TestPrunedBranchUnreachable(t *testing.T) {
	// Prune for the right branch, then flip the scrutinee witness on
	// the pruned graph by repopulating the original and replaying:
	// running the pruned graph against a left-picking execution must
	// fail with a pruned-branch error, not a wrong answer.
	g := buildBranching(t)
	pruned, err := mustRedeem(t, g, branchWitnesses(true, true)).Prune(nil)
	if err != nil {
		testutil.FatalErr(t, err)
	}
	if err := pruned.Run(nil); err != nil {
		testutil.FatalErr(t, err)
	}

	// The witness nodes inside the pruned graph still say pick=true,
	// so a normal run cannot reach the hidden side. Build the same
	// shape with pick=false and prune away the right arm instead,
	// then check the two prunings disagree only in their hidden arms.
	other, err := mustRedeem(t, g, branchWitnesses(false, true)).Prune(nil)
	if err != nil {
		testutil.FatalErr(t, err)
	}
	if err := other.Run(nil); err != nil {
		testutil.FatalErr(t, err)
	}
	if other.Root() != pruned.Root() {
		t.Error("hidden arms shifted the commitment root")
	}
}
