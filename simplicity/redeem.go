package simplicity

import "github.com/coremoon/SimplicityHL/errors"

// ErrWitnessShape indicates a witness population request that does not
// line up with the graph's placeholder nodes. The caller is expected to
// have checked the supplied set against the declared witness types
// beforehand, so this is a defect, not a user error.
var ErrWitnessShape = errors.New("witness population mismatch")

// Redeem is the satisfied form of a program: every witness placeholder
// carries a concrete value. It is the form that is pruned and executed.
type Redeem struct {
	nodes []node
	root  NodeID
	cmr   [32]byte
}

// PopulateWitnesses replaces every witness placeholder with the value
// supplied under its key, producing the redeem form. Every placeholder
// key must be present and every value must inhabit the placeholder's
// codomain type.
func (g *Graph) PopulateWitnesses(values map[string]*Value) (*Redeem, error) {
	if g.root == NoNode {
		return nil, ErrNoMain
	}
	nodes := make([]node, len(g.nodes))
	copy(nodes, g.nodes)
	for i := range nodes {
		n := &nodes[i]
		if n.op != OpWitness {
			continue
		}
		v, ok := values[n.wname]
		if !ok {
			return nil, errors.Wrapf(ErrWitnessShape, "no value for witness %q", n.wname)
		}
		if !v.Matches(n.cod) {
			return nil, errors.Wrapf(ErrWitnessShape, "witness %q value does not inhabit %s", n.wname, n.cod)
		}
		n.value = v
		n.name = ""
		n.wname = ""
	}
	for i := range nodes {
		nodes[i].name = ""
	}
	cmrs := merkleRoots(nodes)
	return &Redeem{nodes: nodes, root: g.root, cmr: cmrs[g.root]}, nil
}

// Root returns the commitment Merkle root of the redeem form. Witness
// values do not contribute to the root, so it equals the root of the
// commit form, before and after pruning.
func (r *Redeem) Root() [32]byte { return r.cmr }

// Size returns the number of nodes in the redeem form.
func (r *Redeem) Size() int { return len(r.nodes) }

// Equal reports whether r and o are identical redeem graphs: same
// arena, node for node, including witness values.
func (r *Redeem) Equal(o *Redeem) bool {
	if r.root != o.root || len(r.nodes) != len(o.nodes) {
		return false
	}
	for i := range r.nodes {
		a, b := &r.nodes[i], &o.nodes[i]
		if a.op != b.op || a.x != b.x || a.y != b.y ||
			!a.dom.Equal(b.dom) || !a.cod.Equal(b.cod) ||
			a.hasHid != b.hasHid || a.hidden != b.hidden {
			return false
		}
		if (a.value == nil) != (b.value == nil) {
			return false
		}
		if a.value != nil && !a.value.Equal(b.value) {
			return false
		}
		if (a.jet == nil) != (b.jet == nil) {
			return false
		}
		if a.jet != nil && a.jet.Name != b.jet.Name {
			return false
		}
	}
	return true
}
