package simplicity

import (
	"golang.org/x/crypto/sha3"

	"github.com/coremoon/SimplicityHL/errors"
)

// ErrNoMain indicates a graph whose root is unset or not of program
// type (unit to unit).
var ErrNoMain = errors.New("graph root is not a program")

// Commit is the anonymous form of a graph: all diagnostic names and
// witness keys erased. Its structure alone determines the commitment
// Merkle root that is committed to on chain.
type Commit struct {
	nodes []node
	root  NodeID
	cmr   [32]byte
}

// Commit strips all names from the graph and returns the anonymous
// commitment form. The graph root must be set and have program type.
func (g *Graph) Commit() (*Commit, error) {
	if g.root == NoNode {
		return nil, ErrNoMain
	}
	r := g.nodes[g.root]
	if !r.dom.Equal(unitType) || !r.cod.Equal(unitType) {
		return nil, errors.Wrapf(ErrNoMain, "root has type %s -> %s", r.dom, r.cod)
	}
	nodes := make([]node, len(g.nodes))
	copy(nodes, g.nodes)
	for i := range nodes {
		nodes[i].name = ""
		nodes[i].wname = ""
	}
	cmrs := merkleRoots(nodes)
	return &Commit{nodes: nodes, root: g.root, cmr: cmrs[g.root]}, nil
}

// Root returns the commitment Merkle root.
func (c *Commit) Root() [32]byte { return c.cmr }

// Size returns the number of nodes in the commitment form.
func (c *Commit) Size() int { return len(c.nodes) }

// merkleRoots computes the commitment hash of every node, bottom-up
// over the arena. Children precede parents, so a single pass suffices.
//
// The hash of a node is SHA3-256 over a domain prefix for its operator
// family, the hashes of its children, and the operator payload (jet
// name or constant value). Witness nodes hash with no payload: the keys
// that address them during satisfaction are diagnostic names, and names
// never reach the commitment. The case, assertl and assertr operators
// share one family prefix, with an assert node substituting the stored
// hash of its pruned branch for the missing child; pruning therefore
// preserves the Merkle root.
func merkleRoots(nodes []node) [][32]byte {
	cmrs := make([][32]byte, len(nodes))
	for i := range nodes {
		n := &nodes[i]
		h := sha3.New256()
		h.Write([]byte("shl:node:" + familyTag(n.op) + ":"))
		switch n.op {
		case OpInjL, OpInjR, OpTake, OpDrop:
			h.Write(cmrs[n.x][:])
		case OpComp, OpPair:
			h.Write(cmrs[n.x][:])
			h.Write(cmrs[n.y][:])
		case OpCase:
			h.Write(cmrs[n.x][:])
			h.Write(cmrs[n.y][:])
		case OpAssertL:
			h.Write(cmrs[n.x][:])
			h.Write(n.hidden[:])
		case OpAssertR:
			h.Write(n.hidden[:])
			h.Write(cmrs[n.x][:])
		case OpJet:
			h.Write([]byte(n.jet.Name))
		case OpConst:
			h.Write([]byte(n.cod.Key()))
			h.Write([]byte(n.value.key()))
		}
		h.Sum(cmrs[i][:0])
	}
	return cmrs
}

func familyTag(op Op) string {
	switch op {
	case OpCase, OpAssertL, OpAssertR:
		return "case"
	default:
		return op.String()
	}
}
