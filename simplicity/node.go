// Package simplicity implements the combinator calculus that compiled
// contracts target: typed graph nodes with structural sharing, the
// anonymous commitment form and its Merkle root, witness population,
// environment-conditioned pruning, and an interpreter.
//
// Nodes live in an append-only arena owned by a Graph; a node reference
// is an index into the arena. Children always have a smaller index than
// their parents, so graphs are acyclic by construction. Structurally
// identical nodes (same operator, same children, same types, same
// payload) are unified at construction time, which bounds graph size
// under repeated subexpressions.
package simplicity

import (
	"encoding/hex"
	"fmt"

	"github.com/coremoon/SimplicityHL/errors"
)

// Op is a combinator operator tag.
type Op uint8

const (
	OpIden Op = iota
	OpUnit
	OpInjL
	OpInjR
	OpTake
	OpDrop
	OpComp
	OpPair
	OpCase
	OpAssertL
	OpAssertR
	OpWitness
	OpJet
	OpConst
)

var opNames = [...]string{
	"iden", "unit", "injl", "injr", "take", "drop", "comp", "pair",
	"case", "assertl", "assertr", "witness", "jet", "const",
}

func (op Op) String() string { return opNames[op] }

// NodeID identifies a node within one graph's arena.
type NodeID int32

// NoNode is the absent child reference.
const NoNode NodeID = -1

// ErrNodeType is the root of all node-construction type errors. A
// construction failure means the caller lowered a malformed tree; it is
// a defect in the front end, not a user error.
var ErrNodeType = errors.New("combinator type mismatch")

type node struct {
	op     Op
	x, y   NodeID
	dom    *Type
	cod    *Type
	name   string
	wname  string   // witness placeholder key
	value  *Value   // Const payload; Witness value in the redeem form
	jet    *Jet
	hidden [32]byte // commitment of the pruned branch on assert nodes
	hasHid bool
}

// Graph is a named combinator graph under construction: an arena of
// nodes plus the hash-consing table. The table is private to one graph
// and discarded with it; graphs from independent compilations share
// nothing.
type Graph struct {
	nodes []node
	dedup map[string]NodeID
	names map[string]NodeID
	root  NodeID
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		dedup: make(map[string]NodeID),
		names: make(map[string]NodeID),
		root:  NoNode,
	}
}

func (g *Graph) intern(n node) NodeID {
	k := nodeKey(&n)
	if id, ok := g.dedup[k]; ok {
		return id
	}
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, n)
	g.dedup[k] = id
	return id
}

// nodeKey identifies a node for deduplication: operator, child
// identities, types, and payload. Names are excluded; they have no
// semantic effect.
func nodeKey(n *node) string {
	aux := n.wname
	if n.value != nil {
		aux = n.value.key()
	}
	if n.jet != nil {
		aux = n.jet.Name
	}
	if n.hasHid {
		aux = hex.EncodeToString(n.hidden[:])
	}
	return fmt.Sprintf("%d|%d|%d|%s|%s|%s", n.op, n.x, n.y, n.dom.Key(), n.cod.Key(), aux)
}

// Iden returns the identity node t -> t.
func (g *Graph) Iden(t *Type) NodeID {
	return g.intern(node{op: OpIden, x: NoNode, y: NoNode, dom: t, cod: t})
}

// Unit returns the unit node dom -> 1.
func (g *Graph) Unit(dom *Type) NodeID {
	return g.intern(node{op: OpUnit, x: NoNode, y: NoNode, dom: dom, cod: unitType})
}

// InjL wraps t: A -> B as A -> B+C.
func (g *Graph) InjL(t NodeID, c *Type) NodeID {
	n := g.nodes[t]
	return g.intern(node{op: OpInjL, x: t, y: NoNode, dom: n.dom, cod: SumType(n.cod, c)})
}

// InjR wraps t: A -> C as A -> B+C.
func (g *Graph) InjR(t NodeID, b *Type) NodeID {
	n := g.nodes[t]
	return g.intern(node{op: OpInjR, x: t, y: NoNode, dom: n.dom, cod: SumType(b, n.cod)})
}

// Take wraps t: A -> C as A*B -> C.
func (g *Graph) Take(t NodeID, b *Type) NodeID {
	n := g.nodes[t]
	return g.intern(node{op: OpTake, x: t, y: NoNode, dom: ProdType(n.dom, b), cod: n.cod})
}

// Drop wraps t: B -> C as A*B -> C.
func (g *Graph) Drop(t NodeID, a *Type) NodeID {
	n := g.nodes[t]
	return g.intern(node{op: OpDrop, x: t, y: NoNode, dom: ProdType(a, n.dom), cod: n.cod})
}

// Comp composes s: A -> B with t: B -> C into A -> C.
func (g *Graph) Comp(s, t NodeID) (NodeID, error) {
	ns, nt := g.nodes[s], g.nodes[t]
	if !ns.cod.Equal(nt.dom) {
		return NoNode, errors.Wrapf(ErrNodeType, "comp: %s vs %s", ns.cod, nt.dom)
	}
	return g.intern(node{op: OpComp, x: s, y: t, dom: ns.dom, cod: nt.cod}), nil
}

// Pair combines s: A -> B and t: A -> C into A -> B*C.
func (g *Graph) Pair(s, t NodeID) (NodeID, error) {
	ns, nt := g.nodes[s], g.nodes[t]
	if !ns.dom.Equal(nt.dom) {
		return NoNode, errors.Wrapf(ErrNodeType, "pair: %s vs %s", ns.dom, nt.dom)
	}
	return g.intern(node{op: OpPair, x: s, y: t, dom: ns.dom, cod: ProdType(ns.cod, nt.cod)}), nil
}

// Case splits on a sum: given s: A*C -> D and t: B*C -> D, the case
// node has type (A+B)*C -> D.
func (g *Graph) Case(s, t NodeID) (NodeID, error) {
	ns, nt := g.nodes[s], g.nodes[t]
	if ns.dom.kind != prodKind || nt.dom.kind != prodKind {
		return NoNode, errors.Wrapf(ErrNodeType, "case: arm domains %s, %s", ns.dom, nt.dom)
	}
	if !ns.dom.right.Equal(nt.dom.right) || !ns.cod.Equal(nt.cod) {
		return NoNode, errors.Wrapf(ErrNodeType, "case: arm types %s -> %s vs %s -> %s", ns.dom, ns.cod, nt.dom, nt.cod)
	}
	dom := ProdType(SumType(ns.dom.left, nt.dom.left), ns.dom.right)
	return g.intern(node{op: OpCase, x: s, y: t, dom: dom, cod: ns.cod}), nil
}

// Witness returns a placeholder node dom -> cod for the named witness.
// It stays unresolved until the graph is populated with witness values.
func (g *Graph) Witness(name string, dom, cod *Type) NodeID {
	return g.intern(node{op: OpWitness, x: NoNode, y: NoNode, dom: dom, cod: cod, wname: name})
}

// JetNode returns a primitive invocation node for j, with j's fixed
// signature.
func (g *Graph) JetNode(j *Jet) NodeID {
	return g.intern(node{op: OpJet, x: NoNode, y: NoNode, dom: j.Dom, cod: j.Cod, jet: j})
}

// Const returns a constant node dom -> cod producing v. v must inhabit
// cod.
func (g *Graph) Const(dom, cod *Type, v *Value) (NodeID, error) {
	if !v.Matches(cod) {
		return NoNode, errors.Wrapf(ErrNodeType, "const: value does not inhabit %s", cod)
	}
	return g.intern(node{op: OpConst, x: NoNode, y: NoNode, dom: dom, cod: cod, value: v}), nil
}

// SetName attaches a diagnostic name to id. Names must be unique within
// the graph; if id already carries a name (for instance because two
// named bindings were unified by sharing), the earlier name wins and
// SetName is a no-op.
func (g *Graph) SetName(id NodeID, name string) error {
	if g.nodes[id].name != "" {
		return nil
	}
	if prev, ok := g.names[name]; ok && prev != id {
		return errors.Wrapf(ErrNodeType, "duplicate node name %q", name)
	}
	g.names[name] = id
	g.nodes[id].name = name
	return nil
}

// SetRoot marks id as the graph root.
func (g *Graph) SetRoot(id NodeID) { g.root = id }

// Root returns the graph root, or NoNode.
func (g *Graph) Root() NodeID { return g.root }

// Len returns the number of nodes in the arena.
func (g *Graph) Len() int { return len(g.nodes) }

// NameOf returns the diagnostic name of id, if any.
func (g *Graph) NameOf(id NodeID) string { return g.nodes[id].name }

// OpOf returns the operator tag of id.
func (g *Graph) OpOf(id NodeID) Op { return g.nodes[id].op }

// TypeOf returns the domain and codomain of id.
func (g *Graph) TypeOf(id NodeID) (dom, cod *Type) {
	return g.nodes[id].dom, g.nodes[id].cod
}

// WitnessNames returns the placeholder key of every witness node, in
// arena order (duplicates possible when one witness is referenced at
// several environment shapes).
func (g *Graph) WitnessNames() []string {
	var names []string
	for _, n := range g.nodes {
		if n.op == OpWitness {
			names = append(names, n.wname)
		}
	}
	return names
}
