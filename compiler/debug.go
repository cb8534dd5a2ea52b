package compiler

import (
	"github.com/coremoon/SimplicityHL/simplicity"
)

// Symbol ties a graph node back to the source construct it was
// lowered from.
type Symbol struct {
	Name string
	Line int
	Col  int
}

// DebugSymbols maps graph nodes to source positions. Symbols survive
// neither commitment nor pruning; they are a side table for tooling.
type DebugSymbols struct {
	syms map[simplicity.NodeID]Symbol
}

func newDebugSymbols() *DebugSymbols {
	return &DebugSymbols{syms: make(map[simplicity.NodeID]Symbol)}
}

// Lookup returns the symbol recorded for a node, if any.
func (d *DebugSymbols) Lookup(id simplicity.NodeID) (Symbol, bool) {
	if d == nil {
		return Symbol{}, false
	}
	s, ok := d.syms[id]
	return s, ok
}

// Len is the number of nodes with symbols.
func (d *DebugSymbols) Len() int {
	if d == nil {
		return 0
	}
	return len(d.syms)
}

// record keeps the first symbol for a node. Hash-consing can land two
// source constructs on one node; the earlier one wins, matching node
// naming.
func (d *DebugSymbols) record(id simplicity.NodeID, name string, buf []byte, offset int) {
	if d == nil {
		return
	}
	if _, ok := d.syms[id]; ok {
		return
	}
	line, col := lineCol(buf, offset)
	d.syms[id] = Symbol{Name: name, Line: line, Col: col}
}
