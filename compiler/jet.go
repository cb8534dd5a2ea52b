package compiler

import (
	"fmt"

	"github.com/coremoon/SimplicityHL/simplicity"
)

// jetInfo describes the surface signature of a jet. The engine node
// for the jet comes from simplicity.LookupJet; the compiler only
// checks the argument list against params and nests the arguments
// into the pair shape the engine expects.
type jetInfo struct {
	name   string
	params []*ResolvedType
	result *ResolvedType
}

var jets = make(map[string]*jetInfo)

func defineSurfaceJet(name string, result *ResolvedType, params ...*ResolvedType) {
	if simplicity.LookupJet(name) == nil {
		panic(fmt.Sprintf("surface jet %s has no engine jet", name))
	}
	jets[name] = &jetInfo{name: name, params: params, result: result}
}

func lookupSurfaceJet(name string) *jetInfo {
	return jets[name]
}

func init() {
	b := BoolType()
	defineSurfaceJet("verify", UnitType(), b)
	defineSurfaceJet("not", b, b)
	defineSurfaceJet("and", b, b, b)
	defineSurfaceJet("or", b, b, b)
	defineSurfaceJet("xor", b, b, b)

	for _, w := range []uint{8, 16, 32, 64} {
		u := UintType(w)
		wide := UintType(2 * w)
		defineSurfaceJet(fmt.Sprintf("eq_%d", w), b, u, u)
		defineSurfaceJet(fmt.Sprintf("lt_%d", w), b, u, u)
		defineSurfaceJet(fmt.Sprintf("le_%d", w), b, u, u)
		defineSurfaceJet(fmt.Sprintf("add_%d", w), TupleType(b, u), u, u)
		defineSurfaceJet(fmt.Sprintf("subtract_%d", w), TupleType(b, u), u, u)
		defineSurfaceJet(fmt.Sprintf("multiply_%d", w), wide, u, u)
		defineSurfaceJet(fmt.Sprintf("and_%d", w), u, u, u)
		defineSurfaceJet(fmt.Sprintf("or_%d", w), u, u, u)
		defineSurfaceJet(fmt.Sprintf("xor_%d", w), u, u, u)
		defineSurfaceJet(fmt.Sprintf("complement_%d", w), u, u)
		defineSurfaceJet(fmt.Sprintf("min_%d", w), u, u, u)
		defineSurfaceJet(fmt.Sprintf("max_%d", w), u, u, u)
	}
	defineSurfaceJet("eq_128", b, UintType(128), UintType(128))
	defineSurfaceJet("eq_256", b, UintType(256), UintType(256))
	defineSurfaceJet("sha2_256", UintType(256), UintType(256))
	defineSurfaceJet("lock_time", UintType(32))
	defineSurfaceJet("sequence", UintType(32))
}
