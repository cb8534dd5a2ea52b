package compiler

import (
	"fmt"
	"sort"
)

// Parameters maps parameter names (param::NAME) to their declared
// types. WitnessTypes does the same for witness names (witness::NAME).
// Both are derived from the source by declaration-by-use.
type (
	Parameters   map[string]*ResolvedType
	WitnessTypes map[string]*ResolvedType
)

// Arguments maps parameter names to the values that instantiate them.
// WitnessValues maps witness names to the values that satisfy them.
type (
	Arguments     map[string]*Value
	WitnessValues map[string]*Value
)

// ConsistencyKind classifies a mismatch between a declared name set
// and a supplied value map.
type ConsistencyKind uint8

const (
	MissingKey ConsistencyKind = iota
	UnexpectedKey
	TypeMismatch
)

// ConsistencyError is the first violation found when checking a value
// map against its declared name set. Checking is deterministic: keys
// are visited in sorted order, declared names first.
type ConsistencyError struct {
	Kind     ConsistencyKind
	Key      string
	Declared *ResolvedType // MissingKey, TypeMismatch
	Supplied *ResolvedType // TypeMismatch
}

func (e *ConsistencyError) Error() string {
	switch e.Kind {
	case MissingKey:
		return fmt.Sprintf("missing value for key \"%s\" (declared %s)", e.Key, e.Declared)
	case UnexpectedKey:
		return fmt.Sprintf("unexpected key \"%s\"", e.Key)
	default:
		return fmt.Sprintf("key \"%s\": declared type %s, supplied type %s", e.Key, e.Declared, e.Supplied)
	}
}

// IsConsistent reports whether a maps exactly the declared parameter
// names to values of the declared types.
func (a Arguments) IsConsistent(params Parameters) error {
	return checkConsistent(map[string]*ResolvedType(params), map[string]*Value(a))
}

// IsConsistent reports whether w maps exactly the declared witness
// names to values of the declared types.
func (w WitnessValues) IsConsistent(types WitnessTypes) error {
	return checkConsistent(map[string]*ResolvedType(types), map[string]*Value(w))
}

func checkConsistent(declared map[string]*ResolvedType, supplied map[string]*Value) error {
	for _, key := range sortedTypeKeys(declared) {
		v, ok := supplied[key]
		if !ok {
			return &ConsistencyError{Kind: MissingKey, Key: key, Declared: declared[key]}
		}
		if !v.Type().Equal(declared[key]) {
			return &ConsistencyError{
				Kind:     TypeMismatch,
				Key:      key,
				Declared: declared[key],
				Supplied: v.Type(),
			}
		}
	}
	for _, key := range sortedValueKeys(supplied) {
		if _, ok := declared[key]; !ok {
			return &ConsistencyError{Kind: UnexpectedKey, Key: key}
		}
	}
	return nil
}

func sortedTypeKeys(m map[string]*ResolvedType) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedValueKeys(m map[string]*Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
