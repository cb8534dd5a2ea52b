package simplicity

// Environ is the transaction view visible to environment jets and to
// pruning. The zero value is a transaction with lock time and sequence
// number zero.
type Environ struct {
	LockTime uint32
	Sequence uint32
}
