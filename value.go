package smt

// Value is the leaf payload capability (§6.3). A value is "absent" iff
// its ToH256 is all-zero.
type Value interface {
	ToH256() H256
	IsZeroValue() bool
}

// H256Value is the trivial Value: a bare 32-byte hash acting as its own
// value, mirroring the reference implementation's `impl Value for H256`.
type H256Value H256

// ToH256 returns v unchanged.
func (v H256Value) ToH256() H256 { return H256(v) }

// IsZeroValue reports whether v is the all-zero hash.
func (v H256Value) IsZeroValue() bool { return H256(v).IsZero() }

// ZeroH256Value is the absent H256Value.
var ZeroH256Value = H256Value(ZeroH256)
