package smt

const (
	mergeNormal = 1
	mergeZeros  = 2
)

// MergeValueKind discriminates the two MergeValue variants (§3.2).
type MergeValueKind uint8

const (
	// MergeValueValue is a plain 32-byte hash.
	MergeValueValue MergeValueKind = iota
	// MergeValueZero is a compressed run of zero-siblings above a single
	// occupied leaf.
	MergeValueZero
)

// MergeValue summarises a subtree: either a plain hash, or a
// MergeWithZero compression of a singleton subtree path. Kept as a
// small tagged struct rather than an interface so it stays unboxed and
// cheap to copy, per the design notes in spec.md §9.
type MergeValue struct {
	Kind MergeValueKind

	// Value holds the hash when Kind == MergeValueValue.
	Value H256

	// BaseNode, ZeroBits, ZeroCount hold the MergeWithZero payload when
	// Kind == MergeValueZero. BaseNode is hashBaseNode(height, key, v) of
	// the original singleton leaf's immediate parent; ZeroBits records,
	// per traversed height, whether the occupied child was the left (0)
	// or right (1) branch; ZeroCount is the number of zero-siblings
	// folded in so far.
	BaseNode  H256
	ZeroBits  H256
	ZeroCount uint8
}

// MergeValueFromH256 wraps a plain hash as a MergeValue.
func MergeValueFromH256(h H256) MergeValue {
	return MergeValue{Kind: MergeValueValue, Value: h}
}

// ZeroMergeValue is the MergeValue for an empty subtree.
func ZeroMergeValue() MergeValue {
	return MergeValue{Kind: MergeValueValue, Value: ZeroH256}
}

// IsZero reports whether m represents an empty subtree. A MergeWithZero
// value is never zero: it always summarises at least one occupied leaf.
func (m MergeValue) IsZero() bool {
	return m.Kind == MergeValueValue && m.Value.IsZero()
}

// Hash returns the 32-byte commitment of m, computing it via hf for the
// MergeWithZero case.
func (m MergeValue) Hash(hf HasherFactory) H256 {
	if m.Kind == MergeValueValue {
		return m.Value
	}
	h := hf()
	h.WriteByte(mergeZeros)
	h.WriteH256(m.BaseNode)
	h.WriteH256(m.ZeroBits)
	h.WriteByte(m.ZeroCount)
	return h.Finish()
}

// hashBaseNode computes the fixed base-case hash H(height || key || value)
// used as the BaseNode of a fresh MergeWithZero.
func hashBaseNode(hf HasherFactory, height uint8, key, value H256) H256 {
	h := hf()
	h.WriteByte(height)
	h.WriteH256(key)
	h.WriteH256(value)
	return h.Finish()
}

// Merge computes the merge of two sibling MergeValues at the given
// height under the given subtree key (§4.1). It is optimised for the
// zero case: merging two zeros never touches the hasher.
func Merge(hf HasherFactory, height uint8, nodeKey H256, lhs, rhs MergeValue) MergeValue {
	if lhs.IsZero() && rhs.IsZero() {
		return ZeroMergeValue()
	}
	if lhs.IsZero() {
		return mergeWithZero(hf, height, nodeKey, rhs, true)
	}
	if rhs.IsZero() {
		return mergeWithZero(hf, height, nodeKey, lhs, false)
	}
	h := hf()
	h.WriteByte(mergeNormal)
	h.WriteByte(height)
	h.WriteH256(nodeKey)
	h.WriteH256(lhs.Hash(hf))
	h.WriteH256(rhs.Hash(hf))
	return MergeValueFromH256(h.Finish())
}

// mergeWithZero extends the nonzero side v into (or further compresses)
// a MergeWithZero chain. setBit is true iff the zero sibling was on the
// left — the convention spec.md §4.1/§9 fixes bit-for-bit: a zero on the
// right never sets the height bit, a zero on the left always does.
func mergeWithZero(hf HasherFactory, height uint8, nodeKey H256, v MergeValue, setBit bool) MergeValue {
	switch v.Kind {
	case MergeValueValue:
		var zeroBits H256
		if setBit {
			zeroBits.SetBit(uint(height))
		}
		base := hashBaseNode(hf, height, nodeKey, v.Value)
		return MergeValue{
			Kind:      MergeValueZero,
			BaseNode:  base,
			ZeroBits:  zeroBits,
			ZeroCount: 1,
		}
	default: // MergeValueZero
		zeroBits := v.ZeroBits
		if setBit {
			zeroBits.SetBit(uint(height))
		}
		return MergeValue{
			Kind:      MergeValueZero,
			BaseNode:  v.BaseNode,
			ZeroBits:  zeroBits,
			ZeroCount: v.ZeroCount + 1, // wraps like the reference's wrapping_add
		}
	}
}
