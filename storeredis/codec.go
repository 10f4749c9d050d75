package storeredis

import "github.com/vaktibabat/smt"

// gobMergeValue and gobBranchNode mirror smt.MergeValue/smt.BranchNode
// with plain exported fields so encoding/gob can serialize them
// without reaching into the smt package's internals.
type gobMergeValue struct {
	Kind      uint8
	Value     [32]byte
	BaseNode  [32]byte
	ZeroBits  [32]byte
	ZeroCount uint8
}

func fromMergeValue(v smt.MergeValue) gobMergeValue {
	return gobMergeValue{
		Kind:      uint8(v.Kind),
		Value:     v.Value,
		BaseNode:  v.BaseNode,
		ZeroBits:  v.ZeroBits,
		ZeroCount: v.ZeroCount,
	}
}

func (g gobMergeValue) toMergeValue() smt.MergeValue {
	return smt.MergeValue{
		Kind:      smt.MergeValueKind(g.Kind),
		Value:     g.Value,
		BaseNode:  g.BaseNode,
		ZeroBits:  g.ZeroBits,
		ZeroCount: g.ZeroCount,
	}
}

type gobBranchNode struct {
	Left  gobMergeValue
	Right gobMergeValue
}

func fromBranchNode(n smt.BranchNode) gobBranchNode {
	return gobBranchNode{Left: fromMergeValue(n.Left), Right: fromMergeValue(n.Right)}
}

func (g gobBranchNode) toBranchNode() smt.BranchNode {
	return smt.BranchNode{Left: g.Left.toMergeValue(), Right: g.Right.toMergeValue()}
}
