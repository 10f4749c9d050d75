package storepebble

import (
	"fmt"

	"github.com/vaktibabat/smt"
)

func encodeMergeValue(v smt.MergeValue) []byte {
	if v.Kind == smt.MergeValueValue {
		out := make([]byte, 0, 33)
		out = append(out, byte(smt.MergeValueValue))
		out = append(out, v.Value.Bytes()...)
		return out
	}
	out := make([]byte, 0, 66)
	out = append(out, byte(smt.MergeValueZero))
	out = append(out, v.BaseNode.Bytes()...)
	out = append(out, v.ZeroBits.Bytes()...)
	out = append(out, v.ZeroCount)
	return out
}

func decodeMergeValue(b []byte) (smt.MergeValue, int, error) {
	if len(b) < 1 {
		return smt.MergeValue{}, 0, fmt.Errorf("storepebble: truncated merge value")
	}
	switch smt.MergeValueKind(b[0]) {
	case smt.MergeValueValue:
		if len(b) < 33 {
			return smt.MergeValue{}, 0, fmt.Errorf("storepebble: truncated merge value payload")
		}
		return smt.MergeValueFromH256(smt.H256FromBytes(b[1:33])), 33, nil
	case smt.MergeValueZero:
		if len(b) < 66 {
			return smt.MergeValue{}, 0, fmt.Errorf("storepebble: truncated merge-with-zero payload")
		}
		return smt.MergeValue{
			Kind:      smt.MergeValueZero,
			BaseNode:  smt.H256FromBytes(b[1:33]),
			ZeroBits:  smt.H256FromBytes(b[33:65]),
			ZeroCount: b[65],
		}, 66, nil
	default:
		return smt.MergeValue{}, 0, fmt.Errorf("storepebble: unknown merge value tag 0x%02x", b[0])
	}
}

func encodeBranchNode(n smt.BranchNode) []byte {
	out := encodeMergeValue(n.Left)
	out = append(out, encodeMergeValue(n.Right)...)
	return out
}

func decodeBranchNode(b []byte) (smt.BranchNode, error) {
	left, n, err := decodeMergeValue(b)
	if err != nil {
		return smt.BranchNode{}, err
	}
	right, _, err := decodeMergeValue(b[n:])
	if err != nil {
		return smt.BranchNode{}, err
	}
	return smt.BranchNode{Left: left, Right: right}, nil
}
