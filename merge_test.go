package smt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testHasherFactory() HasherFactory {
	return NewDefaultHasherFactory([]byte("smt-test"))
}

func TestMergeTwoZerosIsZero(t *testing.T) {
	hf := testHasherFactory()
	got := Merge(hf, 10, H256{0x01}, ZeroMergeValue(), ZeroMergeValue())
	require.True(t, got.IsZero())
}

func TestMergeWithZeroSetsBitOnlyForLeftZero(t *testing.T) {
	hf := testHasherFactory()
	v := MergeValueFromH256(H256{0xAB})
	key := H256{0x01}

	// zero on the right: v is left child, bit must NOT be set.
	rightZero := Merge(hf, 5, key, v, ZeroMergeValue())
	require.Equal(t, MergeValueZero, rightZero.Kind)
	require.False(t, rightZero.ZeroBits.Bit(5))

	// zero on the left: v is right child, bit MUST be set.
	leftZero := Merge(hf, 5, key, ZeroMergeValue(), v)
	require.Equal(t, MergeValueZero, leftZero.Kind)
	require.True(t, leftZero.ZeroBits.Bit(5))
}

func TestMergeWithZeroChainAccumulatesCount(t *testing.T) {
	hf := testHasherFactory()
	v := MergeValueFromH256(H256{0xCD})
	key := H256{0x01}

	step1 := Merge(hf, 0, key, v, ZeroMergeValue())
	require.Equal(t, uint8(1), step1.ZeroCount)

	step2 := Merge(hf, 1, key, step1, ZeroMergeValue())
	require.Equal(t, uint8(2), step2.ZeroCount)
	// BaseNode is carried through unchanged once established.
	require.Equal(t, step1.BaseNode, step2.BaseNode)
}

func TestMergeNormalIsDeterministic(t *testing.T) {
	hf := testHasherFactory()
	lhs := MergeValueFromH256(H256{0x01})
	rhs := MergeValueFromH256(H256{0x02})
	key := H256{0x03}

	a := Merge(hf, 7, key, lhs, rhs)
	b := Merge(hf, 7, key, lhs, rhs)
	require.Equal(t, a.Hash(hf), b.Hash(hf))
}

func TestMergeNormalIsOrderSensitive(t *testing.T) {
	hf := testHasherFactory()
	lhs := MergeValueFromH256(H256{0x01})
	rhs := MergeValueFromH256(H256{0x02})
	key := H256{0x03}

	ab := Merge(hf, 7, key, lhs, rhs)
	ba := Merge(hf, 7, key, rhs, lhs)
	require.NotEqual(t, ab.Hash(hf), ba.Hash(hf))
}

func TestMergeDifferentHeightsProduceDifferentHashes(t *testing.T) {
	hf := testHasherFactory()
	lhs := MergeValueFromH256(H256{0x01})
	rhs := MergeValueFromH256(H256{0x02})
	key := H256{0x03}

	a := Merge(hf, 1, key, lhs, rhs)
	b := Merge(hf, 2, key, lhs, rhs)
	require.NotEqual(t, a.Hash(hf), b.Hash(hf))
}
