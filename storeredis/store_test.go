package storeredis

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/vaktibabat/smt"
)

// newTestStore connects to the Redis instance named by REDIS_ADDR and
// skips the test otherwise, following the usual pattern for tests that
// need a real external service rather than a fake.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set, skipping storeredis integration test")
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	require.NoError(t, rdb.Ping(context.Background()).Err())
	t.Cleanup(func() { _ = rdb.Close() })

	prefix := "smt-test-" + t.Name()
	t.Cleanup(func() {
		keys, _ := rdb.Keys(context.Background(), prefix+":*").Result()
		if len(keys) > 0 {
			_ = rdb.Del(context.Background(), keys...).Err()
		}
	})

	return New(rdb, prefix)
}

func h256N(n byte) smt.H256 {
	var h smt.H256
	h[31] = n
	return h
}

func TestBranchRoundTrip(t *testing.T) {
	s := newTestStore(t)
	bk := smt.BranchKey{Height: 11, NodeKey: h256N(1)}
	bn := smt.BranchNode{
		Left:  smt.MergeValueFromH256(h256N(2)),
		Right: smt.ZeroMergeValue(),
	}

	require.NoError(t, s.InsertBranch(bk, bn))
	got, ok, err := s.GetBranch(bk)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, bn, got)
}

func TestBranchMergeWithZeroRoundTrip(t *testing.T) {
	s := newTestStore(t)
	hf := smt.NewDefaultHasherFactory([]byte("storeredis-test"))
	zeroed := smt.Merge(hf, 4, h256N(3), smt.MergeValueFromH256(h256N(9)), smt.ZeroMergeValue())
	bk := smt.BranchKey{Height: 4, NodeKey: h256N(3)}
	bn := smt.BranchNode{Left: zeroed, Right: smt.ZeroMergeValue()}

	require.NoError(t, s.InsertBranch(bk, bn))
	got, ok, err := s.GetBranch(bk)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, bn, got)
}

func TestGetMissingBranchReturnsNotOk(t *testing.T) {
	s := newTestStore(t)
	_, ok, err := s.GetBranch(smt.BranchKey{Height: 1, NodeKey: h256N(99)})
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLeafRoundTrip(t *testing.T) {
	s := newTestStore(t)
	k, v := h256N(5), h256N(6)

	require.NoError(t, s.InsertLeaf(k, v))
	got, ok, err := s.GetLeaf(k)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, v, got)

	require.NoError(t, s.RemoveLeaf(k))
	_, ok, err = s.GetLeaf(k)
	require.NoError(t, err)
	require.False(t, ok)
}

// TestTreeOverRedis exercises the whole smt.Tree engine against a real
// Redis-backed Store instead of the in-memory one.
func TestTreeOverRedis(t *testing.T) {
	s := newTestStore(t)
	tr := smt.New(s, smt.NewDefaultHasherFactory([]byte("storeredis-test")))

	for i := byte(0); i < 16; i++ {
		var v smt.H256
		v[31] = i
		_, err := tr.Update(h256N(i), smt.H256Value(v))
		require.NoError(t, err)
	}

	got, err := tr.Get(h256N(9))
	require.NoError(t, err)
	var want smt.H256
	want[31] = 9
	require.Equal(t, want, got)

	proof, err := tr.MerkleProof([]smt.H256{h256N(9)})
	require.NoError(t, err)
	ok, err := proof.Verify(smt.NewDefaultHasherFactory([]byte("storeredis-test")), tr.Root(), []smt.H256{h256N(9)}, []smt.Value{smt.H256Value(want)})
	require.NoError(t, err)
	require.True(t, ok)
}
