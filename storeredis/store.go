// Package storeredis implements smt.Store on top of Redis, for a tree
// that needs to be shared across processes rather than held in one.
package storeredis

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/gob"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/vaktibabat/smt"
)

// Store is a smt.Store backed by a Redis key space. Each branch and
// leaf becomes one Redis string key, namespaced under a caller-chosen
// prefix so multiple trees can share one Redis instance.
type Store struct {
	rdb    *redis.Client
	prefix string
}

// New wraps rdb as a Store. All keys are namespaced under
// "<prefix>:b:" (branches) and "<prefix>:l:" (leaves).
func New(rdb *redis.Client, prefix string) *Store {
	return &Store{rdb: rdb, prefix: prefix}
}

func (s *Store) branchKey(key smt.BranchKey) string {
	return fmt.Sprintf("%s:b:%d:%s", s.prefix, key.Height, base64.RawURLEncoding.EncodeToString(key.NodeKey.Bytes()))
}

func (s *Store) leafKey(key smt.H256) string {
	return fmt.Sprintf("%s:l:%s", s.prefix, base64.RawURLEncoding.EncodeToString(key.Bytes()))
}

func (s *Store) GetBranch(key smt.BranchKey) (smt.BranchNode, bool, error) {
	raw, err := s.rdb.Get(context.Background(), s.branchKey(key)).Bytes()
	if err == redis.Nil {
		return smt.BranchNode{}, false, nil
	}
	if err != nil {
		return smt.BranchNode{}, false, fmt.Errorf("storeredis: get branch: %w", err)
	}
	var node gobBranchNode
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&node); err != nil {
		return smt.BranchNode{}, false, fmt.Errorf("storeredis: decode branch: %w", err)
	}
	return node.toBranchNode(), true, nil
}

func (s *Store) GetLeaf(key smt.H256) (smt.H256, bool, error) {
	raw, err := s.rdb.Get(context.Background(), s.leafKey(key)).Bytes()
	if err == redis.Nil {
		return smt.ZeroH256, false, nil
	}
	if err != nil {
		return smt.ZeroH256, false, fmt.Errorf("storeredis: get leaf: %w", err)
	}
	if len(raw) != 32 {
		return smt.ZeroH256, false, fmt.Errorf("storeredis: corrupted leaf value (len=%d)", len(raw))
	}
	return smt.H256FromBytes(raw), true, nil
}

func (s *Store) InsertBranch(key smt.BranchKey, node smt.BranchNode) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(fromBranchNode(node)); err != nil {
		return fmt.Errorf("storeredis: encode branch: %w", err)
	}
	if err := s.rdb.Set(context.Background(), s.branchKey(key), buf.Bytes(), 0).Err(); err != nil {
		return fmt.Errorf("storeredis: insert branch: %w", err)
	}
	return nil
}

func (s *Store) InsertLeaf(key, value smt.H256) error {
	if err := s.rdb.Set(context.Background(), s.leafKey(key), value.Bytes(), 0).Err(); err != nil {
		return fmt.Errorf("storeredis: insert leaf: %w", err)
	}
	return nil
}

func (s *Store) RemoveBranch(key smt.BranchKey) error {
	if err := s.rdb.Del(context.Background(), s.branchKey(key)).Err(); err != nil {
		return fmt.Errorf("storeredis: remove branch: %w", err)
	}
	return nil
}

func (s *Store) RemoveLeaf(key smt.H256) error {
	if err := s.rdb.Del(context.Background(), s.leafKey(key)).Err(); err != nil {
		return fmt.Errorf("storeredis: remove leaf: %w", err)
	}
	return nil
}
