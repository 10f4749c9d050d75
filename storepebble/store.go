// Package storepebble implements smt.Store on top of a pebble KV
// database, for a tree backed by local disk rather than memory.
package storepebble

import (
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/vaktibabat/smt"
)

const (
	branchPrefix byte = 'b'
	leafPrefix   byte = 'l'
)

// Store is a smt.Store backed by a single pebble database. Branches
// and leaves share the database under distinct one-byte key prefixes.
type Store struct {
	db *pebble.DB
}

// Open opens (creating if necessary) a pebble database at dir and
// wraps it as a Store.
func Open(dir string, opts *pebble.Options) (*Store, error) {
	db, err := pebble.Open(dir, opts)
	if err != nil {
		return nil, fmt.Errorf("storepebble: open %s: %w", dir, err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying pebble database.
func (s *Store) Close() error {
	return s.db.Close()
}

func branchDBKey(key smt.BranchKey) []byte {
	out := make([]byte, 0, 34)
	out = append(out, branchPrefix, key.Height)
	out = append(out, key.NodeKey.Bytes()...)
	return out
}

func leafDBKey(key smt.H256) []byte {
	out := make([]byte, 0, 33)
	out = append(out, leafPrefix)
	out = append(out, key.Bytes()...)
	return out
}

func (s *Store) GetBranch(key smt.BranchKey) (smt.BranchNode, bool, error) {
	v, closer, err := s.db.Get(branchDBKey(key))
	if err == pebble.ErrNotFound {
		return smt.BranchNode{}, false, nil
	}
	if err != nil {
		return smt.BranchNode{}, false, fmt.Errorf("storepebble: get branch: %w", err)
	}
	defer closer.Close()
	node, err := decodeBranchNode(v)
	if err != nil {
		return smt.BranchNode{}, false, err
	}
	return node, true, nil
}

func (s *Store) GetLeaf(key smt.H256) (smt.H256, bool, error) {
	v, closer, err := s.db.Get(leafDBKey(key))
	if err == pebble.ErrNotFound {
		return smt.ZeroH256, false, nil
	}
	if err != nil {
		return smt.ZeroH256, false, fmt.Errorf("storepebble: get leaf: %w", err)
	}
	defer closer.Close()
	if len(v) != 32 {
		return smt.ZeroH256, false, fmt.Errorf("storepebble: corrupted leaf value (len=%d)", len(v))
	}
	return smt.H256FromBytes(v), true, nil
}

func (s *Store) InsertBranch(key smt.BranchKey, node smt.BranchNode) error {
	if err := s.db.Set(branchDBKey(key), encodeBranchNode(node), pebble.Sync); err != nil {
		return fmt.Errorf("storepebble: insert branch: %w", err)
	}
	return nil
}

func (s *Store) InsertLeaf(key, value smt.H256) error {
	if err := s.db.Set(leafDBKey(key), value.Bytes(), pebble.Sync); err != nil {
		return fmt.Errorf("storepebble: insert leaf: %w", err)
	}
	return nil
}

func (s *Store) RemoveBranch(key smt.BranchKey) error {
	if err := s.db.Delete(branchDBKey(key), pebble.Sync); err != nil {
		return fmt.Errorf("storepebble: remove branch: %w", err)
	}
	return nil
}

func (s *Store) RemoveLeaf(key smt.H256) error {
	if err := s.db.Delete(leafDBKey(key), pebble.Sync); err != nil {
		return fmt.Errorf("storepebble: remove leaf: %w", err)
	}
	return nil
}
