package smt

import (
	"sort"

	"github.com/golang/glog"
)

// maxStackSize bounds the fork-height stack merkle proof generation
// uses: one entry per key plus headroom for the root, matching the
// reference implementation's MAX_STACK_SIZE.
const maxStackSize = 257

// KV is a key/value pair for UpdateAll.
type KV struct {
	Key   H256
	Value Value
}

// Tree is a sparse Merkle tree over a pluggable Store (§3, §4.2). It is
// not safe for concurrent use by multiple goroutines without external
// synchronization (§5) — the Store it wraps may be, but the Tree's own
// root bookkeeping is not.
type Tree struct {
	store         Store
	hasherFactory HasherFactory
	root          H256
	metrics       *Metrics
}

// New returns an empty Tree over store, using hf to construct hashers.
// A nil hf defaults to NewDefaultHasherFactory(nil).
func New(store Store, hf HasherFactory) *Tree {
	if hf == nil {
		hf = NewDefaultHasherFactory(nil)
	}
	return &Tree{store: store, hasherFactory: hf, root: ZeroH256}
}

// NewWithRoot returns a Tree over store whose root is already known,
// for resuming work against a previously populated Store.
func NewWithRoot(root H256, store Store, hf HasherFactory) *Tree {
	t := New(store, hf)
	t.root = root
	return t
}

// SetMetrics attaches m (which may be nil to disable) to t.
func (t *Tree) SetMetrics(m *Metrics) { t.metrics = m }

// Root returns the current root hash.
func (t *Tree) Root() H256 { return t.root }

// IsEmpty reports whether the tree has no occupied leaves.
func (t *Tree) IsEmpty() bool { return t.root.IsZero() }

// Store returns the backing Store.
func (t *Tree) Store() Store { return t.store }

// Update sets key to value, removing the leaf entirely when value is
// the zero value, and returns the new root (§4.2.1).
func (t *Tree) Update(key H256, value Value) (H256, error) {
	t.metrics.observeUpdate()
	valH := value.ToH256()

	if valH.IsZero() {
		if err := t.store.RemoveLeaf(key); err != nil {
			return ZeroH256, newTreeError(ErrStore, "update: remove leaf", err)
		}
	} else {
		if err := t.store.InsertLeaf(key, valH); err != nil {
			return ZeroH256, newTreeError(ErrStore, "update: insert leaf", err)
		}
	}

	node := MergeValueFromH256(valH)
	for h := 0; h <= 255; h++ {
		height := uint8(h)
		parentKey := key.ParentPath(height)
		branchKey := BranchKey{Height: height, NodeKey: parentKey}

		existing, ok, err := t.store.GetBranch(branchKey)
		if err != nil {
			return ZeroH256, newTreeError(ErrStore, "update: get branch", err)
		}

		var left, right MergeValue
		switch {
		case ok && key.IsRight(height):
			left, right = existing.Left, node
		case ok:
			left, right = node, existing.Right
		case key.IsRight(height):
			left, right = ZeroMergeValue(), node
		default:
			left, right = node, ZeroMergeValue()
		}

		if !left.IsZero() || !right.IsZero() {
			if err := t.store.InsertBranch(branchKey, BranchNode{Left: left, Right: right}); err != nil {
				return ZeroH256, newTreeError(ErrStore, "update: insert branch", err)
			}
		} else {
			if err := t.store.RemoveBranch(branchKey); err != nil {
				return ZeroH256, newTreeError(ErrStore, "update: remove branch", err)
			}
		}

		node = Merge(t.hasherFactory, height, parentKey, left, right)
	}

	t.root = node.Hash(t.hasherFactory)
	if glog.V(2) {
		glog.Infof("smt: update key=%x -> root=%x", key, t.root)
	}
	return t.root, nil
}

// Get returns the value stored at key, or the zero H256 if key is
// absent or the tree is empty.
func (t *Tree) Get(key H256) (H256, error) {
	if t.IsEmpty() {
		return ZeroH256, nil
	}
	v, ok, err := t.store.GetLeaf(key)
	if err != nil {
		return ZeroH256, newTreeError(ErrStore, "get: get leaf", err)
	}
	if !ok {
		return ZeroH256, nil
	}
	return v, nil
}

// queueEntry is a partially-merged subtree awaiting the next height's
// merge step in UpdateAll's level-order work queue.
type queueEntry struct {
	key  H256
	node MergeValue
}

// UpdateAll applies every pair in pairs and returns the new root
// (§4.2.2). Pairs are deduplicated by key, last write wins, regardless
// of input order; siblings that are both being updated in the same
// call are merged directly without a Store round-trip.
func (t *Tree) UpdateAll(pairs []KV) (H256, error) {
	t.metrics.observeBatchUpdate(len(pairs))
	if len(pairs) == 0 {
		return t.root, nil
	}

	dedup := make(map[H256]H256, len(pairs))
	order := make([]H256, 0, len(pairs))
	for _, p := range pairs {
		if _, seen := dedup[p.Key]; !seen {
			order = append(order, p.Key)
		}
		dedup[p.Key] = p.Value.ToH256()
	}
	SortH256(order)

	queue := make([]queueEntry, 0, len(order))
	for _, k := range order {
		v := dedup[k]
		if v.IsZero() {
			if err := t.store.RemoveLeaf(k); err != nil {
				return ZeroH256, newTreeError(ErrStore, "update_all: remove leaf", err)
			}
		} else {
			if err := t.store.InsertLeaf(k, v); err != nil {
				return ZeroH256, newTreeError(ErrStore, "update_all: insert leaf", err)
			}
		}
		queue = append(queue, queueEntry{key: k, node: MergeValueFromH256(v)})
	}

	for h := 0; h <= 255; h++ {
		height := uint8(h)
		sort.Slice(queue, func(i, j int) bool { return Less(queue[i].key, queue[j].key) })

		next := make([]queueEntry, 0, len(queue))
		for i := 0; i < len(queue); {
			cur := queue[i]
			parentKey := cur.key.ParentPath(height)
			branchKey := BranchKey{Height: height, NodeKey: parentKey}

			var left, right MergeValue
			consumed := 1

			if i+1 < len(queue) && queue[i+1].key.ParentPath(height) == parentKey {
				sibling := queue[i+1]
				if cur.key.IsRight(height) {
					left, right = sibling.node, cur.node
				} else {
					left, right = cur.node, sibling.node
				}
				consumed = 2
			} else {
				existing, ok, err := t.store.GetBranch(branchKey)
				if err != nil {
					return ZeroH256, newTreeError(ErrStore, "update_all: get branch", err)
				}
				switch {
				case ok && cur.key.IsRight(height):
					left, right = existing.Left, cur.node
				case ok:
					left, right = cur.node, existing.Right
				case cur.key.IsRight(height):
					left, right = ZeroMergeValue(), cur.node
				default:
					left, right = cur.node, ZeroMergeValue()
				}
			}

			if !left.IsZero() || !right.IsZero() {
				if err := t.store.InsertBranch(branchKey, BranchNode{Left: left, Right: right}); err != nil {
					return ZeroH256, newTreeError(ErrStore, "update_all: insert branch", err)
				}
			} else {
				if err := t.store.RemoveBranch(branchKey); err != nil {
					return ZeroH256, newTreeError(ErrStore, "update_all: remove branch", err)
				}
			}

			next = append(next, queueEntry{
				key:  parentKey,
				node: Merge(t.hasherFactory, height, parentKey, left, right),
			})
			i += consumed
		}
		queue = next
	}

	root := ZeroMergeValue()
	if len(queue) == 1 {
		root = queue[0].node
	}
	t.root = root.Hash(t.hasherFactory)
	if glog.V(2) {
		glog.Infof("smt: update_all %d pairs -> root=%x", len(pairs), t.root)
	}
	return t.root, nil
}

// MerkleProof builds an inclusion/exclusion proof for keys (§4.2.4).
// keys must be non-empty; duplicates are permitted and deduplicated.
func (t *Tree) MerkleProof(keys []H256) (*MerkleProofData, error) {
	t.metrics.observeProof()
	if len(keys) == 0 {
		return nil, newTreeError(ErrEmptyKeys, "merkle_proof", nil)
	}

	sorted := dedupSortedH256(keys)

	if t.IsEmpty() {
		return &MerkleProofData{}, nil
	}

	leavesBitmap := make([]H256, len(sorted))
	for i, key := range sorted {
		var bitmap H256
		for h := 0; h <= 255; h++ {
			height := uint8(h)
			parentKey := key.ParentPath(height)
			branch, ok, err := t.store.GetBranch(BranchKey{Height: height, NodeKey: parentKey})
			if err != nil {
				return nil, newTreeError(ErrStore, "merkle_proof: get branch", err)
			}
			if !ok {
				continue
			}
			var sibling MergeValue
			if key.IsRight(height) {
				sibling = branch.Left
			} else {
				sibling = branch.Right
			}
			if !sibling.IsZero() {
				bitmap.SetBit(uint(height))
			}
		}
		leavesBitmap[i] = bitmap
	}

	var proof []MergeValue
	var stackForkHeight [maxStackSize]int16
	stackTop := 0

	for leafIndex := 0; leafIndex < len(sorted); leafIndex++ {
		leafKey := sorted[leafIndex]
		forkHeight := 255
		if leafIndex+1 < len(sorted) {
			forkHeight = int(ForkHeight(leafKey, sorted[leafIndex+1]))
		}

		for h := 0; h <= forkHeight; h++ {
			height := uint8(h)
			if h == forkHeight && leafIndex+1 < len(sorted) {
				break
			}
			parentKey := leafKey.ParentPath(height)
			isRight := leafKey.IsRight(height)

			switch {
			case stackTop > 0 && int(stackForkHeight[stackTop-1]) == h:
				stackTop--
			case leavesBitmap[leafIndex].Bit(uint(height)):
				branch, ok, err := t.store.GetBranch(BranchKey{Height: height, NodeKey: parentKey})
				if err != nil {
					return nil, newTreeError(ErrStore, "merkle_proof: get branch", err)
				}
				if !ok {
					return nil, newTreeError(ErrMissingBranch, "merkle_proof: expected sibling branch", nil)
				}
				var sibling MergeValue
				if isRight {
					sibling = branch.Left
				} else {
					sibling = branch.Right
				}
				proof = append(proof, sibling)
			default:
				continue
			}
		}

		if stackTop >= maxStackSize {
			return nil, newTreeError(ErrCorruptedStack, "merkle_proof: stack overflow", nil)
		}
		stackForkHeight[stackTop] = int16(forkHeight)
		stackTop++
	}

	return &MerkleProofData{LeavesBitmap: leavesBitmap, MerklePath: proof}, nil
}

// dedupSortedH256 returns keys sorted ascending with duplicates removed.
func dedupSortedH256(keys []H256) []H256 {
	cp := make([]H256, len(keys))
	copy(cp, keys)
	SortH256(cp)
	out := cp[:0]
	var last H256
	hasLast := false
	for _, k := range cp {
		if hasLast && k == last {
			continue
		}
		out = append(out, k)
		last = k
		hasLast = true
	}
	return out
}
