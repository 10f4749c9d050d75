package smt

// BranchKey identifies a branch node by its height and the subtree key
// shared by everything beneath it (§3.3). Height 0 is the bottom of the
// tree (just above the leaves); height 255 is just below the root.
type BranchKey struct {
	Height  uint8
	NodeKey H256
}

// BranchNode holds the two children of a branch (§3.4).
type BranchNode struct {
	Left  MergeValue
	Right MergeValue
}

// branchKeyLess orders branch keys height-major, then by node key, so a
// Store backed by an ordered map iterates bottom-up within a height —
// matching the order `original_source/src/tree.rs` relies on when
// walking a BTreeMap of branches.
func branchKeyLess(a, b BranchKey) bool {
	if a.Height != b.Height {
		return a.Height < b.Height
	}
	return Less(a.NodeKey, b.NodeKey)
}
