package smt

// MerkleProofData is the structural form of a merkle proof (§4.2.4,
// §4.3): a per-key bitmap of which heights had a non-zero sibling, and
// the flat list of those non-zero siblings in stack order. It is
// produced by Tree.MerkleProof and consumed by ComputeRoot/Verify/
// Compile.
type MerkleProofData struct {
	LeavesBitmap []H256
	MerklePath   []MergeValue
}

// proofSink supplies the embedded siblings computeRootWalk folds in at
// heights where the leaves bitmap marks a non-zero sibling.
// MerkleProofData.ComputeRoot drives it from MerklePath (sliceSink).
// Compile does not use it: it walks the same stack algorithm in its own
// loop and emits byte-code instead of merging.
type proofSink interface {
	// nextSibling returns the next embedded sibling MergeValue.
	nextSibling() (MergeValue, error)
}

type sliceSink struct {
	path []MergeValue
	pos  int
}

func (s *sliceSink) nextSibling() (MergeValue, error) {
	if s.pos >= len(s.path) {
		return MergeValue{}, newTreeError(ErrCorruptedProof, "merkle path exhausted", nil)
	}
	v := s.path[s.pos]
	s.pos++
	return v, nil
}

// computeRootWalk is the core replay algorithm: given the sorted,
// deduplicated keys being proven, their leaf values, the leaves bitmap
// recorded at proof-generation time, and a sink of embedded siblings,
// it reconstructs the single root MergeValue. Every height from a
// leaf's own height up to its fork point is folded via Merge, whether
// the sibling there is an explicit embedded value, another proven
// key's subtree (read off the stack), or implicitly zero — skipping
// the fold for the implicit-zero case would leave the result at the
// raw leaf value instead of the MergeWithZero chain the real tree
// root is built from.
func computeRootWalk(hf HasherFactory, keys []H256, leafNodes []MergeValue, leavesBitmap []H256, sink proofSink) (MergeValue, error) {
	if len(keys) == 0 {
		return MergeValue{}, newTreeError(ErrEmptyKeys, "compute_root", nil)
	}
	if len(keys) != len(leavesBitmap) {
		return MergeValue{}, newTreeError(ErrIncorrectNumberOfLeaves, "compute_root: bitmap/key count mismatch", nil)
	}

	type stackEntry struct {
		key  H256
		node MergeValue
	}
	var stack []stackEntry

	for i := 0; i < len(keys); i++ {
		leafKey := keys[i]
		forkHeight := 255
		if i+1 < len(keys) {
			forkHeight = int(ForkHeight(leafKey, keys[i+1]))
		}

		cur := stackEntry{key: leafKey, node: leafNodes[i]}
		for h := 0; h <= forkHeight; h++ {
			height := uint8(h)
			if h == forkHeight && i+1 < len(keys) {
				break
			}
			parentKey := cur.key.ParentPath(height)
			isRight := cur.key.IsRight(height)

			if n := len(stack); n > 0 && stack[n-1].key.ParentPath(height) == parentKey {
				sibling := stack[n-1]
				stack = stack[:n-1]
				var left, right MergeValue
				if isRight {
					left, right = sibling.node, cur.node
				} else {
					left, right = cur.node, sibling.node
				}
				cur = stackEntry{key: parentKey, node: Merge(hf, height, parentKey, left, right)}
				continue
			}

			if !leavesBitmap[i].Bit(uint(height)) {
				var left, right MergeValue
				if isRight {
					left, right = ZeroMergeValue(), cur.node
				} else {
					left, right = cur.node, ZeroMergeValue()
				}
				cur = stackEntry{key: parentKey, node: Merge(hf, height, parentKey, left, right)}
				continue
			}

			sibling, err := sink.nextSibling()
			if err != nil {
				return MergeValue{}, err
			}
			var left, right MergeValue
			if isRight {
				left, right = sibling, cur.node
			} else {
				left, right = cur.node, sibling
			}
			cur = stackEntry{key: parentKey, node: Merge(hf, height, parentKey, left, right)}
		}
		stack = append(stack, cur)
	}

	if len(stack) != 1 {
		return MergeValue{}, newTreeError(ErrCorruptedStack, "compute_root: stack did not collapse to one root", nil)
	}
	return stack[0].node, nil
}

// ComputeRoot reconstructs the root hash implied by p for the given
// sorted, deduplicated keys and their claimed values. Keys/values that
// are absent (zero value) are valid exclusion claims.
func (p *MerkleProofData) ComputeRoot(hf HasherFactory, keys []H256, values []Value) (H256, error) {
	if len(keys) != len(values) {
		return ZeroH256, newTreeError(ErrIncorrectNumberOfLeaves, "compute_root: keys/values length mismatch", nil)
	}
	if len(keys) == 0 {
		if len(p.MerklePath) != 0 {
			return ZeroH256, newTreeError(ErrEmptyKeys, "compute_root", nil)
		}
		return ZeroH256, nil
	}
	if len(p.LeavesBitmap) == 0 && len(p.MerklePath) == 0 {
		// empty-tree proof: every claimed value must be absent.
		for _, v := range values {
			if !v.ToH256().IsZero() {
				return ZeroH256, newTreeError(ErrCorruptedProof, "compute_root: non-zero value against empty-tree proof", nil)
			}
		}
		return ZeroH256, nil
	}

	leafNodes := make([]MergeValue, len(keys))
	for i, v := range values {
		leafNodes[i] = MergeValueFromH256(v.ToH256())
	}

	sink := &sliceSink{path: p.MerklePath}
	root, err := computeRootWalk(hf, keys, leafNodes, p.LeavesBitmap, sink)
	if err != nil {
		return ZeroH256, err
	}
	if sink.pos != len(sink.path) {
		return ZeroH256, newTreeError(ErrCorruptedProof, "compute_root: merkle path had unconsumed entries", nil)
	}
	return root.Hash(hf), nil
}

// Verify reports whether p proves that keys map to values under root.
func (p *MerkleProofData) Verify(hf HasherFactory, root H256, keys []H256, values []Value) (bool, error) {
	got, err := p.ComputeRoot(hf, keys, values)
	if err != nil {
		return false, err
	}
	return got == root, nil
}

// Compile lowers p into a self-contained CompiledMerkleProof byte
// string for the given sorted, deduplicated keys (§4.3.2). Unlike the
// structural MerkleProofData, a compiled proof embeds its own siblings
// and needs neither LeavesBitmap nor a separately supplied MerklePath
// at verification time — only the (key, value) pairs being proven, in
// the same sorted order used to generate p.
//
// Compile walks the exact same stack algorithm computeRootWalk replays
// at verification time, but instead of merging MergeValues it emits
// the opcode recording which decision was made at each height: OP_H
// when two proven keys turn out to be siblings of each other (no data
// needed, both sides are already on the interpreter's stack), OP_P/
// OP_Q when the sibling must be embedded from p.MerklePath (P for a
// plain hash, Q for a MergeWithZero), and a run-length OP_O for a
// stretch of implicit zero siblings (flushed whenever an OP_H or OP_P/
// OP_Q interrupts it, and at the end of each key's climb).
func (p *MerkleProofData) Compile(keys []H256) (CompiledMerkleProof, error) {
	if len(keys) == 0 {
		return nil, newTreeError(ErrEmptyKeys, "compile", nil)
	}
	if len(p.LeavesBitmap) == 0 && len(p.MerklePath) == 0 {
		// empty-tree proof: no opcodes needed, every claimed key must be absent.
		return CompiledMerkleProof(nil), nil
	}
	if len(keys) != len(p.LeavesBitmap) {
		return nil, newTreeError(ErrIncorrectNumberOfLeaves, "compile: bitmap/key count mismatch", nil)
	}

	type stackEntry struct{ key H256 }
	var stack []stackEntry
	var out []byte
	pathPos := 0

	for i := 0; i < len(keys); i++ {
		out = append(out, opL)

		leafKey := keys[i]
		forkHeight := 255
		if i+1 < len(keys) {
			forkHeight = int(ForkHeight(leafKey, keys[i+1]))
		}

		curKey := leafKey
		zeroRun := 0
		flush := func() {
			if zeroRun == 0 {
				return
			}
			n := zeroRun
			if n == 256 {
				n = 0 // wire encoding: 0 means a run of 256
			}
			out = append(out, opO, byte(n))
			zeroRun = 0
		}

		for h := 0; h <= forkHeight; h++ {
			height := uint8(h)
			if h == forkHeight && i+1 < len(keys) {
				break
			}
			parentKey := curKey.ParentPath(height)

			if n := len(stack); n > 0 && stack[n-1].key.ParentPath(height) == parentKey {
				flush()
				stack = stack[:n-1]
				out = append(out, opH)
				curKey = parentKey
				continue
			}

			if !p.LeavesBitmap[i].Bit(uint(height)) {
				zeroRun++
				curKey = parentKey
				continue
			}

			flush()
			if pathPos >= len(p.MerklePath) {
				return nil, newTreeError(ErrCorruptedProof, "compile: merkle path exhausted", nil)
			}
			sibling := p.MerklePath[pathPos]
			pathPos++
			if sibling.Kind == MergeValueValue {
				out = append(out, opP)
				out = append(out, sibling.Value.Bytes()...)
			} else {
				out = append(out, opQ, sibling.ZeroCount)
				out = append(out, sibling.BaseNode.Bytes()...)
				out = append(out, sibling.ZeroBits.Bytes()...)
			}
			curKey = parentKey
		}
		flush()
		stack = append(stack, stackEntry{key: curKey})
	}
	if pathPos != len(p.MerklePath) {
		return nil, newTreeError(ErrCorruptedProof, "compile: merkle path had unconsumed entries", nil)
	}
	if len(stack) != 1 {
		return nil, newTreeError(ErrCorruptedStack, "compile: stack did not collapse to one root", nil)
	}
	return CompiledMerkleProof(out), nil
}
