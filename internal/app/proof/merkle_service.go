package proof

import (
	"bytes"
	"context"
	"errors"
	"fmt"
)

// ErrPathLengthMismatch marks a proof that is structurally impossible for
// its claimed leaf position, as opposed to one that was checked and failed.
var ErrPathLengthMismatch = errors.New("audit path length mismatch")

// MerkleService recomputes audit tree roots from leaf inclusion proofs.
type MerkleService struct {
	hasher TreeHasher
}

func NewMerkleService(hasher TreeHasher) *MerkleService {
	return &MerkleService{hasher: hasher}
}

// VerifyAuditPath recomputes the root from the proof and compares it to the
// claimed root. An out-of-range leaf index is a clean false; an audit path
// whose length cannot match the leaf position is an error.
func (s *MerkleService) VerifyAuditPath(ctx context.Context, p AuditProof, root []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if p.LeafIndex < 0 || p.TreeSize <= 0 || p.LeafIndex >= p.TreeSize {
		return false, nil
	}
	if expected := AuditPathLength(p.LeafIndex, p.TreeSize); expected != len(p.AuditPath) {
		return false, fmt.Errorf("%w: leaf %d of %d needs %d hashes, got %d",
			ErrPathLengthMismatch, p.LeafIndex, p.TreeSize, expected, len(p.AuditPath))
	}

	// fn tracks the node position at the current level, sn the position of
	// the level's last node. When fn lands on the right edge the tree is
	// ragged there, and the inner loop ascends past the levels where the
	// node has no sibling to combine with.
	fn := p.LeafIndex
	sn := p.TreeSize - 1
	r := s.hasher.HashLeaf(p.LeafValue)
	for _, sibling := range p.AuditPath {
		if fn%2 == 1 || fn == sn {
			r = s.hasher.HashChildren(sibling, r)
			for fn%2 == 0 && fn != 0 {
				fn >>= 1
				sn >>= 1
			}
		} else {
			r = s.hasher.HashChildren(r, sibling)
		}
		fn >>= 1
		sn >>= 1
	}

	return bytes.Equal(r, root), nil
}

// AuditPathLength is the number of sibling hashes an inclusion proof for the
// leaf at index must carry in a tree of treeSize leaves.
func AuditPathLength(index, treeSize int64) int {
	length := 0
	lastNode := treeSize - 1
	for lastNode > 0 {
		if index%2 == 1 || index < lastNode {
			length++
		}
		index >>= 1
		lastNode >>= 1
	}
	return length
}
