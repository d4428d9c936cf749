package proof

import (
	"context"
	"errors"
	"testing"
)

// fakeTreeHasher builds readable hash transcripts so expected roots can be
// written down by hand.
type fakeTreeHasher struct{}

func (fakeTreeHasher) HashLeaf(data []byte) []byte {
	return []byte("L(" + string(data) + ")")
}

func (fakeTreeHasher) HashChildren(left, right []byte) []byte {
	return []byte("N(" + string(left) + "," + string(right) + ")")
}

func TestVerifyAuditPathSingleLeafTree(t *testing.T) {
	service := NewMerkleService(fakeTreeHasher{})

	proof := AuditProof{LeafValue: []byte("a"), LeafIndex: 0, TreeSize: 1}
	ok, err := service.VerifyAuditPath(context.Background(), proof, []byte("L(a)"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !ok {
		t.Fatalf("expected proof to verify")
	}
}

func TestVerifyAuditPathTwoLeafTree(t *testing.T) {
	service := NewMerkleService(fakeTreeHasher{})
	root := []byte("N(L(a),L(b))")

	left := AuditProof{LeafValue: []byte("a"), LeafIndex: 0, TreeSize: 2, AuditPath: [][]byte{[]byte("L(b)")}}
	ok, err := service.VerifyAuditPath(context.Background(), left, root)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !ok {
		t.Fatalf("expected left leaf to verify")
	}

	right := AuditProof{LeafValue: []byte("b"), LeafIndex: 1, TreeSize: 2, AuditPath: [][]byte{[]byte("L(a)")}}
	ok, err = service.VerifyAuditPath(context.Background(), right, root)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !ok {
		t.Fatalf("expected right leaf to verify")
	}
}

func TestVerifyAuditPathRaggedEdgeLeaf(t *testing.T) {
	// Three leaves: the last one sits alone on the ragged right edge, where
	// the sibling combines from the left and the catch-up loop ascends.
	service := NewMerkleService(fakeTreeHasher{})
	root := []byte("N(N(L(a),L(b)),L(c))")

	proof := AuditProof{
		LeafValue: []byte("c"),
		LeafIndex: 2,
		TreeSize:  3,
		AuditPath: [][]byte{[]byte("N(L(a),L(b))")},
	}
	ok, err := service.VerifyAuditPath(context.Background(), proof, root)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !ok {
		t.Fatalf("expected edge leaf to verify")
	}
}

func TestVerifyAuditPathSevenLeafTree(t *testing.T) {
	service := NewMerkleService(fakeTreeHasher{})
	left4 := "N(N(L(a),L(b)),N(L(c),L(d)))"
	pair56 := "N(L(e),L(f))"
	root := []byte("N(" + left4 + ",N(" + pair56 + ",L(g)))")

	proof := AuditProof{
		LeafValue: []byte("g"),
		LeafIndex: 6,
		TreeSize:  7,
		AuditPath: [][]byte{[]byte(pair56), []byte(left4)},
	}
	ok, err := service.VerifyAuditPath(context.Background(), proof, root)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !ok {
		t.Fatalf("expected last leaf of 7 to verify")
	}
}

func TestVerifyAuditPathDetectsTamperedLeaf(t *testing.T) {
	service := NewMerkleService(fakeTreeHasher{})
	root := []byte("N(L(a),L(b))")

	proof := AuditProof{LeafValue: []byte("x"), LeafIndex: 0, TreeSize: 2, AuditPath: [][]byte{[]byte("L(b)")}}
	ok, err := service.VerifyAuditPath(context.Background(), proof, root)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if ok {
		t.Fatalf("expected tampered leaf to fail")
	}
}

func TestVerifyAuditPathDetectsTamperedSibling(t *testing.T) {
	service := NewMerkleService(fakeTreeHasher{})
	root := []byte("N(L(a),L(b))")

	proof := AuditProof{LeafValue: []byte("a"), LeafIndex: 0, TreeSize: 2, AuditPath: [][]byte{[]byte("L(x)")}}
	ok, err := service.VerifyAuditPath(context.Background(), proof, root)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if ok {
		t.Fatalf("expected tampered sibling to fail")
	}
}

func TestVerifyAuditPathOutOfRangeIndex(t *testing.T) {
	service := NewMerkleService(fakeTreeHasher{})

	for _, proof := range []AuditProof{
		{LeafValue: []byte("a"), LeafIndex: -1, TreeSize: 2},
		{LeafValue: []byte("a"), LeafIndex: 2, TreeSize: 2},
		{LeafValue: []byte("a"), LeafIndex: 0, TreeSize: 0},
	} {
		ok, err := service.VerifyAuditPath(context.Background(), proof, []byte("root"))
		if err != nil {
			t.Fatalf("expected no error for index %d, got %v", proof.LeafIndex, err)
		}
		if ok {
			t.Fatalf("expected false for index %d of %d", proof.LeafIndex, proof.TreeSize)
		}
	}
}

func TestVerifyAuditPathLengthMismatchIsHardError(t *testing.T) {
	service := NewMerkleService(fakeTreeHasher{})

	proof := AuditProof{LeafValue: []byte("a"), LeafIndex: 0, TreeSize: 2}
	if _, err := service.VerifyAuditPath(context.Background(), proof, []byte("root")); !errors.Is(err, ErrPathLengthMismatch) {
		t.Fatalf("expected ErrPathLengthMismatch, got %v", err)
	}
}

func TestAuditPathLength(t *testing.T) {
	cases := []struct {
		index    int64
		treeSize int64
		expected int
	}{
		{0, 1, 0},
		{0, 2, 1},
		{1, 2, 1},
		{2, 3, 1},
		{4, 5, 1},
		{6, 7, 2},
		{0, 8, 3},
		{4, 7, 3},
		{7, 8, 3},
	}

	for _, c := range cases {
		if got := AuditPathLength(c.index, c.treeSize); got != c.expected {
			t.Fatalf("expected length %d for leaf %d of %d, got %d", c.expected, c.index, c.treeSize, got)
		}
	}
}
