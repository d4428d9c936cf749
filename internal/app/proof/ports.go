package proof

import "context"

// TreeHasher computes audit tree digests. Implementations pick the digest
// function; the tree layer only fixes the leaf/node domain separation.
type TreeHasher interface {
	HashLeaf(data []byte) []byte
	HashChildren(left, right []byte) []byte
}

// NodeDigester addresses trie nodes by the digest of their encoding.
type NodeDigester interface {
	Sum(data []byte) []byte
}

// ValueComparer decides whether two JSON documents denote the same value.
type ValueComparer interface {
	Equal(ctx context.Context, a, b []byte) (bool, error)
}

// AuditProof locates one leaf in a ledger audit tree. AuditPath holds the
// sibling hashes from the leaf up to the root, in order.
type AuditProof struct {
	LeafValue []byte
	LeafIndex int64
	TreeSize  int64
	AuditPath [][]byte
}
