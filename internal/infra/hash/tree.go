package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"

	"golang.org/x/crypto/sha3"
)

// Domain separation prefixes for audit tree hashing. Leaves and interior
// nodes must never share a preimage space.
const (
	leafPrefix = 0x00
	nodePrefix = 0x01
)

// TreeHasher computes the leaf and interior-node digests of a ledger audit
// tree over any 256-bit hash constructor.
type TreeHasher struct {
	newHash func() hash.Hash
}

func NewTreeHasher(newHash func() hash.Hash) TreeHasher {
	return TreeHasher{newHash: newHash}
}

// NewSHA256TreeHasher is the ledger default for audit trees.
func NewSHA256TreeHasher() TreeHasher {
	return NewTreeHasher(sha256.New)
}

func NewSHA3TreeHasher() TreeHasher {
	return NewTreeHasher(sha3.New256)
}

func (h TreeHasher) HashLeaf(data []byte) []byte {
	d := h.newHash()
	d.Write([]byte{leafPrefix})
	d.Write(data)
	return d.Sum(nil)
}

func (h TreeHasher) HashChildren(left, right []byte) []byte {
	d := h.newHash()
	d.Write([]byte{nodePrefix})
	d.Write(left)
	d.Write(right)
	return d.Sum(nil)
}

// HexTreeHasher wraps a TreeHasher for callers holding hex-encoded operands.
// Malformed hex is an error, never a silent zero digest.
type HexTreeHasher struct {
	inner TreeHasher
}

func NewHexTreeHasher(inner TreeHasher) HexTreeHasher {
	return HexTreeHasher{inner: inner}
}

func (h HexTreeHasher) HashLeafHex(data string) (string, error) {
	raw, err := hex.DecodeString(data)
	if err != nil {
		return "", fmt.Errorf("decode leaf operand: %w", err)
	}
	return hex.EncodeToString(h.inner.HashLeaf(raw)), nil
}

func (h HexTreeHasher) HashChildrenHex(left, right string) (string, error) {
	rawLeft, err := hex.DecodeString(left)
	if err != nil {
		return "", fmt.Errorf("decode left operand: %w", err)
	}
	rawRight, err := hex.DecodeString(right)
	if err != nil {
		return "", fmt.Errorf("decode right operand: %w", err)
	}
	return hex.EncodeToString(h.inner.HashChildren(rawLeft, rawRight)), nil
}
