package proof

import (
	"context"

	"github.com/osvaldoandrade/ledgerproof/internal/app/rlp"
)

// TrieService checks state proofs: rlp-encoded fragments of the ledger's
// state trie that should contain an expected value.
type TrieService struct {
	digester NodeDigester
	comparer ValueComparer
}

func NewTrieService(digester NodeDigester, comparer ValueComparer) *TrieService {
	return &TrieService{digester: digester, comparer: comparer}
}

// VerifyStateProof reports whether some node of the proof fragment carries
// the expected value. Malformed proof material of any sort is a false
// result, never an error: one undecodable node must not stop the scan over
// the remaining candidates.
//
// The check stops at containment. It does not walk the expected value's key
// path from the claimed root, so it proves the value appears in the supplied
// fragment, not that the fragment is anchored in committed state.
func (s *TrieService) VerifyStateProof(ctx context.Context, expectedValue, proofNodes []byte) bool {
	if ctx.Err() != nil {
		return false
	}

	top, err := rlp.Decode(proofNodes)
	if err != nil {
		return false
	}
	list, ok := top.(rlp.List)
	if !ok {
		return false
	}

	// Re-encode each supplied node and record it by digest: the minimal
	// sub-trie touched by the proof, with duplicates collapsed.
	nodes := make(map[string][]byte, len(list.Items))
	for _, item := range list.Items {
		encoded := rlp.Encode(item)
		nodes[string(s.digester.Sum(encoded))] = encoded
	}

	for _, encoded := range nodes {
		if s.nodeCarriesValue(ctx, encoded, expectedValue) {
			return true
		}
	}
	return false
}

func (s *TrieService) nodeCarriesValue(ctx context.Context, encoded, expected []byte) bool {
	item, err := rlp.Decode(encoded)
	if err != nil {
		return false
	}

	var slot rlp.Item
	switch classify(item) {
	case nodeBranch:
		slot = item.(rlp.List).Items[branchValueSlot]
	case nodeLeaf:
		slot = item.(rlp.List).Items[1]
	default:
		return false
	}

	value, ok := nodeValue(slot)
	if !ok {
		return false
	}
	equal, err := s.comparer.Equal(ctx, value, expected)
	return err == nil && equal
}
