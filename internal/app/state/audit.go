package state

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/osvaldoandrade/ledgerproof/internal/app/proof"
	"github.com/osvaldoandrade/ledgerproof/internal/domain"
)

// auditLeafKeys are the result fields a node feeds into the ledger leaf
// serialization. Everything else in the reply is per-request decoration.
var auditLeafKeys = [4]string{"reqSignature", "txn", "txnMetadata", "ver"}

// AuditExtraction bundles the inputs for an audit path check: the decoded
// proof and the root it should resolve to.
type AuditExtraction struct {
	Proof proof.AuditProof
	Root  []byte
}

// AuditService turns a write result back into the Merkle proof material the
// pool committed it with.
type AuditService struct {
	canonicalizer Canonicalizer
	base58        Base58
}

func NewAuditService(canonicalizer Canonicalizer, base58 Base58) *AuditService {
	return &AuditService{canonicalizer: canonicalizer, base58: base58}
}

// ExtractAuditProof rebuilds the ledger leaf and decodes the audit path of a
// write result. The leaf must be cut from the raw result document: parsing
// drops fields the node may have serialized into the leaf, and a single
// missing byte changes the hash.
func (s *AuditService) ExtractAuditProof(ctx context.Context, result domain.WriteResult, source json.RawMessage) (AuditExtraction, error) {
	if err := ctx.Err(); err != nil {
		return AuditExtraction{}, err
	}
	if err := result.Validate(); err != nil {
		return AuditExtraction{}, err
	}

	leaf, err := s.auditLeaf(ctx, source)
	if err != nil {
		return AuditExtraction{}, err
	}

	path := make([][]byte, len(result.AuditPath))
	for i, step := range result.AuditPath {
		decoded, err := s.base58.Decode(step)
		if err != nil {
			return AuditExtraction{}, fmt.Errorf("decode audit step %d: %w", i, err)
		}
		path[i] = decoded
	}
	root, err := s.base58.Decode(result.RootHash)
	if err != nil {
		return AuditExtraction{}, fmt.Errorf("decode root hash: %w", err)
	}

	return AuditExtraction{
		Proof: proof.AuditProof{
			LeafValue: leaf,
			LeafIndex: int64(result.TxnMetadata.SeqNo) - 1,
			TreeSize:  int64(result.TxnMetadata.SeqNo),
			AuditPath: path,
		},
		Root: root,
	}, nil
}

func (s *AuditService) auditLeaf(ctx context.Context, source json.RawMessage) ([]byte, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(source, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedReply, err)
	}
	subset := make(map[string]json.RawMessage, len(auditLeafKeys))
	for _, key := range auditLeafKeys {
		if value, ok := fields[key]; ok && !isNullDocument(value) {
			subset[key] = value
		}
	}
	doc, err := json.Marshal(subset)
	if err != nil {
		return nil, err
	}
	return s.canonicalizer.Canonicalize(ctx, doc)
}
