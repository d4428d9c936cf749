package state

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/osvaldoandrade/ledgerproof/internal/domain"
)

// EncodeService turns parsed replies into the canonical state entries the
// ledger's proofs must contain. Pure transforms: nothing is fetched and
// nothing is persisted.
type EncodeService struct {
	canonicalizer Canonicalizer
	hasher        Hasher
}

func NewEncodeService(canonicalizer Canonicalizer, hasher Hasher) *EncodeService {
	return &EncodeService{canonicalizer: canonicalizer, hasher: hasher}
}

// envelope builds and canonicalizes the {lsn, lut, val} document.
func (s *EncodeService) envelope(ctx context.Context, value json.RawMessage, seqNo uint64, txnTime *uint64) (domain.StateValue, []byte, error) {
	stateValue := domain.NewStateValue(value, seqNo, txnTime)
	encoded, err := stateValue.Encode()
	if err != nil {
		return domain.StateValue{}, nil, err
	}
	canonical, err := s.canonicalizer.Canonicalize(ctx, encoded)
	if err != nil {
		return domain.StateValue{}, nil, fmt.Errorf("canonicalize envelope: %w", err)
	}
	return stateValue, canonical, nil
}

// contentDigest hashes a document in its canonical form, so logically equal
// payloads digest identically regardless of the spelling the node returned.
func (s *EncodeService) contentDigest(ctx context.Context, doc []byte) (string, error) {
	canonical, err := s.canonicalizer.Canonicalize(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("canonicalize content: %w", err)
	}
	return s.hasher.SumHex(canonical), nil
}

func stringValue(s string) (json.RawMessage, error) {
	value, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return value, nil
}
