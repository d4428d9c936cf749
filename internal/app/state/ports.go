package state

import (
	"context"

	"github.com/osvaldoandrade/ledgerproof/internal/domain"
)

type Canonicalizer interface {
	Canonicalize(ctx context.Context, input []byte) ([]byte, error)
}

type Hasher interface {
	SumHex(data []byte) string
}

type Base58 interface {
	Decode(value string) ([]byte, error)
}

// ReadExpectation is one value the ledger must prove for a read: the
// canonical envelope plus the proof section that should contain it. Delta
// lookups with both accumulator snapshots produce two expectations.
type ReadExpectation struct {
	Value    domain.StateValue
	Envelope []byte
	Proof    *domain.StateProof
}

// WriteExpectation is the state entry a committed write implies. Envelope is
// nil for path-only kinds.
type WriteExpectation struct {
	Path     domain.StatePath
	Value    *domain.StateValue
	Envelope []byte
}
