package cache

import "github.com/osvaldoandrade/ledgerproof/internal/domain"

// Record is one verified state object. Everything needed to answer a later
// lookup without re-proving: the envelope the proof covered and the commit
// coordinates it was covered at.
type Record struct {
	ID         string
	Path       domain.StatePath
	Envelope   []byte
	SeqNo      uint64
	TxnTime    *uint64
	RootHash   string
	VerifiedAt int64
}

// Entry is a stored record plus store bookkeeping.
type Entry struct {
	Path      domain.StatePath
	RecordID  string
	Record    []byte
	UpdatedAt int64
}

type Info struct {
	Records      int64
	LastRecordID string
}
