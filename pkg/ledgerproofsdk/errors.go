package ledgerproofsdk

import "errors"

var (
	ErrGenesisRequired = errors.New("ledgerproof-sdk: genesis path required")
	ErrCacheNotOpen    = errors.New("ledgerproof-sdk: cache database is not open")
	ErrNotFound        = errors.New("ledgerproof-sdk: record not found")
	ErrProofInvalid    = errors.New("ledgerproof-sdk: proof did not verify")
	ErrRejected        = errors.New("ledgerproof-sdk: request rejected by node")
)
