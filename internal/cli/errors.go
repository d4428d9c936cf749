package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	cacheapp "github.com/osvaldoandrade/ledgerproof/internal/app/cache"
	poolapp "github.com/osvaldoandrade/ledgerproof/internal/app/pool"
	proofapp "github.com/osvaldoandrade/ledgerproof/internal/app/proof"
	requestapp "github.com/osvaldoandrade/ledgerproof/internal/app/request"
	stateapp "github.com/osvaldoandrade/ledgerproof/internal/app/state"
	"github.com/osvaldoandrade/ledgerproof/internal/domain"
)

type ErrorKind string

const (
	KindInternal   ErrorKind = "internal"
	KindValidation ErrorKind = "validation"
	KindNotFound   ErrorKind = "not_found"
	KindRejected   ErrorKind = "rejected"
	KindProof      ErrorKind = "proof"
)

const (
	ExitInternal = 1
	ExitInvalid  = 2
	ExitNotFound = 3
	ExitRejected = 4
	ExitProof    = 5
)

type ExitError struct {
	Code    int
	Kind    ErrorKind
	Message string
	Err     error
}

func (e ExitError) Error() string {
	return errorMessage(e)
}

func NormalizeError(err error) ExitError {
	if err == nil {
		return ExitError{Code: 0}
	}
	var exitErr ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Code == 0 {
			exitErr.Code = ExitInternal
		}
		return exitErr
	}

	switch {
	case errors.Is(err, domain.ErrProofInvalid):
		return ExitError{Code: ExitProof, Kind: KindProof, Err: err}
	case errors.Is(err, domain.ErrRequestRejected):
		return ExitError{Code: ExitRejected, Kind: KindRejected, Err: err}
	case errors.Is(err, cacheapp.ErrRecordNotFound),
		errors.Is(err, poolapp.ErrNodeUnknown):
		return ExitError{Code: ExitNotFound, Kind: KindNotFound, Err: err}
	case errors.Is(err, domain.ErrEmptyReply),
		errors.Is(err, domain.ErrMalformedReply),
		errors.Is(err, domain.ErrNoResult),
		errors.Is(err, domain.ErrMissingData),
		errors.Is(err, domain.ErrMissingStateProof),
		errors.Is(err, domain.ErrMissingRootHash),
		errors.Is(err, domain.ErrSeqNoRequired),
		errors.Is(err, domain.ErrUnsupportedKind),
		errors.Is(err, domain.ErrDestRequired),
		errors.Is(err, domain.ErrSchemaNameRequired),
		errors.Is(err, domain.ErrSchemaVersionRequired),
		errors.Is(err, domain.ErrSchemaRefRequired),
		errors.Is(err, domain.ErrRegistryIDRequired),
		errors.Is(err, domain.ErrMissingAttrValue),
		errors.Is(err, domain.ErrMultipleAttrValues),
		errors.Is(err, domain.ErrMalformedAttrRaw),
		errors.Is(err, domain.ErrStateValueRequired),
		errors.Is(err, domain.ErrMalformedStateValue),
		errors.Is(err, domain.ErrNotNodeTxn),
		errors.Is(err, domain.ErrNodeAliasEmpty),
		errors.Is(err, domain.ErrNodeAddrMissing),
		errors.Is(err, domain.ErrNoValidators),
		errors.Is(err, stateapp.ErrAttrNamesRequired),
		errors.Is(err, stateapp.ErrKeysRequired),
		errors.Is(err, stateapp.ErrAccumRequired),
		errors.Is(err, stateapp.ErrSnapshotRequired),
		errors.Is(err, proofapp.ErrPathLengthMismatch),
		errors.Is(err, requestapp.ErrTimestampRequired),
		errors.Is(err, cacheapp.ErrPathRequired),
		errors.Is(err, cacheapp.ErrEnvelopeRequired):
		return ExitError{Code: ExitInvalid, Kind: KindValidation, Err: err}
	default:
		return ExitError{Code: ExitInternal, Kind: KindInternal, Err: err}
	}
}

func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return NormalizeError(err).Code
}

func writeCLIError(w io.Writer, exitErr ExitError, asJSON bool) error {
	if exitErr.Code == 0 {
		return nil
	}
	message := errorMessage(exitErr)
	if asJSON {
		payload := struct {
			Code    int    `json:"code"`
			Kind    string `json:"kind"`
			Message string `json:"message"`
		}{
			Code:    exitErr.Code,
			Kind:    string(exitErr.Kind),
			Message: message,
		}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(payload)
	}

	ui := newRenderer(w, false)
	prefix := "Error"
	if exitErr.Kind != "" {
		prefix = fmt.Sprintf("Error (%s)", exitErr.Kind)
	}
	prefix = ui.err(prefix)
	_, err := fmt.Fprintf(w, "%s: %s\n", prefix, message)
	return err
}

func errorMessage(exitErr ExitError) string {
	if exitErr.Message != "" {
		return exitErr.Message
	}
	if exitErr.Err != nil {
		return exitErr.Err.Error()
	}
	return "unknown error"
}
