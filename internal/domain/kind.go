package domain

import (
	"errors"
	"fmt"
	"strings"
)

type TxnKind int

const (
	KindUnknown TxnKind = iota
	KindNym
	KindAttrib
	KindSchema
	KindClaimDef
	KindRevocRegDef
	KindRevocRegEntry
	KindRevocRegDelta
)

var ErrUnsupportedKind = errors.New("unsupported transaction kind")

const (
	TypeNym           = "1"
	TypeAttrib        = "100"
	TypeSchema        = "101"
	TypeClaimDef      = "102"
	TypeRevocRegDef   = "113"
	TypeRevocRegEntry = "114"

	TypeGetAttr          = "104"
	TypeGetNym           = "105"
	TypeGetSchema        = "107"
	TypeGetClaimDef      = "108"
	TypeGetRevocRegDef   = "115"
	TypeGetRevocReg      = "116"
	TypeGetRevocRegDelta = "117"
)

func (k TxnKind) IsValid() bool {
	return k >= KindNym && k <= KindRevocRegDelta
}

func (k TxnKind) String() string {
	switch k {
	case KindNym:
		return "nym"
	case KindAttrib:
		return "attrib"
	case KindSchema:
		return "schema"
	case KindClaimDef:
		return "claim_def"
	case KindRevocRegDef:
		return "revoc_reg_def"
	case KindRevocRegEntry:
		return "revoc_reg_entry"
	case KindRevocRegDelta:
		return "revoc_reg_delta"
	default:
		return "unknown"
	}
}

// WriteType returns the ledger transaction code for write requests of this
// kind. Delta lookups have no write form.
func (k TxnKind) WriteType() string {
	switch k {
	case KindNym:
		return TypeNym
	case KindAttrib:
		return TypeAttrib
	case KindSchema:
		return TypeSchema
	case KindClaimDef:
		return TypeClaimDef
	case KindRevocRegDef:
		return TypeRevocRegDef
	case KindRevocRegEntry:
		return TypeRevocRegEntry
	default:
		return ""
	}
}

// ReadType returns the ledger transaction code for read requests of this kind.
func (k TxnKind) ReadType() string {
	switch k {
	case KindNym:
		return TypeGetNym
	case KindAttrib:
		return TypeGetAttr
	case KindSchema:
		return TypeGetSchema
	case KindClaimDef:
		return TypeGetClaimDef
	case KindRevocRegDef:
		return TypeGetRevocRegDef
	case KindRevocRegEntry:
		return TypeGetRevocReg
	case KindRevocRegDelta:
		return TypeGetRevocRegDelta
	default:
		return ""
	}
}

func KindFromWriteType(txnType string) (TxnKind, error) {
	switch txnType {
	case TypeNym:
		return KindNym, nil
	case TypeAttrib:
		return KindAttrib, nil
	case TypeSchema:
		return KindSchema, nil
	case TypeClaimDef:
		return KindClaimDef, nil
	case TypeRevocRegDef:
		return KindRevocRegDef, nil
	case TypeRevocRegEntry:
		return KindRevocRegEntry, nil
	default:
		return KindUnknown, fmt.Errorf("%w: %q", ErrUnsupportedKind, txnType)
	}
}

func KindFromReadType(txnType string) (TxnKind, error) {
	switch txnType {
	case TypeGetNym:
		return KindNym, nil
	case TypeGetAttr:
		return KindAttrib, nil
	case TypeGetSchema:
		return KindSchema, nil
	case TypeGetClaimDef:
		return KindClaimDef, nil
	case TypeGetRevocRegDef:
		return KindRevocRegDef, nil
	case TypeGetRevocReg:
		return KindRevocRegEntry, nil
	case TypeGetRevocRegDelta:
		return KindRevocRegDelta, nil
	default:
		return KindUnknown, fmt.Errorf("%w: %q", ErrUnsupportedKind, txnType)
	}
}

func ParseTxnKind(value string) (TxnKind, error) {
	parsed := strings.ToLower(strings.TrimSpace(value))
	if parsed == "" {
		return KindUnknown, fmt.Errorf("transaction kind is required")
	}
	for kind := KindNym; kind <= KindRevocRegDelta; kind++ {
		if kind.String() == parsed {
			return kind, nil
		}
	}
	return KindUnknown, fmt.Errorf("invalid transaction kind: %s", value)
}
