package request

import (
	"errors"

	"github.com/osvaldoandrade/ledgerproof/internal/domain"
)

var ErrTimestampRequired = errors.New("timestamp is required")

// Builder assembles read requests. The identifier names the submitter; ledger
// nodes answer reads from any identifier, signed or not.
type Builder struct {
	ids        IDSource
	identifier string
}

func NewBuilder(ids IDSource, identifier string) *Builder {
	return &Builder{ids: ids, identifier: identifier}
}

func (b *Builder) GetNym(dest string) (Request, error) {
	if dest == "" {
		return Request{}, domain.ErrDestRequired
	}
	return b.wrap(nymOperation{
		Operation: Operation{Type: domain.TypeGetNym},
		Dest:      dest,
	}), nil
}

// GetAttr looks up one attribute form. For raw attributes the lookup key is
// the attribute name, not the stored document.
func (b *Builder) GetAttr(dest string, attr domain.AttrPayload) (Request, error) {
	if dest == "" {
		return Request{}, domain.ErrDestRequired
	}
	form, err := attr.Form()
	if err != nil {
		return Request{}, err
	}
	op := attrOperation{
		Operation: Operation{Type: domain.TypeGetAttr},
		Dest:      dest,
	}
	switch form {
	case domain.AttrFormRaw:
		op.Raw = attr.Raw
	case domain.AttrFormEnc:
		op.Enc = attr.Enc
	default:
		op.Hash = attr.Hash
	}
	return b.wrap(op), nil
}

func (b *Builder) GetSchema(dest, name, version string) (Request, error) {
	if dest == "" {
		return Request{}, domain.ErrDestRequired
	}
	if name == "" {
		return Request{}, domain.ErrSchemaNameRequired
	}
	if version == "" {
		return Request{}, domain.ErrSchemaVersionRequired
	}
	return b.wrap(schemaOperation{
		Operation: Operation{Type: domain.TypeGetSchema},
		Dest:      dest,
		Data:      schemaKey{Name: name, Version: version},
	}), nil
}

func (b *Builder) GetClaimDef(origin string, schemaRef uint64, signatureType, tag string) (Request, error) {
	if origin == "" {
		return Request{}, domain.ErrDestRequired
	}
	if schemaRef == 0 {
		return Request{}, domain.ErrSchemaRefRequired
	}
	if signatureType == "" {
		signatureType = domain.SignatureTypeDefault
	}
	if tag == "" {
		tag = domain.ClaimDefTagDefault
	}
	return b.wrap(claimDefOperation{
		Operation:     Operation{Type: domain.TypeGetClaimDef},
		Origin:        origin,
		Ref:           schemaRef,
		SignatureType: signatureType,
		Tag:           tag,
	}), nil
}

func (b *Builder) GetRevocRegDef(id string) (Request, error) {
	if id == "" {
		return Request{}, domain.ErrRegistryIDRequired
	}
	return b.wrap(revocRegDefOperation{
		Operation: Operation{Type: domain.TypeGetRevocRegDef},
		ID:        id,
	}), nil
}

func (b *Builder) GetRevocReg(id string, timestamp uint64) (Request, error) {
	if id == "" {
		return Request{}, domain.ErrRegistryIDRequired
	}
	if timestamp == 0 {
		return Request{}, ErrTimestampRequired
	}
	return b.wrap(revocRegOperation{
		Operation:     Operation{Type: domain.TypeGetRevocReg},
		RevocRegDefID: id,
		Timestamp:     timestamp,
	}), nil
}

// GetRevocRegDelta requests accumulator history. A zero from asks for the
// full state up to the to timestamp.
func (b *Builder) GetRevocRegDelta(id string, from, to uint64) (Request, error) {
	if id == "" {
		return Request{}, domain.ErrRegistryIDRequired
	}
	if to == 0 {
		return Request{}, ErrTimestampRequired
	}
	return b.wrap(revocRegDeltaOperation{
		Operation:     Operation{Type: domain.TypeGetRevocRegDelta},
		RevocRegDefID: id,
		From:          from,
		To:            to,
	}), nil
}

func (b *Builder) wrap(op any) Request {
	return Request{
		Operation:       op,
		Identifier:      b.identifier,
		ReqID:           b.ids.ReqID(),
		ProtocolVersion: protocolVersion,
	}
}
