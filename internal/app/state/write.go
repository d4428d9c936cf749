package state

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/osvaldoandrade/ledgerproof/internal/domain"
)

// EncodeWrite derives the state entries a committed write must have
// produced. Nym records merge with prior state the reply does not carry, so
// a nym yields a path-only expectation; revocation entries touch two keys
// and yield two.
func (s *EncodeService) EncodeWrite(ctx context.Context, result domain.WriteResult) ([]WriteExpectation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	kind, err := result.Kind()
	if err != nil {
		return nil, err
	}

	switch kind {
	case domain.KindNym:
		return s.writeNym(result)
	case domain.KindAttrib:
		return s.writeAttrib(ctx, result)
	case domain.KindSchema:
		return s.writeSchema(ctx, result)
	case domain.KindClaimDef:
		return s.writeClaimDef(ctx, result)
	case domain.KindRevocRegDef:
		return s.writeRevocRegDef(ctx, result)
	case domain.KindRevocRegEntry:
		return s.writeRevocRegEntry(ctx, result)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedKind, kind)
	}
}

// writeNym stops at the path: the committed record merges the write with
// whatever the nym held before, and the reply carries only the delta.
func (s *EncodeService) writeNym(result domain.WriteResult) ([]WriteExpectation, error) {
	var payload struct {
		Dest string `json:"dest"`
	}
	if err := json.Unmarshal(result.Txn.Data, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedReply, err)
	}
	path, err := domain.NymPath(payload.Dest)
	if err != nil {
		return nil, err
	}
	return []WriteExpectation{{Path: path}}, nil
}

func (s *EncodeService) writeAttrib(ctx context.Context, result domain.WriteResult) ([]WriteExpectation, error) {
	var payload struct {
		Dest string `json:"dest"`
		domain.AttrPayload
	}
	if err := json.Unmarshal(result.Txn.Data, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedReply, err)
	}
	path, err := domain.AttribPath(payload.Dest, payload.AttrPayload)
	if err != nil {
		return nil, err
	}
	form, err := payload.AttrPayload.Form()
	if err != nil {
		return nil, err
	}

	var digest string
	switch form {
	case domain.AttrFormRaw:
		digest, err = s.contentDigest(ctx, []byte(payload.Raw))
		if err != nil {
			return nil, err
		}
	case domain.AttrFormEnc:
		digest = s.hasher.SumHex([]byte(payload.Enc))
	default:
		digest = ""
	}

	value, err := stringValue(digest)
	if err != nil {
		return nil, err
	}
	return s.singleWrite(ctx, result, path, value)
}

func (s *EncodeService) writeSchema(ctx context.Context, result domain.WriteResult) ([]WriteExpectation, error) {
	var payload struct {
		Data struct {
			Name      string   `json:"name"`
			Version   string   `json:"version"`
			AttrNames []string `json:"attr_names"`
		} `json:"data"`
	}
	if err := json.Unmarshal(result.Txn.Data, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedReply, err)
	}
	path, err := domain.SchemaPath(result.Txn.Metadata.From, payload.Data.Name, payload.Data.Version)
	if err != nil {
		return nil, err
	}
	if len(payload.Data.AttrNames) == 0 {
		return nil, ErrAttrNamesRequired
	}
	value, err := json.Marshal(map[string]any{"attr_names": payload.Data.AttrNames})
	if err != nil {
		return nil, err
	}
	return s.singleWrite(ctx, result, path, value)
}

func (s *EncodeService) writeClaimDef(ctx context.Context, result domain.WriteResult) ([]WriteExpectation, error) {
	var payload struct {
		Data          json.RawMessage `json:"data"`
		Ref           uint64          `json:"ref"`
		SignatureType string          `json:"signature_type"`
		Tag           string          `json:"tag"`
	}
	if err := json.Unmarshal(result.Txn.Data, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedReply, err)
	}
	path, err := domain.ClaimDefPath(result.Txn.Metadata.From, payload.SignatureType, payload.Ref, payload.Tag)
	if err != nil {
		return nil, err
	}
	if isNullDocument(payload.Data) {
		return nil, ErrKeysRequired
	}
	return s.singleWrite(ctx, result, path, payload.Data)
}

func (s *EncodeService) writeRevocRegDef(ctx context.Context, result domain.WriteResult) ([]WriteExpectation, error) {
	var payload struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(result.Txn.Data, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedReply, err)
	}
	path, err := domain.RevocRegDefPath(payload.ID)
	if err != nil {
		return nil, err
	}
	return s.singleWrite(ctx, result, path, result.Txn.Data)
}

// writeRevocRegEntry expects both keys an entry commit touches: the full
// delta under the entry marker and the bare accumulator under the accum
// marker.
func (s *EncodeService) writeRevocRegEntry(ctx context.Context, result domain.WriteResult) ([]WriteExpectation, error) {
	var payload struct {
		RevocRegDefID string          `json:"revocRegDefId"`
		Value         json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(result.Txn.Data, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedReply, err)
	}
	entryPath, err := domain.RevocRegEntryPath(payload.RevocRegDefID)
	if err != nil {
		return nil, err
	}
	accumPath, err := domain.RevocRegAccumPath(payload.RevocRegDefID)
	if err != nil {
		return nil, err
	}
	if isNullDocument(payload.Value) {
		return nil, ErrAccumRequired
	}
	var value struct {
		Accum json.RawMessage `json:"accum"`
	}
	if err := json.Unmarshal(payload.Value, &value); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedReply, err)
	}
	if isNullDocument(value.Accum) {
		return nil, ErrAccumRequired
	}
	accumValue, err := json.Marshal(map[string]json.RawMessage{"accum": value.Accum})
	if err != nil {
		return nil, err
	}

	entry, err := s.singleWrite(ctx, result, entryPath, payload.Value)
	if err != nil {
		return nil, err
	}
	accum, err := s.singleWrite(ctx, result, accumPath, accumValue)
	if err != nil {
		return nil, err
	}
	return append(entry, accum...), nil
}

func (s *EncodeService) singleWrite(ctx context.Context, result domain.WriteResult, path domain.StatePath, value json.RawMessage) ([]WriteExpectation, error) {
	if result.TxnMetadata.SeqNo == 0 {
		return nil, domain.ErrSeqNoRequired
	}
	stateValue, envelope, err := s.envelope(ctx, value, result.TxnMetadata.SeqNo, result.TxnMetadata.TxnTime)
	if err != nil {
		return nil, err
	}
	return []WriteExpectation{{Path: path, Value: &stateValue, Envelope: envelope}}, nil
}

func isNullDocument(doc json.RawMessage) bool {
	return len(doc) == 0 || string(doc) == "null"
}
