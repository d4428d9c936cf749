package state

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/osvaldoandrade/ledgerproof/internal/domain"
)

// EncodeRead derives the expected state entries for a read result. Most
// kinds yield one expectation proved by the result's state proof; a delta
// carrying both accumulator snapshots yields two, the earlier one proved by
// the stateProofFrom section.
func (s *EncodeService) EncodeRead(ctx context.Context, result domain.ReadResult) ([]ReadExpectation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	kind, err := result.Kind()
	if err != nil {
		return nil, err
	}

	switch kind {
	case domain.KindNym:
		return s.readNym(ctx, result)
	case domain.KindAttrib:
		return s.readAttrib(ctx, result)
	case domain.KindSchema:
		return s.readSchema(ctx, result)
	case domain.KindClaimDef, domain.KindRevocRegDef:
		return s.readDocument(ctx, result)
	case domain.KindRevocRegEntry:
		return s.readRevocRegEntry(ctx, result)
	default:
		return s.readRevocRegDelta(ctx, result)
	}
}

// readNym rebuilds the committed nym record from the string-packed data:
// the fixed five-key projection, absent fields kept as nulls.
func (s *EncodeService) readNym(ctx context.Context, result domain.ReadResult) ([]ReadExpectation, error) {
	doc, err := result.DataDocument()
	if err != nil {
		return nil, err
	}
	var record struct {
		Identifier *string `json:"identifier"`
		Role       *string `json:"role"`
		SeqNo      *uint64 `json:"seqNo"`
		TxnTime    *uint64 `json:"txnTime"`
		Verkey     *string `json:"verkey"`
	}
	if err := json.Unmarshal(doc, &record); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedReply, err)
	}
	value, err := json.Marshal(map[string]any{
		"identifier": record.Identifier,
		"role":       record.Role,
		"seqNo":      record.SeqNo,
		"txnTime":    record.TxnTime,
		"verkey":     record.Verkey,
	})
	if err != nil {
		return nil, err
	}
	return s.single(ctx, result, value, result.SeqNo, result.TxnTime)
}

func (s *EncodeService) readAttrib(ctx context.Context, result domain.ReadResult) ([]ReadExpectation, error) {
	form, err := result.Attr().Form()
	if err != nil {
		return nil, err
	}

	var digest string
	switch form {
	case domain.AttrFormRaw:
		data, err := result.DataString()
		if err != nil {
			return nil, err
		}
		digest, err = s.contentDigest(ctx, []byte(data))
		if err != nil {
			return nil, err
		}
	case domain.AttrFormEnc:
		data, err := result.DataString()
		if err != nil {
			return nil, err
		}
		digest = s.hasher.SumHex([]byte(data))
	default:
		// Hash attributes store no content; the digest lives in the path.
		digest = ""
	}

	value, err := stringValue(digest)
	if err != nil {
		return nil, err
	}
	return s.single(ctx, result, value, result.SeqNo, result.TxnTime)
}

func (s *EncodeService) readSchema(ctx context.Context, result domain.ReadResult) ([]ReadExpectation, error) {
	doc, err := result.DataDocument()
	if err != nil {
		return nil, err
	}
	var schema struct {
		AttrNames []string `json:"attr_names"`
	}
	if err := json.Unmarshal(doc, &schema); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedReply, err)
	}
	if len(schema.AttrNames) == 0 {
		return nil, ErrAttrNamesRequired
	}
	value, err := json.Marshal(map[string]any{"attr_names": schema.AttrNames})
	if err != nil {
		return nil, err
	}
	return s.single(ctx, result, value, result.SeqNo, result.TxnTime)
}

// readDocument covers the kinds whose committed value is the returned data
// document itself.
func (s *EncodeService) readDocument(ctx context.Context, result domain.ReadResult) ([]ReadExpectation, error) {
	doc, err := result.DataDocument()
	if err != nil {
		return nil, err
	}
	return s.single(ctx, result, json.RawMessage(doc), result.SeqNo, result.TxnTime)
}

type accumSnapshot struct {
	SeqNo   uint64          `json:"seqNo"`
	TxnTime *uint64         `json:"txnTime"`
	Value   json.RawMessage `json:"value"`
}

func (s *EncodeService) readRevocRegEntry(ctx context.Context, result domain.ReadResult) ([]ReadExpectation, error) {
	doc, err := result.DataDocument()
	if err != nil {
		return nil, err
	}
	var entry accumSnapshot
	if err := json.Unmarshal(doc, &entry); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedReply, err)
	}
	if isNullDocument(entry.Value) {
		return nil, ErrAccumRequired
	}
	// Registry entries carry their own commit coordinates inside data.
	return s.single(ctx, result, entry.Value, entry.SeqNo, entry.TxnTime)
}

func (s *EncodeService) readRevocRegDelta(ctx context.Context, result domain.ReadResult) ([]ReadExpectation, error) {
	doc, err := result.DataDocument()
	if err != nil {
		return nil, err
	}
	var delta struct {
		Value struct {
			AccumFrom json.RawMessage `json:"accum_from"`
			AccumTo   json.RawMessage `json:"accum_to"`
		} `json:"value"`
		StateProofFrom *domain.StateProof `json:"stateProofFrom"`
	}
	if err := json.Unmarshal(doc, &delta); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedReply, err)
	}

	to, err := decodeSnapshot(delta.Value.AccumTo)
	if err != nil {
		return nil, err
	}
	toValue, toEnvelope, err := s.envelope(ctx, to.Value, to.SeqNo, to.TxnTime)
	if err != nil {
		return nil, err
	}
	expectations := []ReadExpectation{{Value: toValue, Envelope: toEnvelope, Proof: result.StateProof}}

	if isNullDocument(delta.Value.AccumFrom) {
		return expectations, nil
	}
	from, err := decodeSnapshot(delta.Value.AccumFrom)
	if err != nil {
		return nil, err
	}
	fromValue, fromEnvelope, err := s.envelope(ctx, from.Value, from.SeqNo, from.TxnTime)
	if err != nil {
		return nil, err
	}
	// The earlier snapshot is proved by its own proof section; prepend so
	// expectations stay in ledger order.
	expectations = append([]ReadExpectation{
		{Value: fromValue, Envelope: fromEnvelope, Proof: delta.StateProofFrom},
	}, expectations...)
	return expectations, nil
}

func decodeSnapshot(raw json.RawMessage) (accumSnapshot, error) {
	if isNullDocument(raw) {
		return accumSnapshot{}, ErrSnapshotRequired
	}
	var snapshot accumSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return accumSnapshot{}, fmt.Errorf("%w: %v", domain.ErrMalformedReply, err)
	}
	if isNullDocument(snapshot.Value) {
		return accumSnapshot{}, ErrAccumRequired
	}
	if snapshot.SeqNo == 0 {
		return accumSnapshot{}, domain.ErrSeqNoRequired
	}
	return snapshot, nil
}

func (s *EncodeService) single(ctx context.Context, result domain.ReadResult, value json.RawMessage, seqNo uint64, txnTime *uint64) ([]ReadExpectation, error) {
	if seqNo == 0 {
		return nil, domain.ErrSeqNoRequired
	}
	stateValue, envelope, err := s.envelope(ctx, value, seqNo, txnTime)
	if err != nil {
		return nil, err
	}
	return []ReadExpectation{{Value: stateValue, Envelope: envelope, Proof: result.StateProof}}, nil
}
