package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrStateValueRequired  = errors.New("state value is required")
	ErrMalformedStateValue = errors.New("malformed state value envelope")
)

// StateValue is the {lsn, lut, val} envelope the ledger stores for every
// committed object. lut is null for values that never carried a commit time.
type StateValue struct {
	SeqNo   uint64          `json:"lsn"`
	TxnTime *uint64         `json:"lut"`
	Value   json.RawMessage `json:"val"`
}

func NewStateValue(value json.RawMessage, seqNo uint64, txnTime *uint64) StateValue {
	return StateValue{SeqNo: seqNo, TxnTime: txnTime, Value: value}
}

func (v StateValue) Validate() error {
	if len(v.Value) == 0 {
		return ErrStateValueRequired
	}
	return nil
}

// Encode serializes the envelope with the fixed key set {lsn, lut, val}.
// Compact, keys in byte order, so equal envelopes encode to equal bytes.
func (v StateValue) Encode() ([]byte, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

func DecodeStateValue(data []byte) (StateValue, error) {
	var v StateValue
	if err := json.Unmarshal(data, &v); err != nil {
		return StateValue{}, fmt.Errorf("%w: %v", ErrMalformedStateValue, err)
	}
	if err := v.Validate(); err != nil {
		return StateValue{}, fmt.Errorf("%w: %v", ErrMalformedStateValue, err)
	}
	return v, nil
}
