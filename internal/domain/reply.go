package domain

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrEmptyReply        = errors.New("reply is empty")
	ErrMalformedReply    = errors.New("malformed reply")
	ErrRequestRejected   = errors.New("request rejected by node")
	ErrNoResult          = errors.New("reply has no result")
	ErrMissingData       = errors.New("reply data is required")
	ErrMissingStateProof = errors.New("state proof is required")
	ErrMissingRootHash   = errors.New("root hash is required")
	ErrSeqNoRequired     = errors.New("sequence number is required")
)

const (
	OpReply   = "REPLY"
	OpReqNack = "REQNACK"
	OpReject  = "REJECT"
)

type ReplyShape int

const (
	ShapeUnknown ReplyShape = iota
	ShapeRead
	ShapeWrite
)

// Reply is one node response with the op envelope stripped. Result holds the
// untouched result object; reply bytes feed hash computations downstream, so
// parsed views never replace them.
type Reply struct {
	Op     string
	Result json.RawMessage
}

// ParseReply unwraps a node response. Responses arrive either wrapped in an
// {op, result} envelope or as a bare result object.
func ParseReply(data []byte) (Reply, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Reply{}, ErrEmptyReply
	}
	var env struct {
		Op     string          `json:"op"`
		Reason string          `json:"reason"`
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return Reply{}, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	switch env.Op {
	case "":
		return Reply{Op: OpReply, Result: trimmed}, nil
	case OpReply:
		if isNullOrEmpty(env.Result) {
			return Reply{}, ErrNoResult
		}
		return Reply{Op: env.Op, Result: env.Result}, nil
	case OpReqNack, OpReject:
		reason := env.Reason
		if reason == "" {
			reason = env.Op
		}
		return Reply{}, fmt.Errorf("%w: %s", ErrRequestRejected, reason)
	default:
		return Reply{}, fmt.Errorf("%w: unexpected op %q", ErrMalformedReply, env.Op)
	}
}

// Shape reports whether the result is a write receipt or a flat read result.
func (r Reply) Shape() ReplyShape {
	var probe struct {
		Txn         json.RawMessage `json:"txn"`
		TxnMetadata json.RawMessage `json:"txnMetadata"`
		Type        string          `json:"type"`
	}
	if err := json.Unmarshal(r.Result, &probe); err != nil {
		return ShapeUnknown
	}
	if !isNullOrEmpty(probe.Txn) && !isNullOrEmpty(probe.TxnMetadata) {
		return ShapeWrite
	}
	if probe.Type != "" {
		return ShapeRead
	}
	return ShapeUnknown
}

func (r Reply) Read() (ReadResult, error) {
	if r.Shape() != ShapeRead {
		return ReadResult{}, fmt.Errorf("%w: not a read result", ErrMalformedReply)
	}
	var res ReadResult
	if err := json.Unmarshal(r.Result, &res); err != nil {
		return ReadResult{}, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	return res, nil
}

func (r Reply) Write() (WriteResult, error) {
	if r.Shape() != ShapeWrite {
		return WriteResult{}, fmt.Errorf("%w: not a write result", ErrMalformedReply)
	}
	var res WriteResult
	if err := json.Unmarshal(r.Result, &res); err != nil {
		return WriteResult{}, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	return res, nil
}

// StateProof accompanies read results. RootHash is base58; ProofNodes is a
// base64 RLP blob.
type StateProof struct {
	RootHash       string          `json:"root_hash"`
	ProofNodes     string          `json:"proof_nodes"`
	MultiSignature json.RawMessage `json:"multi_signature"`
}

func (p StateProof) Validate() error {
	if p.RootHash == "" {
		return ErrMissingRootHash
	}
	if p.ProofNodes == "" {
		return ErrMissingStateProof
	}
	return nil
}

// Nodes returns the decoded RLP proof blob.
func (p StateProof) Nodes() ([]byte, error) {
	decoded, err := base64.StdEncoding.DecodeString(p.ProofNodes)
	if err != nil {
		return nil, fmt.Errorf("%w: proof nodes: %v", ErrMalformedReply, err)
	}
	return decoded, nil
}

// ReadResult is the flat result of a domain read. The raw/enc/hash fields
// echo which attribute representation was queried.
type ReadResult struct {
	Type          string          `json:"type"`
	Identifier    string          `json:"identifier"`
	ReqID         uint64          `json:"reqId"`
	Dest          string          `json:"dest"`
	Data          json.RawMessage `json:"data"`
	SeqNo         uint64          `json:"seqNo"`
	TxnTime       *uint64         `json:"txnTime"`
	Raw           string          `json:"raw"`
	Enc           string          `json:"enc"`
	Hash          string          `json:"hash"`
	RevocRegDefID string          `json:"revocRegDefId"`
	StateProof    *StateProof     `json:"state_proof"`
}

func (r ReadResult) Kind() (TxnKind, error) {
	return KindFromReadType(r.Type)
}

// DataString returns data when the node packed it as a JSON string.
func (r ReadResult) DataString() (string, error) {
	if isNullOrEmpty(r.Data) {
		return "", ErrMissingData
	}
	var s string
	if err := json.Unmarshal(r.Data, &s); err != nil {
		return "", fmt.Errorf("%w: data is not a string", ErrMalformedReply)
	}
	return s, nil
}

// DataDocument returns data as a JSON document, unquoting string-packed
// payloads first.
func (r ReadResult) DataDocument() (json.RawMessage, error) {
	if isNullOrEmpty(r.Data) {
		return nil, ErrMissingData
	}
	trimmed := bytes.TrimSpace(r.Data)
	if trimmed[0] != '"' {
		return trimmed, nil
	}
	s, err := r.DataString()
	if err != nil {
		return nil, err
	}
	doc := json.RawMessage(s)
	if isNullOrEmpty(doc) {
		return nil, ErrMissingData
	}
	return doc, nil
}

// Attr reports the attribute representation a GET_ATTR result was queried by.
func (r ReadResult) Attr() AttrPayload {
	return AttrPayload{Raw: r.Raw, Enc: r.Enc, Hash: r.Hash}
}

// Txn is the transaction section of a write receipt. Metadata.From is the
// author DID; claim definition state keys on it.
type Txn struct {
	Type     string          `json:"type"`
	Data     json.RawMessage `json:"data"`
	Metadata TxnAuthor       `json:"metadata"`
}

type TxnAuthor struct {
	From  string `json:"from"`
	ReqID uint64 `json:"reqId"`
}

type TxnMetadata struct {
	SeqNo   uint64  `json:"seqNo"`
	TxnTime *uint64 `json:"txnTime"`
	TxnID   string  `json:"txnId"`
}

// WriteResult is the nested result of a committed write: the ordered audit
// path and claimed root prove the transaction's ledger position.
type WriteResult struct {
	Ver          string          `json:"ver"`
	Txn          Txn             `json:"txn"`
	TxnMetadata  TxnMetadata     `json:"txnMetadata"`
	ReqSignature json.RawMessage `json:"reqSignature"`
	AuditPath    []string        `json:"auditPath"`
	RootHash     string          `json:"rootHash"`
}

func (w WriteResult) Kind() (TxnKind, error) {
	return KindFromWriteType(w.Txn.Type)
}

func (w WriteResult) Validate() error {
	if _, err := w.Kind(); err != nil {
		return err
	}
	if w.TxnMetadata.SeqNo == 0 {
		return ErrSeqNoRequired
	}
	if w.RootHash == "" {
		return ErrMissingRootHash
	}
	return nil
}

func isNullOrEmpty(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
