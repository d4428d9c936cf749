package state

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/osvaldoandrade/ledgerproof/internal/domain"
)

// fakeCanonicalizer sorts keys and strips whitespace through a plain JSON
// round trip, which is canonical enough for the fixtures used here.
type fakeCanonicalizer struct{}

func (fakeCanonicalizer) Canonicalize(_ context.Context, doc []byte) ([]byte, error) {
	var value any
	if err := json.Unmarshal(doc, &value); err != nil {
		return nil, err
	}
	return json.Marshal(value)
}

type fakeHasher struct{}

func (fakeHasher) SumHex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

type fakeBase58 struct {
	known map[string][]byte
}

func (f fakeBase58) Decode(s string) ([]byte, error) {
	decoded, ok := f.known[s]
	if !ok {
		return nil, fmt.Errorf("unknown encoding %q", s)
	}
	return decoded, nil
}

func newTestEncodeService() *EncodeService {
	return NewEncodeService(fakeCanonicalizer{}, fakeHasher{})
}

func uintPtr(v uint64) *uint64 {
	return &v
}

func TestEncodeReadNym(t *testing.T) {
	svc := newTestEncodeService()
	proof := &domain.StateProof{RootHash: "root", ProofNodes: "nodes"}
	result := domain.ReadResult{
		Type:       domain.TypeGetNym,
		Data:       json.RawMessage(`"{\"identifier\":\"CKyzSUBaFBTBJW6U9C2VPn\",\"role\":null,\"seqNo\":10,\"txnTime\":1514304094,\"verkey\":\"~Q9GRhgLmCHWSWrB26HauB6\"}"`),
		SeqNo:      10,
		TxnTime:    uintPtr(1514304094),
		StateProof: proof,
	}

	expectations, err := svc.EncodeRead(context.Background(), result)
	if err != nil {
		t.Fatalf("encode read: %v", err)
	}
	if len(expectations) != 1 {
		t.Fatalf("expected one expectation, got %d", len(expectations))
	}
	if expectations[0].Proof != proof {
		t.Fatalf("expectation must carry the result's state proof")
	}
	want := `{"lsn":10,"lut":1514304094,"val":{"identifier":"CKyzSUBaFBTBJW6U9C2VPn","role":null,"seqNo":10,"txnTime":1514304094,"verkey":"~Q9GRhgLmCHWSWrB26HauB6"}}`
	if got := string(expectations[0].Envelope); got != want {
		t.Fatalf("unexpected envelope\n got %s\nwant %s", got, want)
	}
}

func TestEncodeReadAttribRawHashesCanonicalContent(t *testing.T) {
	svc := newTestEncodeService()
	result := domain.ReadResult{
		Type:    domain.TypeGetAttr,
		Raw:     "name",
		Data:    json.RawMessage(`"{\"name\": \"Alice\"}"`),
		SeqNo:   10,
		TxnTime: uintPtr(1513945121),
	}

	expectations, err := svc.EncodeRead(context.Background(), result)
	if err != nil {
		t.Fatalf("encode read: %v", err)
	}

	sum := sha256.Sum256([]byte(`{"name":"Alice"}`))
	want := fmt.Sprintf(`{"lsn":10,"lut":1513945121,"val":%q}`, hex.EncodeToString(sum[:]))
	if got := string(expectations[0].Envelope); got != want {
		t.Fatalf("unexpected envelope\n got %s\nwant %s", got, want)
	}
}

func TestEncodeReadAttribEncHashesVerbatim(t *testing.T) {
	svc := newTestEncodeService()
	result := domain.ReadResult{
		Type:    domain.TypeGetAttr,
		Enc:     "ciphertext-blob",
		Data:    json.RawMessage(`"ciphertext-blob"`),
		SeqNo:   12,
		TxnTime: uintPtr(1513945200),
	}

	expectations, err := svc.EncodeRead(context.Background(), result)
	if err != nil {
		t.Fatalf("encode read: %v", err)
	}

	sum := sha256.Sum256([]byte("ciphertext-blob"))
	want := fmt.Sprintf(`{"lsn":12,"lut":1513945200,"val":%q}`, hex.EncodeToString(sum[:]))
	if got := string(expectations[0].Envelope); got != want {
		t.Fatalf("unexpected envelope\n got %s\nwant %s", got, want)
	}
}

func TestEncodeReadAttribHashStoresEmptyValue(t *testing.T) {
	svc := newTestEncodeService()
	result := domain.ReadResult{
		Type:  domain.TypeGetAttr,
		Hash:  "59afd2c3f0b1b248ac35a1f26f1e397e1b01a2ae47e769f526469c128cd711c0",
		SeqNo: 5,
	}

	expectations, err := svc.EncodeRead(context.Background(), result)
	if err != nil {
		t.Fatalf("encode read: %v", err)
	}

	want := `{"lsn":5,"lut":null,"val":""}`
	if got := string(expectations[0].Envelope); got != want {
		t.Fatalf("unexpected envelope\n got %s\nwant %s", got, want)
	}
}

func TestEncodeReadSchemaKeepsAttrNamesOnly(t *testing.T) {
	svc := newTestEncodeService()
	result := domain.ReadResult{
		Type:    domain.TypeGetSchema,
		Data:    json.RawMessage(`{"name": "degree", "version": "1.0", "attr_names": ["undergrad", "last_name"]}`),
		SeqNo:   57,
		TxnTime: uintPtr(1514304100),
	}

	expectations, err := svc.EncodeRead(context.Background(), result)
	if err != nil {
		t.Fatalf("encode read: %v", err)
	}

	want := `{"lsn":57,"lut":1514304100,"val":{"attr_names":["undergrad","last_name"]}}`
	if got := string(expectations[0].Envelope); got != want {
		t.Fatalf("unexpected envelope\n got %s\nwant %s", got, want)
	}
}

func TestEncodeReadSchemaRequiresAttrNames(t *testing.T) {
	svc := newTestEncodeService()
	result := domain.ReadResult{
		Type:  domain.TypeGetSchema,
		Data:  json.RawMessage(`{"name": "degree", "version": "1.0"}`),
		SeqNo: 57,
	}

	if _, err := svc.EncodeRead(context.Background(), result); !errors.Is(err, ErrAttrNamesRequired) {
		t.Fatalf("expected ErrAttrNamesRequired, got %v", err)
	}
}

func TestEncodeReadClaimDefUsesWholeDocument(t *testing.T) {
	svc := newTestEncodeService()
	result := domain.ReadResult{
		Type:    domain.TypeGetClaimDef,
		Data:    json.RawMessage(`{"primary": {"n": "123", "s": "456"}}`),
		SeqNo:   99,
		TxnTime: uintPtr(1514304200),
	}

	expectations, err := svc.EncodeRead(context.Background(), result)
	if err != nil {
		t.Fatalf("encode read: %v", err)
	}

	want := `{"lsn":99,"lut":1514304200,"val":{"primary":{"n":"123","s":"456"}}}`
	if got := string(expectations[0].Envelope); got != want {
		t.Fatalf("unexpected envelope\n got %s\nwant %s", got, want)
	}
}

func TestEncodeReadRevocRegEntryUsesInnerCoordinates(t *testing.T) {
	svc := newTestEncodeService()
	result := domain.ReadResult{
		Type: domain.TypeGetRevocReg,
		Data: json.RawMessage(`{"revocRegDefId": "RID", "seqNo": 31, "txnTime": 1514307000, "value": {"accum": "1 FF"}}`),
	}

	expectations, err := svc.EncodeRead(context.Background(), result)
	if err != nil {
		t.Fatalf("encode read: %v", err)
	}

	want := `{"lsn":31,"lut":1514307000,"val":{"accum":"1 FF"}}`
	if got := string(expectations[0].Envelope); got != want {
		t.Fatalf("unexpected envelope\n got %s\nwant %s", got, want)
	}
}

func TestEncodeReadDeltaYieldsBothSnapshots(t *testing.T) {
	svc := newTestEncodeService()
	toProof := &domain.StateProof{RootHash: "toRoot", ProofNodes: "toNodes"}
	result := domain.ReadResult{
		Type: domain.TypeGetRevocRegDelta,
		Data: json.RawMessage(`{
			"revocRegDefId": "RID",
			"stateProofFrom": {"root_hash": "fromRoot", "proof_nodes": "fromNodes"},
			"value": {
				"accum_from": {"seqNo": 20, "txnTime": 1514305000, "value": {"accum": "1 0A"}},
				"accum_to": {"seqNo": 25, "txnTime": 1514306000, "value": {"accum": "1 0B"}}
			}
		}`),
		StateProof: toProof,
	}

	expectations, err := svc.EncodeRead(context.Background(), result)
	if err != nil {
		t.Fatalf("encode read: %v", err)
	}
	if len(expectations) != 2 {
		t.Fatalf("expected two expectations, got %d", len(expectations))
	}

	if expectations[0].Proof == nil || expectations[0].Proof.RootHash != "fromRoot" {
		t.Fatalf("from snapshot must be proved by stateProofFrom, got %+v", expectations[0].Proof)
	}
	wantFrom := `{"lsn":20,"lut":1514305000,"val":{"accum":"1 0A"}}`
	if got := string(expectations[0].Envelope); got != wantFrom {
		t.Fatalf("unexpected from envelope\n got %s\nwant %s", got, wantFrom)
	}

	if expectations[1].Proof != toProof {
		t.Fatalf("to snapshot must be proved by the result proof")
	}
	wantTo := `{"lsn":25,"lut":1514306000,"val":{"accum":"1 0B"}}`
	if got := string(expectations[1].Envelope); got != wantTo {
		t.Fatalf("unexpected to envelope\n got %s\nwant %s", got, wantTo)
	}
}

func TestEncodeReadDeltaWithoutFromYieldsOne(t *testing.T) {
	svc := newTestEncodeService()
	result := domain.ReadResult{
		Type: domain.TypeGetRevocRegDelta,
		Data: json.RawMessage(`{
			"revocRegDefId": "RID",
			"value": {"accum_to": {"seqNo": 25, "txnTime": 1514306000, "value": {"accum": "1 0B"}}}
		}`),
		StateProof: &domain.StateProof{RootHash: "toRoot", ProofNodes: "toNodes"},
	}

	expectations, err := svc.EncodeRead(context.Background(), result)
	if err != nil {
		t.Fatalf("encode read: %v", err)
	}
	if len(expectations) != 1 {
		t.Fatalf("expected one expectation, got %d", len(expectations))
	}
}

func TestEncodeReadDeltaRequiresToSnapshot(t *testing.T) {
	svc := newTestEncodeService()
	result := domain.ReadResult{
		Type: domain.TypeGetRevocRegDelta,
		Data: json.RawMessage(`{"revocRegDefId": "RID", "value": {}}`),
	}

	if _, err := svc.EncodeRead(context.Background(), result); !errors.Is(err, ErrSnapshotRequired) {
		t.Fatalf("expected ErrSnapshotRequired, got %v", err)
	}
}

func TestEncodeReadRejectsUnsupportedKind(t *testing.T) {
	svc := newTestEncodeService()
	result := domain.ReadResult{Type: "9999", Data: json.RawMessage(`{}`), SeqNo: 1}

	if _, err := svc.EncodeRead(context.Background(), result); !errors.Is(err, domain.ErrUnsupportedKind) {
		t.Fatalf("expected ErrUnsupportedKind, got %v", err)
	}
}

func TestEncodeReadRequiresSeqNo(t *testing.T) {
	svc := newTestEncodeService()
	result := domain.ReadResult{
		Type: domain.TypeGetNym,
		Data: json.RawMessage(`"{\"identifier\":\"CKyzSUBaFBTBJW6U9C2VPn\",\"verkey\":null,\"role\":null}"`),
	}

	if _, err := svc.EncodeRead(context.Background(), result); !errors.Is(err, domain.ErrSeqNoRequired) {
		t.Fatalf("expected ErrSeqNoRequired, got %v", err)
	}
}
