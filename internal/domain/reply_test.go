package domain

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

const readReplyFixture = `{
	"op": "REPLY",
	"result": {
		"type": "104",
		"identifier": "L5AD5g65TDQr1PPHHRoiGf",
		"reqId": 1514214863899317,
		"dest": "N22KY2Dyvmuu2PyyqSFKue",
		"raw": "name",
		"data": "{\"name\":\"Alice\"}",
		"seqNo": 10,
		"txnTime": 1513945121,
		"state_proof": {
			"root_hash": "7Wdj3rrMCZ1R1M78H4xK5jxikmdUUGW2kbfJQ1HoEpK",
			"proof_nodes": "+QHl",
			"multi_signature": {"participants": ["Gamma", "Delta", "Beta"]}
		}
	}
}`

const writeReplyFixture = `{
	"op": "REPLY",
	"result": {
		"ver": "1",
		"txn": {
			"type": "100",
			"data": {"dest": "N22KY2Dyvmuu2PyyqSFKue", "raw": "{\"name\":\"Alice\"}"},
			"metadata": {"from": "L5AD5g65TDQr1PPHHRoiGf", "reqId": 1514213797569745}
		},
		"txnMetadata": {"seqNo": 10, "txnTime": 1513945121, "txnId": "N22KY2Dyvmuu2PyyqSFKue|02"},
		"reqSignature": {"type": "ED25519"},
		"auditPath": ["Cdsoz17SVqPodKpe6xmY2ZgJ9UcywFDZTRgWSAYM96iA"],
		"rootHash": "5vasvo2NUAD7Gq8RVxJZg1s9F7cBpuem1VgHKaFP8oBm"
	}
}`

func TestParseReplyUnwrapsEnvelope(t *testing.T) {
	reply, err := ParseReply([]byte(readReplyFixture))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if reply.Op != OpReply {
		t.Fatalf("expected op %q, got %q", OpReply, reply.Op)
	}
	if reply.Shape() != ShapeRead {
		t.Fatalf("expected read shape, got %v", reply.Shape())
	}
}

func TestParseReplyBareResult(t *testing.T) {
	bare := `{"type":"105","dest":"N22KY2Dyvmuu2PyyqSFKue","seqNo":3}`

	reply, err := ParseReply([]byte(bare))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if reply.Shape() != ShapeRead {
		t.Fatalf("expected read shape, got %v", reply.Shape())
	}
}

func TestParseReplyReqNackCarriesReason(t *testing.T) {
	nack := `{"op":"REQNACK","reason":"client request invalid","reqId":1514215425836443}`

	_, err := ParseReply([]byte(nack))
	if !errors.Is(err, ErrRequestRejected) {
		t.Fatalf("expected ErrRequestRejected, got %v", err)
	}
	if !strings.Contains(err.Error(), "client request invalid") {
		t.Fatalf("expected reason in error, got %v", err)
	}
}

func TestParseReplyEmpty(t *testing.T) {
	if _, err := ParseReply([]byte("  ")); err != ErrEmptyReply {
		t.Fatalf("expected ErrEmptyReply, got %v", err)
	}
}

func TestReplyShapeWrite(t *testing.T) {
	reply, err := ParseReply([]byte(writeReplyFixture))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if reply.Shape() != ShapeWrite {
		t.Fatalf("expected write shape, got %v", reply.Shape())
	}

	result, err := reply.Write()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.TxnMetadata.SeqNo != 10 {
		t.Fatalf("expected seq no 10, got %d", result.TxnMetadata.SeqNo)
	}
	if kind, err := result.Kind(); err != nil || kind != KindAttrib {
		t.Fatalf("expected attrib kind, got %v (%v)", kind, err)
	}
}

func TestReadResultDataDocumentUnquotesString(t *testing.T) {
	reply, err := ParseReply([]byte(readReplyFixture))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	result, err := reply.Read()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	doc, err := result.DataDocument()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if string(doc) != `{"name":"Alice"}` {
		t.Fatalf("unexpected document %s", doc)
	}
}

func TestWriteResultValidateRequiresSeqNo(t *testing.T) {
	result := WriteResult{Txn: Txn{Type: TypeNym}}

	if err := result.Validate(); err != ErrSeqNoRequired {
		t.Fatalf("expected ErrSeqNoRequired, got %v", err)
	}
}

func TestWriteResultValidateRequiresRootHash(t *testing.T) {
	result := WriteResult{Txn: Txn{Type: TypeNym}, TxnMetadata: TxnMetadata{SeqNo: 10}}

	if err := result.Validate(); err != ErrMissingRootHash {
		t.Fatalf("expected ErrMissingRootHash, got %v", err)
	}
}

func TestStateProofValidate(t *testing.T) {
	proof := StateProof{RootHash: "7Wdj3rrMCZ1R1M78H4xK5jxikmdUUGW2kbfJQ1HoEpK"}

	if err := proof.Validate(); err != ErrMissingStateProof {
		t.Fatalf("expected ErrMissingStateProof, got %v", err)
	}
}

func TestStateProofNodes(t *testing.T) {
	proof := StateProof{ProofNodes: "wgGA"}

	nodes, err := proof.Nodes()
	if err != nil {
		t.Fatalf("decode nodes: %v", err)
	}
	if !bytes.Equal(nodes, []byte{0xc2, 0x01, 0x80}) {
		t.Fatalf("unexpected nodes %x", nodes)
	}

	proof.ProofNodes = "not base64!"
	if _, err := proof.Nodes(); !errors.Is(err, ErrMalformedReply) {
		t.Fatalf("expected ErrMalformedReply, got %v", err)
	}
}
