package schema

import (
	"context"
	"testing"
)

func newTestValidator(t *testing.T) *ReplyValidator {
	t.Helper()
	validator, err := NewReplyValidator()
	if err != nil {
		t.Fatalf("NewReplyValidator returned error: %v", err)
	}
	return validator
}

func TestValidateReplyAcceptsReadReply(t *testing.T) {
	doc := []byte(`{
		"op": "REPLY",
		"result": {
			"type": "104",
			"identifier": "L5AD5g65TDQr1PPHHRoiGf",
			"reqId": 1514304094738044,
			"seqNo": 10,
			"txnTime": 1514304094,
			"data": "{\"endpoint\":{\"ha\":\"127.0.0.1:5555\"}}",
			"state_proof": {
				"root_hash": "7Wdj3rrMCZ1R1M78H4xK5jxikmdUUGW2kbfJQ1HoEpK",
				"proof_nodes": "+QHl+FGAgICg0he/hjc9t/tPFzmCrb2T+nHnN0cRwqPKqZEc3pw2iCaAoAsA80p3oFwfl4dDaKkNI8z8weRsSaS9Y8n3HoardRzxgICAgICAgICAgIC4",
				"multi_signature": {"value": {"timestamp": 1514308168}}
			}
		}
	}`)

	if err := newTestValidator(t).ValidateReply(context.Background(), doc); err != nil {
		t.Fatalf("ValidateReply returned error: %v", err)
	}
}

func TestValidateReplyAcceptsBareResult(t *testing.T) {
	doc := []byte(`{"type":"105","seqNo":10,"data":"{\"dest\":\"N22KY2Dyvmuu2PyyqSFKue\"}"}`)

	if err := newTestValidator(t).ValidateReply(context.Background(), doc); err != nil {
		t.Fatalf("ValidateReply returned error: %v", err)
	}
}

func TestValidateReplyAcceptsNack(t *testing.T) {
	doc := []byte(`{"op":"REQNACK","reason":"client request invalid"}`)

	if err := newTestValidator(t).ValidateReply(context.Background(), doc); err != nil {
		t.Fatalf("ValidateReply returned error: %v", err)
	}
}

func TestValidateReplyRejectsReplyWithoutResult(t *testing.T) {
	doc := []byte(`{"op":"REPLY"}`)

	if err := newTestValidator(t).ValidateReply(context.Background(), doc); err == nil {
		t.Fatal("expected error for REPLY without result")
	}
}

func TestValidateReplyRejectsUnknownOp(t *testing.T) {
	doc := []byte(`{"op":"PING"}`)

	if err := newTestValidator(t).ValidateReply(context.Background(), doc); err == nil {
		t.Fatal("expected error for unknown op")
	}
}

func TestValidateReplyRejectsNonObject(t *testing.T) {
	doc := []byte(`[1,2,3]`)

	if err := newTestValidator(t).ValidateReply(context.Background(), doc); err == nil {
		t.Fatal("expected error for non-object response")
	}
}

func TestValidateReplyRejectsMalformedJSON(t *testing.T) {
	doc := []byte(`{"op":`)

	if err := newTestValidator(t).ValidateReply(context.Background(), doc); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}
