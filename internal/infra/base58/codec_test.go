package base58

import (
	"bytes"
	"errors"
	"testing"
)

func TestCodecRoundTrip(t *testing.T) {
	codec := Codec{}
	digest := bytes.Repeat([]byte{0x5a}, 32)

	decoded, err := codec.Decode(codec.Encode(digest))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !bytes.Equal(decoded, digest) {
		t.Fatalf("expected %x, got %x", digest, decoded)
	}
}

func TestCodecKnownVector(t *testing.T) {
	if got := (Codec{}).Encode([]byte("hello world")); got != "StV1DL6CwTryKyV" {
		t.Fatalf("unexpected encoding %q", got)
	}
}

func TestCodecRejectsInvalidCharacters(t *testing.T) {
	if _, err := (Codec{}).Decode("0OIl"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestCodecRejectsEmptyInput(t *testing.T) {
	if _, err := (Codec{}).Decode(""); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}
