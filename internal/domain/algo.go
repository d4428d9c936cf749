package domain

import (
	"fmt"
	"strings"
)

type HashAlgo string

const (
	HashAlgoSHA256  HashAlgo = "sha256"
	HashAlgoSHA3256 HashAlgo = "sha3-256"
)

// Ledger audit trees hash with sha256; state tries hash with sha3-256.
const (
	DefaultTreeAlgo = HashAlgoSHA256
	DefaultTrieAlgo = HashAlgoSHA3256
)

func (a HashAlgo) IsValid() bool {
	return a == HashAlgoSHA256 || a == HashAlgoSHA3256
}

func ParseHashAlgo(value string) (HashAlgo, error) {
	parsed := HashAlgo(strings.ToLower(strings.TrimSpace(value)))
	if parsed == "" {
		return "", fmt.Errorf("hash algorithm is required")
	}
	if !parsed.IsValid() {
		return "", fmt.Errorf("invalid hash algorithm: %s", value)
	}
	return parsed, nil
}

func NormalizeTreeAlgo(algo HashAlgo) HashAlgo {
	if algo.IsValid() {
		return algo
	}
	return DefaultTreeAlgo
}

func NormalizeTrieAlgo(algo HashAlgo) HashAlgo {
	if algo.IsValid() {
		return algo
	}
	return DefaultTrieAlgo
}
