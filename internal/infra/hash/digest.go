package hash

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// SHA3256 digests trie node encodings. State tries address nodes by
// sha3-256 of their serialized form.
type SHA3256 struct{}

func (SHA3256) Sum(data []byte) []byte {
	d := sha3.New256()
	d.Write(data)
	return d.Sum(nil)
}

// SHA256 is the alternate digester, also used for content digests in state
// values.
type SHA256 struct{}

func (SHA256) Sum(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

func (SHA256) SumHex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
