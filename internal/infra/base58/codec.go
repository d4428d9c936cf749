// Package base58 wraps the btcsuite codec behind an error-returning surface.
// The underlying Decode reports malformed input as an empty slice, which is
// too quiet for proof material.
package base58

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcutil/base58"
)

var ErrInvalid = errors.New("invalid base58")

type Codec struct{}

func (Codec) Encode(data []byte) string {
	return base58.Encode(data)
}

func (Codec) Decode(value string) ([]byte, error) {
	if value == "" {
		return nil, fmt.Errorf("%w: empty input", ErrInvalid)
	}
	decoded := base58.Decode(value)
	if len(decoded) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalid, value)
	}
	return decoded, nil
}
