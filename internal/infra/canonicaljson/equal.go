package canonicaljson

import (
	"bytes"
	"context"
)

// Equal reports whether two JSON documents are the same value regardless of
// key order, whitespace, or number spelling.
func (c Canonicalizer) Equal(ctx context.Context, a, b []byte) (bool, error) {
	canonicalA, err := c.Canonicalize(ctx, a)
	if err != nil {
		return false, err
	}
	canonicalB, err := c.Canonicalize(ctx, b)
	if err != nil {
		return false, err
	}
	return bytes.Equal(canonicalA, canonicalB), nil
}
