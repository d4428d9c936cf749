package state

import "errors"

var (
	ErrAttrNamesRequired = errors.New("schema attr_names is required")
	ErrKeysRequired      = errors.New("claim def key components are required")
	ErrAccumRequired     = errors.New("accumulator value is required")
	ErrSnapshotRequired  = errors.New("delta accum_to snapshot is required")
)
