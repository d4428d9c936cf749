package cache

import "errors"

var ErrPathRequired = errors.New("state path is required")
var ErrEnvelopeRequired = errors.New("envelope is required")
var ErrRecordNotFound = errors.New("record not found")
