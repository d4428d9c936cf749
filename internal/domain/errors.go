package domain

import "errors"

var ErrProofInvalid = errors.New("proof verification failed")
