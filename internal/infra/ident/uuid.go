package ident

import "github.com/google/uuid"

// UUIDSource derives request identifiers from random UUIDs.
type UUIDSource struct{}

func (UUIDSource) ReqID() uint32 {
	return uuid.New().ID()
}
