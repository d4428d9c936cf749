package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
)

const (
	MarkerAttr          = "1"
	MarkerSchema        = "2"
	MarkerClaimDef      = "3"
	MarkerRevocRegDef   = "4"
	MarkerRevocRegEntry = "5"
	MarkerRevocRegAccum = "6"

	PathSeparator = ":"

	SignatureTypeDefault = "CL"
	ClaimDefTagDefault   = "tag"
)

var (
	ErrDestRequired          = errors.New("dest is required")
	ErrSchemaNameRequired    = errors.New("schema name is required")
	ErrSchemaVersionRequired = errors.New("schema version is required")
	ErrSchemaRefRequired     = errors.New("schema sequence number is required")
	ErrRegistryIDRequired    = errors.New("revocation registry id is required")
)

// StatePath identifies one ledger object in committed trie state. Identical
// kind and fields always derive the identical path; the marker segment keeps
// kinds from colliding.
type StatePath []byte

func (p StatePath) String() string {
	return string(p)
}

func (p StatePath) Hex() string {
	return hex.EncodeToString(p)
}

// PathDigest is the lowercase hex sha256 used for attribute-name references.
func PathDigest(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

// NymPath is the raw sha256 digest of the owning DID. Every other kind uses a
// readable marker-separated key; nym keys are fixed-width binary.
func NymPath(dest string) (StatePath, error) {
	if dest == "" {
		return nil, ErrDestRequired
	}
	sum := sha256.Sum256([]byte(dest))
	return StatePath(sum[:]), nil
}

func AttribPath(dest string, attr AttrPayload) (StatePath, error) {
	if dest == "" {
		return nil, ErrDestRequired
	}
	form, err := attr.Form()
	if err != nil {
		return nil, err
	}
	var ref string
	switch form {
	case AttrFormRaw:
		name, err := attr.RawName()
		if err != nil {
			return nil, err
		}
		ref = PathDigest(name)
	case AttrFormEnc:
		ref = PathDigest(attr.Enc)
	default:
		ref = attr.Hash
	}
	return joinPath(dest, MarkerAttr, ref), nil
}

// AttribNamePath addresses an attribute by its bare name, the reference form
// read requests carry.
func AttribNamePath(dest, name string) (StatePath, error) {
	if dest == "" {
		return nil, ErrDestRequired
	}
	if name == "" {
		return nil, ErrMissingAttrValue
	}
	return joinPath(dest, MarkerAttr, PathDigest(name)), nil
}

func SchemaPath(dest, name, version string) (StatePath, error) {
	if dest == "" {
		return nil, ErrDestRequired
	}
	if name == "" {
		return nil, ErrSchemaNameRequired
	}
	if version == "" {
		return nil, ErrSchemaVersionRequired
	}
	return joinPath(dest, MarkerSchema, name, version), nil
}

func ClaimDefPath(dest, signatureType string, schemaRef uint64, tag string) (StatePath, error) {
	if dest == "" {
		return nil, ErrDestRequired
	}
	if schemaRef == 0 {
		return nil, ErrSchemaRefRequired
	}
	if signatureType == "" {
		signatureType = SignatureTypeDefault
	}
	if tag == "" {
		tag = ClaimDefTagDefault
	}
	return joinPath(dest, MarkerClaimDef, signatureType, strconv.FormatUint(schemaRef, 10), tag), nil
}

// RevocRegDefPath is the registry id itself; the ledger mints ids already in
// marker-separated path form.
func RevocRegDefPath(id string) (StatePath, error) {
	if id == "" {
		return nil, ErrRegistryIDRequired
	}
	return StatePath(id), nil
}

func RevocRegEntryPath(id string) (StatePath, error) {
	if id == "" {
		return nil, ErrRegistryIDRequired
	}
	return joinPath(MarkerRevocRegEntry, id), nil
}

// RevocRegAccumPath addresses the accumulator twin written alongside each
// registry entry.
func RevocRegAccumPath(id string) (StatePath, error) {
	if id == "" {
		return nil, ErrRegistryIDRequired
	}
	return joinPath(MarkerRevocRegAccum, id), nil
}

func joinPath(segments ...string) StatePath {
	return StatePath(strings.Join(segments, PathSeparator))
}
