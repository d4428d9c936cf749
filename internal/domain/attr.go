package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrMissingAttrValue   = errors.New("attribute value is required")
	ErrMultipleAttrValues = errors.New("multiple attribute values provided")
	ErrMalformedAttrRaw   = errors.New("raw attribute must be a single-key JSON object")
)

type AttrForm int

const (
	AttrFormUnknown AttrForm = iota
	AttrFormRaw
	AttrFormEnc
	AttrFormHash
)

func (f AttrForm) String() string {
	switch f {
	case AttrFormRaw:
		return "raw"
	case AttrFormEnc:
		return "enc"
	case AttrFormHash:
		return "hash"
	default:
		return "unknown"
	}
}

// AttrPayload carries the three mutually exclusive attribute representations.
// Exactly one must be populated.
type AttrPayload struct {
	Raw  string
	Enc  string
	Hash string
}

func (a AttrPayload) Form() (AttrForm, error) {
	form := AttrFormUnknown
	populated := 0
	if a.Raw != "" {
		form = AttrFormRaw
		populated++
	}
	if a.Enc != "" {
		form = AttrFormEnc
		populated++
	}
	if a.Hash != "" {
		form = AttrFormHash
		populated++
	}
	if populated == 0 {
		return AttrFormUnknown, ErrMissingAttrValue
	}
	if populated > 1 {
		return AttrFormUnknown, ErrMultipleAttrValues
	}
	return form, nil
}

func (a AttrPayload) Validate() error {
	_, err := a.Form()
	return err
}

// RawName extracts the attribute name, the single top-level key of the raw
// JSON document.
func (a AttrPayload) RawName() (string, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(a.Raw), &doc); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedAttrRaw, err)
	}
	if len(doc) != 1 {
		return "", ErrMalformedAttrRaw
	}
	for name := range doc {
		return name, nil
	}
	return "", ErrMalformedAttrRaw
}

// Value returns the populated representation.
func (a AttrPayload) Value() (string, error) {
	form, err := a.Form()
	if err != nil {
		return "", err
	}
	switch form {
	case AttrFormRaw:
		return a.Raw, nil
	case AttrFormEnc:
		return a.Enc, nil
	default:
		return a.Hash, nil
	}
}
