package schema

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/reply.schema.json
var replySchema []byte

// ReplyValidator shape-checks node responses before any field is trusted.
type ReplyValidator struct {
	schema *jsonschema.Schema
}

func NewReplyValidator() (*ReplyValidator, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("reply.schema.json", bytes.NewReader(replySchema)); err != nil {
		return nil, fmt.Errorf("load reply schema: %w", err)
	}

	compiled, err := compiler.Compile("reply.schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile reply schema: %w", err)
	}

	return &ReplyValidator{schema: compiled}, nil
}

func (v *ReplyValidator) ValidateReply(ctx context.Context, doc []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var decoded any
	if err := json.Unmarshal(doc, &decoded); err != nil {
		return fmt.Errorf("parse reply: %w", err)
	}

	if err := v.schema.Validate(decoded); err != nil {
		return fmt.Errorf("validate reply: %w", err)
	}
	return nil
}
