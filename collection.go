package dataapi

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/dataapi-go/dataapi/internal/ejson"
)

// Collection is a handle on one document collection. Handles are cheap and
// safe to share; each carries its own configuration layer.
type Collection struct {
	db   *Database
	name string
	opts *CommandOptions
}

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.name
}

// WithOptions returns a copy of the handle with an extra collection-level
// layer. The receiver is unchanged.
func (c *Collection) WithOptions(opts CommandOptions) *Collection {
	merged := mergeOptions(c.opts, &opts)
	return &Collection{db: c.db, name: c.name, opts: &merged}
}

// runCommand executes one named command against this collection's resource
// path, with the full layer stack applied.
func (c *Collection) runCommand(ctx context.Context, name string, payload any, call *CommandOptions) (*commandResponse, error) {
	cmd := &commandRequest{
		name:     name,
		payload:  payload,
		segments: []string{c.name},
		layers:   c.db.layers(c.opts, call),
	}
	return c.db.cli.runCommand(ctx, cmd)
}

func (c *Collection) effective(call *CommandOptions) CommandOptions {
	return c.db.cli.resolve(c.db.layers(c.opts, call)...)
}

// ensureDocumentID returns the document's identifier, assigning a fresh
// UUIDv4 when the field is missing or nil. An explicitly empty identifier is
// caller misuse and fails before any network activity.
func ensureDocumentID(doc Document) (Document, any, error) {
	id, ok := doc[ejson.FieldID]
	if !ok || id == nil {
		id = uuid.New()
		withID := make(Document, len(doc)+1)
		for k, v := range doc {
			withID[k] = v
		}
		withID[ejson.FieldID] = id
		return withID, id, nil
	}
	if s, ok := id.(string); ok && strings.TrimSpace(s) == "" {
		return nil, nil, invalidParameterf("document has an empty _id")
	}
	return doc, id, nil
}

// decodeDocument decodes one wire document. The _id field goes through the
// untyped-identifier path so bare-string identifiers resolve to their
// best-effort type.
func decodeDocument(raw json.RawMessage, h ejson.Hooks) (Document, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	tree, err := ejson.Unmarshal(raw, h)
	if err != nil {
		return nil, err
	}
	if tree == nil {
		return nil, nil
	}
	doc, ok := tree.(map[string]any)
	if !ok {
		return nil, ejson.FormatErrorf("expected a document object, got %T", tree)
	}
	if id, ok := doc[ejson.FieldID]; ok {
		decoded, err := ejson.DecodeID(id, h)
		if err != nil {
			return nil, err
		}
		doc[ejson.FieldID] = decoded
	}
	return doc, nil
}
