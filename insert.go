package dataapi

import (
	"context"

	"github.com/dataapi-go/dataapi/internal/ejson"
)

// InsertOneResult reports a single-document insert.
type InsertOneResult struct {
	InsertedID any
}

// InsertOneOptions holds parameters for InsertOne.
type InsertOneOptions struct {
	CallOptions *CommandOptions
}

// InsertOne writes one document. A missing _id is assigned a fresh UUID
// before the call.
func (c *Collection) InsertOne(ctx context.Context, doc Document, options InsertOneOptions) (InsertOneResult, error) {
	opts := c.effective(options.CallOptions)

	doc, _, err := ensureDocumentID(doc)
	if err != nil {
		return InsertOneResult{}, err
	}
	encoded, err := ejson.EncodeDocument(doc, opts.encodeHooks())
	if err != nil {
		return InsertOneResult{}, err
	}

	resp, err := c.runCommand(ctx, "insertOne", map[string]any{"document": encoded}, options.CallOptions)
	if err != nil {
		return InsertOneResult{}, err
	}
	ids, err := resp.statusIDs("insertedIds", opts.decodeHooks())
	if err != nil {
		return InsertOneResult{}, err
	}
	if len(ids) == 0 {
		return InsertOneResult{}, nil
	}
	return InsertOneResult{InsertedID: ids[0]}, nil
}
