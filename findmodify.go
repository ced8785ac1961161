package dataapi

import (
	"context"

	"github.com/dataapi-go/dataapi/internal/ejson"
)

// ReturnDocument selects which version of the document the find-and-modify
// operations return.
type ReturnDocument string

const (
	ReturnBefore ReturnDocument = "before"
	ReturnAfter  ReturnDocument = "after"
)

// FindModifyOptions holds parameters for the find-and-modify operations.
type FindModifyOptions struct {
	Sort           Sort
	Projection     Projection
	Upsert         bool
	ReturnDocument ReturnDocument
	CallOptions    *CommandOptions
}

func (o *FindModifyOptions) apply(payload map[string]any) {
	if o.Sort != nil {
		payload["sort"] = o.Sort
	}
	if o.Projection != nil {
		payload["projection"] = o.Projection
	}
	options := map[string]any{}
	if o.Upsert {
		options["upsert"] = true
	}
	if o.ReturnDocument != "" {
		options["returnDocument"] = string(o.ReturnDocument)
	}
	if len(options) > 0 {
		payload["options"] = options
	}
}

func (c *Collection) findModify(ctx context.Context, name string, payload map[string]any, options FindModifyOptions) (Document, error) {
	options.apply(payload)
	resp, err := c.runCommand(ctx, name, payload, options.CallOptions)
	if err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, nil
	}
	opts := c.effective(options.CallOptions)
	return decodeDocument(resp.Data.Document, opts.decodeHooks())
}

// FindOneAndUpdate applies the update and returns the affected document
// (before or after the mutation, per ReturnDocument).
func (c *Collection) FindOneAndUpdate(ctx context.Context, filter Filter, update Update, options FindModifyOptions) (Document, error) {
	return c.findModify(ctx, "findOneAndUpdate", map[string]any{
		"filter": filter,
		"update": update,
	}, options)
}

// FindOneAndReplace swaps the matching document wholesale and returns it.
func (c *Collection) FindOneAndReplace(ctx context.Context, filter Filter, replacement Document, options FindModifyOptions) (Document, error) {
	opts := c.effective(options.CallOptions)
	encoded, err := ejson.EncodeDocument(replacement, opts.encodeHooks())
	if err != nil {
		return nil, err
	}
	return c.findModify(ctx, "findOneAndReplace", map[string]any{
		"filter":      filter,
		"replacement": encoded,
	}, options)
}

// FindOneAndDelete removes the matching document and returns it.
func (c *Collection) FindOneAndDelete(ctx context.Context, filter Filter, options FindModifyOptions) (Document, error) {
	return c.findModify(ctx, "findOneAndDelete", map[string]any{
		"filter": filter,
	}, options)
}
