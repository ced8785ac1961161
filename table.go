package dataapi

import (
	"context"

	"github.com/dataapi-go/dataapi/internal/ejson"
)

// Table is a handle on one schema-declared table. Row decoding is
// schema-directed: every declared column type selects its decode function
// deterministically, so the bare-string identifier heuristic never runs for
// declared columns.
type Table struct {
	db     *Database
	name   string
	schema Schema
	opts   *CommandOptions
}

// Name returns the table name.
func (t *Table) Name() string {
	return t.name
}

// Schema returns the declared schema.
func (t *Table) Schema() Schema {
	return t.schema
}

// WithOptions returns a copy of the handle with an extra table-level layer.
func (t *Table) WithOptions(opts CommandOptions) *Table {
	merged := mergeOptions(t.opts, &opts)
	return &Table{db: t.db, name: t.name, schema: t.schema, opts: &merged}
}

func (t *Table) runCommand(ctx context.Context, name string, payload any, call *CommandOptions) (*commandResponse, error) {
	return t.db.cli.runCommand(ctx, &commandRequest{
		name:     name,
		payload:  payload,
		segments: []string{t.name},
		layers:   t.db.layers(t.opts, call),
	})
}

func (t *Table) effective(call *CommandOptions) CommandOptions {
	return t.db.cli.resolve(t.db.layers(t.opts, call)...)
}

// InsertOne writes one row. Vector columns use their bare-array shape; the
// remaining columns encode structurally.
func (t *Table) InsertOne(ctx context.Context, row Row, options InsertOneOptions) (InsertOneResult, error) {
	opts := t.effective(options.CallOptions)
	encoded, err := ejson.EncodeDocument(row, opts.encodeHooks())
	if err != nil {
		return InsertOneResult{}, err
	}
	resp, err := t.runCommand(ctx, "insertOne", map[string]any{"document": encoded}, options.CallOptions)
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

// FindOne returns the first row matching the filter decoded against the
// declared schema, or nil when nothing matches.
func (t *Table) FindOne(ctx context.Context, filter Filter, options FindOptions) (Row, error) {
	resp, err := t.runCommand(ctx, "findOne", options.payload(filter, ""), options.CallOptions)
	if err != nil {
		return nil, err
	}
	if resp.Data == nil || len(resp.Data.Document) == 0 || string(resp.Data.Document) == "null" {
		return nil, nil
	}
	opts := t.effective(options.CallOptions)
	return t.schema.DecodeRow(resp.Data.Document, opts.decodeHooks())
}

// Find returns one page of rows matching the filter plus the continuation
// token for the next page; an empty token means the result set is complete.
func (t *Table) Find(ctx context.Context, filter Filter, options FindOptions) ([]Row, string, error) {
	opts := t.effective(options.CallOptions)
	resp, err := t.runCommand(ctx, "find", options.payload(filter, opts.PageState), options.CallOptions)
	if err != nil {
		return nil, "", err
	}
	if resp.Data == nil {
		return nil, "", nil
	}
	rows := make([]Row, 0, len(resp.Data.Documents))
	for _, raw := range resp.Data.Documents {
		row, err := t.schema.DecodeRow(raw, opts.decodeHooks())
		if err != nil {
			return nil, "", err
		}
		rows = append(rows, row)
	}
	return rows, resp.pageState(), nil
}
