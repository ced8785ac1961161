package dataapi

import (
	"context"
	"encoding/json"
)

// RawResult exposes a command response without interpretation.
type RawResult struct {
	Status        map[string]json.RawMessage
	Document      json.RawMessage
	Documents     []json.RawMessage
	NextPageState string
}

func rawResult(resp *commandResponse) *RawResult {
	out := &RawResult{Status: resp.Status}
	if resp.Data != nil {
		out.Document = resp.Data.Document
		out.Documents = resp.Data.Documents
		out.NextPageState = resp.Data.NextPageState
	}
	return out
}

// RunCommand posts a caller-built payload against the keyspace, bypassing
// the typed operation surface. The payload is sent bare; wrap it yourself
// when the server expects a {"<command>": {...}} shape.
func (db *Database) RunCommand(ctx context.Context, payload Document, call *CommandOptions) (*RawResult, error) {
	resp, err := db.cli.runCommand(ctx, &commandRequest{
		payload: payload,
		layers:  db.layers(call),
	})
	if err != nil {
		return nil, err
	}
	return rawResult(resp), nil
}

// RunCommand posts a caller-built payload against this collection's
// resource path.
func (c *Collection) RunCommand(ctx context.Context, payload Document, call *CommandOptions) (*RawResult, error) {
	resp, err := c.db.cli.runCommand(ctx, &commandRequest{
		payload:  payload,
		segments: []string{c.name},
		layers:   c.db.layers(c.opts, call),
	})
	if err != nil {
		return nil, err
	}
	return rawResult(resp), nil
}
