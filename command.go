package dataapi

import (
	"encoding/json"

	"github.com/dataapi-go/dataapi/internal/ejson"
)

// commandRequest is one logical operation: a command name, a payload, the
// resource path segments appended after the keyspace, and the configuration
// layers it resolves against. Built per call, never reused.
type commandRequest struct {
	// name keys the request body as {"<name>": payload}. Empty means the
	// payload is sent bare (raw commands).
	name     string
	payload  any
	segments []string
	layers   []*CommandOptions
}

// commandResponse is the protocol's standard envelope. All three members are
// optional; an entirely absent body is a valid "no content" response.
type commandResponse struct {
	Status map[string]json.RawMessage `json:"status"`
	Data   *responseData              `json:"data"`
	Errors []ErrorDescriptor          `json:"errors"`
}

type responseData struct {
	Document      json.RawMessage   `json:"document"`
	Documents     []json.RawMessage `json:"documents"`
	NextPageState string            `json:"nextPageState"`
}

func (r *commandResponse) statusInt(key string) int64 {
	raw, ok := r.Status[key]
	if !ok {
		return 0
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0
	}
	return n
}

func (r *commandResponse) statusBool(key string) bool {
	raw, ok := r.Status[key]
	if !ok {
		return false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false
	}
	return b
}

func (r *commandResponse) statusString(key string) string {
	raw, ok := r.Status[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// statusIDs decodes a status member holding identifiers (insertedIds,
// upsertedId) through the untyped-identifier path.
func (r *commandResponse) statusIDs(key string, h ejson.Hooks) ([]any, error) {
	raw, ok := r.Status[key]
	if !ok {
		return nil, nil
	}
	tree, err := ejson.Unmarshal(raw, h)
	if err != nil {
		return nil, err
	}
	elems, ok := tree.([]any)
	if !ok {
		elems = []any{tree}
	}
	out := make([]any, len(elems))
	for i, e := range elems {
		id, err := ejson.DecodeID(e, h)
		if err != nil {
			return nil, err
		}
		out[i] = id
	}
	return out, nil
}

// pageState returns the continuation token, wherever the server put it.
// Reads place it in data, multi-page writes in status. Empty means the
// operation is complete.
func (r *commandResponse) pageState() string {
	if r.Data != nil && r.Data.NextPageState != "" {
		return r.Data.NextPageState
	}
	return r.statusString("nextPageState")
}
