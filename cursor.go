package dataapi

import (
	"context"
	"encoding/json"

	"github.com/dataapi-go/dataapi/internal/ejson"
)

// Cursor iterates the documents of a multi-page find. It is not safe for
// concurrent use. The paging token is threaded from each response into the
// next request; an empty token ends the iteration.
type Cursor struct {
	fetch func(ctx context.Context, pageState string) (*commandResponse, error)
	hooks ejson.Hooks

	buf       []json.RawMessage
	pos       int
	pageState string
	exhausted bool
	closed    bool
	err       error

	current Document
}

func newCursor(fetch func(context.Context, string) (*commandResponse, error), hooks ejson.Hooks) *Cursor {
	return &Cursor{fetch: fetch, hooks: hooks}
}

// Next advances the cursor, fetching the next page when the buffered one is
// drained. It returns false at the end of the result set or on error; check
// Err afterwards.
func (cur *Cursor) Next(ctx context.Context) bool {
	if cur.closed || cur.err != nil {
		return false
	}
	for cur.pos >= len(cur.buf) {
		if cur.exhausted {
			return false
		}
		if err := cur.fetchPage(ctx); err != nil {
			cur.err = err
			return false
		}
	}
	doc, err := decodeDocument(cur.buf[cur.pos], cur.hooks)
	if err != nil {
		cur.err = err
		return false
	}
	cur.pos++
	cur.current = doc
	return true
}

// Document returns the document the last Next call advanced to.
func (cur *Cursor) Document() Document {
	return cur.current
}

// Err returns the error that ended the iteration, if any.
func (cur *Cursor) Err() error {
	return cur.err
}

// Close releases the cursor. Subsequent Next calls return false.
func (cur *Cursor) Close() {
	cur.closed = true
	cur.buf = nil
}

func (cur *Cursor) fetchPage(ctx context.Context) error {
	resp, err := cur.fetch(ctx, cur.pageState)
	if err != nil {
		return err
	}
	cur.buf = nil
	cur.pos = 0
	if resp.Data != nil {
		cur.buf = resp.Data.Documents
	}
	cur.pageState = resp.pageState()
	if cur.pageState == "" {
		cur.exhausted = true
	}
	return nil
}

// All drains the cursor into a slice and closes it.
func (cur *Cursor) All(ctx context.Context) ([]Document, error) {
	defer cur.Close()
	var out []Document
	for cur.Next(ctx) {
		out = append(out, cur.Document())
	}
	return out, cur.Err()
}
