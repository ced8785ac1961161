package dataapi

import (
	"context"

	"github.com/dataapi-go/dataapi/internal/ejson"
)

// UpdateResult reports a single-document update.
type UpdateResult struct {
	MatchedCount  int64
	ModifiedCount int64
	UpsertedID    any
}

// UpdateManyResult reports a multi-page update. On failure the same shape
// rides inside BulkError.Partial with the counters accumulated so far.
type UpdateManyResult struct {
	MatchedCount  int64
	ModifiedCount int64
	UpsertedID    any
}

// UpdateOptions holds parameters for the update operations.
type UpdateOptions struct {
	// Upsert inserts a new document when nothing matches.
	Upsert bool

	Sort        Sort
	CallOptions *CommandOptions
}

func (o *UpdateOptions) payload(filter Filter, update Update, pageState string) map[string]any {
	payload := map[string]any{
		"filter": filter,
		"update": update,
	}
	if o.Sort != nil {
		payload["sort"] = o.Sort
	}
	options := map[string]any{}
	if o.Upsert {
		options["upsert"] = true
	}
	if pageState != "" {
		options["pageState"] = pageState
	}
	if len(options) > 0 {
		payload["options"] = options
	}
	return payload
}

func upsertedID(resp *commandResponse, h ejson.Hooks) (any, error) {
	ids, err := resp.statusIDs("upsertedId", h)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return ids[0], nil
}

// UpdateOne applies the update to the first document matching the filter.
func (c *Collection) UpdateOne(ctx context.Context, filter Filter, update Update, options UpdateOptions) (UpdateResult, error) {
	resp, err := c.runCommand(ctx, "updateOne", options.payload(filter, update, ""), options.CallOptions)
	if err != nil {
		return UpdateResult{}, err
	}
	opts := c.effective(options.CallOptions)
	up, err := upsertedID(resp, opts.decodeHooks())
	if err != nil {
		return UpdateResult{}, err
	}
	return UpdateResult{
		MatchedCount:  resp.statusInt("matchedCount"),
		ModifiedCount: resp.statusInt("modifiedCount"),
		UpsertedID:    up,
	}, nil
}

// UpdateMany applies the update to every document matching the filter, one
// page per request. Counters accumulate across pages; the last upsert
// identifier wins. The loop is bounded by the bulk-operation timeout, not by
// an iteration limit.
func (c *Collection) UpdateMany(ctx context.Context, filter Filter, update Update, options UpdateOptions) (UpdateManyResult, error) {
	opts := c.effective(options.CallOptions)
	ctx, cancel := bulkContext(ctx, opts.BulkTimeout)
	defer cancel()

	result := UpdateManyResult{}
	pageState := ""
	for {
		if err := contextError(ctx); err != nil {
			partial := result
			return UpdateManyResult{}, &BulkError{Partial: &partial, err: err}
		}
		resp, err := c.runCommand(ctx, "updateMany", options.payload(filter, update, pageState), options.CallOptions)
		if err != nil {
			partial := result
			return UpdateManyResult{}, &BulkError{Partial: &partial, err: err}
		}
		result.MatchedCount += resp.statusInt("matchedCount")
		result.ModifiedCount += resp.statusInt("modifiedCount")
		up, err := upsertedID(resp, opts.decodeHooks())
		if err != nil {
			return UpdateManyResult{}, &BulkError{Partial: &result, err: err}
		}
		if up != nil {
			result.UpsertedID = up
		}
		pageState = resp.pageState()
		if pageState == "" && !resp.statusBool("moreData") {
			return result, nil
		}
	}
}

// ReplaceOne replaces the first document matching the filter wholesale.
func (c *Collection) ReplaceOne(ctx context.Context, filter Filter, replacement Document, options UpdateOptions) (UpdateResult, error) {
	opts := c.effective(options.CallOptions)
	encoded, err := ejson.EncodeDocument(replacement, opts.encodeHooks())
	if err != nil {
		return UpdateResult{}, err
	}
	payload := map[string]any{
		"filter":      filter,
		"replacement": encoded,
	}
	if options.Sort != nil {
		payload["sort"] = options.Sort
	}
	if options.Upsert {
		payload["options"] = map[string]any{"upsert": true}
	}
	resp, err := c.runCommand(ctx, "findOneAndReplace", payload, options.CallOptions)
	if err != nil {
		return UpdateResult{}, err
	}
	up, err := upsertedID(resp, opts.decodeHooks())
	if err != nil {
		return UpdateResult{}, err
	}
	return UpdateResult{
		MatchedCount:  resp.statusInt("matchedCount"),
		ModifiedCount: resp.statusInt("modifiedCount"),
		UpsertedID:    up,
	}, nil
}
