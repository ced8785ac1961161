package dataapi

import (
	"context"
)

// FindOptions holds parameters for FindOne and Find.
type FindOptions struct {
	Sort       Sort
	Projection Projection

	// Limit caps the total number of documents the cursor yields. Zero
	// means no cap.
	Limit int

	// Skip ignores the first n matches. Only valid together with Sort.
	Skip int

	// IncludeSimilarity asks the server to attach $similarity to each
	// document of a vector sort.
	IncludeSimilarity bool

	CallOptions *CommandOptions
}

func (o *FindOptions) payload(filter Filter, pageState string) map[string]any {
	payload := map[string]any{}
	if filter != nil {
		payload["filter"] = filter
	}
	if o.Sort != nil {
		payload["sort"] = o.Sort
	}
	if o.Projection != nil {
		payload["projection"] = o.Projection
	}
	options := map[string]any{}
	if o.Limit > 0 {
		options["limit"] = o.Limit
	}
	if o.Skip > 0 {
		options["skip"] = o.Skip
	}
	if o.IncludeSimilarity {
		options["includeSimilarity"] = true
	}
	if pageState != "" {
		options["pageState"] = pageState
	}
	if len(options) > 0 {
		payload["options"] = options
	}
	return payload
}

// FindOne returns the first document matching the filter, or a nil Document
// when nothing matches.
func (c *Collection) FindOne(ctx context.Context, filter Filter, options FindOptions) (Document, error) {
	payload := options.payload(filter, "")
	resp, err := c.runCommand(ctx, "findOne", payload, options.CallOptions)
	if err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, nil
	}
	opts := c.effective(options.CallOptions)
	return decodeDocument(resp.Data.Document, opts.decodeHooks())
}

// Find returns a cursor over all matching documents. Pages are fetched
// lazily as the cursor is advanced.
func (c *Collection) Find(ctx context.Context, filter Filter, options FindOptions) (*Cursor, error) {
	opts := c.effective(options.CallOptions)
	fetch := func(ctx context.Context, pageState string) (*commandResponse, error) {
		return c.runCommand(ctx, "find", options.payload(filter, pageState), options.CallOptions)
	}
	cur := newCursor(fetch, opts.decodeHooks())
	if opts.PageState != "" {
		cur.pageState = opts.PageState
	}
	// Fetch the first page eagerly so filter errors surface here.
	if err := cur.fetchPage(ctx); err != nil {
		return nil, err
	}
	return cur, nil
}
