package dataapi

import (
	"context"
)

// DeleteResult reports a single-document delete.
type DeleteResult struct {
	DeletedCount int64
}

// DeleteManyResult reports a multi-page delete. On failure the same shape
// rides inside BulkError.Partial with the counts accumulated so far.
type DeleteManyResult struct {
	DeletedCount int64
}

// DeleteOptions holds parameters for the delete operations.
type DeleteOptions struct {
	Sort        Sort
	CallOptions *CommandOptions
}

// DeleteOne removes the first document matching the filter.
func (c *Collection) DeleteOne(ctx context.Context, filter Filter, options DeleteOptions) (DeleteResult, error) {
	payload := map[string]any{"filter": filter}
	if options.Sort != nil {
		payload["sort"] = options.Sort
	}
	resp, err := c.runCommand(ctx, "deleteOne", payload, options.CallOptions)
	if err != nil {
		return DeleteResult{}, err
	}
	return DeleteResult{DeletedCount: resp.statusInt("deletedCount")}, nil
}

// DeleteMany removes every document matching the filter, one page per
// request, threading the paging cursor until the server returns none. The
// loop has no page-count ceiling; a stuck server is bounded by the
// bulk-operation timeout alone.
func (c *Collection) DeleteMany(ctx context.Context, filter Filter, options DeleteOptions) (DeleteManyResult, error) {
	opts := c.effective(options.CallOptions)
	ctx, cancel := bulkContext(ctx, opts.BulkTimeout)
	defer cancel()

	result := DeleteManyResult{}
	pageState := ""
	for {
		if err := contextError(ctx); err != nil {
			partial := result
			return DeleteManyResult{}, &BulkError{Partial: &partial, err: err}
		}
		payload := map[string]any{"filter": filter}
		if pageState != "" {
			payload["options"] = map[string]any{"pageState": pageState}
		}
		resp, err := c.runCommand(ctx, "deleteMany", payload, options.CallOptions)
		if err != nil {
			partial := result
			return DeleteManyResult{}, &BulkError{Partial: &partial, err: err}
		}
		result.DeletedCount += resp.statusInt("deletedCount")
		pageState = resp.pageState()
		if pageState == "" && !resp.statusBool("moreData") {
			return result, nil
		}
	}
}
