package dataapi

import "context"

// CountOptions holds parameters for the count operations.
type CountOptions struct {
	CallOptions *CommandOptions
}

// CountDocuments counts documents matching the filter. The server may stop
// counting at an upper bound; the second return reports whether the count
// is exact.
func (c *Collection) CountDocuments(ctx context.Context, filter Filter, options CountOptions) (int64, bool, error) {
	payload := map[string]any{}
	if filter != nil {
		payload["filter"] = filter
	}
	resp, err := c.runCommand(ctx, "countDocuments", payload, options.CallOptions)
	if err != nil {
		return 0, false, err
	}
	return resp.statusInt("count"), !resp.statusBool("moreData"), nil
}

// EstimatedDocumentCount returns the server's cheap collection-size
// estimate. No filter applies.
func (c *Collection) EstimatedDocumentCount(ctx context.Context, options CountOptions) (int64, error) {
	resp, err := c.runCommand(ctx, "estimatedDocumentCount", map[string]any{}, options.CallOptions)
	if err != nil {
		return 0, err
	}
	return resp.statusInt("count"), nil
}
