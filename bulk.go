package dataapi

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dataapi-go/dataapi/internal/ejson"
)

// InsertManyResult reports a bulk insert. On failure the same shape rides
// inside BulkError.Partial with the identifiers that made it in.
type InsertManyResult struct {
	InsertedIDs []any
}

// InsertManyOptions holds parameters for InsertMany.
type InsertManyOptions struct {
	// Ordered inserts strictly in sequence. Requires concurrency 1.
	Ordered *bool

	// ChunkSize caps documents per request (default 50).
	ChunkSize int

	// Concurrency caps chunks in flight (default 8, forced to 1 when
	// ordered).
	Concurrency int

	CallOptions *CommandOptions
}

// insertAccumulator collects partial results from concurrently running
// chunks. Workers only touch it through push.
type insertAccumulator struct {
	mu  sync.Mutex
	ids []any
}

func (a *insertAccumulator) push(ids []any) {
	a.mu.Lock()
	a.ids = append(a.ids, ids...)
	a.mu.Unlock()
}

func (a *insertAccumulator) snapshot() []any {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]any(nil), a.ids...)
}

// InsertMany writes documents in fixed-size chunks, at most Concurrency
// chunks in flight. Ordered inserts execute chunks strictly sequentially;
// asking for ordering together with concurrency above one is rejected
// before any request is sent. When a chunk fails, the returned BulkError
// carries whatever had been inserted by then.
func (c *Collection) InsertMany(ctx context.Context, docs []Document, options InsertManyOptions) (InsertManyResult, error) {
	layer := &CommandOptions{
		Ordered:     options.Ordered,
		ChunkSize:   options.ChunkSize,
		Concurrency: options.Concurrency,
	}
	call := []*CommandOptions{options.CallOptions, layer}
	opts := c.effective(mergeLayers(call))

	ordered := opts.ordered()
	concurrency := opts.Concurrency
	if concurrency == 0 {
		concurrency = defaultConcurrency
	}
	if ordered && opts.Concurrency > 1 {
		return InsertManyResult{}, invalidParameterf("ordered inserts require concurrency 1, got %d", opts.Concurrency)
	}
	if ordered {
		concurrency = 1
	}
	chunkSize := opts.ChunkSize
	if chunkSize == 0 {
		chunkSize = defaultChunkSize
	}

	// Encode everything up front so identifier validation fails before any
	// network activity.
	encoded := make([]map[string]any, len(docs))
	hooks := opts.encodeHooks()
	for i, doc := range docs {
		doc, _, err := ensureDocumentID(doc)
		if err != nil {
			return InsertManyResult{}, err
		}
		enc, err := ejson.EncodeDocument(doc, hooks)
		if err != nil {
			return InsertManyResult{}, err
		}
		encoded[i] = enc
	}

	ctx, cancel := bulkContext(ctx, opts.BulkTimeout)
	defer cancel()

	chunks := chunkDocuments(encoded, chunkSize)
	acc := &insertAccumulator{}

	runChunk := func(ctx context.Context, chunk []map[string]any) error {
		if err := contextError(ctx); err != nil {
			return err
		}
		payload := map[string]any{
			"documents": chunk,
			"options":   map[string]any{"ordered": ordered},
		}
		resp, err := c.runCommand(ctx, "insertMany", payload, mergeLayers(call))
		if err != nil {
			return err
		}
		ids, err := resp.statusIDs("insertedIds", opts.decodeHooks())
		if err != nil {
			return err
		}
		acc.push(ids)
		return nil
	}

	if ordered {
		for _, chunk := range chunks {
			if err := runChunk(ctx, chunk); err != nil {
				return InsertManyResult{}, &BulkError{Partial: &InsertManyResult{InsertedIDs: acc.snapshot()}, err: err}
			}
		}
		return InsertManyResult{InsertedIDs: acc.snapshot()}, nil
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(concurrency)
	for _, chunk := range chunks {
		chunk := chunk
		eg.Go(func() error {
			return runChunk(egCtx, chunk)
		})
	}
	if err := eg.Wait(); err != nil {
		return InsertManyResult{}, &BulkError{Partial: &InsertManyResult{InsertedIDs: acc.snapshot()}, err: err}
	}
	return InsertManyResult{InsertedIDs: acc.snapshot()}, nil
}

func chunkDocuments(docs []map[string]any, size int) [][]map[string]any {
	var chunks [][]map[string]any
	for start := 0; start < len(docs); start += size {
		end := start + size
		if end > len(docs) {
			end = len(docs)
		}
		chunks = append(chunks, docs[start:end])
	}
	return chunks
}

// mergeLayers flattens a per-call layer list into one layer so it can ride
// in a commandRequest's layer slot.
func mergeLayers(layers []*CommandOptions) *CommandOptions {
	merged := mergeOptions(layers...)
	return &merged
}
