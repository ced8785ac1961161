package dataapi

import (
	"net/http"
	"time"

	"github.com/dataapi-go/dataapi/internal/ejson"
)

// CommandOptions is one sparse configuration layer. Layers stack from client
// to database to collection to the individual call; a zero/nil field leaves
// the less specific layer's value in effect. Layers are never mutated after
// being handed to a handle: merging produces a fresh effective value.
type CommandOptions struct {
	// Token is the bearer credential sent with every request.
	Token string

	// Keyspace selects the keyspace path segment.
	Keyspace string

	// APIVersion selects the version path segment (default "v1").
	APIVersion string

	// ConnectTimeout bounds connection establishment. Zero means no limit
	// for this budget only.
	ConnectTimeout time.Duration

	// RequestTimeout bounds one HTTP exchange. Zero means no limit.
	RequestTimeout time.Duration

	// BulkTimeout bounds a whole bulk operation across all of its chunks or
	// pages. Zero means no limit.
	BulkTimeout time.Duration

	// Headers are additional HTTP headers. Unlike the other fields they
	// accumulate across layers; a more specific layer only overrides the
	// keys it sets.
	Headers http.Header

	// FollowRedirects toggles redirect following per call. Nil inherits.
	FollowRedirects *bool

	// HTTPVersion pins the HTTP protocol major version (1 disables HTTP/2
	// for the call). Zero inherits.
	HTTPVersion int

	// ChunkSize is the number of documents per bulk-insert chunk.
	ChunkSize int

	// Concurrency is the maximum number of bulk-insert chunks in flight.
	Concurrency int

	// Ordered requires chunks to execute strictly in sequence. Nil inherits.
	Ordered *bool

	// PageState threads the paging cursor into the next request of a
	// multi-page operation.
	PageState string

	// EncodeHooks and DecodeHooks extend the value codec. The most specific
	// non-nil hook set wins whole; the built-in date/UUID/objectId/binary
	// converters apply regardless (see ejson.Hooks).
	EncodeHooks *ejson.Hooks
	DecodeHooks *ejson.Hooks
}

// mergeOptions resolves an ordered layer list into one effective
// configuration, least specific first. It is pure: input layers are not
// modified, and merging the same list twice yields field-equal results.
func mergeOptions(layers ...*CommandOptions) CommandOptions {
	var out CommandOptions
	for _, layer := range layers {
		if layer == nil {
			continue
		}
		if layer.Token != "" {
			out.Token = layer.Token
		}
		if layer.Keyspace != "" {
			out.Keyspace = layer.Keyspace
		}
		if layer.APIVersion != "" {
			out.APIVersion = layer.APIVersion
		}
		if layer.ConnectTimeout != 0 {
			out.ConnectTimeout = layer.ConnectTimeout
		}
		if layer.RequestTimeout != 0 {
			out.RequestTimeout = layer.RequestTimeout
		}
		if layer.BulkTimeout != 0 {
			out.BulkTimeout = layer.BulkTimeout
		}
		if len(layer.Headers) > 0 {
			if out.Headers == nil {
				out.Headers = http.Header{}
			}
			for k, vals := range layer.Headers {
				out.Headers[http.CanonicalHeaderKey(k)] = append([]string(nil), vals...)
			}
		}
		if layer.FollowRedirects != nil {
			v := *layer.FollowRedirects
			out.FollowRedirects = &v
		}
		if layer.HTTPVersion != 0 {
			out.HTTPVersion = layer.HTTPVersion
		}
		if layer.ChunkSize != 0 {
			out.ChunkSize = layer.ChunkSize
		}
		if layer.Concurrency != 0 {
			out.Concurrency = layer.Concurrency
		}
		if layer.Ordered != nil {
			v := *layer.Ordered
			out.Ordered = &v
		}
		if layer.PageState != "" {
			out.PageState = layer.PageState
		}
		if layer.EncodeHooks != nil {
			out.EncodeHooks = layer.EncodeHooks
		}
		if layer.DecodeHooks != nil {
			out.DecodeHooks = layer.DecodeHooks
		}
	}
	return out
}

func (o *CommandOptions) encodeHooks() ejson.Hooks {
	if o.EncodeHooks != nil {
		return *o.EncodeHooks
	}
	return ejson.Hooks{}
}

func (o *CommandOptions) decodeHooks() ejson.Hooks {
	if o.DecodeHooks != nil {
		return *o.DecodeHooks
	}
	return ejson.Hooks{}
}

func (o *CommandOptions) followRedirects() bool {
	return o.FollowRedirects == nil || *o.FollowRedirects
}

func (o *CommandOptions) ordered() bool {
	return o.Ordered != nil && *o.Ordered
}

func boolPtr(v bool) *bool {
	return &v
}
