// Package ejson implements the extended-JSON value codec used by the Data
// API wire protocol. Values that plain JSON cannot represent travel as
// single-key wrapper objects ({"$date": 1700000000000}, {"$uuid": "..."},
// {"$objectId": "..."}, {"$binary": "<base64>"}); embedding vectors travel
// as bare arrays of numbers; maps, lists and sets use native JSON shapes.
//
// The codec is pure and stateless: the same Hooks value can be shared by any
// number of concurrent encodes and decodes.
//
// Durations encode as plain strings ("1m30s") and carry no wrapper, so the
// generic decode path returns them as strings; only schema-directed decoding
// of a duration column recovers a time.Duration.
package ejson

import (
	"encoding/json"
	"regexp"
)

var objectIDRegexp = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// EncodeFunc is a user-supplied encoder extension. It is consulted before the
// built-in converters; returning ok=false passes the value through.
type EncodeFunc func(v any) (wire any, ok bool, err error)

// DecodeFunc is a user-supplied decoder extension for wrapper keys the
// built-in converters do not recognize. key is the "$..." wrapper name.
type DecodeFunc func(key string, raw json.RawMessage) (v any, ok bool, err error)

// Hooks carries per-call codec extensions and toggles. The zero value is the
// protocol default. The built-in date/UUID/objectId/binary converters are
// always applied after user hooks: they are required for protocol
// correctness and cannot be displaced by a layer.
type Hooks struct {
	// DatesAsEpoch encodes time.Time as a bare epoch-milliseconds number
	// instead of the {"$date": n} wrapper.
	DatesAsEpoch bool

	// PlainUUIDs encodes uuid.UUID as a bare string instead of the
	// {"$uuid": "..."} wrapper.
	PlainUUIDs bool

	Encoders []EncodeFunc
	Decoders []DecodeFunc
}
