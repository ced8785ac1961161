package ejson

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Unmarshal decodes wire JSON into a host value tree: wrapper objects become
// their typed values, objects become map[string]any, arrays become []any,
// numbers become json.Number.
func Unmarshal(data []byte, h Hooks) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, formatErrorf("malformed wire JSON: %v", err)
	}
	return DecodeValue(tree, h)
}

// DecodeValue walks a generic JSON tree (as produced by encoding/json with
// UseNumber) and replaces wrapper objects with their typed values. The
// wrapper key alone selects the decoder; an unrecognized "$" wrapper that no
// hook claims is a format error.
func DecodeValue(v any, h Hooks) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		if key, inner, ok := wrapper(t); ok {
			return decodeWrapper(key, inner, h)
		}
		out := make(map[string]any, len(t))
		for k, elem := range t {
			dec, err := DecodeValue(elem, h)
			if err != nil {
				return nil, err
			}
			out[k] = dec
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, elem := range t {
			dec, err := DecodeValue(elem, h)
			if err != nil {
				return nil, err
			}
			out[i] = dec
		}
		return out, nil
	default:
		return v, nil
	}
}

// DecodeID decodes a document identifier of statically unknown type. Wrapped
// forms are exact; a bare string is resolved best-effort by fixed priority:
// UUID format, then objectId format, then RFC 3339 date, else plain string.
// Schema-directed decoding should be preferred wherever the target type is
// known (see Schema.DecodeRow).
func DecodeID(v any, h Hooks) (any, error) {
	switch t := v.(type) {
	case string:
		if u, err := uuid.Parse(t); err == nil && strings.Count(t, "-") == 4 {
			return u, nil
		}
		if objectIDRegexp.MatchString(t) {
			return ObjectID(t), nil
		}
		if ts, err := time.Parse(time.RFC3339, t); err == nil {
			return ts, nil
		}
		return t, nil
	default:
		return DecodeValue(v, h)
	}
}

// wrapper reports whether m is a single-key extended-JSON wrapper object and
// returns the key and inner value.
func wrapper(m map[string]any) (string, any, bool) {
	if len(m) != 1 {
		return "", nil, false
	}
	for k, v := range m {
		if strings.HasPrefix(k, "$") && k != FieldVector && k != FieldVectorize && k != FieldSimilarity {
			return k, v, true
		}
	}
	return "", nil, false
}

func decodeWrapper(key string, inner any, h Hooks) (any, error) {
	switch key {
	case "$date":
		n, ok := inner.(json.Number)
		if !ok {
			return nil, formatErrorf("$date expects epoch milliseconds, got %T", inner)
		}
		ms, err := n.Int64()
		if err != nil {
			return nil, formatErrorf("$date expects an integer, got %q", n.String())
		}
		return time.UnixMilli(ms).UTC(), nil
	case "$uuid":
		s, ok := inner.(string)
		if !ok {
			return nil, formatErrorf("$uuid expects a string, got %T", inner)
		}
		u, err := uuid.Parse(s)
		if err != nil {
			return nil, formatErrorf("malformed $uuid %q: %v", s, err)
		}
		return u, nil
	case "$objectId":
		s, ok := inner.(string)
		if !ok {
			return nil, formatErrorf("$objectId expects a string, got %T", inner)
		}
		id := ObjectID(s)
		if err := id.Validate(); err != nil {
			return nil, err
		}
		return id, nil
	case "$binary":
		s, ok := inner.(string)
		if !ok {
			return nil, formatErrorf("$binary expects a base64 string, got %T", inner)
		}
		raw, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, formatErrorf("malformed $binary payload: %v", err)
		}
		return Binary(raw), nil
	default:
		raw, err := json.Marshal(inner)
		if err != nil {
			return nil, err
		}
		for _, dec := range h.Decoders {
			v, ok, err := dec(key, raw)
			if err != nil {
				return nil, err
			}
			if ok {
				return v, nil
			}
		}
		return nil, formatErrorf("unrecognized wrapper key %q", key)
	}
}
