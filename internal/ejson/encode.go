package ejson

import (
	"encoding/base64"
	"encoding/json"
	"net"
	"time"

	"github.com/google/uuid"
)

// Document field names with dedicated wire handling. Special fields are
// written with their dedicated shape; everything else falls through to
// generic structural encoding.
const (
	FieldID         = "_id"
	FieldVector     = "$vector"
	FieldVectorize  = "$vectorize"
	FieldSimilarity = "$similarity"
)

// Marshal encodes v into its wire JSON form.
func Marshal(v any, h Hooks) ([]byte, error) {
	wire, err := EncodeValue(v, h)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wire)
}

// EncodeValue converts a host value into a tree of JSON-native values
// (maps, slices, strings, numbers) with extended types replaced by their
// wrapper shapes. The result is ready for encoding/json.
func EncodeValue(v any, h Hooks) (any, error) {
	for _, enc := range h.Encoders {
		wire, ok, err := enc(v)
		if err != nil {
			return nil, err
		}
		if ok {
			return wire, nil
		}
	}

	switch t := v.(type) {
	case nil:
		return nil, nil
	case time.Time:
		if h.DatesAsEpoch {
			return t.UnixMilli(), nil
		}
		return map[string]any{"$date": t.UnixMilli()}, nil
	case *time.Time:
		if t == nil {
			return nil, nil
		}
		return EncodeValue(*t, h)
	case time.Duration:
		return t.String(), nil
	case uuid.UUID:
		if h.PlainUUIDs {
			return t.String(), nil
		}
		return map[string]any{"$uuid": t.String()}, nil
	case ObjectID:
		if err := t.Validate(); err != nil {
			return nil, err
		}
		return map[string]any{"$objectId": string(t)}, nil
	case Binary:
		return map[string]any{"$binary": base64.StdEncoding.EncodeToString(t)}, nil
	case []byte:
		return map[string]any{"$binary": base64.StdEncoding.EncodeToString(t)}, nil
	case Vector:
		// Bare array, no wrapper.
		return []float32(t), nil
	case []float32:
		return t, nil
	case net.IP:
		return t.String(), nil
	case Analyzer:
		return string(t), nil
	case Set:
		return encodeSlice([]any(t), h)
	case []any:
		return encodeSlice(t, h)
	case map[string]any:
		return encodeMap(t, h)
	default:
		// Native scalars and user aggregates without a registered hook are
		// handed to encoding/json as-is.
		return v, nil
	}
}

// EncodeDocument encodes one document or row for transmission. The special
// fields (_id, $vector, $vectorize) are written with their dedicated wire
// shapes; $similarity is server-produced and stripped; ordinary fields use
// generic encoding.
func EncodeDocument(doc map[string]any, h Hooks) (map[string]any, error) {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		switch k {
		case FieldID:
			id, err := EncodeID(v, h)
			if err != nil {
				return nil, err
			}
			out[k] = id
		case FieldVector:
			vec, err := encodeVectorField(v)
			if err != nil {
				return nil, err
			}
			out[k] = vec
		case FieldVectorize:
			s, ok := v.(string)
			if !ok {
				return nil, formatErrorf("field %q must be a string, got %T", FieldVectorize, v)
			}
			out[k] = s
		case FieldSimilarity:
			// Never sent; the server computes it.
		default:
			enc, err := EncodeValue(v, h)
			if err != nil {
				return nil, err
			}
			out[k] = enc
		}
	}
	return out, nil
}

// EncodeID encodes a document identifier. IDs accept the extended identifier
// types plus native scalars; wrapper toggles do not apply because the server
// requires the wrapped shape to preserve the identifier's type.
func EncodeID(v any, h Hooks) (any, error) {
	switch t := v.(type) {
	case uuid.UUID:
		return map[string]any{"$uuid": t.String()}, nil
	case ObjectID:
		if err := t.Validate(); err != nil {
			return nil, err
		}
		return map[string]any{"$objectId": string(t)}, nil
	case time.Time:
		return map[string]any{"$date": t.UnixMilli()}, nil
	case string, bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return t, nil
	default:
		return EncodeValue(v, h)
	}
}

func encodeSlice(in []any, h Hooks) (any, error) {
	out := make([]any, len(in))
	for i, v := range in {
		enc, err := EncodeValue(v, h)
		if err != nil {
			return nil, err
		}
		out[i] = enc
	}
	return out, nil
}

func encodeMap(in map[string]any, h Hooks) (any, error) {
	out := make(map[string]any, len(in))
	for k, v := range in {
		enc, err := EncodeValue(v, h)
		if err != nil {
			return nil, err
		}
		out[k] = enc
	}
	return out, nil
}

func encodeVectorField(v any) (any, error) {
	switch t := v.(type) {
	case Vector:
		return []float32(t), nil
	case []float32:
		return t, nil
	case []float64:
		return t, nil
	case nil:
		return nil, nil
	default:
		return nil, formatErrorf("field %q must be a vector of numbers, got %T", FieldVector, v)
	}
}
