package ejson

import (
	"encoding/json"
	"net"
	"time"

	"github.com/google/uuid"
)

// ColumnType enumerates the declarable table column types. Each type selects
// exactly one decode function, so schema-directed row decoding never falls
// back to the bare-string heuristic.
type ColumnType string

const (
	TypeText      ColumnType = "text"
	TypeBoolean   ColumnType = "boolean"
	TypeInt       ColumnType = "int"
	TypeBigInt    ColumnType = "bigint"
	TypeDouble    ColumnType = "double"
	TypeTimestamp ColumnType = "timestamp"
	TypeUUID      ColumnType = "uuid"
	TypeObjectID  ColumnType = "objectId"
	TypeBlob      ColumnType = "blob"
	TypeVector    ColumnType = "vector"
	TypeDuration  ColumnType = "duration"
	TypeInet      ColumnType = "inet"
	TypeList      ColumnType = "list"
	TypeSet       ColumnType = "set"
	TypeMap       ColumnType = "map"
)

// Column declares one table column. ValueType carries the element type for
// list/set/map columns; KeyType carries the key type for map columns.
type Column struct {
	Name      string
	Type      ColumnType
	ValueType ColumnType
	KeyType   ColumnType
}

// Schema describes a table's declared columns and primary key. It is built
// once at table-handle creation and consulted on every row decode; no
// reflection runs per call.
type Schema struct {
	Columns     []Column
	PrimaryKeys []string
}

// Column returns the declaration for name, if any.
func (s Schema) Column(name string) (Column, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// DecodeRow decodes one wire row against the declared schema. Declared
// columns decode by their column type; undeclared fields fall back to
// generic decoding.
func (s Schema) DecodeRow(data []byte, h Hooks) (map[string]any, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, formatErrorf("malformed row: %v", err)
	}
	row := make(map[string]any, len(raw))
	for name, rv := range raw {
		col, ok := s.Column(name)
		if !ok {
			v, err := Unmarshal(rv, h)
			if err != nil {
				return nil, err
			}
			row[name] = v
			continue
		}
		v, err := decodeColumn(col, rv, h)
		if err != nil {
			return nil, formatErrorf("column %q: %v", name, err)
		}
		row[name] = v
	}
	return row, nil
}

func decodeColumn(col Column, raw json.RawMessage, h Hooks) (any, error) {
	if string(raw) == "null" {
		return nil, nil
	}
	switch col.Type {
	case TypeText:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return s, nil
	case TypeBoolean:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, err
		}
		return b, nil
	case TypeInt, TypeBigInt:
		var n int64
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, err
		}
		return n, nil
	case TypeDouble:
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return nil, err
		}
		return f, nil
	case TypeTimestamp:
		return decodeTimestamp(raw, h)
	case TypeUUID:
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			u, err := uuid.Parse(s)
			if err != nil {
				return nil, err
			}
			return u, nil
		}
		v, err := Unmarshal(raw, h)
		if err != nil {
			return nil, err
		}
		u, ok := v.(uuid.UUID)
		if !ok {
			return nil, formatErrorf("expected uuid, got %T", v)
		}
		return u, nil
	case TypeObjectID:
		v, err := Unmarshal(raw, h)
		if err != nil {
			return nil, err
		}
		switch t := v.(type) {
		case ObjectID:
			return t, nil
		case string:
			id := ObjectID(t)
			if err := id.Validate(); err != nil {
				return nil, err
			}
			return id, nil
		default:
			return nil, formatErrorf("expected objectId, got %T", v)
		}
	case TypeBlob:
		var b Binary
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, err
		}
		return b, nil
	case TypeVector:
		var vec Vector
		if err := json.Unmarshal(raw, &vec); err != nil {
			return nil, err
		}
		return vec, nil
	case TypeDuration:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, err
		}
		return d, nil
	case TypeInet:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		ip := net.ParseIP(s)
		if ip == nil {
			return nil, formatErrorf("malformed inet address %q", s)
		}
		return ip, nil
	case TypeList, TypeSet:
		var elems []json.RawMessage
		if err := json.Unmarshal(raw, &elems); err != nil {
			return nil, err
		}
		out := make([]any, len(elems))
		for i, e := range elems {
			v, err := decodeColumn(Column{Type: col.ValueType}, e, h)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		if col.Type == TypeSet {
			return Set(out), nil
		}
		return out, nil
	case TypeMap:
		var elems map[string]json.RawMessage
		if err := json.Unmarshal(raw, &elems); err != nil {
			return nil, err
		}
		out := make(map[string]any, len(elems))
		for k, e := range elems {
			v, err := decodeColumn(Column{Type: col.ValueType}, e, h)
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil
	default:
		return nil, formatErrorf("undeclared column type %q", col.Type)
	}
}

func decodeTimestamp(raw json.RawMessage, h Hooks) (any, error) {
	var ms int64
	if err := json.Unmarshal(raw, &ms); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	v, err := Unmarshal(raw, h)
	if err != nil {
		return nil, err
	}
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		ts, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return nil, formatErrorf("malformed timestamp %q", t)
		}
		return ts, nil
	default:
		return nil, formatErrorf("expected timestamp, got %T", v)
	}
}
