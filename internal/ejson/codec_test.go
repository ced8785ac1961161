package ejson

import (
	"encoding/json"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func TestRoundTrip(t *testing.T) {
	u := uuid.MustParse("123e4567-e89b-12d3-a456-426614174000")
	testCases := []struct {
		doc  string
		v    any
		want any
	}{
		{doc: "date", v: time.UnixMilli(1700000000000).UTC(), want: time.UnixMilli(1700000000000).UTC()},
		{doc: "epoch zero", v: time.UnixMilli(0).UTC(), want: time.UnixMilli(0).UTC()},
		{doc: "uuid", v: u, want: u},
		{doc: "objectId", v: ObjectID("507f1f77bcf86cd799439011"), want: ObjectID("507f1f77bcf86cd799439011")},
		{doc: "binary", v: Binary("hello"), want: Binary("hello")},
		{doc: "zero-length binary", v: Binary{}, want: Binary{}},
		{doc: "string", v: "plain", want: "plain"},
		{doc: "bool", v: true, want: true},
		{doc: "list", v: []any{"a", Binary("b")}, want: []any{"a", Binary("b")}},
		{doc: "empty list", v: []any{}, want: []any{}},
		{doc: "map", v: map[string]any{"k": u}, want: map[string]any{"k": u}},
		{doc: "empty map", v: map[string]any{}, want: map[string]any{}},
		{doc: "nested", v: map[string]any{"outer": map[string]any{"when": time.UnixMilli(42).UTC()}}, want: map[string]any{"outer": map[string]any{"when": time.UnixMilli(42).UTC()}}},
	}
	for _, tc := range testCases {
		t.Run(tc.doc, func(t *testing.T) {
			data, err := Marshal(tc.v, Hooks{})
			assert.NilError(t, err)
			got, err := Unmarshal(data, Hooks{})
			assert.NilError(t, err)
			assert.Check(t, is.DeepEqual(got, tc.want))
		})
	}
}

func TestRoundTripVector(t *testing.T) {
	data, err := Marshal(Vector{0.1, 0.25, -1}, Hooks{})
	assert.NilError(t, err)
	// Vectors travel as bare arrays, never as wrapper objects.
	assert.Check(t, is.Equal(string(data), "[0.1,0.25,-1]"))

	got, err := Unmarshal(data, Hooks{})
	assert.NilError(t, err)
	nums, ok := got.([]any)
	assert.Assert(t, ok)
	assert.Check(t, is.Len(nums, 3))
}

func TestEncodeWireShapes(t *testing.T) {
	testCases := []struct {
		doc  string
		v    any
		h    Hooks
		want string
	}{
		{doc: "date wrapper", v: time.UnixMilli(1700000000000).UTC(), want: `{"$date":1700000000000}`},
		{doc: "date as epoch", v: time.UnixMilli(1700000000000).UTC(), h: Hooks{DatesAsEpoch: true}, want: `1700000000000`},
		{doc: "uuid wrapper", v: uuid.MustParse("123e4567-e89b-12d3-a456-426614174000"), want: `{"$uuid":"123e4567-e89b-12d3-a456-426614174000"}`},
		{doc: "plain uuid", v: uuid.MustParse("123e4567-e89b-12d3-a456-426614174000"), h: Hooks{PlainUUIDs: true}, want: `"123e4567-e89b-12d3-a456-426614174000"`},
		{doc: "objectId wrapper", v: ObjectID("507f1f77bcf86cd799439011"), want: `{"$objectId":"507f1f77bcf86cd799439011"}`},
		{doc: "binary wrapper", v: Binary("hi"), want: `{"$binary":"aGk="}`},
		{doc: "duration", v: 90 * time.Second, want: `"1m30s"`},
		{doc: "inet", v: net.ParseIP("192.0.2.1"), want: `"192.0.2.1"`},
		{doc: "analyzer", v: AnalyzerWhitespace, want: `"whitespace"`},
	}
	for _, tc := range testCases {
		t.Run(tc.doc, func(t *testing.T) {
			data, err := Marshal(tc.v, tc.h)
			assert.NilError(t, err)
			assert.Check(t, is.Equal(string(data), tc.want))
		})
	}
}

func TestEncodeDocumentSpecialFields(t *testing.T) {
	out, err := EncodeDocument(map[string]any{
		FieldID:         ObjectID("507f1f77bcf86cd799439011"),
		FieldVector:     Vector{1, 2},
		FieldVectorize:  "some text",
		FieldSimilarity: 0.92,
		"name":          "ada",
	}, Hooks{})
	assert.NilError(t, err)

	assert.Check(t, is.DeepEqual(out[FieldID], map[string]any{"$objectId": "507f1f77bcf86cd799439011"}))
	assert.Check(t, is.DeepEqual(out[FieldVector], []float32{1, 2}))
	assert.Check(t, is.Equal(out[FieldVectorize], "some text"))
	assert.Check(t, is.Equal(out["name"], "ada"))
	_, present := out[FieldSimilarity]
	assert.Check(t, !present, "$similarity must not be sent")
}

func TestDecodeIDPriority(t *testing.T) {
	testCases := []struct {
		doc  string
		in   any
		want any
	}{
		{doc: "uuid string", in: "123e4567-e89b-12d3-a456-426614174000", want: uuid.MustParse("123e4567-e89b-12d3-a456-426614174000")},
		{doc: "objectId string", in: "507f1f77bcf86cd799439011", want: ObjectID("507f1f77bcf86cd799439011")},
		{doc: "date string", in: "2023-11-14T22:13:20Z", want: time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC)},
		{doc: "plain string", in: "user-42", want: "user-42"},
		{doc: "wrapped date", in: map[string]any{"$date": json.Number("0")}, want: time.UnixMilli(0).UTC()},
		{doc: "number", in: json.Number("7"), want: json.Number("7")},
	}
	for _, tc := range testCases {
		t.Run(tc.doc, func(t *testing.T) {
			got, err := DecodeID(tc.in, Hooks{})
			assert.NilError(t, err)
			assert.Check(t, is.DeepEqual(got, tc.want))
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	testCases := []struct {
		doc  string
		data string
	}{
		{doc: "unknown wrapper", data: `{"$frob":1}`},
		{doc: "malformed uuid", data: `{"$uuid":"not-a-uuid"}`},
		{doc: "malformed objectId", data: `{"$objectId":"xyz"}`},
		{doc: "malformed binary", data: `{"$binary":"!!!"}`},
		{doc: "date with string payload", data: `{"$date":"tomorrow"}`},
	}
	for _, tc := range testCases {
		t.Run(tc.doc, func(t *testing.T) {
			_, err := Unmarshal([]byte(tc.data), Hooks{})
			var fe *FormatError
			assert.Check(t, errors.As(err, &fe), "want a format error, got %v", err)
		})
	}
}

func TestDecoderHook(t *testing.T) {
	h := Hooks{
		Decoders: []DecodeFunc{
			func(key string, raw json.RawMessage) (any, bool, error) {
				if key != "$point" {
					return nil, false, nil
				}
				var coords []float64
				if err := json.Unmarshal(raw, &coords); err != nil {
					return nil, false, err
				}
				return coords, true, nil
			},
		},
	}
	got, err := Unmarshal([]byte(`{"$point":[1.5,2.5]}`), h)
	assert.NilError(t, err)
	assert.Check(t, is.DeepEqual(got, []float64{1.5, 2.5}))
}

func TestEncoderHookRunsBeforeBuiltins(t *testing.T) {
	h := Hooks{
		Encoders: []EncodeFunc{
			func(v any) (any, bool, error) {
				if ts, ok := v.(time.Time); ok {
					return ts.Format(time.RFC3339), true, nil
				}
				return nil, false, nil
			},
		},
	}
	data, err := Marshal(time.UnixMilli(0).UTC(), h)
	assert.NilError(t, err)
	assert.Check(t, is.Equal(string(data), `"1970-01-01T00:00:00Z"`))
}

func TestSchemaDecodeRow(t *testing.T) {
	schema := Schema{
		Columns: []Column{
			{Name: "id", Type: TypeUUID},
			{Name: "name", Type: TypeText},
			{Name: "age", Type: TypeInt},
			{Name: "score", Type: TypeDouble},
			{Name: "active", Type: TypeBoolean},
			{Name: "joined", Type: TypeTimestamp},
			{Name: "avatar", Type: TypeBlob},
			{Name: "embedding", Type: TypeVector},
			{Name: "ttl", Type: TypeDuration},
			{Name: "addr", Type: TypeInet},
			{Name: "tags", Type: TypeSet, ValueType: TypeText},
			{Name: "scores", Type: TypeMap, KeyType: TypeText, ValueType: TypeInt},
		},
		PrimaryKeys: []string{"id"},
	}
	row, err := schema.DecodeRow([]byte(`{
		"id": "123e4567-e89b-12d3-a456-426614174000",
		"name": "507f1f77bcf86cd799439011",
		"age": 30,
		"score": 9.5,
		"active": true,
		"joined": 1700000000000,
		"avatar": {"$binary":"aGk="},
		"embedding": [0.5,0.5],
		"ttl": "1h",
		"addr": "192.0.2.1",
		"tags": ["a","b"],
		"scores": {"x": 1}
	}`), Hooks{})
	assert.NilError(t, err)

	assert.Check(t, is.DeepEqual(row["id"], uuid.MustParse("123e4567-e89b-12d3-a456-426614174000")))
	// Schema-directed: a text column that happens to look like an objectId
	// stays a string. The heuristic never runs for declared columns.
	assert.Check(t, is.Equal(row["name"], "507f1f77bcf86cd799439011"))
	assert.Check(t, is.Equal(row["age"], int64(30)))
	assert.Check(t, is.Equal(row["score"], 9.5))
	assert.Check(t, is.Equal(row["active"], true))
	assert.Check(t, is.DeepEqual(row["joined"], time.UnixMilli(1700000000000).UTC()))
	assert.Check(t, is.DeepEqual(row["avatar"], Binary("hi")))
	assert.Check(t, is.DeepEqual(row["embedding"], Vector{0.5, 0.5}))
	assert.Check(t, is.Equal(row["ttl"], time.Hour))
	assert.Check(t, is.DeepEqual(row["addr"], net.ParseIP("192.0.2.1")))
	assert.Check(t, is.DeepEqual(row["tags"], Set{"a", "b"}))
	assert.Check(t, is.DeepEqual(row["scores"], map[string]any{"x": int64(1)}))
}

func TestSchemaDecodeRowColumnError(t *testing.T) {
	schema := Schema{Columns: []Column{{Name: "age", Type: TypeInt}}}
	_, err := schema.DecodeRow([]byte(`{"age":"ten"}`), Hooks{})
	assert.Check(t, is.ErrorContains(err, `column "age"`))
}
