package ejson

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// ObjectID is a 12-byte identifier rendered as 24 hexadecimal characters,
// carried on the wire as {"$objectId": "..."}.
type ObjectID string

// Validate reports whether the ObjectID has the expected 24-hex-char form.
func (o ObjectID) Validate() error {
	if !objectIDRegexp.MatchString(string(o)) {
		return &FormatError{msg: fmt.Sprintf("invalid objectId %q: expected 24 hexadecimal characters", string(o))}
	}
	return nil
}

func (o ObjectID) String() string {
	return string(o)
}

// Binary is an opaque byte blob, carried on the wire as
// {"$binary": "<base64>"}.
type Binary []byte

// MarshalJSON implements json.Marshaler so that Binary values nested inside
// structures handed directly to encoding/json still produce the wire shape.
func (b Binary) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"$binary": base64.StdEncoding.EncodeToString(b)})
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *Binary) UnmarshalJSON(data []byte) error {
	var wrapper map[string]string
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return err
	}
	enc, ok := wrapper["$binary"]
	if !ok {
		return &FormatError{msg: "binary value missing $binary wrapper"}
	}
	raw, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return &FormatError{msg: "malformed $binary payload: " + err.Error()}
	}
	*b = raw
	return nil
}

// Vector is an embedding vector, carried on the wire as a bare JSON array of
// numbers (no wrapper object).
type Vector []float32

// Set is a collection with set semantics on the server side. The wire shape
// is identical to a list; the distinction only matters for schema-directed
// decoding of table rows.
type Set []any

// Analyzer names a server-side text analysis strategy for lexical indexes.
// It travels as a plain JSON string.
type Analyzer string

const (
	AnalyzerStandard   Analyzer = "standard"
	AnalyzerLetter     Analyzer = "letter"
	AnalyzerLowercase  Analyzer = "lowercase"
	AnalyzerWhitespace Analyzer = "whitespace"
	AnalyzerKeyword    Analyzer = "keyword"
)

// FormatError reports a malformed or unrecognized wire shape encountered
// while encoding or decoding. It is terminal: the surrounding operation is
// aborted, never retried.
type FormatError struct {
	msg string
}

func (e *FormatError) Error() string {
	return e.msg
}

// FormatErrorf builds a FormatError from a format string.
func FormatErrorf(format string, args ...any) error {
	return &FormatError{msg: fmt.Sprintf(format, args...)}
}

func formatErrorf(format string, args ...any) error {
	return FormatErrorf(format, args...)
}
