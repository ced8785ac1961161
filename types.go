package dataapi

import "github.com/dataapi-go/dataapi/internal/ejson"

// Document is one collection document. The builder DSLs are out of scope
// here: filters, sorts, updates and projections are plain key-value
// mappings in the server's query language.
type Document = map[string]any

// Filter selects documents, e.g. Filter{"name": "ada"} or
// Filter{"age": map[string]any{"$gt": 21}}.
type Filter = map[string]any

// Update describes a mutation, e.g. Update{"$set": map[string]any{...}}.
type Update = map[string]any

// Sort orders results, e.g. Sort{"age": -1}.
type Sort = map[string]any

// Projection limits returned fields, e.g. Projection{"name": 1}.
type Projection = map[string]any

// Row is one decoded table row.
type Row = map[string]any

// Extended value types, re-exported from the codec package.
type (
	ObjectID = ejson.ObjectID
	Binary   = ejson.Binary
	Vector   = ejson.Vector
	Set      = ejson.Set
	Analyzer = ejson.Analyzer

	Schema     = ejson.Schema
	Column     = ejson.Column
	ColumnType = ejson.ColumnType
)

const (
	TypeText      = ejson.TypeText
	TypeBoolean   = ejson.TypeBoolean
	TypeInt       = ejson.TypeInt
	TypeBigInt    = ejson.TypeBigInt
	TypeDouble    = ejson.TypeDouble
	TypeTimestamp = ejson.TypeTimestamp
	TypeUUID      = ejson.TypeUUID
	TypeObjectID  = ejson.TypeObjectID
	TypeBlob      = ejson.TypeBlob
	TypeVector    = ejson.TypeVector
	TypeDuration  = ejson.TypeDuration
	TypeInet      = ejson.TypeInet
	TypeList      = ejson.TypeList
	TypeSet       = ejson.TypeSet
	TypeMap       = ejson.TypeMap
)
