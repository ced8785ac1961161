package dataapi

// Database is a handle on one keyspace. It contributes one configuration
// layer between the client and the collection/table handles.
type Database struct {
	cli  *Client
	opts *CommandOptions
}

// WithOptions returns a copy of the handle with an extra database-level
// layer. The receiver is unchanged.
func (db *Database) WithOptions(opts CommandOptions) *Database {
	merged := mergeOptions(db.opts, &opts)
	if merged.Keyspace == "" {
		merged.Keyspace = db.opts.Keyspace
	}
	return &Database{cli: db.cli, opts: &merged}
}

// Collection returns a handle on a document collection in this keyspace.
func (db *Database) Collection(name string) *Collection {
	return &Collection{db: db, name: name, opts: &CommandOptions{}}
}

// Table returns a handle on a schema-declared table in this keyspace. The
// schema drives row decoding; declare every column whose type matters.
func (db *Database) Table(name string, schema Schema) *Table {
	return &Table{db: db, name: name, schema: schema, opts: &CommandOptions{}}
}

func (db *Database) layers(more ...*CommandOptions) []*CommandOptions {
	out := []*CommandOptions{db.opts}
	return append(out, more...)
}
