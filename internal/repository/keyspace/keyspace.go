// Package keyspace lays out the Redis/Valkey keys shared by the hash-backed repositories.
//
// Layout for prefix "vecrud:":
//
//	vecrud:collection:{name}   collection metadata hash
//	vecrud:idx:{name}          FT index over the record hashes
//	vecrud:rec:{name}:{id}     record hash
//	vecrud:emb:{sha256}        cached embedding
package keyspace

// Reserved hash fields of a record.
const (
	FieldID       = "__id"
	FieldContent  = "__content"
	FieldMetadata = "__metadata"
	FieldFilter   = "__filter"
	FieldVector   = "__vector"
)

// FilterSeparator joins metadata tokens inside the FieldFilter TAG value.
const FilterSeparator = ","

// Keyspace builds keys under a common prefix.
type Keyspace struct {
	prefix string
}

// New creates a keyspace rooted at prefix (e.g. "vecrud:").
func New(prefix string) Keyspace {
	return Keyspace{prefix: prefix}
}

// Prefix returns the root prefix.
func (k Keyspace) Prefix() string { return k.prefix }

// CollectionMeta returns the metadata hash key of a collection.
func (k Keyspace) CollectionMeta(name string) string {
	return k.prefix + "collection:" + name
}

// Index returns the FT index name of a collection.
func (k Keyspace) Index(name string) string {
	return k.prefix + "idx:" + name
}

// RecordPrefix returns the key prefix covered by a collection index.
func (k Keyspace) RecordPrefix(name string) string {
	return k.prefix + "rec:" + name + ":"
}

// Record returns the hash key of a record.
func (k Keyspace) Record(collection, id string) string {
	return k.RecordPrefix(collection) + id
}

// Embedding returns the cache key for an embedding digest.
func (k Keyspace) Embedding(digest string) string {
	return k.prefix + "emb:" + digest
}
