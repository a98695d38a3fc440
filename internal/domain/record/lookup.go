package record

import (
	"fmt"
	"strconv"
)

// NoEntryMessage is the text shown when a read finds nothing.
const NoEntryMessage = "No entry found with this ID"

// Lookup is the outcome of reading a record by id: found or not found.
// Errors are reported separately.
type Lookup struct {
	id     string
	record Record
	found  bool
}

// Found wraps a record that was read successfully.
func Found(r Record) Lookup { return Lookup{id: r.ID(), record: r, found: true} }

// NotFound reports that no record exists for id.
func NotFound(id string) Lookup { return Lookup{id: id} }

// ID returns the requested identifier.
func (l Lookup) ID() string { return l.id }

// Found reports whether the record exists.
func (l Lookup) Found() bool { return l.found }

// Record returns the record; the zero value when not found.
func (l Lookup) Record() Record { return l.record }

// String renders the record, or the not-found message.
func (l Lookup) String() string {
	if !l.found {
		return NoEntryMessage
	}
	r := l.record
	return fmt.Sprintf("id=%s document=%s metadata=%s embedding=[%d dims]",
		r.ID(), strconv.Quote(r.Text()), r.Metadata(), len(r.Embedding()))
}
