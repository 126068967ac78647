package ports

import "context"

// UsersCollection is the single collection this service stores accounts in.
const UsersCollection = "users"

// Document is a stored record: an id plus an arbitrary field mapping.
type Document struct {
	ID     string
	Fields map[string]any
}

// Filter is a single equality predicate (Field == Value). Query filters
// combine with logical AND.
type Filter struct {
	Field string
	Value any
}

// DocumentStore abstracts a collection/document database. Both the managed
// backend and the local file simulator implement it with identical semantics:
//
//   - Get reports absence via the bool, not an error.
//   - Set is a full overwrite of the document at id, creating the collection
//     and document as needed.
//   - Query evaluates equality filters over one collection; limit caps the
//     result count. Evaluation order is deterministic for a fixed store state.
//
// Backend connectivity failures wrap domain.ErrStoreUnavailable and are never
// reported as absence.
type DocumentStore interface {
	Get(ctx context.Context, collection, id string) (Document, bool, error)
	Set(ctx context.Context, collection, id string, fields map[string]any) error
	Query(ctx context.Context, collection string, filters []Filter, limit int) ([]Document, error)
}
