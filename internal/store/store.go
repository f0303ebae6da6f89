package store

import (
	"context"
	"encoding/json"
)

// Fields is the schemaless document payload used by the adapter
type Fields = map[string]interface{}

// serverTimestampSentinel marks a field to be filled with the store's own
// clock at commit time.
type serverTimestampSentinel struct{}

// ServerTimestamp is the sentinel value for server-assigned timestamps
var ServerTimestamp = serverTimestampSentinel{}

// Update is a single field-path update
type Update struct {
	Path  string
	Value interface{}
}

// Filter is a single query predicate. Op is one of ==, <, <=, >, >=,
// array-contains.
type Filter struct {
	Path  string
	Op    string
	Value interface{}
}

// Query describes a collection query
type Query struct {
	Collection string
	Filters    []Filter
	OrderBy    string
	Desc       bool
	Limit      int
}

// Where appends a predicate and returns the query for chaining
func (q Query) Where(path, op string, value interface{}) Query {
	q.Filters = append(q.Filters, Filter{Path: path, Op: op, Value: value})
	return q
}

// Snapshot is a point-in-time view of a single document
type Snapshot struct {
	ID     string
	Exists bool
	Data   Fields

	decode func(v interface{}) error
}

// DataTo unmarshals the snapshot into the given struct pointer
func (s Snapshot) DataTo(v interface{}) error {
	if s.decode != nil {
		return s.decode(v)
	}
	// Fallback for snapshots built by hand in tests
	raw, err := json.Marshal(s.Data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

// OpKind identifies a batched write operation
type OpKind int

const (
	OpSet OpKind = iota
	OpUpdate
	OpDelete
)

// Op is one operation inside an atomic batch
type Op struct {
	Kind    OpKind
	Path    string
	Data    interface{}
	Merge   bool
	Updates []Update
}

// Subscription is an owned listener handle. Unsubscribe must be called when
// the owning component goes away or its input identity changes; it is safe to
// call more than once.
type Subscription interface {
	Unsubscribe()
}

// DocHandler receives document snapshots from a doc subscription
type DocHandler func(Snapshot)

// QueryHandler receives the full result set from a query subscription
type QueryHandler func([]Snapshot)

// ErrHandler receives terminal subscription errors. After it fires the
// subscription is dead and the owner may retry by re-subscribing.
type ErrHandler func(error)

// Store is the boundary to the hosted document database. Paths are
// slash-separated, alternating collection and document segments
// ("users/u1", "chats/u1/messages/m1").
type Store interface {
	Get(ctx context.Context, path string) (Snapshot, error)
	Set(ctx context.Context, path string, data interface{}, merge bool) error
	Update(ctx context.Context, path string, updates []Update) error
	Add(ctx context.Context, collection string, data interface{}) (string, error)
	Delete(ctx context.Context, path string) error
	Query(ctx context.Context, q Query) ([]Snapshot, error)
	SubscribeDoc(ctx context.Context, path string, fn DocHandler, errFn ErrHandler) (Subscription, error)
	SubscribeQuery(ctx context.Context, q Query, fn QueryHandler, errFn ErrHandler) (Subscription, error)
	BatchWrite(ctx context.Context, ops []Op) error
}
