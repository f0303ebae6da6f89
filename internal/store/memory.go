package store

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store used by tests. Change delivery is
// synchronous: every mutation notifies matching subscriptions before the
// mutating call returns, which keeps test scenarios deterministic.
type MemoryStore struct {
	mu        sync.Mutex
	docs      map[string]Fields
	docSubs   []*memDocSub
	querySubs []*memQuerySub
	clock     func() time.Time
	nextID    int

	batchErr error
	getErrs  map[string]error
}

// NewMemoryStore creates an empty memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:    make(map[string]Fields),
		clock:   time.Now,
		getErrs: make(map[string]error),
	}
}

// SetClock overrides the clock used for server timestamps
func (m *MemoryStore) SetClock(clock func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clock = clock
}

// FailNextBatch makes the next BatchWrite fail with err, applying nothing
func (m *MemoryStore) FailNextBatch(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchErr = err
}

// FailGet makes reads of the given path fail with err until cleared with a
// nil err. Used to simulate per-document permission failures.
func (m *MemoryStore) FailGet(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.getErrs, path)
		return
	}
	m.getErrs[path] = err
}

type memDocSub struct {
	store  *MemoryStore
	path   string
	fn     DocHandler
	closed bool
}

func (s *memDocSub) Unsubscribe() {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	s.closed = true
}

type memQuerySub struct {
	store  *MemoryStore
	q      Query
	fn     QueryHandler
	closed bool
}

func (s *memQuerySub) Unsubscribe() {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	s.closed = true
}

// Get retrieves a document. Absent documents yield Exists=false, not an error.
func (m *MemoryStore) Get(ctx context.Context, path string) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.getErrs[path]; err != nil {
		return Snapshot{}, err
	}
	fields, ok := m.docs[path]
	if !ok {
		return Snapshot{ID: docID(path)}, nil
	}
	return m.snapshotLocked(path, fields), nil
}

// Set writes a document, optionally merging into existing fields
func (m *MemoryStore) Set(ctx context.Context, path string, data interface{}, merge bool) error {
	fields, err := encodeDoc(data)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.applySentinelsLocked(fields)
	if merge {
		existing, ok := m.docs[path]
		if ok {
			merged := copyFields(existing)
			for k, v := range fields {
				merged[k] = v
			}
			fields = merged
		}
	}
	m.docs[path] = fields
	notify := m.collectLocked(path)
	m.mu.Unlock()
	notify()
	return nil
}

// Update applies field-path updates to an existing document
func (m *MemoryStore) Update(ctx context.Context, path string, updates []Update) error {
	m.mu.Lock()
	fields, ok := m.docs[path]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("update %s: %w", path, ErrNotFound)
	}
	fields = copyFields(fields)
	for _, u := range updates {
		value := u.Value
		if _, isSentinel := value.(serverTimestampSentinel); isSentinel {
			value = m.clock()
		}
		setFieldPath(fields, u.Path, value)
	}
	m.docs[path] = fields
	notify := m.collectLocked(path)
	m.mu.Unlock()
	notify()
	return nil
}

// Add creates a document with a generated id and returns the id
func (m *MemoryStore) Add(ctx context.Context, collection string, data interface{}) (string, error) {
	fields, err := encodeDoc(data)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	m.nextID++
	id := fmt.Sprintf("mem%04d", m.nextID)
	path := collection + "/" + id
	m.applySentinelsLocked(fields)
	m.docs[path] = fields
	notify := m.collectLocked(path)
	m.mu.Unlock()
	notify()
	return id, nil
}

// Delete removes a document
func (m *MemoryStore) Delete(ctx context.Context, path string) error {
	m.mu.Lock()
	delete(m.docs, path)
	notify := m.collectLocked(path)
	m.mu.Unlock()
	notify()
	return nil
}

// Query runs a one-shot collection query
func (m *MemoryStore) Query(ctx context.Context, q Query) ([]Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runQueryLocked(q), nil
}

// SubscribeDoc registers a document listener and delivers the current state
// before returning.
func (m *MemoryStore) SubscribeDoc(ctx context.Context, path string, fn DocHandler, errFn ErrHandler) (Subscription, error) {
	sub := &memDocSub{store: m, path: path, fn: fn}
	m.mu.Lock()
	m.docSubs = append(m.docSubs, sub)
	snap := Snapshot{ID: docID(path)}
	if fields, ok := m.docs[path]; ok {
		snap = m.snapshotLocked(path, fields)
	}
	m.mu.Unlock()
	fn(snap)
	return sub, nil
}

// SubscribeQuery registers a query listener and delivers the current result
// set before returning.
func (m *MemoryStore) SubscribeQuery(ctx context.Context, q Query, fn QueryHandler, errFn ErrHandler) (Subscription, error) {
	sub := &memQuerySub{store: m, q: q, fn: fn}
	m.mu.Lock()
	m.querySubs = append(m.querySubs, sub)
	snaps := m.runQueryLocked(q)
	m.mu.Unlock()
	fn(snaps)
	return sub, nil
}

// BatchWrite applies all operations atomically: every operation is validated
// before any is applied, and an injected failure applies nothing.
func (m *MemoryStore) BatchWrite(ctx context.Context, ops []Op) error {
	encoded := make([]Fields, len(ops))
	for i, op := range ops {
		if op.Kind != OpSet {
			continue
		}
		fields, err := encodeDoc(op.Data)
		if err != nil {
			return err
		}
		encoded[i] = fields
	}

	m.mu.Lock()
	if m.batchErr != nil {
		err := m.batchErr
		m.batchErr = nil
		m.mu.Unlock()
		return err
	}
	for _, op := range ops {
		if op.Kind == OpUpdate {
			if _, ok := m.docs[op.Path]; !ok {
				m.mu.Unlock()
				return fmt.Errorf("batch update %s: %w", op.Path, ErrNotFound)
			}
		}
	}

	var notifiers []func()
	for i, op := range ops {
		switch op.Kind {
		case OpSet:
			fields := encoded[i]
			m.applySentinelsLocked(fields)
			if op.Merge {
				if existing, ok := m.docs[op.Path]; ok {
					merged := copyFields(existing)
					for k, v := range fields {
						merged[k] = v
					}
					fields = merged
				}
			}
			m.docs[op.Path] = fields
		case OpUpdate:
			fields := copyFields(m.docs[op.Path])
			for _, u := range op.Updates {
				value := u.Value
				if _, isSentinel := value.(serverTimestampSentinel); isSentinel {
					value = m.clock()
				}
				setFieldPath(fields, u.Path, value)
			}
			m.docs[op.Path] = fields
		case OpDelete:
			delete(m.docs, op.Path)
		}
		notifiers = append(notifiers, m.collectLocked(op.Path))
	}
	m.mu.Unlock()
	for _, notify := range notifiers {
		notify()
	}
	return nil
}

// snapshotLocked builds a snapshot with an isolated copy of the fields
func (m *MemoryStore) snapshotLocked(path string, fields Fields) Snapshot {
	data := copyFields(fields)
	return Snapshot{
		ID:     docID(path),
		Exists: true,
		Data:   data,
		decode: func(v interface{}) error { return decodeDoc(data, v) },
	}
}

func (m *MemoryStore) applySentinelsLocked(fields Fields) {
	for k, v := range fields {
		if _, isSentinel := v.(serverTimestampSentinel); isSentinel {
			fields[k] = m.clock()
		}
	}
}

// collectLocked gathers the subscriptions affected by a change to path and
// returns a closure that delivers to them after the lock is released.
func (m *MemoryStore) collectLocked(path string) func() {
	collection := collectionOf(path)

	var docDeliveries []func()
	for _, sub := range m.docSubs {
		if sub.closed || sub.path != path {
			continue
		}
		snap := Snapshot{ID: docID(path)}
		if fields, ok := m.docs[path]; ok {
			snap = m.snapshotLocked(path, fields)
		}
		fn, s := sub.fn, snap
		docDeliveries = append(docDeliveries, func() { fn(s) })
	}

	for _, sub := range m.querySubs {
		if sub.closed || sub.q.Collection != collection {
			continue
		}
		snaps := m.runQueryLocked(sub.q)
		fn := sub.fn
		docDeliveries = append(docDeliveries, func() { fn(snaps) })
	}

	return func() {
		for _, deliver := range docDeliveries {
			deliver()
		}
	}
}

func (m *MemoryStore) runQueryLocked(q Query) []Snapshot {
	prefix := q.Collection + "/"
	var matched []Snapshot
	for path, fields := range m.docs {
		if !strings.HasPrefix(path, prefix) || strings.Contains(path[len(prefix):], "/") {
			continue
		}
		if !matchesFilters(fields, q.Filters) {
			continue
		}
		matched = append(matched, m.snapshotLocked(path, fields))
	}
	if q.OrderBy != "" {
		sort.SliceStable(matched, func(i, j int) bool {
			less := lessValue(getFieldPath(matched[i].Data, q.OrderBy), getFieldPath(matched[j].Data, q.OrderBy))
			if q.Desc {
				return !less
			}
			return less
		})
	} else {
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	}
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return matched
}

func matchesFilters(fields Fields, filters []Filter) bool {
	for _, f := range filters {
		value := getFieldPath(fields, f.Path)
		switch f.Op {
		case "==":
			if !equalValue(value, f.Value) {
				return false
			}
		case "<":
			if !lessValue(value, f.Value) {
				return false
			}
		case "<=":
			if !lessValue(value, f.Value) && !equalValue(value, f.Value) {
				return false
			}
		case ">":
			if lessValue(value, f.Value) || equalValue(value, f.Value) {
				return false
			}
		case ">=":
			if lessValue(value, f.Value) {
				return false
			}
		case "array-contains":
			if !arrayContains(value, f.Value) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// Path and value helpers

func docID(path string) string {
	segs := strings.Split(path, "/")
	return segs[len(segs)-1]
}

func collectionOf(path string) string {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return ""
	}
	return path[:idx]
}

func copyFields(fields Fields) Fields {
	out := make(Fields, len(fields))
	for k, v := range fields {
		if nested, ok := v.(Fields); ok {
			out[k] = copyFields(nested)
			continue
		}
		out[k] = v
	}
	return out
}

func setFieldPath(fields Fields, path string, value interface{}) {
	segs := strings.Split(path, ".")
	for _, seg := range segs[:len(segs)-1] {
		next, ok := fields[seg].(Fields)
		if !ok {
			next = Fields{}
			fields[seg] = next
		}
		fields = next
	}
	fields[segs[len(segs)-1]] = value
}

func getFieldPath(fields Fields, path string) interface{} {
	segs := strings.Split(path, ".")
	var current interface{} = fields
	for _, seg := range segs {
		m, ok := current.(Fields)
		if !ok {
			return nil
		}
		current = m[seg]
	}
	return current
}

func equalValue(a, b interface{}) bool {
	if af, aok := toFloat(a); aok {
		bf, bok := toFloat(b)
		return bok && af == bf
	}
	if at, aok := a.(time.Time); aok {
		bt, bok := b.(time.Time)
		return bok && at.Equal(bt)
	}
	av, bv := reflect.ValueOf(a), reflect.ValueOf(b)
	if av.IsValid() && bv.IsValid() && av.Kind() == reflect.String && bv.Kind() == reflect.String {
		return av.String() == bv.String()
	}
	return reflect.DeepEqual(a, b)
}

func lessValue(a, b interface{}) bool {
	if af, aok := toFloat(a); aok {
		bf, bok := toFloat(b)
		return bok && af < bf
	}
	if at, aok := a.(time.Time); aok {
		bt, bok := b.(time.Time)
		return bok && at.Before(bt)
	}
	av, bv := reflect.ValueOf(a), reflect.ValueOf(b)
	if av.IsValid() && bv.IsValid() && av.Kind() == reflect.String && bv.Kind() == reflect.String {
		return av.String() < bv.String()
	}
	return false
}

func arrayContains(value, member interface{}) bool {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || rv.Kind() != reflect.Slice {
		return false
	}
	for i := 0; i < rv.Len(); i++ {
		if equalValue(rv.Index(i).Interface(), member) {
			return true
		}
	}
	return false
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
