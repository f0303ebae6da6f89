package store

import (
	"context"
	"sync"

	"cloud.google.com/go/firestore"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore implements Store over a Firestore client
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore wraps an initialized Firestore client
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

// translateSentinels replaces ServerTimestamp sentinels in map payloads with
// the Firestore sentinel. Struct payloads pass through untouched.
func translateSentinels(data interface{}) interface{} {
	fields, ok := data.(Fields)
	if !ok {
		return data
	}
	out := make(Fields, len(fields))
	for k, v := range fields {
		if _, isSentinel := v.(serverTimestampSentinel); isSentinel {
			out[k] = firestore.ServerTimestamp
			continue
		}
		out[k] = v
	}
	return out
}

func wrapDocSnapshot(ds *firestore.DocumentSnapshot) Snapshot {
	snap := Snapshot{
		ID:     ds.Ref.ID,
		Exists: ds.Exists(),
	}
	if snap.Exists {
		snap.Data = ds.Data()
		snap.decode = ds.DataTo
	}
	return snap
}

// Get retrieves a document. Absent documents yield Exists=false, not an error.
func (s *FirestoreStore) Get(ctx context.Context, path string) (Snapshot, error) {
	ds, err := s.client.Doc(path).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return Snapshot{ID: s.client.Doc(path).ID}, nil
		}
		return Snapshot{}, err
	}
	return wrapDocSnapshot(ds), nil
}

// Set writes a document, optionally merging into existing fields
func (s *FirestoreStore) Set(ctx context.Context, path string, data interface{}, merge bool) error {
	var opts []firestore.SetOption
	if merge {
		opts = append(opts, firestore.MergeAll)
	}
	_, err := s.client.Doc(path).Set(ctx, translateSentinels(data), opts...)
	return err
}

// Update applies field-path updates to an existing document
func (s *FirestoreStore) Update(ctx context.Context, path string, updates []Update) error {
	fsUpdates := make([]firestore.Update, 0, len(updates))
	for _, u := range updates {
		value := u.Value
		if _, isSentinel := value.(serverTimestampSentinel); isSentinel {
			value = firestore.ServerTimestamp
		}
		fsUpdates = append(fsUpdates, firestore.Update{Path: u.Path, Value: value})
	}
	_, err := s.client.Doc(path).Update(ctx, fsUpdates)
	return err
}

// Add creates a document with a generated id and returns the id
func (s *FirestoreStore) Add(ctx context.Context, collection string, data interface{}) (string, error) {
	ref, _, err := s.client.Collection(collection).Add(ctx, translateSentinels(data))
	if err != nil {
		return "", err
	}
	return ref.ID, nil
}

// Delete removes a document
func (s *FirestoreStore) Delete(ctx context.Context, path string) error {
	_, err := s.client.Doc(path).Delete(ctx)
	return err
}

func (s *FirestoreStore) buildQuery(q Query) firestore.Query {
	fq := s.client.Collection(q.Collection).Query
	for _, f := range q.Filters {
		fq = fq.Where(f.Path, f.Op, f.Value)
	}
	if q.OrderBy != "" {
		dir := firestore.Asc
		if q.Desc {
			dir = firestore.Desc
		}
		fq = fq.OrderBy(q.OrderBy, dir)
	}
	if q.Limit > 0 {
		fq = fq.Limit(q.Limit)
	}
	return fq
}

// Query runs a one-shot collection query
func (s *FirestoreStore) Query(ctx context.Context, q Query) ([]Snapshot, error) {
	docs, err := s.buildQuery(q).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	snaps := make([]Snapshot, 0, len(docs))
	for _, ds := range docs {
		snaps = append(snaps, wrapDocSnapshot(ds))
	}
	return snaps, nil
}

type firestoreSubscription struct {
	cancel context.CancelFunc
	once   sync.Once
}

func (s *firestoreSubscription) Unsubscribe() {
	s.once.Do(s.cancel)
}

// SubscribeDoc listens to a single document. The handler fires with the
// current state immediately and then on every remote change.
func (s *FirestoreStore) SubscribeDoc(ctx context.Context, path string, fn DocHandler, errFn ErrHandler) (Subscription, error) {
	subCtx, cancel := context.WithCancel(ctx)
	iter := s.client.Doc(path).Snapshots(subCtx)

	go func() {
		defer iter.Stop()
		for {
			ds, err := iter.Next()
			if err != nil {
				if status.Code(err) == codes.Canceled {
					return
				}
				log.WithError(err).WithField("path", path).Error("document subscription failed")
				if errFn != nil {
					errFn(err)
				}
				return
			}
			fn(wrapDocSnapshot(ds))
		}
	}()

	return &firestoreSubscription{cancel: cancel}, nil
}

// SubscribeQuery listens to a collection query, delivering the full result
// set on every change.
func (s *FirestoreStore) SubscribeQuery(ctx context.Context, q Query, fn QueryHandler, errFn ErrHandler) (Subscription, error) {
	subCtx, cancel := context.WithCancel(ctx)
	iter := s.buildQuery(q).Snapshots(subCtx)

	go func() {
		defer iter.Stop()
		for {
			qs, err := iter.Next()
			if err != nil {
				if status.Code(err) == codes.Canceled {
					return
				}
				log.WithError(err).WithField("collection", q.Collection).Error("query subscription failed")
				if errFn != nil {
					errFn(err)
				}
				return
			}
			docs, err := qs.Documents.GetAll()
			if err != nil {
				log.WithError(err).WithField("collection", q.Collection).Error("reading query snapshot failed")
				if errFn != nil {
					errFn(err)
				}
				return
			}
			snaps := make([]Snapshot, 0, len(docs))
			for _, ds := range docs {
				snaps = append(snaps, wrapDocSnapshot(ds))
			}
			fn(snaps)
		}
	}()

	return &firestoreSubscription{cancel: cancel}, nil
}

// BatchWrite commits all operations atomically
func (s *FirestoreStore) BatchWrite(ctx context.Context, ops []Op) error {
	batch := s.client.Batch()
	for _, op := range ops {
		ref := s.client.Doc(op.Path)
		switch op.Kind {
		case OpSet:
			if op.Merge {
				batch.Set(ref, translateSentinels(op.Data), firestore.MergeAll)
			} else {
				batch.Set(ref, translateSentinels(op.Data))
			}
		case OpUpdate:
			fsUpdates := make([]firestore.Update, 0, len(op.Updates))
			for _, u := range op.Updates {
				fsUpdates = append(fsUpdates, firestore.Update{Path: u.Path, Value: u.Value})
			}
			batch.Update(ref, fsUpdates)
		case OpDelete:
			batch.Delete(ref)
		}
	}
	_, err := batch.Commit(ctx)
	return err
}
