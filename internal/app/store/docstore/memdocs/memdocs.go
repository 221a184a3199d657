// Package memdocs is a docstore.Gateway held entirely in process memory.
// It backs the "memory" store_backend and every test above the gateway.
//
// Documents are kept as encoded BSON so reads never alias stored data and
// filter values compare exactly as they would on the wire.
package memdocs

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"github.com/enidea/slack-clone/internal/app/store/docstore"
	"github.com/enidea/slack-clone/internal/app/system/metrics"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

const backend = "memory"

// Store implements docstore.Gateway.
type Store struct {
	mu        sync.Mutex
	colls     map[string]map[string]bson.Raw
	listeners map[*listener]struct{}
	failures  map[string]error
}

var _ docstore.Gateway = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		colls:     make(map[string]map[string]bson.Raw),
		listeners: make(map[*listener]struct{}),
		failures:  make(map[string]error),
	}
}

// FailNext makes the next call of op ("get", "query", "put", "update",
// "delete", "subscribe") on collection fail with a transport error.
func (s *Store) FailNext(op, collection string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op+"/"+collection] = err
}

// FailListeners pushes a transport error to every open listener on
// collection. Listeners stay open.
func (s *Store) FailListeners(collection string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for l := range s.listeners {
		if l.coll == collection {
			l.push(docstore.Snapshot{Err: docstore.Transport("subscribe", collection, err)})
			metrics.ListenerErrors.WithLabelValues(backend, collection).Inc()
		}
	}
}

// ListenerCount returns the number of open listeners on collection.
func (s *Store) ListenerCount(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for l := range s.listeners {
		if l.coll == collection {
			n++
		}
	}
	return n
}

// injected must be called with s.mu held.
func (s *Store) injected(op, collection string) error {
	key := op + "/" + collection
	if err, ok := s.failures[key]; ok {
		delete(s.failures, key)
		return docstore.Transport(op, collection, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	if err := ctx.Err(); err != nil {
		return docstore.Document{}, docstore.Transport("get", collection, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("get", collection); err != nil {
		return docstore.Document{}, err
	}
	raw, ok := s.colls[collection][id]
	if !ok {
		return docstore.Document{}, docstore.ErrNotFound
	}
	return decode(id, raw)
}

func (s *Store) Query(ctx context.Context, collection string, filter docstore.Filter) ([]docstore.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, docstore.Transport("query", collection, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("query", collection); err != nil {
		return nil, err
	}
	return s.query(collection, filter)
}

func (s *Store) Put(ctx context.Context, collection, id string, fields bson.M) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", docstore.Transport("put", collection, err)
	}
	if id == "" {
		u, err := uuid.NewV7()
		if err != nil {
			return "", docstore.Transport("put", collection, err)
		}
		id = u.String()
	}
	raw, err := encode(fields)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("put", collection); err != nil {
		return "", err
	}
	c, ok := s.colls[collection]
	if !ok {
		c = make(map[string]bson.Raw)
		s.colls[collection] = c
	}
	c[id] = raw
	s.notify(collection)
	return id, nil
}

func (s *Store) Update(ctx context.Context, collection, id string, fields bson.M) error {
	if err := ctx.Err(); err != nil {
		return docstore.Transport("update", collection, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("update", collection); err != nil {
		return err
	}
	raw, ok := s.colls[collection][id]
	if !ok {
		return docstore.ErrNotFound
	}
	var current bson.M
	if err := bson.Unmarshal(raw, &current); err != nil {
		return err
	}
	for k, v := range fields {
		current[k] = v
	}
	next, err := encode(current)
	if err != nil {
		return err
	}
	s.colls[collection][id] = next
	s.notify(collection)
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return docstore.Transport("delete", collection, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("delete", collection); err != nil {
		return err
	}
	if _, ok := s.colls[collection][id]; !ok {
		return nil
	}
	delete(s.colls[collection], id)
	s.notify(collection)
	return nil
}

func (s *Store) Subscribe(ctx context.Context, collection string, filter docstore.Filter) (docstore.Listener, error) {
	if err := ctx.Err(); err != nil {
		return nil, docstore.Transport("subscribe", collection, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("subscribe", collection); err != nil {
		return nil, err
	}

	l := &listener{
		store:  s,
		coll:   collection,
		filter: filter,
		ch:     make(chan docstore.Snapshot, 1),
	}
	s.listeners[l] = struct{}{}
	metrics.ListenersActive.WithLabelValues(backend, collection).Inc()
	s.deliver(l)
	return l, nil
}

// notify pushes a fresh snapshot to every listener on collection whose
// matching set changed. Caller holds s.mu.
func (s *Store) notify(collection string) {
	for l := range s.listeners {
		if l.coll == collection {
			s.deliver(l)
		}
	}
}

// deliver computes l's snapshot and pushes it when it differs from the
// last one delivered. Caller holds s.mu.
func (s *Store) deliver(l *listener) {
	docs, err := s.query(l.coll, l.filter)
	if err != nil {
		l.push(docstore.Snapshot{Err: docstore.Transport("subscribe", l.coll, err)})
		return
	}
	sig := signature(s.colls[l.coll], docs)
	if l.delivered && bytes.Equal(sig, l.lastSig) {
		return
	}
	l.lastSig = sig
	l.delivered = true
	l.push(docstore.Snapshot{Docs: docs})
	metrics.SnapshotsDelivered.WithLabelValues(backend, l.coll).Inc()
}

func (s *Store) query(collection string, filter docstore.Filter) ([]docstore.Document, error) {
	want, err := encodeFilter(filter)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(s.colls[collection]))
	for id, raw := range s.colls[collection] {
		if matches(raw, want) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	docs := make([]docstore.Document, 0, len(ids))
	for _, id := range ids {
		d, err := decode(id, s.colls[collection][id])
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, nil
}

type listener struct {
	store  *Store
	coll   string
	filter docstore.Filter
	ch     chan docstore.Snapshot

	// guarded by store.mu
	closed    bool
	delivered bool
	lastSig   []byte
}

func (l *listener) Snapshots() <-chan docstore.Snapshot { return l.ch }

func (l *listener) Close() error {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	delete(l.store.listeners, l)
	metrics.ListenersActive.WithLabelValues(backend, l.coll).Dec()
	close(l.ch)
	return nil
}

// push replaces any undelivered snapshot with snap so a slow consumer
// only ever sees the latest state. Caller holds store.mu, which makes
// the drain-then-send sequence atomic with respect to other pushers.
func (l *listener) push(snap docstore.Snapshot) {
	if l.closed {
		return
	}
	select {
	case l.ch <- snap:
	default:
		select {
		case <-l.ch:
		default:
		}
		l.ch <- snap
	}
}

func encode(fields bson.M) (bson.Raw, error) {
	clean := make(bson.M, len(fields))
	for k, v := range fields {
		if k == "_id" {
			continue
		}
		clean[k] = v
	}
	return bson.Marshal(clean)
}

func decode(id string, raw bson.Raw) (docstore.Document, error) {
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return docstore.Document{}, err
	}
	return docstore.Document{ID: id, Fields: m}, nil
}

// encodeFilter renders each filter value to a bson.RawValue so matching is
// a byte comparison against the stored element.
func encodeFilter(filter docstore.Filter) (map[string]bson.RawValue, error) {
	out := make(map[string]bson.RawValue, len(filter))
	for k, v := range filter {
		raw, err := bson.Marshal(bson.D{{Key: "v", Value: v}})
		if err != nil {
			return nil, err
		}
		rv, err := bson.Raw(raw).LookupErr("v")
		if err != nil {
			return nil, err
		}
		out[k] = rv
	}
	return out, nil
}

func matches(raw bson.Raw, want map[string]bson.RawValue) bool {
	for k, v := range want {
		got, err := raw.LookupErr(k)
		if err != nil {
			return false
		}
		if got.Type != v.Type || !bytes.Equal(got.Value, v.Value) {
			return false
		}
	}
	return true
}

// signature is a cheap identity for a snapshot: ids and encoded bodies in
// order. Two equal signatures mean the listener would see the same data.
func signature(coll map[string]bson.Raw, docs []docstore.Document) []byte {
	var buf bytes.Buffer
	for _, d := range docs {
		buf.WriteString(d.ID)
		buf.WriteByte(0)
		buf.Write(coll[d.ID])
	}
	return buf.Bytes()
}
