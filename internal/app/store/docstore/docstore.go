// Package docstore defines the contract every remote document backend
// implements: point reads and writes, equality queries, and live
// subscriptions that deliver the full matching set on every change.
//
// The backend is the single source of truth. Nothing above this layer
// owns entities; callers hold read-through copies at most.
package docstore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// Collection names.
const (
	Users            = "users"
	Workspaces       = "workspaces"
	WorkspaceMembers = "workspace_members"
	WorkspaceInvites = "workspace_invites"
	Channels         = "channels"
	Messages         = "messages"
)

var (
	// ErrNotFound is returned by Get and Update when the id is absent.
	ErrNotFound = errors.New("document not found")

	// ErrTransport matches every *TransportError via errors.Is.
	ErrTransport = errors.New("document store transport failure")
)

// TransportError wraps a backend read, write, or subscribe failure.
type TransportError struct {
	Op         string
	Collection string
	Err        error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("docstore %s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrTransport) match any TransportError.
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// Transport wraps err as a *TransportError. A nil err stays nil, and
// ErrNotFound passes through untouched so callers can still test for it.
func Transport(op, collection string, err error) error {
	if err == nil || errors.Is(err, ErrNotFound) {
		return err
	}
	var te *TransportError
	if errors.As(err, &te) {
		return err
	}
	return &TransportError{Op: op, Collection: collection, Err: err}
}

// Document is one stored record: its id plus its fields.
// Fields never contains "_id".
type Document struct {
	ID     string
	Fields bson.M
}

// Decode unmarshals the document's fields into v (a bson-tagged struct).
func (d Document) Decode(v any) error {
	raw, err := bson.Marshal(d.Fields)
	if err != nil {
		return fmt.Errorf("encode %s: %w", d.ID, err)
	}
	if err := bson.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", d.ID, err)
	}
	return nil
}

// Encode turns a bson-tagged struct into a field map suitable for Put.
func Encode(v any) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	delete(m, "_id")
	return m, nil
}

// Filter is a conjunction of field equality predicates. An empty Filter
// matches every document in the collection.
type Filter map[string]any

// Snapshot is one delivery from a Listener: either the complete current
// matching set, or a transport error. An error snapshot does not end the
// subscription; the backend keeps trying and later snapshots may follow.
type Snapshot struct {
	Docs []Document
	Err  error
}

// Listener is a live query. Snapshots are pushed on the channel until
// Close is called, after which the channel is closed. Close is safe to
// call more than once; only the first call releases the remote listener.
type Listener interface {
	Snapshots() <-chan Snapshot
	Close() error
}

// Gateway is the remote document store.
type Gateway interface {
	// Get returns the document with id, or ErrNotFound.
	Get(ctx context.Context, collection, id string) (Document, error)

	// Query returns every document matching filter, ordered by id.
	Query(ctx context.Context, collection string, filter Filter) ([]Document, error)

	// Put writes fields under id, replacing any existing document.
	// An empty id asks the backend to generate one. Returns the id used.
	Put(ctx context.Context, collection, id string, fields bson.M) (string, error)

	// Update sets the given fields on an existing document.
	Update(ctx context.Context, collection, id string, fields bson.M) error

	// Delete removes the document. Deleting a missing id is not an error.
	Delete(ctx context.Context, collection, id string) error

	// Subscribe opens a live query. The first snapshot is the current
	// matching set; one follows every change to that set.
	Subscribe(ctx context.Context, collection string, filter Filter) (Listener, error)
}
