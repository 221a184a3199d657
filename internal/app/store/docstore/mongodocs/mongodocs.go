// Package mongodocs implements docstore.Gateway on MongoDB.
//
// Every collection uses string _id values: identity ids for users,
// ObjectID hex for generated ids. Live listeners ride a collection change
// stream and re-run the filtered query on each change, so subscribers
// always receive the complete matching set. Servers without change stream
// support (standalone mongod) fall back to polling.
package mongodocs

import (
	"context"
	"errors"
	"time"

	"github.com/enidea/slack-clone/internal/app/store/docstore"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const backend = "mongo"

// DefaultPollInterval is used when change streams are unavailable.
const DefaultPollInterval = 2 * time.Second

// Store implements docstore.Gateway.
type Store struct {
	db           *mongo.Database
	log          *zap.Logger
	pollInterval time.Duration
	retryDelay   time.Duration
}

var _ docstore.Gateway = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithPollInterval sets the polling period used without change streams.
func WithPollInterval(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

// WithRetryDelay sets how long a listener waits after a transport error
// before re-opening its change stream.
func WithRetryDelay(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.retryDelay = d
		}
	}
}

// New returns a Store over db.
func New(db *mongo.Database, logger *zap.Logger, opts ...Option) *Store {
	s := &Store{
		db:           db,
		log:          logger,
		pollInterval: DefaultPollInterval,
		retryDelay:   time.Second,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	var m bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return docstore.Document{}, docstore.ErrNotFound
		}
		return docstore.Document{}, docstore.Transport("get", collection, err)
	}
	return toDocument(m), nil
}

func (s *Store) Query(ctx context.Context, collection string, filter docstore.Filter) ([]docstore.Document, error) {
	docs, err := s.find(ctx, collection, filter)
	if err != nil {
		return nil, docstore.Transport("query", collection, err)
	}
	return docs, nil
}

func (s *Store) find(ctx context.Context, collection string, filter docstore.Filter) ([]docstore.Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.db.Collection(collection).Find(ctx, toBSON(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []bson.M
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	docs := make([]docstore.Document, 0, len(rows))
	for _, m := range rows {
		docs = append(docs, toDocument(m))
	}
	return docs, nil
}

func (s *Store) Put(ctx context.Context, collection, id string, fields bson.M) (string, error) {
	doc := make(bson.M, len(fields)+1)
	for k, v := range fields {
		doc[k] = v
	}
	c := s.db.Collection(collection)

	if id == "" {
		id = primitive.NewObjectID().Hex()
		doc["_id"] = id
		if _, err := c.InsertOne(ctx, doc); err != nil {
			return "", docstore.Transport("put", collection, err)
		}
		return id, nil
	}

	doc["_id"] = id
	opts := options.Replace().SetUpsert(true)
	if _, err := c.ReplaceOne(ctx, bson.M{"_id": id}, doc, opts); err != nil {
		return "", docstore.Transport("put", collection, err)
	}
	return id, nil
}

func (s *Store) Update(ctx context.Context, collection, id string, fields bson.M) error {
	set := make(bson.M, len(fields))
	for k, v := range fields {
		if k != "_id" {
			set[k] = v
		}
	}
	res, err := s.db.Collection(collection).UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return docstore.Transport("update", collection, err)
	}
	if res.MatchedCount == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return docstore.Transport("delete", collection, err)
	}
	return nil
}

// Subscribe starts a listener goroutine. The initial query runs before
// Subscribe returns so an unreachable server is reported synchronously.
func (s *Store) Subscribe(ctx context.Context, collection string, filter docstore.Filter) (docstore.Listener, error) {
	initial, err := s.find(ctx, collection, filter)
	if err != nil {
		return nil, docstore.Transport("subscribe", collection, err)
	}

	lctx, cancel := context.WithCancel(context.Background())
	l := &listener{
		store:  s,
		coll:   collection,
		filter: filter,
		ch:     make(chan docstore.Snapshot, 1),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	l.start(lctx, initial)
	return l, nil
}

func toBSON(filter docstore.Filter) bson.M {
	m := make(bson.M, len(filter))
	for k, v := range filter {
		m[k] = v
	}
	return m
}

func toDocument(m bson.M) docstore.Document {
	id, _ := m["_id"].(string)
	if id == "" {
		if oid, ok := m["_id"].(primitive.ObjectID); ok {
			id = oid.Hex()
		}
	}
	delete(m, "_id")
	return docstore.Document{ID: id, Fields: m}
}

// changeStreamsUnsupported reports whether err means the deployment
// cannot open change streams at all, as opposed to a transient failure.
func changeStreamsUnsupported(err error) bool {
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case 40573, // $changeStream is only supported on replica sets
			20: // IllegalOperation on standalone
			return true
		}
	}
	var se mongo.ServerError
	if errors.As(err, &se) {
		return se.HasErrorCode(40573)
	}
	return false
}
