package mongodocs

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/enidea/slack-clone/internal/app/store/docstore"
	"github.com/enidea/slack-clone/internal/app/system/metrics"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type listener struct {
	store  *Store
	coll   string
	filter docstore.Filter
	ch     chan docstore.Snapshot
	cancel context.CancelFunc
	done   chan struct{}

	mu        sync.Mutex
	closed    bool
	published bool
	lastSig   []byte
	once      sync.Once
}

func (l *listener) Snapshots() <-chan docstore.Snapshot { return l.ch }

// Close stops the listener goroutine, waits for it, and closes the channel.
func (l *listener) Close() error {
	l.once.Do(func() {
		l.cancel()
		<-l.done
		l.mu.Lock()
		l.closed = true
		close(l.ch)
		l.mu.Unlock()
		metrics.ListenersActive.WithLabelValues(backend, l.coll).Dec()
	})
	return nil
}

func (l *listener) start(ctx context.Context, initial []docstore.Document) {
	metrics.ListenersActive.WithLabelValues(backend, l.coll).Inc()
	l.publish(initial)

	go func() {
		defer close(l.done)
		l.run(ctx)
	}()
}

func (l *listener) run(ctx context.Context) {
	log := l.store.log.With(zap.String("collection", l.coll))
	for ctx.Err() == nil {
		err := l.watch(ctx)
		if ctx.Err() != nil {
			return
		}
		if changeStreamsUnsupported(err) {
			log.Info("change streams unavailable; polling",
				zap.Duration("interval", l.store.pollInterval))
			l.poll(ctx)
			return
		}
		if err != nil {
			log.Warn("listener interrupted", zap.Error(err))
			l.fail(err)
		}
		if !sleep(ctx, l.store.retryDelay) {
			return
		}
		l.refresh(ctx)
	}
}

// watch follows the collection's change stream until it ends. Each event
// triggers a full re-query; the listener publishes only if the result set
// actually changed.
func (l *listener) watch(ctx context.Context) error {
	cs, err := l.store.db.Collection(l.coll).Watch(ctx, mongo.Pipeline{}, options.ChangeStream())
	if err != nil {
		return err
	}
	defer cs.Close(context.Background())

	for cs.Next(ctx) {
		l.refresh(ctx)
	}
	return cs.Err()
}

func (l *listener) poll(ctx context.Context) {
	t := time.NewTicker(l.store.pollInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			l.refresh(ctx)
		}
	}
}

func (l *listener) refresh(ctx context.Context) {
	docs, err := l.store.find(ctx, l.coll, l.filter)
	if err != nil {
		if ctx.Err() == nil {
			l.fail(err)
		}
		return
	}
	l.publish(docs)
}

func (l *listener) fail(err error) {
	metrics.ListenerErrors.WithLabelValues(backend, l.coll).Inc()
	l.push(docstore.Snapshot{Err: docstore.Transport("subscribe", l.coll, err)})
}

func (l *listener) publish(docs []docstore.Document) {
	sig, err := signature(docs)
	if err == nil {
		l.mu.Lock()
		same := l.published && bytes.Equal(sig, l.lastSig)
		l.lastSig = sig
		l.published = true
		l.mu.Unlock()
		if same {
			return
		}
	}
	metrics.SnapshotsDelivered.WithLabelValues(backend, l.coll).Inc()
	l.push(docstore.Snapshot{Docs: docs})
}

// push keeps at most one undelivered snapshot, replacing it with the
// newest one.
func (l *listener) push(snap docstore.Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()
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

func signature(docs []docstore.Document) ([]byte, error) {
	var buf bytes.Buffer
	for _, d := range docs {
		raw, err := bson.Marshal(d.Fields)
		if err != nil {
			return nil, err
		}
		buf.WriteString(d.ID)
		buf.WriteByte(0)
		buf.Write(raw)
	}
	return buf.Bytes(), nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
