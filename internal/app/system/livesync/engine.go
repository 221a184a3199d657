// Package livesync keeps the view state in step with the signed-in user
// and the remote store.
//
// One goroutine owns all coordination. Auth changes, snapshots, listener
// errors, and workflow results are queued as events and handled one at a
// time, each to completion. After every event the engine compares the
// listeners it holds with what the view state says should be watched and
// swaps any whose key changed. Store I/O never runs on that goroutine:
// listeners are opened and closed on helpers, and workflows run on the
// caller's goroutine with only their result posted back.
package livesync

import (
	"context"
	"errors"
	"sync"

	"github.com/enidea/slack-clone/internal/app/services/membership"
	"github.com/enidea/slack-clone/internal/app/services/messaging"
	channelstore "github.com/enidea/slack-clone/internal/app/store/channels"
	"github.com/enidea/slack-clone/internal/app/store/docstore"
	messagestore "github.com/enidea/slack-clone/internal/app/store/messages"
	workspacestore "github.com/enidea/slack-clone/internal/app/store/workspaces"
	"github.com/enidea/slack-clone/internal/app/system/identity"
	"github.com/enidea/slack-clone/internal/app/system/viewstate"
	"github.com/enidea/slack-clone/internal/domain/models"
	"go.uber.org/zap"
)

// ErrClosed is returned by actions issued after Close.
var ErrClosed = errors.New("livesync: engine closed")

// Deps are the collaborators an Engine coordinates.
type Deps struct {
	Gateway    docstore.Gateway
	Session    *identity.Session
	View       *viewstate.Store
	Membership *membership.Service
	Messaging  *messaging.Service
	Logger     *zap.Logger
}

type Engine struct {
	session    *identity.Session
	view       *viewstate.Store
	membership *membership.Service
	messaging  *messaging.Service
	workspaces *workspacestore.Store
	channels   *channelstore.Store
	messages   *messagestore.Store
	logger     *zap.Logger

	// mailbox
	mu     sync.Mutex
	queue  []event
	closed bool
	wake   chan struct{}

	quit     chan struct{}
	loopDone chan struct{}
	helpers  sync.WaitGroup
	stopOnce sync.Once

	// owned by the loop goroutine
	slots     [kindCount]slot
	gen       uint64
	unsubAuth func()
}

// Start builds an Engine and starts its loop. The current auth state is
// delivered as the first event.
func Start(d Deps) *Engine {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		session:    d.Session,
		view:       d.View,
		membership: d.Membership,
		messaging:  d.Messaging,
		workspaces: workspacestore.New(d.Gateway),
		channels:   channelstore.New(d.Gateway),
		messages:   messagestore.New(d.Gateway),
		logger:     logger,
		wake:       make(chan struct{}, 1),
		quit:       make(chan struct{}),
		loopDone:   make(chan struct{}),
	}
	e.unsubAuth = e.session.OnAuthStateChanged(func(userID string) {
		e.post(authChanged{userID: userID})
	})
	go e.loop()
	return e
}

// Close stops the loop, releases every listener, and waits for helper
// goroutines. Safe to call more than once.
func (e *Engine) Close() {
	e.stopOnce.Do(func() {
		e.unsubAuth()
		e.mu.Lock()
		e.closed = true
		e.mu.Unlock()
		close(e.quit)
		<-e.loopDone
		e.helpers.Wait()
	})
}

// State returns the current view state.
func (e *Engine) State() viewstate.State { return e.view.State() }

// UserID returns the signed-in user's id, or "" when signed out.
func (e *Engine) UserID() string { return e.view.State().User.UserID }

// Observe registers fn for every view state change.
func (e *Engine) Observe(fn func(viewstate.State)) (unsubscribe func()) {
	return e.view.Subscribe(fn)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Mailbox                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// post queues ev without blocking. It reports false once the engine is
// closed, in which case ev was not queued.
func (e *Engine) post(ev event) bool {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return false
	}
	e.queue = append(e.queue, ev)
	e.mu.Unlock()

	select {
	case e.wake <- struct{}{}:
	default:
	}
	return true
}

func (e *Engine) take() []event {
	e.mu.Lock()
	defer e.mu.Unlock()
	batch := e.queue
	e.queue = nil
	return batch
}

func (e *Engine) loop() {
	defer close(e.loopDone)
	for {
		select {
		case <-e.wake:
			for _, ev := range e.take() {
				e.handle(ev)
				e.reconcile()
			}
		case <-e.quit:
			e.shutdown()
			return
		}
	}
}

// shutdown runs on the loop goroutine after quit. Nothing new can be
// queued, so whatever is left is drained here. Pending calls are dropped;
// their callers see ErrClosed.
func (e *Engine) shutdown() {
	for _, ev := range e.take() {
		switch ev := ev.(type) {
		case opened:
			if ev.unsub != nil {
				e.release(ev.unsub)
			}
		}
	}
	for k := range e.slots {
		e.closeSlot(kind(k))
	}
}

// do runs fn on the loop goroutine and waits for it to finish.
func (e *Engine) do(ctx context.Context, fn func()) error {
	c := call{fn: fn, done: make(chan struct{})}
	if !e.post(c) {
		return ErrClosed
	}
	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-e.loopDone:
		return ErrClosed
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Events                                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

type event interface{}

type authChanged struct{ userID string }

// opened carries the outcome of opening a listener for generation gen.
type opened struct {
	kind  kind
	gen   uint64
	unsub docstore.Unsubscribe
	err   error
}

// loaded carries one snapshot already turned into a view action.
type loaded struct {
	kind   kind
	gen    uint64
	action viewstate.Action
}

type failed struct {
	kind kind
	gen  uint64
	err  error
}

type call struct {
	fn   func()
	done chan struct{}
}

func (e *Engine) handle(ev event) {
	switch ev := ev.(type) {
	case authChanged:
		if ev.userID == "" {
			e.view.Dispatch(viewstate.Logout{})
		} else {
			e.view.Dispatch(viewstate.Login{UserID: ev.userID})
		}

	case opened:
		s := &e.slots[ev.kind]
		if ev.gen != s.gen {
			// Key changed while the listener was opening.
			if ev.unsub != nil {
				e.release(ev.unsub)
			}
			return
		}
		if ev.err != nil {
			e.logger.Warn("subscribe failed",
				zap.String("list", string(ev.kind.source())),
				zap.String("key", s.key),
				zap.Error(ev.err))
			e.view.Dispatch(viewstate.SubscriptionFailed{Source: ev.kind.source(), Key: s.key, Err: ev.err})
			return
		}
		s.unsub = ev.unsub

	case loaded:
		if ev.gen != e.slots[ev.kind].gen {
			return
		}
		e.view.Dispatch(ev.action)

	case failed:
		s := e.slots[ev.kind]
		if ev.gen != s.gen {
			return
		}
		e.logger.Warn("live list error",
			zap.String("list", string(ev.kind.source())),
			zap.String("key", s.key),
			zap.Error(ev.err))
		e.view.Dispatch(viewstate.SubscriptionFailed{Source: ev.kind.source(), Key: s.key, Err: ev.err})

	case call:
		ev.fn()
		close(ev.done)
	}
}

// stillSignedIn reports whether userID, captured when a workflow started,
// is still the signed-in user. Late results for anyone else are dropped.
func (e *Engine) stillSignedIn(userID string) bool {
	return userID != "" && e.view.State().User.UserID == userID
}

func (e *Engine) selectWorkspaceIfCurrent(ctx context.Context, userID string, ws models.WorkspaceRef) error {
	return e.do(ctx, func() {
		if !e.stillSignedIn(userID) {
			e.logger.Debug("dropping workspace selection for signed-out user",
				zap.String("workspace_id", ws.ID))
			return
		}
		e.view.Dispatch(viewstate.SelectWorkspace{ID: ws.ID, Name: ws.Workspace.Name})
	})
}
