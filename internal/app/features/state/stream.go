// internal/app/features/state/stream.go
package state

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/enidea/slack-clone/internal/app/system/viewstate"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeWait = 5 * time.Second

// The zero CheckOrigin rejects cross-origin upgrades.
var upgrader = websocket.Upgrader{}

// streamConn holds at most one pending frame. A newer state replaces an
// unsent one, so a slow reader only ever falls behind by one snapshot.
type streamConn struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once

	mu     sync.Mutex
	primed bool
	closed bool
}

func newStreamConn(ws *websocket.Conn) *streamConn {
	return &streamConn{conn: ws, send: make(chan []byte, 1)}
}

// offer queues frame. The initial frame is skipped when an observed change
// already got there first, since it may be older.
func (c *streamConn) offer(frame []byte, initial bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || (initial && c.primed) {
		return
	}
	c.primed = true
	select {
	case c.send <- frame:
	default:
		select {
		case <-c.send:
		default:
		}
		c.send <- frame
	}
}

func (c *streamConn) Close() {
	c.once.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()
		_ = c.conn.Close()
	})
}

// ServeStream handles GET /state/ws. Every view state change is pushed as
// one JSON text frame; the first frame is the state at connect time.
// Inbound frames are read and discarded so close frames are seen.
func (h *Handler) ServeStream(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Log.Warn("state stream: upgrade", zap.Error(err))
		return
	}
	c := newStreamConn(ws)

	push := func(st viewstate.State, initial bool) {
		b, err := json.Marshal(st)
		if err != nil {
			h.Log.Error("state stream: marshal", zap.Error(err))
			return
		}
		c.offer(b, initial)
	}
	unsubscribe := h.Engine.Observe(func(st viewstate.State) { push(st, false) })
	push(h.Engine.State(), true)

	h.Log.Debug("state stream: connected", zap.String("remote", r.RemoteAddr))
	go h.writePump(c)
	h.readPump(c)

	unsubscribe()
	h.Log.Debug("state stream: closed", zap.String("remote", r.RemoteAddr))
}

func (h *Handler) writePump(c *streamConn) {
	defer c.Close()
	for data := range c.send {
		if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			h.Log.Debug("state stream: set deadline", zap.Error(err))
			return
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.Log.Debug("state stream: write", zap.Error(err))
			return
		}
	}
}

func (h *Handler) readPump(c *streamConn) {
	defer c.Close()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
