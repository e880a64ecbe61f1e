package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/cmykstudio/internal/app"
	"github.com/ayusman/cmykstudio/internal/pointer"
	"github.com/ayusman/cmykstudio/internal/scene"
	"github.com/ayusman/cmykstudio/internal/tracking"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// Message types exchanged on the studio socket.
const (
	MsgSnapshot    = "snapshot"
	MsgError       = "error"
	MsgDown        = "down"
	MsgMove        = "move"
	MsgUp          = "up"
	MsgObservation = "observation"
	MsgDrop        = "drop"
)

// ClientMessage is one event sent by a browser.
type ClientMessage struct {
	Type string `json:"type"`

	// Pointer events.
	LayerID  string  `json:"layerId,omitempty"`
	X        float64 `json:"x,omitempty"`
	Y        float64 `json:"y,omitempty"`
	Modifier bool    `json:"modifier,omitempty"`

	// Browser-side tracking.
	Observation *tracking.Observation `json:"observation,omitempty"`
	Canvas      *tracking.CanvasSize  `json:"canvas,omitempty"`

	// Drops.
	Payload string `json:"payload,omitempty"`
}

// ServerMessage is one event pushed to a browser.
type ServerMessage struct {
	Type     string        `json:"type"`
	Snapshot *app.Snapshot `json:"snapshot,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// StudioSocket pushes studio snapshots to browsers and accepts pointer,
// drop and tracking events from them.
type StudioSocket struct {
	app *app.App
	log *slog.Logger
}

// NewStudioSocket creates a StudioSocket for the studio.
func NewStudioSocket(a *app.App, log *slog.Logger) *StudioSocket {
	if log == nil {
		log = slog.Default()
	}
	return &StudioSocket{app: a, log: log}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *StudioSocket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade", "err", err)
		return
	}
	defer conn.Close()

	c := newClient()
	c.snapshot(h.app.Snapshot())
	cancel := h.app.Subscribe(c.snapshot)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.writeLoop(conn)
	}()

	h.log.Debug("studio client connected", "remote", r.RemoteAddr)
	for {
		var msg ClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			var syntax *json.SyntaxError
			var typ *json.UnmarshalTypeError
			if errors.As(err, &syntax) || errors.As(err, &typ) {
				c.reply(ServerMessage{Type: MsgError, Error: "invalid JSON"})
				continue
			}
			break
		}
		if err := h.handle(msg); err != nil {
			c.reply(ServerMessage{Type: MsgError, Error: err.Error()})
		}
	}

	c.close()
	<-done
	h.log.Debug("studio client disconnected", "remote", r.RemoteAddr)
}

func (h *StudioSocket) handle(msg ClientMessage) error {
	at := pointer.Point{X: msg.X, Y: msg.Y}
	switch msg.Type {
	case MsgDown:
		return h.app.PointerDown(msg.LayerID, at, msg.Modifier)
	case MsgMove:
		h.app.PointerMove(at)
	case MsgUp:
		h.app.PointerUp(at)
	case MsgObservation:
		if msg.Observation == nil {
			return errors.New("observation is required")
		}
		h.app.ApplyObservation(*msg.Observation, msg.Canvas)
	case MsgDrop:
		if _, err := h.app.Drop(msg.Payload); err != nil && !errors.Is(err, scene.ErrMalformedDrop) {
			return err
		}
	default:
		return errors.New("unknown message type " + msg.Type)
	}
	return nil
}

// client queues outgoing messages for one connection. Only the newest
// snapshot is kept, so a slow browser skips intermediate states.
type client struct {
	mu      sync.Mutex
	latest  *app.Snapshot
	replies []ServerMessage
	closed  bool
	wake    chan struct{}
}

func newClient() *client {
	return &client{wake: make(chan struct{}, 1)}
}

func (c *client) snapshot(s app.Snapshot) {
	c.mu.Lock()
	c.latest = &s
	c.mu.Unlock()
	c.signal()
}

func (c *client) reply(m ServerMessage) {
	c.mu.Lock()
	c.replies = append(c.replies, m)
	c.mu.Unlock()
	c.signal()
}

func (c *client) close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.signal()
}

func (c *client) signal() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// next drains the queue. ok is false once the client is closed.
func (c *client) next() (out []ServerMessage, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, false
	}
	out = c.replies
	c.replies = nil
	if c.latest != nil {
		out = append(out, ServerMessage{Type: MsgSnapshot, Snapshot: c.latest})
		c.latest = nil
	}
	return out, true
}

func (c *client) writeLoop(conn *websocket.Conn) {
	for range c.wake {
		msgs, ok := c.next()
		if !ok {
			return
		}
		for _, m := range msgs {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(m); err != nil {
				// The read loop notices the broken connection.
				conn.Close()
				return
			}
		}
	}
}
