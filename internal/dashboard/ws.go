package dashboard

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ziadkadry99/pdfqa/internal/session"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsRequest is the incoming WebSocket message format. Uploads carry a file
// and go through POST /api/upload instead.
type wsRequest struct {
	Type    string `json:"type"` // ask, select, remove, export, dismiss
	Content string `json:"content,omitempty"`
	ID      string `json:"id,omitempty"`
}

// wsResponse is the outgoing WebSocket message format.
type wsResponse struct {
	Type    string     `json:"type"` // state or error
	State   *stateView `json:"state,omitempty"`
	Content string     `json:"content,omitempty"`
}

// client serialises writes to one connection. State pushes are coalesced:
// only the newest snapshot matters, so a pending signal is never queued
// twice.
type client struct {
	conn   *websocket.Conn
	dirty  chan struct{}
	errors chan string
	done   chan struct{}
}

func (d *Dashboard) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		d.log.Warn("websocket upgrade", zap.Error(err))
		return
	}
	defer conn.Close()

	c := &client{
		conn:   conn,
		dirty:  make(chan struct{}, 1),
		errors: make(chan string, 8),
		done:   make(chan struct{}),
	}
	defer close(c.done)

	unsubscribe := d.session.Subscribe(func(session.Snapshot) { c.markDirty() })
	defer unsubscribe()

	go d.writeLoop(c)
	c.markDirty()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				d.log.Warn("websocket read", zap.Error(err))
			}
			return
		}

		var req wsRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			c.sendError("invalid message format")
			continue
		}
		d.dispatch(c, req)
	}
}

func (d *Dashboard) dispatch(c *client, req wsRequest) {
	switch req.Type {
	case "ask":
		if !d.acquire() {
			c.sendError("another request is still running")
			return
		}
		// The answer arrives as a state push; the read loop stays free.
		go func() {
			defer d.release()
			if err := d.session.Query(req.Content); err != nil {
				d.log.Debug("ask from websocket failed", zap.Error(err))
			}
		}()
	case "select":
		if err := d.session.SelectRecent(req.ID); err != nil {
			c.sendError(err.Error())
		}
	case "remove":
		d.session.RemoveDocument()
	case "export":
		// The failure is already on the notification pushed to the page.
		if err := d.session.Export(); err != nil {
			d.log.Debug("export from websocket failed", zap.Error(err))
		}
	case "dismiss":
		d.session.DismissNotification()
	default:
		c.sendError("unknown message type: " + req.Type)
	}
}

func (d *Dashboard) writeLoop(c *client) {
	for {
		select {
		case <-c.done:
			return
		case <-c.dirty:
			v := d.currentView()
			if err := c.conn.WriteJSON(wsResponse{Type: "state", State: &v}); err != nil {
				d.log.Debug("websocket write", zap.Error(err))
				return
			}
		case msg := <-c.errors:
			if err := c.conn.WriteJSON(wsResponse{Type: "error", Content: msg}); err != nil {
				d.log.Debug("websocket write error", zap.Error(err))
				return
			}
		}
	}
}

func (c *client) markDirty() {
	select {
	case c.dirty <- struct{}{}:
	default:
	}
}

func (c *client) sendError(msg string) {
	select {
	case c.errors <- msg:
	case <-c.done:
	default:
	}
}
