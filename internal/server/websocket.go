package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/coder/websocket"
)

const (
	// Time allowed to write a message to a peer.
	writeWait = 10 * time.Second
)

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// UpdateMessage is the live-reload payload pushed to connected browsers.
type UpdateMessage struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}

func reloadMessage() []byte {
	msg, _ := json.Marshal(UpdateMessage{
		Type:      "full_reload",
		Timestamp: time.Now().UnixMilli(),
	})
	return msg
}

// catalogMessage tells connected browsers the component catalog changed, so
// pages re-render against the current registrations.
func catalogMessage() []byte {
	msg, _ := json.Marshal(UpdateMessage{
		Type:      "components_updated",
		Timestamp: time.Now().UnixMilli(),
	})
	return msg
}

func (s *PreviewServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !s.checkOrigin(r) {
		http.Error(w, "Origin not allowed", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // origin already validated above
	})
	if err != nil {
		s.logger.Warn(r.Context(), err, "websocket upgrade failed")
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, 16),
	}

	s.clientsMu.Lock()
	s.clients[c] = struct{}{}
	s.clientsMu.Unlock()

	go s.writePump(c)
	go s.readPump(c)
}

// checkOrigin accepts same-host origins plus any configured allow-list
// entries.
func (s *PreviewServer) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return false
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}

	if originURL.Host == r.Host {
		return true
	}
	for _, allowed := range s.cfg.Server.AllowedOrigins {
		if originURL.Host == allowed || origin == allowed {
			return true
		}
	}
	return false
}

func (s *PreviewServer) writePump(c *client) {
	for msg := range c.send {
		ctx, cancel := context.WithTimeout(context.Background(), writeWait)
		err := c.conn.Write(ctx, websocket.MessageText, msg)
		cancel()
		if err != nil {
			s.dropClient(c)
			return
		}
	}
	c.conn.Close(websocket.StatusNormalClosure, "")
}

// readPump discards inbound messages; its job is noticing disconnects.
func (s *PreviewServer) readPump(c *client) {
	for {
		if _, _, err := c.conn.Read(context.Background()); err != nil {
			s.dropClient(c)
			return
		}
	}
}

func (s *PreviewServer) broadcast(msg []byte) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	for c := range s.clients {
		select {
		case c.send <- msg:
		default:
			// Slow client; skip this update
		}
	}
}

func (s *PreviewServer) dropClient(c *client) {
	s.clientsMu.Lock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}
	s.clientsMu.Unlock()
	c.conn.CloseNow()
}

func (s *PreviewServer) closeClients() {
	s.clientsMu.Lock()
	for c := range s.clients {
		close(c.send)
		delete(s.clients, c)
	}
	s.clientsMu.Unlock()
}
