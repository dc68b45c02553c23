package session

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/AltairaLabs/CallKit/logger"
)

// WebSocket limits and connection defaults.
const (
	// maxMessageSize bounds a single inbound frame. Media frames carry
	// 20ms of base64 mu-law (~220 bytes); anything near the limit is abuse.
	maxMessageSize = 64 * 1024

	writeTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// The telephony provider connects server-to-server; there is no
	// browser origin to check.
	CheckOrigin: func(*http.Request) bool { return true },
}

// Handler returns the HTTP handler that upgrades media-stream connections
// and runs one session per connection.
func (m *Manager) Handler() http.Handler {
	return http.HandlerFunc(m.serveStream)
}

func (m *Manager) serveStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("websocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)

	sink := &wsSink{conn: conn, timeout: writeTimeout}
	sess := m.NewSession(sink)
	ctx := r.Context()

	for {
		var evt Event
		if err := conn.ReadJSON(&evt); err != nil {
			// An abrupt disconnect still finalizes the call record.
			if sess.State() == StateActive {
				logger.Warn("stream closed without stop event",
					"call_id", sess.CallID(), "error", err)
				sess.handleStop(ctx)
			} else if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("stream read failed", "error", err)
			}
			return
		}

		if err := sess.HandleEvent(ctx, evt); err != nil {
			if !errors.Is(err, ErrSessionEnded) {
				logger.Error("session event failed", "call_id", sess.CallID(), "error", err)
			}
			return
		}
	}
}

// wsSink serializes outbound frames onto one websocket connection. The
// session goroutine and playback marks may not interleave writes.
type wsSink struct {
	mu      sync.Mutex
	conn    *websocket.Conn
	timeout time.Duration
}

func (s *wsSink) Send(frame OutboundFrame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.SetWriteDeadline(time.Now().Add(s.timeout)); err != nil {
		return err
	}
	return s.conn.WriteJSON(frame)
}
