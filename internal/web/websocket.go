package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pixil98/go-rotmg/internal/messaging"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPingPeriod = 30 * time.Second
	wsSendBuffer = 32
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// wsSubjects are relayed to every websocket client.
var wsSubjects = []string{
	messaging.FrameSubject,
	messaging.SettledSubjectPrefix + ".>",
}

type envelope struct {
	Subject string          `json:"subject"`
	Data    json.RawMessage `json:"data"`
}

// handleWebsocket relays bus messages to the client. Messages are dropped
// for a client that cannot keep up; the next frame replaces them anyway.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.WarnContext(r.Context(), "websocket upgrade", "error", err)
		return
	}
	defer conn.Close()

	send := make(chan []byte, wsSendBuffer)
	for _, subject := range wsSubjects {
		unsub, err := s.bus.Subscribe(subject, func(subject string, data []byte) {
			msg, err := json.Marshal(envelope{Subject: subject, Data: data})
			if err != nil {
				return
			}
			select {
			case send <- msg:
			default:
			}
		})
		if err != nil {
			slog.WarnContext(r.Context(), "websocket subscribe", "subject", subject, "error", err)
			return
		}
		defer unsub()
	}

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case msg := <-send:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				slog.DebugContext(r.Context(), "websocket write", "error", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
