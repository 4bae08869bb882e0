package api

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"avroute/internal/session"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(_ *http.Request) bool { return true }}

const (
	streamWriteTimeout = 10 * time.Second
	streamPingPeriod   = 30 * time.Second
)

// StreamHandler upgrades GET /v1/sessions/{id}/stream to a WebSocket and
// pushes session events until the client disconnects or the session
// disappears.
func (s *Server) StreamHandler(w http.ResponseWriter, r *http.Request, id string) {
	if _, err := s.Sessions.Get(r.Context(), id); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeProblem(w, r, http.StatusNotFound, "Session not found", "")
			return
		}
		writeProblem(w, r, http.StatusInternalServerError, "Session store failed", err.Error())
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer func() { _ = conn.Close() }()

	ch := s.Broker.Subscribe(id)
	defer s.Broker.Unsubscribe(id, ch)

	// drain client frames so pongs and close messages are processed
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(streamPingPeriod)
	defer ping.Stop()
	for {
		select {
		case evt, ok := <-ch:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
			if err := conn.WriteJSON(evt); err != nil {
				log.Printf("session stream %s: write: %v", id, err)
				return
			}
			if evt.Type == "session.completed" {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session complete"),
					time.Now().Add(streamWriteTimeout))
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
