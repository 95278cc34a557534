package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Rudrajiii/leetcode-status-tracker-extension/pkg/presence"
)

const (
	wsReadTimeout  = 60 * time.Second
	wsPingInterval = 25 * time.Second
	wsWriteTimeout = 5 * time.Second
)

type statusUpdateMessage struct {
	Type       string          `json:"type"`
	Status     presence.Status `json:"status"`
	LastOnline *int64          `json:"last_online"`
}

// handleWebsocket relays presence changes to a connected client. The
// current state is pushed immediately on connect, then every change as it
// happens. Slow clients fall behind and simply miss intermediate states.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(*http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	})

	sub := s.tracker.Subscribe()
	defer sub.Close()

	if err := writeStatusUpdate(conn, s.tracker.Current()); err != nil {
		return
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	pingTicker := time.NewTicker(wsPingInterval)
	defer pingTicker.Stop()
	for {
		select {
		case <-done:
			return
		case <-pingTicker.C:
			if err := conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(wsWriteTimeout)); err != nil {
				return
			}
		case st, ok := <-sub.C:
			if !ok {
				return
			}
			if err := writeStatusUpdate(conn, st); err != nil {
				return
			}
		}
	}
}

func writeStatusUpdate(conn *websocket.Conn, st presence.State) error {
	msg, err := json.Marshal(statusUpdateMessage{
		Type:       "statusUpdate",
		Status:     st.Status,
		LastOnline: st.LastOnline,
	})
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, msg)
}
