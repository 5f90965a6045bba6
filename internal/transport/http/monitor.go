// Package http exposes the bot's liveness endpoints and a websocket feed
// of the leaderboard for the instructor-facing live scoreboard.
package http

import (
	"log"
	"net/http"

	"math-quiz-bot/internal/app"
	"github.com/gorilla/websocket"
)

type Monitor struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
}

func NewMonitor(service *app.QuizService) *Monitor {
	return &Monitor{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// NewMux builds the monitor's HTTP surface: health probes plus /ws.
func NewMux(m *Monitor) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pong"))
	})
	mux.HandleFunc("/ws", m.ServeWS)
	return mux
}

// ServeWS streams leaderboard snapshots: the current standing on connect,
// then one message per scored answer. The socket is read-discard; clients
// only listen.
func (m *Monitor) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	updates, cancel, err := m.service.Subscribe(r.Context())
	if err != nil {
		log.Printf("ws subscribe failed: %v", err)
		return
	}
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(update); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		case <-done:
			return
		}
	}
}
