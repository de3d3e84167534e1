package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"audiocore/internal/audio"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// LatencyHub pushes the manager's estimated callback latency to every
// connected debug client a few times a second.
type LatencyHub struct {
	manager *audio.AudioManager

	mu      sync.RWMutex
	clients map[*websocket.Conn]struct{}
}

// NewLatencyHub creates a hub pushing manager's EstimateLatency.
func NewLatencyHub(manager *audio.AudioManager) *LatencyHub {
	return &LatencyHub{
		manager: manager,
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// Run broadcasts the current latency estimate every interval until stop is
// closed. Meant to run in its own goroutine.
func (h *LatencyHub) Run(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			h.broadcastLatency()
		}
	}
}

func (h *LatencyHub) broadcastLatency() {
	h.mu.RLock()
	if len(h.clients) == 0 {
		h.mu.RUnlock()
		return
	}
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	payload, _ := json.Marshal(map[string]float64{
		"latencySeconds": float64(h.manager.EstimateLatency()),
	})
	for _, c := range conns {
		if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.remove(c)
			c.Close()
		}
	}
}

func (h *LatencyHub) remove(c *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

// HandleWS upgrades the request and registers the connection for latency
// pushes until it disconnects.
func (h *LatencyHub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("⚠️ websocket upgrade failed: %v", err)
		return
	}
	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()

	go func() {
		defer func() {
			h.remove(conn)
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
