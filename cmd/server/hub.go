package main

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Hub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]bool

	clients prometheus.Gauge
	dropped prometheus.Counter
}

func newHub(reg prometheus.Registerer) *Hub {
	h := &Hub{
		conns: make(map[*websocket.Conn]bool),
		clients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ecg_server_websocket_clients",
			Help: "Number of connected websocket clients.",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ecg_server_websocket_dropped_total",
			Help: "Clients disconnected after a failed write.",
		}),
	}
	reg.MustRegister(h.clients, h.dropped)
	return h
}

func (h *Hub) add(c *websocket.Conn) {
	h.mu.Lock()
	h.conns[c] = true
	h.clients.Set(float64(len(h.conns)))
	h.mu.Unlock()
}

func (h *Hub) remove(c *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, c)
	h.clients.Set(float64(len(h.conns)))
	h.mu.Unlock()
}

func (h *Hub) snapshot() []*websocket.Conn {
	h.mu.Lock()
	clients := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		clients = append(clients, c)
	}
	h.mu.Unlock()
	return clients
}

func (h *Hub) broadcastText(b []byte) {
	clients := h.snapshot()
	for _, c := range clients {
		_ = c.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			_ = c.Close()
			h.remove(c)
			h.dropped.Inc()
		}
	}
}

// ServeHTTP upgrades the request and keeps the client registered until it
// goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	h.add(conn)
	defer func() {
		h.remove(conn)
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
