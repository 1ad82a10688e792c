package websocket

import (
	"encoding/json"
	"sync"

	"github.com/anjiri1684/studlyf_network/metrics"
	"go.uber.org/zap"
)

// Event is the frame written to clients.
type Event struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data"`
}

// Hub maps an identity to its live clients. One identity may hold several
// connections (tabs, devices).
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
	log     *zap.SugaredLogger
}

func NewHub(log *zap.SugaredLogger) *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
		log:     log,
	}
}

// Join registers c under identity and returns how many clients identity holds
// afterwards. A client already joined under another identity is moved. An
// empty identity is ignored.
func (h *Hub) Join(identity string, c *Client) int {
	if identity == "" || c == nil {
		return 0
	}

	h.mu.Lock()
	if c.identity != identity {
		h.remove(c)
	}
	set, ok := h.clients[identity]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[identity] = set
	}
	if _, dup := set[c]; !dup {
		set[c] = struct{}{}
		metrics.RealtimeConnections.Inc()
	}
	c.identity = identity
	n := len(set)
	h.mu.Unlock()

	h.log.Debugw("client joined", "identity", identity, "connections", n)
	return n
}

// Leave unregisters c, closes its outbound queue and returns how many clients
// its identity still holds. Safe to call repeatedly.
func (h *Hub) Leave(c *Client) int {
	if c == nil {
		return 0
	}

	h.mu.Lock()
	h.remove(c)
	n := len(h.clients[c.identity])
	h.mu.Unlock()

	// Emit enqueues under the read lock, so nothing can send once c is gone
	// from the map.
	c.close()
	return n
}

// remove drops c from the set of its current identity. Callers hold h.mu.
func (h *Hub) remove(c *Client) {
	set, ok := h.clients[c.identity]
	if !ok {
		return
	}
	if _, present := set[c]; !present {
		return
	}
	delete(set, c)
	metrics.RealtimeConnections.Dec()
	if len(set) == 0 {
		delete(h.clients, c.identity)
	}
}

// Connections reports how many clients are joined under identity.
func (h *Hub) Connections(identity string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[identity])
}

// Emit delivers event to every client of identity. It never blocks: a client
// whose queue is full misses the frame.
func (h *Hub) Emit(identity, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	h.EmitRaw(identity, event, data)
	return nil
}

func (h *Hub) EmitRaw(identity, event string, data json.RawMessage) {
	if identity == "" {
		return
	}
	frame, err := json.Marshal(Event{Name: event, Data: data})
	if err != nil {
		h.log.Errorw("failed to encode frame", "event", event, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[identity] {
		if c.enqueue(frame) {
			metrics.RealtimeFrames.WithLabelValues("delivered").Inc()
			continue
		}
		metrics.RealtimeFrames.WithLabelValues("dropped").Inc()
		h.log.Warnw("outbound queue full, frame dropped", "identity", identity, "event", event)
	}
}
