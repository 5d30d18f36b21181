package handlers

import (
	"sync"

	"github.com/hadoku/trader/internal/contracts"
)

// subscriber buffer; a slow websocket drops events rather than stalling
// the run
const subscriberBuffer = 256

// Hub fans backtest events out to websocket subscribers, keyed by run
// id. Runs finish by closing every subscriber channel.
type Hub struct {
	mu       sync.Mutex
	subs     map[string][]chan contracts.Event
	finished map[string]bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		subs:     make(map[string][]chan contracts.Event),
		finished: make(map[string]bool),
	}
}

// Broadcast delivers an event to every subscriber of the run. Full
// subscriber buffers are skipped.
func (h *Hub) Broadcast(runID string, ev contracts.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs[runID] {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribe registers a listener for a run. The returned cancel func
// must be called when the listener goes away. Subscribing to a finished
// run returns an already-closed channel.
func (h *Hub) Subscribe(runID string) (<-chan contracts.Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan contracts.Event, subscriberBuffer)
	if h.finished[runID] {
		close(ch)
		return ch, func() {}
	}

	h.subs[runID] = append(h.subs[runID], ch)

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		chans := h.subs[runID]
		for i, cur := range chans {
			if cur == ch {
				h.subs[runID] = append(chans[:i], chans[i+1:]...)
				return
			}
		}
	}
	return ch, cancel
}

// Finish marks the run complete and closes every subscriber channel.
func (h *Hub) Finish(runID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.finished[runID] {
		return
	}
	h.finished[runID] = true
	for _, ch := range h.subs[runID] {
		close(ch)
	}
	delete(h.subs, runID)
}
