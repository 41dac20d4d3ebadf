// Package hub fans out order-flow events to in-process subscribers.
//
// Delivery is best effort: a subscriber whose buffer is full misses the
// event rather than stalling the publisher.
package hub

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/rickgao/kalshi-orderflow/internal/metrics"
	"github.com/rickgao/kalshi-orderflow/internal/model"
)

// DefaultBuffer is the per-subscriber channel capacity.
const DefaultBuffer = 256

// Subscriber receives published events on its channel until unsubscribed.
type Subscriber struct {
	id uuid.UUID
	ch chan model.OrderFlowEvent

	mu     sync.Mutex
	closed bool
}

// ID returns the subscriber's unique identifier.
func (s *Subscriber) ID() uuid.UUID {
	return s.id
}

// Events returns the receive channel. It is closed on Unsubscribe.
func (s *Subscriber) Events() <-chan model.OrderFlowEvent {
	return s.ch
}

func (s *Subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}

// Hub tracks subscribers and broadcasts events to all of them.
type Hub struct {
	logger  *slog.Logger
	metrics *metrics.Collector

	mu   sync.RWMutex
	subs map[uuid.UUID]*Subscriber
}

// New creates an empty hub. logger may be nil; collector may be nil.
func New(logger *slog.Logger, collector *metrics.Collector) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger:  logger,
		metrics: collector,
		subs:    make(map[uuid.UUID]*Subscriber),
	}
}

// Subscribe registers a new subscriber with a buffered channel.
func (h *Hub) Subscribe() *Subscriber {
	sub := &Subscriber{
		id: uuid.New(),
		ch: make(chan model.OrderFlowEvent, DefaultBuffer),
	}

	h.mu.Lock()
	h.subs[sub.id] = sub
	n := len(h.subs)
	h.mu.Unlock()

	h.metrics.SetSubscribers(n)
	h.logger.Debug("subscriber added", "id", sub.id, "total", n)
	return sub
}

// Unsubscribe removes a subscriber and closes its channel. Safe to call
// more than once.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}

	h.mu.Lock()
	_, ok := h.subs[sub.id]
	if ok {
		delete(h.subs, sub.id)
	}
	n := len(h.subs)
	h.mu.Unlock()

	sub.close()
	if ok {
		h.metrics.SetSubscribers(n)
		h.logger.Debug("subscriber removed", "id", sub.id, "total", n)
	}
}

// Publish delivers ev to every subscriber without blocking. Subscribers
// with full buffers miss the event.
func (h *Hub) Publish(ev model.OrderFlowEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subs {
		select {
		case sub.ch <- ev:
		default:
			h.metrics.PublishDrop()
		}
	}
}

// Len returns the current subscriber count.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
