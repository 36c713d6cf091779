// Package events provides the in-process publish/subscribe bus and the
// forwarder to the external real-time push collaborator.
//
// Delivery is at-most-once and not durable: a subscriber connected after
// an event fires never sees it, and a subscriber whose buffer is full has
// that event dropped. This is an accepted limitation of the design.
package events

import (
	"sync"
	"time"
)

const (
	OrderCreated       = "order.created"
	OrderStatusChanged = "order.status-changed"
	StockLow           = "stock.low"
	StockOut           = "stock.out"
)

type Event struct {
	Name    string    `json:"event"`
	Payload any       `json:"payload"`
	At      time.Time `json:"at"`
}

type subscriber struct {
	ch chan Event
}

type Bus struct {
	mu     sync.Mutex
	subs   map[int]*subscriber
	nextID int
	closed bool
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]*subscriber)}
}

// Subscribe registers a subscriber with the given buffer size and returns
// its channel plus a cancel func. Cancel is idempotent.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 16
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	sub := &subscriber{ch: make(chan Event, buffer)}
	if !b.closed {
		b.subs[id] = sub
	} else {
		close(sub.ch)
	}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if s, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(s.ch)
			}
		})
	}
	return sub.ch, cancel
}

// Publish delivers the event to every current subscriber without blocking.
// A full subscriber buffer means that subscriber misses the event.
func (b *Bus) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for _, sub := range b.subs {
		select {
		case sub.ch <- ev:
		default:
		}
	}
}

func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		delete(b.subs, id)
		close(sub.ch)
	}
}
